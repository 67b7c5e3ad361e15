// Package devreload watches template and fixture files during development so
// the server can drop its caches without a restart.
package devreload
