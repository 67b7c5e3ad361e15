// Package themefile loads a go-theme manifest from a file and exposes it as a
// theme.ThemeSelector for the page renderer.
package themefile
