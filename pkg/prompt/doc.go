// Package prompt asks for input on the terminal through survey. The Driver
// interface lets the CLI flow run against scripted answers in tests.
package prompt
