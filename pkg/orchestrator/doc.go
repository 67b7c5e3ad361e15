// Package orchestrator wires the backend → decode → renderer pipeline into a
// single call for callers that want rendered output for a goal without
// driving a display surface.
package orchestrator
