// Package render defines the renderer contract shared by the HTML and text
// checklist renderers, plus the registry used to select one by name.
package render
