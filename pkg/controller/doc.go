// Package controller drives the goal form: it submits the goal to the
// breakdown backend, toggles the loading indicator and error area, and fills
// the results container with rendered checklists.
//
// The page areas are reached through a Surface. State is the in-memory
// surface used by the HTTP component; the CLI supplies its own.
package controller
