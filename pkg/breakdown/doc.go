// Package breakdown holds the goal breakdown data model (a goal, its phases
// and their tasks) and validates untyped backend payloads into it.
package breakdown
