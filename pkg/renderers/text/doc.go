// Package text renders goal breakdowns as plain-text checklists for the CLI.
package text
