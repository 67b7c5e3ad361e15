// Package fixturebackend is a stand-in for the goal breakdown service. It
// serves canned breakdowns from a YAML file so the form and CLI can run
// without the real backend, and tests can script its answers.
//
// A fixture file looks like:
//
//	default:
//	  phases:
//	    - name: Getting started
//	      tasks: [Write down why the goal matters]
//	fixtures:
//	  - goal: Learn guitar
//	    phases:
//	      - name: Basics
//	        tasks: [Buy a guitar, Learn chords]
//	  - goal: Too vague
//	    status: 400
//	    error: Goal too vague
package fixturebackend
