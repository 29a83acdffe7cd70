// Package script runs YAML action scripts against a dispatcher.
//
// A script is a list of steps, each naming a dispatcher action:
//
//	name: rename-foo
//	steps:
//	  - action: find.start
//	  - action: find.type
//	    text: foo
//	    expect: {matches: 3}
//	  - action: find.toggleReplaceMode
//	  - action: find.type
//	    text: bar
//	  - action: find.replaceAll
//	  - action: find.end
//
// Action names are checked before anything runs, so a typo fails the whole
// script with a suggestion instead of leaving a half-applied session.
package script
