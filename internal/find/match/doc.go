// Package match computes the ordered, non-overlapping set of matches of a
// query over a text snapshot.
//
// A query is either literal or a regular expression, optionally
// case-insensitive and optionally restricted to whole words. Literal queries
// have every regexp metacharacter escaped before compilation, so "foo." only
// ever matches the four characters f, o, o and a dot.
//
// A malformed regular expression never fails the caller hard: FindMatches
// returns an empty match set together with a *PatternError describing the
// problem, and the caller is expected to surface the message and carry on.
//
// Basic usage:
//
//	eng := match.NewEngine()
//	matches, err := eng.FindMatches("cat catalog", match.Params{
//	    Query:     "cat",
//	    WholeWord: true,
//	})
//	// matches[0].Start == 0, matches[0].End == 3
package match
