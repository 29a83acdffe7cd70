// Package dispatcher routes actions to handlers and keystrokes to key
// handlers.
//
// A namespace handler such as the find handler claims the actions under its
// prefix that it knows; every other name resolves to an exact registration,
// where the latest registration of a name replaces the earlier one. Names
// nothing routes produce ErrNoHandler and, when a known name is a few edits
// away, a suggestion in the result data.
//
// Editing keystrokes (typing, moves, deletes, yank, kill, cancel) are offered
// to the active KeyHandlers before the editor applies them. The editor's
// default runs only if none of them vetoes it.
//
// Dispatch calls the pre hooks, any of which may rewrite or veto the action,
// then the handler under panic recovery, then the post hooks. With WithStats
// each dispatch is counted per action and outcome.
package dispatcher
