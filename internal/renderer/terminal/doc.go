// Package terminal is the interactive tcell host for the find engine.
//
// A View draws one document, maps key events to dispatcher actions through a
// keymap, and implements the controller's Editor, Revealer and UI
// interfaces. Keys without a binding go through the dispatcher's keystroke
// protocol first, so an active find session can claim typed text and end
// itself on cursor movement before the View edits the buffer.
//
// All View methods run on the event loop goroutine. Work from other
// goroutines, such as configuration reloads, is posted to the screen as
// interrupt events.
package terminal
