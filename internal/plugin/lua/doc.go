// Package lua runs Lua scripts that drive find sessions.
//
// A State wraps a gopher-lua runtime with only the base, table, string and
// math libraries opened, and without dofile, loadfile, load or loadstring.
// Every call runs under a context with the state's execution timeout.
//
// Install exposes two modules to scripts:
//
//	find.start()            find.reverse()          find.type("foo")
//	find.delete()           find.next()             find.prev()
//	find.toggle_regex()     find.toggle_case()      find.toggle_word()
//	find.toggle_replace()   find.toggle_simple()    find.replace(all)
//	find.history_next()     find.history_prev()     find.finish()
//	find.cancel()           find.info()             find.run(name, [text])
//
//	buf.text()              buf.line_count()        buf.line(n)
//	buf.cursor()            buf.set_cursor(l, c)    buf.selection()
//	buf.selected_text()
//
// Lines and columns are 1-based on the Lua side. find.* functions raise a
// Lua error when the action fails; scripts can guard them with pcall.
package lua
