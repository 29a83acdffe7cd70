package keymap

// Default returns the key bindings of the terminal host.
func Default() *Keymap {
	km := NewKeymap("default")
	for _, b := range []Binding{
		NewBinding("Ctrl+S", "find.start").WithDescription("Find, or next match"),
		NewBinding("Ctrl+R", "find.reverse").WithDescription("Reverse find, or previous match"),
		NewBinding("Enter", "find.end").WithDescription("Finish find and select the match"),
		NewBinding("Esc", "find.cancel").WithDescription("Cancel find"),
		NewBinding("Ctrl+G", "find.cancel").WithDescription("Cancel find"),
		NewBinding("Backspace", "find.deleteLeft").WithDescription("Delete the last query character"),
		NewBinding("Alt+R", "find.toggleRegex").WithDescription("Toggle regex matching"),
		NewBinding("Alt+C", "find.toggleCase").WithDescription("Toggle case sensitivity"),
		NewBinding("Alt+W", "find.toggleWholeWord").WithDescription("Toggle whole word matching"),
		NewBinding("Ctrl+T", "find.toggleReplaceMode").WithDescription("Edit the replace text"),
		NewBinding("Ctrl+O", "find.replaceOne").WithDescription("Replace the current match"),
		NewBinding("Ctrl+A", "find.replaceAll").WithDescription("Replace every match"),
		NewBinding("Ctrl+N", "find.history.next").WithDescription("Next find session"),
		NewBinding("Ctrl+P", "find.history.prev").WithDescription("Previous find session"),
		NewBinding("Alt+S", "find.toggleSimpleMode").WithDescription("Toggle simple find mode"),
		NewBinding("F2", "app.save").WithDescription("Save the document"),
		NewBinding("Ctrl+Q", "app.quit").WithDescription("Quit"),
	} {
		km.AddBinding(b)
	}
	return km
}
