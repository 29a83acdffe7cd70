package controller

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/dshills/findstorm/internal/find/tracker"
)

// Overlay returns the status lines for the current state, or nil when no
// session is active.
func (c *Controller) Overlay() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return nil
	}
	return c.overlay(c.tracker.Info())
}

func (c *Controller) overlay(info tracker.Info) []string {
	sess := c.cache.Active()
	if sess == nil {
		return nil
	}

	lines := make([]string, 0, 5)
	if info.HasIndex {
		lines = append(lines, fmt.Sprintf("%d of %d", info.Index+1, len(info.Matches)))
	} else {
		lines = append(lines, "No results")
	}
	lines = append(lines, fmt.Sprintf("Flags: [%s]", c.toggles.Codes()))
	lines = append(lines, "Text: "+markTrailingSpace(sess.FindText))
	if c.replaceMode {
		if sess.ReplaceText == "" {
			lines = append(lines, "No replace text set")
		} else {
			lines = append(lines, "Repl: "+markTrailingSpace(sess.ReplaceText))
		}
	}
	if info.Err != nil {
		lines = append(lines, "Error: "+info.Err.Error())
	}

	if info.HasIndex {
		start := info.Current.Range.Start
		line := c.text[c.idx.LineStart(start.Line):c.idx.OffsetOf(start)]
		if indent := indentFor(line); indent != "" {
			for i := range lines {
				lines[i] = indent + lines[i]
			}
		}
	}
	return lines
}

// markTrailingSpace makes a trailing space visible.
func markTrailingSpace(s string) string {
	if strings.HasSuffix(s, " ") {
		return s + "|"
	}
	return s
}

// indentFor returns whitespace occupying the same display width as prefix.
// Tabs are kept so that they expand the same way as in the buffer.
func indentFor(prefix string) string {
	var b strings.Builder
	for _, r := range prefix {
		if r == '\t' {
			b.WriteByte('\t')
			continue
		}
		b.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	return b.String()
}
