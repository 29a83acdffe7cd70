package terminal

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"

	"github.com/dshills/findstorm/internal/engine/buffer"
	"github.com/dshills/findstorm/internal/find/controller"
)

// Draw renders the document, the find overlay and the status line.
func (v *View) Draw() {
	v.screen.SetStyle(v.palette.Text)
	v.screen.Clear()

	w, _ := v.screen.Size()
	h := v.textHeight()
	lines := v.doc.Buffer.LineCount()
	for row := 0; row < h && v.top+row < lines; row++ {
		v.drawLine(row, v.top+row, w)
	}
	v.drawOverlay(w, h)
	v.drawStatus(w, h)
	v.placeCursor(w, h)
	v.screen.Show()
}

func (v *View) drawLine(row, line, w int) {
	rest := v.doc.Buffer.LineText(line)
	x, col, state := 0, 0, -1
	for len(rest) > 0 && x-v.left < w {
		var cluster string
		var width int
		cluster, rest, width, state = uniseg.FirstGraphemeClusterInString(rest, state)
		style := v.styleAt(buffer.Point{Line: line, Column: col})

		if cluster == "\t" {
			width = TabWidth - x%TabWidth
			for i := 0; i < width; i++ {
				v.setCell(x+i, row, ' ', nil, style, w)
			}
		} else {
			width = max(width, 1)
			runes := []rune(cluster)
			v.setCell(x, row, runes[0], runes[1:], style, w)
		}
		x += width
		col += len(cluster)
	}
}

// setCell draws at display column x, shifted by the horizontal scroll.
func (v *View) setCell(x, y int, r rune, combining []rune, style tcell.Style, w int) {
	x -= v.left
	if x < 0 || x >= w {
		return
	}
	v.screen.SetContent(x, y, r, combining, style)
}

// styleAt picks the style for the text at p. The current match wins over
// other matches, which win over the selection.
func (v *View) styleAt(p buffer.Point) tcell.Style {
	if inRanges(v.highlights[controller.HighlightCurrent], p) {
		return v.palette.CurrentMatch
	}
	if inRanges(v.highlights[controller.HighlightAll], p) {
		return v.palette.AllMatch
	}
	if v.selection.Contains(p) {
		return v.palette.Selection
	}
	return v.palette.Text
}

func inRanges(ranges []buffer.PointRange, p buffer.Point) bool {
	for _, r := range ranges {
		if r.Contains(p) {
			return true
		}
	}
	return false
}

// drawOverlay boxes the overlay lines under the cursor line, or above it
// when they do not fit below.
func (v *View) drawOverlay(w, h int) {
	if len(v.overlay) == 0 {
		return
	}
	lines := make([]string, len(v.overlay))
	boxWidth := 0
	for i, line := range v.overlay {
		lines[i] = " " + strings.ReplaceAll(line, "\t", strings.Repeat(" ", TabWidth)) + " "
		boxWidth = max(boxWidth, runewidth.StringWidth(lines[i]))
	}
	boxWidth = min(boxWidth, w)

	cur := v.selection.End
	row := cur.Line - v.top + 1
	if row+len(lines) > h {
		row = cur.Line - v.top - len(lines)
	}
	row = max(row, 0)

	x := v.cursorX() - v.left
	x = max(min(x, w-boxWidth), 0)

	for i, line := range lines {
		if row+i >= h {
			break
		}
		drawString(v.screen, x, row+i, boxWidth, line, v.palette.Overlay)
	}
}

func (v *View) drawStatus(w, h int) {
	style := v.palette.Status
	var left string
	switch {
	case v.prompt != nil:
		left = v.prompt.label + ": " + v.prompt.text
		if v.prompt.text == "" && v.prompt.placeholder != "" {
			left = v.prompt.label + ": " + v.prompt.placeholder
		}
	case v.message != "":
		left = v.message
		if v.messageLevel == controller.MessageError {
			style = v.palette.Error
		}
	default:
		left = v.doc.Name
		if v.dirty {
			left += " [+]"
		}
		if v.app.Controller().Active() {
			left += " [find]"
		}
	}

	cur := v.selection.End
	right := fmt.Sprintf("Ln %d, Col %d", cur.Line+1, cur.Column+1)
	drawString(v.screen, 0, h, w, left, style)
	if rw := runewidth.StringWidth(right); runewidth.StringWidth(left)+rw+1 < w {
		drawString(v.screen, w-rw, h, rw, right, style)
	}
}

func (v *View) placeCursor(w, h int) {
	if v.prompt != nil {
		text := v.prompt.label + ": " + v.prompt.text
		v.screen.ShowCursor(min(runewidth.StringWidth(text), w-1), h)
		return
	}
	cur := v.selection.End
	x, y := v.cursorX()-v.left, cur.Line-v.top
	if x < 0 || x >= w || y < 0 || y >= h {
		v.screen.HideCursor()
		return
	}
	v.screen.ShowCursor(x, y)
}

func (v *View) cursorX() int {
	cur := v.selection.End
	line := v.doc.Buffer.LineText(cur.Line)
	return displayWidth(line[:min(cur.Column, len(line))])
}

// drawString fills width cells at (x, y) with s, padding with spaces.
func drawString(s tcell.Screen, x, y, width int, text string, style tcell.Style) {
	col := 0
	for _, r := range text {
		rw := runewidth.RuneWidth(r)
		if rw == 0 {
			continue
		}
		if col+rw > width {
			break
		}
		s.SetContent(x+col, y, r, nil, style)
		col += rw
	}
	for ; col < width; col++ {
		s.SetContent(x+col, y, ' ', nil, style)
	}
}

// displayWidth returns the number of cells s takes with tabs expanded.
func displayWidth(s string) int {
	x, state := 0, -1
	for len(s) > 0 {
		var cluster string
		var width int
		cluster, s, width, state = uniseg.FirstGraphemeClusterInString(s, state)
		if cluster == "\t" {
			width = TabWidth - x%TabWidth
		}
		x += max(width, 1)
	}
	return x
}
