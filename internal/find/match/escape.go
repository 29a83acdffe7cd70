package match

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

var escaper = strings.NewReplacer(
	`|`, `\|`,
	`\`, `\\`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`[`, `\[`,
	`]`, `\]`,
	`^`, `\^`,
	`$`, `\$`,
	`+`, `\+`,
	`*`, `\*`,
	`?`, `\?`,
	`.`, `\.`,
	`-`, `\x2d`,
)

// Escape quotes every regexp metacharacter in s. A hyphen becomes \x2d so the
// result stays valid inside a character class too.
func Escape(s string) string {
	return escaper.Replace(s)
}

// foldCase lowercases s one rune at a time, keeping any rune whose lowercase
// form has a different encoded length. Byte offsets into the result are valid
// offsets into s.
func foldCase(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); {
		c := s[i]
		if c < utf8.RuneSelf {
			if 'A' <= c && c <= 'Z' {
				c += 'a' - 'A'
			}
			sb.WriteByte(c)
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError {
			sb.WriteString(s[i : i+size])
			i += size
			continue
		}
		if lr := unicode.ToLower(r); lr != r && utf8.RuneLen(lr) == size {
			sb.WriteRune(lr)
		} else {
			sb.WriteString(s[i : i+size])
		}
		i += size
	}
	return sb.String()
}

// isWordRune reports whether r counts as part of a word for whole-word
// filtering.
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// onWordBoundary reports whether [start, end) in text neither starts nor ends
// in the middle of a word.
func onWordBoundary(text string, start, end int) bool {
	first, _ := utf8.DecodeRuneInString(text[start:end])
	if isWordRune(first) && start > 0 {
		prev, _ := utf8.DecodeLastRuneInString(text[:start])
		if isWordRune(prev) {
			return false
		}
	}
	last, _ := utf8.DecodeLastRuneInString(text[start:end])
	if isWordRune(last) && end < len(text) {
		next, _ := utf8.DecodeRuneInString(text[end:])
		if isWordRune(next) {
			return false
		}
	}
	return true
}
