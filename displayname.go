// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lti

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Not all runes in unicode.PrintRanges are suitable for names that end up in
// cookies, logs, and responses. They are collected here.
var excludedRunes = &unicode.RangeTable{
	R16: []unicode.Range16{
		{0x2028, 0x202f, 1}, // line and paragraph separators, bidi embedding and overrides
		{0x2066, 0x2069, 1}, // bidi isolates
		{0xfff0, 0xffff, 1}, // specials, and invalid
	},
	LatinOffset: 0,
}

// CleanDisplayName prepares a verified display name for presentation.
//
// If 'form' is given the result will be in that Unicode normalization form.
// Runes that don't print are dropped, and white space is collapsed
// into a single U+0020 (space).
//
// Names are not transliterated.
func CleanDisplayName(s string, form *norm.Form) string {
	if form != nil && !form.IsNormalString(s) {
		s = form.String(s)
	}

	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			pendingSpace = b.Len() > 0
			continue
		case r == unicode.ReplacementChar,
			unicode.Is(excludedRunes, r),
			!unicode.IsPrint(r):
			continue
		}
		if pendingSpace {
			b.WriteByte(' ')
			pendingSpace = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
