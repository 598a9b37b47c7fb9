/*
	Copyright (c) 2026 balloonwind contributors
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file, herein included
	as part of this header.

	escape.go: Repair comments exported by aprs.fi.
*/

package aprsparse

import (
	"fmt"
	"strconv"
	"strings"
)

// UnescapeComment repairs a comment downloaded from aprs.fi: the export wraps it in
// quotes, writes commas as spaces and non printable characters as backslash escapes.
// A space is never a base-91 digit, so every space is turned back into a comma.
// Escapes are decoded one code point per escape (\xNN is U+00NN), unknown escapes are
// kept verbatim.
func UnescapeComment(s string) (string, error) {
	s = strings.TrimLeft(s, `"`)
	for strings.HasSuffix(s, `"`) && !strings.HasSuffix(s, `\"`) {
		s = s[:len(s)-1]
	}
	s = strings.ReplaceAll(s, " ", ",")
	if !strings.Contains(s, `\`) {
		return s, nil
	}

	var b strings.Builder
	for i := 0; i < len(s); {
		if s[i] != '\\' || i+1 >= len(s) {
			b.WriteByte(s[i])
			i++
			continue
		}
		switch c := s[i+1]; c {
		case '\\', '\'', '"':
			b.WriteByte(c)
			i += 2
		case 'n':
			b.WriteByte('\n')
			i += 2
		case 'r':
			b.WriteByte('\r')
			i += 2
		case 't':
			b.WriteByte('\t')
			i += 2
		case 'x', 'u', 'U':
			n := map[byte]int{'x': 2, 'u': 4, 'U': 8}[c]
			if i+2+n > len(s) {
				return "", fmt.Errorf("truncated \\%c escape at %d", c, i)
			}
			v, err := strconv.ParseUint(s[i+2:i+2+n], 16, 32)
			if err != nil {
				return "", fmt.Errorf("bad \\%c escape at %d: %w", c, i, err)
			}
			b.WriteRune(rune(v))
			i += 2 + n
		default:
			b.WriteByte('\\')
			i++
		}
	}
	return b.String(), nil
}
