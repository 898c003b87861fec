package step

import (
	"strconv"
	"strings"
	"unicode/utf16"
)

// DecodeString expands the control directives of a STEP string value for
// display: \\ (backslash), \S\c (upper half of ISO 8859-1), \X\hh (8-bit
// code), \X2\...\X0\ (UTF-16) and \X4\...\X0\ (UTF-32). Code page switches
// (\PA\ etc.) are dropped. Malformed directives are kept verbatim.
func DecodeString(raw string) string {
	if !strings.Contains(raw, `\`) {
		return raw
	}

	var sb strings.Builder
	for i := 0; i < len(raw); {
		if raw[i] != '\\' {
			sb.WriteByte(raw[i])
			i++
			continue
		}
		rest := raw[i:]
		switch {
		case strings.HasPrefix(rest, `\\`):
			sb.WriteByte('\\')
			i += 2
		case strings.HasPrefix(rest, `\S\`) && len(rest) >= 4:
			sb.WriteRune(rune(rest[3]) + 128)
			i += 4
		case len(rest) >= 4 && rest[1] == 'P' && rest[3] == '\\' && isLetter(rest[2]):
			i += 4
		case strings.HasPrefix(rest, `\X\`) && len(rest) >= 5:
			if n, err := strconv.ParseUint(rest[3:5], 16, 8); err == nil {
				sb.WriteRune(rune(n))
				i += 5
				continue
			}
			sb.WriteByte('\\')
			i++
		case strings.HasPrefix(rest, `\X2\`):
			if text, n, ok := decodeWide(rest[4:], 4); ok {
				sb.WriteString(text)
				i += 4 + n
				continue
			}
			sb.WriteByte('\\')
			i++
		case strings.HasPrefix(rest, `\X4\`):
			if text, n, ok := decodeWide(rest[4:], 8); ok {
				sb.WriteString(text)
				i += 4 + n
				continue
			}
			sb.WriteByte('\\')
			i++
		default:
			sb.WriteByte('\\')
			i++
		}
	}
	return sb.String()
}

// decodeWide decodes groups of width hex digits up to the \X0\ terminator.
// It returns the text, the number of bytes consumed including the
// terminator, and whether the run was well formed.
func decodeWide(s string, width int) (string, int, bool) {
	end := strings.Index(s, `\X0\`)
	if end < 0 || end%width != 0 {
		return "", 0, false
	}
	units := make([]uint16, 0, end/4)
	var runes []rune
	for j := 0; j < end; j += width {
		n, err := strconv.ParseUint(s[j:j+width], 16, 32)
		if err != nil {
			return "", 0, false
		}
		if width == 4 {
			units = append(units, uint16(n))
		} else {
			runes = append(runes, rune(n))
		}
	}
	if width == 4 {
		runes = utf16.Decode(units)
	}
	return string(runes), end + len(`\X0\`), true
}
