package sortjson

import (
	"unicode/utf16"
	"unicode/utf8"
)

// decodeKey resolves the escape sequences of the quoted string
// data[start:stop+1] and returns its value as UTF-16 code units, the form keys
// are compared in. start and stop are the offsets of the quotes.
func decodeKey(data []byte, start, stop int) ([]uint16, *ParseError) {
	units := make([]uint16, 0, stop-start-1)
	for i := start + 1; i < stop; {
		c := data[i]
		switch {
		case c == '\\':
			if i+1 >= stop {
				return nil, &ParseError{Offset: i, Msg: "String close quot wasn't found"}
			}
			switch e := data[i+1]; e {
			case '"', '\\', '/':
				units = append(units, uint16(e))
			case 'b':
				units = append(units, '\b')
			case 'f':
				units = append(units, '\f')
			case 'n':
				units = append(units, '\n')
			case 'r':
				units = append(units, '\r')
			case 't':
				units = append(units, '\t')
			case 'u':
				if i+6 > stop {
					return nil, &ParseError{Offset: i, Msg: "Truncated unicode escape sequence"}
				}
				u, ok := hex4(data[i+2 : i+6])
				if !ok {
					return nil, &ParseError{Offset: i, Msg: "Invalid unicode escape sequence: " + string(data[i:i+6])}
				}
				units = append(units, u)
				i += 6
				continue
			default:
				return nil, &ParseError{Offset: i, Msg: "Unrecognized character escape: " + string(data[i:i+2])}
			}
			i += 2
		case c < 0x20:
			return nil, &ParseError{Offset: i, Msg: "Illegal unquoted control character in string"}
		case c < utf8.RuneSelf:
			units = append(units, uint16(c))
			i++
		default:
			r, size := utf8.DecodeRune(data[i:stop])
			if r == utf8.RuneError && size <= 1 {
				return nil, &ParseError{Offset: i, Msg: "Invalid UTF-8 byte in string"}
			}
			units = utf16.AppendRune(units, r)
			i += size
		}
	}
	return units, nil
}

func hex4(b []byte) (uint16, bool) {
	var v uint16
	for _, c := range b {
		switch {
		case c >= '0' && c <= '9':
			c -= '0'
		case c >= 'a' && c <= 'f':
			c = c - 'a' + 10
		case c >= 'A' && c <= 'F':
			c = c - 'A' + 10
		default:
			return 0, false
		}
		v = v<<4 | uint16(c)
	}
	return v, true
}

// keyString renders decoded key units for diagnostics. Unpaired surrogates
// become U+FFFD.
func keyString(units []uint16) string {
	return string(utf16.Decode(units))
}
