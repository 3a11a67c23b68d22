package sortjson

import "fmt"

const (
	msgMappingNotClosed = "Mapping close bracket wasn't found"
	msgArrayNotClosed   = "Array close bracket wasn't found"
	msgStringNotClosed  = "String close quot wasn't found"
	msgNoValue          = "JSON value wasn't found"
	msgTooDeep          = "Maximum nesting depth exceeded"
)

// maxNestingDepth bounds how many objects and arrays may be open at once.
const maxNestingDepth = 10000

// scanner walks the input once and builds the element tree. Scalars are not
// materialized, only keys are decoded.
type scanner struct {
	data               []byte
	pos                int
	path               []segment
	depth              int
	skipKeyDuplication bool
	maxKeys            int
}

func isWhitespace(b byte) bool {
	return b == ' ' || b == '\r' || b == '\n' || b == '\t'
}

func (s *scanner) errorf(offset int, format string, args ...any) *ParseError {
	return &ParseError{Offset: offset, Path: pathText(s.path), Msg: fmt.Sprintf(format, args...)}
}

// skipWhitespace advances to the next token and reports whether one exists.
func (s *scanner) skipWhitespace() bool {
	for s.pos < len(s.data) {
		if !isWhitespace(s.data[s.pos]) {
			return true
		}
		s.pos++
	}
	return false
}

// scanElement scans the next value. eof is the message reported when the
// buffer ends before any value starts.
func (s *scanner) scanElement(eof string) (element, error) {
	if !s.skipWhitespace() {
		return element{}, s.errorf(s.pos, "%s", eof)
	}
	switch b := s.data[s.pos]; b {
	case '{', '[':
		if s.depth >= maxNestingDepth {
			return element{}, s.errorf(s.pos, msgTooDeep)
		}
		s.pos++
		s.depth++
		defer func() { s.depth-- }()
		if b == '{' {
			return s.scanObject()
		}
		return s.scanArray()
	case '"':
		start := s.pos
		if err := s.skipString(); err != nil {
			return element{}, err
		}
		return scalar(start, s.pos-start), nil
	case '}', ']', ',', ':':
		return element{}, s.errorf(s.pos, "Unexpected character: %q", b)
	}

	// Bare tokens (numbers, literals) are taken as written up to the next
	// delimiter, without trailing whitespace.
	start, end := s.pos, s.pos
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		if c == '}' || c == ']' || c == ',' {
			break
		}
		s.pos++
		if !isWhitespace(c) {
			end = s.pos
		}
	}
	return scalar(start, end-start), nil
}

// skipString moves past the string whose opening quote is at s.pos.
func (s *scanner) skipString() error {
	start := s.pos
	s.pos++
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		s.pos++
		switch c {
		case '"':
			return nil
		case '\\':
			s.pos++
		}
	}
	s.pos = len(s.data)
	return s.errorf(start, msgStringNotClosed)
}

type objectState uint8

const (
	stateFirstKey objectState = iota
	stateKey
	stateColon
	stateComma
)

func (s *scanner) scanObject() (element, error) {
	var (
		entries []entry
		current entry
		state   = stateFirstKey
	)
	for {
		if !s.skipWhitespace() {
			return element{}, s.errorf(s.pos, msgMappingNotClosed)
		}
		switch b := s.data[s.pos]; b {
		case '}':
			switch state {
			case stateKey:
				return element{}, s.errorf(s.pos, "Comma in mapping without key-value pair after")
			case stateColon:
				return element{}, s.errorf(s.pos, "Key without value in mapping")
			}
			s.pos++
			if err := sortEntries(entries, s.skipKeyDuplication, s.path); err != nil {
				return element{}, err
			}
			return object(entries), nil
		case '"':
			switch state {
			case stateColon:
				return element{}, s.errorf(s.pos, "Key without value in mapping")
			case stateComma:
				return element{}, s.errorf(s.pos, "Missing comma between mapping entries")
			}
			keyStart := s.pos
			if err := s.skipString(); err != nil {
				return element{}, err
			}
			keyStop := s.pos - 1
			units, err := decodeKey(s.data, keyStart, keyStop)
			if err != nil {
				err.Path = pathText(s.path)
				return element{}, err
			}
			current = entry{key: keyString(units), units: units, keyStart: keyStart, keyStop: keyStop}
			state = stateColon
		case ':':
			switch state {
			case stateFirstKey, stateKey:
				return element{}, s.errorf(s.pos, "Value without key in mapping")
			case stateComma:
				return element{}, s.errorf(s.pos, "Unexpected colon sign in the middle of value text")
			}
			s.pos++
			s.path = append(s.path, segment{key: current.key})
			value, err := s.scanElement(msgMappingNotClosed)
			s.path = s.path[:len(s.path)-1]
			if err != nil {
				return element{}, err
			}
			current.value = value
			entries = append(entries, current)
			if s.maxKeys > 0 && len(entries) > s.maxKeys {
				return element{}, &TooManyKeysError{Path: pathText(s.path), Limit: s.maxKeys}
			}
			state = stateComma
		case ',':
			if state != stateComma {
				return element{}, s.errorf(s.pos, "Comma in mapping without key-value pair before")
			}
			s.pos++
			state = stateKey
		default:
			return element{}, s.errorf(s.pos, "Unexpected character: %q", b)
		}
	}
}

func (s *scanner) scanArray() (element, error) {
	if !s.skipWhitespace() {
		return element{}, s.errorf(s.pos, msgArrayNotClosed)
	}
	if s.data[s.pos] == ']' {
		s.pos++
		return array(nil), nil
	}
	var items []element
	for i := 0; ; i++ {
		s.path = append(s.path, segment{index: i, isIndex: true})
		item, err := s.scanElement(msgArrayNotClosed)
		s.path = s.path[:len(s.path)-1]
		if err != nil {
			return element{}, err
		}
		items = append(items, item)
		if !s.skipWhitespace() {
			return element{}, s.errorf(s.pos, msgArrayNotClosed)
		}
		b := s.data[s.pos]
		s.pos++
		if b == ']' {
			return array(items), nil
		}
		if b != ',' {
			return element{}, s.errorf(s.pos-1, "Unexpected character: %q", b)
		}
	}
}
