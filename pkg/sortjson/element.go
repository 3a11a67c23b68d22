package sortjson

type kind uint8

const (
	kindScalar kind = iota
	kindArray
	kindObject
)

// element is a view into the source buffer. Scalars are kept as byte ranges,
// containers hold their children.
type element struct {
	kind    kind
	start   int
	length  int
	items   []element
	entries []entry
}

// entry is one member of an object. keyStart and keyStop point at the
// opening and closing quote of the key in the source buffer.
type entry struct {
	key      string
	units    []uint16
	keyStart int
	keyStop  int
	value    element
}

func scalar(start, length int) element {
	return element{kind: kindScalar, start: start, length: length}
}

func array(items []element) element {
	return element{kind: kindArray, items: items}
}

func object(entries []entry) element {
	return element{kind: kindObject, entries: entries}
}
