// Package sortjson writes JSON documents with object keys sorted at every
// level. Everything else is copied from the source bytes as written: numbers
// are not reformatted, strings keep their escapes, arrays keep their order.
// Only insignificant whitespace is dropped, so two documents that differ in
// key order or formatting produce identical output and can be hashed or
// compared byte by byte.
//
// Keys are compared by UTF-16 code units after decoding escape sequences,
// which matches the ordering of Java and JavaScript strings.
//
// The whole document must be in memory. Besides the input, memory use grows
// with the number of keys held by the largest single object.
package sortjson

import (
	"bytes"
	"io"
	"os"
)

// Options groups the Sorter settings so callers can pass them around.
// A zero BufferSize means DefaultBufferSize, a zero MaxKeys means no limit.
type Options struct {
	SkipKeyDuplication bool
	BufferSize         int
	MaxKeys            int
}

// Sorter canonicalizes one in-memory document. The setters return the Sorter
// for chaining. A Sorter can be reused, but not from several goroutines at once.
type Sorter struct {
	data               []byte
	skipKeyDuplication bool
	bufferSize         int
	maxKeys            int
}

// New uses data as the document source. data is read, never modified.
func New(data []byte) *Sorter {
	return &Sorter{data: data, bufferSize: DefaultBufferSize}
}

// NewFromFile reads the document at path into memory.
func NewFromFile(path string) (*Sorter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return New(data), nil
}

// SkipKeyDuplication reports whether duplicated keys are tolerated.
func (s *Sorter) SkipKeyDuplication() bool {
	return s.skipKeyDuplication
}

// SetSkipKeyDuplication controls duplicated keys within one object. When
// false (the default) they fail with KeyDuplicationError. When true every
// occurrence is kept, next to each other in source order.
func (s *Sorter) SetSkipKeyDuplication(skip bool) *Sorter {
	s.skipKeyDuplication = skip
	return s
}

func (s *Sorter) BufferSize() int {
	return s.bufferSize
}

// SetBufferSize sets the output buffer capacity. A non-positive size makes
// the next write fail with ConfigurationError.
func (s *Sorter) SetBufferSize(size int) *Sorter {
	s.bufferSize = size
	return s
}

func (s *Sorter) MaxKeys() int {
	return s.maxKeys
}

// SetMaxKeys limits the number of keys in a single object. Zero disables
// the limit.
func (s *Sorter) SetMaxKeys(n int) *Sorter {
	s.maxKeys = n
	return s
}

// SetOptions applies all settings at once.
func (s *Sorter) SetOptions(o Options) *Sorter {
	s.skipKeyDuplication = o.SkipKeyDuplication
	s.maxKeys = o.MaxKeys
	s.bufferSize = o.BufferSize
	if s.bufferSize == 0 {
		s.bufferSize = DefaultBufferSize
	}
	return s
}

func (s *Sorter) parse() (element, error) {
	sc := &scanner{
		data:               s.data,
		skipKeyDuplication: s.skipKeyDuplication,
		maxKeys:            s.maxKeys,
	}
	return sc.scanElement(msgNoValue)
}

// WriteIntoStream writes the canonical form to w and flushes it. w is not
// closed. On error, part of the output may already have been written.
func (s *Sorter) WriteIntoStream(w io.Writer) error {
	bw, err := NewBufferedWriter(w, s.bufferSize)
	if err != nil {
		return err
	}
	root, err := s.parse()
	if err != nil {
		return err
	}
	if err := writeElement(bw, s.data, &root); err != nil {
		return err
	}
	return bw.Flush()
}

// Sorted returns the canonical form as a new byte slice.
func (s *Sorter) Sorted() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(len(s.data))
	if err := s.WriteIntoStream(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Sort returns the canonical form of data with default settings.
func Sort(data []byte) ([]byte, error) {
	return New(data).Sorted()
}
