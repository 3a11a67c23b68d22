package sortjson

import (
	"fmt"
	"io"
)

// DefaultBufferSize is the capacity of the output buffer used by WriteIntoStream.
const DefaultBufferSize = 100000

// BufferedWriter collects small writes into a fixed buffer before passing them
// to the underlying writer. Unlike bufio.Writer it is sized strictly by the
// caller and a write larger than the buffer goes straight to the sink.
//
// BufferedWriter is not safe for concurrent use. The first write error is
// kept and returned by every later call.
type BufferedWriter struct {
	w   io.Writer
	buf []byte
	n   int
	err error
}

// NewBufferedWriter returns a writer with a buffer of size bytes. size must
// be positive.
func NewBufferedWriter(w io.Writer, size int) (*BufferedWriter, error) {
	if size <= 0 {
		return nil, &ConfigurationError{Msg: fmt.Sprintf("buffer size should be a positive number, got %d", size)}
	}
	return &BufferedWriter{w: w, buf: make([]byte, size)}, nil
}

// Buffered returns the number of bytes waiting in the buffer.
func (b *BufferedWriter) Buffered() int {
	return b.n
}

func (b *BufferedWriter) flushBuffer() error {
	if b.err != nil {
		return b.err
	}
	if b.n == 0 {
		return nil
	}
	n, err := b.w.Write(b.buf[:b.n])
	if err == nil && n < b.n {
		err = io.ErrShortWrite
	}
	if err != nil {
		b.err = fmt.Errorf("failed to write output: %w", err)
		return b.err
	}
	b.n = 0
	return nil
}

func (b *BufferedWriter) WriteByte(c byte) error {
	if b.n >= len(b.buf) {
		if err := b.flushBuffer(); err != nil {
			return err
		}
	}
	if b.err != nil {
		return b.err
	}
	b.buf[b.n] = c
	b.n++
	return nil
}

func (b *BufferedWriter) Write(p []byte) (int, error) {
	if len(p) >= len(b.buf) {
		if err := b.flushBuffer(); err != nil {
			return 0, err
		}
		n, err := b.w.Write(p)
		if err == nil && n < len(p) {
			err = io.ErrShortWrite
		}
		if err != nil {
			b.err = fmt.Errorf("failed to write output: %w", err)
			return n, b.err
		}
		return n, nil
	}
	if len(p) > len(b.buf)-b.n {
		if err := b.flushBuffer(); err != nil {
			return 0, err
		}
	}
	if b.err != nil {
		return 0, b.err
	}
	b.n += copy(b.buf[b.n:], p)
	return len(p), nil
}

// Flush writes the buffered bytes and flushes the underlying writer when it
// has a Flush method. The underlying writer is never closed.
func (b *BufferedWriter) Flush() error {
	if err := b.flushBuffer(); err != nil {
		return err
	}
	if f, ok := b.w.(interface{ Flush() error }); ok {
		if err := f.Flush(); err != nil {
			b.err = fmt.Errorf("failed to flush output: %w", err)
			return b.err
		}
	}
	return nil
}
