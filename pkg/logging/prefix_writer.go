package logging

import (
	"bytes"
	"io"
	"sync"
)

// PrefixWriter wraps an io.Writer and adds a prefix to each complete line.
// Hooks of concurrent builds may share one writer, so writes are serialized.
type PrefixWriter struct {
	mu     sync.Mutex
	prefix []byte
	writer io.Writer
	buffer bytes.Buffer
}

// NewPrefixWriter creates a new PrefixWriter.
func NewPrefixWriter(prefix string, w io.Writer) *PrefixWriter {
	return &PrefixWriter{
		prefix: []byte(prefix),
		writer: w,
	}
}

// Write buffers p and emits every complete line with the prefix. A trailing
// partial line stays buffered until its newline arrives or Flush is called.
func (pw *PrefixWriter) Write(p []byte) (int, error) {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	pw.buffer.Write(p)
	for {
		i := bytes.IndexByte(pw.buffer.Bytes(), '\n')
		if i < 0 {
			break
		}
		if err := pw.emit(pw.buffer.Next(i + 1)); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

// Flush writes any buffered partial line.
func (pw *PrefixWriter) Flush() error {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	if pw.buffer.Len() == 0 {
		return nil
	}
	return pw.emit(pw.buffer.Next(pw.buffer.Len()))
}

func (pw *PrefixWriter) emit(line []byte) error {
	if _, err := pw.writer.Write(pw.prefix); err != nil {
		return err
	}
	_, err := pw.writer.Write(line)
	return err
}
