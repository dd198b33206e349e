package writers

import (
	"bufio"
	"fmt"
	"io"
	"sync"
)

// ConsoleStreamWriter writes processed chunks to an output such as stdout.
// Several streams may share one output; every Write is prefixed with the
// stream name and is written and flushed as a unit.
type ConsoleStreamWriter struct {
	mu         *sync.Mutex
	writer     *bufio.Writer
	prefix     string
	totalBytes int64
	closed     bool
}

// NewConsoleStreamWriter creates a writer for stream name. Writers sharing
// out must share mu.
func NewConsoleStreamWriter(out *bufio.Writer, mu *sync.Mutex, name string) *ConsoleStreamWriter {
	prefix := ""
	if name != "" {
		prefix = "[" + name + "] "
	}
	return &ConsoleStreamWriter{
		mu:     mu,
		writer: out,
		prefix: prefix,
	}
}

// NewStdoutWriter creates a stand-alone writer over w
func NewStdoutWriter(w io.Writer, name string) *ConsoleStreamWriter {
	return NewConsoleStreamWriter(bufio.NewWriter(w), &sync.Mutex{}, name)
}

// Write writes data, prefixing every line with the stream name
func (w *ConsoleStreamWriter) Write(data []byte) error {
	if len(data) == 0 {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return fmt.Errorf("write to closed stream writer %s", w.prefix)
	}

	start := 0
	for i, b := range data {
		if b != '\n' {
			continue
		}
		if err := w.writeLine(data[start : i+1]); err != nil {
			return err
		}
		start = i + 1
	}
	if start < len(data) {
		if err := w.writeLine(append(data[start:len(data):len(data)], '\n')); err != nil {
			return err
		}
	}
	return nil
}

func (w *ConsoleStreamWriter) writeLine(line []byte) error {
	n, err := w.writer.WriteString(w.prefix)
	w.totalBytes += int64(n)
	if err != nil {
		return fmt.Errorf("write failed: %w", err)
	}
	n, err = w.writer.Write(line)
	w.totalBytes += int64(n)
	if err != nil {
		return fmt.Errorf("write failed: %w", err)
	}
	return nil
}

// Flush flushes buffered data
func (w *ConsoleStreamWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.writer.Flush(); err != nil {
		return fmt.Errorf("flush failed: %w", err)
	}
	return nil
}

// Close flushes remaining data; later writes fail
func (w *ConsoleStreamWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.writer.Flush(); err != nil {
		return fmt.Errorf("flush failed: %w", err)
	}
	return nil
}

// TotalBytes returns total bytes written
func (w *ConsoleStreamWriter) TotalBytes() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.totalBytes
}
