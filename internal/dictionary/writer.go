package dictionary

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// IOError reports a failure to open, write or flush the dictionary.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("could not %s dictionary file %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// File is the destination a Writer appends to.
type File interface {
	io.Writer
	Sync() error
	Close() error
}

// Writer appends entries to a dictionary file, flushing each one to stable
// storage before returning.
type Writer struct {
	path   string
	f      File
	minLen int
	maxLen int
	count  int
}

// Open opens path for appending, creating it if needed. Existing content is
// never truncated. Entries shorter than minLen or longer than maxLen are
// rejected by Emit.
func Open(path string, minLen, maxLen int) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}
	return NewWriter(f, path, minLen, maxLen), nil
}

// NewWriter wraps an already open destination. path is used in errors.
func NewWriter(f File, path string, minLen, maxLen int) *Writer {
	return &Writer{path: path, f: f, minLen: minLen, maxLen: maxLen}
}

// Emit renders and appends one entry. It reports false without writing when
// the entry length is out of bounds.
func (w *Writer) Emit(entry []byte) (bool, error) {
	if len(entry) < w.minLen || len(entry) > w.maxLen {
		return false, nil
	}
	if w.f == nil {
		return false, &IOError{Op: "write", Path: w.path, Err: os.ErrClosed}
	}
	if _, err := io.WriteString(w.f, Render(entry)+"\n"); err != nil {
		return false, &IOError{Op: "write", Path: w.path, Err: err}
	}
	if err := w.f.Sync(); err != nil {
		return false, &IOError{Op: "sync", Path: w.path, Err: err}
	}
	w.count++
	return true, nil
}

// Count returns the number of entries written through w.
func (w *Writer) Count() int { return w.count }

// Path returns the destination path.
func (w *Writer) Path() string { return w.path }

// Close releases the destination. It is safe to call more than once.
func (w *Writer) Close() error {
	if w.f == nil {
		return nil
	}
	err := w.f.Close()
	w.f = nil
	if err != nil {
		return &IOError{Op: "close", Path: w.path, Err: err}
	}
	return nil
}

// Read parses a dictionary, skipping blank lines and # comments.
func Read(r io.Reader) ([][]byte, error) {
	var entries [][]byte
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		e, err := Decode(line)
		if err != nil {
			return entries, fmt.Errorf("line %d: %w", lineNo, err)
		}
		entries = append(entries, e)
	}
	return entries, sc.Err()
}

// ReadFile parses the dictionary at path.
func ReadFile(path string) ([][]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()
	return Read(f)
}
