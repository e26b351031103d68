// Package parfile reads and writes LISFlood-FP parameter files.
//
// The format is flat and line-oriented: every non-blank, non-comment line
// contributes its first two whitespace-separated tokens as a KEY VALUE
// pair and any remaining tokens are discarded. Comment lines start with
// '!', '/' or '#'. The file has no sections; the adapter addresses all
// keys under one synthetic "general" namespace (see Qualify and Key).
//
// Parsing is a one-way transform with respect to formatting: comments,
// blank lines and trailing tokens are dropped and cannot be restored by
// Write. The semantic key/value content round-trips losslessly, in
// insertion order, with case-sensitive keys.
package parfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// CommentMarkers are the characters that open a comment line.
const CommentMarkers = "!/#"

// Section is the synthetic namespace all parameters live under. The
// native format has no section headers, so the label is fixed.
const Section = "general"

// ParseError reports a malformed parameter line.
type ParseError struct {
	Line int
	Text string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("par file line %d: expected KEY VALUE, got %q", e.Line, e.Text)
}

// File is an ordered key→value table parsed from a parameter file.
type File struct {
	keys   []string
	values map[string]string
}

// New returns an empty File.
func New() *File {
	return &File{values: make(map[string]string)}
}

// Parse reads a parameter file from r. A duplicate key keeps its first
// position but takes the last value seen.
func Parse(r io.Reader) (*File, error) {
	f := New()
	sc := bufio.NewScanner(r)
	ln := 0
	for sc.Scan() {
		ln++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.ContainsRune(CommentMarkers, rune(line[0])) {
			continue
		}
		tok := strings.Fields(line)
		if len(tok) < 2 {
			return nil, &ParseError{Line: ln, Text: line}
		}
		f.Set(tok[0], tok[1])
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read par file: %w", err)
	}
	return f, nil
}

// ParseFile parses the parameter file at path.
func ParseFile(path string) (*File, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open par file: %w", err)
	}
	defer fp.Close()
	return Parse(fp)
}

// Write serializes the file in insertion order as KEY VALUE lines.
// Embedded newlines in a value are continued with a tab on the following
// lines; a trailing blank line closes the record.
func (f *File) Write(w io.Writer) error {
	for _, k := range f.keys {
		v := strings.ReplaceAll(f.values[k], "\n", "\n\t")
		if _, err := fmt.Fprintf(w, "%s %s\n", k, v); err != nil {
			return fmt.Errorf("failed to write par file: %w", err)
		}
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return fmt.Errorf("failed to write par file: %w", err)
	}
	return nil
}

// WriteFile serializes the file to path, replacing any existing file.
func (f *File) WriteFile(path string) error {
	fp, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create par file: %w", err)
	}
	if err := f.Write(fp); err != nil {
		fp.Close()
		return err
	}
	return fp.Close()
}

// Get returns the value for key and whether it is present.
func (f *File) Get(key string) (string, bool) {
	v, ok := f.values[key]
	return v, ok
}

// Set stores value under key, appending the key if new.
func (f *File) Set(key, value string) {
	if _, ok := f.values[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.values[key] = value
}

// SetDefault stores value under key only if the key is absent.
func (f *File) SetDefault(key, value string) {
	if _, ok := f.values[key]; !ok {
		f.Set(key, value)
	}
}

// Keys returns the keys in insertion order.
func (f *File) Keys() []string {
	out := make([]string, len(f.keys))
	copy(out, f.keys)
	return out
}

// Len returns the number of keys.
func (f *File) Len() int { return len(f.keys) }

// Key strips any caller-supplied namespace prefix from name, keeping the
// portion after the first ':'. Whatever prefix the caller uses, the
// parameter is looked up in the single flat table.
func Key(name string) string {
	if i := strings.Index(name, ":"); i >= 0 {
		return name[i+1:]
	}
	return name
}

// Qualify returns name re-prefixed with the synthetic section label.
func Qualify(name string) string {
	return Section + ":" + Key(name)
}
