// Package output writes downloaded comments to files: JSON lines, a pretty
// {"comments": [...]} document, or a SQLite database.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/anatolykoptev/go_ytcomments/internal/engine"
)

// Writer receives comments in emission order. Close must be called once all
// comments are written; it finishes the document and releases the file.
type Writer interface {
	Write(rec engine.CommentRecord) error
	Count() int
	Close() error
}

// IsSQLitePath reports whether path selects the SQLite sink.
func IsSQLitePath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}

// Open creates the output file at path, making parent directories as needed.
// The sink is chosen from the extension; pretty only affects JSON output.
func Open(path string, pretty bool) (Writer, error) {
	if err := EnsureDir(path); err != nil {
		return nil, err
	}
	if IsSQLitePath(path) {
		return OpenSQLite(path)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("output: create %s: %w", path, err)
	}
	if pretty {
		return NewPretty(f), nil
	}
	return NewJSONLines(f), nil
}

// EnsureDir creates the parent directory of path.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("output: mkdir %s: %w", dir, err)
	}
	return nil
}
