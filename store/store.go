// Package store reads and writes the per-language translation files.
//
// The expected layout is one directory per language code under the
// translations root, each holding a flat JSON object:
//
//	lib/locales/
//	    fr/common.json   { "hello": "Bonjour" }
//	    de/common.json   { "hello": "Hallo" }
//
// Files are written with 2-space indentation and pure ASCII output: every
// character from U+007F upwards is stored as a \uXXXX escape.
package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/minios-linux/poesync/terms"
)

// DefaultFileName is the translation file name inside each language directory.
const DefaultFileName = "common.json"

// Store is a translations root on disk.
type Store struct {
	dir      string
	fileName string
}

// New returns a store rooted at dir. An empty fileName means DefaultFileName.
func New(dir, fileName string) *Store {
	if fileName == "" {
		fileName = DefaultFileName
	}
	return &Store{dir: dir, fileName: fileName}
}

// Path returns the translation file path for a language.
func (s *Store) Path(lang string) string {
	return filepath.Join(s.dir, lang, s.fileName)
}

// Load reads a language file. A missing or empty file yields an error
// matching fs.ErrNotExist; a malformed file yields a parse error.
func (s *Store) Load(lang string) ([]terms.Term, error) {
	path := s.Path(lang)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("reading %s: empty file: %w", path, fs.ErrNotExist)
	}
	list, err := terms.ParseObject(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return list, nil
}

// Touch creates an empty placeholder file for a language, replacing
// whatever was there.
func (s *Store) Touch(lang string) error {
	path := s.Path(lang)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	if err := os.WriteFile(path, nil, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Write overwrites a language file with list and returns its path.
func (s *Store) Write(lang string, list []terms.Term) (string, error) {
	path := s.Path(lang)

	data, err := Marshal(list)
	if err != nil {
		return path, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return path, fmt.Errorf("creating directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return path, fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// Languages returns the language directories present under the root that
// contain a translation file, sorted.
func (s *Store) Languages() []string {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil
	}

	var langs []string
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if _, err := os.Stat(s.Path(entry.Name())); err == nil {
			langs = append(langs, entry.Name())
		}
	}
	sort.Strings(langs)
	return langs
}

// Marshal renders list as a flat JSON object in list order with 2-space
// indentation and ASCII-only output. Later duplicates of a key are dropped.
func Marshal(list []terms.Term) ([]byte, error) {
	if len(list) == 0 {
		return []byte("{}"), nil
	}

	var b bytes.Buffer
	b.WriteString("{\n")

	seen := make(map[string]bool, len(list))
	first := true
	for _, t := range list {
		if seen[t.Term] {
			continue
		}
		seen[t.Term] = true

		key, err := encode(t.Term)
		if err != nil {
			return nil, fmt.Errorf("encoding key %q: %w", t.Term, err)
		}

		var value bytes.Buffer
		if err := json.Indent(&value, t.Value(), "  ", "  "); err != nil {
			return nil, fmt.Errorf("encoding value for key %q: %w", t.Term, err)
		}

		if !first {
			b.WriteString(",\n")
		}
		first = false
		b.WriteString("  ")
		b.Write(key)
		b.WriteString(": ")
		b.Write(value.Bytes())
	}
	b.WriteString("\n}")

	return EscapeNonASCII(b.Bytes()), nil
}

// encode JSON-encodes a string without HTML escaping.
func encode(s string) ([]byte, error) {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimRight(b.Bytes(), "\n"), nil
}

// EscapeNonASCII replaces every rune at or above U+007F with a lowercase
// \uXXXX escape, using surrogate pairs above U+FFFF. The input must be JSON
// whose non-ASCII bytes only occur inside strings.
func EscapeNonASCII(data []byte) []byte {
	var b bytes.Buffer
	b.Grow(len(data))
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		data = data[size:]
		if r < 0x7f {
			b.WriteRune(r)
			continue
		}
		if r > 0xffff {
			hi, lo := utf16.EncodeRune(r)
			fmt.Fprintf(&b, `\u%04x\u%04x`, hi, lo)
			continue
		}
		fmt.Fprintf(&b, `\u%04x`, r)
	}
	return b.Bytes()
}
