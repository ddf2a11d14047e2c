// Package lockfile implements .poesync.lock, a journal of the translation
// files written by the last sync. It stores an MD5 checksum of every term
// and value per language, so a later compare run can tell which local
// entries were edited since the files were last synchronized.
//
// The journal is stored in the project root as .poesync.lock.
package lockfile

import (
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/minios-linux/poesync/terms"
)

// LockFileName is the default lock file name.
const LockFileName = ".poesync.lock"

// Version is the lock file format version.
const Version = 1

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// LockFile represents the .poesync.lock file structure.
type LockFile struct {
	Version   int                          `yaml:"version"`
	Checksums map[string]map[string]string `yaml:"checksums"` // language -> term -> md5

	mu   sync.Mutex `yaml:"-"`
	path string     `yaml:"-"`
}

// ---------------------------------------------------------------------------
// Loading and saving
// ---------------------------------------------------------------------------

// Load reads a lock file from the given directory.
// Returns an empty lock file if the file doesn't exist.
func Load(dir string) (*LockFile, error) {
	path := filepath.Join(dir, LockFileName)
	lf := &LockFile{
		Version:   Version,
		Checksums: make(map[string]map[string]string),
		path:      path,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return lf, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, lf); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	lf.path = path

	if lf.Checksums == nil {
		lf.Checksums = make(map[string]map[string]string)
	}

	return lf, nil
}

// Save writes the lock file to disk.
func (lf *LockFile) Save() error {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	if lf.path == "" {
		return fmt.Errorf("lock file path not set")
	}

	data, err := yaml.Marshal(lf)
	if err != nil {
		return fmt.Errorf("marshaling lock file: %w", err)
	}

	if err := os.WriteFile(lf.path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", lf.path, err)
	}

	return nil
}

// Path returns the lock file path.
func (lf *LockFile) Path() string {
	return lf.path
}

// ---------------------------------------------------------------------------
// Checksum operations
// ---------------------------------------------------------------------------

// Hash computes the MD5 hex digest of a string.
func Hash(s string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(s)))
}

// EntryContent builds the hashed content for a term. The key is included so
// renaming a key counts as a change.
func EntryContent(t terms.Term) string {
	return t.Term + "\x00" + string(t.Value())
}

// Record replaces the checksums of a language with those of list.
func (lf *LockFile) Record(lang string, list []terms.Term) {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	sums := make(map[string]string, len(list))
	for _, t := range list {
		sums[t.Term] = Hash(EntryContent(t))
	}
	lf.Checksums[lang] = sums
}

// IsChanged reports whether a term is new or differs from the recorded one.
func (lf *LockFile) IsChanged(lang string, t terms.Term) bool {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	sums, ok := lf.Checksums[lang]
	if !ok {
		return true
	}
	old, ok := sums[t.Term]
	if !ok {
		return true
	}
	return old != Hash(EntryContent(t))
}

// Changed returns the keys of list that are new or edited since the last
// Record for lang, in list order. A language never recorded yields nil.
func (lf *LockFile) Changed(lang string, list []terms.Term) []string {
	if !lf.Has(lang) {
		return nil
	}

	var out []string
	for _, t := range list {
		if lf.IsChanged(lang, t) {
			out = append(out, t.Term)
		}
	}
	return out
}

// Removed returns the recorded keys of lang that are absent from list, sorted.
func (lf *LockFile) Removed(lang string, list []terms.Term) []string {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	present := make(map[string]bool, len(list))
	for _, t := range list {
		present[t.Term] = true
	}

	var out []string
	for key := range lf.Checksums[lang] {
		if !present[key] {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

// Has reports whether lang was ever recorded.
func (lf *LockFile) Has(lang string) bool {
	lf.mu.Lock()
	defer lf.mu.Unlock()
	_, ok := lf.Checksums[lang]
	return ok
}

// RemoveLanguage forgets a language.
func (lf *LockFile) RemoveLanguage(lang string) {
	lf.mu.Lock()
	defer lf.mu.Unlock()
	delete(lf.Checksums, lang)
}

// ---------------------------------------------------------------------------
// Stats
// ---------------------------------------------------------------------------

// Stats returns the number of languages and total keys in the lock file.
func (lf *LockFile) Stats() (languages, keys int) {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	languages = len(lf.Checksums)
	for _, m := range lf.Checksums {
		keys += len(m)
	}
	return
}

// Languages returns the sorted list of recorded languages.
func (lf *LockFile) Languages() []string {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	langs := make([]string, 0, len(lf.Checksums))
	for l := range lf.Checksums {
		langs = append(langs, l)
	}
	sort.Strings(langs)
	return langs
}

// Summary returns a human-readable summary string.
func (lf *LockFile) Summary() string {
	languages, keys := lf.Stats()
	if languages == 0 {
		return "empty"
	}

	var parts []string
	for _, l := range lf.Languages() {
		lf.mu.Lock()
		n := len(lf.Checksums[l])
		lf.mu.Unlock()
		parts = append(parts, fmt.Sprintf("%s: %d keys", l, n))
	}
	return fmt.Sprintf("%d languages, %d keys (%s)", languages, keys, strings.Join(parts, ", "))
}
