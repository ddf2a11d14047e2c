// Package settings stores POEditor API tokens per project so they do not
// have to be passed on every invocation.
//
// Tokens are stored in the XDG data directory:
//
//	$XDG_DATA_HOME/poesync/auth.json  (default: ~/.local/share/poesync/auth.json)
//
// The file is a JSON object keyed by POEditor project id:
//
//	{ "12345": { "token": "abcd...", "name": "web app" } }
//
// File permissions are 0600 (owner read/write only).
//
// Lookup order for a token:
//  1. --token flag (highest priority)
//  2. POEDITOR_API_TOKEN environment variable / .poesync.yaml
//  3. This credential store
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

const (
	dataDirName = "poesync"
	fileName    = "auth.json"
)

// Info is the stored entry for one project.
type Info struct {
	Token string `json:"token"`
	// Name is an optional label shown by "auth list".
	Name string `json:"name,omitempty"`
}

// Store holds all project credentials, keyed by project id.
type Store map[string]*Info

// ---------------------------------------------------------------------------
// File path
// ---------------------------------------------------------------------------

// dataDir returns the XDG data directory for poesync.
func dataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, dataDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", dataDirName), nil
}

func filePath() (string, error) {
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// FilePath returns the auth.json file path for display purposes.
func FilePath() string {
	p, err := filePath()
	if err != nil {
		return ""
	}
	return p
}

// ---------------------------------------------------------------------------
// Load / Save
// ---------------------------------------------------------------------------

// Load reads the credential store from disk.
// Returns an empty store if the file doesn't exist or is invalid.
func Load() Store {
	path, err := filePath()
	if err != nil {
		return make(Store)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return make(Store)
	}

	var store Store
	if err := json.Unmarshal(data, &store); err != nil || store == nil {
		return make(Store)
	}
	return store
}

// Save writes the credential store to disk with 0600 permissions.
func Save(store Store) error {
	path, err := filePath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling credentials: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing auth file: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Token helpers
// ---------------------------------------------------------------------------

// SetToken stores the token for a project (upsert). An empty name keeps the
// existing label.
func SetToken(projectID, token, name string) error {
	store := Load()
	if name == "" && store[projectID] != nil {
		name = store[projectID].Name
	}
	store[projectID] = &Info{Token: token, Name: name}
	return Save(store)
}

// GetToken returns the stored token for a project, or "".
func GetToken(projectID string) string {
	info := Load()[projectID]
	if info == nil {
		return ""
	}
	return info.Token
}

// Remove deletes the token for a project.
func Remove(projectID string) error {
	store := Load()
	if _, ok := store[projectID]; !ok {
		return nil
	}
	delete(store, projectID)
	return Save(store)
}

// RemoveAll removes all stored credentials.
func RemoveAll() error {
	path, err := filePath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing auth file: %w", err)
	}
	return nil
}

// Projects returns the stored project ids, sorted.
func (s Store) Projects() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ResolveToken picks the token to use: the explicit value if set, otherwise
// the stored one for projectID.
func ResolveToken(explicit, projectID string) string {
	if explicit != "" {
		return explicit
	}
	if projectID == "" {
		return ""
	}
	return GetToken(projectID)
}

// MaskKey returns a masked version of a token for display.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
