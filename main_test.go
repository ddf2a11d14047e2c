package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/fatih/color"
)

// fakePOEditor serves one English export and records pushed terms.
type fakePOEditor struct {
	srv *httptest.Server

	mu     sync.Mutex
	export string
	added  []string
	tokens []string
}

func (f *fakePOEditor) pushed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.added...)
}

func newFakePOEditor(t *testing.T, export string) *fakePOEditor {
	t.Helper()
	f := &fakePOEditor{export: export}

	mux := http.NewServeMux()
	mux.HandleFunc("/languages/list", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, envelope(`{"languages":[{"name":"English","code":"en"}]}`))
	})
	mux.HandleFunc("/projects/export", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, envelope(fmt.Sprintf(`{"url":%q}`, f.srv.URL+"/download/"+r.FormValue("language"))))
	})
	mux.HandleFunc("/download/en", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		fmt.Fprint(w, f.export)
	})
	mux.HandleFunc("/terms/list", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.tokens = append(f.tokens, r.FormValue("api_token"))
		f.mu.Unlock()
		fmt.Fprint(w, envelope(`{"terms":[{"term":"hello","translation":{"content":"Hello"}}]}`))
	})
	mux.HandleFunc("/terms/add", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.added = append(f.added, r.FormValue("data"))
		f.mu.Unlock()
		fmt.Fprint(w, envelope(`{"terms":{"parsed":1,"added":1}}`))
	})

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func envelope(result string) string {
	return `{"response":{"status":"success","code":"200","message":"OK"},"result":` + result + `}`
}

// isolate clears every environment variable the CLI reads and points the
// token store at a temporary directory.
func isolate(t *testing.T) {
	t.Helper()
	color.NoColor = true
	for _, key := range []string{
		"POEDITOR_API_TOKEN", "POEDITOR_PROJECT_ID", "POEDITOR_BASE_URL",
		"POESYNC_OUT_DIR", "POESYNC_FILE_NAME", "POESYNC_PROXY", "POESYNC_TIMEOUT",
		"POESYNC_CONCURRENCY", "POESYNC_NO_JOURNAL",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	t.Setenv("XDG_DATA_HOME", t.TempDir())
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeLocal(t *testing.T, root, lang, content string) string {
	t.Helper()
	dir := filepath.Join(root, "lib", "locales", lang)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "common.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNoArgsPrintsHelp(t *testing.T) {
	isolate(t)

	code, out, _ := runCLI(t)
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	if !strings.Contains(out, "Usage:") || !strings.Contains(out, "--compare") {
		t.Fatalf("help output missing usage:\n%s", out)
	}
}

func TestVersionFlag(t *testing.T) {
	isolate(t)

	code, out, _ := runCLI(t, "--version")
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	if !strings.HasPrefix(out, "poesync version dev") {
		t.Fatalf("version output = %q", out)
	}
}

func TestMissingTokenFails(t *testing.T) {
	isolate(t)

	code, _, errOut := runCLI(t, "--id", "1", "--root", t.TempDir())
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(errOut, "API token is required") {
		t.Fatalf("stderr = %q", errOut)
	}
}

func TestCompareNoChanges(t *testing.T) {
	isolate(t)
	f := newFakePOEditor(t, `{"hello":"Hello"}`)
	t.Setenv("POEDITOR_BASE_URL", f.srv.URL)

	root := t.TempDir()
	writeLocal(t, root, "en", `{"hello":"Hi"}`)

	code, out, errOut := runCLI(t, "--compare", "--token", "tok", "--id", "1", "--root", root)
	if code != 0 {
		t.Fatalf("exit code = %d, want 0\nstdout: %s\nstderr: %s", code, out, errOut)
	}
	if !strings.Contains(out, "No changes found") {
		t.Fatalf("stdout = %q", out)
	}
}

func TestCompareDetectsLocalTerm(t *testing.T) {
	isolate(t)
	f := newFakePOEditor(t, `{"hello":"Hello"}`)
	t.Setenv("POEDITOR_BASE_URL", f.srv.URL)

	root := t.TempDir()
	path := writeLocal(t, root, "en", `{"hello":"Hello","bye":"Bye"}`)

	code, _, errOut := runCLI(t, "-c", "-t", "tok", "-i", "1", "--root", root)
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(errOut, "please run `poesync --token=[API_TOKEN] --id=[PROJECT_ID]`") {
		t.Fatalf("stderr = %q", errOut)
	}

	got, _ := os.ReadFile(path)
	if string(got) != `{"hello":"Hello","bye":"Bye"}` {
		t.Fatalf("compare modified the local file: %s", got)
	}
	if pushed := f.pushed(); len(pushed) != 0 {
		t.Fatalf("compare pushed terms: %v", pushed)
	}
}

func TestSyncWritesAndPushes(t *testing.T) {
	isolate(t)
	f := newFakePOEditor(t, `{"hello":"Bonjour"}`)

	root := t.TempDir()
	path := writeLocal(t, root, "en", `{"hello":"Hello","bye":"Bye"}`)
	cfg := fmt.Sprintf("token: tok\nproject_id: \"1\"\nbase_url: %s\n", f.srv.URL)
	if err := os.WriteFile(filepath.Join(root, ".poesync.yaml"), []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}

	code, out, errOut := runCLI(t, "--root", root)
	if code != 0 {
		t.Fatalf("exit code = %d, want 0\nstdout: %s\nstderr: %s", code, out, errOut)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "{\n  \"hello\": \"Bonjour\",\n  \"bye\": \"Bye\"\n}"
	if string(got) != want {
		t.Fatalf("written file:\n%s\nwant:\n%s", got, want)
	}

	pushed := f.pushed()
	if len(pushed) != 1 || !strings.Contains(pushed[0], `"term":"bye"`) {
		t.Fatalf("pushed = %v, want one batch with bye", pushed)
	}
	if !strings.Contains(out, "Syncing complete") {
		t.Fatalf("stdout = %q", out)
	}
	if _, err := os.Stat(filepath.Join(root, ".poesync.lock")); err != nil {
		t.Fatalf("journal not written: %v", err)
	}
}

func TestAuthLoginListLogout(t *testing.T) {
	isolate(t)

	if code, _, errOut := runCLI(t, "auth", "login", "--id", "7", "--token", "abcdef123456", "--name", "web"); code != 0 {
		t.Fatalf("login exit = %d: %s", code, errOut)
	}

	_, out, _ := runCLI(t, "auth", "list")
	if !strings.Contains(out, "7\t") || !strings.Contains(out, "web") || strings.Contains(out, "abcdef123456") {
		t.Fatalf("list output = %q", out)
	}

	if code, _, errOut := runCLI(t, "auth", "logout", "--id", "7"); code != 0 {
		t.Fatalf("logout exit = %d: %s", code, errOut)
	}
	_, out, _ = runCLI(t, "auth", "list")
	if !strings.Contains(out, "No stored tokens") {
		t.Fatalf("list after logout = %q", out)
	}
}

func TestStoredTokenIsUsed(t *testing.T) {
	isolate(t)
	f := newFakePOEditor(t, `{"hello":"Hello"}`)
	t.Setenv("POEDITOR_BASE_URL", f.srv.URL)

	if code, _, errOut := runCLI(t, "auth", "login", "--id", "1", "--token", "tok"); code != 0 {
		t.Fatalf("login exit = %d: %s", code, errOut)
	}

	code, out, errOut := runCLI(t, "terms", "--id", "1", "--lang", "en")
	if code != 0 {
		t.Fatalf("terms exit = %d\nstdout: %s\nstderr: %s", code, out, errOut)
	}
	if out != "hello\tHello\n" {
		t.Fatalf("terms output = %q", out)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.tokens) != 1 || f.tokens[0] != "tok" {
		t.Fatalf("tokens sent = %v, want [tok]", f.tokens)
	}
}
