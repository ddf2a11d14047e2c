package terms

import (
	"testing"
)

func TestParseObject_PreservesOrderAndRawValues(t *testing.T) {
	data := []byte(`{
  "First key": "First value",
  "apple": {"one": "pomme", "other": "pommes"},
  "Third key": ""
}`)

	got, err := ParseObject(data)
	if err != nil {
		t.Fatalf("ParseObject error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 terms, got %d", len(got))
	}
	if got[0].Term != "First key" || got[1].Term != "apple" || got[2].Term != "Third key" {
		t.Fatalf("unexpected key order: %v", got)
	}
	if got[0].Text() != "First value" {
		t.Errorf("Text() = %q, want %q", got[0].Text(), "First value")
	}
	if got[1].Text() != `{"one": "pomme", "other": "pommes"}` {
		t.Errorf("object Text() = %q", got[1].Text())
	}
}

func TestParseObject_DuplicateKeyKeepsFirstPosition(t *testing.T) {
	got, err := ParseObject([]byte(`{"a": "1", "b": "2", "a": "3"}`))
	if err != nil {
		t.Fatalf("ParseObject error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 terms, got %d", len(got))
	}
	if got[0].Term != "a" || got[0].Text() != "3" {
		t.Fatalf("duplicate key = %#v, want a=3 first", got[0])
	}
}

func TestParseObject_Invalid(t *testing.T) {
	cases := map[string]string{
		"empty":     ``,
		"array":     `[{"term": "a"}]`,
		"truncated": `{"broken":`,
	}
	for name, in := range cases {
		if _, err := ParseObject([]byte(in)); err == nil {
			t.Errorf("%s: expected parse error", name)
		}
	}
}

func TestValueDefaultsToEmptyString(t *testing.T) {
	if got := string(Term{Term: "x"}.Value()); got != `""` {
		t.Fatalf("Value() = %s, want empty JSON string", got)
	}
	if got := string(New("x", "y").Value()); got != `"y"` {
		t.Fatalf("Value() = %s, want \"y\"", got)
	}
}

func TestStringDoesNotEscapeHTML(t *testing.T) {
	if got := string(String("<b>Tom & Jerry</b>")); got != `"<b>Tom & Jerry</b>"` {
		t.Fatalf("String() = %s", got)
	}
	if got := New("k", "a<b").Text(); got != "a<b" {
		t.Fatalf("Text() = %q, want %q", got, "a<b")
	}
}
