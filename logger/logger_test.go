package logger

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func newTestLogger(t *testing.T) (*Logger, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	old := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = old })

	var out, errOut bytes.Buffer
	return New(&out, &errOut), &out, &errOut
}

func TestInfoSplitsLinesAndDropsBlanks(t *testing.T) {
	l, out, errOut := newTestLogger(t)

	l.Info("first\n\nsecond\n")

	assert.Equal(t, "poesync INFO first\npoesync INFO second\n", out.String())
	assert.Empty(t, errOut.String())
}

func TestErrorGoesToErrorStream(t *testing.T) {
	l, out, errOut := newTestLogger(t)

	l.Error(errors.New("boom"))
	l.Errorf("failed %d", 2)

	assert.Empty(t, out.String())
	assert.Equal(t, "poesync ERR boom\npoesync ERR failed 2\n", errOut.String())
}

func TestScalarsAreJSONEncoded(t *testing.T) {
	l, out, _ := newTestLogger(t)

	l.Info(42, true, nil)

	assert.Equal(t, "poesync INFO 42\npoesync INFO true\npoesync INFO null\n", out.String())
}

func TestStructsArePrettyPrinted(t *testing.T) {
	l, out, _ := newTestLogger(t)

	l.Info(struct{ Language string }{Language: "fr"})

	got := out.String()
	assert.True(t, strings.HasPrefix(got, "poesync INFO "), got)
	assert.Contains(t, got, `Language: (string) (len=2) "fr"`)
}

func TestTagsAreColouredOnTerminals(t *testing.T) {
	old := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = old })

	var out bytes.Buffer
	New(&out, &out).Info("x")

	assert.Contains(t, out.String(), "\x1b[32mINFO\x1b[0m")
}
