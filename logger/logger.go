// Package logger prints poesync's prefixed, colour-tagged log lines.
//
// Every line has the form "poesync <TAG> <text>". Info lines go to the
// output stream, error lines to the error stream.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"
)

// Prefix is written at the start of every line.
const Prefix = "poesync"

var dumper = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// Logger writes info and error lines. It is safe for concurrent use.
type Logger struct {
	mu  sync.Mutex
	out io.Writer
	err io.Writer

	infoTag  string
	errorTag string
}

// New returns a logger writing info lines to out and errors to errOut.
func New(out, errOut io.Writer) *Logger {
	return &Logger{
		out:      out,
		err:      errOut,
		infoTag:  color.New(color.FgGreen).Sprint("INFO"),
		errorTag: color.New(color.FgRed).Sprint("ERR"),
	}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return New(io.Discard, io.Discard)
}

// Info logs each message to the output stream.
func (l *Logger) Info(msg ...any) {
	l.write(l.out, l.infoTag, msg)
}

// Infof formats and logs a single info message.
func (l *Logger) Infof(format string, args ...any) {
	l.Info(fmt.Sprintf(format, args...))
}

// Error logs each message to the error stream.
func (l *Logger) Error(msg ...any) {
	l.write(l.err, l.errorTag, msg)
}

// Errorf formats and logs a single error message.
func (l *Logger) Errorf(format string, args ...any) {
	l.Error(fmt.Sprintf(format, args...))
}

func (l *Logger) write(w io.Writer, tag string, msgs []any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, m := range msgs {
		for _, line := range render(m) {
			fmt.Fprintf(w, "%s %s %s\n", Prefix, tag, line)
		}
	}
}

// render turns one message into the lines to print. Strings and errors are
// split on newlines with blank lines dropped; composite values are dumped
// as a single entry; anything else is JSON-encoded.
func render(m any) []string {
	switch v := m.(type) {
	case string:
		return splitLines(v)
	case error:
		return splitLines(v.Error())
	case nil:
		return []string{"null"}
	}

	switch reflect.ValueOf(m).Kind() {
	case reflect.Struct, reflect.Map, reflect.Slice, reflect.Array, reflect.Pointer, reflect.Interface:
		return []string{strings.TrimRight(dumper.Sdump(m), "\n")}
	}

	b, err := json.Marshal(m)
	if err != nil {
		return []string{fmt.Sprint(m)}
	}
	return []string{string(b)}
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}
