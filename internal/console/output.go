package console

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/text"
)

// Output writes user-facing console text. Unlike logging it carries no
// timestamps or levels.
type Output struct {
	w io.Writer
}

// NewOutput returns an Output writing to w.
func NewOutput(w io.Writer) *Output {
	return &Output{w: w}
}

// Writer returns the underlying writer.
func (o *Output) Writer() io.Writer {
	return o.w
}

func (o *Output) Line(format string, args ...interface{}) {
	fmt.Fprintf(o.w, format+"\n", args...)
}

func (o *Output) Info(format string, args ...interface{}) {
	fmt.Fprintln(o.w, text.FgHiBlue.Sprint(fmt.Sprintf(format, args...)))
}

func (o *Output) Success(format string, args ...interface{}) {
	fmt.Fprintln(o.w, text.FgGreen.Sprint(fmt.Sprintf(format, args...)))
}

func (o *Output) Warn(format string, args ...interface{}) {
	fmt.Fprintln(o.w, text.FgYellow.Sprint(fmt.Sprintf(format, args...)))
}

func (o *Output) Error(format string, args ...interface{}) {
	fmt.Fprintln(o.w, text.FgRed.Sprint(fmt.Sprintf(format, args...)))
}

// Empty prints the message shown in place of an empty table.
func (o *Output) Empty(message string) {
	fmt.Fprintf(o.w, "%s %s\n", text.FgYellow.Sprint("📋"), text.FgYellow.Sprint(message))
}
