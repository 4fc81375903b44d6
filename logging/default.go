package logging

import (
	"fmt"
	"io"
	"log"
	"maps"
	"os"
	"slices"
	"strings"
)

// DefaultLogger writes levelled lines through the standard log package.
// Debug/Info go to the out writer, Warn and Error to the err writer, with
// yellow/red highlighting when attached to a terminal.
type DefaultLogger struct {
	out       *log.Logger
	errOut    *log.Logger
	level     *Level
	fields    Fields
	useColors bool
}

// NewDefaultLogger creates a logger writing to stdout/stderr
func NewDefaultLogger() *DefaultLogger {
	l := NewDefaultLoggerWithWriters(os.Stdout, os.Stderr)
	if info, _ := os.Stderr.Stat(); info != nil {
		l.useColors = info.Mode()&os.ModeCharDevice != 0
	}
	return l
}

// NewDefaultLoggerWithWriters creates an uncolored logger over the given
// writers. Timestamps are omitted so output is stable under test.
func NewDefaultLoggerWithWriters(out, errOut io.Writer) *DefaultLogger {
	level := InfoLevel
	return &DefaultLogger{
		out:    log.New(out, "", 0),
		errOut: log.New(errOut, "", 0),
		level:  &level,
		fields: make(Fields),
	}
}

func (d *DefaultLogger) log(level Level, err error, msg string, fields ...Fields) {
	if level < *d.level {
		return
	}

	all := maps.Clone(d.fields)
	for _, f := range fields {
		maps.Copy(all, f)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", level, msg)
	if err != nil {
		fmt.Fprintf(&b, ": %v", err)
	}
	for _, k := range slices.Sorted(maps.Keys(all)) {
		fmt.Fprintf(&b, " %s=%v", k, all[k])
	}
	line := b.String()

	if level < WarnLevel {
		d.out.Println(line)
		return
	}
	if d.useColors {
		color := ColorYellow
		if level == ErrorLevel {
			color = ColorRed
		}
		line = color + line + ColorReset
	}
	d.errOut.Println(line)
}

func (d *DefaultLogger) Debug(msg string, fields ...Fields) {
	d.log(DebugLevel, nil, msg, fields...)
}

func (d *DefaultLogger) Info(msg string, fields ...Fields) {
	d.log(InfoLevel, nil, msg, fields...)
}

func (d *DefaultLogger) Warn(msg string, fields ...Fields) {
	d.log(WarnLevel, nil, msg, fields...)
}

func (d *DefaultLogger) Error(err error, msg string, fields ...Fields) {
	d.log(ErrorLevel, err, msg, fields...)
}

// WithFields returns a child logger. The child shares its parent's level so
// that SetLevel on the root also affects component loggers created earlier.
func (d *DefaultLogger) WithFields(fields Fields) Logger {
	child := *d
	child.fields = maps.Clone(d.fields)
	maps.Copy(child.fields, fields)
	return &child
}

func (d *DefaultLogger) SetLevel(level Level) {
	*d.level = level
}

// NoOpLogger discards everything
type NoOpLogger struct{}

func (NoOpLogger) Debug(string, ...Fields)        {}
func (NoOpLogger) Info(string, ...Fields)         {}
func (NoOpLogger) Warn(string, ...Fields)         {}
func (NoOpLogger) Error(error, string, ...Fields) {}
func (n NoOpLogger) WithFields(Fields) Logger     { return n }
func (NoOpLogger) SetLevel(Level)                 {}
