// Package logging provides a small structured-logging facade used across
// the planner, modeled on go.viam.com/rdk's logging package: an Appender
// abstraction over zapcore, with console and rotated-file appenders.
package logging

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// DefaultTimeFormatStr is the time format used by ConsoleAppender.
const DefaultTimeFormatStr = "2006-01-02T15:04:05.000Z0700"

// Appender is an output sink for log entries.
type Appender interface {
	Write(zapcore.Entry, []zapcore.Field) error
	Sync() error
}

// ConsoleAppender writes human-readable, tab-separated lines to an io.Writer.
type ConsoleAppender struct {
	io.Writer
}

// NewStdoutAppender returns an appender that writes to stdout.
func NewStdoutAppender() ConsoleAppender {
	return ConsoleAppender{os.Stdout}
}

// NewFileAppender returns an appender that writes to filename, rotating it.
// The returned io.Closer should be closed on shutdown.
func NewFileAppender(filename string) (Appender, io.Closer) {
	lj := &lumberjack.Logger{
		Filename: filename,
		MaxSize:  256, // megabytes
		MaxAge:   14,  // days
	}
	return ConsoleAppender{lj}, lj
}

// Write renders entry and fields as a single tab-separated line.
func (a ConsoleAppender) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	parts := make([]string, 0, 5+len(fields))
	parts = append(parts, entry.Time.UTC().Format(DefaultTimeFormatStr))
	parts = append(parts, strings.ToUpper(entry.Level.String()))
	if entry.LoggerName != "" {
		parts = append(parts, entry.LoggerName)
	}
	parts = append(parts, entry.Message)
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s=%v", f.Key, fieldValue(f)))
	}
	_, err := fmt.Fprintln(a.Writer, strings.Join(parts, "\t"))
	return err
}

// Sync is a no-op for ConsoleAppender; lumberjack flushes synchronously.
func (a ConsoleAppender) Sync() error { return nil }

func fieldValue(f zapcore.Field) interface{} {
	switch f.Type {
	case zapcore.StringType:
		return f.String
	case zapcore.Int64Type, zapcore.Int32Type:
		return f.Integer
	case zapcore.Float64Type:
		return math.Float64frombits(uint64(f.Integer))
	default:
		if f.Interface != nil {
			return f.Interface
		}
		return f.Integer
	}
}

// Logger is the logger type the planner depends on: an alias for
// *zap.SugaredLogger, matching the teacher's CDebugf-less, context-free
// logging style used outside its gRPC-aware CDebugf helpers.
type Logger = *zap.SugaredLogger

// NewDevelopment builds a Logger that writes human-readable lines to stdout
// via a zapcore.Core using zap's console encoder, at debug level.
func NewDevelopment() Logger {
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(os.Stdout),
		zapcore.DebugLevel,
	)
	return zap.New(core).Sugar()
}

// NewWithAppenders builds a Logger whose entries are also fanned out to the
// given Appenders, in addition to structured stderr output.
func NewWithAppenders(appenders ...Appender) Logger {
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), zapcore.AddSync(os.Stderr), zapcore.InfoLevel),
	}
	for _, a := range appenders {
		cores = append(cores, &appenderCore{appender: a, LevelEnabler: zapcore.DebugLevel})
	}
	return zap.New(zapcore.NewTee(cores...)).Sugar()
}

type appenderCore struct {
	zapcore.LevelEnabler
	appender Appender
}

func (c *appenderCore) With(fields []zapcore.Field) zapcore.Core { return c }

func (c *appenderCore) Check(entry zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return ce.AddCore(entry, c)
	}
	return ce
}

func (c *appenderCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	return c.appender.Write(entry, fields)
}

func (c *appenderCore) Sync() error { return c.appender.Sync() }
