package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// DefaultTimeFormatStr is the default time format string for log appenders.
const DefaultTimeFormatStr = "2006-01-02T15:04:05.000Z0700"

// Appender is an output for log entries. This is a subset of the `zapcore.Core` interface.
type Appender interface {
	// Write submits a structured log entry to the appender for logging.
	Write(zapcore.Entry, []zapcore.Field) error
	// Sync is for signaling that any buffered logs to `Write` should be flushed. E.g: at shutdown.
	Sync() error
}

// ConsoleAppender will create human readable log lines on the underlying writer.
type ConsoleAppender struct {
	io.Writer
}

// NewStdoutAppender creates a new appender that writes to stdout.
func NewStdoutAppender() ConsoleAppender {
	return ConsoleAppender{os.Stdout}
}

// NewWriterAppender creates a new appender that writes to the input writer.
func NewWriterAppender(writer io.Writer) ConsoleAppender {
	return ConsoleAppender{writer}
}

// NewFileAppender creates a new appender that writes to a size-rotated log file. The returned
// closer releases the file.
func NewFileAppender(filename string, maxSizeMB, maxBackups int) (ConsoleAppender, io.Closer) {
	roller := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
	}
	return ConsoleAppender{roller}, roller
}

// Write outputs the log entry to the underlying writer.
func (appender ConsoleAppender) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	toPrint := entryParts(entry)
	if len(fields) > 0 {
		encoded, err := encodeFields(fields)
		if err != nil {
			// Log what we have and return the error.
			fmt.Fprintln(appender.Writer, strings.Join(toPrint, "\t"))
			return err
		}
		toPrint = append(toPrint, encoded)
	}

	_, err := fmt.Fprintln(appender.Writer, strings.Join(toPrint, "\t"))
	return err
}

// Sync is a no-op.
func (appender ConsoleAppender) Sync() error {
	return nil
}

func entryParts(entry zapcore.Entry) []string {
	const maxLength = 10
	toPrint := make([]string, 0, maxLength)
	toPrint = append(toPrint, entry.Time.Format(DefaultTimeFormatStr))
	toPrint = append(toPrint, strings.ToUpper(entry.Level.String()))
	if entry.LoggerName != "" {
		toPrint = append(toPrint, entry.LoggerName)
	}
	if entry.Caller.Defined {
		toPrint = append(toPrint, callerToString(&entry.Caller))
	}
	return append(toPrint, entry.Message)
}

// Use zap's json encoder which will encode our slice of fields in-order. As opposed to the
// random iteration order of a map. Call it with an empty Entry object such that only the fields
// become "map-ified".
func encodeFields(fields []zapcore.Field) (string, error) {
	jsonEncoder := zapcore.NewJSONEncoder(zapcore.EncoderConfig{SkipLineEnding: true})
	buf, err := jsonEncoder.EncodeEntry(zapcore.Entry{}, fields)
	if err != nil {
		return "", err
	}
	defer buf.Free()
	return buf.String(), nil
}

// Return example: "logging/impl_test.go:36".
func callerToString(caller *zapcore.EntryCaller) string {
	return caller.TrimmedPath()
}
