package logging

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// impl fans every entry at or above its level out to its appenders. Subloggers share the
// appender slice but carry their own level.
type impl struct {
	name      string
	level     AtomicLevel
	inUTC     bool
	appenders []Appender
}

func newImpl(name string, level Level, inUTC bool, appenders ...Appender) *impl {
	return &impl{name: name, level: NewAtomicLevelAt(level), inUTC: inUTC, appenders: appenders}
}

func (imp *impl) AddAppender(appender Appender) {
	imp.appenders = append(imp.appenders, appender)
}

func (imp *impl) SetLevel(level Level) {
	imp.level.Set(level)
}

func (imp *impl) GetLevel() Level {
	return imp.level.Get()
}

func (imp *impl) Sublogger(subname string) Logger {
	name := subname
	if imp.name != "" {
		name = imp.name + "." + subname
	}
	return newImpl(name, imp.level.Get(), imp.inUTC, imp.appenders...)
}

func (imp *impl) Sync() error {
	var errs error
	for _, appender := range imp.appenders {
		errs = multierr.Append(errs, appender.Sync())
	}
	return errs
}

func (imp *impl) Debug(args ...interface{}) { imp.emit(DEBUG, fmt.Sprint(args...), nil) }
func (imp *impl) Info(args ...interface{})  { imp.emit(INFO, fmt.Sprint(args...), nil) }
func (imp *impl) Warn(args ...interface{})  { imp.emit(WARN, fmt.Sprint(args...), nil) }

func (imp *impl) Debugf(template string, args ...interface{}) {
	imp.emit(DEBUG, fmt.Sprintf(template, args...), nil)
}

func (imp *impl) Infof(template string, args ...interface{}) {
	imp.emit(INFO, fmt.Sprintf(template, args...), nil)
}

func (imp *impl) Debugw(msg string, keysAndValues ...interface{}) {
	imp.emit(DEBUG, msg, keysAndValues)
}

func (imp *impl) Infow(msg string, keysAndValues ...interface{}) {
	imp.emit(INFO, msg, keysAndValues)
}

func (imp *impl) Warnw(msg string, keysAndValues ...interface{}) {
	imp.emit(WARN, msg, keysAndValues)
}

func (imp *impl) Errorw(msg string, keysAndValues ...interface{}) {
	imp.emit(ERROR, msg, keysAndValues)
}

// emit must be called directly from a public logging method so the caller lookup lands on the
// code that logged.
func (imp *impl) emit(level Level, msg string, keysAndValues []interface{}) {
	if level < imp.level.Get() {
		return
	}
	entry := zapcore.Entry{
		Level:      level.AsZap(),
		Time:       time.Now(),
		LoggerName: imp.name,
		Message:    msg,
		Caller:     caller(),
	}
	if imp.inUTC {
		entry.Time = entry.Time.UTC()
	}
	fields := toFields(keysAndValues)
	for _, appender := range imp.appenders {
		if err := appender.Write(entry, fields); err != nil {
			fmt.Fprintln(os.Stderr, err) //nolint:errcheck
		}
	}
}

// toFields pairs up alternating keys and values. A trailing key without a value is kept with an
// error in its place.
func toFields(keysAndValues []interface{}) []zapcore.Field {
	if len(keysAndValues) == 0 {
		return nil
	}
	fields := make([]zapcore.Field, 0, (len(keysAndValues)+1)/2)
	for i := 0; i < len(keysAndValues); i += 2 {
		key := fmt.Sprint(keysAndValues[i])
		if i+1 == len(keysAndValues) {
			fields = append(fields, zap.Any(key, errors.New("unpaired log key")))
			break
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}

// caller skips itself, emit and the public logging method.
func caller() zapcore.EntryCaller {
	const skip = 3
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return zapcore.EntryCaller{}
	}
	c := zapcore.EntryCaller{Defined: true, PC: pc, File: file, Line: line}
	if fn := runtime.FuncForPC(pc); fn != nil {
		c.Function = fn.Name()
	}
	return c
}
