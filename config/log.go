package config

import (
	"io"

	"go.uber.org/multierr"

	"go.viam.com/kestrel/logging"
)

// NewLogger builds the process logger: stdout plus, when a file is configured, a size-rotated log
// file. The returned closer syncs the logger and releases the file.
func (lc LogConfig) NewLogger(name string) (logging.Logger, io.Closer, error) {
	level, err := logging.LevelFromString(lc.Level)
	if err != nil {
		return nil, nil, err
	}
	logger := logging.NewBlankLogger(name)
	logger.SetLevel(level)
	logger.AddAppender(logging.NewStdoutAppender())

	closer := &logCloser{logger: logger}
	if lc.File != "" {
		appender, file := logging.NewFileAppender(lc.File, lc.MaxSizeMB, lc.MaxBackups)
		logger.AddAppender(appender)
		closer.file = file
	}
	return logger, closer, nil
}

type logCloser struct {
	logger logging.Logger
	file   io.Closer
}

func (c *logCloser) Close() error {
	err := c.logger.Sync()
	if c.file != nil {
		err = multierr.Combine(err, c.file.Close())
	}
	return err
}
