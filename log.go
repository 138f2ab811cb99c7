package luci

import (
	"fmt"
	"io"
	"os"
	"strings"

	kitlog "github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"gopkg.in/natefinch/lumberjack.v2"
)

// levelOption returns the go-kit level filter of a level name.
func levelOption(name string) (level.Option, error) {
	switch strings.ToLower(name) {
	case "debug":
		return level.AllowDebug(), nil
	case "", "info":
		return level.AllowInfo(), nil
	case "warn":
		return level.AllowWarn(), nil
	case "error":
		return level.AllowError(), nil
	default:
		return nil, fmt.Errorf("invalid log level `%s`", name)
	}
}

// NewLogger returns a logfmt logger writing to w, dropping entries below lvl.
func NewLogger(w io.Writer, lvl string) (kitlog.Logger, error) {
	opt, err := levelOption(lvl)
	if err != nil {
		return nil, err
	}
	klog := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(w))
	klog = kitlog.With(klog, "ts", kitlog.DefaultTimestampUTC)
	return level.NewFilter(klog, opt), nil
}

// NewLoggerFromConfig returns the logger described by the configuration: a
// size rotated file if a log file is set, otherwise stderr. The returned
// closer must be closed once logging is done.
func NewLoggerFromConfig(conf Config) (kitlog.Logger, io.Closer, error) {
	if conf.LogFile == "" {
		logger, err := NewLogger(os.Stderr, conf.LogLevel)
		return logger, io.NopCloser(nil), err
	}
	w := &lumberjack.Logger{
		Filename:   conf.LogFile,
		MaxSize:    32, // MB
		MaxBackups: 3,
		Compress:   true,
	}
	logger, err := NewLogger(w, conf.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return logger, w, nil
}
