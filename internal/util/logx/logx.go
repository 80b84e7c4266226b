package logx

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

func (l Level) zap() zapcore.Level {
	switch l {
	case Debug:
		return zapcore.DebugLevel
	case Warn:
		return zapcore.WarnLevel
	case Error:
		return zapcore.ErrorLevel
	}
	return zapcore.InfoLevel
}

// ParseLevel accepts debug, info, warn(ing) and error; anything else is Info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return Debug
	case "warn", "warning":
		return Warn
	case "error":
		return Error
	}
	return Info
}

type Config struct {
	Level Level
	// Format is "console" (default) or "json".
	Format string
	// Stderr mirrors log lines to stderr; off by default so the TUI stays intact.
	Stderr bool
	// MaxLines is the size of the in-memory ring shown in the log view.
	MaxLines int
}

const defaultMaxLines = 500

var (
	mu    sync.Mutex
	level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	ring  = newRing(defaultMaxLines)
	sugar = build(Config{Level: Info})
)

// Configure rebuilds the logger. Lines already in the ring are kept.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	if cfg.MaxLines > 0 {
		ring.resize(cfg.MaxLines)
	}
	_ = sugar.Sync()
	sugar = build(cfg)
}

func build(cfg Config) *zap.SugaredLogger {
	level.SetLevel(cfg.Level.zap())
	encCfg := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		MessageKey:     "msg",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	var enc zapcore.Encoder
	if strings.EqualFold(cfg.Format, "json") {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		enc = zapcore.NewConsoleEncoder(encCfg)
	}
	core := zapcore.NewCore(enc, zapcore.AddSync(ring), level)
	if cfg.Stderr {
		core = zapcore.NewTee(core, zapcore.NewCore(enc.Clone(), zapcore.Lock(os.Stderr), level))
	}
	return zap.New(core).Sugar()
}

func SetLevel(l Level) { level.SetLevel(l.zap()) }

func logger() *zap.SugaredLogger {
	mu.Lock()
	defer mu.Unlock()
	return sugar
}

func Debugf(format string, a ...any) { logger().Debugf(format, a...) }
func Infof(format string, a ...any)  { logger().Infof(format, a...) }
func Warnf(format string, a ...any)  { logger().Warnf(format, a...) }
func Errorf(format string, a ...any) { logger().Errorf(format, a...) }

func Dump() string { return strings.Join(ring.lines(), "\n") }

func Lines() []string { return ring.lines() }

// ringBuffer keeps the most recent encoded lines.
type ringBuffer struct {
	mu  sync.Mutex
	buf []string
	max int
}

func newRing(max int) *ringBuffer {
	return &ringBuffer{buf: make([]string, 0, max), max: max}
}

func (r *ringBuffer) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		if len(r.buf) >= r.max {
			// drop oldest
			copy(r.buf, r.buf[1:])
			r.buf = r.buf[:len(r.buf)-1]
		}
		r.buf = append(r.buf, line)
	}
	return len(p), nil
}

func (r *ringBuffer) lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.buf))
	copy(out, r.buf)
	return out
}

func (r *ringBuffer) resize(max int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.max = max
	if over := len(r.buf) - max; over > 0 {
		r.buf = append(r.buf[:0], r.buf[over:]...)
	}
}
