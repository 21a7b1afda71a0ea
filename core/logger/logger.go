// Package logger provides the structured slog setup shared by the bot:
// one flat line per event, stable key order, request ids and sampled debug.
package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/m3rciful/royaldns/core/buildinfo"
	coreconfig "github.com/m3rciful/royaldns/core/config"
)

const writerQueue = 64 * 1024

var (
	initOnce sync.Once
	stopOnce sync.Once

	sink     *asyncWriter
	sinkFile io.Closer
	levelVar slog.LevelVar

	debugSampler = newRatioSampler(1, 50)
	traceAll     bool

	// L is the base logger; prefer FromContext in request paths.
	L *slog.Logger

	DB      *slog.Logger // database pool
	MIG     *slog.Logger // schema migrations
	TG      *slog.Logger // Telegram transport
	TWire   *slog.Logger // handler and command wiring
	Routing *slog.Logger // server routing table
	Menu    *slog.Logger // dialog navigation
	HTTP    *slog.Logger // health and metrics listener
	Visits  *slog.Logger // visit recording
)

var components = map[string]**slog.Logger{
	"db":         &DB,
	"db.migrate": &MIG,
	"tg":         &TG,
	"tg.wire":    &TWire,
	"routing":    &Routing,
	"menu":       &Menu,
	"http":       &HTTP,
	"visits":     &Visits,
}

// Until InitLogger runs, component loggers write through slog.Default.
func init() {
	setBase(slog.Default())
}

func setBase(base *slog.Logger) {
	L = base
	for name, target := range components {
		*target = base.With("component", name)
	}
}

// options is the resolved logging configuration.
type options struct {
	format  logFormat
	order   []string
	level   slog.Level
	num     int
	den     int
	file    string
	profile string
}

func resolve(cfg *coreconfig.Config) options {
	o := options{format: formatJSON, level: slog.LevelInfo, num: 1, den: 50, profile: "prod"}
	o.order = append([]string(nil), defaultKeyOrder...)
	if cfg == nil {
		return o
	}
	lc := cfg.Logging

	if p := strings.ToLower(strings.TrimSpace(lc.Profile)); p != "" {
		o.profile = p
	}
	switch strings.ToLower(strings.TrimSpace(lc.Format)) {
	case "kv", "text", "pretty":
		o.format = formatKV
	case "json":
	default:
		if o.profile == "debug" || o.profile == "dev" {
			o.format = formatKV
		}
	}
	if keys := splitKeys(lc.KeysOrder); len(keys) > 0 {
		o.order = keys
	}
	if lvl, ok := allowedLevels[strings.ToLower(strings.TrimSpace(lc.Level))]; ok {
		_ = o.level.UnmarshalText([]byte(lvl))
	}
	if ratio := strings.TrimSpace(lc.DebugSample); ratio != "" {
		switch num, den := parseRatio(ratio); {
		case num == 0 && den == 0:
			o.num, o.den = 0, 0
		case num > 0 && den > 0:
			o.num, o.den = num, den
		}
	}
	if dir, file := strings.TrimSpace(lc.Dir), strings.TrimSpace(lc.BotFile); dir != "" && file != "" {
		o.file = filepath.Join(dir, file)
	}
	return o
}

func splitKeys(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "default" {
		return nil
	}
	var keys []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// InitLogger configures the global structured logger. Later calls are no-ops.
func InitLogger(cfg *coreconfig.Config) error {
	var err error
	initOnce.Do(func() {
		o := resolve(cfg)
		levelVar.Set(o.level)
		debugSampler.Set(o.num, o.den)
		traceAll = truthy(os.Getenv("TRACE")) || truthy(os.Getenv("LOG_TRACE"))

		outputs := []io.Writer{os.Stdout}
		if o.file != "" {
			f, openErr := openLogFile(o.file)
			if openErr != nil {
				err = openErr
				return
			}
			outputs = append(outputs, f)
			sinkFile = f
		}
		sink = newAsyncWriter(outputs, writerQueue)

		base := slog.New(newStructuredHandler(handlerConfig{
			level:    &levelVar,
			writer:   sink,
			format:   o.format,
			keyOrder: o.order,
		}))
		slog.SetDefault(base)
		setBase(base)

		L.LogAttrs(context.Background(), slog.LevelInfo, "startup",
			slog.String("component", "app"),
			slog.String("go_version", runtime.Version()),
			slog.String("build_commit", buildinfo.Commit),
			slog.String("build_time", buildinfo.Date),
			slog.String("cfg_profile", o.profile),
		)
	})
	return err
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("logger: create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logger: open log file: %w", err)
	}
	return f, nil
}

// Shutdown flushes buffered output and closes the log file.
func Shutdown() error {
	var err error
	stopOnce.Do(func() {
		if sink != nil {
			err = errors.Join(sink.Flush(), sink.Close())
		}
		if sinkFile != nil {
			err = errors.Join(err, sinkFile.Close())
		}
	})
	return err
}

// Background returns context.Background().
func Background() context.Context {
	return context.Background()
}

// LogEvent logs attrs under event, using the logger stored in ctx when logg is nil.
func LogEvent(ctx context.Context, logg *slog.Logger, level slog.Level, event string, attrs ...slog.Attr) {
	if logg == nil {
		logg = FromContext(ctx)
	}
	if event != "" {
		attrs = append([]slog.Attr{slog.String("event", event)}, attrs...)
	}
	logg.LogAttrs(ctx, level, "", attrs...)
}

// Component returns L scoped to name.
func Component(name string) *slog.Logger {
	if name = strings.TrimSpace(name); name == "" {
		return L
	}
	return L.With("component", name)
}

// Event logs an event for component at level.
func Event(ctx context.Context, component string, level slog.Level, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), level, event, attrs...)
}

func Debug(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelDebug, event, attrs...)
}

func Info(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelInfo, event, attrs...)
}

func Warn(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelWarn, event, attrs...)
}

func Error(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelError, event, attrs...)
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// ShouldSampleDebug reports whether a high-volume debug line should be written.
// TRACE=1 or LOG_TRACE=1 disables sampling.
func ShouldSampleDebug() bool {
	return traceAll || debugSampler.Allow()
}
