package logger

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	coreconfig "github.com/m3rciful/royaldns/core/config"
)

func captureLine(t *testing.T, format logFormat, emit func(*slog.Logger)) string {
	t.Helper()
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	handler := newStructuredHandler(handlerConfig{
		level:    slog.LevelDebug,
		writer:   aw,
		format:   format,
		keyOrder: append([]string(nil), defaultKeyOrder...),
	})
	emit(slog.New(handler))
	if err := aw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return strings.TrimSpace(buf.String())
}

func assertOrdered(t *testing.T, line string, parts ...string) {
	t.Helper()
	pos := -1
	for _, p := range parts {
		idx := strings.Index(line, p)
		if idx == -1 || idx < pos {
			t.Fatalf("%q missing or out of order in %s", p, line)
		}
		pos = idx
	}
}

func TestStructuredHandlerKVOrder(t *testing.T) {
	ctx := WithRID(Background(), "rid-123")
	ctx = WithUpdateMeta(ctx, 42, 7, 9)
	line := captureLine(t, formatKV, func(l *slog.Logger) {
		LogEvent(ctx, l.With("component", "menu"), slog.LevelInfo, "menu.transition",
			slog.String("kind", "country"),
			slog.String("route", "speed"),
			slog.String("country", "USA"),
			slog.String("status", "ok"),
		)
	})
	if !strings.HasPrefix(line, "ts=") {
		t.Fatalf("line should start with ts: %s", line)
	}
	assertOrdered(t, line,
		"level=INFO", "component=menu", "event=menu.transition", "status=ok",
		"rid=rid-123", "update_id=42", "user_id=7", "chat_id=9",
		"route=speed", "kind=country", "country=USA",
	)
}

func TestStructuredHandlerJSONOrder(t *testing.T) {
	ctx := WithUpdateMeta(WithRID(Background(), "rid-json"), 11, 22, 33)
	line := captureLine(t, formatJSON, func(l *slog.Logger) {
		LogEvent(ctx, l.With("component", "routing"), slog.LevelError, "routing.reload",
			slog.String("status", "error"),
			slog.String("err", "boom"),
			slog.String("path", "callbacks.json"),
		)
	})
	if !strings.HasPrefix(line, "{") {
		t.Fatalf("expected JSON, got %s", line)
	}
	assertOrdered(t, line,
		`{"ts":`, `"level":"ERROR"`, `"component":"routing"`, `"event":"routing.reload"`,
		`"status":"fail"`, `"rid":"rid-json"`, `"path":"callbacks.json"`, `"err":"boom"`,
	)
}

func TestStructuredHandlerCompactRID(t *testing.T) {
	tests := []struct {
		name     string
		format   logFormat
		want     []string
		unwanted string
	}{
		{name: "kv", format: formatKV, want: []string{"rid=" + CompactRID("123:456:789")}, unwanted: "rid_full="},
		{name: "json", format: formatJSON, want: []string{
			`"rid":"` + CompactRID("123:456:789") + `"`,
			`"rid_full":"123:456:789"`,
			`"ts_unix_nano"`,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := WithRID(Background(), "123:456:789")
			line := captureLine(t, tt.format, func(l *slog.Logger) {
				LogEvent(ctx, l, slog.LevelInfo, "rid.test")
			})
			for _, w := range tt.want {
				if !strings.Contains(line, w) {
					t.Fatalf("expected %s in %s", w, line)
				}
			}
			if tt.unwanted != "" && strings.Contains(line, tt.unwanted) {
				t.Fatalf("unexpected %s in %s", tt.unwanted, line)
			}
		})
	}
}

func TestStructuredHandlerNormalizesValues(t *testing.T) {
	line := captureLine(t, formatKV, func(l *slog.Logger) {
		l.Info("send done",
			slog.Group("sender",
				slog.Duration("delay", 1500*time.Microsecond),
				slog.String("notice", "USA selected"),
			),
			slog.String("outcome", "weird"),
			slog.String("empty", ""),
		)
	})
	for _, want := range []string{"event=\"send done\"", "component=app", "sender.delay_ms=2", `sender.notice="USA selected"`} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %s in %s", want, line)
		}
	}
	for _, unwanted := range []string{"outcome=", "empty="} {
		if strings.Contains(line, unwanted) {
			t.Fatalf("unexpected %s in %s", unwanted, line)
		}
	}
}

func TestCompactRID(t *testing.T) {
	cases := map[string]string{
		"35:36:1295": "z.10.zz",
		"not-a-rid":  "not-a-rid",
		"1:x:3":      "1:x:3",
		" 1:2:3 ":    "1.2.3",
	}
	for in, want := range cases {
		if got := CompactRID(in); got != want {
			t.Errorf("CompactRID(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRatioSampler(t *testing.T) {
	s := newRatioSampler(1, 3)
	var got []bool
	for i := 0; i < 6; i++ {
		got = append(got, s.Allow())
	}
	want := []bool{true, false, false, true, false, false}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Allow sequence = %v, want %v", got, want)
		}
	}

	s.Set(0, 0)
	if !s.Allow() {
		t.Fatal("disabled sampler must allow everything")
	}

	if n, d := parseRatio("2/5"); n != 2 || d != 5 {
		t.Fatalf("parseRatio(2/5) = %d/%d", n, d)
	}
	if n, d := parseRatio("10"); n != 1 || d != 10 {
		t.Fatalf("parseRatio(10) = %d/%d", n, d)
	}
	if n, d := parseRatio("x/y"); n != 0 || d != 0 {
		t.Fatalf("parseRatio(x/y) = %d/%d", n, d)
	}
}

func TestSanitizeLimit(t *testing.T) {
	if got := SanitizeLimit("a\x00b\u200bc\nd", 10); got != "abc\nd" {
		t.Fatalf("SanitizeLimit = %q", got)
	}
	if got := SanitizeLimit("привет", 3); got != "при" {
		t.Fatalf("SanitizeLimit runes = %q", got)
	}
}

func TestAsyncWriterFlush(t *testing.T) {
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 16)
	for i := 0; i < 10; i++ {
		if err := aw.Write([]byte("line\n")); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := aw.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if got := strings.Count(buf.String(), "line\n"); got != 10 {
		t.Fatalf("flushed %d lines, want 10", got)
	}
	if err := aw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestResolveOptions(t *testing.T) {
	o := resolve(nil)
	if o.format != formatJSON || o.level != slog.LevelInfo || o.num != 1 || o.den != 50 {
		t.Fatalf("unexpected defaults: %+v", o)
	}

	cfg := &coreconfig.Config{}
	cfg.Logging.Profile = "Dev"
	cfg.Logging.Level = "warning"
	cfg.Logging.KeysOrder = "ts, event ,,level"
	cfg.Logging.DebugSample = "0/0"
	cfg.Logging.Dir = "/var/log/royaldns"
	cfg.Logging.BotFile = "bot.log"

	o = resolve(cfg)
	if o.format != formatKV {
		t.Fatalf("dev profile should default to kv, got %s", o.format)
	}
	if o.level != slog.LevelWarn {
		t.Fatalf("level = %v", o.level)
	}
	if strings.Join(o.order, ",") != "ts,event,level" {
		t.Fatalf("order = %v", o.order)
	}
	if o.num != 0 || o.den != 0 {
		t.Fatalf("sample = %d/%d", o.num, o.den)
	}
	if o.file != "/var/log/royaldns/bot.log" {
		t.Fatalf("file = %q", o.file)
	}

	cfg.Logging.Format = "json"
	cfg.Logging.DebugSample = "5/0"
	o = resolve(cfg)
	if o.format != formatJSON {
		t.Fatalf("explicit json ignored")
	}
	if o.num != 1 || o.den != 50 {
		t.Fatalf("invalid sample should keep default, got %d/%d", o.num, o.den)
	}
}
