package logger

import "strings"

// Level names as they appear in the level field.
const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

var allowedLevels = map[string]string{
	"debug":   LevelDebug,
	"info":    LevelInfo,
	"warn":    LevelWarn,
	"warning": LevelWarn,
	"error":   LevelError,
}

// status is free-form but these spellings are canonical.
var allowedStatus = map[string]string{
	"ok":        "ok",
	"fail":      "fail",
	"failed":    "fail",
	"error":     "fail",
	"skip":      "skip",
	"retry":     "retry",
	"cancelled": "cancelled",
	"canceled":  "cancelled",
}

// outcome is a closed set; anything else is dropped.
var allowedOutcome = map[string]string{
	"ok":        "ok",
	"fail":      "fail",
	"unknown":   "unknown",
	"cancelled": "cancelled",
}

func normalizeLevel(level string) string {
	if level == "" {
		return LevelInfo
	}
	if mapped, ok := allowedLevels[strings.ToLower(level)]; ok {
		return mapped
	}
	return strings.ToUpper(level)
}

func normalizeStatus(status string) (string, bool) {
	status = strings.ToLower(strings.TrimSpace(status))
	if mapped, ok := allowedStatus[status]; ok {
		return mapped, true
	}
	return status, false
}

func normalizeOutcome(outcome string) (string, bool) {
	val, ok := allowedOutcome[strings.ToLower(strings.TrimSpace(outcome))]
	return val, ok
}

// defaultKeyOrder puts correlation first, then the menu and routing fields
// most lines carry. Keys not listed follow alphabetically.
var defaultKeyOrder = []string{
	"ts",
	"level",
	"component",
	"event",
	"status",
	"rid",
	"rid_full",
	"ts_unix_nano",
	"update_id",
	"user_id",
	"chat_id",
	"handler",
	"cb_key",
	"code",
	"route",
	"kind",
	"node",
	"country",
	"server",
	"international",
	"months",
	"expiry_days",
	"notice",
	"outcome",
	"duration_ms",
	"messages",
	"kb",
	"payload",
	"username",
	"action",
	"endpoint",
	"attempt",
	"attempts",
	"delay_ms",
	"elapsed_ms",
	"mode",
	"listen",
	"public_url",
	"db",
	"host",
	"port",
	"path",
	"servers",
	"international_servers",
	"err",
	"error_kind",
	"err_code",
	"cause",
}
