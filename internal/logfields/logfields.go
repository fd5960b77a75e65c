package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build.id"
	KeyStage      = "stage"
	KeyPage       = "page"
	KeyLocale     = "locale"
	KeyEngine     = "engine"
	KeyPages      = "pages"
	KeyErrors     = "errors"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func Page(name string) slog.Attr      { return slog.String(KeyPage, name) }
func Locale(name string) slog.Attr    { return slog.String(KeyLocale, name) }
func Engine(name string) slog.Attr    { return slog.String(KeyEngine, name) }
func Pages(n int) slog.Attr           { return slog.Int(KeyPages, n) }
func Errors(n int) slog.Attr          { return slog.Int(KeyErrors, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
