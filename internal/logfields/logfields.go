package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyTarget     = "target"
	KeyStage      = "stage"
	KeyPackage    = "package"
	KeyVersion    = "pkg_version"
	KeyPath       = "path"
	KeyArtifact   = "artifact"
	KeyBackend    = "backend"
	KeyDurationMS = "duration_ms"
	KeyIndexURL   = "index_url"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Target(t string) slog.Attr       { return slog.String(KeyTarget, t) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func Package(name string) slog.Attr   { return slog.String(KeyPackage, name) }
func PkgVersion(v string) slog.Attr   { return slog.String(KeyVersion, v) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Artifact(a string) slog.Attr     { return slog.String(KeyArtifact, a) }
func Backend(b string) slog.Attr      { return slog.String(KeyBackend, b) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func IndexURL(u string) slog.Attr     { return slog.String(KeyIndexURL, u) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
