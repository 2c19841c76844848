package logfields

import "log/slog"

// Canonical log field names shared by every package.
const (
	KeyRunID      = "run_id"
	KeyStage      = "stage"
	KeyTarget     = "target"
	KeyDurationMS = "duration_ms"
	KeyVersion    = "version"
	KeyBranch     = "branch"
	KeyRepo       = "repository"
	KeyPath       = "path"
	KeyURL        = "url"
	KeyPage       = "page"
	KeyTool       = "tool"
	KeyCount      = "count"
	KeyCommit     = "commit"
	KeyError      = "error"
)

func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func Target(t string) slog.Attr       { return slog.String(KeyTarget, t) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Version(v string) slog.Attr      { return slog.String(KeyVersion, v) }
func Branch(b string) slog.Attr       { return slog.String(KeyBranch, b) }
func Repository(r string) slog.Attr   { return slog.String(KeyRepo, r) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Page(p string) slog.Attr         { return slog.String(KeyPage, p) }
func Tool(name string) slog.Attr      { return slog.String(KeyTool, name) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Commit(sha string) slog.Attr     { return slog.String(KeyCommit, sha) }

// Error renders err as a string attribute; nil yields an empty value.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
