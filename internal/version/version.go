package version

// Version is the pxtdocs release, set at build time:
// go build -ldflags "-X git.home.luguber.info/inful/pxtdocs/internal/version.Version=v1.0.0".
var Version = "dev"

// Build metadata, also injected through ldflags.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String renders the version line printed by --version.
func String() string {
	return "pxtdocs " + Version + " (" + GitCommit + ", built " + BuildTime + ")"
}
