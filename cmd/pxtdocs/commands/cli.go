package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"git.home.luguber.info/inful/pxtdocs/internal/version"
)

// EnvLogLevel overrides the log level chosen by --verbose.
const EnvLogLevel = "PXTDOCS_LOG_LEVEL"

// Global is passed to every command.
type Global struct {
	Ctx context.Context
	// Out receives the human-readable summaries.
	Out io.Writer
}

// SkipFlags disable optional build stages.
type SkipFlags struct {
	NoNotebooks    bool `help:"Skip notebook conversion"`
	NoChangelog    bool `help:"Skip the changelog page"`
	NoContributors bool `help:"Skip the contributors page"`
}

// CLI definition & global flags.
type CLI struct {
	Config      string `short:"c" help:"Configuration file path (default: pxtdocs.yaml in the project root)"`
	Verbose     bool   `short:"v" help:"Enable verbose logging"`
	ProjectRoot string `name:"project-root" help:"Root of the project repository" default:"." type:"existingdir"`

	Build            BuildCmd            `cmd:"" help:"Build the documentation site into docs/target"`
	DeployDev        DeployDevCmd        `cmd:"" name:"deploy-dev" help:"Build the working copy and push it to the dev branch"`
	DeployStage      DeployStageCmd      `cmd:"" name:"deploy-stage" help:"Build a release tag and push it to the stage branch"`
	DeployProd       DeployProdCmd       `cmd:"" name:"deploy-prod" help:"Promote the stage branch to production"`
	Changelog        ChangelogCmd        `cmd:"" help:"Write the changelog page from GitHub releases"`
	Contributors     ContributorsCmd     `cmd:"" help:"Write the contributors page from GitHub"`
	ConvertNotebooks ConvertNotebooksCmd `cmd:"" name:"convert-notebooks" help:"Convert notebooks to MDX pages with Quarto"`
	GenerateSDK      GenerateSDKCmd      `cmd:"" name:"generate-sdk" help:"Generate the SDK reference pages"`
	ValidateAPI      ValidateAPICmd      `cmd:"" name:"validate-api" help:"Compare the public API with the API outline"`
	Version          VersionCmd          `cmd:"" help:"Show version and exit"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := parseLogLevel(c.Verbose, os.Getenv(EnvLogLevel))
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// parseLogLevel picks the level from the environment override, falling
// back to debug for verbose runs and info otherwise.
func parseLogLevel(verbose bool, override string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(override)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// VersionCmd prints the pxtdocs version. The deploy commands use --version
// for the documentation version, so this is a command rather than a flag.
type VersionCmd struct{}

func (v *VersionCmd) Run(g *Global) error {
	_, err := fmt.Fprintln(g.Out, version.String())
	return err
}
