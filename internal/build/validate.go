package build

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"git.home.luguber.info/inful/pxtdocs/internal/config"
	"git.home.luguber.info/inful/pxtdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/pxtdocs/internal/manifest"
	"git.home.luguber.info/inful/pxtdocs/internal/preview"
	"git.home.luguber.info/inful/pxtdocs/internal/toolexec"
)

// Validation is the outcome of validating a site directory.
type Validation struct {
	// Findings are structural navigation problems and preview parsing errors.
	Findings []string
	// Advisory holds notes that never fail a deploy, such as the preview
	// server being unavailable.
	Advisory []string
}

// Err returns a validation error listing the findings, or nil.
func (v *Validation) Err() error {
	if len(v.Findings) == 0 {
		return nil
	}
	return errors.ValidationError(fmt.Sprintf("%d validation finding(s)", len(v.Findings))).
		WithContext("findings", v.Findings).
		Build()
}

// All returns findings followed by advisory notes.
func (v *Validation) All() []string {
	return append(append([]string{}, v.Findings...), v.Advisory...)
}

// Validator checks a built or deployed site directory.
type Validator struct {
	tabName string
	preview config.PreviewConfig
	runner  toolexec.Runner
	logger  *slog.Logger
}

// NewValidator creates a validator; a nil runner disables the preview probe.
func NewValidator(cfg *config.Config, runner toolexec.Runner, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{tabName: cfg.SDK.TabName, preview: cfg.Preview, runner: runner, logger: logger}
}

// Validate checks dir/docs.json and, when enabled, probes dir with the
// Mintlify dev server.
func (v *Validator) Validate(ctx context.Context, dir string) (*Validation, error) {
	m, err := manifest.Load(filepath.Join(dir, "docs.json"))
	if err != nil {
		return nil, err
	}
	out := &Validation{Findings: manifest.ValidateNavigation(m, v.tabName)}

	if v.runner != nil && v.preview.IsEnabled() {
		res, err := preview.NewProber(v.runner, v.preview.Timeout, v.preview.Port, v.logger).Probe(ctx, dir)
		if err != nil {
			return nil, err
		}
		if res.Unavailable {
			out.Advisory = append(out.Advisory, res.Findings...)
		} else {
			out.Findings = append(out.Findings, res.Findings...)
		}
	}
	for _, f := range out.Findings {
		v.logger.Warn("Validation finding", slog.String("finding", f))
	}
	return out, nil
}
