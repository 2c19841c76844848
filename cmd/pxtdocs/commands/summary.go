package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"git.home.luguber.info/inful/pxtdocs/internal/build"
	"git.home.luguber.info/inful/pxtdocs/internal/deploy"
	"git.home.luguber.info/inful/pxtdocs/internal/metrics"
)

const maxListed = 10

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#3FB950"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#D29922"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
)

type row struct {
	label string
	value string
}

// box renders a titled key/value table with an optional list of notes.
func box(title string, rows []row, notes []string) string {
	width := 0
	for _, r := range rows {
		width = max(width, len(r.label))
	}
	lines := []string{titleStyle.Render(title), ""}
	for _, r := range rows {
		lines = append(lines, labelStyle.Render(fmt.Sprintf("%-*s", width, r.label))+"  "+r.value)
	}
	if len(notes) > 0 {
		lines = append(lines, "")
		shown := notes
		if len(shown) > maxListed {
			shown = shown[:maxListed]
		}
		for _, n := range shown {
			lines = append(lines, "• "+n)
		}
		if rest := len(notes) - len(shown); rest > 0 {
			lines = append(lines, labelStyle.Render("… and "+strconv.Itoa(rest)+" more"))
		}
	}
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func outcome(o metrics.OutcomeLabel) string {
	switch o {
	case metrics.OutcomeSuccess:
		return okStyle.Render(string(o))
	case metrics.OutcomeWarning, metrics.OutcomeUnchanged:
		return warnStyle.Render(string(o))
	default:
		return failStyle.Render(string(o))
	}
}

func printBuildSummary(w io.Writer, r *build.Report, err error) {
	if r == nil {
		return
	}
	o := r.Outcome()
	if err != nil {
		o = metrics.OutcomeFailed
	}
	rows := []row{
		{"Run", r.RunID},
		{"Outcome", outcome(o)},
		{"Duration", r.Duration().Round(time.Millisecond).String()},
		{"Files copied", strconv.Itoa(r.FilesCopied)},
		{"Notebooks", strconv.Itoa(r.Notebooks)},
		{"Releases", strconv.Itoa(r.Releases)},
		{"Contributors", strconv.Itoa(r.Contributors)},
		{"SDK pages", strconv.Itoa(r.SDKPages)},
	}
	if len(r.Unresolved) > 0 {
		rows = append(rows, row{"Unresolved", strconv.Itoa(len(r.Unresolved))})
	}
	var notes []string
	for _, se := range append(append([]*build.StageError{}, r.Errors...), r.Warnings...) {
		notes = append(notes, string(se.Stage)+": "+se.Err.Error())
	}
	notes = append(notes, r.Findings...)
	_, _ = fmt.Fprintln(w, box("Build", rows, notes))
}

func printDeploySummary(w io.Writer, r *deploy.Result, err error) {
	if r == nil {
		return
	}
	o := metrics.OutcomeSuccess
	commit := "no changes"
	switch {
	case err != nil:
		o = metrics.OutcomeFailed
	case r.Changed():
		commit = r.Commit[:8]
	default:
		o = metrics.OutcomeUnchanged
	}
	rows := []row{
		{"Run", r.RunID},
		{"Target", string(r.Target)},
		{"Branch", r.Branch},
		{"Outcome", outcome(o)},
		{"Commit", commit},
	}
	if r.Version != "" {
		rows = append(rows, row{"Version", r.Version})
	}
	if r.Merge != nil {
		rows = append(rows, row{"Dropdowns", strings.Join(r.Merge.Dropdowns, ", ")})
		if len(r.Merge.Evicted) > 0 {
			rows = append(rows, row{"Evicted", strings.Join(r.Merge.Evicted, ", ")})
		}
	}
	rows = append(rows, row{"Pages", fmt.Sprintf("+%d ~%d -%d", len(r.Diff.Added), len(r.Diff.Changed), len(r.Diff.Removed))})

	notes := append([]string{}, r.Findings...)
	for _, c := range r.History {
		notes = append(notes, c.Short()+" "+c.Subject)
	}
	if r.Target == deploy.TargetProd && r.Changed() {
		notes = append(notes, "Roll back with: git revert HEAD && git push origin "+r.Branch)
	}
	_, _ = fmt.Fprintln(w, box("Deploy "+string(r.Target), rows, notes))
}
