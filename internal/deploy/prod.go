package deploy

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/pxtdocs/internal/logfields"
)

// HistoryDepth is how many commits a prod deploy lists afterwards.
const HistoryDepth = 5

// ProdCommitMessage is the commit message of a promotion made at t.
func ProdCommitMessage(t time.Time) string {
	return "Deploy from stage to production (" + t.Format("2006-01-02 15:04:05") + ")"
}

// Prod promotes the stage branch to production by replacing the content of
// the production branch with it. Nothing is built.
func (d *Deployer) Prod(ctx context.Context) (res *Result, err error) {
	r := d.newRun(TargetProd, d.cfg.DocsRepo.ProdBranch)
	defer func() { r.finish(err) }()
	r.logger.Info("Promoting stage to production", logfields.Branch(d.cfg.DocsRepo.StageBranch))

	if err := r.ws.Create(); err != nil {
		return r.result, err
	}
	prod, err := r.cloneDocs(ctx, "main", r.result.Branch)
	if err != nil {
		return r.result, err
	}
	stage, err := r.cloneDocs(ctx, "stage", d.cfg.DocsRepo.StageBranch)
	if err != nil {
		return r.result, err
	}

	before, err := FingerprintPages(prod.Dir())
	if err != nil {
		return r.result, err
	}
	if err := syncProdTree(stage.Dir(), prod.Dir()); err != nil {
		return r.result, err
	}
	after, err := FingerprintPages(prod.Dir())
	if err != nil {
		return r.result, err
	}
	r.result.Diff = ComparePages(before, after)
	logDiff(r.logger, r.result.Diff)

	if err := r.validate(ctx, d.deps.Runner, prod.Dir(), true); err != nil {
		return r.result, err
	}
	if err := r.publish(ctx, prod, r.result.Branch, ProdCommitMessage(time.Now())); err != nil {
		return r.result, err
	}

	history, err := prod.Log(HistoryDepth)
	if err != nil {
		r.logger.Warn("Could not read history", logfields.Error(err))
		return r.result, nil
	}
	r.result.History = history
	for _, c := range history {
		r.logger.Info("Recent deploy", logfields.Commit(c.Short()), slog.String("subject", c.Subject), slog.String("author", c.Author))
	}
	if r.result.Changed() {
		r.logger.Info("To roll back, run \"git revert HEAD\" on the production branch and push",
			logfields.Branch(r.result.Branch))
	}
	return r.result, nil
}
