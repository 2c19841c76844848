package deploy

import (
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/pxtdocs/internal/build"
	"git.home.luguber.info/inful/pxtdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/pxtdocs/internal/versioning"
	"git.home.luguber.info/inful/pxtdocs/internal/workspace"
)

const gitDir = ".git"

// syncDevTree replaces the checkout with the built site and publishes the
// SDK pages under sdk/latest, and under sdk/<version> when v is set.
func syncDevTree(target, repoDir string, v *versioning.Version) error {
	if err := workspace.ClearExcept(repoDir, gitDir); err != nil {
		return err
	}
	if _, err := workspace.CopyTree(target, repoDir, workspace.CopyOptions{}); err != nil {
		return err
	}
	if v == nil {
		return nil
	}
	return publishSDK(target, repoDir, v.Full)
}

// syncStageTree replaces everything but the deployed SDK versions with the
// built site, then installs the new version and drops evicted ones.
func syncStageTree(target, repoDir string, v versioning.Version, keepLatest bool, evicted []string) error {
	if err := workspace.ClearExcept(repoDir, gitDir, "sdk"); err != nil {
		return err
	}
	if _, err := workspace.CopyTree(target, repoDir, workspace.CopyOptions{Exclude: []string{"sdk"}}); err != nil {
		return err
	}
	if err := publishSDK(target, repoDir, v.Full); err != nil {
		return err
	}
	if keepLatest {
		if err := publishSDK(target, repoDir, versioning.LatestKey); err != nil {
			return err
		}
	}
	for _, key := range evicted {
		dir := filepath.Join(repoDir, "sdk", key)
		if err := os.RemoveAll(dir); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to remove evicted SDK version").
				WithContext("path", dir).
				Build()
		}
	}
	return nil
}

// publishSDK replaces repoDir/sdk/<key> with the generated pages.
func publishSDK(target, repoDir, key string) error {
	src := filepath.Join(target, filepath.FromSlash(build.SDKLatestDir))
	dst := filepath.Join(repoDir, "sdk", key)
	if err := workspace.Reset(dst); err != nil {
		return err
	}
	_, err := workspace.CopyTree(src, dst, workspace.CopyOptions{})
	return err
}

// syncProdTree makes the production checkout an exact copy of stage.
func syncProdTree(stageDir, prodDir string) error {
	if err := workspace.ClearExcept(prodDir, gitDir); err != nil {
		return err
	}
	_, err := workspace.CopyTree(stageDir, prodDir, workspace.CopyOptions{Exclude: []string{gitDir}})
	return err
}
