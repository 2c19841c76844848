// Package deploy publishes built documentation to the docs hosting
// repository. Each target (dev, stage, prod) ends in at most one commit
// pushed to its branch.
package deploy
