// Package workspace manages the scratch directories a deploy works in and
// the tree operations used to move generated docs into a checkout.
//
// A Manager hands out one timestamped directory per run (for example
// pxtdocs-20261018-101500-123) and removes it on Cleanup. ClearExcept and
// CopyTree implement the "empty the checkout, then copy the site in" steps
// shared by every deploy target.
package workspace
