// Package git wraps go-git for the docs deploy flows.
//
// It covers what the deploy orchestrators need from a repository:
//   - cloning a branch or tag, with optional token auth
//   - probing a remote for a branch before cloning it
//   - creating a branch when the remote does not have it yet
//   - staging every change, committing and pushing a single branch
//   - reading tags and recent history for version detection and logs
package git
