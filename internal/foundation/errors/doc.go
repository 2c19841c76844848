// Package errors provides the classified error type used across pxtdocs.
//
// A ClassifiedError carries a category (config, git, forge, tool, ...), a
// severity and structured context. Errors are built with a fluent builder:
//
//	err := errors.NewError(errors.CategoryGit, "clone failed").
//		WithCause(cause).
//		WithContext("url", repoURL).
//		Fatal().
//		Build()
//
// The CLI adapter prints the message on stderr and exits with status 1.
package errors
