// Package docstring parses Google-style Python docstrings into a small model
// and extracts doctest examples from them.
package docstring
