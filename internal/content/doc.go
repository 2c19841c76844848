// Package content renders the community pages fetched from GitHub: the
// release changelog and the contributors wall.
package content
