package sdkref

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	lower        = cases.Lower(language.Und)
	pathReplacer = strings.NewReplacer(" ", "-", "/", "-", ".", "-")
)

// Sanitize turns a dotted name into a page file stem:
// "pixeltable.functions.image" becomes "pixeltable-functions-image".
func Sanitize(name string) string {
	return pathReplacer.Replace(lower.String(name))
}
