package frontmatter

import (
	"strings"

	"github.com/inful/mdfp"
)

// Fingerprint computes the content fingerprint of a page. The frontmatter
// is normalized to LF newlines without its trailing newline, so formatting
// differences in the delimiters do not change the result.
func Fingerprint(content []byte) (string, error) {
	doc, err := Parse(content)
	if err != nil {
		return "", err
	}
	fm := ""
	if doc.Fields != nil {
		fields := doc.Fields
		if _, ok := fields.Get(mdfp.FingerprintField); ok {
			fields = fields.clone()
			fields.Delete(mdfp.FingerprintField)
		}
		raw, err := fields.Marshal()
		if err != nil {
			return "", err
		}
		fm = strings.TrimSuffix(string(raw), "\n")
	}
	body := strings.ReplaceAll(string(doc.Body), "\r\n", "\n")
	return mdfp.CalculateFingerprintFromParts(fm, body), nil
}
