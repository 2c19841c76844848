package sdkref

import (
	"regexp"
	"strings"
)

var returnQuotes = []*regexp.Regexp{
	regexp.MustCompile(`^->\s*"([^"]+)"`),
	regexp.MustCompile(`^->\s*'([^']+)'`),
}

// FormatSignature renders name and a "(params) -> R" signature for a code
// block. Zero or one parameter stays on one line; more parameters go one
// per line, indented four spaces.
func FormatSignature(name, sig string) string {
	sig = strings.TrimSpace(sig)
	open := strings.IndexByte(sig, '(')
	if open < 0 {
		return name + sig
	}
	closing := matchingParen(sig, open)
	if closing < 0 {
		closing = strings.LastIndexByte(sig, ')')
	}
	if closing < open {
		return name + sig
	}

	params := splitParams(strings.TrimSpace(sig[open+1 : closing]))
	for i, p := range params {
		params[i] = unquoteAnnotation(p)
	}
	after := unquoteReturn(strings.TrimSpace(sig[closing+1:]))
	if after != "" {
		after = " " + after
	}

	switch len(params) {
	case 0:
		return name + "()" + after
	case 1:
		return name + "(" + params[0] + ")" + after
	}
	return name + "(\n    " + strings.Join(params, ",\n    ") + "\n)" + after
}

// unquoteAnnotation turns `x: "T" = d` into `x: T = d`. Only a fully quoted
// annotation is touched; defaults keep their literals.
func unquoteAnnotation(param string) string {
	colon := topLevelIndex(param, ':')
	eq := topLevelIndex(param, '=')
	if colon < 0 || (eq >= 0 && eq < colon) {
		return param
	}
	end := len(param)
	if eq > colon {
		end = eq
	}
	inner, ok := unquote(strings.TrimSpace(param[colon+1 : end]))
	if !ok {
		return param
	}
	out := strings.TrimRight(param[:colon], " ") + ": " + inner
	if end < len(param) {
		out += " " + strings.TrimSpace(param[end:])
	}
	return out
}

func unquoteReturn(after string) string {
	for _, re := range returnQuotes {
		after = re.ReplaceAllString(after, "-> $1")
	}
	return after
}

func unquote(s string) (string, bool) {
	if len(s) < 2 || (s[0] != '"' && s[0] != '\'') || s[len(s)-1] != s[0] {
		return "", false
	}
	inner := s[1 : len(s)-1]
	if inner == "" || strings.IndexByte(inner, s[0]) >= 0 {
		return "", false
	}
	return inner, true
}

// topLevelIndex returns the first index of b outside brackets and string
// literals, or -1.
func topLevelIndex(s string, b byte) int {
	depth := 0
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote && s[i-1] != '\\' {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			depth--
		case c == b && depth == 0:
			return i
		}
	}
	return -1
}

func matchingParen(s string, open int) int {
	depth := 0
	var quote byte
	for i := open; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote && s[i-1] != '\\' {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitParams splits on commas that are outside brackets and string literals.
func splitParams(s string) []string {
	var (
		params []string
		cur    strings.Builder
		depth  int
		quote  byte
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			cur.WriteByte(c)
			if c == quote && s[i-1] != '\\' {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				if p := strings.TrimSpace(cur.String()); p != "" {
					params = append(params, p)
				}
				cur.Reset()
				continue
			}
		}
		cur.WriteByte(c)
	}
	if p := strings.TrimSpace(cur.String()); p != "" {
		params = append(params, p)
	}
	return params
}
