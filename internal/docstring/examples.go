package docstring

import "strings"

// Example is one doctest example: the prose before it, its code with the
// prompts removed and any output lines printed after the code.
type Example struct {
	Description string
	Code        string
	Output      string
}

type exampleState int

const (
	stateProse exampleState = iota
	stateCode
	stateOutput
)

// ExtractExamples splits doctest text into examples.
//
// Consecutive ">>>" and "..." lines form one example, and a blank line
// followed by another ">>>" line keeps it going. A blank line followed by
// prose or another blank line ends it. Non-blank lines right after the code
// are its output. Prose between examples becomes the next example's
// description, joined with spaces.
func ExtractExamples(text string) []Example {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	var (
		examples []Example
		cur      Example
		code     []string
		output   []string
		state    = stateProse
	)
	flush := func() {
		cur.Code = strings.Join(code, "\n")
		cur.Output = strings.Join(output, "\n")
		if cur.Code != "" || cur.Description != "" {
			examples = append(examples, cur)
		}
		cur, code, output = Example{}, nil, nil
		state = stateProse
	}

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, ">>>"):
			if state == stateOutput {
				flush()
			}
			state = stateCode
			code = append(code, stripPrompt(trimmed, ">>>"))

		case strings.HasPrefix(trimmed, "..."):
			if state == stateCode {
				code = append(code, stripPrompt(trimmed, "..."))
			}

		case state != stateProse && trimmed == "":
			next := ""
			if i+1 < len(lines) {
				next = strings.TrimSpace(lines[i+1])
			}
			if state == stateCode && strings.HasPrefix(next, ">>>") {
				continue
			}
			flush()

		case state != stateProse:
			state = stateOutput
			output = append(output, trimmed)

		case trimmed != "":
			if cur.Description != "" {
				cur.Description += " "
			}
			cur.Description += trimmed
		}
	}
	if len(code) > 0 || cur.Description != "" {
		flush()
	}
	return examples
}

func stripPrompt(line, prompt string) string {
	rest := strings.TrimPrefix(line, prompt)
	return strings.TrimPrefix(rest, " ")
}
