package manifest

import "fmt"

// ValidateTab reports structural problems in a navigation tab. An empty
// result means the tab is well formed.
func ValidateTab(t *Tab) []string {
	var findings []string
	if t.Name == "" {
		findings = append(findings, "tab has no name")
	}
	if t.Groups == nil && t.Dropdowns == nil {
		findings = append(findings, fmt.Sprintf("tab %q has neither groups nor dropdowns", t.Name))
	}

	Walk(t, func(n Node) bool {
		switch v := n.(type) {
		case *Group:
			if v.Name == "" {
				findings = append(findings, "group without a name")
			}
			if len(v.Pages) == 0 {
				findings = append(findings, fmt.Sprintf("empty group: %s", groupLabel(v)))
			}
		case *Dropdown:
			if v.Key == "" {
				findings = append(findings, "dropdown without a key")
			}
		}
		return true
	})

	seen := make(map[PageRef]bool)
	for _, p := range Pages(t) {
		if seen[p] {
			findings = append(findings, fmt.Sprintf("duplicate page path: %s", p))
		}
		seen[p] = true
	}
	return findings
}

// ValidateNavigation checks the named tab of m.
func ValidateNavigation(m *Manifest, tabName string) []string {
	t, _ := m.FindTab(tabName)
	if t == nil {
		return []string{fmt.Sprintf("tab %q not found", tabName)}
	}
	return ValidateTab(t)
}

func groupLabel(g *Group) string {
	if g.Name == "" {
		return "Unknown"
	}
	return g.Name
}
