package presenter

import "strings"

// DefaultSections maps section names to their first slide
func DefaultSections() map[string]int {
	return map[string]int{
		"intro":          3,
		"objectives":     4,
		"theory":         5,
		"competences":    6,
		"design":         7,
		"adaptations":    8,
		"methodology":    9,
		"instruments":    10,
		"results":        11,
		"findings":       12,
		"voices":         13,
		"transfer":       14,
		"sustainability": 15,
		"limitations":    16,
		"conclusions":    17,
		"challenges":     18,
		"checklist":      19,
		"reflection":     20,
		"questions":      21,
		"thanks":         22,
		"resources":      23,
	}
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// JumpToSection shows the first slide of the named section. Unknown names
// and sections past the end of the deck are ignored; the result reports
// whether a jump happened.
func (p *Presenter) JumpToSection(name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	n, ok := p.sections[normalize(name)]
	if !ok || !p.inRange(n) {
		return false
	}
	p.activate(n - 1)
	return true
}

// Sections returns a copy of the section table
func (p *Presenter) Sections() map[string]int {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string]int, len(p.sections))
	for k, v := range p.sections {
		out[k] = v
	}
	return out
}
