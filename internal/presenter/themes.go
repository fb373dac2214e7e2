package presenter

import "sort"

// Theme is a set of CSS custom properties
type Theme map[string]string

// DefaultThemes returns the built-in themes
func DefaultThemes() map[string]Theme {
	return map[string]Theme{
		"default": {
			"--primary-color":   "#7877c6",
			"--secondary-color": "#ff77c6",
			"--accent-color":    "#78dbff",
			"--text-color":      "#e0e0e0",
		},
		"dark": {
			"--primary-color":   "#333366",
			"--secondary-color": "#cc4499",
			"--accent-color":    "#4499cc",
			"--text-color":      "#cccccc",
		},
		"light": {
			"--primary-color":   "#9999ff",
			"--secondary-color": "#ff99cc",
			"--accent-color":    "#99ccff",
			"--text-color":      "#333333",
		},
	}
}

// SetTheme applies a named theme. Unknown names are ignored.
func (p *Presenter) SetTheme(name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	theme, ok := p.themes[name]
	if !ok {
		return false
	}
	vars := make(map[string]string, len(theme))
	for k, v := range theme {
		vars[k] = v
	}
	p.theme = name
	p.view.SetTheme(name, vars)
	return true
}

// Themes lists the theme names
func (p *Presenter) Themes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, 0, len(p.themes))
	for name := range p.themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
