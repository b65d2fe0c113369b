package app

import "sync"

// DefaultThemes is the cycle used when none is configured.
var DefaultThemes = []string{"theme1", "theme2", "theme3", "theme4", "theme5"}

// ThemeCycler holds the process-wide cosmetic theme.
type ThemeCycler struct {
	mu      sync.Mutex
	themes  []string
	current int
}

func NewThemeCycler(themes []string) *ThemeCycler {
	if len(themes) == 0 {
		themes = DefaultThemes
	}
	return &ThemeCycler{themes: append([]string(nil), themes...)}
}

// Current returns the active theme name.
func (t *ThemeCycler) Current() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.themes[t.current]
}

// Next advances to the following theme, wrapping after the last.
func (t *ThemeCycler) Next() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current = (t.current + 1) % len(t.themes)
	return t.themes[t.current]
}
