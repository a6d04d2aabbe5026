package nesting

import "sync"

// Style is the text decoration applied to a colored bracket.
type Style struct {
	Foreground Color
	Bold       bool
}

// StyleCache hands out one shared *Style per color so paint passes do not
// allocate a style per token. Safe for concurrent use.
type StyleCache struct {
	mu     sync.RWMutex
	styles map[Color]*Style
}

// NewStyleCache creates an empty StyleCache.
func NewStyleCache() *StyleCache {
	return &StyleCache{styles: make(map[Color]*Style)}
}

// StyleFor returns the cached style for c, creating it on first use.
func (sc *StyleCache) StyleFor(c Color) *Style {
	sc.mu.RLock()
	s, ok := sc.styles[c]
	sc.mu.RUnlock()
	if ok {
		return s
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	if s, ok := sc.styles[c]; ok {
		return s
	}
	s = &Style{Foreground: c}
	sc.styles[c] = s
	return s
}

// Len returns the number of distinct styles allocated so far.
func (sc *StyleCache) Len() int {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return len(sc.styles)
}
