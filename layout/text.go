package layout

import (
	"strings"
	"sync"

	"golang.org/x/image/math/fixed"

	"github.com/wudi/flowkit/fonts"
)

const (
	// widthCacheCap bounds the per-node string-width cache.
	widthCacheCap = 512
	// lineCacheCap bounds the per-node line-layout cache.
	lineCacheCap = 8

	ellipsis = "…"
)

// widthCache memoizes string width measurements for one text node. The
// oldest entry is evicted when the cache is full. It uses a mutex so clones
// sharing the cache can measure concurrently.
type widthCache struct {
	mu    sync.Mutex
	m     map[string]float64
	order []string
}

func (c *widthCache) get(s string, measure func(string) float64) float64 {
	c.mu.Lock()
	if c.m == nil {
		c.m = make(map[string]float64, 64)
	}
	if w, ok := c.m[s]; ok {
		c.mu.Unlock()
		return w
	}
	c.mu.Unlock()

	w := measure(s)

	c.mu.Lock()
	if _, ok := c.m[s]; !ok {
		if len(c.order) >= widthCacheCap {
			delete(c.m, c.order[0])
			c.order = c.order[1:]
		}
		c.m[s] = w
		c.order = append(c.order, s)
	}
	c.mu.Unlock()
	return w
}

// lineCache memoizes wrapped line layouts keyed by the quantized available
// width. Capacity is small; the oldest entry is evicted.
type lineCache struct {
	mu      sync.Mutex
	entries []lineCacheEntry
}

type lineCacheEntry struct {
	key   fixed.Int26_6
	lines []string
}

func quantizeWidth(w float64) fixed.Int26_6 {
	if w < 0 {
		w = 0
	}
	return fixed.Int26_6(w * 64)
}

func (c *lineCache) get(w float64, layout func() []string) []string {
	key := quantizeWidth(w)
	c.mu.Lock()
	for _, e := range c.entries {
		if e.key == key {
			c.mu.Unlock()
			return e.lines
		}
	}
	c.mu.Unlock()

	lines := layout()

	c.mu.Lock()
	found := false
	for _, e := range c.entries {
		if e.key == key {
			found = true
			break
		}
	}
	if !found {
		if len(c.entries) >= lineCacheCap {
			c.entries = c.entries[1:]
		}
		c.entries = append(c.entries, lineCacheEntry{key: key, lines: lines})
	}
	c.mu.Unlock()
	return lines
}

// textCaches bundles the two caches a text node carries. Clones of a node
// share one instance.
type textCaches struct {
	lines  lineCache
	widths widthCache
}

// measurer measures strings for one text node, going through the node's
// width cache.
type measurer struct {
	metrics   fonts.Metrics
	font      fonts.Font
	fallbacks []fonts.Font
	size      float64
	cache     *widthCache
}

func (m measurer) width(s string) float64 {
	return m.cache.get(s, m.measure)
}

func (m measurer) measure(s string) float64 {
	if m.metrics == nil || m.font == nil {
		// Width heuristic for unresolved fonts: half an em per rune.
		n := 0
		for range s {
			n++
		}
		return float64(n) * m.size * 0.5
	}
	if len(m.fallbacks) > 0 {
		return m.metrics.TextWidthFallback(m.font, m.fallbacks, m.size, s)
	}
	return m.metrics.TextWidth(m.font, m.size, s)
}

// breakLines wraps text into physical lines not exceeding maxW. Input
// newlines are always hard breaks. The returned lines contain the source
// characters for the line; WrapNone truncation is applied at draw time so
// rejoining the lines with newlines round-trips the text.
func breakLines(m measurer, text string, maxW float64, mode WrapMode, breakLong bool) []string {
	segments := strings.Split(text, "\n")
	var lines []string
	for _, seg := range segments {
		switch mode {
		case WrapNone:
			lines = append(lines, seg)
		case WrapPreserve:
			lines = append(lines, breakByWidth(m, seg, maxW)...)
		default:
			lines = append(lines, breakWords(m, seg, maxW, breakLong)...)
		}
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	return lines
}

// breakWords greedily accumulates space-separated words.
func breakWords(m measurer, seg string, maxW float64, breakLong bool) []string {
	words := strings.Fields(seg)
	if len(words) == 0 {
		return []string{""}
	}
	var lines []string
	cur := ""
	for _, word := range words {
		if cur == "" {
			if m.width(word) > maxW && breakLong {
				pieces := breakByWidth(m, word, maxW)
				lines = append(lines, pieces[:len(pieces)-1]...)
				cur = pieces[len(pieces)-1]
			} else {
				cur = word
			}
			continue
		}
		if m.width(cur+" "+word) <= maxW {
			cur += " " + word
			continue
		}
		lines = append(lines, cur)
		if m.width(word) > maxW && breakLong {
			pieces := breakByWidth(m, word, maxW)
			lines = append(lines, pieces[:len(pieces)-1]...)
			cur = pieces[len(pieces)-1]
		} else {
			cur = word
		}
	}
	lines = append(lines, cur)
	return lines
}

// breakByWidth fills lines rune by rune, breaking whenever the next rune
// would exceed maxW. No characters are dropped.
func breakByWidth(m measurer, seg string, maxW float64) []string {
	if seg == "" {
		return []string{""}
	}
	var lines []string
	var cur []rune
	curW := 0.0
	for _, r := range seg {
		rw := m.width(string(r))
		if len(cur) > 0 && curW+rw > maxW {
			lines = append(lines, string(cur))
			cur = cur[:0]
			curW = 0
		}
		cur = append(cur, r)
		curW += rw
	}
	lines = append(lines, string(cur))
	return lines
}

// truncateEllipsis returns the longest prefix of line that fits maxW with an
// ellipsis appended, found by binary search over rune cut points. A line
// that already fits is returned unchanged.
func truncateEllipsis(m measurer, line string, maxW float64) string {
	if m.width(line) <= maxW {
		return line
	}
	runes := []rune(line)
	lo, hi := 0, len(runes)
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if m.width(string(runes[:mid])+ellipsis) <= maxW {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return string(runes[:lo]) + ellipsis
}

// splitLineCounts applies the orphan/widow constraints to a text split.
// total is the number of laid-out lines, fit how many fit the available
// height. It returns the number of lines kept in the first part, or ok=false
// if no split satisfying the orphan minimum exists.
func splitLineCounts(total, fit int, pg Pagination) (first int, ok bool) {
	if fit <= 0 || total == 0 {
		return 0, false
	}
	if fit >= total {
		return total, true
	}
	orphans := pg.OrphanLines()
	if orphans > total {
		orphans = total
	}
	if fit < orphans {
		return 0, false
	}
	first = fit
	widows := pg.WidowLines()
	if rest := total - first; rest > 0 && rest < widows {
		// Pull lines back to satisfy the widow minimum if the orphan
		// minimum still holds; otherwise keep the raw line-count split.
		if adj := total - widows; adj >= orphans && adj >= 1 {
			first = adj
		}
	}
	if first < 1 {
		return 0, false
	}
	return first, true
}
