package ai

import (
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"insafe-lab/internal/domain/models"
	"insafe-lab/pkg/logger"
)

// Catalog is the versioned, append-only table of weighted scam patterns.
// Entries are never mutated or removed once added.
type Catalog struct {
	mu         sync.RWMutex
	logger     *logger.Logger
	entries    []models.ScamPattern
	ids        map[string]struct{}
	regexCache map[string]*regexp.Regexp
	version    int64
}

// NewCatalog creates a catalog seeded with the built-in patterns
func NewCatalog(log *logger.Logger) *Catalog {
	c := &Catalog{
		logger:     log.WithComponent("pattern-catalog"),
		ids:        make(map[string]struct{}),
		regexCache: make(map[string]*regexp.Regexp),
	}
	for _, e := range seedPatterns {
		c.add(e)
	}
	c.version = 1
	return c
}

// add appends e; the caller holds the write lock (or owns c exclusively)
func (c *Catalog) add(e models.ScamPattern) {
	if e.IsRegex {
		if _, ok := c.regexCache[e.Pattern]; !ok {
			re, err := regexp.Compile("(?i)" + e.Pattern)
			if err != nil {
				// kept in the table so the append stays total, it just never matches
				c.logger.Warn().Err(err).Str("pattern_id", e.ID).Msg("invalid catalog regex")
			} else {
				c.regexCache[e.Pattern] = re
			}
		}
	}
	c.entries = append(c.entries, e)
	c.ids[e.ID] = struct{}{}
}

// Match returns every entry whose pattern occurs in content, case-insensitively
func (c *Catalog) Match(content string) []models.ScamPattern {
	c.mu.RLock()
	defer c.mu.RUnlock()

	lower := strings.ToLower(content)
	var matches []models.ScamPattern
	for _, e := range c.entries {
		if c.matches(e, content, lower) {
			matches = append(matches, e)
		}
	}
	return matches
}

func (c *Catalog) matches(e models.ScamPattern, content, lower string) bool {
	if !e.IsRegex {
		return e.Pattern != "" && strings.Contains(lower, strings.ToLower(e.Pattern))
	}
	re, ok := c.regexCache[e.Pattern]
	return ok && re.MatchString(content)
}

// ByCategory returns the entries of one category in insertion order
func (c *Catalog) ByCategory(category models.PatternCategory) []models.ScamPattern {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := []models.ScamPattern{}
	for _, e := range c.entries {
		if e.Category == category {
			out = append(out, e)
		}
	}
	return out
}

// All returns a copy of the whole catalog
func (c *Catalog) All() []models.ScamPattern {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.ScamPattern, len(c.entries))
	copy(out, c.entries)
	return out
}

// Append adds a new entry under a freshly assigned id and bumps the version
func (c *Catalog) Append(e models.ScamPattern) models.ScamPattern {
	e.ID = "custom-" + uuid.New().String()
	e.Weight = clamp(e.Weight, 1, 100)
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	c.mu.Lock()
	c.add(e)
	c.version++
	c.mu.Unlock()

	c.logger.Info().
		Str("pattern_id", e.ID).
		Str("category", string(e.Category)).
		Int("weight", e.Weight).
		Msg("catalog entry appended")

	return e
}

// Restore re-appends previously persisted entries, keeping their ids.
// Entries whose id is already present are skipped.
func (c *Catalog) Restore(entries []models.ScamPattern) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	restored := 0
	for _, e := range entries {
		if _, ok := c.ids[e.ID]; ok || e.ID == "" {
			continue
		}
		c.add(e)
		restored++
	}
	if restored > 0 {
		c.version++
	}
	return restored
}

// Version increases on every successful append
func (c *Catalog) Version() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// Len returns the number of catalog entries
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
