package ai

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insafe-lab/internal/domain/models"
	"insafe-lab/pkg/logger"
)

func TestCatalogMatchCaseInsensitive(t *testing.T) {
	c := NewCatalog(logger.NewNop())

	matches := c.Match("Get an INSTANT LOAN without documents!")
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.ID)
	}

	assert.Contains(t, ids, "loan_001")
	assert.Contains(t, ids, "loan_003")
}

func TestCatalogRegexEntries(t *testing.T) {
	c := NewCatalog(logger.NewNop())

	matches := c.Match("Dear user your KYC has been suspended, update immediately")
	require.NotEmpty(t, matches)

	found := false
	for _, m := range matches {
		if m.ID == "phish_007" {
			found = true
			assert.True(t, m.IsRegex)
		}
	}
	assert.True(t, found)
}

func TestCatalogByCategory(t *testing.T) {
	c := NewCatalog(logger.NewNop())

	loans := c.ByCategory(models.CategoryLoan)
	require.NotEmpty(t, loans)
	for _, e := range loans {
		assert.Equal(t, models.CategoryLoan, e.Category)
	}
	assert.Empty(t, c.ByCategory("does-not-exist"))
}

func TestCatalogAppendAssignsFreshID(t *testing.T) {
	c := NewCatalog(logger.NewNop())
	before := c.Len()
	v := c.Version()

	e := c.Append(models.ScamPattern{
		ID:          "loan_001",
		Category:    models.CategoryLoan,
		Pattern:     "zero interest loan",
		Weight:      150,
		Description: "Zero interest loan bait",
	})

	assert.True(t, strings.HasPrefix(e.ID, "custom-"))
	assert.Equal(t, 100, e.Weight)
	assert.Equal(t, before+1, c.Len())
	assert.Greater(t, c.Version(), v)

	matches := c.Match("zero interest loan for you")
	require.Len(t, matches, 1)
	assert.Equal(t, e.ID, matches[0].ID)
}

func TestCatalogAppendInvalidRegexNeverMatches(t *testing.T) {
	c := NewCatalog(logger.NewNop())

	e := c.Append(models.ScamPattern{Category: models.CategoryGeneral, Pattern: "([", IsRegex: true, Weight: 10})

	assert.NotEmpty(t, e.ID)
	assert.Empty(t, c.Match("(["))
}

func TestCatalogRestoreKeepsIDs(t *testing.T) {
	c := NewCatalog(logger.NewNop())

	n := c.Restore([]models.ScamPattern{
		{ID: "custom-1", Category: models.CategoryUPI, Pattern: "collect request", Weight: 30, Description: "Collect request"},
		{ID: "loan_001", Category: models.CategoryLoan, Pattern: "dup", Weight: 10},
	})

	assert.Equal(t, 1, n)
	matches := c.Match("approve the collect request")
	require.Len(t, matches, 1)
	assert.Equal(t, "custom-1", matches[0].ID)
}

func TestCatalogConcurrentAppendAndMatch(t *testing.T) {
	c := NewCatalog(logger.NewNop())
	before := c.Len()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			c.Append(models.ScamPattern{Category: models.CategoryGeneral, Pattern: "concurrent", Weight: 5})
		}()
		go func() {
			defer wg.Done()
			_ = c.Match("instant loan concurrent")
		}()
	}
	wg.Wait()

	assert.Equal(t, before+20, c.Len())
}
