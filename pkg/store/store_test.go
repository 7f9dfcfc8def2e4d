package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amosWeiskopf/wpaudit/internal/models"
	"github.com/amosWeiskopf/wpaudit/pkg/seo"
)

func TestNewStoreIsEmpty(t *testing.T) {
	s := New()
	assert.Empty(t, s.Get().Present())
	assert.False(t, s.Running())
}

func TestSetMergesOnlyPresentFields(t *testing.T) {
	s := New()
	s.Set(models.Report{
		Groups:      []models.ContentGroup{{Category: "Pages"}},
		Performance: &models.PerformanceResult{StatusCode: 200},
	})
	s.Set(models.Report{SEO: []models.SeoEntry{{Title: "Home", Link: "https://x/", Score: 60}}})

	got := s.Get()
	require.Len(t, got.Groups, 1)
	assert.Equal(t, "Pages", got.Groups[0].Category)
	require.NotNil(t, got.Performance)
	assert.Equal(t, 200, got.Performance.StatusCode)
	require.Len(t, got.SEO, 1)
	assert.Equal(t, "https://x/", got.SEO[0].Key)
	assert.Nil(t, got.Security)
}

func TestSetEmptySliceMarksPresent(t *testing.T) {
	s := New()
	s.Set(models.Report{Broken: []string{"https://x/dead"}})
	s.Set(models.Report{Broken: []string{}})

	got := s.Get()
	assert.NotNil(t, got.Broken)
	assert.Empty(t, got.Broken)
	assert.True(t, got.Has(models.FieldBroken))
}

func TestReplace(t *testing.T) {
	s := New()
	s.Set(models.Report{Performance: &models.PerformanceResult{StatusCode: 200}})
	s.Replace(models.Report{Themes: []string{"astra"}})

	got := s.Get()
	assert.Nil(t, got.Performance)
	assert.Equal(t, []string{"astra"}, got.Themes)
}

func TestGetReturnsCopy(t *testing.T) {
	s := New()
	s.Set(models.Report{
		Groups: []models.ContentGroup{{Category: "Pages", Items: []models.ContentItem{{Title: "Home"}}}},
		SEO:    []models.SeoEntry{{Title: "Home", Headings: map[string]int{"h1": 1}}},
	})

	got := s.Get()
	got.Groups[0].Items[0].Title = "mutated"
	got.SEO[0].Headings["h1"] = 9

	again := s.Get()
	assert.Equal(t, "Home", again.Groups[0].Items[0].Title)
	assert.Equal(t, 1, again.SEO[0].Headings["h1"])
}

func TestSortSEOKeepsKeys(t *testing.T) {
	s := New()
	s.Set(models.Report{SEO: []models.SeoEntry{
		{Title: "A", Link: "https://x/a", Score: 30},
		{Title: "B", Link: "https://x/b", Score: 90},
		{Title: "C", Link: "https://x/c", Score: 60},
	}})

	s.SortSEO(seo.Descending)
	got := s.Get().SEO
	assert.Equal(t, []string{"B", "C", "A"}, []string{got[0].Title, got[1].Title, got[2].Title})

	entry, ok := s.SEOEntry("https://x/a")
	require.True(t, ok)
	assert.Equal(t, "A", entry.Title)

	_, ok = s.SEOEntry("missing")
	assert.False(t, ok)
}

func TestBeginRun(t *testing.T) {
	s := New()
	release := s.BeginRun()
	assert.True(t, s.Running())
	release()
	assert.False(t, s.Running())
	release()
	assert.False(t, s.Running())
}
