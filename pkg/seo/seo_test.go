package seo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amosWeiskopf/wpaudit/internal/models"
)

func sampleEntries() []models.SeoEntry {
	return []models.SeoEntry{
		{Title: "Home", Link: "https://x/", Score: 80},
		{Title: "About", Link: "https://x/about/", Score: 40},
		{Title: "Contact", Link: "https://x/contact/", Score: 80},
		{Title: "Blog", Link: "https://x/blog/", Score: 10},
		{Title: "Shop", Link: "https://x/shop/", Score: 95},
	}
}

func scores(entries []models.SeoEntry) []float64 {
	out := make([]float64, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Score)
	}
	return out
}

func TestSortPreservesMultisetAndOrders(t *testing.T) {
	entries := sampleEntries()

	asc := Sort(entries, Ascending)
	assert.ElementsMatch(t, entries, asc)
	assert.IsNonDecreasing(t, scores(asc))

	desc := Sort(asc, Descending)
	assert.ElementsMatch(t, entries, desc)
	assert.IsNonIncreasing(t, scores(desc))

	// input untouched
	assert.Equal(t, sampleEntries(), entries)
}

func TestSortIdempotent(t *testing.T) {
	for _, order := range []Order{Ascending, Descending, Unsorted} {
		once := Sort(sampleEntries(), order)
		twice := Sort(once, order)
		assert.Equal(t, once, twice, "order %q", order)
	}
}

func TestSortStableTies(t *testing.T) {
	desc := Sort(sampleEntries(), Descending)
	require.Len(t, desc, 5)
	assert.Equal(t, "Home", desc[1].Title)
	assert.Equal(t, "Contact", desc[2].Title)
}

func TestFilter(t *testing.T) {
	entries := sampleEntries()

	tests := []struct {
		name string
		min  float64
		want []string
	}{
		{name: "zero keeps all", min: 0, want: []string{"Home", "About", "Contact", "Blog", "Shop"}},
		{name: "inclusive bound", min: 80, want: []string{"Home", "Contact", "Shop"}},
		{name: "above max", min: 100, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(entries, tt.min)
			titles := []string{}
			for _, e := range got {
				assert.GreaterOrEqual(t, e.Score, tt.min)
				titles = append(titles, e.Title)
			}
			assert.Equal(t, tt.want, titles)
		})
	}
}

func TestAssignKeysStableAcrossSort(t *testing.T) {
	entries := sampleEntries()
	entries = append(entries,
		models.SeoEntry{Title: "Dup A", Link: "https://x/dup/", Score: 50},
		models.SeoEntry{Title: "Dup B", Link: "https://x/dup/", Score: 60},
		models.SeoEntry{Title: "No link", Score: 70},
	)
	AssignKeys(entries)

	keys := map[string]string{}
	for _, e := range entries {
		require.NotEmpty(t, e.Key)
		_, dup := keys[e.Key]
		assert.False(t, dup, "duplicate key %s", e.Key)
		keys[e.Key] = e.Title
	}
	assert.Equal(t, "Home", keys["https://x/"])
	assert.NotContains(t, keys, "https://x/dup/")

	// a key captured before sorting still resolves to the same entry
	aboutKey := entries[1].Key
	sorted := View{Order: Descending, MinScore: 30}.Apply(entries)
	got, ok := Find(sorted, aboutKey)
	require.True(t, ok)
	assert.Equal(t, "About", got.Title)

	_, ok = Find(sorted, entries[3].Key) // Blog is filtered out
	assert.False(t, ok)
}

func TestAssignKeysDeterministic(t *testing.T) {
	build := func() []models.SeoEntry {
		return []models.SeoEntry{
			{Title: "Home", Link: "https://x/", Score: 10},
			{Title: "Home", Link: "https://x/", Score: 20},
			{Title: "No link", Score: 30},
			{Title: "About", Link: "https://x/about/", Score: 40},
		}
	}
	first, second := build(), build()
	AssignKeys(first)
	AssignKeys(second)

	for i := range first {
		assert.Equal(t, first[i].Key, second[i].Key, first[i].Title)
	}
	assert.NotEqual(t, first[0].Key, first[1].Key)
	assert.Equal(t, "https://x/about/", first[3].Key)
}

func TestAssignKeysReplacesDuplicateExisting(t *testing.T) {
	entries := []models.SeoEntry{
		{Title: "A", Link: "https://x/a", Key: "same"},
		{Title: "B", Link: "https://x/b", Key: "same"},
	}
	AssignKeys(entries)
	assert.Equal(t, "same", entries[0].Key)
	assert.Equal(t, "https://x/b", entries[1].Key)
}

func TestAssignKeysKeepsExisting(t *testing.T) {
	entries := []models.SeoEntry{{Title: "A", Link: "https://x/a", Key: "fixed"}}
	AssignKeys(entries)
	assert.Equal(t, "fixed", entries[0].Key)
}

func TestParseOrder(t *testing.T) {
	o, err := ParseOrder("ASC")
	require.NoError(t, err)
	assert.Equal(t, Ascending, o)

	o, err = ParseOrder("descending")
	require.NoError(t, err)
	assert.Equal(t, Descending, o)

	_, err = ParseOrder("random")
	assert.Error(t, err)
}

func TestAdvice(t *testing.T) {
	good := models.SeoEntry{
		TitleTag: "Home",
		MetaDesc: "A meta description that is comfortably longer than fifty characters.",
		Headings: map[string]int{"h1": 1},
	}
	assert.Empty(t, Advice(good))

	bad := models.SeoEntry{MetaDesc: "short"}
	assert.Len(t, Advice(bad), 3)
}

func TestHeadingSummary(t *testing.T) {
	assert.Equal(t, "h1:1 h2:3", HeadingSummary(map[string]int{"h2": 3, "h1": 1}))
	assert.Equal(t, "-", HeadingSummary(nil))
}
