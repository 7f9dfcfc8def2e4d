package reporter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amosWeiskopf/wpaudit/internal/models"
	"github.com/amosWeiskopf/wpaudit/pkg/client"
)

func sampleGroups() []models.ContentGroup {
	return []models.ContentGroup{
		{Category: "Pages", Items: []models.ContentItem{
			{ID: "12", Title: "Home", Link: "https://example.com/", Status: "publish"},
			{ID: "13", Title: "About, us", Link: "https://example.com/about/", Status: "draft"},
		}},
		{Category: "Archives", Items: []models.ContentItem{
			{ID: "", Title: "2024", Link: "https://example.com/2024/", Status: "publish"},
		}},
	}
}

func newReporter(t *testing.T, handler http.HandlerFunc) *Reporter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := client.New(client.Options{BaseURL: srv.URL})
	require.NoError(t, err)
	return New(c)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestExportMarkdown(t *testing.T) {
	groups := []models.ContentGroup{{Category: "Pages", Items: []models.ContentItem{
		{ID: "1", Title: "Home", Link: "https://x/", Status: "publish"},
	}}}
	assert.Equal(t, "## Pages\n- [Home](https://x/) (publish)\n\n", ExportMarkdown(groups))
	assert.Equal(t, "", ExportMarkdown(nil))

	withEmpty := []models.ContentGroup{
		{Category: "Pages", Items: []models.ContentItem{{Title: "Home", Link: "https://x/", Status: "200"}}},
		{Category: "Posts", Items: []models.ContentItem{}},
	}
	assert.Equal(t, "## Pages\n- [Home](https://x/) (200)\n\n## Posts\n\n", ExportMarkdown(withEmpty))
}

func TestExportJSON(t *testing.T) {
	data, err := ExportJSON(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	data, err = ExportJSON(sampleGroups())
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  {\n    \"category\": \"Pages\"")
	assert.Contains(t, string(data), `"id": 12`)
	assert.Contains(t, string(data), `"id": ""`)
}

func TestExportCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportCSV(&buf, sampleGroups()))
	assert.Equal(t,
		"category,id,title,link,status\r\n"+
			"Pages,12,Home,https://example.com/,publish\r\n"+
			"Pages,13,\"About, us\",https://example.com/about/,draft\r\n"+
			"Archives,,2024,https://example.com/2024/,publish\r\n",
		buf.String())
}

func TestDownloadCSV(t *testing.T) {
	r := newReporter(t, func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, client.EndpointDownloadCSV, req.URL.Path)
		var body models.BrokenLinksRequest
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		assert.NotNil(t, body.Groups)
		w.Header().Set("Content-Type", "text/csv")
		_, _ = io.WriteString(w, "category,id,title,link,status\r\n")
	})

	data, err := r.DownloadCSV(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "category,id,title,link,status\r\n", string(data))
}

func TestHostKey(t *testing.T) {
	tests := []struct {
		target string
		want   string
	}{
		{"example.com", "example.com"},
		{"https://www.example.com/shop/", "www.example.com"},
		{"http://example.com:8080", "example.com"},
	}
	for _, tt := range tests {
		got, err := HostKey(tt.target)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.target)
	}
}

func TestSave(t *testing.T) {
	r := newReporter(t, func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, http.MethodPost, req.Method)
		assert.Equal(t, "/reports/example.com", req.URL.Path)
		var body map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		assert.Contains(t, body, "groups")
		assert.Equal(t, "null", string(body["security"]))
		writeJSON(w, models.SaveResponse{Saved: true, Filename: "2024-05-01T10-00-00.json"})
	})

	filename, err := r.Save(context.Background(), models.Report{Groups: sampleGroups()}, "example.com")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01T10-00-00.json", filename)
}

func TestSaveFailure(t *testing.T) {
	r := newReporter(t, func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, "disk full", http.StatusInternalServerError)
	})

	_, err := r.Save(context.Background(), models.Report{}, "example.com")
	require.Error(t, err)
	var te *client.TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.StatusInternalServerError, te.Status)

	_, err = r.Save(context.Background(), models.Report{}, "")
	assert.Error(t, err)
}

func TestSavedReports(t *testing.T) {
	r := newReporter(t, func(w http.ResponseWriter, req *http.Request) {
		switch {
		case req.Method == http.MethodGet && req.URL.Path == "/reports/example.com":
			writeJSON(w, []models.SavedReport{{Filename: "b.json", Timestamp: "b"}, {Filename: "a.json", Timestamp: "a"}})
		case req.Method == http.MethodGet && req.URL.Path == "/reports/example.com/b.json":
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"broken": ["https://example.com/dead"], "extra": 1}`)
		case req.Method == http.MethodDelete && req.URL.Path == "/reports/example.com/b.json":
			writeJSON(w, map[string]bool{"deleted": true})
		case req.Method == http.MethodDelete:
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"deleted": false}`)
		default:
			http.NotFound(w, req)
		}
	})
	ctx := context.Background()

	saved, err := r.ListSaved(ctx, "https://example.com")
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.Equal(t, "b.json", saved[0].Filename)

	report, err := r.FetchSaved(ctx, "example.com", "b.json")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/dead"}, report.Broken)
	assert.Equal(t, []models.Field{models.FieldBroken}, report.Present())

	require.NoError(t, r.DeleteSaved(ctx, "example.com", "b.json"))
	err = r.DeleteSaved(ctx, "example.com", "missing.json")
	var te *client.TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.StatusNotFound, te.Status)
}

func TestLoad(t *testing.T) {
	t.Run("subset", func(t *testing.T) {
		report, err := Load(strings.NewReader(`{"seo": [{"title": "Home", "score": 70}], "unknown": true}`))
		require.NoError(t, err)
		assert.Equal(t, []models.Field{models.FieldSEO}, report.Present())
		assert.Equal(t, "Home", report.SEO[0].Title)
	})

	t.Run("null is absent", func(t *testing.T) {
		report, err := Load(strings.NewReader(`{"groups": [], "summary": null, "security": null}`))
		require.NoError(t, err)
		assert.Equal(t, []models.Field{models.FieldGroups}, report.Present())
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := Load(strings.NewReader(`{"groups": [`))
		require.Error(t, err)
		assert.True(t, IsMalformed(err))
		var malformed *MalformedReportError
		require.True(t, errors.As(err, &malformed))
		assert.NotNil(t, malformed.Cause)
	})

	t.Run("wrong shape", func(t *testing.T) {
		_, err := Load(strings.NewReader(`[1, 2, 3]`))
		assert.True(t, IsMalformed(err))
	})
}

func fixedReporter() *Reporter {
	r := New(nil)
	r.now = func() time.Time { return time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC) }
	return r
}

func TestGenerateReport(t *testing.T) {
	r := fixedReporter()
	report := models.Report{
		Target:      "https://example.com",
		Groups:      sampleGroups(),
		Performance: &models.PerformanceResult{StatusCode: 200, ResponseTimeMs: 2500},
		Broken:      []string{"https://example.com/dead"},
		Users:       []models.UserEntry{{ID: "1", Name: "admin", ProfileLink: "https://example.com/author/admin/"}},
	}

	md, err := r.GenerateReport(report, FormatMarkdown)
	require.NoError(t, err)
	assert.Contains(t, md, "# Audit Report for https://example.com")
	assert.Contains(t, md, "*Generated on May 1, 2024*")
	assert.Contains(t, md, "| Performance | 40 |")
	assert.Contains(t, md, "### Pages (2)\n- [Home](https://example.com/) (publish)\n")
	assert.Contains(t, md, "- admin (https://example.com/author/admin/)")

	html, err := r.GenerateReport(report, FormatHTML)
	require.NoError(t, err)
	assert.Contains(t, html, "<title>Audit Report - https://example.com</title>")
	assert.Contains(t, html, "Slow response time")

	js, err := r.GenerateReport(report, FormatJSON)
	require.NoError(t, err)
	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(js), &decoded))
	assert.Contains(t, decoded, "scorecard")
	assert.Contains(t, decoded, "report")

	_, err = r.GenerateReport(report, "pdf")
	assert.Error(t, err)
}

func TestWriteLocal(t *testing.T) {
	r := fixedReporter()
	dir := filepath.Join(t.TempDir(), "out")

	path, err := r.WriteLocal(models.Report{Target: "https://example.com/blog", Themes: []string{"astra"}}, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "example.com-2024-05-01T10-30-00.json"), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	loaded, err := Load(f)
	require.NoError(t, err)
	assert.Equal(t, []string{"astra"}, loaded.Themes)
	assert.Equal(t, "https://example.com/blog", loaded.Target)
}
