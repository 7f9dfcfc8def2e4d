package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// AnalysisRequest is the shared body sent to every analysis endpoint
type AnalysisRequest struct {
	URL      string `json:"url"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// ThemePluginRequest extends the base request with the links to fingerprint
type ThemePluginRequest struct {
	AnalysisRequest
	URLs []string `json:"urls"`
}

// BrokenLinksRequest is the body of the broken-link check
type BrokenLinksRequest struct {
	Groups []ContentGroup `json:"groups"`
}

// ItemID holds a content identifier that the backend sends either as a
// number (posts, pages, media) or as an empty string (archives).
type ItemID string

// UnmarshalJSON accepts numbers, strings and null.
func (id *ItemID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*id = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ItemID(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("invalid item id %s: %w", data, err)
		}
		*id = ItemID(n.String())
	}
	return nil
}

// MarshalJSON writes canonical integer ids as numbers and everything else,
// including forms like "007" or "+5", as strings.
func (id ItemID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// ContentItem is one entry of a content group
type ContentItem struct {
	ID     ItemID `json:"id"`
	Title  string `json:"title"`
	Link   string `json:"link"`
	Status string `json:"status"`
	Size   string `json:"size,omitempty"`
}

// ContentGroup is a category of site content with its items
type ContentGroup struct {
	Category string        `json:"category"`
	Items    []ContentItem `json:"items"`
}

// ContentSummary counts the inventory returned by the content stage
type ContentSummary struct {
	Pages    int            `json:"pages"`
	Posts    int            `json:"posts"`
	Media    int            `json:"media"`
	CPTs     map[string]int `json:"cpts"`
	Archives int            `json:"archives"`
	Errors   []string       `json:"errors"`
}

// ContentResponse is the payload of /analyze/content
type ContentResponse struct {
	Summary ContentSummary `json:"summary"`
	Groups  []ContentGroup `json:"groups"`
}

// SeoEntry holds the on-page SEO data of a single page or post
type SeoEntry struct {
	ID        ItemID            `json:"id"`
	Title     string            `json:"title"`
	Link      string            `json:"link"`
	TitleTag  string            `json:"title_tag"`
	MetaDesc  string            `json:"meta_desc"`
	Headings  map[string]int    `json:"headings"`
	Score     float64           `json:"score"`
	Canonical string            `json:"canonical,omitempty"`
	OG        map[string]string `json:"og,omitempty"`
	Twitter   map[string]string `json:"twitter,omitempty"`

	// Key identifies the entry independently of its position in any view.
	// It is kept in saved documents so keys survive a reload.
	Key string `json:"key,omitempty"`
}

// PerformanceResult is the basic response-time measurement of the home page
type PerformanceResult struct {
	StatusCode     int     `json:"status_code"`
	ResponseTimeMs float64 `json:"response_time_ms"`
	ContentLength  int64   `json:"content_length"`
}

// LighthouseResult holds lab metrics in milliseconds (CLS is a ratio)
type LighthouseResult struct {
	Score float64 `json:"score"`
	FCP   float64 `json:"FCP"`
	LCP   float64 `json:"LCP"`
	CLS   float64 `json:"CLS"`
	TBT   float64 `json:"TBT"`
	SI    float64 `json:"SI"`
	TTI   float64 `json:"TTI"`
}

// AccessibilityResult summarizes accessibility checks of the home page
type AccessibilityResult struct {
	TotalImages    int            `json:"total_images"`
	MissingAlt     int            `json:"missing_alt"`
	MissingLabels  int            `json:"missing_labels"`
	EmptyLinks     int            `json:"empty_links"`
	Landmarks      int            `json:"landmarks"`
	SkipLinks      int            `json:"skip_links"`
	Headings       map[string]int `json:"headings"`
	MissingAltList []string       `json:"missing_alt_list"`
	EmptyLinksList []string       `json:"empty_links_list"`
}

// SecurityResult summarizes security headers, cookies and TLS expiry
type SecurityResult struct {
	HSTS           bool    `json:"hsts"`
	HSTSMaxAge     *string `json:"hsts_max_age"`
	CSP            bool    `json:"csp"`
	HTTPOnlyCount  int     `json:"http_only"`
	CookieSecure   bool    `json:"cookie_secure"`
	XFO            string  `json:"xfo"`
	XSS            string  `json:"xss"`
	ReferrerPolicy string  `json:"referrer_policy"`
	TLSDays        *int    `json:"tls_days"`
	ServerHeader   string  `json:"server_header"`
}

// ThemePluginResult lists detected theme and plugin slugs
type ThemePluginResult struct {
	Themes  []string `json:"themes"`
	Plugins []string `json:"plugins"`
}

// UserEntry is a user exposed by the WordPress REST API
type UserEntry struct {
	ID          ItemID `json:"id,omitempty"`
	Name        string `json:"name"`
	ProfileLink string `json:"link"`
}

// SaveResponse is returned by the report persistence endpoint
type SaveResponse struct {
	Saved    bool   `json:"saved"`
	Filename string `json:"filename"`
}

// SavedReport describes a report stored server-side
type SavedReport struct {
	Filename  string `json:"filename"`
	Timestamp string `json:"timestamp"`
}

// Report aggregates the latest result of every analysis stage.
// A nil field means the corresponding stage has not produced a result.
type Report struct {
	Target        string               `json:"target,omitempty"`
	Groups        []ContentGroup       `json:"groups"`
	Summary       *ContentSummary      `json:"summary"`
	SEO           []SeoEntry           `json:"seo"`
	Performance   *PerformanceResult   `json:"performance"`
	Lighthouse    *LighthouseResult    `json:"lighthouse"`
	Accessibility *AccessibilityResult `json:"accessibility"`
	Security      *SecurityResult      `json:"security"`
	Broken        []string             `json:"broken"`
	Themes        []string             `json:"themes"`
	Plugins       []string             `json:"plugins"`
	Users         []UserEntry          `json:"users"`
}

// Field names a Report field, matching the JSON document keys
type Field string

const (
	FieldGroups        Field = "groups"
	FieldSummary       Field = "summary"
	FieldSEO           Field = "seo"
	FieldPerformance   Field = "performance"
	FieldLighthouse    Field = "lighthouse"
	FieldAccessibility Field = "accessibility"
	FieldSecurity      Field = "security"
	FieldBroken        Field = "broken"
	FieldThemes        Field = "themes"
	FieldPlugins       Field = "plugins"
	FieldUsers         Field = "users"
)

// Present returns the fields that carry a value, in document order.
func (r Report) Present() []Field {
	var fields []Field
	add := func(ok bool, f Field) {
		if ok {
			fields = append(fields, f)
		}
	}
	add(r.Groups != nil, FieldGroups)
	add(r.Summary != nil, FieldSummary)
	add(r.SEO != nil, FieldSEO)
	add(r.Performance != nil, FieldPerformance)
	add(r.Lighthouse != nil, FieldLighthouse)
	add(r.Accessibility != nil, FieldAccessibility)
	add(r.Security != nil, FieldSecurity)
	add(r.Broken != nil, FieldBroken)
	add(r.Themes != nil, FieldThemes)
	add(r.Plugins != nil, FieldPlugins)
	add(r.Users != nil, FieldUsers)
	return fields
}

// Has reports whether field f is present.
func (r Report) Has(f Field) bool {
	for _, p := range r.Present() {
		if p == f {
			return true
		}
	}
	return false
}

// Links flattens the item links of all groups, in group order then item order.
func Links(groups []ContentGroup) []string {
	links := []string{}
	for _, g := range groups {
		for _, it := range g.Items {
			links = append(links, it.Link)
		}
	}
	return links
}
