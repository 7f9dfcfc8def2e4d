package notify

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWriterNotify(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	Infof(w, "Analysis complete (%d failed)", 0)
	Warnf(w, "robots.txt disallows %s", "/wp-json/")
	Errorf(w, "SEO: status %d", 500)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{
		"Analysis complete (0 failed)",
		"⚠️  robots.txt disallows /wp-json/",
		"❌ SEO: status 500",
	}, lines)
}

func TestSpinnerStartStop(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf)
	s.delay = time.Millisecond

	s.Stop(true) // no-op before Start
	assert.Empty(t, buf.String())

	s.Start("Analyzing")
	s.Start("ignored")
	time.Sleep(5 * time.Millisecond)
	s.Stop(true)
	s.Stop(false)

	out := buf.String()
	assert.Contains(t, out, "⠋ Analyzing")
	assert.True(t, strings.HasSuffix(out, "\r✅ Analyzing\n"))
	assert.NotContains(t, out, "ignored")
}

func TestSpinnerStopFailure(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf)
	s.delay = time.Millisecond

	s.Start("Analyzing")
	s.Stop(false)

	out := buf.String()
	assert.True(t, strings.HasSuffix(out, "\r⚠️  Analyzing\n"))
	assert.NotContains(t, out, "✅")

	buf.Reset()
	s.Start("Again")
	s.Stop(true)
	assert.True(t, strings.HasSuffix(buf.String(), "\r✅ Again\n"))
}
