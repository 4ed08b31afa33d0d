package discovery

import (
	"fmt"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestFind_FirstPatternWins(t *testing.T) {
	doc := parse(t, `<html><body>
		<div class="job-card"><h3>A</h3></div>
		<div class="job-card"><h3>B</h3></div>
		<div class="job-card"><h3>C</h3></div>
		<li class="job-listing"><h3>D</h3></li>
		<li class="job-listing"><h3>E</h3></li>
	</body></html>`)

	result := New(nil).Find(doc)

	assert.Equal(t, 0, result.Pattern)
	require.Len(t, result.Candidates, 3)
	assert.Equal(t, "A", result.Candidates[0].Find("h3").Text())
	assert.Equal(t, "C", result.Candidates[2].Find("h3").Text())
}

func TestFind_LaterPatterns(t *testing.T) {
	tests := []struct {
		name    string
		html    string
		pattern int
		count   int
	}{
		{name: "list items", html: `<ul><li class="job_item">x</li><li class="other">y</li></ul>`, pattern: 1, count: 1},
		{name: "table rows", html: `<table><tr class="jobRow">x</tr><tr class="job-row">y</tr></table>`, pattern: 2, count: 2},
		{name: "articles", html: `<article class="vacancy-summary">x</article>`, pattern: 3, count: 1},
		{name: "usajobs list", html: `<ul><li class="usajobs-search-result--core">x</li></ul>`, pattern: 4, count: 1},
		{name: "career posting", html: `<div class="career_posting">x</div>`, pattern: 5, count: 1},
		{name: "class token match is per token", html: `<div class="card job-post-wrapper">x</div>`, pattern: 0, count: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := New(nil).Find(parse(t, "<html><body>"+tt.html+"</body></html>"))
			assert.Equal(t, tt.pattern, result.Pattern)
			assert.Len(t, result.Candidates, tt.count)
		})
	}
}

func TestFind_AnchorFallback(t *testing.T) {
	doc := parse(t, `<html><body>
		<a href="/jobs/123">Senior Data Engineer</a>
		<a href="/jobs/124">Apply</a>
		<a href="/about">About our company and mission</a>
		<a href="/careers/9">  Program Manager, Remote  </a>
	</body></html>`)

	result := New(nil).Find(doc)

	assert.Equal(t, -1, result.Pattern)
	require.Len(t, result.Candidates, 2)
	href, _ := result.Candidates[0].Attr("href")
	assert.Equal(t, "/jobs/123", href)
	href, _ = result.Candidates[1].Attr("href")
	assert.Equal(t, "/careers/9", href)
}

func TestFind_NoCandidates(t *testing.T) {
	result := New(nil).Find(parse(t, `<html><body><p>Nothing here</p></body></html>`))
	assert.Empty(t, result.Candidates)
}

func TestCap(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 150; i++ {
		fmt.Fprintf(&b, `<div class="job-card"><h3>Job %d</h3></div>`, i)
	}
	result := New(nil).Find(parse(t, "<html><body>"+b.String()+"</body></html>"))
	require.Len(t, result.Candidates, 150)

	capped := Cap(result.Candidates, DefaultMaxCandidates)
	assert.Len(t, capped, 100)
	assert.Equal(t, "Job 99", capped[99].Find("h3").Text())
	assert.Len(t, Cap(result.Candidates, 0), 150)
}
