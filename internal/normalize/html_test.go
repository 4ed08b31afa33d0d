package normalize

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-scraper/internal/types"
)

type stubDescriber struct {
	text string
	err  error
	urls []string
}

func (s *stubDescriber) Describe(_ context.Context, u string) (string, error) {
	s.urls = append(s.urls, u)
	return s.text, s.err
}

func candidate(t *testing.T, html, selector string) *goquery.Selection {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><body>" + html + "</body></html>"))
	require.NoError(t, err)
	sel := doc.Find(selector).First()
	require.Equal(t, 1, sel.Length())
	return sel
}

func TestHTMLNormalize_CardWithHeading(t *testing.T) {
	card := candidate(t, `<div class="job-card">
		<h3>Software Engineering Intern</h3>
		<span>Austin, TX</span><span>Hybrid</span>
		<a href="/jobs/42">Apply</a>
		<p>Posted 03/15/2024</p>
	</div>`, "div.job-card")

	d := &stubDescriber{text: "Summer internship building Python services for our fintech platform. Work from home two days."}
	n := NewHTMLNormalizer(nil, d, nil)

	rec, err := n.Normalize(context.Background(), card, "https://www.acme-labs.com/careers")
	require.NoError(t, err)

	assert.Equal(t, "Software Engineering Intern", rec.Title)
	assert.Equal(t, "https://www.acme-labs.com/jobs/42", rec.ApplyLink)
	assert.Equal(t, []string{"https://www.acme-labs.com/jobs/42"}, d.urls)
	assert.Equal(t, "Acme-Labs", rec.Organization)
	assert.Equal(t, "www.acme-labs.com", rec.SourceDomain)
	assert.Equal(t, types.JobTypeInternship, rec.JobType)
	assert.Equal(t, []string{"Austin, TX", "Hybrid"}, rec.Locations)
	assert.Equal(t, []types.WorkFormat{types.WorkFormatRemote}, rec.WorkFormat)
	assert.Equal(t, []string{"Python"}, rec.TechnicalSkills["Programming Languages"])
	assert.Contains(t, rec.Sectors, "Finance")
	assert.Equal(t, "03/15/2024", rec.PostingDate)
	assert.NoError(t, rec.Validate())
}

func TestHTMLNormalize_TitleAnchorPreferred(t *testing.T) {
	card := candidate(t, `<li class="job-item">
		<h2>Team: Platform</h2>
		<a class="other" href="https://jobs.example.org/a">Other</a>
		<a class="job-title" href="https://jobs.example.org/b">Data Analyst</a>
	</li>`, "li")

	rec, err := NewHTMLNormalizer(nil, nil, nil).Normalize(context.Background(), card, "https://example.org/list")
	require.NoError(t, err)
	assert.Equal(t, "Data Analyst", rec.Title)
	assert.Equal(t, "https://jobs.example.org/b", rec.ApplyLink)
}

func TestHTMLNormalize_AnchorCandidate(t *testing.T) {
	card := candidate(t, `<a href="careers/postdoc-1">Postdoctoral Research Fellow</a>`, "a")

	rec, err := NewHTMLNormalizer(nil, nil, nil).Normalize(context.Background(), card, "https://lab.example.edu/positions/")
	require.NoError(t, err)
	assert.Equal(t, "Postdoctoral Research Fellow", rec.Title)
	assert.Equal(t, "https://lab.example.edu/positions/careers/postdoc-1", rec.ApplyLink)
	assert.Equal(t, types.JobTypeFellowship, rec.JobType)
	assert.Equal(t, []string{types.DefaultLocation}, rec.Locations)
	assert.Equal(t, []types.WorkFormat{types.WorkFormatOnsite}, rec.WorkFormat)
}

func TestHTMLNormalize_DescriptionFallback(t *testing.T) {
	card := candidate(t, `<div class="job-card"><h3>Nurse</h3><a href="/n">x</a><p>Remote clinical role</p></div>`, "div")

	for _, d := range []*stubDescriber{{err: errors.New("timeout")}, {text: "   "}} {
		rec, err := NewHTMLNormalizer(nil, d, nil).Normalize(context.Background(), card, "https://care.example.com")
		require.NoError(t, err)
		assert.Equal(t, []types.WorkFormat{types.WorkFormatRemote}, rec.WorkFormat)
		assert.Contains(t, rec.Sectors, "Healthcare")
	}
}

func TestHTMLNormalize_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		html    string
		sel     string
		baseURL string
		reason  string
	}{
		{name: "no title", html: `<div class="job-card"><span>Austin, TX</span></div>`, sel: "div", baseURL: "https://a.example.com", reason: ReasonNoTitle},
		{name: "empty heading", html: `<div class="job-card"><h3>  </h3><a href="/x">go</a></div>`, sel: "div", baseURL: "https://a.example.com", reason: ReasonNoTitle},
		{name: "no link", html: `<div class="job-card"><h3>Analyst</h3></div>`, sel: "div", baseURL: "https://a.example.com", reason: ReasonNoLink},
		{name: "mailto link", html: `<div class="job-card"><h3>Analyst</h3><a href="mailto:hr@example.com">Email</a></div>`, sel: "div", baseURL: "https://a.example.com", reason: ReasonBadLink},
		{name: "bad base", html: `<div class="job-card"><h3>Analyst</h3></div>`, sel: "div", baseURL: "not a url", reason: ReasonInvalidBaseURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewHTMLNormalizer(nil, nil, nil).Normalize(context.Background(), candidate(t, tt.html, tt.sel), tt.baseURL)
			var rejectErr *RejectError
			require.ErrorAs(t, err, &rejectErr)
			assert.Equal(t, tt.reason, rejectErr.Reason)
		})
	}
}

func TestOrganizationFromHost(t *testing.T) {
	assert.Equal(t, "Acme", OrganizationFromHost("www.acme.com"))
	assert.Equal(t, "Careers", OrganizationFromHost("careers.example.org"))
	assert.Equal(t, "Localhost", OrganizationFromHost("LOCALHOST"))
}
