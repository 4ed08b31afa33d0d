package fetch

import (
	"regexp"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVisibleText_SeparatesNodes(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<div><span>Austin, TX</span><span>Remote</span><script>var x = 1;</script>
		 <p>  Full   time </p></div>`))
	require.NoError(t, err)

	assert.Equal(t, "Austin, TX Remote Full time", VisibleText(doc.Find("div")))
}

func TestTextNodes(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<li><b>Posted</b> <i>03/15/2024</i></li>`))
	require.NoError(t, err)
	assert.Equal(t, []string{"Posted", "03/15/2024"}, TextNodes(doc.Find("li")))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "ab", TruncateRunes("abc", 2))
	assert.Equal(t, "ñá", TruncateRunes("ñáé", 2))
	assert.Equal(t, "abc", TruncateRunes("abc", 10))
}

func TestHasClass(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<div class="row Job-Card featured"></div><div></div>`))
	require.NoError(t, err)
	pattern := regexp.MustCompile(`(?i)job[-_]?card`)

	assert.True(t, HasClass(doc.Find("div").First(), pattern))
	assert.False(t, HasClass(doc.Find("div").Last(), pattern))
}

func TestExtractDescription(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		html     string
		expected string
	}{
		{
			name:     "description div",
			url:      "https://careers.example.com/jobs/1",
			html:     `<body><div class="header">Acme</div><div class="job-details"><p>Design systems.</p></div></body>`,
			expected: "Design systems.",
		},
		{
			name:     "div wins over earlier section",
			url:      "https://careers.example.com/jobs/2",
			html:     `<body><section class="content">First</section><div class="description">Second</div></body>`,
			expected: "Second",
		},
		{
			name:     "section when no div matches",
			url:      "https://careers.example.com/jobs/4",
			html:     `<body><div class="header">Acme</div><section class="job-details">Plan budgets.</section></body>`,
			expected: "Plan budgets.",
		},
		{
			name:     "main fallback",
			url:      "https://careers.example.com/jobs/3",
			html:     `<body><nav>Menu</nav><main><h1>Role</h1><p>Duties</p></main></body>`,
			expected: "Role Duties",
		},
		{
			name:     "greenhouse selectors",
			url:      "https://boards.greenhouse.io/acme/jobs/1",
			html:     `<body><div class="content">Wrapper</div><div class="job__description"><p>Ship code</p><form>Apply</form></div></body>`,
			expected: "Ship code",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := ExtractDescription([]byte(tt.html), tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, text)
		})
	}
}

func TestExtractDescription_TruncatesFallback(t *testing.T) {
	body := "<body><p>" + strings.Repeat("a", MaxFallbackDescription+100) + "</p></body>"
	text, err := ExtractDescription([]byte(body), "https://example.com/job")
	require.NoError(t, err)
	assert.Len(t, text, MaxFallbackDescription)
}
