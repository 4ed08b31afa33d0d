package normalize

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jonathan/job-scraper/internal/extract"
	"github.com/jonathan/job-scraper/internal/fetch"
	"github.com/jonathan/job-scraper/internal/types"
)

var (
	titleClassPattern = regexp.MustCompile(`(?i)job[-_]?title`)
	datePattern       = regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{2,4}`)
)

// HTMLNormalizer builds records from listing page candidates.
type HTMLNormalizer struct {
	extractor *extract.Extractor
	describer fetch.Describer
	logger    *slog.Logger
}

// NewHTMLNormalizer creates an HTMLNormalizer. A nil describer disables detail page enrichment
// and the candidate's own text is used as the description.
func NewHTMLNormalizer(extractor *extract.Extractor, describer fetch.Describer, logger *slog.Logger) *HTMLNormalizer {
	if extractor == nil {
		extractor = extract.NewGeneric()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &HTMLNormalizer{extractor: extractor, describer: describer, logger: logger}
}

// Normalize converts one candidate node into a draft record. It returns *RejectError when the
// candidate has no title or no usable link.
func (n *HTMLNormalizer) Normalize(ctx context.Context, candidate *goquery.Selection, baseURL string) (*types.JobRecord, error) {
	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		return nil, &RejectError{Source: baseURL, Reason: ReasonInvalidBaseURL}
	}

	titleElem := titleElement(candidate)
	if titleElem == nil {
		return nil, &RejectError{Source: baseURL, Reason: ReasonNoTitle}
	}
	title := fetch.VisibleText(titleElem)
	if title == "" {
		return nil, &RejectError{Source: baseURL, Reason: ReasonNoTitle}
	}

	href := linkHref(candidate, titleElem)
	if href == "" {
		return nil, &RejectError{Source: baseURL, Reason: ReasonNoLink}
	}
	link, err := resolveLink(base, href)
	if err != nil {
		return nil, &RejectError{Source: baseURL, Reason: ReasonBadLink}
	}

	cardText := fetch.VisibleText(candidate)
	description := n.describe(ctx, link, cardText)
	technical, soft := n.extractor.Skills(description)
	// One line per text node so neighbouring elements never merge into one city name.
	locations := extract.Locations(strings.Join(fetch.TextNodes(candidate), "\n"))

	return &types.JobRecord{
		Title:           title,
		JobType:         n.extractor.JobType(title, description),
		Organization:    OrganizationFromHost(base.Hostname()),
		ApplyLink:       link,
		Locations:       locations,
		WorkFormat:      n.extractor.WorkFormats(description),
		TechnicalSkills: technical,
		SoftSkills:      soft,
		Sectors:         n.extractor.Sectors(title + " " + description),
		SourceDomain:    base.Host,
		PostingDate:     postingDate(candidate),
	}, nil
}

func (n *HTMLNormalizer) describe(ctx context.Context, link, fallback string) string {
	if n.describer == nil {
		return fallback
	}
	text, err := n.describer.Describe(ctx, link)
	if err != nil {
		n.logger.Debug("description fetch failed, using candidate text", "url", link, "error", err)
		return fallback
	}
	if strings.TrimSpace(text) == "" {
		return fallback
	}
	return text
}

// titleElement picks the node holding the posting title: an anchor classed as a job title, then
// the first h2/h3/h4, then the first anchor. An anchor candidate is its own title element.
func titleElement(candidate *goquery.Selection) *goquery.Selection {
	if goquery.NodeName(candidate) == "a" {
		return candidate
	}
	anchors := candidate.Find("a")
	if s := anchors.FilterFunction(func(_ int, s *goquery.Selection) bool {
		return fetch.HasClass(s, titleClassPattern)
	}).First(); s.Length() > 0 {
		return s
	}
	if s := candidate.Find("h2, h3, h4").First(); s.Length() > 0 {
		return s
	}
	if s := anchors.First(); s.Length() > 0 {
		return s
	}
	return nil
}

func linkHref(candidate, titleElem *goquery.Selection) string {
	if goquery.NodeName(titleElem) == "a" {
		href, _ := titleElem.Attr("href")
		return strings.TrimSpace(href)
	}
	href, _ := candidate.Find("a").First().Attr("href")
	return strings.TrimSpace(href)
}

func resolveLink(base *url.URL, href string) (string, error) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return "", errUnsupportedScheme
	}
	return abs.String(), nil
}

var errUnsupportedScheme = errors.New("unsupported link scheme")

func postingDate(candidate *goquery.Selection) string {
	for _, text := range fetch.TextNodes(candidate) {
		if m := datePattern.FindString(text); m != "" {
			return m
		}
	}
	return ""
}

// OrganizationFromHost derives a display name from a host: "www." is dropped and the first
// label is title-cased ("www.acme-labs.com" becomes "Acme-Labs").
func OrganizationFromHost(host string) string {
	host = strings.TrimPrefix(strings.ToLower(host), "www.")
	label, _, _ := strings.Cut(host, ".")
	if label == "" {
		return host
	}
	return cases.Title(language.English).String(label)
}
