package normalize

import (
	"strings"

	"github.com/jonathan/job-scraper/internal/extract"
	"github.com/jonathan/job-scraper/internal/types"
	"github.com/jonathan/job-scraper/internal/usajobs"
)

// Defaults for API items with missing fields.
const (
	DefaultOrganization = "Federal Government"
	DefaultAPILocation  = "Location TBD"
)

// APINormalizer builds records from USAJobs search result items.
type APINormalizer struct {
	extractor *extract.Extractor
}

// NewAPINormalizer creates an APINormalizer. A nil extractor selects the federal tables with
// the strict job-type policy.
func NewAPINormalizer(extractor *extract.Extractor) *APINormalizer {
	if extractor == nil {
		extractor = extract.NewFederal()
	}
	return &APINormalizer{extractor: extractor}
}

// Normalize converts one item into a draft record. It returns *RejectError when the title or
// position URI is missing.
func (n *APINormalizer) Normalize(item usajobs.Item) (*types.JobRecord, error) {
	d := item.MatchedObjectDescriptor

	title := strings.TrimSpace(d.PositionTitle)
	link := strings.TrimSpace(d.PositionURI)
	if title == "" || link == "" {
		return nil, &RejectError{Source: usajobs.SourceDomain, Reason: ReasonMissingPosition}
	}

	org := strings.TrimSpace(d.OrganizationName)
	if org == "" {
		org = DefaultOrganization
	}

	description := strings.TrimSpace(d.UserArea.Details.JobSummary.Join() + " " + d.UserArea.Details.MajorDuties.Join())
	technical, soft := n.extractor.Skills(description)

	record := &types.JobRecord{
		Title:           title,
		JobType:         n.extractor.JobType(title, description),
		Organization:    org,
		ApplyLink:       link,
		Locations:       apiLocations(d),
		WorkFormat:      apiWorkFormat(d.UserArea.Details),
		TechnicalSkills: technical,
		SoftSkills:      soft,
		Sectors:         n.extractor.Sectors(org + " " + title + " " + description),
		SourceDomain:    usajobs.SourceDomain,
		PostingDate:     datePart(d.PublicationStartDate),
	}

	for _, loc := range d.PositionLocation {
		if loc.Latitude.Valid && loc.Longitude.Valid {
			lat, lon := loc.Latitude.Value, loc.Longitude.Value
			record.Latitude = &lat
			record.Longitude = &lon
			break
		}
	}

	return record, nil
}

// apiLocations prefers structured "City, ST" locations and falls back to the display text.
func apiLocations(d usajobs.Descriptor) []string {
	var locations []string
	for _, loc := range d.PositionLocation {
		city, _, _ := strings.Cut(loc.CityName, ",")
		city = strings.TrimSpace(city)
		state := strings.TrimSpace(loc.CountrySubDivisionCode)
		if city != "" && state != "" {
			locations = append(locations, city+", "+state)
		}
	}
	locations = types.UniqueStrings(locations)
	if len(locations) > 0 {
		return locations
	}

	locations = types.UniqueStrings(d.PositionLocationDisplay)
	if len(locations) == 0 {
		return []string{DefaultAPILocation}
	}
	return locations
}

func apiWorkFormat(details usajobs.Details) []types.WorkFormat {
	var formats []types.WorkFormat
	if details.RemoteIndicator {
		formats = append(formats, types.WorkFormatRemote)
	}
	if details.TeleworkEligible {
		formats = append(formats, types.WorkFormatHybrid)
	}
	if len(formats) == 0 {
		return []types.WorkFormat{types.WorkFormatOnsite}
	}
	return formats
}

func datePart(timestamp string) string {
	date, _, _ := strings.Cut(strings.TrimSpace(timestamp), "T")
	return date
}
