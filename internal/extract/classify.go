package extract

import (
	"strings"

	"github.com/jonathan/job-scraper/internal/types"
)

// WorkFormats returns every format whose keywords occur as substrings of text, in table order.
// Defaults to onsite.
func (e *Extractor) WorkFormats(text string) []types.WorkFormat {
	lower := strings.ToLower(text)
	var formats []types.WorkFormat
	for _, c := range e.tax.WorkFormats {
		if containsAny(lower, c.Keywords) {
			formats = append(formats, types.WorkFormat(c.Name))
		}
	}
	if len(formats) == 0 {
		return []types.WorkFormat{types.WorkFormatOnsite}
	}
	return formats
}

// Sectors returns every sector whose keywords occur as substrings of text, in table order.
// Defaults to the taxonomy's default sector.
func (e *Extractor) Sectors(text string) []string {
	lower := strings.ToLower(text)
	var sectors []string
	for _, c := range e.tax.Sectors {
		if containsAny(lower, c.Keywords) {
			sectors = append(sectors, c.Name)
		}
	}
	if len(sectors) == 0 {
		return []string{e.tax.DefaultSector}
	}
	return sectors
}
