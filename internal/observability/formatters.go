// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/jonathan/job-scraper/internal/pipeline"
	"github.com/jonathan/job-scraper/internal/stats"
	"github.com/jonathan/job-scraper/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// PrintRun outputs the run record and per-source counters.
func (p *Printer) PrintRun(run *types.ScrapeRun, summary *pipeline.Summary) {
	if run == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Run:      %s\n", run.ID))
	sb.WriteString(fmt.Sprintf("Status:   %s\n", run.Status))
	if run.CompletedAt != nil {
		sb.WriteString(fmt.Sprintf("Duration: %s\n", run.CompletedAt.Sub(run.StartedAt).Round(time.Millisecond)))
	}
	sb.WriteString(fmt.Sprintf("Found: %d  Added: %d  Updated: %d\n", run.JobsFound, run.JobsAdded, run.JobsUpdated))
	if run.ErrorMessage != "" {
		sb.WriteString(fmt.Sprintf("Error:    %s\n", run.ErrorMessage))
	}

	if summary != nil && len(summary.Sources) > 0 {
		sb.WriteString("\n")
		for i, src := range summary.Sources {
			sb.WriteString(src.Source + "\n")
			sb.WriteString(fmt.Sprintf("  candidates %d, found %d, created %d, updated %d\n",
				src.Candidates, src.Found, src.Created, src.Updated))
			sb.WriteString(fmt.Sprintf("  unchanged %d, skipped %d, rejected %d, errors %d\n",
				src.Unchanged, src.Skipped, src.Rejected, src.Errors))
			if src.Error != "" {
				sb.WriteString(fmt.Sprintf("  ✗ %s\n", src.Error))
			}
			if i < len(summary.Sources)-1 {
				sb.WriteString("\n")
			}
		}
	}

	p.printBox("SCRAPE RUN", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintJobs outputs the first few records, used by dry runs.
func (p *Printer) PrintJobs(jobs []types.JobRecord) {
	if len(jobs) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d records\n\n", len(jobs)))
	count := min(len(jobs), maxItemsToShow)
	for i := 0; i < count; i++ {
		job := jobs[i]
		sb.WriteString(fmt.Sprintf("• %s\n", job.Title))
		sb.WriteString(fmt.Sprintf("  %s | %s\n", job.Organization, job.JobType.Label()))
		sb.WriteString(fmt.Sprintf("  %s\n", strings.Join(job.Locations, "; ")))

		formats := make([]string, len(job.WorkFormat))
		for j, f := range job.WorkFormat {
			formats[j] = string(f)
		}
		sb.WriteString(fmt.Sprintf("  [%s] %s\n", strings.Join(formats, ", "), strings.Join(job.Sectors, ", ")))
		if skills := flattenSkills(job.TechnicalSkills); len(skills) > 0 {
			sb.WriteString(fmt.Sprintf("  Skills: %s\n", strings.Join(skills, ", ")))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}
	if len(jobs) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more", len(jobs)-maxItemsToShow))
	}

	p.printBox("NORMALIZED RECORDS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCleanup outputs retention results. Negative counts mean the step was skipped.
func (p *Printer) PrintCleanup(closed, deleted int64) {
	var sb strings.Builder
	if closed >= 0 {
		sb.WriteString(fmt.Sprintf("Auto-closed: %d\n", closed))
	}
	if deleted >= 0 {
		sb.WriteString(fmt.Sprintf("Deleted:     %d\n", deleted))
	}
	if sb.Len() == 0 {
		return
	}
	p.printBox("CLEANUP", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintStats outputs an aggregate summary.
func (p *Printer) PrintStats(s *stats.Summary) {
	if s == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total jobs: %d   Avg skills/job: %.1f\n", s.TotalJobs, s.AvgSkillsPerJob))
	sb.WriteString("Types:   " + formatCounts(s.JobTypes) + "\n")
	sb.WriteString("Formats: " + formatCounts(s.WorkFormats) + "\n")
	writeTop(&sb, "Top sectors", s.TopSectors)
	writeTop(&sb, "Top technical skills", s.TopTechnicalSkills)
	writeTop(&sb, "Top soft skills", s.TopSoftSkills)

	p.printBox("JOB STATISTICS", strings.TrimSuffix(sb.String(), "\n"))
}

func writeTop(sb *strings.Builder, title string, counts []stats.Count) {
	if len(counts) == 0 {
		return
	}
	sb.WriteString("\n" + title + ":\n")
	for _, c := range counts[:min(len(counts), maxItemsToShow)] {
		sb.WriteString(fmt.Sprintf("  • %s (%d)\n", c.Label, c.Count))
	}
}

func formatCounts(m map[string]int) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, m[k])
	}
	return strings.Join(parts, " ")
}

func flattenSkills(skills map[string][]string) []string {
	categories := make([]string, 0, len(skills))
	for c := range skills {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	var out []string
	for _, c := range categories {
		out = append(out, skills[c]...)
	}
	return out
}
