// Package stats summarizes a set of job records for dashboards and the REST API.
package stats

import (
	"math"
	"sort"

	"github.com/jonathan/job-scraper/internal/types"
)

// Limits on the ranked lists.
const (
	TopSectorsLimit = 5
	TopSkillsLimit  = 10
)

// Count is a label with its number of occurrences.
type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Summary describes a set of jobs.
type Summary struct {
	TotalJobs          int            `json:"total_jobs"`
	JobTypes           map[string]int `json:"job_types"`
	TopSectors         []Count        `json:"top_sectors"`
	TopTechnicalSkills []Count        `json:"top_technical_skills"`
	TopSoftSkills      []Count        `json:"top_soft_skills"`
	WorkFormats        map[string]int `json:"work_formats"`
	AvgSkillsPerJob    float64        `json:"avg_skills_per_job"`
}

// Summarize computes a Summary. It returns nil for an empty set. Ties in ranked lists keep
// first-seen order.
func Summarize(jobs []types.JobRecord) *Summary {
	if len(jobs) == 0 {
		return nil
	}

	s := &Summary{
		TotalJobs:   len(jobs),
		JobTypes:    make(map[string]int),
		WorkFormats: make(map[string]int),
	}
	sectors := newCounter()
	technical := newCounter()
	soft := newCounter()
	totalSkills := 0

	for i := range jobs {
		job := &jobs[i]
		s.JobTypes[string(job.JobType)]++
		for _, sector := range job.Sectors {
			sectors.add(sector)
		}
		for _, category := range sortedKeys(job.TechnicalSkills) {
			for _, skill := range job.TechnicalSkills[category] {
				technical.add(skill)
			}
		}
		for _, skill := range job.SoftSkills {
			soft.add(skill)
		}
		for _, f := range job.WorkFormat {
			s.WorkFormats[string(f)]++
		}
		totalSkills += job.SkillCount()
	}

	s.TopSectors = sectors.top(TopSectorsLimit)
	s.TopTechnicalSkills = technical.top(TopSkillsLimit)
	s.TopSoftSkills = soft.top(TopSkillsLimit)
	s.AvgSkillsPerJob = math.Round(float64(totalSkills)/float64(len(jobs))*10) / 10
	return s
}

type counter struct {
	order  []string
	counts map[string]int
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(label string) {
	if _, ok := c.counts[label]; !ok {
		c.order = append(c.order, label)
	}
	c.counts[label]++
}

func (c *counter) top(n int) []Count {
	out := make([]Count, len(c.order))
	for i, label := range c.order {
		out[i] = Count{Label: label, Count: c.counts[label]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
