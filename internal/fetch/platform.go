package fetch

import (
	"net/url"
	"strings"
)

// Platform represents a known job board platform hosting detail pages.
type Platform string

const (
	// PlatformGreenhouse is the Greenhouse ATS platform
	PlatformGreenhouse Platform = "greenhouse"
	// PlatformLever is the Lever ATS platform
	PlatformLever Platform = "lever"
	// PlatformWorkday is the Workday ATS platform
	PlatformWorkday Platform = "workday"
	// PlatformUSAJobs is the federal USAJobs announcement site
	PlatformUSAJobs Platform = "usajobs"
	// PlatformUnknown is an unrecognized platform
	PlatformUnknown Platform = "unknown"
)

// DetectPlatform identifies the job board platform from a detail page URL.
func DetectPlatform(urlStr string) Platform {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return PlatformUnknown
	}

	host := strings.ToLower(parsed.Hostname())
	switch {
	case strings.HasSuffix(host, "greenhouse.io"):
		return PlatformGreenhouse
	case strings.HasSuffix(host, "lever.co"):
		return PlatformLever
	case strings.HasSuffix(host, "myworkdayjobs.com"), strings.HasSuffix(host, "workday.com"):
		return PlatformWorkday
	case strings.HasSuffix(host, "usajobs.gov"):
		return PlatformUSAJobs
	}
	return PlatformUnknown
}

// PlatformDescriptionSelectors returns description selectors for a platform, most specific first.
func PlatformDescriptionSelectors(platform Platform) []string {
	switch platform {
	case PlatformGreenhouse:
		return []string{".job__description", "#content", ".job-post-container"}
	case PlatformLever:
		return []string{".posting-description", ".section-wrapper.page-full-width"}
	case PlatformWorkday:
		return []string{"[data-automation-id='jobPostingDescription']", "[data-automation-id='jobDescription']"}
	case PlatformUSAJobs:
		return []string{"#summary", "#duties"}
	default:
		return nil
	}
}

// PlatformNoiseSelectors returns elements stripped before description extraction.
func PlatformNoiseSelectors(platform Platform) []string {
	common := []string{
		"form",
		".application-form",
		".apply-button-container",
		".eeo-statement",
		".cookie-banner",
		".social-share",
	}

	switch platform {
	case PlatformGreenhouse:
		return append(common, ".application--wrapper", "#usa_self_id_section")
	case PlatformLever:
		return append(common, ".posting-apply", ".lever-application-form")
	case PlatformWorkday:
		return append(common, "[data-automation-id='applyButton']")
	default:
		return common
	}
}
