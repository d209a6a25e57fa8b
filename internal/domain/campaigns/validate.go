package campaigns

import (
	"net/url"
	"regexp"
	"strings"

	"coop-intake-go/internal/domain/validation"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

func normalizeInput(input CampaignInput) CampaignInput {
	input.Name = strings.TrimSpace(input.Name)
	input.Slug = strings.TrimSpace(input.Slug)
	input.BannerURL = strings.TrimSpace(input.BannerURL)
	input.ClientID = strings.TrimSpace(input.ClientID)
	input.FunctionID = strings.TrimSpace(input.FunctionID)
	input.Professions = NormalizeProfessions(input.Professions)
	return input
}

func Validate(input CampaignInput) error {
	v := validation.New()

	if len([]rune(input.Name)) < 3 {
		v.Add("name", "campaign name is required")
	}

	switch {
	case len(input.Slug) < 3:
		v.Add("slug", "slug must have at least 3 characters")
	case !slugPattern.MatchString(input.Slug):
		v.Add("slug", "only lowercase letters, digits and hyphens")
	}

	if input.BannerURL != "" && !isURL(input.BannerURL) {
		v.Add("bannerUrl", "invalid banner url")
	}
	if input.ClientID == "" {
		v.Add("clientId", "client id is required")
	}
	if input.FunctionID == "" {
		v.Add("functionId", "function id is required")
	}
	if len(input.Professions) == 0 {
		v.Add("professions", "add at least one profession")
	}

	return v.Err()
}

func isURL(value string) bool {
	parsed, err := url.Parse(value)
	if err != nil {
		return false
	}
	return parsed.Scheme != "" && parsed.Host != ""
}
