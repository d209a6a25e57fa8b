package campaigns

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
)

// Uncategorized is the campaign id stored on proposals that did not come
// through a campaign landing page.
const Uncategorized = "uncategorized"

type Campaign struct {
	ID          string         `gorm:"type:uuid;primaryKey"`
	Name        string         `gorm:"not null"`
	Slug        string         `gorm:"not null;uniqueIndex:campaigns_slug_key"`
	BannerURL   string         `gorm:"not null"`
	ClientID    string         `gorm:"not null"`
	FunctionID  string         `gorm:"not null"`
	Professions pq.StringArray `gorm:"type:text[];not null"`
	Active      bool           `gorm:"not null"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
}

// ProfessionList accepts either a JSON array of strings or a single
// comma-separated string and normalizes it to trimmed, non-empty entries.
type ProfessionList []string

func (p *ProfessionList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*p = nil
		return nil
	}

	if strings.HasPrefix(trimmed, "\"") {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		*p = NormalizeProfessions(strings.Split(raw, ","))
		return nil
	}

	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("professions must be a string or an array of strings: %w", err)
	}
	*p = NormalizeProfessions(items)
	return nil
}

func NormalizeProfessions(items []string) []string {
	result := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		result = append(result, item)
	}
	return result
}

type CampaignInput struct {
	Name        string
	Slug        string
	BannerURL   string
	ClientID    string
	FunctionID  string
	Professions []string
	Active      *bool
}
