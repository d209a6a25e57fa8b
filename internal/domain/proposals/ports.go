package proposals

import (
	"context"

	"coop-intake-go/internal/domain/campaigns"
)

type InitialNotice struct {
	Name  string `json:"nome"`
	Link  string `json:"link"`
	Phone string `json:"numero"`
}

type FinalNotice struct {
	Name  string `json:"nome"`
	Phone string `json:"numero"`
}

// Notifier delivers status messages to the applicant's phone.
type Notifier interface {
	SendInitial(ctx context.Context, notice InitialNotice) error
	SendFinal(ctx context.Context, notice FinalNotice) error
}

// Submission is everything the CRM needs for one proposal. Campaign is nil for
// uncategorized proposals or campaigns that no longer exist.
type Submission struct {
	Proposal  Proposal
	Documents []Document
	Campaign  *campaigns.Campaign
}

type CRM interface {
	Submit(ctx context.Context, submission Submission) (SyncOutcome, error)
}

type CampaignLookup interface {
	GetCampaign(ctx context.Context, id string) (*campaigns.Campaign, error)
}

// Runner executes side effects outside the request that triggered them.
// Go returns false when the task was not accepted.
type Runner interface {
	Go(name string, task func(ctx context.Context)) bool
}
