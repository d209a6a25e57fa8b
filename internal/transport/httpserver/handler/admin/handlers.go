package admin

import (
	"context"
	"time"

	campaignsdomain "coop-intake-go/internal/domain/campaigns"
	proposalsdomain "coop-intake-go/internal/domain/proposals"
	"coop-intake-go/pkg/logger"
)

type CampaignAdmin interface {
	ListCampaigns(ctx context.Context) ([]campaignsdomain.Campaign, error)
	GetCampaign(ctx context.Context, id string) (*campaignsdomain.Campaign, error)
	CreateCampaign(ctx context.Context, input campaignsdomain.CampaignInput) (*campaignsdomain.Campaign, error)
	UpdateCampaign(ctx context.Context, id string, input campaignsdomain.CampaignInput) (*campaignsdomain.Campaign, error)
}

type ProposalAdmin interface {
	ListProposals(ctx context.Context, filter proposalsdomain.ListFilter) ([]proposalsdomain.Proposal, int64, error)
	GetProposal(ctx context.Context, id string) (*proposalsdomain.ProposalDetails, error)
	DeleteProposal(ctx context.Context, id string, includeDuplicates bool) (int64, error)
	SyncProposal(ctx context.Context, id string, trigger proposalsdomain.SyncTrigger) (*proposalsdomain.SyncAttempt, error)
	ResendNotification(ctx context.Context, id string, notificationType proposalsdomain.NotificationType) (*proposalsdomain.Notification, error)
	BatchSync(ctx context.Context, campaignID string) (*proposalsdomain.BatchSyncReport, error)
	CleanupDuplicates(ctx context.Context, campaignID string, dryRun bool) (*proposalsdomain.DuplicateCleanupReport, error)
}

type SessionStore interface {
	Create(ttl time.Duration) (string, time.Time, error)
	Valid(token string) bool
	Delete(token string)
}

type Credentials struct {
	User         string
	Password     string
	SessionTTL   time.Duration
	SecureCookie bool
}

type Handlers struct {
	Campaigns   CampaignAdmin
	Proposals   ProposalAdmin
	Sessions    SessionStore
	credentials Credentials
	log         logger.Logger
}

const defaultSessionTTL = 24 * time.Hour

func New(campaigns CampaignAdmin, proposals ProposalAdmin, sessions SessionStore, credentials Credentials, log logger.Logger) *Handlers {
	if credentials.SessionTTL <= 0 {
		credentials.SessionTTL = defaultSessionTTL
	}
	return &Handlers{
		Campaigns:   campaigns,
		Proposals:   proposals,
		Sessions:    sessions,
		credentials: credentials,
		log:         log,
	}
}
