package proposals

import (
	"context"
	"time"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error

	CreateProposal(ctx context.Context, proposal *Proposal) error
	GetProposalByID(ctx context.Context, id string) (*Proposal, error)
	GetProposalByUploadToken(ctx context.Context, token string) (*Proposal, error)
	ListProposals(ctx context.Context, filter ListFilter) ([]Proposal, int64, error)
	ListProposalsByCampaign(ctx context.Context, campaignID string) ([]Proposal, error)
	MarkDocumentsReceived(ctx context.Context, id string, submittedAt time.Time) error
	MarkSynced(ctx context.Context, id string, syncedAt time.Time) error
	DeleteProposals(ctx context.Context, ids []string) (int64, error)

	CreateDocument(ctx context.Context, doc *Document) error
	ListDocuments(ctx context.Context, proposalID string) ([]Document, error)
	DeleteDocumentsByType(ctx context.Context, proposalID string, docType DocumentType) (int64, error)

	CreateNotification(ctx context.Context, notification *Notification) error
	ListNotifications(ctx context.Context, proposalID string) ([]Notification, error)

	CreateSyncAttempt(ctx context.Context, attempt *SyncAttempt) error
	ListSyncAttempts(ctx context.Context, proposalID string) ([]SyncAttempt, error)
}
