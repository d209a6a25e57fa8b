package public

import (
	"context"
	"io"

	"coop-intake-go/internal/blob"
	campaignsdomain "coop-intake-go/internal/domain/campaigns"
	proposalsdomain "coop-intake-go/internal/domain/proposals"
	"coop-intake-go/pkg/logger"
)

type CampaignReader interface {
	GetActiveCampaignBySlug(ctx context.Context, slug string) (*campaignsdomain.Campaign, error)
}

type ProposalIntake interface {
	CreateProposal(ctx context.Context, input proposalsdomain.ProposalInput) (*proposalsdomain.Proposal, error)
	OpenUploadSession(ctx context.Context, token string) (*proposalsdomain.UploadSession, error)
	AttachDocumentByToken(ctx context.Context, token string, input proposalsdomain.AttachDocumentInput) (*proposalsdomain.Document, error)
	RemoveDocumentByToken(ctx context.Context, token string, docType proposalsdomain.DocumentType) (int64, error)
	FinalizeByToken(ctx context.Context, token string) (*proposalsdomain.Proposal, error)
}

type BlobStore interface {
	Save(ctx context.Context, prefix, filename string, r io.Reader) (*blob.Object, error)
	Delete(url string) error
}

type CityDirectory interface {
	Cities(state string) []string
}

type Handlers struct {
	Campaigns      CampaignReader
	Proposals      ProposalIntake
	Blobs          BlobStore
	Cities         CityDirectory
	maxUploadBytes int64
	log            logger.Logger
}

func New(campaigns CampaignReader, proposals ProposalIntake, blobs BlobStore, cities CityDirectory, maxUploadBytes int64, log logger.Logger) *Handlers {
	return &Handlers{
		Campaigns:      campaigns,
		Proposals:      proposals,
		Blobs:          blobs,
		Cities:         cities,
		maxUploadBytes: maxUploadBytes,
		log:            log,
	}
}
