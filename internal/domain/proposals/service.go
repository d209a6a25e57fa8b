package proposals

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"coop-intake-go/internal/domain/campaigns"
	"coop-intake-go/pkg/logger"
	"coop-intake-go/pkg/textnorm"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

type Config struct {
	UploadTokenTTL time.Duration
	BatchSyncDelay time.Duration
	SyncTimeout    time.Duration
}

type Service struct {
	repo      Repository
	campaigns CampaignLookup
	notifier  Notifier
	crm       CRM
	runner    Runner
	log       logger.Logger
	cfg       Config
	now       func() time.Time

	syncs singleflight.Group
}

func NewService(repo Repository, campaignLookup CampaignLookup, notifier Notifier, crm CRM, runner Runner, log logger.Logger, cfg Config) *Service {
	if cfg.UploadTokenTTL <= 0 {
		cfg.UploadTokenTTL = 7 * 24 * time.Hour
	}
	if cfg.SyncTimeout <= 0 {
		cfg.SyncTimeout = 3 * time.Minute
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		repo:      repo,
		campaigns: campaignLookup,
		notifier:  notifier,
		crm:       crm,
		runner:    runner,
		log:       log,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the time source. Tests only.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// CreateProposal stores a validated submission and schedules the initial
// notification. Notification failures never fail the creation.
func (s *Service) CreateProposal(ctx context.Context, input ProposalInput) (*Proposal, error) {
	input = normalizeInput(input)
	now := s.now()
	if err := Validate(input, now); err != nil {
		return nil, err
	}

	if input.CampaignID == "" {
		input.CampaignID = campaigns.Uncategorized
	}
	if input.CampaignID != campaigns.Uncategorized {
		campaign, err := s.campaigns.GetCampaign(ctx, input.CampaignID)
		if err != nil {
			if errors.Is(err, campaigns.ErrCampaignNotFound) {
				return nil, ErrUnknownCampaign
			}
			return nil, err
		}
		if input.ClientID == "" {
			input.ClientID = campaign.ClientID
		}
		if input.FunctionID == "" {
			input.FunctionID = campaign.FunctionID
		}
	}

	proposal := proposalFromInput(input)
	proposal.ID = uuid.NewString()
	proposal.UploadToken = uuid.NewString()
	proposal.UploadTokenExpires = now.Add(s.cfg.UploadTokenTTL)
	proposal.Status = StatusPendingDocuments
	proposal.CreatedAt = now
	proposal.UpdatedAt = now

	if err := s.repo.CreateProposal(ctx, &proposal); err != nil {
		return nil, err
	}

	created := proposal
	s.schedule("notify_initial", func(ctx context.Context) {
		_, _ = s.notify(ctx, &created, NotificationInitial)
	})

	return &proposal, nil
}

// OpenUploadSession resolves a public upload token. Unknown and expired tokens
// are reported with distinct errors.
func (s *Service) OpenUploadSession(ctx context.Context, token string) (*UploadSession, error) {
	proposal, err := s.resolveUploadToken(ctx, token)
	if err != nil {
		return nil, err
	}

	docs, err := s.repo.ListDocuments(ctx, proposal.ID)
	if err != nil {
		return nil, err
	}

	seen := make(map[DocumentType]bool, len(docs))
	uploaded := make([]DocumentType, 0, len(docs))
	for _, doc := range docs {
		if seen[doc.Type] {
			continue
		}
		seen[doc.Type] = true
		uploaded = append(uploaded, doc.Type)
	}

	return &UploadSession{
		ProposalID:    proposal.ID,
		FullName:      proposal.FullName,
		Status:        proposal.Status,
		ExpiresAt:     proposal.UploadTokenExpires,
		UploadedTypes: uploaded,
	}, nil
}

func (s *Service) AttachDocumentByToken(ctx context.Context, token string, input AttachDocumentInput) (*Document, error) {
	proposal, err := s.resolveUploadToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.attachDocument(ctx, proposal, input)
}

func (s *Service) AttachDocument(ctx context.Context, proposalID string, input AttachDocumentInput) (*Document, error) {
	proposal, err := s.repo.GetProposalByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	return s.attachDocument(ctx, proposal, input)
}

func (s *Service) attachDocument(ctx context.Context, proposal *Proposal, input AttachDocumentInput) (*Document, error) {
	if !input.Type.Valid() {
		return nil, ErrInvalidDocumentType
	}
	if proposal.Status == StatusCompleted {
		return nil, ErrDocumentsLocked
	}

	doc := Document{
		ID:         uuid.NewString(),
		ProposalID: proposal.ID,
		Type:       input.Type,
		URL:        input.URL,
		Filename:   input.Filename,
		UploadedAt: s.now(),
	}
	if err := s.repo.CreateDocument(ctx, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// RemoveDocumentByToken deletes every document of docType in one statement and
// returns how many were removed.
func (s *Service) RemoveDocumentByToken(ctx context.Context, token string, docType DocumentType) (int64, error) {
	proposal, err := s.resolveUploadToken(ctx, token)
	if err != nil {
		return 0, err
	}
	if !docType.Valid() {
		return 0, ErrInvalidDocumentType
	}
	if proposal.Status == StatusCompleted {
		return 0, ErrDocumentsLocked
	}
	return s.repo.DeleteDocumentsByType(ctx, proposal.ID, docType)
}

// FinalizeByToken moves the proposal to documents_received and schedules the
// final notification and the CRM sync as independent background tasks.
func (s *Service) FinalizeByToken(ctx context.Context, token string) (*Proposal, error) {
	proposal, err := s.resolveUploadToken(ctx, token)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.repo.MarkDocumentsReceived(ctx, proposal.ID, now); err != nil {
		return nil, err
	}
	proposal.Status = StatusDocumentsReceived
	proposal.DocumentsSubmittedAt = &now

	finalized := *proposal
	s.schedule("notify_final", func(ctx context.Context) {
		_, _ = s.notify(ctx, &finalized, NotificationFinal)
	})
	s.schedule("crm_sync", func(ctx context.Context) {
		if _, err := s.SyncProposal(ctx, finalized.ID, SyncTriggerFinalize); err != nil {
			s.log.Warn("crm sync after finalize failed", "proposal_id", finalized.ID, "error", err)
		}
	})

	return proposal, nil
}

func (s *Service) GetProposal(ctx context.Context, id string) (*ProposalDetails, error) {
	proposal, err := s.repo.GetProposalByID(ctx, id)
	if err != nil {
		return nil, err
	}

	docs, err := s.repo.ListDocuments(ctx, id)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].UploadedAt.After(docs[j].UploadedAt)
	})

	notifications, err := s.repo.ListNotifications(ctx, id)
	if err != nil {
		return nil, err
	}
	attempts, err := s.repo.ListSyncAttempts(ctx, id)
	if err != nil {
		return nil, err
	}

	return &ProposalDetails{
		Proposal:      *proposal,
		Documents:     docs,
		Notifications: notifications,
		SyncAttempts:  attempts,
	}, nil
}

func (s *Service) ListProposals(ctx context.Context, filter ListFilter) ([]Proposal, int64, error) {
	switch {
	case filter.Limit <= 0:
		filter.Limit = defaultListLimit
	case filter.Limit > maxListLimit:
		filter.Limit = maxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.repo.ListProposals(ctx, filter)
}

// DeleteProposal hard deletes the proposal with its documents and audit trail.
// With includeDuplicates, every proposal of the same campaign sharing its CPF
// goes too.
func (s *Service) DeleteProposal(ctx context.Context, id string, includeDuplicates bool) (int64, error) {
	var deleted int64
	err := s.repo.Transaction(ctx, func(repo Repository) error {
		proposal, err := repo.GetProposalByID(ctx, id)
		if err != nil {
			return err
		}

		ids := []string{proposal.ID}
		if includeDuplicates {
			siblings, err := repo.ListProposalsByCampaign(ctx, proposal.CampaignID)
			if err != nil {
				return err
			}
			key := cpfKey(proposal.CPF)
			for _, sibling := range siblings {
				if sibling.ID != proposal.ID && cpfKey(sibling.CPF) == key {
					ids = append(ids, sibling.ID)
				}
			}
		}

		deleted, err = repo.DeleteProposals(ctx, ids)
		return err
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// ResendNotification dispatches a notification synchronously from the current
// proposal data. Dispatch failures are reported through the returned record.
func (s *Service) ResendNotification(ctx context.Context, id string, notificationType NotificationType) (*Notification, error) {
	if !notificationType.Valid() {
		return nil, ErrInvalidNotificationType
	}

	proposal, err := s.repo.GetProposalByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.notify(ctx, proposal, notificationType)
}

func (s *Service) resolveUploadToken(ctx context.Context, token string) (*Proposal, error) {
	if token == "" {
		return nil, ErrUploadTokenNotFound
	}

	proposal, err := s.repo.GetProposalByUploadToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrProposalNotFound) {
			return nil, ErrUploadTokenNotFound
		}
		return nil, err
	}
	if proposal.UploadTokenExpired(s.now()) {
		return nil, ErrUploadTokenExpired
	}
	return proposal, nil
}

func (s *Service) schedule(name string, task func(ctx context.Context)) {
	if s.runner == nil {
		return
	}
	if !s.runner.Go(name, task) {
		s.log.Warn("background task dropped", "task", name)
	}
}

func proposalFromInput(input ProposalInput) Proposal {
	return Proposal{
		CampaignID:            input.CampaignID,
		ClientID:              input.ClientID,
		FunctionID:            input.FunctionID,
		DDD:                   input.DDD,
		CPF:                   input.CPF,
		FullName:              input.FullName,
		RG:                    input.RG,
		RGIssuerState:         input.RGIssuerState,
		RGIssuer:              input.RGIssuer,
		MotherName:            input.MotherName,
		PIS:                   input.PIS,
		BirthDate:             input.BirthDate,
		Gender:                input.Gender,
		Race:                  input.Race,
		MaritalStatus:         input.MaritalStatus,
		Nationality:           input.Nationality,
		BirthState:            input.BirthState,
		BirthCity:             input.BirthCity,
		CEP:                   input.CEP,
		State:                 input.State,
		City:                  input.City,
		StreetType:            input.StreetType,
		Street:                input.Street,
		Number:                input.Number,
		Neighborhood:          input.Neighborhood,
		Complement:            input.Complement,
		Phone:                 input.Phone,
		Email:                 input.Email,
		Bank:                  input.Bank,
		AccountType:           input.AccountType,
		Agency:                input.Agency,
		Account:               input.Account,
		AccountDigit:          input.AccountDigit,
		Education:             input.Education,
		JobCategory:           input.JobCategory,
		Position:              input.Position,
		ShirtSize:             input.ShirtSize,
		AcceptedTerms:         input.AcceptedTerms != nil && *input.AcceptedTerms,
		AcceptedLGPD:          input.AcceptedLGPD != nil && *input.AcceptedLGPD,
		CriterionLocation:     input.CriterionLocation,
		CriterionExperience:   input.CriterionExperience,
		CriterionAvailability: input.CriterionAvailability,
	}
}

func cpfKey(cpf string) string {
	return textnorm.Digits(cpf)
}
