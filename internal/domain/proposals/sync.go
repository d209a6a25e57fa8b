package proposals

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"coop-intake-go/internal/domain/campaigns"
)

// SyncProposal pushes one proposal to the CRM and records the attempt.
// Concurrent calls for the same proposal share a single submission, which
// runs detached from any caller's cancellation and is bounded by SyncTimeout.
func (s *Service) SyncProposal(ctx context.Context, id string, trigger SyncTrigger) (*SyncAttempt, error) {
	result, err, _ := s.syncs.Do(id, func() (any, error) {
		syncCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.SyncTimeout)
		defer cancel()
		return s.syncOnce(syncCtx, id, trigger)
	})
	attempt, _ := result.(*SyncAttempt)
	return attempt, err
}

func (s *Service) syncOnce(ctx context.Context, id string, trigger SyncTrigger) (*SyncAttempt, error) {
	proposal, err := s.repo.GetProposalByID(ctx, id)
	if err != nil {
		return nil, err
	}
	docs, err := s.repo.ListDocuments(ctx, id)
	if err != nil {
		return nil, err
	}

	submission := Submission{
		Proposal:  *proposal,
		Documents: docs,
		Campaign:  s.lookupCampaign(ctx, proposal.CampaignID),
	}

	outcome, submitErr := s.crm.Submit(ctx, submission)

	attempt := SyncAttempt{
		ID:          uuid.NewString(),
		ProposalID:  id,
		Trigger:     trigger,
		Status:      AttemptSuccess,
		PayloadSize: outcome.PayloadSize,
		Timestamp:   s.now(),
	}
	if outcome.HTTPStatus != 0 {
		status := outcome.HTTPStatus
		attempt.HTTPStatus = &status
	}
	if submitErr != nil {
		msg := submitErr.Error()
		attempt.Status = AttemptError
		attempt.Error = &msg
	}

	if err := s.repo.CreateSyncAttempt(ctx, &attempt); err != nil {
		s.log.InternalError("record sync attempt", err, "proposal_id", id)
	}

	if submitErr != nil {
		s.log.Warn("crm sync failed", "proposal_id", id, "trigger", trigger, "payload_size", outcome.PayloadSize, "error", submitErr)
		return &attempt, submitErr
	}

	if err := s.repo.MarkSynced(ctx, id, attempt.Timestamp); err != nil {
		return &attempt, err
	}
	s.log.Info("crm sync succeeded", "proposal_id", id, "trigger", trigger)
	return &attempt, nil
}

func (s *Service) lookupCampaign(ctx context.Context, campaignID string) *campaigns.Campaign {
	if campaignID == "" || campaignID == campaigns.Uncategorized || s.campaigns == nil {
		return nil
	}
	campaign, err := s.campaigns.GetCampaign(ctx, campaignID)
	if err != nil {
		if !errors.Is(err, campaigns.ErrCampaignNotFound) {
			s.log.Warn("campaign lookup failed", "campaign_id", campaignID, "error", err)
		}
		return nil
	}
	return campaign
}

// BatchSync submits every pending proposal of a campaign, one at a time with a
// fixed pause between calls. Completed or already synced proposals are skipped.
// On cancellation the partial report is returned along with ctx.Err(), marked
// interrupted and listing the proposals that were never attempted.
func (s *Service) BatchSync(ctx context.Context, campaignID string) (*BatchSyncReport, error) {
	list, err := s.repo.ListProposalsByCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	report := &BatchSyncReport{
		CampaignID: campaignID,
		Total:      len(list),
		Errors:     make([]BatchSyncError, 0),
		Remaining:  make([]string, 0),
	}

	attempted := 0
	for i, proposal := range list {
		if skipBatchSync(proposal) {
			report.Skipped++
			continue
		}

		err := ctx.Err()
		if err == nil && attempted > 0 && s.cfg.BatchSyncDelay > 0 {
			err = sleep(ctx, s.cfg.BatchSyncDelay)
		}
		if err != nil {
			report.Interrupted = true
			for _, rest := range list[i:] {
				if skipBatchSync(rest) {
					report.Skipped++
					continue
				}
				report.Remaining = append(report.Remaining, rest.ID)
			}
			s.log.Warn("batch sync interrupted",
				"campaign_id", campaignID,
				"success", report.SuccessCount,
				"failed", report.FailCount,
				"remaining", len(report.Remaining),
				"error", err,
			)
			return report, err
		}
		attempted++

		if _, err := s.SyncProposal(ctx, proposal.ID, SyncTriggerBatch); err != nil {
			report.FailCount++
			report.Errors = append(report.Errors, BatchSyncError{
				ProposalID: proposal.ID,
				Name:       proposal.FullName,
				Message:    err.Error(),
			})
			continue
		}
		report.SuccessCount++
	}

	s.log.Info("batch sync finished",
		"campaign_id", campaignID,
		"total", report.Total,
		"success", report.SuccessCount,
		"failed", report.FailCount,
		"skipped", report.Skipped,
	)
	return report, nil
}

func skipBatchSync(p Proposal) bool {
	return p.Status == StatusCompleted || p.CRMSynced
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
