package proposals

import (
	"context"
	"sort"
)

// CleanupDuplicates keeps the newest proposal per CPF within a campaign and
// deletes the rest in a single batch. With dryRun nothing is deleted and the
// report lists what would go.
func (s *Service) CleanupDuplicates(ctx context.Context, campaignID string, dryRun bool) (*DuplicateCleanupReport, error) {
	list, err := s.repo.ListProposalsByCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	groups := make(map[string][]Proposal)
	order := make([]string, 0)
	for _, proposal := range list {
		key := cpfKey(proposal.CPF)
		if key == "" {
			continue
		}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], proposal)
	}

	report := &DuplicateCleanupReport{
		CampaignID: campaignID,
		DryRun:     dryRun,
		Records:    make([]DuplicateRecord, 0),
	}

	ids := make([]string, 0)
	for _, key := range order {
		group := groups[key]
		if len(group) < 2 {
			continue
		}
		report.Groups++

		sort.SliceStable(group, func(i, j int) bool {
			if group[i].CreatedAt.Equal(group[j].CreatedAt) {
				return group[i].ID > group[j].ID
			}
			return group[i].CreatedAt.After(group[j].CreatedAt)
		})

		kept := group[0]
		for _, dup := range group[1:] {
			ids = append(ids, dup.ID)
			report.Records = append(report.Records, DuplicateRecord{
				ProposalID: dup.ID,
				KeptID:     kept.ID,
				Name:       dup.FullName,
				CPF:        dup.CPF,
				CreatedAt:  dup.CreatedAt,
			})
		}
	}

	if dryRun || len(ids) == 0 {
		report.DeletedCount = 0
		return report, nil
	}

	deleted, err := s.repo.DeleteProposals(ctx, ids)
	if err != nil {
		return nil, err
	}
	report.DeletedCount = int(deleted)

	s.log.Info("duplicate cleanup finished", "campaign_id", campaignID, "groups", report.Groups, "deleted", deleted)
	return report, nil
}
