package proposals

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

var errNotifierMissing = errors.New("notifier not configured")

// notify sends one notification and appends its outcome to the proposal's
// notification log. The returned error covers only storage failures.
func (s *Service) notify(ctx context.Context, proposal *Proposal, notificationType NotificationType) (*Notification, error) {
	phone := NormalizePhone(proposal.Phone)

	var (
		payload any
		sendErr error
	)
	switch notificationType {
	case NotificationInitial:
		notice := InitialNotice{Name: proposal.FullName, Link: "/" + proposal.UploadToken, Phone: phone}
		payload = notice
		if s.notifier == nil {
			sendErr = errNotifierMissing
		} else {
			sendErr = s.notifier.SendInitial(ctx, notice)
		}
	case NotificationFinal:
		notice := FinalNotice{Name: proposal.FullName, Phone: phone}
		payload = notice
		if s.notifier == nil {
			sendErr = errNotifierMissing
		} else {
			sendErr = s.notifier.SendFinal(ctx, notice)
		}
	default:
		return nil, ErrInvalidNotificationType
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	record := Notification{
		ID:         uuid.NewString(),
		ProposalID: proposal.ID,
		Type:       notificationType,
		Status:     AttemptSuccess,
		Payload:    datatypes.JSON(encoded),
		Timestamp:  s.now(),
	}
	if sendErr != nil {
		msg := sendErr.Error()
		record.Status = AttemptError
		record.Error = &msg
		s.log.Warn("notification failed", "proposal_id", proposal.ID, "type", notificationType, "error", sendErr)
	} else {
		s.log.Info("notification sent", "proposal_id", proposal.ID, "type", notificationType)
	}

	if err := s.repo.CreateNotification(ctx, &record); err != nil {
		s.log.InternalError("record notification", err, "proposal_id", proposal.ID)
		return nil, err
	}
	return &record, nil
}
