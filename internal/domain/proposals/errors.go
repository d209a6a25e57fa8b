package proposals

import "errors"

var (
	ErrProposalNotFound        = errors.New("proposal not found")
	ErrUploadTokenNotFound     = errors.New("upload token not found")
	ErrUploadTokenExpired      = errors.New("upload token expired")
	ErrInvalidDocumentType     = errors.New("invalid document type")
	ErrDocumentsLocked         = errors.New("proposal no longer accepts documents")
	ErrInvalidNotificationType = errors.New("invalid notification type")
	ErrUnknownCampaign         = errors.New("unknown campaign")
)
