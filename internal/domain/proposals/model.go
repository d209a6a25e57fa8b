package proposals

import (
	"time"

	"gorm.io/datatypes"
)

type Status string

const (
	StatusPendingDocuments  Status = "pending_documents"
	StatusDocumentsReceived Status = "documents_received"
	StatusCompleted         Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPendingDocuments, StatusDocumentsReceived, StatusCompleted:
		return true
	default:
		return false
	}
}

type DocumentType string

const (
	DocumentIdentityFront    DocumentType = "identidade_frente"
	DocumentIdentityBack     DocumentType = "identidade_verso"
	DocumentDriverLicense    DocumentType = "cnh"
	DocumentProofOfResidence DocumentType = "comprovante_residencia"
	DocumentProofOfPIS       DocumentType = "comprovante_pis"
	DocumentCivilCertificate DocumentType = "certidao"
	DocumentResume           DocumentType = "curriculo"
	DocumentDiploma          DocumentType = "diploma"
)

// DocumentTypes lists the accepted upload slots in display order.
var DocumentTypes = []DocumentType{
	DocumentIdentityFront,
	DocumentIdentityBack,
	DocumentProofOfPIS,
	DocumentProofOfResidence,
	DocumentDriverLicense,
	DocumentCivilCertificate,
	DocumentResume,
	DocumentDiploma,
}

func (t DocumentType) Valid() bool {
	for _, known := range DocumentTypes {
		if t == known {
			return true
		}
	}
	return false
}

type NotificationType string

const (
	NotificationInitial NotificationType = "initial"
	NotificationFinal   NotificationType = "final"
)

func (t NotificationType) Valid() bool {
	return t == NotificationInitial || t == NotificationFinal
}

type AttemptStatus string

const (
	AttemptSuccess AttemptStatus = "success"
	AttemptError   AttemptStatus = "error"
)

type SyncTrigger string

const (
	SyncTriggerFinalize SyncTrigger = "finalize"
	SyncTriggerManual   SyncTrigger = "manual"
	SyncTriggerBatch    SyncTrigger = "batch"
)

type Proposal struct {
	ID         string `gorm:"type:uuid;primaryKey"`
	CampaignID string `gorm:"column:campaign_id;not null;index"`
	ClientID   string `gorm:"column:client_id;not null"`
	FunctionID string `gorm:"column:function_id;not null"`
	DDD        string `gorm:"column:ddd;not null"`

	CPF           string `gorm:"column:cpf;not null"`
	FullName      string `gorm:"column:full_name;not null"`
	RG            string `gorm:"column:rg;not null"`
	RGIssuerState string `gorm:"column:rg_issuer_state;not null"`
	RGIssuer      string `gorm:"column:rg_issuer;not null"`
	MotherName    string `gorm:"column:mother_name;not null"`
	PIS           string `gorm:"column:pis;not null"`
	BirthDate     string `gorm:"column:birth_date;not null"`
	Gender        string `gorm:"column:gender;not null"`
	Race          string `gorm:"column:race;not null"`
	MaritalStatus string `gorm:"column:marital_status;not null"`
	Nationality   string `gorm:"column:nationality;not null"`
	BirthState    string `gorm:"column:birth_state;not null"`
	BirthCity     string `gorm:"column:birth_city;not null"`

	CEP          string `gorm:"column:cep;not null"`
	State        string `gorm:"column:state;not null"`
	City         string `gorm:"column:city;not null"`
	StreetType   string `gorm:"column:street_type;not null"`
	Street       string `gorm:"column:street;not null"`
	Number       string `gorm:"column:number;not null"`
	Neighborhood string `gorm:"column:neighborhood;not null"`
	Complement   string `gorm:"column:complement;not null"`

	Phone string `gorm:"column:phone;not null"`
	Email string `gorm:"column:email;not null"`

	Bank         string `gorm:"column:bank;not null"`
	AccountType  string `gorm:"column:account_type;not null"`
	Agency       string `gorm:"column:agency;not null"`
	Account      string `gorm:"column:account;not null"`
	AccountDigit string `gorm:"column:account_digit;not null"`

	Education   string `gorm:"column:education;not null"`
	JobCategory string `gorm:"column:job_category;not null"`
	Position    string `gorm:"column:position;not null"`
	ShirtSize   string `gorm:"column:shirt_size;not null"`

	AcceptedTerms         bool   `gorm:"column:accepted_terms;not null"`
	AcceptedLGPD          bool   `gorm:"column:accepted_lgpd;not null"`
	CriterionLocation     string `gorm:"column:criterion_location;not null"`
	CriterionExperience   string `gorm:"column:criterion_experience;not null"`
	CriterionAvailability string `gorm:"column:criterion_availability;not null"`

	UploadToken          string     `gorm:"column:upload_token;not null;uniqueIndex"`
	UploadTokenExpires   time.Time  `gorm:"column:upload_token_expires;not null"`
	Status               Status     `gorm:"column:status;not null"`
	DocumentsSubmittedAt *time.Time `gorm:"column:documents_submitted_at"`
	CRMSynced            bool       `gorm:"column:crm_synced;not null"`
	CRMSyncedAt          *time.Time `gorm:"column:crm_synced_at"`
	CreatedAt            time.Time  `gorm:"column:created_at"`
	UpdatedAt            time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// UploadTokenExpired reports whether the upload link is no longer usable at now.
func (p Proposal) UploadTokenExpired(now time.Time) bool {
	return !now.Before(p.UploadTokenExpires)
}

type Document struct {
	ID         string       `gorm:"type:uuid;primaryKey"`
	ProposalID string       `gorm:"type:uuid;not null;index"`
	Type       DocumentType `gorm:"column:type;not null"`
	URL        string       `gorm:"column:url;not null"`
	Filename   string       `gorm:"not null"`
	UploadedAt time.Time    `gorm:"not null"`
}

func (Document) TableName() string {
	return "proposal_documents"
}

// Notification is an append-only audit record of one outbound notification attempt.
type Notification struct {
	ID         string           `gorm:"type:uuid;primaryKey"`
	ProposalID string           `gorm:"type:uuid;not null;index"`
	Type       NotificationType `gorm:"column:type;not null"`
	Status     AttemptStatus    `gorm:"not null"`
	Error      *string          `gorm:"column:error"`
	Payload    datatypes.JSON   `gorm:"type:jsonb;not null"`
	Timestamp  time.Time        `gorm:"column:timestamp;not null"`
}

func (Notification) TableName() string {
	return "proposal_notifications"
}

// SyncAttempt is an append-only audit record of one CRM submission.
type SyncAttempt struct {
	ID          string        `gorm:"type:uuid;primaryKey"`
	ProposalID  string        `gorm:"type:uuid;not null;index"`
	Trigger     SyncTrigger   `gorm:"column:trigger;not null"`
	Status      AttemptStatus `gorm:"not null"`
	HTTPStatus  *int          `gorm:"column:http_status"`
	Error       *string       `gorm:"column:error"`
	PayloadSize int64         `gorm:"column:payload_size;not null"`
	Timestamp   time.Time     `gorm:"column:timestamp;not null"`
}

func (SyncAttempt) TableName() string {
	return "proposal_sync_attempts"
}

type ProposalInput struct {
	CampaignID string
	ClientID   string
	FunctionID string
	DDD        string

	CPF           string
	FullName      string
	RG            string
	RGIssuerState string
	RGIssuer      string
	MotherName    string
	PIS           string
	BirthDate     string
	Gender        string
	Race          string
	MaritalStatus string
	Nationality   string
	BirthState    string
	BirthCity     string

	CEP          string
	State        string
	City         string
	StreetType   string
	Street       string
	Number       string
	Neighborhood string
	Complement   string

	Phone string
	Email string

	Bank         string
	AccountType  string
	Agency       string
	Account      string
	AccountDigit string

	Education   string
	JobCategory string
	Position    string
	ShirtSize   string

	AcceptedTerms         *bool
	AcceptedLGPD          *bool
	CriterionLocation     string
	CriterionExperience   string
	CriterionAvailability string
}

type AttachDocumentInput struct {
	Type     DocumentType
	URL      string
	Filename string
}

type ListFilter struct {
	CampaignID string
	Status     Status
	Limit      int
	Offset     int
}

type ProposalDetails struct {
	Proposal      Proposal
	Documents     []Document
	Notifications []Notification
	SyncAttempts  []SyncAttempt
}

// UploadSession is what the public upload page is allowed to see.
type UploadSession struct {
	ProposalID    string
	FullName      string
	Status        Status
	ExpiresAt     time.Time
	UploadedTypes []DocumentType
}

// SyncOutcome describes the CRM exchange for the audit trail, whether or not it succeeded.
type SyncOutcome struct {
	HTTPStatus  int
	PayloadSize int64
}

type BatchSyncError struct {
	ProposalID string `json:"proposal_id"`
	Name       string `json:"name"`
	Message    string `json:"message"`
}

type BatchSyncReport struct {
	CampaignID   string           `json:"campaign_id"`
	Total        int              `json:"total"`
	Skipped      int              `json:"skipped"`
	SuccessCount int              `json:"success_count"`
	FailCount    int              `json:"fail_count"`
	Errors       []BatchSyncError `json:"errors"`
	Interrupted  bool             `json:"interrupted"`
	Remaining    []string         `json:"remaining"`
}

type DuplicateRecord struct {
	ProposalID string    `json:"proposal_id"`
	KeptID     string    `json:"kept_id"`
	Name       string    `json:"name"`
	CPF        string    `json:"cpf"`
	CreatedAt  time.Time `json:"created_at"`
}

type DuplicateCleanupReport struct {
	CampaignID   string            `json:"campaign_id"`
	DryRun       bool              `json:"dry_run"`
	Groups       int               `json:"groups"`
	DeletedCount int               `json:"deleted_count"`
	Records      []DuplicateRecord `json:"records"`
}
