package admin

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	proposalsdomain "coop-intake-go/internal/domain/proposals"
	"github.com/go-chi/chi/v5"
)

type proposalResponse struct {
	ID                    string     `json:"id"`
	CampaignID            string     `json:"campaign_id"`
	ClientID              string     `json:"client_id"`
	FunctionID            string     `json:"function_id"`
	DDD                   string     `json:"ddd"`
	CPF                   string     `json:"cpf"`
	FullName              string     `json:"full_name"`
	RG                    string     `json:"rg"`
	RGIssuerState         string     `json:"rg_issuer_state"`
	RGIssuer              string     `json:"rg_issuer"`
	MotherName            string     `json:"mother_name"`
	PIS                   string     `json:"pis"`
	BirthDate             string     `json:"birth_date"`
	Gender                string     `json:"gender"`
	Race                  string     `json:"race"`
	MaritalStatus         string     `json:"marital_status"`
	Nationality           string     `json:"nationality"`
	BirthState            string     `json:"birth_state"`
	BirthCity             string     `json:"birth_city"`
	CEP                   string     `json:"cep"`
	State                 string     `json:"state"`
	City                  string     `json:"city"`
	StreetType            string     `json:"street_type"`
	Street                string     `json:"street"`
	Number                string     `json:"number"`
	Neighborhood          string     `json:"neighborhood"`
	Complement            string     `json:"complement"`
	Phone                 string     `json:"phone"`
	Email                 string     `json:"email"`
	Bank                  string     `json:"bank"`
	AccountType           string     `json:"account_type"`
	Agency                string     `json:"agency"`
	Account               string     `json:"account"`
	AccountDigit          string     `json:"account_digit"`
	Education             string     `json:"education"`
	JobCategory           string     `json:"job_category"`
	Position              string     `json:"position"`
	ShirtSize             string     `json:"shirt_size"`
	AcceptedTerms         bool       `json:"accepted_terms"`
	AcceptedLGPD          bool       `json:"accepted_lgpd"`
	CriterionLocation     string     `json:"criterion_location"`
	CriterionExperience   string     `json:"criterion_experience"`
	CriterionAvailability string     `json:"criterion_availability"`
	Status                string     `json:"status"`
	UploadTokenExpires    time.Time  `json:"upload_token_expires"`
	DocumentsSubmittedAt  *time.Time `json:"documents_submitted_at"`
	CRMSynced             bool       `json:"crm_synced"`
	CRMSyncedAt           *time.Time `json:"crm_synced_at"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

type documentResponse struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	URL        string    `json:"url"`
	Filename   string    `json:"filename"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type notificationResponse struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Status    string          `json:"status"`
	Error     *string         `json:"error"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

type syncAttemptResponse struct {
	ID          string    `json:"id"`
	Trigger     string    `json:"trigger"`
	Status      string    `json:"status"`
	HTTPStatus  *int      `json:"http_status"`
	Error       *string   `json:"error"`
	PayloadSize int64     `json:"payload_size"`
	Timestamp   time.Time `json:"timestamp"`
}

type proposalDetailsResponse struct {
	Proposal      proposalResponse       `json:"proposal"`
	Documents     []documentResponse     `json:"documents"`
	Notifications []notificationResponse `json:"notifications"`
	SyncAttempts  []syncAttemptResponse  `json:"sync_attempts"`
}

type listProposalsResponse struct {
	Items  []proposalResponse `json:"items"`
	Total  int64              `json:"total"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}

type resendRequest struct {
	Type string `json:"type"`
}

func toProposalResponse(p proposalsdomain.Proposal) proposalResponse {
	return proposalResponse{
		ID:                    p.ID,
		CampaignID:            p.CampaignID,
		ClientID:              p.ClientID,
		FunctionID:            p.FunctionID,
		DDD:                   p.DDD,
		CPF:                   p.CPF,
		FullName:              p.FullName,
		RG:                    p.RG,
		RGIssuerState:         p.RGIssuerState,
		RGIssuer:              p.RGIssuer,
		MotherName:            p.MotherName,
		PIS:                   p.PIS,
		BirthDate:             p.BirthDate,
		Gender:                p.Gender,
		Race:                  p.Race,
		MaritalStatus:         p.MaritalStatus,
		Nationality:           p.Nationality,
		BirthState:            p.BirthState,
		BirthCity:             p.BirthCity,
		CEP:                   p.CEP,
		State:                 p.State,
		City:                  p.City,
		StreetType:            p.StreetType,
		Street:                p.Street,
		Number:                p.Number,
		Neighborhood:          p.Neighborhood,
		Complement:            p.Complement,
		Phone:                 p.Phone,
		Email:                 p.Email,
		Bank:                  p.Bank,
		AccountType:           p.AccountType,
		Agency:                p.Agency,
		Account:               p.Account,
		AccountDigit:          p.AccountDigit,
		Education:             p.Education,
		JobCategory:           p.JobCategory,
		Position:              p.Position,
		ShirtSize:             p.ShirtSize,
		AcceptedTerms:         p.AcceptedTerms,
		AcceptedLGPD:          p.AcceptedLGPD,
		CriterionLocation:     p.CriterionLocation,
		CriterionExperience:   p.CriterionExperience,
		CriterionAvailability: p.CriterionAvailability,
		Status:                string(p.Status),
		UploadTokenExpires:    p.UploadTokenExpires,
		DocumentsSubmittedAt:  p.DocumentsSubmittedAt,
		CRMSynced:             p.CRMSynced,
		CRMSyncedAt:           p.CRMSyncedAt,
		CreatedAt:             p.CreatedAt,
		UpdatedAt:             p.UpdatedAt,
	}
}

func toSyncAttemptResponse(a proposalsdomain.SyncAttempt) syncAttemptResponse {
	return syncAttemptResponse{
		ID:          a.ID,
		Trigger:     string(a.Trigger),
		Status:      string(a.Status),
		HTTPStatus:  a.HTTPStatus,
		Error:       a.Error,
		PayloadSize: a.PayloadSize,
		Timestamp:   a.Timestamp,
	}
}

func toNotificationResponse(n proposalsdomain.Notification) notificationResponse {
	payload := json.RawMessage(n.Payload)
	if len(payload) == 0 {
		payload = json.RawMessage("null")
	}
	return notificationResponse{
		ID:        n.ID,
		Type:      string(n.Type),
		Status:    string(n.Status),
		Error:     n.Error,
		Payload:   payload,
		Timestamp: n.Timestamp,
	}
}

func (h *Handlers) ListProposals(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit, err := parseIntParam(query.Get("limit"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid limit")
		return
	}
	offset, err := parseIntParam(query.Get("offset"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid offset")
		return
	}

	status := proposalsdomain.Status(strings.TrimSpace(query.Get("status")))
	if status != "" && !status.Valid() {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid status")
		return
	}

	filter := proposalsdomain.ListFilter{
		CampaignID: strings.TrimSpace(query.Get("campaign_id")),
		Status:     status,
		Limit:      limit,
		Offset:     offset,
	}

	items, total, err := h.Proposals.ListProposals(r.Context(), filter)
	if err != nil {
		h.log.InternalError("admin.list_proposals: list failed", err, "campaign_id", filter.CampaignID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	response := make([]proposalResponse, 0, len(items))
	for _, item := range items {
		response = append(response, toProposalResponse(item))
	}
	writeJSON(w, http.StatusOK, listProposalsResponse{Items: response, Total: total, Limit: limit, Offset: offset})
}

func (h *Handlers) GetProposal(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	details, err := h.Proposals.GetProposal(r.Context(), id)
	if err != nil {
		h.writeProposalError(w, "admin.get_proposal", id, err)
		return
	}

	response := proposalDetailsResponse{
		Proposal:      toProposalResponse(details.Proposal),
		Documents:     make([]documentResponse, 0, len(details.Documents)),
		Notifications: make([]notificationResponse, 0, len(details.Notifications)),
		SyncAttempts:  make([]syncAttemptResponse, 0, len(details.SyncAttempts)),
	}
	for _, doc := range details.Documents {
		response.Documents = append(response.Documents, documentResponse{
			ID:         doc.ID,
			Type:       string(doc.Type),
			URL:        doc.URL,
			Filename:   doc.Filename,
			UploadedAt: doc.UploadedAt,
		})
	}
	for _, n := range details.Notifications {
		response.Notifications = append(response.Notifications, toNotificationResponse(n))
	}
	for _, a := range details.SyncAttempts {
		response.SyncAttempts = append(response.SyncAttempts, toSyncAttemptResponse(a))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) DeleteProposal(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	includeDuplicates, err := parseBoolParam(r.URL.Query().Get("include_duplicates"), false)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid include_duplicates")
		return
	}

	deleted, err := h.Proposals.DeleteProposal(r.Context(), id, includeDuplicates)
	if err != nil {
		h.writeProposalError(w, "admin.delete_proposal", id, err)
		return
	}

	h.log.Info("proposal deleted", "proposal_id", id, "deleted", deleted, "include_duplicates", includeDuplicates)
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}

func (h *Handlers) SyncProposal(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	attempt, err := h.Proposals.SyncProposal(r.Context(), id, proposalsdomain.SyncTriggerManual)
	if err != nil {
		if attempt != nil && attempt.Status == proposalsdomain.AttemptError {
			h.log.BusinessError("admin.sync_proposal: crm rejected", err, "proposal_id", id)
			writeJSON(w, http.StatusBadGateway, map[string]interface{}{
				"error": map[string]string{
					"code":    "crm_sync_failed",
					"message": err.Error(),
				},
				"attempt": toSyncAttemptResponse(*attempt),
			})
			return
		}
		h.writeProposalError(w, "admin.sync_proposal", id, err)
		return
	}

	writeJSON(w, http.StatusOK, toSyncAttemptResponse(*attempt))
}

func (h *Handlers) ResendNotification(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req resendRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}

	notification, err := h.Proposals.ResendNotification(r.Context(), id, proposalsdomain.NotificationType(req.Type))
	if err != nil {
		h.writeProposalError(w, "admin.resend_notification", id, err)
		return
	}

	status := http.StatusOK
	if notification.Status == proposalsdomain.AttemptError {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, toNotificationResponse(*notification))
}

func (h *Handlers) BatchSyncCampaign(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, "id")

	report, err := h.Proposals.BatchSync(r.Context(), campaignID)
	if err != nil {
		if report != nil {
			h.log.Warn("admin.batch_sync: interrupted", "campaign_id", campaignID, "remaining", len(report.Remaining), "error", err)
			writeJSON(w, http.StatusOK, report)
			return
		}
		h.log.InternalError("admin.batch_sync: failed", err, "campaign_id", campaignID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (h *Handlers) CleanupDuplicates(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, "id")

	dryRun, err := parseBoolParam(r.URL.Query().Get("dry_run"), false)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid dry_run")
		return
	}

	report, err := h.Proposals.CleanupDuplicates(r.Context(), campaignID, dryRun)
	if err != nil {
		h.log.InternalError("admin.cleanup_duplicates: failed", err, "campaign_id", campaignID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	h.log.Info("duplicate cleanup finished", "campaign_id", campaignID, "dry_run", dryRun, "deleted", report.DeletedCount)
	writeJSON(w, http.StatusOK, report)
}

func (h *Handlers) writeProposalError(w http.ResponseWriter, op, id string, err error) {
	switch {
	case errors.Is(err, proposalsdomain.ErrProposalNotFound):
		h.log.BusinessError(op+": proposal not found", err, "proposal_id", id)
		writeError(w, http.StatusNotFound, "proposal_not_found", "proposal not found")
	case errors.Is(err, proposalsdomain.ErrInvalidNotificationType):
		h.log.BusinessError(op+": invalid notification type", err, "proposal_id", id)
		writeError(w, http.StatusBadRequest, "invalid_notification_type", "invalid notification type")
	default:
		h.log.InternalError(op+": failed", err, "proposal_id", id)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}
