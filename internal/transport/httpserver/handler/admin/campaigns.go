package admin

import (
	"errors"
	"net/http"
	"time"

	campaignsdomain "coop-intake-go/internal/domain/campaigns"
	"github.com/go-chi/chi/v5"
)

type campaignRequest struct {
	Name        string                         `json:"name"`
	Slug        string                         `json:"slug"`
	BannerURL   string                         `json:"bannerUrl"`
	ClientID    string                         `json:"clientId"`
	FunctionID  string                         `json:"functionId"`
	Professions campaignsdomain.ProfessionList `json:"professions"`
	Active      *bool                          `json:"active"`
}

func (req campaignRequest) toInput() campaignsdomain.CampaignInput {
	return campaignsdomain.CampaignInput{
		Name:        req.Name,
		Slug:        req.Slug,
		BannerURL:   req.BannerURL,
		ClientID:    req.ClientID,
		FunctionID:  req.FunctionID,
		Professions: req.Professions,
		Active:      req.Active,
	}
}

type campaignResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	BannerURL   string    `json:"banner_url"`
	ClientID    string    `json:"client_id"`
	FunctionID  string    `json:"function_id"`
	Professions []string  `json:"professions"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toCampaignResponse(c campaignsdomain.Campaign) campaignResponse {
	professions := []string(c.Professions)
	if professions == nil {
		professions = []string{}
	}
	return campaignResponse{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		BannerURL:   c.BannerURL,
		ClientID:    c.ClientID,
		FunctionID:  c.FunctionID,
		Professions: professions,
		Active:      c.Active,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func (h *Handlers) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	items, err := h.Campaigns.ListCampaigns(r.Context())
	if err != nil {
		h.log.InternalError("admin.list_campaigns: list failed", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	response := make([]campaignResponse, 0, len(items))
	for _, item := range items {
		response = append(response, toCampaignResponse(item))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": response})
}

func (h *Handlers) GetCampaign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	campaign, err := h.Campaigns.GetCampaign(r.Context(), id)
	if err != nil {
		h.writeCampaignError(w, "admin.get_campaign", id, err)
		return
	}
	writeJSON(w, http.StatusOK, toCampaignResponse(*campaign))
}

func (h *Handlers) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var req campaignRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}

	campaign, err := h.Campaigns.CreateCampaign(r.Context(), req.toInput())
	if err != nil {
		h.writeCampaignError(w, "admin.create_campaign", "", err)
		return
	}

	h.log.Info("campaign created", "campaign_id", campaign.ID, "slug", campaign.Slug)
	writeJSON(w, http.StatusCreated, toCampaignResponse(*campaign))
}

func (h *Handlers) UpdateCampaign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req campaignRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}

	campaign, err := h.Campaigns.UpdateCampaign(r.Context(), id, req.toInput())
	if err != nil {
		h.writeCampaignError(w, "admin.update_campaign", id, err)
		return
	}

	h.log.Info("campaign updated", "campaign_id", campaign.ID)
	writeJSON(w, http.StatusOK, toCampaignResponse(*campaign))
}

func (h *Handlers) writeCampaignError(w http.ResponseWriter, op, id string, err error) {
	if writeValidationError(w, err) {
		h.log.BusinessError(op+": validation failed", err, "campaign_id", id)
		return
	}
	switch {
	case errors.Is(err, campaignsdomain.ErrCampaignNotFound):
		h.log.BusinessError(op+": campaign not found", err, "campaign_id", id)
		writeError(w, http.StatusNotFound, "campaign_not_found", "campaign not found")
	case errors.Is(err, campaignsdomain.ErrSlugTaken):
		h.log.BusinessError(op+": slug taken", err, "campaign_id", id)
		writeError(w, http.StatusConflict, "slug_taken", "slug already in use")
	default:
		h.log.InternalError(op+": failed", err, "campaign_id", id)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}
