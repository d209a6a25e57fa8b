package public

import (
	"errors"
	"net/http"
	"strings"

	campaignsdomain "coop-intake-go/internal/domain/campaigns"
	"github.com/go-chi/chi/v5"
)

type campaignResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Slug        string   `json:"slug"`
	BannerURL   string   `json:"banner_url"`
	ClientID    string   `json:"client_id"`
	FunctionID  string   `json:"function_id"`
	Professions []string `json:"professions"`
}

func (h *Handlers) GetCampaignBySlug(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimSpace(chi.URLParam(r, "slug"))

	campaign, err := h.Campaigns.GetActiveCampaignBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, campaignsdomain.ErrCampaignNotFound) {
			h.log.BusinessError("public.get_campaign: campaign not found", err, "slug", slug)
			writeError(w, http.StatusNotFound, "campaign_not_found", "campaign not found")
			return
		}
		h.log.InternalError("public.get_campaign: lookup failed", err, "slug", slug)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	professions := []string(campaign.Professions)
	if professions == nil {
		professions = []string{}
	}
	writeJSON(w, http.StatusOK, campaignResponse{
		ID:          campaign.ID,
		Name:        campaign.Name,
		Slug:        campaign.Slug,
		BannerURL:   campaign.BannerURL,
		ClientID:    campaign.ClientID,
		FunctionID:  campaign.FunctionID,
		Professions: professions,
	})
}

type citiesResponse struct {
	State  string   `json:"state"`
	Cities []string `json:"cities"`
}

func (h *Handlers) ListCities(w http.ResponseWriter, r *http.Request) {
	state := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "uf")))
	if len(state) != 2 {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid state")
		return
	}
	writeJSON(w, http.StatusOK, citiesResponse{State: state, Cities: h.Cities.Cities(state)})
}
