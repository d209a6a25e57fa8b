package public

import (
	"errors"
	"net/http"
	"time"

	proposalsdomain "coop-intake-go/internal/domain/proposals"
)

// submitProposalRequest mirrors the public intake form field names.
type submitProposalRequest struct {
	CPF                   string `json:"cpf"`
	FullName              string `json:"nomeCompleto"`
	RG                    string `json:"rg"`
	RGIssuerState         string `json:"estadoExpedidor"`
	RGIssuer              string `json:"orgaoExpedidor"`
	MotherName            string `json:"nomeMae"`
	PIS                   string `json:"pis"`
	BirthDate             string `json:"dataNascimento"`
	Gender                string `json:"sexo"`
	Race                  string `json:"corRaca"`
	MaritalStatus         string `json:"estadoCivil"`
	Nationality           string `json:"nacionalidade"`
	BirthState            string `json:"naturalidadeEstado"`
	BirthCity             string `json:"naturalidadeMunicipio"`
	CEP                   string `json:"cep"`
	State                 string `json:"estado"`
	City                  string `json:"cidade"`
	StreetType            string `json:"logradouroTipo"`
	Street                string `json:"logradouroNome"`
	Number                string `json:"numero"`
	Neighborhood          string `json:"bairro"`
	Complement            string `json:"complemento"`
	Phone                 string `json:"telefone"`
	Email                 string `json:"email"`
	Bank                  string `json:"banco"`
	AccountType           string `json:"tipoConta"`
	Agency                string `json:"agencia"`
	Account               string `json:"conta"`
	AccountDigit          string `json:"contaDigito"`
	Education             string `json:"escolaridade"`
	JobCategory           string `json:"categoriaFuncao"`
	Position              string `json:"cargo"`
	ShirtSize             string `json:"tamanhoCamisa"`
	AcceptedTerms         *bool  `json:"aceiteConcordancia"`
	AcceptedLGPD          *bool  `json:"aceiteLGPD"`
	CriterionLocation     string `json:"criterioLocalidade"`
	CriterionExperience   string `json:"criterioExperiencia"`
	CriterionAvailability string `json:"criterioDisponibilidade"`
	CampaignID            string `json:"campaignId"`
	ClientID              string `json:"clientId"`
	FunctionID            string `json:"functionId"`
	DDD                   string `json:"ddd"`
}

func (req submitProposalRequest) toInput() proposalsdomain.ProposalInput {
	return proposalsdomain.ProposalInput{
		CampaignID:            req.CampaignID,
		ClientID:              req.ClientID,
		FunctionID:            req.FunctionID,
		DDD:                   req.DDD,
		CPF:                   req.CPF,
		FullName:              req.FullName,
		RG:                    req.RG,
		RGIssuerState:         req.RGIssuerState,
		RGIssuer:              req.RGIssuer,
		MotherName:            req.MotherName,
		PIS:                   req.PIS,
		BirthDate:             req.BirthDate,
		Gender:                req.Gender,
		Race:                  req.Race,
		MaritalStatus:         req.MaritalStatus,
		Nationality:           req.Nationality,
		BirthState:            req.BirthState,
		BirthCity:             req.BirthCity,
		CEP:                   req.CEP,
		State:                 req.State,
		City:                  req.City,
		StreetType:            req.StreetType,
		Street:                req.Street,
		Number:                req.Number,
		Neighborhood:          req.Neighborhood,
		Complement:            req.Complement,
		Phone:                 req.Phone,
		Email:                 req.Email,
		Bank:                  req.Bank,
		AccountType:           req.AccountType,
		Agency:                req.Agency,
		Account:               req.Account,
		AccountDigit:          req.AccountDigit,
		Education:             req.Education,
		JobCategory:           req.JobCategory,
		Position:              req.Position,
		ShirtSize:             req.ShirtSize,
		AcceptedTerms:         req.AcceptedTerms,
		AcceptedLGPD:          req.AcceptedLGPD,
		CriterionLocation:     req.CriterionLocation,
		CriterionExperience:   req.CriterionExperience,
		CriterionAvailability: req.CriterionAvailability,
	}
}

type submitProposalResponse struct {
	ID                 string    `json:"id"`
	Status             string    `json:"status"`
	UploadToken        string    `json:"upload_token"`
	UploadPath         string    `json:"upload_path"`
	UploadTokenExpires time.Time `json:"upload_token_expires"`
}

func (h *Handlers) SubmitProposal(w http.ResponseWriter, r *http.Request) {
	var req submitProposalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}

	proposal, err := h.Proposals.CreateProposal(r.Context(), req.toInput())
	if err != nil {
		if writeValidationError(w, err) {
			h.log.BusinessError("public.submit_proposal: validation failed", err, "campaign_id", req.CampaignID)
			return
		}
		if errors.Is(err, proposalsdomain.ErrUnknownCampaign) {
			h.log.BusinessError("public.submit_proposal: unknown campaign", err, "campaign_id", req.CampaignID)
			writeError(w, http.StatusNotFound, "campaign_not_found", "campaign not found")
			return
		}
		h.log.InternalError("public.submit_proposal: create failed", err, "campaign_id", req.CampaignID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	h.log.Info("proposal submitted", "proposal_id", proposal.ID, "campaign_id", proposal.CampaignID)
	writeJSON(w, http.StatusCreated, submitProposalResponse{
		ID:                 proposal.ID,
		Status:             string(proposal.Status),
		UploadToken:        proposal.UploadToken,
		UploadPath:         "/" + proposal.UploadToken,
		UploadTokenExpires: proposal.UploadTokenExpires,
	})
}
