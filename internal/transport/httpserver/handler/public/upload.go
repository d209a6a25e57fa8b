package public

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"coop-intake-go/internal/blob"
	proposalsdomain "coop-intake-go/internal/domain/proposals"
	"github.com/go-chi/chi/v5"
)

const multipartMemory = 8 << 20

type uploadSessionResponse struct {
	ProposalID    string    `json:"proposal_id"`
	FullName      string    `json:"full_name"`
	Status        string    `json:"status"`
	ExpiresAt     time.Time `json:"expires_at"`
	DocumentTypes []string  `json:"document_types"`
	UploadedTypes []string  `json:"uploaded_types"`
}

type documentResponse struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	URL        string    `json:"url"`
	Filename   string    `json:"filename"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type finalizeResponse struct {
	ID                   string     `json:"id"`
	Status               string     `json:"status"`
	DocumentsSubmittedAt *time.Time `json:"documents_submitted_at"`
}

func (h *Handlers) GetUploadSession(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	session, err := h.Proposals.OpenUploadSession(r.Context(), token)
	if err != nil {
		h.writeTokenError(w, "public.upload_session", token, err)
		return
	}

	types := make([]string, 0, len(proposalsdomain.DocumentTypes))
	for _, t := range proposalsdomain.DocumentTypes {
		types = append(types, string(t))
	}
	uploaded := make([]string, 0, len(session.UploadedTypes))
	for _, t := range session.UploadedTypes {
		uploaded = append(uploaded, string(t))
	}

	writeJSON(w, http.StatusOK, uploadSessionResponse{
		ProposalID:    session.ProposalID,
		FullName:      session.FullName,
		Status:        string(session.Status),
		ExpiresAt:     session.ExpiresAt,
		DocumentTypes: types,
		UploadedTypes: uploaded,
	})
}

func (h *Handlers) UploadDocument(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	session, err := h.Proposals.OpenUploadSession(r.Context(), token)
	if err != nil {
		h.writeTokenError(w, "public.upload_document", token, err)
		return
	}
	if session.Status == proposalsdomain.StatusCompleted {
		h.log.BusinessError("public.upload_document: documents locked", proposalsdomain.ErrDocumentsLocked, "proposal_id", session.ProposalID)
		writeError(w, http.StatusConflict, "documents_locked", "proposal already completed")
		return
	}

	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartMemory)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "file_too_large", "file too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid multipart form")
		return
	}

	docType := proposalsdomain.DocumentType(strings.TrimSpace(r.FormValue("type")))
	if !docType.Valid() {
		h.log.BusinessError("public.upload_document: invalid document type", proposalsdomain.ErrInvalidDocumentType, "type", string(docType))
		writeError(w, http.StatusBadRequest, "invalid_document_type", "invalid document type")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "file is required")
		return
	}
	defer file.Close()

	object, err := h.Blobs.Save(r.Context(), session.ProposalID, header.Filename, file)
	if err != nil {
		switch {
		case errors.Is(err, blob.ErrTooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, "file_too_large", "file too large")
		case errors.Is(err, blob.ErrEmpty):
			writeError(w, http.StatusBadRequest, "empty_file", "file is empty")
		default:
			h.log.InternalError("public.upload_document: save failed", err, "proposal_id", session.ProposalID)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	doc, err := h.Proposals.AttachDocumentByToken(r.Context(), token, proposalsdomain.AttachDocumentInput{
		Type:     docType,
		URL:      object.URL,
		Filename: object.Filename,
	})
	if err != nil {
		if delErr := h.Blobs.Delete(object.URL); delErr != nil {
			h.log.Warn("public.upload_document: orphan blob", "url", object.URL, "error", delErr)
		}
		h.writeTokenError(w, "public.upload_document", token, err)
		return
	}

	h.log.Info("document uploaded", "proposal_id", session.ProposalID, "type", string(doc.Type), "size", object.Size)
	writeJSON(w, http.StatusCreated, documentResponse{
		ID:         doc.ID,
		Type:       string(doc.Type),
		URL:        doc.URL,
		Filename:   doc.Filename,
		UploadedAt: doc.UploadedAt,
	})
}

func (h *Handlers) RemoveDocument(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	docType := proposalsdomain.DocumentType(chi.URLParam(r, "type"))

	removed, err := h.Proposals.RemoveDocumentByToken(r.Context(), token, docType)
	if err != nil {
		h.writeTokenError(w, "public.remove_document", token, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"removed": removed})
}

func (h *Handlers) FinalizeUpload(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	proposal, err := h.Proposals.FinalizeByToken(r.Context(), token)
	if err != nil {
		h.writeTokenError(w, "public.finalize_upload", token, err)
		return
	}

	h.log.Info("documents finalized", "proposal_id", proposal.ID)
	writeJSON(w, http.StatusOK, finalizeResponse{
		ID:                   proposal.ID,
		Status:               string(proposal.Status),
		DocumentsSubmittedAt: proposal.DocumentsSubmittedAt,
	})
}

func (h *Handlers) writeTokenError(w http.ResponseWriter, op, token string, err error) {
	masked := maskToken(token)
	switch {
	case errors.Is(err, proposalsdomain.ErrUploadTokenNotFound), errors.Is(err, proposalsdomain.ErrProposalNotFound):
		h.log.BusinessError(op+": token not found", err, "token", masked)
		writeError(w, http.StatusNotFound, "upload_token_not_found", "upload link not found")
	case errors.Is(err, proposalsdomain.ErrUploadTokenExpired):
		h.log.BusinessError(op+": token expired", err, "token", masked)
		writeError(w, http.StatusGone, "upload_token_expired", "upload link expired")
	case errors.Is(err, proposalsdomain.ErrInvalidDocumentType):
		h.log.BusinessError(op+": invalid document type", err, "token", masked)
		writeError(w, http.StatusBadRequest, "invalid_document_type", "invalid document type")
	case errors.Is(err, proposalsdomain.ErrDocumentsLocked):
		h.log.BusinessError(op+": documents locked", err, "token", masked)
		writeError(w, http.StatusConflict, "documents_locked", "proposal already completed")
	default:
		h.log.InternalError(op+": failed", err, "token", masked)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}
