package handler

import (
	"context"
	"io"
	"net/http"
	"strings"

	"whatsapp-disparador/internal/i18n"
	"whatsapp-disparador/internal/importer"
	"whatsapp-disparador/internal/model"
	"whatsapp-disparador/pkg/logger"
)

// ContactWriter persists imported contacts
type ContactWriter interface {
	Upsert(ctx context.Context, contacts []model.Contact) (int, error)
}

// ContactsHandler imports address-book files
type ContactsHandler struct {
	contacts   ContactWriter
	translator *i18n.Translator
	logger     *logger.Logger
}

// NewContactsHandler creates a new contacts handler
func NewContactsHandler(contacts ContactWriter, translator *i18n.Translator, log *logger.Logger) *ContactsHandler {
	return &ContactsHandler{
		contacts:   contacts,
		translator: translator,
		logger:     log,
	}
}

// ImportResult summarizes a vCard upload
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// Import handles POST /api/v1/contacts/import with a vCard body or a
// multipart "file" field
func (h *ContactsHandler) Import(w http.ResponseWriter, r *http.Request) {
	loc := localizer(h.translator, r)
	uid := userID(r)
	log := h.logger.WithUserID(uid)

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	var body io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("file")
		if err != nil {
			sendErrorResponse(w, http.StatusBadRequest, "ERR_MISSING_PARAMETER", "Missing file field",
				alert(loc.T(i18n.MsgErrorTitle, nil), loc.T(i18n.MsgImportFailed, nil)))
			return
		}
		defer file.Close()
		body = file
	}

	result, err := importer.ImportVCard(r.Context(), body, uid, log)
	if err != nil {
		log.WithError(err).Warn("Contact import failed")
		sendErrorResponse(w, http.StatusBadRequest, "ERR_INVALID_FILE", "Could not read contacts file",
			alert(loc.T(i18n.MsgErrorTitle, nil), loc.T(i18n.MsgImportFailed, nil)))
		return
	}

	written, err := h.contacts.Upsert(r.Context(), result.Contacts)
	if err != nil {
		log.WithError(err).Error("Failed to save imported contacts")
		sendErrorResponse(w, http.StatusInternalServerError, "ERR_INTERNAL_SERVER", "Failed to save contacts",
			alert(loc.T(i18n.MsgErrorTitle, nil), loc.T(i18n.MsgImportFailed, nil)))
		return
	}

	log.Info("Contacts imported", "imported", written, "skipped", result.Skipped)
	sendSuccessResponse(w, http.StatusOK, "Contacts imported",
		ImportResult{Imported: written, Skipped: result.Skipped},
		notice(loc.T(i18n.MsgImportDoneTitle, nil), loc.Count(i18n.MsgImportDone, written)))
}
