// internal/handler/template_handler.go
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/mailpilot/mailpilot-backend/internal/repository"
)

// TemplateHandler manages the per-language message templates.
type TemplateHandler struct {
	Repo repository.TemplateRepositoryInterface
}

func (h *TemplateHandler) GetTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.Repo.GetAll()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"templates": templates})
}

// SaveTemplates replaces the stored set. At least one non-empty body is
// required, otherwise no campaign could ever start.
func (h *TemplateHandler) SaveTemplates(w http.ResponseWriter, r *http.Request) {
	var templates map[string]string
	if err := json.NewDecoder(r.Body).Decode(&templates); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	hasBody := false
	for _, body := range templates {
		if body != "" {
			hasBody = true
			break
		}
	}
	if !hasBody {
		writeError(w, http.StatusBadRequest, "at least one template is required")
		return
	}

	if err := h.Repo.SaveAll(templates); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Info().Int("count", len(templates)).Msg("email templates saved")
	writeJSON(w, http.StatusOK, map[string]any{"message": "Email templates saved successfully!"})
}
