// internal/handler/attachment_handler.go
package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/mailpilot/mailpilot-backend/internal/storage"
)

// AttachmentHandler manages the files attached to every campaign message.
type AttachmentHandler struct {
	Store *storage.AttachmentStore
}

func (h *AttachmentHandler) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file part")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, "no selected file")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := h.Store.Save(header.Filename, data); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	log.Info().Str("filename", header.Filename).Msg("attachment uploaded")
	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "Attachment uploaded successfully!",
		"filename": header.Filename,
	})
}

func (h *AttachmentHandler) GetAttachments(w http.ResponseWriter, r *http.Request) {
	infos, err := h.Store.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"attachments": infos})
}

func (h *AttachmentHandler) DeleteAttachment(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Filename string `json:"filename"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Filename == "" {
		writeError(w, http.StatusBadRequest, "no filename provided")
		return
	}

	if err := h.Store.Delete(body.Filename); err != nil {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}

	log.Info().Str("filename", body.Filename).Msg("attachment deleted")
	writeJSON(w, http.StatusOK, map[string]any{"message": "Attachment deleted successfully"})
}
