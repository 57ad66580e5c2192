// internal/handler/contact_handler.go
package handler

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/mailpilot/mailpilot-backend/internal/model"
	"github.com/mailpilot/mailpilot-backend/internal/repository"
)

// ContactHandler manages the recipient list. Uploads replace the stored set:
// the file is the source of truth for the next campaign.
type ContactHandler struct {
	Repo repository.ContactRepositoryInterface
}

func (h *ContactHandler) GetContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.Repo.ListAll()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"contacts": contacts})
}

func (h *ContactHandler) SaveContacts(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Contacts []model.Contact `json:"contacts"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	if err := h.Repo.ReplaceAll(body.Contacts); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Info().Int("total", len(body.Contacts)).Msg("contacts saved")
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Contacts saved successfully!",
		"total":   len(body.Contacts),
	})
}

// UploadContacts imports a CSV (header: email,name,language) or a TXT file
// with one address per line.
func (h *ContactHandler) UploadContacts(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file part")
		return
	}
	defer file.Close()

	var contacts []model.Contact
	if strings.HasSuffix(strings.ToLower(header.Filename), ".txt") {
		contacts, err = parseTXT(file)
	} else {
		contacts, err = parseCSV(file)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.Repo.ReplaceAll(contacts); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Info().Int("total", len(contacts)).Str("file", header.Filename).Msg("contacts uploaded")
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Contacts uploaded successfully!",
		"total":   len(contacts),
	})
}

// parseCSV maps columns by header name instead of position. Email is
// mandatory per row; language defaults to EN.
func parseCSV(r io.Reader) ([]model.Contact, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []model.Contact{}, nil
	}

	col := map[string]int{}
	for i, name := range records[0] {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	contacts := []model.Contact{}
	for _, row := range records[1:] {
		email := field(row, "email")
		if email == "" {
			continue
		}
		lang := field(row, "language")
		if lang == "" {
			lang = "EN"
		}
		contacts = append(contacts, model.Contact{
			Email:    email,
			Name:     field(row, "name"),
			Language: lang,
		})
	}
	return contacts, nil
}

func parseTXT(r io.Reader) ([]model.Contact, error) {
	contacts := []model.Contact{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		email := strings.TrimSpace(scanner.Text())
		if email == "" {
			continue
		}
		contacts = append(contacts, model.Contact{Email: email, Language: "EN"})
	}
	return contacts, scanner.Err()
}
