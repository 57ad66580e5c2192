// internal/controller/campaign_controller.go
package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	appErrors "github.com/mailpilot/mailpilot-backend/internal/errors"
	"github.com/mailpilot/mailpilot-backend/internal/service"
)

// CampaignController exposes the campaign control surface: start, status,
// reset, stop.
type CampaignController struct {
	CampaignService *service.CampaignService
}

// SendEmails starts a campaign. Missing knobs take the documented defaults
// (pause 5s, 1 retry, 5 workers).
func (c *CampaignController) SendEmails(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Subject              string   `json:"subject"`
		SelectedAccounts     []string `json:"selectedAccounts"`
		PauseBetweenMessages *int     `json:"pauseBetweenMessages"`
		Retries              *int     `json:"retries"`
		MaxConnections       *int     `json:"maxConnections"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	params := service.StartParams{
		Subject:        body.Subject,
		AccountIDs:     body.SelectedAccounts,
		PauseSeconds:   5,
		Retries:        1,
		MaxConnections: 5,
	}
	if body.PauseBetweenMessages != nil {
		params.PauseSeconds = *body.PauseBetweenMessages
	}
	if body.Retries != nil {
		params.Retries = *body.Retries
	}
	if body.MaxConnections != nil {
		params.MaxConnections = *body.MaxConnections
	}

	if err := c.CampaignService.Start(params); err != nil {
		switch {
		case errors.Is(err, appErrors.ErrCampaignRunning):
			writeError(w, http.StatusConflict, err.Error())
		case appErrors.IsValidation(err):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "Email campaign started!"})
}

// CampaignStatus returns the live snapshot polled by the frontend.
func (c *CampaignController) CampaignStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, c.CampaignService.Status())
}

// ResetCampaign clears the status between runs.
func (c *CampaignController) ResetCampaign(w http.ResponseWriter, r *http.Request) {
	if err := c.CampaignService.Reset(); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Campaign status reset successfully"})
}

// StopCampaign cancels the in-flight run.
func (c *CampaignController) StopCampaign(w http.ResponseWriter, r *http.Request) {
	c.CampaignService.Stop()
	writeJSON(w, http.StatusOK, map[string]any{"message": "Campaign stop requested"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}
