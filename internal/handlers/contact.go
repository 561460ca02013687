package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/trafer/advocacia-web/internal/models"
)

type contactAckData struct {
	Name        string
	WhatsAppURL string
}

// HandleContact stores a consultation request from the contact form. Name and phone are required and
// the area must be one of the options the form offers.
func (m Main) HandleContact(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		m.logger.Error("Method not allowed", slog.String("method", r.Method))
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	lead := models.Lead{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(r.FormValue("name")),
		Phone:       strings.TrimSpace(r.FormValue("phone")),
		Area:        strings.TrimSpace(r.FormValue("area")),
		Description: strings.TrimSpace(r.FormValue("description")),
		CreatedAt:   time.Now(),
	}

	if lead.Name == "" || lead.Phone == "" {
		http.Error(w, "Name and phone are required", http.StatusBadRequest)
		return
	}
	if !m.site.HasContactArea(lead.Area) {
		http.Error(w, "Unknown area", http.StatusBadRequest)
		return
	}

	id, err := m.store.AddLead(r.Context(), lead)
	if err != nil {
		m.logger.Error("Failed to add lead", slog.String(errLoggerKey, err.Error()))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	m.logger.Info("Lead received", slog.String("leadID", id), slog.String("area", lead.Area))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err = m.templates.ExecuteTemplate(w, "contact_ack", contactAckData{
		Name:        lead.Name,
		WhatsAppURL: m.site.WhatsAppURL(),
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
