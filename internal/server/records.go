package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rustyeddy/rulebook/journal"
)

// recordRequest mirrors the entry form. Numeric fields arrive as text and
// go through the ledger coercion rules; only date and P&L are required.
type recordRequest struct {
	Date         string `json:"date"`
	Kind         string `json:"kind"`
	PL           string `json:"pl"`
	Brokerage    string `json:"brokerage"`
	Tax          string `json:"tax"`
	Quantity     string `json:"quantity"`
	RulesAdhered string `json:"rules_adhered"`
	Notes        string `json:"notes"`
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	p := profileFrom(r.Context())

	recs, err := s.store.ListRecords(r.Context(), p.ID)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleAddRecord(w http.ResponseWriter, r *http.Request) {
	p := profileFrom(r.Context())

	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	rec, err := req.record(s.now().Location())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	rec.UserID = p.ID

	saved, err := s.store.AddRecord(r.Context(), rec)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.log.Info().Str("user", p.ID).Str("record", saved.ID).Str("kind", saved.Kind.String()).Msg("record added")
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	p := profileFrom(r.Context())
	id := r.PathValue("id")

	err := s.store.DeleteRecord(r.Context(), p.ID, id)
	if errors.Is(err, journal.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "record not found"})
		return
	}
	if err != nil {
		s.fail(w, err)
		return
	}
	s.log.Info().Str("user", p.ID).Str("record", id).Msg("record deleted")
	w.WriteHeader(http.StatusNoContent)
}
