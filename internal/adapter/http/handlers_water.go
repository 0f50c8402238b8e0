package adapthttp

import (
	"net/http"
	"time"

	"vitals/internal/domain"
)

func (s *Server) handleWaterToday(w http.ResponseWriter, r *http.Request) {
	today := localDayString(s.now())
	total, err := s.water.GetTodayTotal(r.Context(), userFromContext(r).ID, today)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"today": today, "totalLiters": total})
}

func (s *Server) handleWaterEvent(w http.ResponseWriter, r *http.Request) {
	var body struct {
		DeltaLiters float64 `json:"deltaLiters"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	id, err := s.water.RecordEvent(r.Context(), userFromContext(r).ID, body.DeltaLiters)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id})
}

func (s *Server) handleWaterRecent(w http.ResponseWriter, r *http.Request) {
	limit := intQuery(r, "limit", 20)
	items, err := s.water.ListRecent(r.Context(), userFromContext(r).ID, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleWaterUndoLast(w http.ResponseWriter, r *http.Request) {
	undone, id, err := s.water.UndoLast(r.Context(), userFromContext(r).ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"undone": undone, "id": id})
}

func (s *Server) handleWaterSummary(w http.ResponseWriter, r *http.Request) {
	rng, err := domain.ParseRange(r.URL.Query().Get("range"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	days, err := s.water.Summary(r.Context(), userFromContext(r).ID, rng, s.now().In(time.Local))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"range": rng, "items": days})
}
