package adapthttp

import (
	"net/http"

	"vitals/internal/app"
)

type weightBody struct {
	Date  string     `json:"date"`
	Value numberText `json:"value"`
	Unit  string     `json:"unit"`
}

func (b weightBody) input() app.WeightInput {
	return app.WeightInput{Date: b.Date, Value: string(b.Value), Unit: b.Unit}
}

func (s *Server) handleWeightList(w http.ResponseWriter, r *http.Request) {
	items, err := s.weight.ListWeights(r.Context(), userFromContext(r).ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleWeightRecord(w http.ResponseWriter, r *http.Request) {
	var body weightBody
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	res, err := s.weight.RecordWeight(r.Context(), userFromContext(r).ID, body.input())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.countWrite(res)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleWeightUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var body weightBody
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	res, err := s.weight.UpdateWeight(r.Context(), userFromContext(r).ID, id, body.input())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.countWrite(res)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleWeightDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.weight.DeleteWeight(r.Context(), userFromContext(r).ID, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "id": id})
}

func (s *Server) countWrite(res *app.RecordResult) {
	if s.metrics == nil {
		return
	}
	s.metrics.CounterWeightsRecorded.Inc()
	if res.GoalReached {
		s.metrics.CounterGoalsReached.Inc()
	}
}
