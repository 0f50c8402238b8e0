package adapthttp

import (
	"net/http"
)

func (s *Server) handleGoalGet(w http.ResponseWriter, r *http.Request) {
	goal, err := s.goals.GetGoal(r.Context(), userFromContext(r).ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"goal": goal})
}

func (s *Server) handleGoalPut(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Target    numberText `json:"target"`
		Unit      string     `json:"unit"`
		Direction string     `json:"direction"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	goal, err := s.goals.SetGoal(r.Context(), userFromContext(r).ID, string(body.Target), body.Unit, body.Direction)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"goal": goal})
}
