package adapthttp

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"vitals/internal/app"
	"vitals/internal/domain"
)

// dashboardQuery reads range, unit and ref from the query string. ref is a
// local day and defaults to today.
func (s *Server) dashboardQuery(r *http.Request) (app.DashboardQuery, error) {
	q := r.URL.Query()
	rng, err := domain.ParseRange(q.Get("range"))
	if err != nil {
		return app.DashboardQuery{}, err
	}
	unit, err := domain.ParseUnit(q.Get("unit"))
	if err != nil {
		return app.DashboardQuery{}, err
	}
	ref := s.now().In(time.Local)
	if v := q.Get("ref"); v != "" {
		ref, err = time.ParseInLocation(domain.DayLayout, v, time.Local)
		if err != nil {
			return app.DashboardQuery{}, fmt.Errorf("invalid ref %q", v)
		}
	}
	return app.DashboardQuery{Range: rng, Ref: ref, Unit: unit}, nil
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	q, err := s.dashboardQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	d, err := s.dashboard.Build(r.Context(), userFromContext(r).ID, q)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.countDashboard(d)
	writeJSON(w, http.StatusOK, d)
}

// handleDashboardStream serves server-sent events, one "dashboard" event
// per change to the user's weights or goal.
func (s *Server) handleDashboardStream(w http.ResponseWriter, r *http.Request) {
	q, err := s.dashboardQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	ctx := r.Context()
	user := userFromContext(r)

	dashboards, err := s.dashboard.Stream(ctx, user.ID, q)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	rc := http.NewResponseController(w)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		log.WithError(err).Warn("dashboard stream: flush unsupported")
		return
	}

	if s.metrics != nil {
		s.metrics.GaugeStreams.Inc()
		defer s.metrics.GaugeStreams.Dec()
	}

	keepAlive := time.NewTicker(s.keepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
		case d, ok := <-dashboards:
			if !ok {
				return
			}
			s.countDashboard(d)
			payload, err := json.Marshal(d)
			if err != nil {
				log.WithError(err).Error("dashboard stream: encode")
				return
			}
			if _, err := fmt.Fprintf(w, "event: dashboard\ndata: %s\n\n", payload); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

func (s *Server) countDashboard(d *app.Dashboard) {
	if s.metrics == nil {
		return
	}
	s.metrics.CounterDashboards.WithLabelValues(string(d.Range)).Inc()
	if d.Degraded > 0 {
		s.metrics.CounterAggregationFallbacks.Add(float64(d.Degraded))
	}
}
