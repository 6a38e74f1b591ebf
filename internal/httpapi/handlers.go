package httpapi

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"milecast/internal/fault"
	"milecast/internal/forecast"
	"milecast/internal/rules"
	"milecast/internal/visuals"
)

type errorResponse struct {
	Error string `json:"error"`
}

// handleForecast returns the baseline forecast for a milestone. The optional
// as_of query parameter (RFC 3339) anchors boundary-breach checks.
func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	opts, err := optionsFromQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := s.forecast.Forecast(chi.URLParam(r, "milestoneID"), s.snapshot(), opts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type summaryResponse struct {
	Forecast          forecast.Result         `json:"forecast"`
	TopContributors   []forecast.Contribution `json:"top_contributors"`
	ContributionChart string                  `json:"contribution_chart,omitempty"`
	ForecastChart     string                  `json:"forecast_chart,omitempty"`
}

// handleForecastSummary returns the forecast with its top contributors and,
// when enabled, mermaid charts for human consumption.
func (s *Server) handleForecastSummary(w http.ResponseWriter, r *http.Request) {
	opts, err := optionsFromQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := s.forecast.Forecast(chi.URLParam(r, "milestoneID"), s.snapshot(), opts)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := summaryResponse{
		Forecast:        res,
		TopContributors: res.TopContributors(3),
	}
	if s.cfg.EnableMermaidCharts {
		resp.ContributionChart = visuals.GenerateContributionChart(&res)
		resp.ForecastChart = visuals.GenerateForecastBands(&res)
	}
	writeJSON(w, http.StatusOK, resp)
}

type scenarioRequest struct {
	AsOf     time.Time         `json:"as_of,omitempty"`
	Scenario forecast.Scenario `json:"scenario"`
}

func (s *Server) handleScenario(w http.ResponseWriter, r *http.Request) {
	var req scenarioRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	cmp, err := s.forecast.ForecastWithScenario(chi.URLParam(r, "milestoneID"), s.snapshot(),
		req.Scenario, forecast.Options{AsOf: req.AsOf})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}

type mitigationRequest struct {
	AsOf          time.Time `json:"as_of,omitempty"`
	RiskID        string    `json:"risk_id"`
	ReductionDays float64   `json:"expected_impact_reduction_days"`
}

func (s *Server) handleMitigationPreview(w http.ResponseWriter, r *http.Request) {
	var req mitigationRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	prev, err := s.forecast.ForecastMitigationImpact(chi.URLParam(r, "milestoneID"), s.snapshot(),
		req.RiskID, req.ReductionDays, forecast.Options{AsOf: req.AsOf})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prev)
}

type eventResponse struct {
	EventID  string          `json:"event_id"`
	Commands []rules.Command `json:"commands"`
	Executed bool            `json:"executed"`
}

// handleEvent runs an event through the rule engine and returns the commands
// without executing them.
func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	s.processEvent(w, r, false)
}

// handleEventExecute additionally hands the commands to the executor.
func (s *Server) handleEventExecute(w http.ResponseWriter, r *http.Request) {
	s.processEvent(w, r, true)
}

func (s *Server) processEvent(w http.ResponseWriter, r *http.Request, execute bool) {
	event, err := s.decodeEvent(r)
	if err != nil {
		writeError(w, err)
		return
	}
	cmds, err := s.engine.ProcessEvent(event, s.snapshot())
	if err != nil {
		writeError(w, err)
		return
	}
	if execute {
		if err := s.executor.Execute(r.Context(), cmds); err != nil {
			writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, eventResponse{EventID: event.ID, Commands: cmds, Executed: execute})
}

// decodeEvent validates the raw body against the event schema before binding
// it, and fills in an id and timestamp when the sender omitted them.
func (s *Server) decodeEvent(r *http.Request) (rules.Event, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return rules.Event{}, fault.ErrInvalidInput
	}
	if err := s.eventSchema.validate(body); err != nil {
		return rules.Event{}, err
	}
	var event rules.Event
	if err := json.Unmarshal(body, &event); err != nil {
		return rules.Event{}, fault.ErrInvalidInput
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	return event, nil
}

type healthResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version,omitempty"`
	Commit      string `json:"commit,omitempty"`
	BuildDate   string `json:"build_date,omitempty"`
	Milestones  int    `json:"milestones"`
	WorkItems   int    `json:"work_items"`
	Risks       int    `json:"risks"`
	RulesLoaded int    `json:"rules_loaded"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	snap := s.snapshot()
	writeJSON(w, http.StatusOK, healthResponse{
		Status:      "ok",
		Version:     s.build.Version,
		Commit:      s.build.Commit,
		BuildDate:   s.build.BuildDate,
		Milestones:  len(snap.Milestones),
		WorkItems:   len(snap.WorkItems),
		Risks:       len(snap.Risks),
		RulesLoaded: s.engine.RuleCount(),
	})
}

func (s *Server) handleRules(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Rules())
}

func optionsFromQuery(r *http.Request) (forecast.Options, error) {
	var opts forecast.Options
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return opts, fault.ErrInvalidInput
		}
		opts.AsOf = t
	}
	return opts, nil
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fault.ErrInvalidInput
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, fault.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, fault.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, fault.ErrInvalidGraph):
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
