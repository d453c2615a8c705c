/*
handlers.go - HTTP API handlers for the attendance engine

PURPOSE:
  Exposes table extraction, attendance analysis and roster reporting via
  REST API. Handles HTTP request/response, JSON serialization, and
  delegates to the extract, attendance and rosterreport packages.

ENDPOINTS:
  Extraction:
    POST   /api/extract                      Parse tables into the record table
    POST   /api/analyze                      Parse and run the attendance analysis
    POST   /api/roster-report                Parse and run the roster report

  Runs (runs.go):
    GET    /api/runs                         List stored runs (?department=&limit=)
    POST   /api/runs                         Parse and store a run
    POST   /api/runs/compare                 Month summaries of several runs
    GET    /api/runs/{id}                    Run with its record table
    DELETE /api/runs/{id}                    Delete a run
    GET    /api/runs/{id}/analysis           Attendance analysis of a run
    GET    /api/runs/{id}/roster-report      Roster report of a run
    GET    /api/runs/{id}/export.xlsx        Workbook (?report=analysis|roster|records)
    GET    /api/runs/{id}/export.csv         CSV (?table=records|stats|daily|summary)

  Admin (admin.go):
    GET    /api/profiles                     List profiles
    POST   /api/profiles                     Create or update a profile
    GET    /api/profiles/{id}                Get a profile
    GET    /api/directory/{department}       List a department directory
    PUT    /api/directory/{department}       Replace a department directory
    GET    /api/directory/{department}/{pn}  Look up one employee
    POST   /api/consolidate                  Year sheets workbook from monthly tables

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: profiles, directories and runs
  - Profiles: JSON to Profile conversion
  - Logger, Metrics: zap and Prometheus

REQUEST FLOW:
  1. Decode and validate the body (decode)
  2. Resolve the profile from the store
  3. Parse, normalize, analyze
  4. Serialize response
  5. Map errors to a status (fail)

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid profile, layout or period
  - 404: Profile, run or directory entry not found
  - 413: Body over the configured limit
  - 500: Internal errors, logged with the request ID

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/consolidate"
	"github.com/warp/attendance-engine/directory"
	"github.com/warp/attendance-engine/export"
	"github.com/warp/attendance-engine/extract"
	"github.com/warp/attendance-engine/factory"
	"github.com/warp/attendance-engine/store/sqlite"
	"github.com/warp/attendance-engine/validation"
	"go.uber.org/zap"
)

// errBadRequest marks a body that is not valid JSON for its DTO.
var errBadRequest = errors.New("invalid request body")

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Options are the request defaults taken from configuration.
type Options struct {
	DefaultProfile string
	TopN           int
	Workers        int
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    *sqlite.Store
	Profiles *factory.ProfileFactory
	Logger   *zap.Logger
	Metrics  *Metrics
	Options  Options
}

// NewHandler creates a new handler. A nil logger or metrics gets a no-op
// logger or a fresh registry.
func NewHandler(store *sqlite.Store, logger *zap.Logger, metrics *Metrics, opts Options) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = NewMetrics()
	}
	if opts.DefaultProfile == "" {
		opts.DefaultProfile = factory.PresetStations
	}
	if opts.Workers <= 0 {
		opts.Workers = consolidate.DefaultLimit
	}
	return &Handler{
		Store:    store,
		Profiles: factory.NewProfileFactory(),
		Logger:   logger,
		Metrics:  metrics,
		Options:  opts,
	}
}

// SeedProfiles stores every built-in profile that is not stored yet.
// Edited presets are left alone.
func (h *Handler) SeedProfiles(ctx context.Context) error {
	for _, js := range factory.Presets() {
		p, err := h.Profiles.ParseProfile(js)
		if err != nil {
			return fmt.Errorf("failed to parse preset: %w", err)
		}
		_, err = h.Store.GetProfile(ctx, p.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, sqlite.ErrNotFound) {
			return err
		}
		record := sqlite.ProfileRecord{
			ID:         p.ID,
			Name:       p.Name,
			Department: string(p.Department),
			ConfigJSON: js,
		}
		if err := h.Store.SaveProfile(ctx, record); err != nil {
			return err
		}
		h.Logger.Info("seeded profile", zap.String("profile", p.ID))
	}
	return nil
}

// profile loads and parses a stored profile. Blank id is the default.
func (h *Handler) profile(ctx context.Context, id string) (*factory.Profile, error) {
	if id == "" {
		id = h.Options.DefaultProfile
	}
	record, err := h.Store.GetProfile(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("profile %q: %w", id, err)
	}
	return h.Profiles.ParseProfile(record.ConfigJSON)
}

// analyzer builds the attendance analyzer of a profile, with the stored
// department directory when enrich is set.
func (h *Handler) analyzer(ctx context.Context, p *factory.Profile, month string, enrich bool) (*attendance.Analyzer, error) {
	var dir directory.Directory
	if enrich {
		mem, err := h.Store.Directory(ctx, p.Department)
		if err != nil {
			return nil, err
		}
		dir = mem
	}
	a := p.Analyzer(month, dir)
	if p.TopN == 0 && h.Options.TopN > 0 {
		a.TopN = h.Options.TopN
	}
	return a, nil
}

// =============================================================================
// EXTRACTION
// =============================================================================

// extraction is one parsed request.
type extraction struct {
	profile *factory.Profile
	result  extract.ParseResult
	batch   extract.Batch
}

func (h *Handler) extract(ctx context.Context, req TablesRequest) (*extraction, error) {
	p, err := h.profile(ctx, req.Profile)
	if err != nil {
		return nil, err
	}
	parser := p.Parser()
	if req.Layout != "" {
		layout, err := extract.ParseLayout(req.Layout)
		if err != nil {
			return nil, err
		}
		parser.Layout = layout
	}

	res := parser.Parse(req.Tables)
	h.Metrics.ObserveParse(p.ID, res)
	if res.TablesSkipped > 0 || res.RowsSkipped > 0 {
		h.Logger.Debug("skipped table content",
			zap.String("profile", p.ID),
			zap.Int("tables_skipped", res.TablesSkipped),
			zap.Int("rows_skipped", res.RowsSkipped),
		)
	}
	return &extraction{profile: p, result: res, batch: extract.Normalize(res)}, nil
}

func parseStats(res extract.ParseResult) ParseStatsDTO {
	return ParseStatsDTO{
		TablesSeen:    res.TablesSeen,
		TablesSkipped: res.TablesSkipped,
		RowsAccepted:  res.RowsAccepted,
		RowsSkipped:   res.RowsSkipped,
	}
}

// Extract parses raw tables into the day-indexed record table.
func (h *Handler) Extract(w http.ResponseWriter, r *http.Request) {
	var req TablesRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, "Invalid request body", err)
		return
	}

	ex, err := h.extract(r.Context(), req)
	if err != nil {
		h.fail(w, r, "Failed to extract tables", err)
		return
	}

	writeJSON(w, http.StatusOK, ExtractResponse{
		Profile:          ex.profile.ID,
		Layout:           ex.batch.Layout,
		Employees:        len(ex.batch.Records),
		MaxDays:          ex.batch.MaxDays,
		PaidTimeDetected: ex.batch.PaidTimeDetected,
		DayLabels:        ex.batch.DayLabels,
		Parse:            parseStats(ex.result),
		Table:            ex.batch.Table(),
	})
}

// Analyze parses raw tables and runs the attendance analysis.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req TablesRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, "Invalid request body", err)
		return
	}

	ex, err := h.extract(r.Context(), req)
	if err != nil {
		h.fail(w, r, "Failed to extract tables", err)
		return
	}
	resp, err := h.analysis(r.Context(), ex.profile, ex.batch, req.Month, req.Enrich)
	if err != nil {
		h.fail(w, r, "Failed to analyze attendance", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) analysis(ctx context.Context, p *factory.Profile, b extract.Batch, month string, enrich bool) (AnalysisResponse, error) {
	a, err := h.analyzer(ctx, p, month, enrich)
	if err != nil {
		return AnalysisResponse{}, err
	}
	rep := a.Analyze(b)
	return AnalysisResponse{Profile: p.ID, Report: rep, Sheets: a.Sheets(rep)}, nil
}

// RosterReport parses raw tables and runs the roster report.
func (h *Handler) RosterReport(w http.ResponseWriter, r *http.Request) {
	var req TablesRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, "Invalid request body", err)
		return
	}

	ex, err := h.extract(r.Context(), req)
	if err != nil {
		h.fail(w, r, "Failed to extract tables", err)
		return
	}
	writeJSON(w, http.StatusOK, rosterReport(ex.profile, ex.batch))
}

func rosterReport(p *factory.Profile, b extract.Batch) RosterReportResponse {
	a := p.RosterAnalyzer()
	return RosterReportResponse{
		Profile:      p.ID,
		Summary:      a.Summarize(b),
		Daily:        a.DailyTrend(b),
		Distribution: a.Distribute(b),
		Sheets:       a.Sheets(b),
	}
}

// Healthz reports whether the store answers.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "Store unavailable", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

// decode reads a JSON body into v and validates it.
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return decodeError(err)
	}
	return validation.Struct(v)
}

// decodeError marks a JSON error as a bad request, except for an oversized
// body which keeps its own status.
func decodeError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return err
	}
	return badRequest(err)
}

func badRequest(err error) error {
	return fmt.Errorf("%w: %w", errBadRequest, err)
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	var verr *validation.Error
	var maxErr *http.MaxBytesError

	switch {
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, sqlite.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &verr),
		errors.Is(err, errBadRequest),
		errors.Is(err, factory.ErrInvalidProfile),
		errors.Is(err, extract.ErrUnknownLayout),
		errors.Is(err, directory.ErrUnknownDepartment),
		errors.Is(err, consolidate.ErrNoSources),
		errors.Is(err, consolidate.ErrInvalidPeriod),
		errors.Is(err, export.ErrNoSheets):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err with its mapped status. Server errors are logged.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, message string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.Logger.Error(message,
			zap.Error(err),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	}
	writeError(w, status, message, err)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
		var verr *validation.Error
		if errors.As(err, &verr) {
			resp.Fields = verr.Fields
		}
	}
	writeJSON(w, status, resp)
}
