package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/directory"
	"github.com/warp/attendance-engine/export"
	"github.com/warp/attendance-engine/extract"
	"github.com/warp/attendance-engine/grid"
	"github.com/warp/attendance-engine/store/sqlite"
)

const (
	defaultRunLimit = 50
	maxRunLimit     = 500

	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeCSV  = "text/csv; charset=utf-8"
)

// Sheet names of the normalized record table, by layout.
const (
	RecordsSheet          = "Attendance Data"
	TripChartRecordsSheet = "Trip Chart Data"
)

func recordsSheet(layout extract.Layout) string {
	if layout == extract.LayoutTripChart {
		return TripChartRecordsSheet
	}
	return RecordsSheet
}

// =============================================================================
// RUN HANDLERS
// =============================================================================

// CreateRun parses raw tables and stores the batch.
func (h *Handler) CreateRun(w http.ResponseWriter, r *http.Request) {
	var req CreateRunRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, "Invalid request body", err)
		return
	}

	ex, err := h.extract(r.Context(), req.TablesRequest)
	if err != nil {
		h.fail(w, r, "Failed to extract tables", err)
		return
	}

	run, err := h.Store.CreateRun(r.Context(), sqlite.Run{
		ProfileID:     ex.profile.ID,
		Department:    ex.profile.Department,
		Month:         req.Month,
		Source:        req.Source,
		TablesSeen:    ex.result.TablesSeen,
		TablesSkipped: ex.result.TablesSkipped,
		RowsAccepted:  ex.result.RowsAccepted,
		RowsSkipped:   ex.result.RowsSkipped,
		Batch:         ex.batch,
	})
	if err != nil {
		h.fail(w, r, "Failed to store run", err)
		return
	}

	writeJSON(w, http.StatusCreated, toRunDTO(run))
}

// ListRuns returns stored runs, newest first.
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	var dep directory.Department
	if s := r.URL.Query().Get("department"); s != "" {
		d, err := directory.ParseDepartment(s)
		if err != nil {
			h.fail(w, r, "Invalid department", err)
			return
		}
		dep = d
	}

	limit := defaultRunLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			h.fail(w, r, "Invalid limit", fmt.Errorf("%w: limit %q", errBadRequest, s))
			return
		}
		limit = min(n, maxRunLimit)
	}

	runs, err := h.Store.ListRuns(r.Context(), dep, limit)
	if err != nil {
		h.fail(w, r, "Failed to list runs", err)
		return
	}

	dtos := make([]RunDTO, len(runs))
	for i, run := range runs {
		dtos[i] = toRunDTO(run)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetRun returns a run with its record table.
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.Store.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "Run not found", err)
		return
	}
	writeJSON(w, http.StatusOK, RunDetailResponse{RunDTO: toRunDTO(*run), Table: run.Batch.Table()})
}

// DeleteRun removes a run.
func (h *Handler) DeleteRun(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteRun(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, "Failed to delete run", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RunAnalysis runs the attendance analysis over a stored batch.
// ?month= overrides the stored month; ?enrich=true joins the directory.
func (h *Handler) RunAnalysis(w http.ResponseWriter, r *http.Request) {
	resp, _, err := h.runAnalysis(r)
	if err != nil {
		h.fail(w, r, "Failed to analyze run", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) runAnalysis(r *http.Request) (AnalysisResponse, *sqlite.Run, error) {
	run, err := h.Store.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return AnalysisResponse{}, nil, err
	}
	p, err := h.profile(r.Context(), run.ProfileID)
	if err != nil {
		return AnalysisResponse{}, nil, err
	}
	month := run.Month
	if m := r.URL.Query().Get("month"); m != "" {
		month = m
	}
	enrich, _ := strconv.ParseBool(r.URL.Query().Get("enrich"))

	resp, err := h.analysis(r.Context(), p, run.Batch, month, enrich)
	if err != nil {
		return AnalysisResponse{}, nil, err
	}
	return resp, run, nil
}

// RunRosterReport runs the roster report over a stored batch.
func (h *Handler) RunRosterReport(w http.ResponseWriter, r *http.Request) {
	run, err := h.Store.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "Run not found", err)
		return
	}
	p, err := h.profile(r.Context(), run.ProfileID)
	if err != nil {
		h.fail(w, r, "Failed to load profile", err)
		return
	}
	writeJSON(w, http.StatusOK, rosterReport(p, run.Batch))
}

// CompareRuns summarizes several stored runs side by side. A run without a
// month is labelled by its ID.
func (h *Handler) CompareRuns(w http.ResponseWriter, r *http.Request) {
	var req CompareRunsRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, "Invalid request body", err)
		return
	}

	months := make([]attendance.MonthBatch, 0, len(req.RunIDs))
	for _, id := range req.RunIDs {
		run, err := h.Store.GetRun(r.Context(), id)
		if err != nil {
			h.fail(w, r, "Run not found", fmt.Errorf("run %q: %w", id, err))
			return
		}
		label := run.Month
		if label == "" {
			label = run.ID
		}
		months = append(months, attendance.MonthBatch{Month: label, Batch: run.Batch})
	}

	summaries := attendance.CompareMonths(months)
	writeJSON(w, http.StatusOK, CompareRunsResponse{
		Summaries: summaries,
		Table:     attendance.SummaryTable(summaries...),
	})
}

// =============================================================================
// EXPORT HANDLERS
// =============================================================================

// ExportXLSX writes a run as a workbook. The record table always comes
// first; ?report=analysis (default) or roster appends the report sheets.
func (h *Handler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	report := r.URL.Query().Get("report")
	if report == "" {
		report = "analysis"
	}

	var (
		run    *sqlite.Run
		sheets []grid.Sheet
		err    error
	)
	switch report {
	case "analysis":
		var resp AnalysisResponse
		resp, run, err = h.runAnalysis(r)
		if err == nil {
			sheets = resp.Sheets
		}
	case "roster", "records":
		run, err = h.Store.GetRun(r.Context(), chi.URLParam(r, "id"))
		if err == nil && report == "roster" {
			var resp RosterReportResponse
			if resp, err = h.runRoster(r, run); err == nil {
				sheets = resp.Sheets
			}
		}
	default:
		err = fmt.Errorf("%w: report must be one of analysis, roster, records", errBadRequest)
	}
	if err != nil {
		h.fail(w, r, "Failed to export run", err)
		return
	}

	sheets = append([]grid.Sheet{{Name: recordsSheet(run.Batch.Layout), Table: run.Batch.Table()}}, sheets...)
	buf, err := export.Workbook(sheets)
	if err != nil {
		h.fail(w, r, "Failed to write workbook", err)
		return
	}
	writeFile(w, contentTypeXLSX, fmt.Sprintf("run-%s-%s.xlsx", run.ID, report), buf)
}

func (h *Handler) runRoster(r *http.Request, run *sqlite.Run) (RosterReportResponse, error) {
	p, err := h.profile(r.Context(), run.ProfileID)
	if err != nil {
		return RosterReportResponse{}, err
	}
	return rosterReport(p, run.Batch), nil
}

// ExportCSV writes one table of a run as CSV, ?table=records (default),
// stats, daily or summary.
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	table := r.URL.Query().Get("table")
	if table == "" {
		table = "records"
	}

	var buf bytes.Buffer
	var run *sqlite.Run
	var err error

	switch table {
	case "records":
		run, err = h.Store.GetRun(r.Context(), chi.URLParam(r, "id"))
		if err == nil {
			err = export.WriteTableCSV(&buf, run.Batch.Table())
		}
	case "stats", "daily", "summary":
		var resp AnalysisResponse
		resp, run, err = h.runAnalysis(r)
		if err != nil {
			break
		}
		switch table {
		case "stats":
			err = export.WriteStatsCSV(&buf, resp.Report.Stats)
		case "daily":
			err = export.WriteDailyCSV(&buf, resp.Report.Daily)
		default:
			err = export.WriteSummaryCSV(&buf, resp.Report.Summary)
		}
	default:
		err = fmt.Errorf("%w: table must be one of records, stats, daily, summary", errBadRequest)
	}
	if err != nil {
		h.fail(w, r, "Failed to export run", err)
		return
	}

	writeFile(w, contentTypeCSV, fmt.Sprintf("run-%s-%s.csv", run.ID, table), &buf)
}

func writeFile(w http.ResponseWriter, contentType, filename string, buf *bytes.Buffer) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}
