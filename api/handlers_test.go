/*
handlers_test.go - HTTP tests for the API handlers

Tests for:
- Stateless extraction, analysis and roster report
- Run storage, analysis and exports
- Profiles, directories and consolidation
- Error mapping (400, 404, 413)
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/attendance-engine/config"
	"github.com/warp/attendance-engine/consolidate"
	"github.com/warp/attendance-engine/directory"
	"github.com/warp/attendance-engine/export"
	"github.com/warp/attendance-engine/grid"
	"github.com/warp/attendance-engine/store/sqlite"
	"go.uber.org/zap"
)

// =============================================================================
// FIXTURES
// =============================================================================

type testServer struct {
	t      *testing.T
	router http.Handler
	store  *sqlite.Store
}

func newTestServer(t *testing.T) *testServer {
	return newTestServerWith(t, config.Default().Server)
}

func newTestServerWith(t *testing.T, cfg config.ServerConfig) *testServer {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	h := NewHandler(store, zap.NewNop(), NewMetrics(), Options{TopN: 5})
	require.NoError(t, h.SeedProfiles(context.Background()))

	return &testServer{t: t, router: NewRouter(h, cfg), store: store}
}

func (s *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(s.t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// rosterTables is one page: a weekday row, a date row and two employees.
func rosterTables() []grid.RawTable {
	return []grid.RawTable{{
		grid.TextRow("Employee", "P.No", "Row", "Mon", "Tue", "Wed", "Thu"),
		grid.TextRow("", "", "", "1", "2", "3", "4"),
		grid.TextRow("ASHA VERMA", "1001", "R1", "M-NASH", "E-NASH", "WO", "CL"),
		grid.TextRow("RAVI KUMAR", "1002", "R2", "N", "AB", "M", "WO"),
	}}
}

type sheetBody struct {
	Name  string `json:"name"`
	Table struct {
		Columns []string         `json:"columns"`
		Records []map[string]any `json:"records"`
	} `json:"table"`
}

type analysisBody struct {
	Profile string `json:"profile"`
	Report  struct {
		Month string `json:"month"`
		Stats []struct {
			Employee    string `json:"employee"`
			PresentDays int    `json:"present_days"`
			AbsentDays  int    `json:"absent_days"`
			LeaveDays   int    `json:"leave_days"`
		} `json:"stats"`
	} `json:"report"`
	Sheets []sheetBody `json:"sheets"`
}

func sheetNamed(t *testing.T, sheets []sheetBody, name string) sheetBody {
	t.Helper()
	for _, s := range sheets {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("sheet %q not found", name)
	return sheetBody{}
}

// =============================================================================
// EXTRACTION
// =============================================================================

func TestExtract_SimpleTables(t *testing.T) {
	// GIVEN: the default (stations) profile
	s := newTestServer(t)

	// WHEN: extracting one page
	rec := s.do(http.MethodPost, "/api/extract", TablesRequest{Tables: rosterTables()})

	// THEN: both employees land in a day-indexed table
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeJSON[struct {
		Profile   string        `json:"profile"`
		Employees int           `json:"employees"`
		MaxDays   int           `json:"max_days"`
		DayLabels []string      `json:"day_labels"`
		Parse     ParseStatsDTO `json:"parse"`
		Table     struct {
			Columns []string `json:"columns"`
		} `json:"table"`
	}](t, rec)

	assert.Equal(t, "stations", body.Profile)
	assert.Equal(t, 2, body.Employees)
	assert.Equal(t, 4, body.MaxDays)
	assert.Equal(t, []string{"Mon-1", "Tue-2", "Wed-3", "Thu-4"}, body.DayLabels)
	assert.Equal(t, ParseStatsDTO{TablesSeen: 1, RowsAccepted: 2}, body.Parse)
	assert.Equal(t, []string{"Employee", "Personnel_Number", "Scheduling_Row", "Day_1", "Day_2", "Day_3", "Day_4"}, body.Table.Columns)
}

func TestAnalyze_ComputesStatsAndSheets(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/analyze", TablesRequest{Month: "January 2025", Tables: rosterTables()})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeJSON[analysisBody](t, rec)

	assert.Equal(t, "January 2025", body.Report.Month)
	require.Len(t, body.Report.Stats, 2)
	assert.Equal(t, "ASHA VERMA", body.Report.Stats[0].Employee)
	assert.Equal(t, 2, body.Report.Stats[0].PresentDays)
	assert.Equal(t, 1, body.Report.Stats[0].LeaveDays)
	assert.Equal(t, 2, body.Report.Stats[1].PresentDays)
	assert.Equal(t, 1, body.Report.Stats[1].AbsentDays)

	require.NotEmpty(t, body.Sheets)
	assert.Equal(t, "Summary", body.Sheets[0].Name)
	stats := sheetNamed(t, body.Sheets, "Employee Stats")
	assert.NotContains(t, stats.Table.Columns, "Designation")
}

func TestAnalyze_EnrichesFromStoredDirectory(t *testing.T) {
	// GIVEN: a stations directory keyed with a fractional suffix
	s := newTestServer(t)
	rec := s.do(http.MethodPut, "/api/directory/stations", PutDirectoryRequest{
		Entries: map[string]directory.Details{
			"1001.0": {Designation: "SC", Location: "NASH", Manager: "AM1"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// WHEN: analyzing with enrichment
	rec = s.do(http.MethodPost, "/api/analyze", TablesRequest{Tables: rosterTables(), Enrich: true})

	// THEN: the stats table carries the directory columns, N/A on a miss
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	stats := sheetNamed(t, decodeJSON[analysisBody](t, rec).Sheets, "Employee Stats")
	assert.Contains(t, stats.Table.Columns, "Designation")
	require.Len(t, stats.Table.Records, 2)
	assert.Equal(t, "SC", stats.Table.Records[0]["Designation"])
	assert.Equal(t, "NASH", stats.Table.Records[0]["Station"])
	assert.Equal(t, "N/A", stats.Table.Records[1]["Designation"])
}

func TestRosterReport_UsesRosterProfile(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/roster-report", TablesRequest{
		Profile: "train-ops-roster",
		Tables:  rosterTables(),
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeJSON[struct {
		Profile string `json:"profile"`
		Summary struct {
			TotalEmployees int `json:"total_employees"`
			TotalRecords   int `json:"total_records"`
		} `json:"summary"`
		Daily  []json.RawMessage `json:"daily"`
		Sheets []sheetBody       `json:"sheets"`
	}](t, rec)

	assert.Equal(t, "train-ops-roster", body.Profile)
	assert.Equal(t, 2, body.Summary.TotalEmployees)
	assert.Equal(t, 8, body.Summary.TotalRecords)
	assert.Len(t, body.Daily, 4)

	names := make([]string, len(body.Sheets))
	for i, sh := range body.Sheets {
		names[i] = sh.Name
	}
	assert.Equal(t, []string{"Summary", "Daily Trends", "Shift Analysis", "Leave Analysis", "Employee Details"}, names)
}

// =============================================================================
// RUNS
// =============================================================================

func createRun(t *testing.T, s *testServer) RunDTO {
	t.Helper()
	rec := s.do(http.MethodPost, "/api/runs", CreateRunRequest{
		TablesRequest: TablesRequest{Month: "Jan 2025", Tables: rosterTables()},
		Source:        "stations-jan.pdf",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeJSON[RunDTO](t, rec)
}

func TestRuns_CreateListGet(t *testing.T) {
	s := newTestServer(t)

	run := createRun(t, s)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, "stations", run.ProfileID)
	assert.Equal(t, 2, run.Employees)
	assert.Equal(t, 4, run.MaxDays)
	assert.Equal(t, "stations-jan.pdf", run.Source)

	rec := s.do(http.MethodGet, "/api/runs?department=Stations", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeJSON[[]RunDTO](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, run.ID, list[0].ID)

	rec = s.do(http.MethodGet, "/api/runs?department=occ", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeJSON[[]RunDTO](t, rec))

	rec = s.do(http.MethodGet, "/api/runs/"+run.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decodeJSON[struct {
		ID    string `json:"id"`
		Table struct {
			Records []map[string]any `json:"records"`
		} `json:"table"`
	}](t, rec)
	require.Len(t, detail.Table.Records, 2)
	assert.Equal(t, "M-NASH", detail.Table.Records[0]["Day_1"])
}

func TestRuns_AnalysisUsesStoredMonth(t *testing.T) {
	s := newTestServer(t)
	run := createRun(t, s)

	rec := s.do(http.MethodGet, "/api/runs/"+run.ID+"/analysis", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Jan 2025", decodeJSON[analysisBody](t, rec).Report.Month)

	rec = s.do(http.MethodGet, "/api/runs/"+run.ID+"/analysis?month=Feb", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Feb", decodeJSON[analysisBody](t, rec).Report.Month)
}

func TestRuns_ExportXLSX(t *testing.T) {
	s := newTestServer(t)
	run := createRun(t, s)

	rec := s.do(http.MethodGet, "/api/runs/"+run.ID+"/export.xlsx?report=records", nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, contentTypeXLSX, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "records.xlsx")

	sheets, err := export.ReadWorkbook(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	require.Len(t, sheets, 1)
	assert.Equal(t, RecordsSheet, sheets[0].Name)
	assert.Equal(t, 2, sheets[0].Table.Len())
}

func TestRuns_ExportXLSXNamesTripChartRecords(t *testing.T) {
	// GIVEN: a run parsed with the trip-chart layout
	s := newTestServer(t)
	rec := s.do(http.MethodPost, "/api/runs", CreateRunRequest{
		TablesRequest: TablesRequest{Layout: "trip_chart", Tables: rosterTables()},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	run := decodeJSON[RunDTO](t, rec)

	// WHEN: its records are exported
	rec = s.do(http.MethodGet, "/api/runs/"+run.ID+"/export.xlsx?report=records", nil)

	// THEN: the record sheet carries the trip-chart name
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	sheets, err := export.ReadWorkbook(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	require.Len(t, sheets, 1)
	assert.Equal(t, TripChartRecordsSheet, sheets[0].Name)
}

func TestRuns_ExportXLSXWithAnalysis(t *testing.T) {
	s := newTestServer(t)
	run := createRun(t, s)

	rec := s.do(http.MethodGet, "/api/runs/"+run.ID+"/export.xlsx", nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	sheets, err := export.ReadWorkbook(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	require.Greater(t, len(sheets), 1)
	assert.Equal(t, RecordsSheet, sheets[0].Name)
	assert.Equal(t, "Summary", sheets[1].Name)
}

func TestRuns_ExportCSV(t *testing.T) {
	s := newTestServer(t)
	run := createRun(t, s)

	rec := s.do(http.MethodGet, "/api/runs/"+run.ID+"/export.csv?table=stats", nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, contentTypeCSV, rec.Header().Get("Content-Type"))
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "Employee,Personnel_Number,Total_Days"))
	assert.True(t, strings.HasPrefix(lines[1], "ASHA VERMA,1001,4,2"))

	rec = s.do(http.MethodGet, "/api/runs/"+run.ID+"/export.csv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "Employee,Personnel_Number,Scheduling_Row,Day_1"))

	rec = s.do(http.MethodGet, "/api/runs/"+run.ID+"/export.csv?table=pivot", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRuns_Compare(t *testing.T) {
	s := newTestServer(t)
	jan := createRun(t, s)
	rec := s.do(http.MethodPost, "/api/runs", CreateRunRequest{
		TablesRequest: TablesRequest{Tables: rosterTables()},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	unlabelled := decodeJSON[RunDTO](t, rec)

	rec = s.do(http.MethodPost, "/api/runs/compare", CompareRunsRequest{RunIDs: []string{jan.ID, unlabelled.ID}})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeJSON[struct {
		Summaries []struct {
			Month          string `json:"month"`
			TotalEmployees int    `json:"total_employees"`
		} `json:"summaries"`
	}](t, rec)
	require.Len(t, body.Summaries, 2)
	assert.Equal(t, "Jan 2025", body.Summaries[0].Month)
	assert.Equal(t, unlabelled.ID, body.Summaries[1].Month)
	assert.Equal(t, 2, body.Summaries[1].TotalEmployees)

	rec = s.do(http.MethodPost, "/api/runs/compare", `{"run_ids": ["not-a-uuid"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRuns_Delete(t *testing.T) {
	s := newTestServer(t)
	run := createRun(t, s)

	rec := s.do(http.MethodDelete, "/api/runs/"+run.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodGet, "/api/runs/"+run.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodDelete, "/api/runs/"+run.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// PROFILES AND DIRECTORY
// =============================================================================

func TestProfiles_CreateBumpsVersion(t *testing.T) {
	s := newTestServer(t)
	profile := `{"id": "depot", "name": "Depot", "department": "train_operations", "top_n": 3}`

	rec := s.do(http.MethodPost, "/api/profiles", profile)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, 1, decodeJSON[ProfileDTO](t, rec).Version)

	rec = s.do(http.MethodPost, "/api/profiles", profile)
	require.Equal(t, http.StatusCreated, rec.Code)
	dto := decodeJSON[ProfileDTO](t, rec)
	assert.Equal(t, 2, dto.Version)
	assert.Equal(t, "simple", dto.Config.Layout)
	assert.Equal(t, 3, dto.Config.TopN)

	rec = s.do(http.MethodGet, "/api/profiles", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeJSON[[]ProfileDTO](t, rec), 5)

	rec = s.do(http.MethodGet, "/api/profiles/depot", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Depot", decodeJSON[ProfileDTO](t, rec).Name)
}

func TestProfiles_InvalidListsFields(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/profiles", `{"id": "x"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeJSON[ErrorResponse](t, rec)
	assert.Equal(t, "Invalid profile configuration", body.Error)
	fields := make([]string, len(body.Fields))
	for i, f := range body.Fields {
		fields[i] = f.Field
	}
	assert.Equal(t, []string{"name", "department"}, fields)
}

func TestDirectory_LookupCleansPersonnelNumber(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodPut, "/api/directory/occ", PutDirectoryRequest{
		Entries: map[string]directory.Details{"2001": {Designation: "TC"}},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/directory/occ/2001.0", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "TC", decodeJSON[directory.Details](t, rec).Designation)

	rec = s.do(http.MethodGet, "/api/directory/occ/9999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodGet, "/api/directory/depot", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDirectory_RequiresEntriesOrWorkbook(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPut, "/api/directory/stations", `{}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// CONSOLIDATION
// =============================================================================

func TestConsolidate_JSON(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/consolidate?format=json", map[string]any{
		"sources": []map[string]any{
			{"year": 2024, "month": 2, "tables": rosterTables()},
			{"year": 2024, "month": 1, "tables": rosterTables()},
		},
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeJSON[struct {
		Years []struct {
			Year    int      `json:"year"`
			Months  []string `json:"months"`
			Records int      `json:"records"`
		} `json:"years"`
	}](t, rec)
	require.Len(t, body.Years, 1)
	assert.Equal(t, 2024, body.Years[0].Year)
	assert.Equal(t, []string{"Jan", "Feb"}, body.Years[0].Months)
	assert.Equal(t, 4, body.Years[0].Records)
}

func TestConsolidate_KeepsOtherYearsOfBaseWorkbook(t *testing.T) {
	// GIVEN: an earlier workbook holding 2023
	s := newTestServer(t)
	base := grid.NewTable("Year", "Month")
	base.Append(grid.NewRecord().Set("Year", 2023).Set("Month", "Dec"))
	buf, err := export.Workbook([]grid.Sheet{{Name: "2023", Table: base}})
	require.NoError(t, err)

	// WHEN: consolidating 2024 on top of it
	rec := s.do(http.MethodPost, "/api/consolidate", ConsolidateRequest{
		Sources:      []consolidate.Source{{Year: 2024, Month: 3, Tables: rosterTables()}},
		BaseWorkbook: buf.Bytes(),
	})

	// THEN: both years are in the returned workbook
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	sheets, err := export.ReadWorkbook(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	require.Len(t, sheets, 2)
	assert.Equal(t, "2023", sheets[0].Name)
	assert.Equal(t, "2024", sheets[1].Name)
	assert.Equal(t, 2, sheets[1].Table.Len())
}

func TestConsolidate_InvalidPeriod(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/consolidate", ConsolidateRequest{
		Sources: []consolidate.Source{{Year: 2024, Month: 13, Tables: rosterTables()}},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// ERRORS AND OPERATIONS
// =============================================================================

func TestErrors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"malformed JSON", http.MethodPost, "/api/extract", `{"tables": [`, http.StatusBadRequest},
		{"missing tables", http.MethodPost, "/api/extract", `{}`, http.StatusBadRequest},
		{"unknown layout", http.MethodPost, "/api/extract", TablesRequest{Layout: "grid", Tables: rosterTables()}, http.StatusBadRequest},
		{"layout alias", http.MethodPost, "/api/extract", TablesRequest{Layout: "trip-chart", Tables: rosterTables()}, http.StatusBadRequest},
		{"unknown profile", http.MethodPost, "/api/analyze", TablesRequest{Profile: "nope", Tables: rosterTables()}, http.StatusNotFound},
		{"unknown run", http.MethodGet, "/api/runs/missing/analysis", nil, http.StatusNotFound},
		{"bad limit", http.MethodGet, "/api/runs?limit=zero", nil, http.StatusBadRequest},
		{"no sources", http.MethodPost, "/api/consolidate", `{"sources": []}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			assert.NotEmpty(t, decodeJSON[ErrorResponse](t, rec).Error)
		})
	}
}

func TestErrors_MissingTablesNamesField(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/extract", `{}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeJSON[ErrorResponse](t, rec)
	require.Len(t, body.Fields, 1)
	assert.Equal(t, "tables", body.Fields[0].Field)
	assert.Equal(t, "tables is required", body.Fields[0].Message)
}

func TestBodyLimit(t *testing.T) {
	cfg := config.Default().Server
	cfg.MaxBodyBytes = 64
	s := newTestServerWith(t, cfg)

	rec := s.do(http.MethodPost, "/api/extract", TablesRequest{Tables: rosterTables()})

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestHealthzAndMetrics(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	s.do(http.MethodPost, "/api/extract", TablesRequest{Tables: rosterTables()})
	rec = s.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `attendance_rows_total{outcome="accepted",profile="stations"} 2`)
	assert.Contains(t, rec.Body.String(), "attendance_http_requests_total")
}
