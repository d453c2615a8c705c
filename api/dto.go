/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Request types carry
  validator/v10 tags and are checked by decode() before a handler sees
  them; response types wrap engine results without exposing store rows.

NAMING CONVENTION:
  - *Request:  Request body types from clients
  - *Response: Response wrappers
  - *DTO:      Single resources returned to clients

TABLES:
  Results with batch-dependent columns (record table, stats table, roster
  tables) travel as grid.Sheet: {"name", "table": {"columns", "records"}},
  with record keys in column order.

SEE ALSO:
  - handlers.go: Uses these types
  - validation/: error messages for failed tags
*/
package api

import (
	"time"

	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/consolidate"
	"github.com/warp/attendance-engine/directory"
	"github.com/warp/attendance-engine/extract"
	"github.com/warp/attendance-engine/factory"
	"github.com/warp/attendance-engine/grid"
	"github.com/warp/attendance-engine/rosterreport"
	"github.com/warp/attendance-engine/store/sqlite"
	"github.com/warp/attendance-engine/validation"
)

// =============================================================================
// EXTRACTION
// =============================================================================

// TablesRequest is the body of every endpoint that parses raw tables.
type TablesRequest struct {
	// Profile selects the department profile; blank uses the server default.
	Profile string `json:"profile,omitempty" validate:"omitempty,max=64"`
	// Layout overrides the profile's layout.
	Layout string          `json:"layout,omitempty" validate:"omitempty,oneof=simple trip_chart"`
	Month  string          `json:"month,omitempty" validate:"omitempty,max=64"`
	Tables []grid.RawTable `json:"tables" validate:"required"`
	// Enrich joins the department directory into the employee stats.
	Enrich bool `json:"enrich,omitempty"`
}

// CreateRunRequest stores an extraction.
type CreateRunRequest struct {
	TablesRequest
	Source string `json:"source,omitempty" validate:"omitempty,max=255"`
}

// ParseStatsDTO reports structural skips of one parse.
type ParseStatsDTO struct {
	TablesSeen    int `json:"tables_seen"`
	TablesSkipped int `json:"tables_skipped"`
	RowsAccepted  int `json:"rows_accepted"`
	RowsSkipped   int `json:"rows_skipped"`
}

// ExtractResponse is the day-indexed record table of one parse.
type ExtractResponse struct {
	Profile          string         `json:"profile"`
	Layout           extract.Layout `json:"layout"`
	Employees        int            `json:"employees"`
	MaxDays          int            `json:"max_days"`
	PaidTimeDetected bool           `json:"paid_time_detected"`
	DayLabels        []string       `json:"day_labels,omitempty"`
	Parse            ParseStatsDTO  `json:"parse"`
	Table            *grid.Table    `json:"table"`
}

// AnalysisResponse is the attendance analysis of one batch.
type AnalysisResponse struct {
	Profile string            `json:"profile"`
	Report  attendance.Report `json:"report"`
	Sheets  []grid.Sheet      `json:"sheets"`
}

// RosterReportResponse is the roster report of one batch.
type RosterReportResponse struct {
	Profile      string                    `json:"profile"`
	Summary      rosterreport.Summary      `json:"summary"`
	Daily        []rosterreport.DayTally   `json:"daily"`
	Distribution rosterreport.Distribution `json:"distribution"`
	Sheets       []grid.Sheet              `json:"sheets"`
}

// =============================================================================
// RUNS
// =============================================================================

// RunDTO is a stored run without its batch.
type RunDTO struct {
	ID         string               `json:"id"`
	ProfileID  string               `json:"profile_id"`
	Department directory.Department `json:"department"`
	Month      string               `json:"month,omitempty"`
	Source     string               `json:"source,omitempty"`
	Employees  int                  `json:"employees"`
	MaxDays    int                  `json:"max_days"`
	Parse      ParseStatsDTO        `json:"parse"`
	CreatedAt  string               `json:"created_at"`
}

// RunDetailResponse is a run with its record table.
type RunDetailResponse struct {
	RunDTO
	Table *grid.Table `json:"table"`
}

func toRunDTO(run sqlite.Run) RunDTO {
	return RunDTO{
		ID:         run.ID,
		ProfileID:  run.ProfileID,
		Department: run.Department,
		Month:      run.Month,
		Source:     run.Source,
		Employees:  run.Employees,
		MaxDays:    run.MaxDays,
		Parse: ParseStatsDTO{
			TablesSeen:    run.TablesSeen,
			TablesSkipped: run.TablesSkipped,
			RowsAccepted:  run.RowsAccepted,
			RowsSkipped:   run.RowsSkipped,
		},
		CreatedAt: run.CreatedAt.Format(time.RFC3339),
	}
}

// CompareRunsRequest lists the runs to compare, in report order.
type CompareRunsRequest struct {
	RunIDs []string `json:"run_ids" validate:"required,min=1,max=24,dive,uuid"`
}

// CompareRunsResponse holds one month summary per run.
type CompareRunsResponse struct {
	Summaries []attendance.MonthSummary `json:"summaries"`
	Table     *grid.Table               `json:"table"`
}

// =============================================================================
// DIRECTORY
// =============================================================================

// PutDirectoryRequest replaces a department directory, either from explicit
// entries or from a roster workbook (base64 xlsx in JSON).
type PutDirectoryRequest struct {
	Entries  map[string]directory.Details `json:"entries,omitempty" validate:"required_without=Workbook"`
	Workbook []byte                       `json:"workbook,omitempty"`
}

// DirectoryResponse lists a department directory.
type DirectoryResponse struct {
	Department directory.Department         `json:"department"`
	Count      int                          `json:"count"`
	Entries    map[string]directory.Details `json:"entries"`
}

// =============================================================================
// PROFILES
// =============================================================================

// ProfileDTO is a stored profile.
type ProfileDTO struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Department string              `json:"department"`
	Config     factory.ProfileJSON `json:"config"`
	Version    int                 `json:"version"`
	CreatedAt  string              `json:"created_at"`
	UpdatedAt  string              `json:"updated_at"`
}

// =============================================================================
// CONSOLIDATION
// =============================================================================

// ConsolidateRequest merges monthly tables into year sheets.
type ConsolidateRequest struct {
	Profile string               `json:"profile,omitempty" validate:"omitempty,max=64"`
	Sources []consolidate.Source `json:"sources" validate:"required,min=1"`
	// BaseWorkbook is an earlier consolidated workbook (base64 xlsx) whose
	// other years are kept.
	BaseWorkbook []byte `json:"base_workbook,omitempty"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error   string                  `json:"error"`
	Details string                  `json:"details,omitempty"`
	Fields  []validation.FieldError `json:"fields,omitempty"`
}
