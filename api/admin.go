package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/warp/attendance-engine/consolidate"
	"github.com/warp/attendance-engine/directory"
	"github.com/warp/attendance-engine/export"
	"github.com/warp/attendance-engine/factory"
	"github.com/warp/attendance-engine/store/sqlite"
	"go.uber.org/zap"
)

// =============================================================================
// PROFILE HANDLERS
// =============================================================================

// ListProfiles returns all stored profiles.
func (h *Handler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.ListProfiles(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to list profiles", err)
		return
	}

	dtos := make([]ProfileDTO, 0, len(records))
	for _, rec := range records {
		dto, err := toProfileDTO(rec)
		if err != nil {
			h.Logger.Warn("skipping unreadable profile", zap.String("profile", rec.ID), zap.Error(err))
			continue
		}
		dtos = append(dtos, dto)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateProfile validates and stores a profile. An existing ID is updated
// and its version bumped.
func (h *Handler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	var pj factory.ProfileJSON
	if err := json.NewDecoder(r.Body).Decode(&pj); err != nil {
		h.fail(w, r, "Invalid request body", decodeError(err))
		return
	}

	// Validate by parsing
	p, err := h.Profiles.FromJSON(pj)
	if err != nil {
		h.fail(w, r, "Invalid profile configuration", err)
		return
	}

	configJSON, _ := json.Marshal(h.Profiles.ToJSON(p))
	record := sqlite.ProfileRecord{
		ID:         p.ID,
		Name:       p.Name,
		Department: string(p.Department),
		ConfigJSON: string(configJSON),
	}
	if err := h.Store.SaveProfile(r.Context(), record); err != nil {
		h.fail(w, r, "Failed to save profile", err)
		return
	}

	stored, err := h.Store.GetProfile(r.Context(), p.ID)
	if err != nil {
		h.fail(w, r, "Failed to load profile", err)
		return
	}
	dto, err := toProfileDTO(*stored)
	if err != nil {
		h.fail(w, r, "Failed to load profile", err)
		return
	}
	writeJSON(w, http.StatusCreated, dto)
}

// GetProfile returns a single profile.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	record, err := h.Store.GetProfile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "Profile not found", err)
		return
	}
	dto, err := toProfileDTO(*record)
	if err != nil {
		h.fail(w, r, "Failed to read profile", err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

func toProfileDTO(rec sqlite.ProfileRecord) (ProfileDTO, error) {
	var config factory.ProfileJSON
	if err := json.Unmarshal([]byte(rec.ConfigJSON), &config); err != nil {
		return ProfileDTO{}, err
	}
	return ProfileDTO{
		ID:         rec.ID,
		Name:       rec.Name,
		Department: rec.Department,
		Config:     config,
		Version:    rec.Version,
		CreatedAt:  rec.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  rec.UpdatedAt.Format(time.RFC3339),
	}, nil
}

// =============================================================================
// DIRECTORY HANDLERS
// =============================================================================

// GetDirectory lists a department directory.
func (h *Handler) GetDirectory(w http.ResponseWriter, r *http.Request) {
	dep, err := directory.ParseDepartment(chi.URLParam(r, "department"))
	if err != nil {
		h.fail(w, r, "Invalid department", err)
		return
	}
	mem, err := h.Store.Directory(r.Context(), dep)
	if err != nil {
		h.fail(w, r, "Failed to load directory", err)
		return
	}
	writeJSON(w, http.StatusOK, DirectoryResponse{Department: dep, Count: len(mem), Entries: mem})
}

// PutDirectory replaces a department directory from entries or from a
// roster workbook read with the department's sheet layout.
func (h *Handler) PutDirectory(w http.ResponseWriter, r *http.Request) {
	dep, err := directory.ParseDepartment(chi.URLParam(r, "department"))
	if err != nil {
		h.fail(w, r, "Invalid department", err)
		return
	}

	var req PutDirectoryRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, "Invalid request body", err)
		return
	}

	entries := req.Entries
	if len(req.Workbook) > 0 {
		mem, err := directory.LoadWorkbook(bytes.NewReader(req.Workbook), directory.DefaultSource(dep))
		if err != nil {
			h.fail(w, r, "Invalid roster workbook", badRequest(err))
			return
		}
		entries = mem
	}

	if err := h.Store.ReplaceDirectory(r.Context(), dep, entries); err != nil {
		h.fail(w, r, "Failed to store directory", err)
		return
	}
	mem, err := h.Store.Directory(r.Context(), dep)
	if err != nil {
		h.fail(w, r, "Failed to load directory", err)
		return
	}
	h.Logger.Info("directory replaced", zap.String("department", string(dep)), zap.Int("entries", len(mem)))
	writeJSON(w, http.StatusOK, DirectoryResponse{Department: dep, Count: len(mem), Entries: mem})
}

// GetDirectoryEntry looks up one employee. Personnel numbers are cleaned,
// so "1234.0" finds "1234".
func (h *Handler) GetDirectoryEntry(w http.ResponseWriter, r *http.Request) {
	dep, err := directory.ParseDepartment(chi.URLParam(r, "department"))
	if err != nil {
		h.fail(w, r, "Invalid department", err)
		return
	}
	details, err := h.Store.LookupEntry(r.Context(), dep, chi.URLParam(r, "pn"))
	if err != nil {
		h.fail(w, r, "Directory entry not found", err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

// =============================================================================
// CONSOLIDATION
// =============================================================================

// Consolidate parses monthly tables into one sheet per year and returns the
// workbook. Years of base_workbook that the request does not touch are kept.
// ?format=json returns the year tables instead.
func (h *Handler) Consolidate(w http.ResponseWriter, r *http.Request) {
	var req ConsolidateRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, "Invalid request body", err)
		return
	}

	p, err := h.profile(r.Context(), req.Profile)
	if err != nil {
		h.fail(w, r, "Failed to load profile", err)
		return
	}

	c := consolidate.New(p.Parser(), h.Options.Workers)
	res, err := c.Consolidate(r.Context(), req.Sources)
	if err != nil {
		h.fail(w, r, "Failed to consolidate", err)
		return
	}

	if r.URL.Query().Get("format") == "json" {
		writeJSON(w, http.StatusOK, res)
		return
	}

	sheets := res.Sheets()
	if len(req.BaseWorkbook) > 0 {
		existing, err := export.ReadWorkbook(bytes.NewReader(req.BaseWorkbook))
		if err != nil {
			h.fail(w, r, "Invalid base workbook", badRequest(err))
			return
		}
		sheets = res.Merge(existing)
	}

	buf, err := export.Workbook(sheets)
	if err != nil {
		h.fail(w, r, "Failed to write workbook", err)
		return
	}
	writeFile(w, contentTypeXLSX, "consolidated.xlsx", buf)
}
