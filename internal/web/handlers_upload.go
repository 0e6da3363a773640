package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/JonMunkholm/estateadmin/internal/core"
	"github.com/JonMunkholm/estateadmin/internal/logging"
	"github.com/JonMunkholm/estateadmin/internal/views"
)

const (
	// multipartOverhead is allowed on top of the file size for the other
	// form fields and part headers.
	multipartOverhead = 1 << 20
	multipartMemory   = 8 << 20
)

// handleEntities lists the import targets with their fields.
func (s *Server) handleEntities(w http.ResponseWriter, r *http.Request) {
	defs := s.deps.Imports.Entities()
	out := make([]entityView, len(defs))
	for i, def := range defs {
		out[i] = newEntityView(def)
	}
	writeJSON(w, http.StatusOK, out)
}

// handleProfiles lists the preset CSV dialects.
func (s *Server) handleProfiles(w http.ResponseWriter, r *http.Request) {
	profiles := s.deps.Imports.Profiles()
	out := make([]profileView, len(profiles))
	for i, p := range profiles {
		out[i] = newProfileView(p)
	}
	writeJSON(w, http.StatusOK, out)
}

type mappingRequest struct {
	Headers   []string          `json:"headers"`
	Overrides map[string]string `json:"overrides"`
}

// handleMapping resolves a header row against an entity without importing.
// Missing required columns answer 422 with the field list.
func (s *Server) handleMapping(w http.ResponseWriter, r *http.Request) {
	entity := chi.URLParam(r, "entity")

	var req mappingRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, fmt.Errorf("%w: %v", errInvalidBody, err), http.StatusBadRequest)
		return
	}

	mapping, err := s.deps.Imports.PreviewMapping(entity, req.Headers, req.Overrides)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, mapping)
}

// handleImport runs a multipart CSV upload through the pipeline.
//
// Form fields: file (required), profile, mapping (JSON object of header to
// field), allowDuplicate (bool). A fatal error answers with the user message
// and nothing imported. An import interrupted by its deadline still answers
// with its partial result, under the status of the interruption.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	entity := chi.URLParam(r, "entity")

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Import.MaxFileSize+multipartOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, r, core.ErrFileTooLarge, http.StatusRequestEntityTooLarge)
			return
		}
		s.respondError(w, r, fmt.Errorf("%w: %v", errInvalidForm, err), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, errNoFile, http.StatusBadRequest)
		return
	}
	defer file.Close()

	overrides, err := parseOverrides(r.FormValue("mapping"))
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	allowDuplicate, _ := strconv.ParseBool(r.FormValue("allowDuplicate"))

	res, err := s.deps.Imports.Import(actorContext(r), core.ImportInput{
		Entity:         entity,
		FileName:       header.Filename,
		Reader:         file,
		Profile:        r.FormValue("profile"),
		Overrides:      overrides,
		AllowDuplicate: allowDuplicate,
	})
	if res == nil {
		if err == nil {
			err = errors.New("import returned no result")
		}
		s.respondError(w, r, err, statusFor(err))
		return
	}

	status := http.StatusOK
	if err != nil {
		status = statusFor(err)
		logging.WithFields(r.Context(), "import_id", res.ImportID, "entity", res.Entity).
			Warn("import interrupted", "error", err, "unprocessed", res.Unprocessed)
	}

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		if rerr := views.ImportSummary(res, summaryFailures).Render(r.Context(), w); rerr != nil {
			logging.FromContext(r.Context()).Error("render import summary", "error", rerr)
		}
		return
	}
	writeJSON(w, status, res)
}

func parseOverrides(raw string) (map[string]string, error) {
	if raw == "" {
		return nil, nil
	}
	var m map[string]string
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, fmt.Errorf("%w: %v", errBadMapping, err)
	}
	return m, nil
}

// handleHistory lists the latest runs of an entity, newest first.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	entity := chi.URLParam(r, "entity")
	limit := parseIntParam(r, "limit", defaultHistoryLimit, maxHistoryLimit)

	runs, err := s.deps.Imports.History(r.Context(), entity, limit)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	if runs == nil {
		runs = []core.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

// handleRollback deletes the rows written by one import.
func (s *Server) handleRollback(w http.ResponseWriter, r *http.Request) {
	importID := chi.URLParam(r, "importID")
	if _, err := uuid.Parse(importID); err != nil {
		s.respondError(w, r, fmt.Errorf("%w: %s", core.ErrRunNotFound, importID), http.StatusNotFound)
		return
	}

	res, err := s.deps.Imports.Rollback(actorContext(r), importID)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}
