package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	chi "github.com/go-chi/chi/v5"

	"github.com/lexdraft/lexdraft/internal/common"
	"github.com/lexdraft/lexdraft/internal/draft"
	"github.com/lexdraft/lexdraft/internal/template"
)

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req matchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("query required"))
		return
	}
	escalate := true
	if req.IncludeWebSearch != nil {
		escalate = *req.IncludeWebSearch
	}
	common.Logger().Info("api: match request", "query", req.Query, "escalate", escalate)
	result, err := s.matcher.Match(r.Context(), req.Query, escalate)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleInstanceCreate(w http.ResponseWriter, r *http.Request) {
	var req createInstanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	if req.TemplateID == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("template_id required"))
		return
	}
	creation, err := s.drafts.Create(r.Context(), req.TemplateID, req.Query)
	if err != nil {
		if errors.Is(err, template.ErrNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, creation)
}

func (s *Server) handleAnswersUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateAnswersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	if req.InstanceID == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("instance_id required"))
		return
	}
	inst, err := s.drafts.UpdateAnswers(r.Context(), req.InstanceID, req.Answers)
	if err != nil {
		if errors.Is(err, draft.ErrNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, inst)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	if req.InstanceID == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("instance_id required"))
		return
	}
	rendered, err := s.drafts.Generate(r.Context(), req.InstanceID)
	if err != nil {
		if errors.Is(err, draft.ErrNotFound) || errors.Is(err, template.ErrNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		common.Logger().Error("api: draft generation failed", "instance_id", req.InstanceID, "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, rendered)
}

func (s *Server) handleInstanceGet(w http.ResponseWriter, r *http.Request) {
	inst, ok := s.lookupInstance(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, inst)
}

func (s *Server) handleDraftMarkdown(w http.ResponseWriter, r *http.Request) {
	inst, ok := s.lookupInstance(w, r)
	if !ok {
		return
	}
	if inst.DraftMarkdown == "" {
		writeError(w, http.StatusNotFound, fmt.Errorf("draft not yet generated"))
		return
	}
	w.Header().Set("Content-Type", "text/markdown")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.md", inst.ID))
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, inst.DraftMarkdown)
}

func (s *Server) handleDraftArtifact(w http.ResponseWriter, r *http.Request) {
	inst, ok := s.lookupInstance(w, r)
	if !ok {
		return
	}
	if inst.ArtifactPath == "" {
		writeError(w, http.StatusNotFound, fmt.Errorf("artifact not yet rendered"))
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.docx", inst.ID))
	http.ServeFile(w, r, inst.ArtifactPath)
}

func (s *Server) lookupInstance(w http.ResponseWriter, r *http.Request) (draft.Instance, bool) {
	instanceID := chi.URLParam(r, "instanceID")
	inst, err := s.drafts.Get(r.Context(), instanceID)
	if err != nil {
		if errors.Is(err, draft.ErrNotFound) {
			writeError(w, http.StatusNotFound, err)
		} else {
			writeError(w, http.StatusInternalServerError, err)
		}
		return draft.Instance{}, false
	}
	return inst, true
}
