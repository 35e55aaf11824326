package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	chi "github.com/go-chi/chi/v5"

	"github.com/lexdraft/lexdraft/internal/common"
	"github.com/lexdraft/lexdraft/internal/docio"
	"github.com/lexdraft/lexdraft/internal/template"
)

func (s *Server) handleTemplateUpload(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	if err := r.ParseMultipartForm(s.cfg.MaxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("parse upload: %w", err))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("missing file field"))
		return
	}
	defer file.Close()

	if err := os.MkdirAll(s.cfg.UploadRoot, 0o755); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("prepare upload dir: %w", err))
		return
	}
	uploadPath := filepath.Join(s.cfg.UploadRoot, filepath.Base(header.Filename))
	dest, err := os.Create(uploadPath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("store upload: %w", err))
		return
	}
	if _, err := io.Copy(dest, file); err != nil {
		dest.Close()
		writeError(w, http.StatusInternalServerError, fmt.Errorf("store upload: %w", err))
		return
	}
	dest.Close()

	logger.Info("api: template upload received", "filename", header.Filename)
	result, err := s.ingestor.Ingest(r.Context(), uploadPath, header.Filename)
	if err != nil {
		if errors.Is(err, docio.ErrUnsupportedFormat) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		logger.Error("api: ingestion failed", "filename", header.Filename, "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleTemplateList(w http.ResponseWriter, r *http.Request) {
	templates, err := s.templates.ListTemplates(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"templates": templates, "count": len(templates)})
}

func (s *Server) handleTemplateGet(w http.ResponseWriter, r *http.Request) {
	tpl, ok := s.lookupTemplate(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

func (s *Server) handleTemplateVariablesCSV(w http.ResponseWriter, r *http.Request) {
	tpl, ok := s.lookupTemplate(w, r)
	if !ok {
		return
	}
	csv, err := template.VariablesCSV(tpl.Variables)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s_variables.csv", tpl.ID))
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, csv)
}

func (s *Server) handleTemplateExport(w http.ResponseWriter, r *http.Request) {
	tpl, ok := s.lookupTemplate(w, r)
	if !ok {
		return
	}
	markdown, err := template.RenderMarkdown(tpl)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/markdown")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.md", tpl.ID))
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, markdown)
}

func (s *Server) lookupTemplate(w http.ResponseWriter, r *http.Request) (template.Template, bool) {
	templateID := chi.URLParam(r, "templateID")
	tpl, err := s.templates.TemplateByID(r.Context(), templateID)
	if err != nil {
		if errors.Is(err, template.ErrNotFound) {
			writeError(w, http.StatusNotFound, err)
		} else {
			writeError(w, http.StatusInternalServerError, err)
		}
		return template.Template{}, false
	}
	return tpl, true
}
