package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"

	"pdf-analyzer/internal/analyzer"
	"pdf-analyzer/internal/collection"
	"pdf-analyzer/internal/helper"
	"pdf-analyzer/internal/models"
	"pdf-analyzer/internal/report"
)

// AnalysisRequest names a collection by path or by name under the base path.
type AnalysisRequest struct {
	CollectionPath string `json:"collection_path"`
	Collection     string `json:"collection"`
}

// AnalysisResponse is returned by /analyze and by every failing endpoint.
type AnalysisResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	OutputPath string `json:"output_path,omitempty"`
	Error      string `json:"error,omitempty"`
}

type CreateCollectionRequest struct {
	Name         string `json:"name"`
	ChallengeID  string `json:"challenge_id"`
	TestCaseName string `json:"test_case_name"`
	Description  string `json:"description"`
	Persona      string `json:"persona"`
	Task         string `json:"task"`
}

func (s *Server) handleAPIInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "PDF Analysis System API",
		"version": serviceVersion,
		"status":  "running",
		"endpoints": map[string]string{
			"health":          "/health",
			"collections":     "/collections",
			"analyze":         "/analyze",
			"analyze-batch":   "/analyze-batch",
			"results":         "/results/{name}",
			"runs":            "/runs/{name}",
			"sections-search": "/sections/search?q=",
			"keywords":        "/keywords?task=",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": serviceName})
}

func (s *Server) handleListCollections(w http.ResponseWriter, r *http.Request) {
	list, err := s.layout.List(s.basePath)
	if err != nil {
		s.writeError(w, "Failed to list collections", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"collections": list,
		"total":       len(list),
	})
}

func (s *Server) handleCollectionInfo(w http.ResponseWriter, r *http.Request) {
	d, err := s.layout.Info(s.basePath, chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, "Failed to get collection info", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleCreateCollection(w http.ResponseWriter, r *http.Request) {
	var req CreateCollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, "Invalid request body", errors.Join(collection.ErrInvalidInput, err))
		return
	}
	input, err := collection.NewInput(req.Name, models.ChallengeInfo{
		ChallengeID:  req.ChallengeID,
		TestCaseName: req.TestCaseName,
		Description:  req.Description,
	}, req.Persona, req.Task)
	if err != nil {
		s.writeError(w, "Failed to create collection", err)
		return
	}
	path, err := s.layout.Create(s.basePath, req.Name, input)
	if err != nil {
		s.writeError(w, "Failed to create collection", err)
		return
	}
	s.logger.Info().Str("collection", req.Name).Str("path", path).Msg("Collection created")
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Collection created",
		"name":    req.Name,
		"path":    path,
	})
}

func (s *Server) handleUploadPDFs(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	d, err := s.layout.Info(s.basePath, name)
	if err != nil {
		s.writeError(w, "Upload failed", err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		s.writeError(w, "Invalid upload", errors.Join(collection.ErrInvalidInput, err))
		return
	}
	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		s.writeError(w, "Invalid upload", errors.Join(collection.ErrInvalidInput, errors.New("no files in field \"files\"")))
		return
	}

	saved := []string{}
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			s.writeError(w, "Upload failed", err)
			return
		}
		stored, err := s.layout.SavePDF(d.Path, fh.Filename, f)
		f.Close()
		if err != nil {
			s.writeError(w, "Upload failed", err)
			return
		}
		saved = append(saved, stored)
	}
	s.logger.Info().Str("collection", name).Strs("files", saved).Msg("PDFs uploaded")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Files uploaded",
		"files":   saved,
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, "Analysis failed", errors.Join(collection.ErrInvalidInput, err))
		return
	}
	path, err := s.resolveCollection(req)
	if err != nil {
		s.writeError(w, "Analysis failed", err)
		return
	}

	outPath, err := s.analyzer.AnalyzeCollection(r.Context(), path)
	if err != nil {
		s.writeError(w, "Analysis failed", err)
		return
	}
	writeJSON(w, http.StatusOK, AnalysisResponse{
		Success:    true,
		Message:    "Analysis completed successfully",
		OutputPath: outPath,
	})
}

// handleAnalyzeBatch takes a JSON array of collection paths; an empty body
// or array analyses every collection under the base path.
func (s *Server) handleAnalyzeBatch(w http.ResponseWriter, r *http.Request) {
	var paths []string
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&paths); err != nil {
			s.writeError(w, "Batch analysis failed", errors.Join(collection.ErrInvalidInput, err))
			return
		}
	}

	var result *models.BatchResult
	if len(paths) == 0 {
		var err error
		if result, err = s.analyzer.AnalyzeAll(r.Context(), s.basePath); err != nil {
			s.writeError(w, "Batch analysis failed", err)
			return
		}
	} else {
		result = s.analyzer.AnalyzeBatch(r.Context(), paths)
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name != collection.SanitizeFilename(name) {
		s.writeError(w, "Failed to get analysis results", collection.ErrInvalidName)
		return
	}

	var candidates []string
	if s.outputDir != "" {
		candidates = append(candidates, filepath.Join(s.outputDir, name, s.layout.OutputFile))
	}
	candidates = append(candidates, filepath.Join(s.basePath, name, s.layout.OutputFile))

	outFile := ""
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			outFile = candidate
			break
		}
	}
	if outFile == "" {
		s.writeError(w, "Analysis results not found", collection.ErrNotFound)
		return
	}

	data, err := os.ReadFile(outFile)
	if err != nil {
		s.writeError(w, "Failed to get analysis results", err)
		return
	}
	var out models.AnalysisOutput
	if err := json.Unmarshal(data, &out); err != nil {
		s.writeError(w, "Failed to get analysis results", err)
		return
	}

	if r.URL.Query().Get("format") == "html" {
		html, err := report.HTML(name, &out)
		if err != nil {
			s.writeError(w, "Failed to render report", err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(html)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"collection":  name,
		"results":     out,
		"output_file": outFile,
	})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		writeJSON(w, http.StatusServiceUnavailable, AnalysisResponse{Message: "Run history disabled", Error: "no result store configured"})
		return
	}
	name := chi.URLParam(r, "name")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	runs, err := s.runs.ListRuns(r.Context(), name, limit)
	if err != nil {
		s.writeError(w, "Failed to list runs", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"collection": name,
		"runs":       runs,
		"total":      len(runs),
	})
}

func (s *Server) handleSearchSections(w http.ResponseWriter, r *http.Request) {
	if s.sections == nil {
		writeJSON(w, http.StatusServiceUnavailable, AnalysisResponse{Message: "Section search disabled", Error: "no section index configured"})
		return
	}
	q := r.URL.Query().Get("q")
	if q == "" {
		s.writeError(w, "Section search failed", errors.Join(collection.ErrInvalidInput, errors.New("missing query parameter q")))
		return
	}
	n, _ := strconv.Atoi(r.URL.Query().Get("n"))
	if n <= 0 {
		n = 10
	}
	hits, err := s.sections.Search(r.Context(), q, n)
	if err != nil {
		s.writeError(w, "Section search failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"query": q,
		"hits":  hits,
	})
}

// handleKeywords shows which keywords a task expands to before any analysis.
func (s *Server) handleKeywords(w http.ResponseWriter, r *http.Request) {
	task := r.URL.Query().Get("task")
	if task == "" {
		s.writeError(w, "Keyword extraction failed", errors.Join(collection.ErrInvalidInput, errors.New("missing query parameter task")))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"task":     task,
		"keywords": s.analyzer.Keywords(task).Sorted(),
	})
}

func (s *Server) resolveCollection(req AnalysisRequest) (string, error) {
	path := req.CollectionPath
	if path == "" {
		if req.Collection == "" || req.Collection != filepath.Base(req.Collection) {
			return "", errors.Join(collection.ErrInvalidInput, errors.New("collection_path or collection required"))
		}
		path = filepath.Join(s.basePath, req.Collection)
	}
	if info, err := os.Stat(path); err != nil || !info.IsDir() {
		return "", errors.Join(collection.ErrNotFound, errors.New(path))
	}
	if _, err := os.Stat(s.layout.InputPath(path)); err != nil {
		return "", errors.Join(collection.ErrInputNotFound, errors.New(s.layout.InputPath(path)))
	}
	return path, nil
}

func (s *Server) writeError(w http.ResponseWriter, message string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error().Err(err).Msg(message)
	} else {
		s.logger.Warn().Err(err).Msg(message)
	}
	writeJSON(w, status, AnalysisResponse{Success: false, Message: message, Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, collection.ErrNotFound), errors.Is(err, collection.ErrInputNotFound),
		errors.Is(err, analyzer.ErrNoCollections):
		return http.StatusNotFound
	case errors.Is(err, collection.ErrInvalidInput), errors.Is(err, collection.ErrInvalidName):
		return http.StatusBadRequest
	case errors.Is(err, collection.ErrCollectionExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := helper.MarshalJSON(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}
