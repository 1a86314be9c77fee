package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/bunrui/internal/models"
	"github.com/hyperjump/bunrui/internal/storage"
)

const (
	indexMessage      = `bunrui API is running! Use POST /predict with JSON {"text": "..."}.`
	maxRequestBytes   = 1 << 20
	msgNotJSON        = "Request must be JSON."
	msgTooLarge       = "Request too large."
	msgInvalidText    = "Empty or invalid 'text' field."
	msgPredictFailure = "Prediction failed."
)

var (
	errRequestNotJSON  = errors.New(msgNotJSON)
	errRequestTooLarge = errors.New(msgTooLarge)
	errInvalidText     = errors.New(msgInvalidText)
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, indexMessage)
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	text, err := decodePredictRequest(w, r)
	if err != nil {
		s.logger.Debug("rejected predict request", zap.Error(err))
		status := http.StatusBadRequest
		if errors.Is(err, errRequestTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		s.respondError(w, status, err.Error())
		return
	}

	pred, err := s.predict(text)
	if err != nil {
		s.logger.Error("prediction failed", zap.Error(err), zap.Int("text_length", len(text)))
		s.respondJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   msgPredictFailure,
			"details": err.Error(),
		})
		return
	}
	s.logger.Debug("prediction",
		zap.String("label", string(pred.Label)),
		zap.String("category", pred.Category),
	)
	s.respondJSON(w, http.StatusOK, pred.Response())
}

// predict turns a panic inside the model into an error so the caller still gets a JSON 500.
func (s *Server) predict(text string) (pred *models.Prediction, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return s.classifier.Predict(text)
}

// decodePredictRequest returns the text of a predict request. The body must be
// JSON sent with a JSON content type and at most maxRequestBytes long; the text
// field must be a non-blank string.
func decodePredictRequest(w http.ResponseWriter, r *http.Request) (string, error) {
	if !isJSONContentType(r.Header.Get("Content-Type")) {
		return "", errRequestNotJSON
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", errRequestTooLarge
		}
		return "", errRequestNotJSON
	}
	if !json.Valid(body) {
		return "", errRequestNotJSON
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return "", errInvalidText
	}
	raw, ok := fields["text"]
	if !ok {
		return "", errInvalidText
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil || strings.TrimSpace(text) == "" {
		return "", errInvalidText
	}
	return text, nil
}

func isJSONContentType(header string) bool {
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	info := s.classifier.Info()
	resp := map[string]interface{}{
		"classes":    info.Classes,
		"vocabulary": info.Vocabulary,
		"categories": info.Categories,
	}
	artifacts := map[string]interface{}{
		"classifier_path": info.ClassifierPath,
		"vectorizer_path": info.VectorizerPath,
	}
	if info.ClassifierPath != "" {
		files, diskBytes, err := storage.StatPaths(info.ClassifierPath, info.VectorizerPath)
		if err == nil {
			artifacts["files"] = files
			artifacts["disk_usage_bytes"] = diskBytes
		}
	}
	resp["artifacts"] = artifacts

	if s.runs != nil {
		ctx := r.Context()
		count, err := s.runs.CountRuns(ctx)
		if err != nil {
			s.logger.Error("status: count runs failed", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		resp["training_runs"] = count
		latest, err := s.runs.ListRuns(ctx, 1)
		if err == nil && len(latest) > 0 {
			resp["latest_run"] = latest[0]
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
