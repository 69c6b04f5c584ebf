package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/freshapply/internal/digest"
	"github.com/jonathan/freshapply/internal/engine"
	"github.com/jonathan/freshapply/internal/scoring"
	"github.com/jonathan/freshapply/internal/store"
)

const (
	// MaxBatchSize bounds POST /evaluate/batch.
	MaxBatchSize = 500
	// DefaultListLimit and MaxListLimit bound GET /postings.
	DefaultListLimit = 50
	MaxListLimit     = 500

	maxRequestBytes = 10 << 20
)

// BatchRequest is the body of POST /evaluate/batch
type BatchRequest struct {
	Postings []engine.Posting `json:"postings" validate:"required,min=1,dive"`
}

// BatchResponse is the response of POST /evaluate/batch
type BatchResponse struct {
	Evaluations []engine.Evaluation `json:"evaluations"`
	Count       int                 `json:"count"`
}

// PostingsResponse is the response of GET /postings
type PostingsResponse struct {
	Postings []engine.Evaluation `json:"postings"`
	Count    int                 `json:"count"`
	Total    int                 `json:"total"`
}

// handleEvaluate scores a single posting
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var p engine.Posting
	if err := s.decode(w, r, &p); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.validate(&p); err != nil {
		s.writeError(w, r, err)
		return
	}

	ev := s.evaluator.Evaluate(p, s.now())
	s.metrics.ObserveEvaluation(string(ev.Tier))
	s.jsonResponse(w, http.StatusOK, ev)
}

// handleEvaluateBatch scores many postings in parallel, preserving order
func (s *Server) handleEvaluateBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(req.Postings) > MaxBatchSize {
		s.writeError(w, r, &ErrBatchTooLarge{Size: len(req.Postings), Max: MaxBatchSize})
		return
	}
	if err := s.validate(&req); err != nil {
		s.writeError(w, r, err)
		return
	}

	evals, err := s.evaluator.EvaluateAll(r.Context(), req.Postings, s.now(), 0)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("failed to evaluate batch: %w", err))
		return
	}
	for _, ev := range evals {
		s.metrics.ObserveEvaluation(string(ev.Tier))
	}
	s.jsonResponse(w, http.StatusOK, BatchResponse{Evaluations: evals, Count: len(evals)})
}

// handleListPostings lists stored postings in digest order
func (s *Server) handleListPostings(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var tier scoring.Tier
	if raw := query.Get("tier"); raw != "" {
		parsed, ok := scoring.ParseTier(raw)
		if !ok {
			s.writeError(w, r, &ErrValidation{Field: "tier", Message: fmt.Sprintf("unknown tier %q", raw)})
			return
		}
		tier = parsed
	}

	limit := DefaultListLimit
	if raw := query.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > MaxListLimit {
			s.writeError(w, r, &ErrValidation{Field: "limit", Message: fmt.Sprintf("must be between 1 and %d", MaxListLimit)})
			return
		}
		limit = n
	}

	d, err := s.storedDigest(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	matched := d.Filter(tier)
	page := make([]engine.Evaluation, 0, min(limit, len(matched)))
	page = append(page, matched[:min(limit, len(matched))]...)
	s.jsonResponse(w, http.StatusOK, PostingsResponse{Postings: page, Count: len(page), Total: len(matched)})
}

// handleGetPosting evaluates one stored posting
func (s *Server) handleGetPosting(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	rec, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("failed to get posting: %w", err))
		return
	}
	if rec == nil {
		s.writeError(w, r, &ErrNotFound{Resource: "posting", ID: id})
		return
	}

	s.jsonResponse(w, http.StatusOK, s.evaluator.Evaluate(rec.Posting(), s.now()))
}

// handleDigest renders the Markdown digest of all stored postings
func (s *Server) handleDigest(w http.ResponseWriter, r *http.Request) {
	d, err := s.storedDigest(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := d.Render(w); err != nil {
		s.logger.Warn("failed to write digest response")
	}
}

// handleDashboard renders the HTML dashboard of all stored postings
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.storedDigest(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := d.RenderHTML(w); err != nil {
		s.logger.Warn("failed to write dashboard response")
	}
}

// handleExportCSV streams stored postings as CSV, optionally limited to one tier
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	var tier scoring.Tier
	if raw := r.URL.Query().Get("tier"); raw != "" {
		parsed, ok := scoring.ParseTier(raw)
		if !ok {
			s.writeError(w, r, &ErrValidation{Field: "tier", Message: fmt.Sprintf("unknown tier %q", raw)})
			return
		}
		tier = parsed
	}

	d, err := s.storedDigest(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	d.Evaluations = d.Filter(tier)

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="freshapply-export.csv"`)
	w.WriteHeader(http.StatusOK)
	if err := d.WriteCSV(w); err != nil {
		s.logger.Warn("failed to write csv response")
	}
}

func (s *Server) storedDigest(ctx context.Context) (digest.Digest, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return digest.Digest{}, fmt.Errorf("failed to list postings: %w", err)
	}
	now := s.now()
	evals, err := s.evaluator.EvaluateAll(ctx, store.Postings(records), now, 0)
	if err != nil {
		return digest.Digest{}, fmt.Errorf("failed to evaluate postings: %w", err)
	}
	return digest.New(now, evals, s.displayName), nil
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return &ErrBadRequest{Message: "invalid request body: " + err.Error()}
	}
	return nil
}

func (s *Server) validate(v any) error {
	err := s.validator.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &ErrValidation{Field: fieldPath(fe), Message: describe(fe)}
	}
	return &ErrBadRequest{Message: err.Error()}
}

// fieldPath strips the struct name from a namespace like BatchRequest.postings[0].title.
func fieldPath(fe validator.FieldError) string {
	if _, rest, ok := strings.Cut(fe.Namespace(), "."); ok {
		return rest
	}
	return fe.Field()
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must have at least " + fe.Param() + " items"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "url":
		return "must be a valid URL"
	default:
		return fmt.Sprintf("failed '%s' validation", fe.Tag())
	}
}
