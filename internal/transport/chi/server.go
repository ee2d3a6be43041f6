// Package chi exposes selection and fingerprinting over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/smartsample/internal/domain"
	"github.com/kailas-cloud/smartsample/internal/domain/fingerprint"
	domsel "github.com/kailas-cloud/smartsample/internal/domain/selection"
	"github.com/kailas-cloud/smartsample/internal/domain/selection/strategy"
	"github.com/kailas-cloud/smartsample/internal/logger"
	healthuc "github.com/kailas-cloud/smartsample/internal/usecase/health"
	selectionuc "github.com/kailas-cloud/smartsample/internal/usecase/selection"
)

const defaultMaxBodyBytes = 64 << 20

// skipReasonFile is reported for every server-side file that could not be used.
const skipReasonFile = "unreadable or undecodable image"

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server holds the HTTP handlers.
type Server struct {
	selector     Selector
	extractor    Fingerprinter
	health       HealthChecker
	defaults     domsel.Options
	width        int
	localFiles   bool
	maxBodyBytes int64
	logger       *zap.Logger

	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. defaults fill the options a request
// leaves unset; width is the fingerprint width inline candidates default to.
func NewServer(
	selector Selector,
	extractor Fingerprinter,
	health HealthChecker,
	defaults domsel.Options,
	width int,
	logger *zap.Logger,
) *Server {
	s := &Server{
		selector:     selector,
		extractor:    extractor,
		health:       health,
		defaults:     defaults,
		width:        width,
		maxBodyBytes: defaultMaxBodyBytes,
		logger:       logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidTarget, http.StatusBadRequest, codeInvalidTarget),
		sentinelHandler(domain.ErrInvalidOptions, http.StatusBadRequest, codeInvalidOptions),
		sentinelHandler(domain.ErrDuplicateCandidate, http.StatusBadRequest, codeDuplicateID),
		sentinelHandler(domain.ErrDimensionMismatch, http.StatusUnprocessableEntity, codeDimensionMismatch),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
	}
	return s
}

// WithLocalFiles lets requests read paths and scan directories on the server host.
func (s *Server) WithLocalFiles(allow bool) *Server {
	s.localFiles = allow
	return s
}

// WithMaxBodyBytes caps request bodies.
func (s *Server) WithMaxBodyBytes(n int64) *Server {
	if n > 0 {
		s.maxBodyBytes = n
	}
	return s
}

// CreateSelection handles POST /v1/selections.
func (s *Server) CreateSelection(w http.ResponseWriter, r *http.Request) {
	var req SelectionRequest
	if !s.decode(w, r, &req) {
		return
	}

	opts, err := s.options(req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	sourcesSet := 0
	for _, set := range []bool{len(req.Candidates) > 0, len(req.Paths) > 0, req.Dir != ""} {
		if set {
			sourcesSet++
		}
	}
	if sourcesSet > 1 {
		writeError(w, http.StatusBadRequest, codeBadRequest, "candidates, paths and dir are mutually exclusive")
		return
	}

	if len(req.Candidates) > 0 || sourcesSet == 0 {
		cands, err := s.candidates(req.Candidates)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
			return
		}
		res, err := s.selector.Select(r.Context(), cands, req.Target, opts)
		if err != nil {
			s.handleDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, selectionToResponse(res, nil, len(cands)))
		return
	}

	if !s.localFiles {
		writeError(w, http.StatusForbidden, codeForbidden, "server-side file access is disabled")
		return
	}

	report, err := s.selector.SelectFiles(r.Context(), selectionuc.Request{
		Dir: req.Dir,
		Filter: domain.ScanFilter{
			Recursive: req.Recursive,
			Include:   req.Include,
			Exclude:   req.Exclude,
		},
		Paths:   req.Paths,
		Target:  req.Target,
		Options: opts,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if len(report.Skipped) > 0 {
		log := logger.FromContextOr(r.Context(), s.logger)
		for _, d := range report.Skipped {
			log.Debug("skipped server-side file", zap.String("id", d.ID), zap.Error(d.Err))
		}
	}
	writeJSON(w, http.StatusOK, selectionToResponse(report.Result, report.Skipped, report.Inputs))
}

// CreateFingerprints handles POST /v1/fingerprints.
func (s *Server) CreateFingerprints(w http.ResponseWriter, r *http.Request) {
	var req FingerprintRequest
	if !s.decode(w, r, &req) {
		return
	}
	if len(req.Images) == 0 {
		writeError(w, http.StatusBadRequest, codeBadRequest, "images must not be empty")
		return
	}

	resp := FingerprintResponse{Fingerprints: make([]FingerprintItem, 0, len(req.Images))}
	for i, img := range req.Images {
		id := img.ID
		if id == "" {
			id = strconv.Itoa(i)
		}
		fp, err := s.extractor.Extract(r.Context(), img.Data)
		if err != nil {
			if r.Context().Err() != nil {
				s.handleDomainError(w, r, err)
				return
			}
			resp.Skipped = append(resp.Skipped, SkippedItem{ID: id, Reason: err.Error()})
			continue
		}
		resp.Fingerprints = append(resp.Fingerprints, FingerprintItem{
			ID:          id,
			Fingerprint: fp.String(),
			Width:       fp.Width(),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// HealthCheck handles GET /health. A degraded cache still serves traffic.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func (s *Server) options(req SelectionRequest) (domsel.Options, error) {
	opts := s.defaults
	if req.Strategy != nil {
		st, err := strategy.Parse(*req.Strategy)
		if err != nil {
			return domsel.Options{}, fmt.Errorf("%w: %v", domain.ErrInvalidOptions, err)
		}
		opts.Strategy = st
	}
	if req.WindowSize != nil {
		if *req.WindowSize < 1 {
			return domsel.Options{}, fmt.Errorf("%w: window size must be >= 1, got %d",
				domain.ErrInvalidOptions, *req.WindowSize)
		}
		opts.WindowSize = *req.WindowSize
	}
	if req.Seed != nil {
		opts.Seed = *req.Seed
	}
	if req.DuplicateDistance != nil {
		opts.DuplicateDistance = *req.DuplicateDistance
	}
	opts.ResolveNearest = req.ResolveNearest
	return opts, nil
}

func (s *Server) candidates(in []CandidateInput) ([]domsel.Candidate, error) {
	out := make([]domsel.Candidate, 0, len(in))
	for i, c := range in {
		if c.ID == "" {
			return nil, fmt.Errorf("candidates[%d]: id is required", i)
		}
		width := c.Width
		if width == 0 {
			width = s.width
		}
		fp, err := fingerprint.ParseHex(c.Fingerprint, width)
		if err != nil {
			return nil, fmt.Errorf("candidates[%d]: %w", i, err)
		}
		order := i
		if c.Order != nil {
			order = *c.Order
		}
		out = append(out, domsel.Candidate{ID: c.ID, Order: order, Fingerprint: fp})
	}
	return out, nil
}

func selectionToResponse(res domsel.Result, skipped []*domain.DecodeError, inputs int) SelectionResponse {
	resp := SelectionResponse{
		Strategy:        string(res.Strategy),
		Selected:        nonNil(res.Selected),
		Excluded:        nonNil(res.Excluded),
		NearestIncluded: res.NearestIncluded,
		Inputs:          inputs,
	}
	for _, b := range res.Buckets {
		resp.Buckets = append(resp.Buckets, BucketResponse{
			Key:      b.Key,
			Label:    b.Label,
			Size:     b.Size,
			Kept:     b.Kept,
			Excluded: b.Excluded,
			Stride:   b.Stride,
		})
	}
	// File errors would reveal what exists on the host; the log keeps the cause.
	for _, d := range skipped {
		resp.Skipped = append(resp.Skipped, SkippedItem{ID: d.ID, Reason: skipReasonFile})
	}
	return resp
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
// Domain errors carry no internals, so their text goes back to the client.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, err.Error())
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContextOr(r.Context(), s.logger)
	for _, h := range s.errorHandlers {
		if h(w, err) {
			log.Debug("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
