package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/koustreak/pgmeta/internal/errs"
	"github.com/koustreak/pgmeta/internal/service"
	"github.com/koustreak/pgmeta/internal/typegen"
)

// Response headers describing a generation.
const (
	CacheHeader    = "X-Pgmeta-Cache"
	WarningsHeader = "X-Pgmeta-Warnings"
)

// options overlays the query parameters of r onto the server defaults.
func (s *Server) options(r *http.Request) (typegen.Options, error) {
	opts := s.defaults
	q := r.URL.Query()
	if q.Has("included_schemas") {
		opts.IncludedSchemas = service.ParseSchemas(q.Get("included_schemas"))
	}
	if q.Has("excluded_schemas") {
		opts.ExcludedSchemas = service.ParseSchemas(q.Get("excluded_schemas"))
	}
	if q.Has("detect_one_to_one_relationships") {
		v, err := strconv.ParseBool(q.Get("detect_one_to_one_relationships"))
		if err != nil {
			return opts, errs.Wrap(errs.ErrKindInvalidInput, "detect_one_to_one_relationships must be a boolean", err)
		}
		opts.DetectOneToOneRelationships = v
	}
	if q.Has("postgrest_version") {
		opts.PostgrestVersion = q.Get("postgrest_version")
	}
	return opts, nil
}

func (s *Server) generate(r *http.Request) (*service.Outcome, error) {
	opts, err := s.options(r)
	if err != nil {
		return nil, err
	}
	return s.svc.Generate(r.Context(), chi.URLParam(r, "target"), opts)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	out, err := s.generate(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	cache := "miss"
	if out.CacheHit {
		cache = "hit"
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set(CacheHeader, cache)
	w.Header().Set(WarningsHeader, strconv.Itoa(len(out.Warnings)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(out.Output))
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	if s.publisher == nil {
		writeError(w, r, errs.New(errs.ErrKindNotFound, "publishing is not configured"))
		return
	}
	out, err := s.generate(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	art, err := s.publisher.Publish(r.Context(), out.Target, []byte(out.Output))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, art)
}

func (s *Server) handleTargets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"targets": s.svc.Targets()})
}

type healthBody struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := healthBody{Status: "ok"}
	status := http.StatusOK
	if len(s.checks) > 0 {
		body.Checks = make(map[string]string, len(s.checks))
	}
	for name, check := range s.checks {
		if err := check(r.Context()); err != nil {
			body.Checks[name] = err.Error()
			body.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		body.Checks[name] = "ok"
	}
	writeJSON(w, status, body)
}
