package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/axnarrate/pkg/axtree"
	"github.com/matzehuels/axnarrate/pkg/buildinfo"
	apperrors "github.com/matzehuels/axnarrate/pkg/errors"
	"github.com/matzehuels/axnarrate/pkg/pipeline"
	"github.com/matzehuels/axnarrate/pkg/render/sink"
	"github.com/matzehuels/axnarrate/pkg/session"
)

const formAction = "/render"

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

// handleIndex shows the paste form. The latest saved tree, if any, is
// prefilled and narrated below it.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page := sink.PageOptions{Form: true, Action: formAction}
	var body []byte

	if s.sessions != nil {
		e, err := s.sessions.Latest(r.Context())
		switch {
		case err == nil:
			page.Source = string(e.Data)
			if body, err = s.narrateHTML(r.Context(), "session:"+e.ID, e.Data); err != nil {
				page.Notice = apperrors.UserMessage(err)
			}
		case !errors.Is(err, session.ErrNotFound):
			s.logger.Warn("load latest session", "err", err)
		}
	}
	s.writePage(w, http.StatusOK, body, page)
}

func (s *Server) handleRenderForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
	if err := r.ParseForm(); err != nil {
		respondErr(w, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "read form"))
		return
	}
	src := r.PostForm.Get("tree")
	page := sink.PageOptions{Form: true, Action: formAction, Source: src}

	if strings.TrimSpace(src) == "" {
		page.Notice = "Paste an accessibility tree to narrate."
		s.writePage(w, http.StatusBadRequest, nil, page)
		return
	}

	body, err := s.narrateHTML(r.Context(), "paste", []byte(src))
	if err != nil {
		page.Notice = apperrors.UserMessage(err)
		s.writePage(w, statusFor(err), nil, page)
		return
	}
	s.save(r.Context(), []byte(src), "paste")
	s.writePage(w, http.StatusOK, body, page)
}

// narrateHTML decodes raw and returns its HTML narration.
func (s *Server) narrateHTML(ctx context.Context, source string, raw []byte) ([]byte, error) {
	t, err := s.runner.LoadBytes(ctx, source, raw)
	if err != nil {
		return nil, err
	}
	res, err := s.runner.Render(ctx, t, raw, pipeline.Options{Formats: []string{pipeline.FormatHTML}})
	if err != nil {
		return nil, err
	}
	return res.Artifacts[pipeline.FormatHTML], nil
}

func (s *Server) writePage(w http.ResponseWriter, status int, body []byte, opts sink.PageOptions) {
	page, err := sink.HTMLPageBody(body, opts)
	if err != nil {
		s.logger.Error("render page", "err", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(page)
}

// handleRenderAPI renders a JSON tree body. With save=true the tree is also
// stored and its id returned in X-Session-ID.
func (s *Server) handleRenderAPI(w http.ResponseWriter, r *http.Request) {
	opts, err := renderOptions(r)
	if err != nil {
		respondErr(w, err)
		return
	}
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		respondErr(w, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "read body"))
		return
	}
	t, err := s.runner.LoadBytes(r.Context(), "api", raw)
	if err != nil {
		respondErr(w, err)
		return
	}
	if saveTree, _ := strconv.ParseBool(r.URL.Query().Get("save")); saveTree {
		if e := s.save(r.Context(), raw, "api"); e != nil {
			w.Header().Set(headerSession, e.ID)
		}
	}
	s.writeArtifact(w, r, t, raw, opts)
}

func (s *Server) handleSaveTree(w http.ResponseWriter, r *http.Request) {
	if s.sessions == nil {
		respondError(w, http.StatusNotFound, "sessions are disabled")
		return
	}
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		respondErr(w, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "read body"))
		return
	}
	if _, err := s.runner.LoadBytes(r.Context(), "api", raw); err != nil {
		respondErr(w, err)
		return
	}
	e, err := session.NewEntry(raw, "api", s.ttl)
	if err != nil {
		respondErr(w, apperrors.Wrap(apperrors.ErrCodeInvalidTree, err, "save tree"))
		return
	}
	if err := s.sessions.Save(r.Context(), e); err != nil {
		respondErr(w, err)
		return
	}
	meta := *e
	meta.Data = nil
	w.Header().Set("Location", "/api/trees/"+e.ID)
	respondJSON(w, http.StatusCreated, meta)
}

// handleGetTree renders a stored tree. The id "latest" selects the newest.
func (s *Server) handleGetTree(w http.ResponseWriter, r *http.Request) {
	if s.sessions == nil {
		respondError(w, http.StatusNotFound, "sessions are disabled")
		return
	}
	opts, err := renderOptions(r)
	if err != nil {
		respondErr(w, err)
		return
	}

	var e *session.Entry
	if id := chi.URLParam(r, "id"); id == "latest" {
		e, err = s.sessions.Latest(r.Context())
	} else {
		e, err = s.sessions.Get(r.Context(), id)
	}
	if err != nil {
		respondErr(w, err)
		return
	}

	t, err := s.runner.LoadBytes(r.Context(), "session:"+e.ID, e.Data)
	if err != nil {
		respondErr(w, err)
		return
	}
	w.Header().Set(headerSession, e.ID)
	s.writeArtifact(w, r, t, e.Data, opts)
}

func (s *Server) writeArtifact(w http.ResponseWriter, r *http.Request, t *axtree.Tree, raw []byte, opts pipeline.Options) {
	res, err := s.runner.Render(r.Context(), t, raw, opts)
	if err != nil {
		respondErr(w, err)
		return
	}
	format := opts.Formats[0]
	cacheStatus := "miss"
	if res.CacheInfo.RenderHit {
		cacheStatus = "hit"
	}
	w.Header().Set("Content-Type", pipeline.ContentType(format))
	w.Header().Set(headerTreeHash, res.TreeHash)
	w.Header().Set(headerCache, cacheStatus)
	if !res.CacheInfo.RenderHit {
		w.Header().Set(headerErrors, strconv.Itoa(res.Stats.ErrorFragments))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifacts[format])
}

// save stores raw as the latest session. Failures are logged, not returned:
// rendering does not depend on persistence.
func (s *Server) save(ctx context.Context, raw []byte, source string) *session.Entry {
	if s.sessions == nil {
		return nil
	}
	e, err := session.NewEntry(raw, source, s.ttl)
	if err == nil {
		err = s.sessions.Save(ctx, e)
	}
	if err != nil {
		s.logger.Warn("save session", "err", err)
		return nil
	}
	return e
}

// renderOptions reads pipeline options from the query string.
func renderOptions(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := pipeline.Options{
		Root: q.Get("root"),
	}
	if f := q.Get("format"); f != "" {
		opts.Formats = []string{f}
	}
	if v := q.Get("max_depth"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "max_depth")
		}
		opts.MaxDepth = n
	}
	for name, dst := range map[string]*bool{
		"page":            &opts.Page,
		"detailed":        &opts.Detailed,
		"skip_suppressed": &opts.SkipSuppressed,
		"refresh":         &opts.Refresh,
	} {
		if v := q.Get(name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return opts, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "%s", name)
			}
			*dst = b
		}
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return opts, err
	}
	return opts, nil
}
