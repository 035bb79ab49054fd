package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vango-dev/vdiff/internal/errors"
	"github.com/vango-dev/vdiff/pkg/render"
	"github.com/vango-dev/vdiff/pkg/treeio"
	"github.com/vango-dev/vdiff/pkg/vdom"
)

// diffRequest is the body of POST /v1/diff. Trees and the skip tree use
// the treeio document forms.
type diffRequest struct {
	Old  any    `json:"old"`
	New  any    `json:"new"`
	Skip any    `json:"skip,omitempty"`
	Env  []bool `json:"env,omitempty"`
}

type diffResponse struct {
	Patches []treeio.PatchDocument `json:"patches"`
}

type errorResponse struct {
	Error any `json:"error"`
}

type healthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Sessions: s.ActiveSessions()})
}

func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxMessageBytes)

	var req diffRequest
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New(errors.CodeUnreadableInput).Wrap(err))
		return
	}

	prev, err := requestTree(req.Old, "old")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	next, err := requestTree(req.New, "new")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	skip, err := treeio.SkipFromDocument(req.Skip)
	if err != nil {
		writeError(w, http.StatusBadRequest, inField(err, "skip"))
		return
	}

	var patches []vdom.Patch
	if skip != nil {
		patches = s.config.Differ.DiffWithSkip(r.Context(), prev, next, skip, vdom.Flags(req.Env))
	} else {
		patches = s.config.Differ.Diff(r.Context(), prev, next)
	}
	writeJSON(w, http.StatusOK, diffResponse{Patches: treeio.PatchDocuments(patches)})
}

func requestTree(doc any, field string) (*vdom.Node, error) {
	n, err := treeio.NodeFromDocument(doc)
	if err != nil {
		return nil, inField(err, field)
	}
	if n == nil {
		return nil, errors.New(errors.CodeUnreadableInput).WithDetailf("%s: missing tree", field)
	}
	return n, nil
}

// inField prefixes an input error's detail with the request field it came
// from.
func inField(err error, field string) error {
	e := errors.FromError(err, errors.CodeUnreadableInput)
	if e.Detail == "" {
		return e.WithDetail(field)
	}
	return e.WithDetailf("%s: %s", field, e.Detail)
}

// handleSessionTree returns a session's snapshot as a JSON document, or
// YAML with ?format=yaml.
func (s *Server) handleSessionTree(w http.ResponseWriter, r *http.Request) {
	format := treeio.FormatJSON
	if name := r.URL.Query().Get("format"); name != "" {
		f, err := treeio.ParseFormat(name)
		if err != nil || f == treeio.FormatHTML {
			writeError(w, http.StatusBadRequest, errors.New(errors.CodeUnsupportedInput).
				WithDetailf("cannot write %q documents", name))
			return
		}
		format = f
	}

	tree, err := s.config.Store.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	if format == treeio.FormatYAML {
		w.Header().Set("Content-Type", "application/yaml")
	} else {
		w.Header().Set("Content-Type", "application/json")
	}
	if err := treeio.Encode(w, tree, format); err != nil {
		s.logger.Error("encode snapshot", "error", err)
	}
}

// handleRenderSession renders a session's snapshot as an HTML page, or
// as a bare fragment with ?fragment=1.
func (s *Server) handleRenderSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	tree, err := s.config.Store.Load(r.Context(), id)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	q := r.URL.Query()
	config := render.RendererConfig{Pretty: q.Get("pretty") != ""}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if q.Get("fragment") != "" {
		err = render.NewRenderer(config).RenderToWriter(w, tree)
	} else {
		err = render.NewStreamingRenderer(w, config).RenderPage(render.PageData{Body: tree, Title: id})
	}
	if err != nil {
		s.logger.Error("render snapshot", "session_id", id, "error", err)
	}
}

// handleDeleteSession drops a session's snapshot. Connected sessions
// cannot be deleted.
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	_, connected := s.sessions[id]
	s.mu.Unlock()
	if connected {
		writeError(w, http.StatusConflict, NewSessionError(id, "delete", ErrSessionBusy))
		return
	}

	if err := s.config.Store.Delete(r.Context(), id); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// statusFor maps an error code to an HTTP status.
func statusFor(err error) int {
	switch errors.Code(err) {
	case errors.CodeSnapshotNotFound:
		return http.StatusNotFound
	case errors.CodeMalformedPayload, errors.CodeUnsupportedFrame,
		errors.CodeUnreadableInput, errors.CodeUnsupportedInput:
		return http.StatusBadRequest
	case errors.CodeSnapshotBackend:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes err as a JSON error body. Coded errors keep their
// structure; others carry only a message.
func writeError(w http.ResponseWriter, status int, err error) {
	var e *errors.Error
	if stderrors.As(err, &e) {
		writeJSON(w, status, errorResponse{Error: e})
		return
	}
	writeJSON(w, status, errorResponse{Error: map[string]string{"message": err.Error()}})
}
