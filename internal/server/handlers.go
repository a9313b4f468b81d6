package server

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/relgraph/pkg/errors"
	"github.com/matzehuels/relgraph/pkg/export"
	"github.com/matzehuels/relgraph/pkg/graph"
	"github.com/matzehuels/relgraph/pkg/layout"
	"github.com/matzehuels/relgraph/pkg/patch"
	"github.com/matzehuels/relgraph/pkg/record"
	"github.com/matzehuels/relgraph/pkg/resolve"
	"github.com/matzehuels/relgraph/pkg/session"
	"github.com/matzehuels/relgraph/pkg/xmldoc"
)

// SkippedHeader lists the ids of records the download could not write back.
const SkippedHeader = "X-Relgraph-Skipped"

type documentResponse struct {
	ID string `json:"id"`
	*graph.Graph
}

type recordResponse struct {
	Record record.Record `json:"record"`
	resolve.Connections
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "ok")
}

// handleUpload starts a session from a multipart "file" upload.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	limit := s.maxUpload()
	if limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit+uploadOverhead)
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			s.writeError(w, r, err)
			return
		}
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInput, err, "expected a multipart upload"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInput, err, "missing form field \"file\""))
		return
	}
	defer file.Close()

	if limit > 0 {
		if err := errors.ValidateSize(header.Size, limit); err != nil {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: errors.UserMessage(err), Code: errors.GetCode(err)})
			return
		}
	}
	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInput, err, "read upload"))
		return
	}

	ctx := r.Context()
	doc, err := xmldoc.Load(header.Filename, data, s.opts.LoadOptions())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	g, err := s.runner.Load(ctx, doc, s.opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sess := session.New(doc, g)
	if err := s.store.Put(ctx, sess); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("session created",
		"id", sess.ID,
		"name", doc.Name,
		"type", g.Type,
		"records", len(g.Records),
		"edges", len(g.Edges))
	writeJSON(w, http.StatusCreated, documentResponse{ID: sess.ID, Graph: sess.Graph})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, documentResponse{ID: sess.ID, Graph: sess.Graph})
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	unlock := s.locks.lock(id)
	defer unlock()

	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("session deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	dir, err := layout.ParseDirection(r.URL.Query().Get("direction"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	unlock := s.locks.lock(id)
	defer unlock()

	sess, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts := s.opts
	opts.Layout.Direction = dir
	l, err := s.runner.Layout(r.Context(), sess.Graph, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rec, err := findRecord(sess.Graph, chi.URLParam(r, "recordID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recordResponse{Record: *rec, Connections: sess.Graph.Neighbors(rec.ID)})
}

// handleUpdateRecord replaces the attributes and/or children of one record.
// The body is an edit object; its id, if present, must match the path.
func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	id, recordID := chi.URLParam(r, "id"), chi.URLParam(r, "recordID")

	var edit graph.Edit
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.editLimit()))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&edit); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidEdit, err, "decode edit"))
		return
	}
	if edit.ID != "" && edit.ID != recordID {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidEdit, "edit id %s does not match record %s", edit.ID, recordID))
		return
	}
	edit.ID = recordID

	unlock := s.locks.lock(id)
	defer unlock()

	sess, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := sess.Graph.ApplyEdits([]graph.Edit{edit}); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.Put(r.Context(), sess); err != nil {
		s.writeError(w, r, err)
		return
	}
	rec, _ := sess.Graph.Record(recordID)
	s.logger.Debug("record updated", "session", id, "record", recordID)
	writeJSON(w, http.StatusOK, recordResponse{Record: *rec, Connections: sess.Graph.Neighbors(recordID)})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := export.ValidateFormat(format); err != nil {
		s.writeError(w, r, err)
		return
	}
	dir, err := layout.ParseDirection(r.URL.Query().Get("direction"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	unlock := s.locks.lock(id)
	defer unlock()

	sess, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	eopts := export.Options{Direction: dir, Detailed: r.URL.Query().Has("detailed")}
	data, _, err := s.runner.ExportWithCacheInfo(r.Context(), sess.Graph, format, eopts, s.opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", export.ContentType(format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// handleDownload patches the session's records into its source document.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	unlock := s.locks.lock(id)
	defer unlock()

	sess, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	doc, err := sess.Document()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out, rep, err := s.runner.Patch(r.Context(), doc, sess.Graph.Records, s.opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", patch.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", patch.OutputFilename))
	if len(rep.Skipped) > 0 {
		w.Header().Set(SkippedHeader, strings.Join(rep.Skipped, ","))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func (s *Server) editLimit() int64 {
	if limit := s.maxUpload(); limit > 0 {
		return limit
	}
	return xmldoc.DefaultMaxSize
}

func findRecord(g *graph.Graph, id string) (*record.Record, error) {
	if err := errors.ValidateRecordID(id); err != nil {
		return nil, err
	}
	rec, ok := g.Record(id)
	if !ok {
		return nil, errors.New(errors.ErrCodeRecordNotFound, "record %s not found", id)
	}
	return rec, nil
}
