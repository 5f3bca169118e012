package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"

	"github.com/omerfarukorc/ulog-analysis/core/logger"
	"github.com/omerfarukorc/ulog-analysis/core/threading"
	"github.com/omerfarukorc/ulog-analysis/explorer"
	"github.com/omerfarukorc/ulog-analysis/graphs"
	"github.com/omerfarukorc/ulog-analysis/store"
)

// maxUploadBytes caps a single multipart upload (256 MiB covers long flights).
const maxUploadBytes = 256 << 20

type (
	fileEntry struct {
		store.FileInfo
		DurationS  float64 `json:"duration_s,omitempty"`
		TopicCount int     `json:"topic_count,omitempty"`
		Vehicle    string  `json:"vehicle,omitempty"`
	}

	statsRequest struct {
		Params []explorer.Param `json:"params"`
	}
)

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	files, err := s.exp.Store().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	catalog := make(map[string]store.LogRecord)
	if recs, err := s.exp.Catalog().All(r.Context()); err == nil {
		for _, rec := range recs {
			catalog[rec.FileName] = rec
		}
	}

	entries := make([]fileEntry, 0, len(files))
	for _, f := range files {
		e := fileEntry{FileInfo: f}
		if rec, ok := catalog[f.Name]; ok {
			e.DurationS = rec.DurationS
			e.TopicCount = rec.TopicCount
			e.Vehicle = rec.Vehicle
		}
		entries = append(entries, e)
	}
	writeJSON(w, http.StatusOK, map[string]any{"files": entries})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("missing file field: %v", err))
		return
	}
	defer file.Close()

	name := header.Filename
	if err := store.ValidateName(name); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	info, err := s.exp.Store().Save(name, file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	uploadsTotal.Inc()
	s.recordActivity("upload", name)

	// Parse in the background so the next request hits a warm cache, and
	// record the catalog entry once parsed.
	s.exp.Prewarm(name)
	threading.GoSafe(func() {
		if err := s.exp.Index(context.Background(), name); err != nil {
			logger.Warn("failed to index %s: %v", name, err)
		}
	})

	writeJSON(w, http.StatusCreated, info)
}

// resolveName validates the :name parameter and confirms the file exists.
func (s *Server) resolveName(w http.ResponseWriter, ps httprouter.Params) (string, bool) {
	name := ps.ByName("name")
	if err := store.ValidateName(name); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	if _, err := s.exp.Store().Stat(name); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return "", false
	}
	return name, true
}

func (s *Server) handleInfo(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	name, ok := s.resolveName(w, ps)
	if !ok {
		return
	}
	info, err := s.exp.Info(name)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleTopics(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	name, ok := s.resolveName(w, ps)
	if !ok {
		return
	}
	topics, err := s.exp.Topics(name)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"topics": topics})
}

func (s *Server) handleFields(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	name, ok := s.resolveName(w, ps)
	if !ok {
		return
	}
	fields, err := s.exp.Fields(name, ps.ByName("topic"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"fields": fields})
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	name, ok := s.resolveName(w, ps)
	if !ok {
		return
	}
	q := r.URL.Query()
	topic, field := q.Get("topic"), q.Get("field")
	if topic == "" || field == "" {
		writeError(w, http.StatusBadRequest, "topic and field query parameters are required")
		return
	}
	maxPoints := 0
	if raw := q.Get("max"); raw != "" {
		maxPoints, _ = strconv.Atoi(raw)
	}

	series, err := s.exp.Series(name, topic, field, maxPoints)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.recordActivity("series", name+" "+topic+"."+field)
	writeJSON(w, http.StatusOK, series)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	name, ok := s.resolveName(w, ps)
	if !ok {
		return
	}
	var req statsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	stats, err := s.exp.Stats(name, req.Params)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"stats": stats})
}

func (s *Server) handleGraphs(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	name, ok := s.resolveName(w, ps)
	if !ok {
		return
	}
	u, err := s.exp.Open(name)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.recordActivity("graphs", name)
	writeJSON(w, http.StatusOK, map[string]any{"graphs": graphs.Generate(u)})
}

func (s *Server) handleActivity(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]any{"activity": s.activity.Snapshot()})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"active_logs": s.exp.ActiveLogNum(),
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	http.NotFound(w, r)
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
