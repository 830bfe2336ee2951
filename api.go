package s3load

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// The json shape of a page served by the inspection api.
type PageInfo struct {
	Src  string    `json:"src"`
	Dest string    `json:"dest"`
	Ext  string    `json:"ext"`
	Date time.Time `json:"date,omitzero"`
	Data Data      `json:"data,omitempty"`
}

func pageInfo(page Page, withContent bool) PageInfo {
	info := PageInfo{
		Src:  page.Src.Path,
		Dest: page.Dest.Path,
		Ext:  page.Dest.Ext,
		Data: page.Data,
	}
	info.Date, _ = page.Date()
	if !withContent {
		info.Data = page.Data.Clone()
		delete(info.Data, ContentKey)
	}
	return info
}

// Returns a router serving a read only json view of what the Site loads:
//
//	GET /pages              all pages (without their content)
//	GET /pages/{path}       a single page
//	GET /tags               tag counts over all pages
//	GET /include?ref=&from= an include resolved from an optional base file
func (s *Site) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/pages", s.handlePages).Methods(http.MethodGet)
	r.HandleFunc("/pages/{path:.+}", s.handlePage).Methods(http.MethodGet)
	r.HandleFunc("/tags", s.handleTags).Methods(http.MethodGet)
	r.HandleFunc("/include", s.handleInclude).Methods(http.MethodGet)
	return r
}

func (s *Site) handlePages(w http.ResponseWriter, r *http.Request) {
	pages, err := s.LoadPages()
	if err != nil && pages == nil {
		writeError(w, err)
		return
	}
	if err != nil {
		slog.Warn("Some pages failed to load", "error", err)
	}
	out := make([]PageInfo, 0, len(pages))
	for _, page := range pages {
		out = append(out, pageInfo(page, false))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Site) handlePage(w http.ResponseWriter, r *http.Request) {
	page, found, err := s.LoadPage(mux.Vars(r)["path"])
	if err != nil {
		writeError(w, err)
		return
	}
	if !found {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, pageInfo(page, true))
}

func (s *Site) handleTags(w http.ResponseWriter, r *http.Request) {
	pages, err := s.LoadPages()
	if err != nil && pages == nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AllTags(pages))
}

func (s *Site) handleInclude(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	resolved, data, found, err := s.Include(query.Get("ref"), query.Get("from"))
	if err != nil {
		writeError(w, err)
		return
	}
	if !found {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"resolved": resolved, "data": data})
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrUnresolvableReference):
		status = http.StatusBadRequest
	case errors.Is(err, ErrInvalidDate):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, fs.ErrNotExist):
		status = http.StatusNotFound
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(value); err != nil {
		slog.Error("Error writing response", "error", err)
	}
}
