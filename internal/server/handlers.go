package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"

	"github.com/KaramelBytes/tabview-cli/internal/chart"
	"github.com/KaramelBytes/tabview-cli/internal/dataset"
	"github.com/KaramelBytes/tabview-cli/internal/export"
	"github.com/KaramelBytes/tabview-cli/internal/logging"
	"github.com/KaramelBytes/tabview-cli/internal/pipeline"
	"github.com/KaramelBytes/tabview-cli/internal/session"
)

type columnInfo struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Groupable bool   `json:"groupable"`
}

// Controls is the body of PUT /api/sessions/{id}.
type Controls struct {
	Columns        []string       `json:"columns"`
	SelectAll      bool           `json:"select_all"`
	DropDuplicates bool           `json:"drop_duplicates"`
	DropNulls      bool           `json:"drop_nulls"`
	GroupBy        []string       `json:"group_by"`
	Aggregate      string         `json:"aggregate"`
	RowLimit       int            `json:"row_limit"`
	Chart          *chart.Request `json:"chart"`
}

type viewResponse struct {
	Columns    []string    `json:"columns"`
	Kinds      []string    `json:"kinds"`
	Rows       [][]any     `json:"rows"`
	RowCount   int         `json:"row_count"`
	SourceRows int         `json:"source_rows"`
	Grouped    bool        `json:"grouped"`
	Warnings   []string    `json:"warnings,omitempty"`
	Chart      *chart.Spec `json:"chart,omitempty"`
	ChartError string      `json:"chart_error,omitempty"`
}

type errorResponse struct {
	Error   string `json:"error,omitempty"`
	Warning string `json:"warning,omitempty"`
}

// writeJSON encodes v before touching the response, so an unencodable value
// becomes a 500 instead of a status with an empty body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		logging.Errorf("encode response: %v", err)
		buf.Reset()
		if err := json.NewEncoder(&buf).Encode(errorResponse{Error: fmt.Sprintf("encode response: %v", err)}); err != nil {
			http.Error(w, "encode response", http.StatusInternalServerError)
			return
		}
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		logging.Debugf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, pipeline.ErrEmptySelection) {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Warning: err.Error()})
		return
	}
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
}

func (s *Server) handleColumns(w http.ResponseWriter, r *http.Request) {
	limit := s.pipe.Settings().GroupableMaxDistinct
	out := make([]columnInfo, 0, s.src.NumCols())
	for j := 0; j < s.src.NumCols(); j++ {
		c := s.src.ColumnAt(j)
		out = append(out, columnInfo{Name: c.Name(), Kind: c.Kind().String(), Groupable: c.Groupable(limit)})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("decode body: %v", err)})
			return
		}
	}
	sess := session.New(body.Name, s.src.Name(), "")
	if sess.Name == "" {
		sess.Name = sess.ID
	}
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	b, err := json.Marshal(sess)
	s.mu.Unlock()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	w.Header().Set("Location", "/api/sessions/"+sess.ID)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write(append(b, '\n'))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[r.PathValue("id")]
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handlePutSession(w http.ResponseWriter, r *http.Request) {
	var c Controls
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("decode body: %v", err)})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[r.PathValue("id")]
	if !ok {
		http.NotFound(w, r)
		return
	}
	// validate before touching the stored session
	next := *sess
	if err := apply(&next, c); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	*sess = next
	writeJSON(w, http.StatusOK, sess)
}

func apply(sess *session.Session, c Controls) error {
	if c.SelectAll {
		sess.UseAllColumns()
	} else {
		sess.Select(c.Columns...)
	}
	sess.SetCleaning(c.DropDuplicates, c.DropNulls)
	sess.SetGrouping(c.GroupBy, c.Aggregate)
	if err := sess.SetRowLimit(c.RowLimit); err != nil {
		return err
	}
	return sess.SetChart(c.Chart)
}

func (s *Server) compose(w http.ResponseWriter, r *http.Request) (*pipeline.View, bool) {
	opt, req, ok := s.snapshot(r.PathValue("id"))
	if !ok {
		http.NotFound(w, r)
		return nil, false
	}
	v, err := s.pipe.Compose(s.src, opt, req)
	if err != nil {
		logging.Debugf("recompute %s: %v", r.PathValue("id"), err)
		writeError(w, err)
		return nil, false
	}
	return v, true
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	v, ok := s.compose(w, r)
	if !ok {
		return
	}
	resp := viewResponse{
		Columns:    v.Table.Columns(),
		Rows:       make([][]any, 0, v.Table.Rows()),
		RowCount:   v.Table.Rows(),
		SourceRows: v.SourceRows,
		Grouped:    v.Grouped,
		Chart:      v.Chart,
	}
	for j := 0; j < v.Table.NumCols(); j++ {
		resp.Kinds = append(resp.Kinds, v.Table.ColumnAt(j).Kind().String())
	}
	for i := 0; i < v.Table.Rows(); i++ {
		row := v.Table.Row(i)
		cells := make([]any, len(row))
		for j, val := range row {
			cells[j] = cell(v.Table.ColumnAt(j).Kind(), val)
		}
		resp.Rows = append(resp.Rows, cells)
	}
	for _, warn := range v.Warnings {
		resp.Warnings = append(resp.Warnings, warn.Error())
	}
	if v.ChartErr != nil {
		resp.ChartError = v.ChartErr.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func cell(kind dataset.Kind, v dataset.Value) any {
	if !v.Valid {
		return nil
	}
	if kind == dataset.Numeric {
		if math.IsNaN(v.Num) || math.IsInf(v.Num, 0) {
			return nil
		}
		return v.Num
	}
	return v.Text
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	v, ok := s.compose(w, r)
	if !ok {
		return
	}
	f := export.ForPath(s.opt.ExportName)
	if name := r.URL.Query().Get("format"); name != "" {
		var err error
		if f, err = export.Lookup(name); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
	}
	var buf bytes.Buffer
	if err := f.Format(v.Table, &buf); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	filename := s.opt.ExportName
	if f.Name() != export.ForPath(filename).Name() {
		filename = "filtered_data" + f.Extension()
	}
	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	v, ok := s.compose(w, r)
	if !ok {
		return
	}
	if v.ChartErr != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: v.ChartErr.Error()})
		return
	}
	if v.Chart == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no chart configured for this session"})
		return
	}
	format := s.opt.ChartFormat
	if q := r.URL.Query().Get("format"); q != "" {
		var err error
		if format, err = chart.ParseFormat(q); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
	}
	var buf bytes.Buffer
	if err := chart.Render(v.Chart, &buf, format, s.opt.ChartWidth, s.opt.ChartHeight); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, chart.ErrNoData) {
			status = http.StatusUnprocessableEntity
		}
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	_, _ = w.Write(buf.Bytes())
}
