package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/KaramelBytes/tabview-cli/internal/chart"
	"github.com/KaramelBytes/tabview-cli/internal/dataset"
	"github.com/KaramelBytes/tabview-cli/internal/export"
	"github.com/KaramelBytes/tabview-cli/internal/logging"
	"github.com/KaramelBytes/tabview-cli/internal/pipeline"
	"github.com/KaramelBytes/tabview-cli/internal/session"
)

// Options fixes how the server derives and renders views.
type Options struct {
	Settings      pipeline.Settings
	ExportName    string
	HistogramBins int
	ChartWidth    int
	ChartHeight   int
	ChartFormat   chart.Format
}

// Server serves views of one source table. Each session keeps its own
// controls; the table itself is shared read-only.
type Server struct {
	src  *dataset.Table
	opt  Options
	pipe *pipeline.Pipeline

	mu       sync.Mutex
	sessions map[string]*session.Session
}

// New constructs a server over src.
func New(src *dataset.Table, opt Options) *Server {
	if opt.ExportName == "" {
		opt.ExportName = export.DefaultFilename
	}
	if opt.ChartFormat == "" {
		opt.ChartFormat = chart.PNG
	}
	return &Server{
		src:      src,
		opt:      opt,
		pipe:     pipeline.New(opt.Settings),
		sessions: make(map[string]*session.Session),
	}
}

// Handler returns an http.Handler that serves the API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/columns", s.handleColumns)
	mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /api/sessions/{id}", s.handleGetSession)
	mux.HandleFunc("PUT /api/sessions/{id}", s.handlePutSession)
	mux.HandleFunc("GET /api/sessions/{id}/view", s.handleView)
	mux.HandleFunc("GET /api/sessions/{id}/download", s.handleDownload)
	mux.HandleFunc("GET /api/sessions/{id}/chart.png", s.handleChart)
	return logRequests(mux)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	logging.Infof("serving %s (%d rows) on http://%s", s.src.Name(), s.src.Rows(), addr)
	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// snapshot copies a session's controls so a recompute never races an update.
func (s *Server) snapshot(id string) (pipeline.ViewOptions, *chart.Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return pipeline.ViewOptions{}, nil, false
	}
	var req *chart.Request
	if sess.Chart != nil {
		r := sess.Chart.WithDefaultBins(s.opt.HistogramBins)
		req = &r
	}
	return sess.ViewOptions(s.src.Columns()), req, true
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logging.Debugf("%s %s -> %d (%s)", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}
