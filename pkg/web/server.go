package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/collaborativebioinformatics/Pangenome-and-Genomic-Cluster-Modeling/pkg/analysis"
	"github.com/collaborativebioinformatics/Pangenome-and-Genomic-Cluster-Modeling/pkg/gfa"
	"github.com/collaborativebioinformatics/Pangenome-and-Genomic-Cluster-Modeling/pkg/logging"
	"github.com/collaborativebioinformatics/Pangenome-and-Genomic-Cluster-Modeling/pkg/output"
	"github.com/collaborativebioinformatics/Pangenome-and-Genomic-Cluster-Modeling/pkg/pubsub"
)

// GraphSummary describes one analyzed input in /api/graphs.
type GraphSummary struct {
	Name       string      `json:"name"`
	Path       string      `json:"path"`
	OK         bool        `json:"ok"`
	Error      string      `json:"error,omitempty"`
	DurationMs int64       `json:"duration_ms"`
	Warnings   int         `json:"warnings"`
	Report     *gfa.Report `json:"report,omitempty"`
}

// GraphList is the body of /api/graphs.
type GraphList struct {
	Reason    string         `json:"reason"`
	Completed time.Time      `json:"completed"`
	Graphs    []GraphSummary `json:"graphs"`
}

type errorBody struct {
	Error string `json:"error"`
}

// Server represents the web server
type Server struct {
	router    *mux.Router
	publisher *pubsub.SSEPublisher
	logger    *slog.Logger

	mu      sync.RWMutex
	outcome *analysis.Outcome
}

// NewServer creates a new web server
func NewServer() *Server {
	ssePublisher := pubsub.NewSSEPublisher()

	// Late subscribers only need the current state.
	ssePublisher.ConfigureTopic(pubsub.TopicAnalysisStatus, pubsub.TopicConfig{BufferSize: 10})
	ssePublisher.ConfigureTopic(pubsub.TopicGraphs, pubsub.TopicConfig{BufferSize: 5})

	s := &Server{
		router:    mux.NewRouter(),
		publisher: ssePublisher,
		logger:    logging.New("web"),
	}
	s.setupRoutes()
	return s
}

// PublishStatus publishes an analysis status event
func (s *Server) PublishStatus(state, message string, step, total int) error {
	status := pubsub.AnalysisStatus{
		State:   state,
		Message: message,
		Step:    step,
		Total:   total,
	}
	return s.publisher.Publish(pubsub.TopicAnalysisStatus, state, status)
}

// PublishOutcome stores the outcome served by the API and announces it.
func (s *Server) PublishOutcome(outcome *analysis.Outcome) error {
	s.mu.Lock()
	s.outcome = outcome
	s.mu.Unlock()

	update := pubsub.GraphsUpdated{
		Graphs:        []string{},
		Failed:        []string{},
		HasComparison: outcome.Comparison != nil,
		Reason:        outcome.Reason,
	}
	for _, r := range outcome.Results {
		if r.Err != nil {
			update.Failed = append(update.Failed, r.Input.DisplayName())
		} else {
			update.Graphs = append(update.Graphs, r.Stats.Name)
		}
	}
	return s.publisher.Publish(pubsub.TopicGraphs, "updated", update)
}

func (s *Server) current() *analysis.Outcome {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.outcome
}

func (s *Server) setupRoutes() {
	s.router.Use(logging.RequestIDMiddleware)

	// SSE subscription endpoints
	s.router.HandleFunc("/api/subscribe/status", s.handleSubscribe(pubsub.TopicAnalysisStatus)).Methods("GET")
	s.router.HandleFunc("/api/subscribe/graphs", s.handleSubscribe(pubsub.TopicGraphs)).Methods("GET")

	s.router.HandleFunc("/api/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/api/graphs", s.handleGraphs).Methods("GET")
	s.router.HandleFunc("/api/graphs/{name}/stats", s.handleGraphStats).Methods("GET")
	s.router.HandleFunc("/api/comparison", s.handleComparison).Methods("GET")
	s.router.HandleFunc("/api/report", s.handleReport).Methods("GET")
}

// Handler returns the HTTP handler serving the API.
func (s *Server) Handler() http.Handler {
	return s.router
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

func (s *Server) handleSubscribe(topic string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, err := s.publisher.Subscribe(r.Context(), topic)
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		defer sub.Close()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("Access-Control-Allow-Origin", "*")

		// Initial comment establishes the stream before the first event
		fmt.Fprintf(w, ": connected\n\n")
		flusher, _ := w.(http.Flusher)
		if flusher != nil {
			flusher.Flush()
		}

		for {
			select {
			case <-r.Context().Done():
				return
			case event, ok := <-sub.Events():
				if !ok {
					return
				}
				if err := pubsub.WriteSSE(w, event); err != nil {
					logging.ErrorContext(r.Context(), "error writing SSE event", "topic", topic, "error", err)
					return
				}
				if flusher != nil {
					flusher.Flush()
				}
			}
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "starting"
	if o := s.current(); o != nil {
		status = "ready"
		if o.Err() != nil {
			status = "degraded"
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": status})
}

func (s *Server) handleGraphs(w http.ResponseWriter, r *http.Request) {
	o := s.current()
	if o == nil {
		writeJSON(w, http.StatusOK, GraphList{Graphs: []GraphSummary{}})
		return
	}

	list := GraphList{Reason: o.Reason, Completed: o.Completed, Graphs: make([]GraphSummary, 0, len(o.Results))}
	for _, res := range o.Results {
		g := GraphSummary{
			Name:       res.Input.DisplayName(),
			Path:       res.Input.Path,
			OK:         res.Err == nil,
			DurationMs: res.Duration.Milliseconds(),
			Report:     res.Report,
		}
		if res.Err != nil {
			g.Error = res.Err.Error()
		}
		if res.Report != nil {
			g.Warnings = res.Report.Warnings()
		}
		list.Graphs = append(list.Graphs, g)
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGraphStats(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	o := s.current()
	if o == nil {
		writeError(w, http.StatusServiceUnavailable, "analysis has not completed")
		return
	}
	stats, ok := o.Lookup(name)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no analyzed graph named %q", name))
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleComparison(w http.ResponseWriter, r *http.Request) {
	o := s.current()
	if o == nil {
		writeError(w, http.StatusServiceUnavailable, "analysis has not completed")
		return
	}
	if o.Comparison == nil {
		writeError(w, http.StatusNotFound, "comparison needs two successfully analyzed graphs")
		return
	}
	writeJSON(w, http.StatusOK, o.Comparison)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	o := s.current()
	if o == nil {
		writeError(w, http.StatusServiceUnavailable, "analysis has not completed")
		return
	}
	if len(o.Stats()) == 0 {
		writeError(w, http.StatusNotFound, "no graph was analyzed successfully")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, output.TextReport(output.FromOutcome(o)))
}

// Start serves the API on port until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting web server", "url", fmt.Sprintf("http://localhost:%d", port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Open SSE streams end when their subscriptions close.
	s.publisher.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down web server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
