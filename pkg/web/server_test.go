package web

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collaborativebioinformatics/Pangenome-and-Genomic-Cluster-Modeling/pkg/analysis"
	"github.com/collaborativebioinformatics/Pangenome-and-Genomic-Cluster-Modeling/pkg/compare"
	"github.com/collaborativebioinformatics/Pangenome-and-Genomic-Cluster-Modeling/pkg/gfa"
	"github.com/collaborativebioinformatics/Pangenome-and-Genomic-Cluster-Modeling/pkg/logging"
	"github.com/collaborativebioinformatics/Pangenome-and-Genomic-Cluster-Modeling/pkg/model"
)

func twoGraphOutcome() *analysis.Outcome {
	a := &model.Stats{Name: "pggb", NumNodes: 10, NumEdges: 12, BranchRatio: 0.3, N50: 40}
	b := &model.Stats{Name: "minigraph", NumNodes: 4, NumEdges: 5, BranchRatio: 0.1, N50: 90}
	return &analysis.Outcome{
		Reason: "startup",
		Results: []analysis.Result{
			{Input: analysis.Input{Name: "pggb", Path: "/data/pggb.gfa"}, Stats: a, Report: &gfa.Report{Lines: 30, Malformed: 2}, Duration: 1500 * time.Millisecond},
			{Input: analysis.Input{Name: "minigraph", Path: "/data/mg.gfa"}, Stats: b, Report: &gfa.Report{Lines: 9}},
		},
		Comparison: compare.Compare(a, b),
		Completed:  time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := NewServer()

	rec := get(t, s, "/api/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"starting"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(logging.RequestIDHeader))

	require.NoError(t, s.PublishOutcome(twoGraphOutcome()))
	assert.JSONEq(t, `{"status":"ready"}`, get(t, s, "/api/health").Body.String())

	failed := twoGraphOutcome()
	failed.Results[1] = analysis.Result{Input: analysis.Input{Path: "/data/x.gfa"}, Err: errors.New("boom")}
	require.NoError(t, s.PublishOutcome(failed))
	assert.JSONEq(t, `{"status":"degraded"}`, get(t, s, "/api/health").Body.String())
}

func TestRequestIDIsEchoed(t *testing.T) {
	s := NewServer()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set(logging.RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()

	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(logging.RequestIDHeader))
}

func TestGraphs(t *testing.T) {
	s := NewServer()

	var empty GraphList
	require.NoError(t, json.Unmarshal(get(t, s, "/api/graphs").Body.Bytes(), &empty))
	assert.Empty(t, empty.Graphs)

	require.NoError(t, s.PublishOutcome(twoGraphOutcome()))
	rec := get(t, s, "/api/graphs")
	require.Equal(t, http.StatusOK, rec.Code)

	var list GraphList
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, "startup", list.Reason)
	require.Len(t, list.Graphs, 2)
	assert.Equal(t, "pggb", list.Graphs[0].Name)
	assert.True(t, list.Graphs[0].OK)
	assert.Equal(t, int64(1500), list.Graphs[0].DurationMs)
	assert.Equal(t, 2, list.Graphs[0].Warnings)
	assert.Equal(t, 30, list.Graphs[0].Report.Lines)
}

func TestGraphStats(t *testing.T) {
	s := NewServer()
	assert.Equal(t, http.StatusServiceUnavailable, get(t, s, "/api/graphs/pggb/stats").Code)

	require.NoError(t, s.PublishOutcome(twoGraphOutcome()))

	rec := get(t, s, "/api/graphs/minigraph/stats")
	require.Equal(t, http.StatusOK, rec.Code)
	var stats model.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 4, stats.NumNodes)

	rec = get(t, s, "/api/graphs/nope/stats")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `no analyzed graph named \"nope\"`)
}

func TestComparison(t *testing.T) {
	s := NewServer()
	require.NoError(t, s.PublishOutcome(twoGraphOutcome()))

	rec := get(t, s, "/api/comparison")
	require.Equal(t, http.StatusOK, rec.Code)
	var c model.Comparison
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
	assert.Equal(t, "pggb", c.LargerByNodes)
	assert.Equal(t, "pggb", c.MoreComplex)
	ratio, ok := c.Ratio("num_nodes")
	require.True(t, ok)
	assert.InDelta(t, 2.5, ratio.Ratio, 1e-9)

	single := twoGraphOutcome()
	single.Results = single.Results[:1]
	single.Comparison = nil
	require.NoError(t, s.PublishOutcome(single))
	assert.Equal(t, http.StatusNotFound, get(t, s, "/api/comparison").Code)
}

func TestReport(t *testing.T) {
	s := NewServer()
	require.NoError(t, s.PublishOutcome(twoGraphOutcome()))

	rec := get(t, s, "/api/report")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, rec.Body.String(), "COMPARISON TABLE")
	assert.Contains(t, rec.Body.String(), "Generated: 2025-01-02 03:04:05")
}

func TestReport_FailedFirstGraphKeepsPosition(t *testing.T) {
	s := NewServer()
	o := twoGraphOutcome()
	o.Results[0] = analysis.Result{Input: analysis.Input{Name: "pggb", Path: "/data/pggb.gfa"}, Err: errors.New("boom")}
	o.Comparison = nil
	require.NoError(t, s.PublishOutcome(o))

	rec := get(t, s, "/api/report")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "GRAPH 1: pggb\n")
	assert.Contains(t, body, "analysis failed: boom")
	assert.Contains(t, body, "GRAPH 2: minigraph\n")
}

func TestMethodNotAllowed(t *testing.T) {
	s := NewServer()
	req := httptest.NewRequest(http.MethodPost, "/api/graphs", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSubscribeStatusReplaysCurrentState(t *testing.T) {
	s := NewServer()
	require.NoError(t, s.PublishStatus("analyzing", "Analyzing 2 graph(s)...", 1, 2))
	require.NoError(t, s.PublishStatus("ready", "Analysis complete", 2, 2))

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/subscribe/status", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	var data string
	for data == "" {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if rest, ok := strings.CutPrefix(line, "data: "); ok {
			data = rest
		}
	}

	var event struct {
		Type    string `json:"type"`
		Version int    `json:"version"`
		Data    struct {
			State string `json:"state"`
			Step  int    `json:"step"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(data), &event))
	assert.Equal(t, "ready", event.Type)
	assert.Equal(t, 2, event.Version)
	assert.Equal(t, 2, event.Data.Step)
}

func TestStartStopsWithContext(t *testing.T) {
	s := NewServer()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Start(ctx, 0) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}
