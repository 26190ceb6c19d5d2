// Package daemon provides the long-running watch service: it rescans a
// project when files change, reloads the policy when its file changes, and
// serves results over HTTP.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/theirongolddev/greenlint/internal/config"
	"github.com/theirongolddev/greenlint/internal/estimate"
	"github.com/theirongolddev/greenlint/internal/model"
	"github.com/theirongolddev/greenlint/internal/pipeline"
	"github.com/theirongolddev/greenlint/internal/source"
)

// Config controls the daemon runtime behavior.
type Config struct {
	Root          string
	PolicyPath    string
	Addr          string
	Debounce      time.Duration
	EventsBuffer  int
	Workers       int
	MaxViolations int
	Estimator     config.EstimatorConfig

	// OnScan, if set, is called after every successful scan.
	OnScan func(*model.ScanResult)
}

// Snapshot is a compact scan state for status/event payloads.
type Snapshot struct {
	At          time.Time `json:"at"`
	Passed      bool      `json:"passed"`
	Carbon      float64   `json:"carbon_g"`
	CostUSD     float64   `json:"cost_usd"`
	Files       int       `json:"files"`
	APICalls    int       `json:"api_calls"`
	Errors      int       `json:"errors"`
	Warnings    int       `json:"warnings"`
	Infos       int       `json:"infos"`
	Suggestions int       `json:"suggestions"`
	Policy      uint64    `json:"policy_generation"`
}

// Delta captures snapshot deltas between scans.
type Delta struct {
	Carbon      float64 `json:"carbon_g"`
	CostUSD     float64 `json:"cost_usd"`
	Files       int     `json:"files"`
	APICalls    int     `json:"api_calls"`
	Errors      int     `json:"errors"`
	Warnings    int     `json:"warnings"`
	Suggestions int     `json:"suggestions"`
	Verdict     bool    `json:"verdict_changed"`
}

func (d Delta) isZero() bool {
	return d.Carbon == 0 &&
		d.CostUSD == 0 &&
		d.Files == 0 &&
		d.APICalls == 0 &&
		d.Errors == 0 &&
		d.Warnings == 0 &&
		d.Suggestions == 0 &&
		!d.Verdict
}

// Event types.
const (
	EventSnapshot     = "snapshot"
	EventScanDelta    = "scan_delta"
	EventPolicyReload = "policy_reloaded"
	EventScanError    = "scan_error"
)

// Event is emitted whenever the scan state or policy changes.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
	Message   string    `json:"message,omitempty"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastScanAt      time.Time `json:"last_scan_at"`
	ScanCount       int64     `json:"scan_count"`
	Root            string    `json:"root"`
	PolicyPath      string    `json:"policy_path"`
	PolicyError     string    `json:"policy_error,omitempty"`
	DebounceMS      int64     `json:"debounce_ms"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg      Config
	policies *config.PolicyStore
	analyzer *pipeline.Analyzer
	metrics  *Metrics

	scanMu sync.Mutex // serializes scans

	mu          sync.RWMutex
	startedAt   time.Time
	lastScanAt  time.Time
	scanCount   int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	result      *model.ScanResult
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service with the provided config. The policy is
// loaded immediately; a broken policy file leaves defaults in force and is
// reported in Status.
func New(cfg Config) (*Service, error) {
	if cfg.Debounce <= 0 {
		cfg.Debounce = 300 * time.Millisecond
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if cfg.Root == "" {
		cfg.Root = "."
	}
	if cfg.PolicyPath == "" {
		cfg.PolicyPath = config.PolicyPath(cfg.Root, "")
	}

	an, err := pipeline.NewAnalyzer(estimate.New(cfg.Estimator), pipeline.DefaultCacheSize)
	if err != nil {
		return nil, err
	}

	s := &Service{
		cfg:       cfg,
		policies:  config.NewPolicyStore(cfg.PolicyPath),
		analyzer:  an,
		metrics:   NewMetrics(),
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
	if msg := s.policies.Err(); msg != "" {
		log.Printf("greenlint daemon: %s (using defaults)", msg)
	}
	s.metrics.policyGeneration.Set(float64(s.policies.Generation()))
	return s, nil
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/status", s.handleStatus)
	mux.HandleFunc("/v1/result", s.handleResult)
	mux.HandleFunc("/v1/events", s.handleEvents)
	mux.HandleFunc("/v1/stream", s.handleStream)
	mux.HandleFunc("/v1/analyze", s.handleAnalyze)
	mux.Handle("/metrics", s.metrics.Handler())
	return mux
}

// Run starts HTTP endpoints and the file watcher until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	go func() {
		if err := s.watch(watchCtx); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		return fmt.Errorf("daemon: %w", err)
	}
}

// Rescan runs one scan with the current policy and publishes the outcome.
func (s *Service) Rescan(ctx context.Context) {
	s.scanMu.Lock()
	defer s.scanMu.Unlock()

	start := time.Now()
	gen := s.policies.Generation()
	r, err := pipeline.Scan(ctx, s.cfg.Root, pipeline.Options{
		Policy:        s.policies.Current(),
		Analyzer:      s.analyzer,
		Workers:       s.cfg.Workers,
		MaxViolations: s.cfg.MaxViolations,
	})
	now := time.Now()
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastScanAt = now
		s.scanCount++
		s.nextEventID++
		ev := Event{ID: s.nextEventID, Type: EventScanError, Timestamp: now, Snapshot: s.snapshot, Message: err.Error()}
		s.mu.Unlock()
		s.metrics.scanFailed()
		log.Printf("greenlint daemon scan error: %v", err)
		s.publishEvent(ev)
		return
	}

	snap := snapshotFromResult(r, gen, now)
	s.metrics.observe(r, now.Sub(start))

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.result = r
	s.lastScanAt = now
	s.scanCount++
	s.lastError = ""

	if !prevExists {
		s.nextEventID++
		ev = Event{ID: s.nextEventID, Type: EventSnapshot, Timestamp: now, Snapshot: snap}
		publish = true
	} else if delta := diffSnapshots(prev, snap); !delta.isZero() {
		s.nextEventID++
		ev = Event{ID: s.nextEventID, Type: EventScanDelta, Timestamp: now, Snapshot: snap, Delta: delta}
		publish = true
	}
	s.mu.Unlock()

	if publish {
		s.publishEvent(ev)
	}
	if s.cfg.OnScan != nil {
		s.cfg.OnScan(r)
	}
}

// ReloadPolicy replaces the policy from disk and announces the new
// generation. A malformed file installs defaults.
func (s *Service) ReloadPolicy() {
	err := s.policies.Reload()
	s.metrics.policyGeneration.Set(float64(s.policies.Generation()))

	msg := "policy reloaded"
	if err != nil {
		msg = err.Error() + " (using defaults)"
		log.Printf("greenlint daemon: %s", msg)
	}

	s.mu.Lock()
	s.nextEventID++
	ev := Event{ID: s.nextEventID, Type: EventPolicyReload, Timestamp: time.Now(), Snapshot: s.snapshot, Message: msg}
	s.mu.Unlock()
	s.publishEvent(ev)
}

// Result returns the latest scan result, or nil before the first scan.
func (s *Service) Result() *model.ScanResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result
}

func snapshotFromResult(r *model.ScanResult, gen uint64, at time.Time) Snapshot {
	errs, warns, infos := r.Counts()
	return Snapshot{
		At:          at,
		Passed:      r.Passed,
		Carbon:      r.TotalCarbon,
		CostUSD:     r.TotalCost,
		Files:       r.FilesScanned,
		APICalls:    r.APICalls,
		Errors:      errs,
		Warnings:    warns,
		Infos:       infos,
		Suggestions: len(r.Suggestions),
		Policy:      gen,
	}
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		Carbon:      curr.Carbon - prev.Carbon,
		CostUSD:     curr.CostUSD - prev.CostUSD,
		Files:       curr.Files - prev.Files,
		APICalls:    curr.APICalls - prev.APICalls,
		Errors:      curr.Errors - prev.Errors,
		Warnings:    curr.Warnings - prev.Warnings,
		Suggestions: curr.Suggestions - prev.Suggestions,
		Verdict:     curr.Passed != prev.Passed,
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastScanAt:      s.lastScanAt,
		ScanCount:       s.scanCount,
		Root:            s.cfg.Root,
		PolicyPath:      s.policies.Path(),
		PolicyError:     s.policies.Err(),
		DebounceMS:      s.cfg.Debounce.Milliseconds(),
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleResult(w http.ResponseWriter, _ *http.Request) {
	r := s.Result()
	if r == nil {
		http.Error(w, "no scan yet", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, r)
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

// AnalyzeRequest is the POST /v1/analyze body.
type AnalyzeRequest struct {
	Path     string `json:"path"`
	Language string `json:"language,omitempty"`
	Content  string `json:"content"`
}

// AnalyzeResponse lists one file's located violations and suggestions.
type AnalyzeResponse struct {
	Path       string            `json:"path"`
	Violations []model.Violation `json:"violations"`
}

func (s *Service) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req AnalyzeRequest
	body := http.MaxBytesReader(w, r.Body, source.MaxFileSize)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		http.Error(w, "invalid request: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Path == "" {
		http.Error(w, "path is required", http.StatusBadRequest)
		return
	}
	s.metrics.analyzeRequests.Inc()

	vs := pipeline.Analyze(s.policies.Current(), s.analyzer.Estimator(), req.Path, req.Language, req.Content)
	if vs == nil {
		vs = []model.Violation{}
	}
	writeJSON(w, http.StatusOK, AnalyzeResponse{Path: req.Path, Violations: vs})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	current := Event{
		Type:      EventSnapshot,
		Timestamp: time.Now(),
		Snapshot:  s.snapshotStatus().Summary,
	}
	writeSSE(w, current)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
