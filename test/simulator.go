package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"time"
)

type envelope struct {
	Data json.RawMessage `json:"data"`
}

type Stats struct {
	created       atomic.Int64
	assignedAtNew atomic.Int64
	finished      atomic.Int64
	skipped       atomic.Int64
	failed        atomic.Int64
	totalLatency  atomic.Int64
	calls         atomic.Int64
	maxLatency    atomic.Int64
}

// Simulator drives a running server: attendants join the queue and work
// their sessions while customers open requests at a fixed rate.
type Simulator struct {
	serverURL     string
	numAttendants int
	targetRPS     int
	duration      time.Duration
	skipRatio     float64
	attendants    []int64
	stats         Stats
	httpClient    *http.Client
}

func NewSimulator(serverURL string, numAttendants, targetRPS int, duration time.Duration) *Simulator {
	return &Simulator{
		serverURL:     serverURL,
		numAttendants: numAttendants,
		targetRPS:     targetRPS,
		duration:      duration,
		skipRatio:     0.2,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        200,
				MaxIdleConnsPerHost: 200,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

func (s *Simulator) call(ctx context.Context, method, path string, user int64, body interface{}, out interface{}) (int, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return 0, fmt.Errorf("marshal error: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, s.serverURL+path, &buf)
	if err != nil {
		return 0, fmt.Errorf("create request error: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if user > 0 {
		req.Header.Set("X-Auth-User-Id", fmt.Sprint(user))
	}

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	s.observe(time.Since(start).Milliseconds())
	if err != nil {
		return 0, fmt.Errorf("request error: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if out != nil && resp.StatusCode < 300 {
		var env envelope
		if err := json.Unmarshal(raw, &env); err == nil {
			_ = json.Unmarshal(env.Data, out)
		}
	}
	return resp.StatusCode, nil
}

func (s *Simulator) observe(latency int64) {
	s.stats.calls.Add(1)
	s.stats.totalLatency.Add(latency)
	for {
		currentMax := s.stats.maxLatency.Load()
		if latency <= currentMax || s.stats.maxLatency.CompareAndSwap(currentMax, latency) {
			return
		}
	}
}

// setup registers the attendants and puts them in the queue.
func (s *Simulator) setup(ctx context.Context) error {
	stamp := time.Now().Unix()
	for i := 0; i < s.numAttendants; i++ {
		var a struct {
			ID int64 `json:"id"`
		}
		code, err := s.call(ctx, http.MethodPost, "/v1/attendants", 0, map[string]string{
			"name":  fmt.Sprintf("sim attendant %d", i),
			"email": fmt.Sprintf("sim-%d-%d@example.com", stamp, i),
		}, &a)
		if err != nil || code != http.StatusCreated {
			return fmt.Errorf("register attendant %d: status %d: %v", i, code, err)
		}

		if code, err := s.call(ctx, http.MethodPost, "/v1/queue/join", a.ID, nil, nil); err != nil || code != http.StatusOK {
			return fmt.Errorf("join attendant %d: status %d: %v", a.ID, code, err)
		}
		s.attendants = append(s.attendants, a.ID)
	}
	return nil
}

func (s *Simulator) createRequest(ctx context.Context, n int64) {
	var created struct {
		Assigned bool `json:"assigned"`
	}
	code, err := s.call(ctx, http.MethodPost, "/v1/requests", s.attendants[0], map[string]string{
		"description":   fmt.Sprintf("simulated request %d", n),
		"customer_name": fmt.Sprintf("customer %d", rand.Intn(10000)),
	}, &created)
	if err != nil || code != http.StatusCreated {
		s.stats.failed.Add(1)
		return
	}
	s.stats.created.Add(1)
	if created.Assigned {
		s.stats.assignedAtNew.Add(1)
	}
}

// work polls the attendant's current session and closes it after a short
// random hold, skipping a share of them.
func (s *Simulator) work(ctx context.Context, attendantID int64) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Duration(50+rand.Intn(200)) * time.Millisecond):
		}

		var current *struct {
			RequestID int64 `json:"request_id"`
		}
		if code, err := s.call(ctx, http.MethodGet, "/v1/sessions/current", attendantID, nil, &current); err != nil || code != http.StatusOK {
			continue
		}
		if current == nil {
			continue
		}

		path, counter := "/v1/sessions/finish", &s.stats.finished
		if rand.Float64() < s.skipRatio {
			path, counter = "/v1/sessions/skip", &s.stats.skipped
		}
		code, err := s.call(ctx, http.MethodPost, path, attendantID, map[string]interface{}{"request_id": current.RequestID}, nil)
		switch {
		case err != nil:
			s.stats.failed.Add(1)
		case code == http.StatusOK:
			counter.Add(1)
		case code == http.StatusNotFound:
			// swept or released in the meantime
		default:
			s.stats.failed.Add(1)
		}
	}
}

func (s *Simulator) Run(ctx context.Context) error {
	fmt.Printf("Target Server:     %s\n", s.serverURL)
	fmt.Printf("Attendants:        %d\n", s.numAttendants)
	fmt.Printf("Target RPS:        %d requests/second\n", s.targetRPS)
	fmt.Printf("Duration:          %s\n\n", s.duration)

	if err := s.setup(ctx); err != nil {
		return err
	}

	testCtx, cancel := context.WithTimeout(ctx, s.duration)
	defer cancel()

	var wg sync.WaitGroup
	for _, id := range s.attendants {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			s.work(testCtx, id)
		}(id)
	}

	ticker := time.NewTicker(time.Second / time.Duration(s.targetRPS))
	defer ticker.Stop()
	report := time.NewTicker(2 * time.Second)
	defer report.Stop()

	start := time.Now()
	var n int64
	for {
		select {
		case <-testCtx.Done():
			wg.Wait()
			s.printFinalReport(time.Since(start))
			return nil
		case <-report.C:
			s.printStats()
		case <-ticker.C:
			n++
			wg.Add(1)
			go func(n int64) {
				defer wg.Done()
				s.createRequest(testCtx, n)
			}(n)
		}
	}
}

func (s *Simulator) printStats() {
	avg := int64(0)
	if calls := s.stats.calls.Load(); calls > 0 {
		avg = s.stats.totalLatency.Load() / calls
	}
	fmt.Printf("created: %6d | assigned on create: %6d | finished: %6d | skipped: %6d | failed: %4d | latency (ms): avg=%d max=%d\n",
		s.stats.created.Load(), s.stats.assignedAtNew.Load(), s.stats.finished.Load(),
		s.stats.skipped.Load(), s.stats.failed.Load(), avg, s.stats.maxLatency.Load())
}

func (s *Simulator) printFinalReport(duration time.Duration) {
	fmt.Printf("\nFINAL REPORT after %s\n", duration.Round(time.Second))
	s.printStats()

	var global json.RawMessage
	if code, err := s.call(context.Background(), http.MethodGet, "/v1/stats", s.attendants[0], nil, &global); err == nil && code == http.StatusOK {
		fmt.Printf("server stats: %s\n", global)
	}
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if len(os.Args) < 2 || os.Args[1] != "run" {
		fmt.Printf("Usage: %s run\n", os.Args[0])
		os.Exit(1)
	}

	const (
		serverURL     = "http://localhost:8080"
		numAttendants = 20
		targetRPS     = 50
		testDuration  = time.Minute
	)

	s := NewSimulator(serverURL, numAttendants, targetRPS, testDuration)
	if err := s.Run(ctx); err != nil {
		fmt.Printf("simulation failed: %v\n", err)
		os.Exit(1)
	}
}
