package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/palpiteiro/tipengine/internal/generator"
	"github.com/palpiteiro/tipengine/internal/lotto"
	"github.com/palpiteiro/tipengine/internal/policy"
	"github.com/palpiteiro/tipengine/internal/results"
	"github.com/palpiteiro/tipengine/internal/stats"
	"github.com/palpiteiro/tipengine/internal/store"
	"github.com/palpiteiro/tipengine/internal/tips"
)

type errResp struct {
	Err string `json:"err"`
}

type statsResp struct {
	Draws       int                      `json:"draws"`
	Hot         []int                    `json:"hot"`
	Cold        []int                    `json:"cold"`
	Mode        int                      `json:"mode"`
	Overdue     []int                    `json:"overdue"`
	MostDrawn   []stats.Count            `json:"most_drawn"`
	LeastDrawn  []stats.Count            `json:"least_drawn"`
	AverageSum  float64                  `json:"average_sum"`
	AverageEven float64                  `json:"average_even"`
	AverageOdd  float64                  `json:"average_odd"`
	Endings     [10]int                  `json:"endings"`
	Delay       [lotto.MaxNumber + 1]int `json:"delay"`
}

// newStatsResp lists top hot/overdue numbers and half as many cold ones.
func newStatsResp(snap stats.Snapshot, top int) statsResp {
	return statsResp{
		Draws:       snap.Draws,
		Hot:         snap.Hot(top),
		Cold:        snap.Cold(top / 2),
		Mode:        snap.Mode(),
		Overdue:     snap.Overdue(top),
		MostDrawn:   snap.MostDrawn(top),
		LeastDrawn:  snap.LeastDrawn(top),
		AverageSum:  snap.AverageSum,
		AverageEven: snap.AverageEven,
		AverageOdd:  snap.AverageOdd,
		Endings:     snap.Endings,
		Delay:       snap.Delay,
	}
}

type syncResp struct {
	Source   results.Source `json:"source"`
	Official lotto.Official `json:"official"`
}

// syncer fetches the latest official result.
type syncer interface {
	Latest(ctx context.Context) (lotto.Official, results.Source, error)
}

type server struct {
	svc     *tips.Service
	fetcher syncer
}

func (s *server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	mux.HandleFunc("GET /stats", s.handleStats)
	mux.HandleFunc("/generate", s.handleGenerate)
	mux.HandleFunc("GET /daily", s.handleDaily)
	mux.HandleFunc("GET /check", s.handleCheck)
	mux.HandleFunc("POST /sync", s.handleSync)
	return mux
}

func parseInt(r *http.Request, key string) (int, bool, string) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return 0, false, ""
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false, "invalid " + key
	}
	return v, true, ""
}

func parseDate(r *http.Request) (time.Time, string) {
	s := r.URL.Query().Get("date")
	if s == "" {
		return time.Time{}, ""
	}
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, "invalid date, want YYYY-MM-DD"
	}
	return d, ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = jsonOut.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, err error) {
	writeJSON(w, statusOf(err), errResp{Err: err.Error()})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, lotto.ErrInvalidInput),
		errors.Is(err, generator.ErrInvalidCount),
		errors.Is(err, generator.ErrUnknownStrategy),
		errors.Is(err, policy.ErrInvalidName),
		errors.Is(err, tips.ErrNoUser):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (s *server) handleStats(w http.ResponseWriter, r *http.Request) {
	top, ok, msg := parseInt(r, "top")
	if msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	if !ok {
		top = 10
	}
	snap, err := s.svc.Stats(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newStatsResp(snap, top))
}

// /generate?user=&count=&strategy=&mode=&vip=&date=
// GET previews; only POST stores picks for user.
func (s *server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	count, _, msg := parseInt(r, "count")
	if msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	date, msg := parseDate(r)
	if msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	q := r.URL.Query()
	vip, _ := strconv.ParseBool(q.Get("vip"))

	resp, err := s.svc.Generate(r.Context(), tips.Request{
		User:     q.Get("user"),
		Count:    count,
		Strategy: q.Get("strategy"),
		Mode:     q.Get("mode"),
		VIP:      vip,
		Date:     date,
		DryRun:   r.Method == http.MethodGet,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) handleDaily(w http.ResponseWriter, r *http.Request) {
	date, msg := parseDate(r)
	if msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	p, err := s.svc.Daily(r.Context(), date)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *server) handleCheck(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Check(r.Context(), r.URL.Query().Get("user"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *server) handleSync(w http.ResponseWriter, r *http.Request) {
	o, src, err := s.fetcher.Latest(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, syncResp{Source: src, Official: o})
}
