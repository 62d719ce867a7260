package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palpiteiro/tipengine/internal/generator"
	"github.com/palpiteiro/tipengine/internal/lotto"
	"github.com/palpiteiro/tipengine/internal/policy"
	"github.com/palpiteiro/tipengine/internal/results"
	"github.com/palpiteiro/tipengine/internal/store"
	"github.com/palpiteiro/tipengine/internal/tips"
)

type fakeSyncer struct {
	o   lotto.Official
	err error
}

func (f fakeSyncer) Latest(context.Context) (lotto.Official, results.Source, error) {
	return f.o, results.SourceFallback, f.err
}

func newTestServer(t *testing.T, sync syncer) (*httptest.Server, *store.BadgerStore) {
	t.Helper()
	db, err := store.Open(store.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	for c := 1; c <= 10; c++ {
		nums := make([]int, lotto.PickSize)
		for i := range nums {
			nums[i] = (i*7+c)%lotto.MaxNumber + 1
		}
		require.NoError(t, db.AppendDrawing(ctx, c, lotto.MustDrawing(nums...)))
	}
	day := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	svc := tips.New(db, policy.NewLoader(t.TempDir()), "lotofacil", 20,
		tips.WithSinks(db), tips.WithPickLister(db), tips.WithClock(func() time.Time { return day }))

	srv := httptest.NewServer((&server{svc: svc, fetcher: sync}).routes())
	t.Cleanup(srv.Close)
	return srv, db
}

func getJSON(t *testing.T, method, url string, out any) int {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, jsonOut.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestStatsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	var body statsResp
	assert.Equal(t, http.StatusOK, getJSON(t, http.MethodGet, srv.URL+"/stats?top=4", &body))
	assert.Equal(t, 10, body.Draws)
	assert.Len(t, body.Hot, 4)
	assert.Len(t, body.Cold, 2)
	assert.Len(t, body.MostDrawn, 4)

	resp, err := http.Get(srv.URL + "/stats?top=x")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGenerateEndpoint(t *testing.T) {
	srv, db := newTestServer(t, nil)

	var body tips.Response
	status := getJSON(t, http.MethodPost, srv.URL+"/generate?user=ana&count=3&strategy=cold&date=2025-02-01", &body)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, body.Picks, 3)
	assert.Equal(t, generator.Cold, body.Picks[0].Strategy)

	stored, err := db.ListPicks(context.Background(), "ana")
	require.NoError(t, err)
	assert.Len(t, stored, 3)

	// repeating the same day's request stores nothing new; GET never stores
	getJSON(t, http.MethodPost, srv.URL+"/generate?user=ana&count=3&strategy=cold&date=2025-02-01", nil)
	getJSON(t, http.MethodGet, srv.URL+"/generate?user=ana&count=5&date=2025-02-01", nil)
	stored, err = db.ListPicks(context.Background(), "ana")
	require.NoError(t, err)
	assert.Len(t, stored, 3)

	var again tips.Response
	getJSON(t, http.MethodGet, srv.URL+"/generate?count=3&strategy=cold&date=2025-02-01", &again)
	assert.Equal(t, body.Picks, again.Picks)

	var e errResp
	assert.Equal(t, http.StatusBadRequest, getJSON(t, http.MethodGet, srv.URL+"/generate?count=2&strategy=lucky", &e))
	assert.Contains(t, e.Err, "unknown strategy")
	assert.Equal(t, http.StatusBadRequest, getJSON(t, http.MethodGet, srv.URL+"/generate?count=999", &e))

	resp, err := http.Get(srv.URL + "/generate?date=15-01-2025")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDailyEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	var a, b generator.Pick
	assert.Equal(t, http.StatusOK, getJSON(t, http.MethodGet, srv.URL+"/daily?date=2025-03-01", &a))
	getJSON(t, http.MethodGet, srv.URL+"/daily?date=2025-03-01", &b)
	assert.Equal(t, a, b)
	assert.Len(t, a.Numbers, lotto.PickSize)
	assert.True(t, a.Daily)
}

func TestCheckEndpoint(t *testing.T) {
	srv, db := newTestServer(t, nil)

	var e errResp
	assert.Equal(t, http.StatusBadRequest, getJSON(t, http.MethodGet, srv.URL+"/check", &e))
	assert.Equal(t, http.StatusNotFound, getJSON(t, http.MethodGet, srv.URL+"/check?user=ana", &e))

	var gen tips.Response
	require.Equal(t, http.StatusOK, getJSON(t, http.MethodPost, srv.URL+"/generate?user=ana&count=1", &gen))
	require.NoError(t, db.SaveOfficial(context.Background(), lotto.Official{
		Contest: 11, Drawing: lotto.MustDrawing(gen.Picks[0].Numbers...), Prizes: lotto.ReferenceTable(),
	}))

	var res tips.CheckResult
	assert.Equal(t, http.StatusOK, getJSON(t, http.MethodGet, srv.URL+"/check?user=ana", &res))
	require.Len(t, res.Results, 1)
	assert.Equal(t, 15, res.Results[0].Hits)
	assert.Equal(t, 1, res.Report.Winning)
}

func TestSyncEndpoint(t *testing.T) {
	o := lotto.Official{Contest: 3300, Drawing: lotto.MustDrawing(1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15)}
	srv, _ := newTestServer(t, fakeSyncer{o: o})

	var body syncResp
	assert.Equal(t, http.StatusOK, getJSON(t, http.MethodPost, srv.URL+"/sync", &body))
	assert.Equal(t, results.SourceFallback, body.Source)
	assert.Equal(t, 3300, body.Official.Contest)

	failing, _ := newTestServer(t, fakeSyncer{err: errors.New("both down")})
	var e errResp
	assert.Equal(t, http.StatusInternalServerError, getJSON(t, http.MethodPost, failing.URL+"/sync", &e))
	assert.Equal(t, "both down", e.Err)
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusOf(&lotto.InvalidInputError{Field: "pick"}))
	assert.Equal(t, http.StatusNotFound, statusOf(store.ErrNotFound))
	assert.Equal(t, http.StatusServiceUnavailable, statusOf(context.Canceled))
	assert.Equal(t, http.StatusInternalServerError, statusOf(errors.New("x")))
}
