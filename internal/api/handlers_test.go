package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundingforward/outreach/internal/domain"
)

type fakeStore struct {
	cols map[domain.Day]*domain.DayCollection
}

func (f *fakeStore) ReadDayCollection(day domain.Day) (*domain.DayCollection, error) {
	col, ok := f.cols[day]
	if !ok {
		return nil, os.ErrNotExist
	}
	return col, nil
}

func (f *fakeStore) AvailableDays() []domain.Day {
	var days []domain.Day
	for _, day := range domain.AllDays() {
		if _, ok := f.cols[day]; ok {
			days = append(days, day)
		}
	}
	return days
}

type fakeRunner struct {
	calls int
	col   *domain.DayCollection
	err   error
}

func (f *fakeRunner) Run(ctx context.Context, day domain.Day) (*domain.DayCollection, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.col, nil
}

func sampleCollection(day domain.Day) *domain.DayCollection {
	return &domain.DayCollection{
		Day:         day,
		GeneratedAt: time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
		Statistics: domain.BatchStatistics{
			Total:     2,
			Generated: 1,
			Blocked:   1,
			ByReason:  map[domain.BlockReason]int{domain.ReasonOptedOut: 1},
		},
		Emails: []domain.ResultRecord{
			{
				RecipientID: "r-001", EventID: "e-001", Day: day,
				Status: domain.StatusGenerated,
				Email:  &domain.EmailContent{Subject: "S", Body: "B"},
			},
			{
				RecipientID: "r-002", EventID: "e-001", Day: day,
				Status: domain.StatusBlocked, Reason: domain.ReasonOptedOut,
			},
		},
	}
}

func testServer(store CollectionStore, runner Runner) *httptest.Server {
	return httptest.NewServer(Routes(NewHandlers(store, runner)))
}

func getJSON(t *testing.T, url string, out interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHealthCheck(t *testing.T) {
	srv := testServer(&fakeStore{}, nil)
	defer srv.Close()

	var body map[string]string
	code := getJSON(t, srv.URL+"/health", &body)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}

func TestGetDay(t *testing.T) {
	store := &fakeStore{cols: map[domain.Day]*domain.DayCollection{
		domain.DayConfirmation: sampleCollection(domain.DayConfirmation),
	}}
	srv := testServer(store, nil)
	defer srv.Close()

	t.Run("found", func(t *testing.T) {
		var col domain.DayCollection
		code := getJSON(t, srv.URL+"/api/days/0", &col)
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, domain.DayConfirmation, col.Day)
		assert.Len(t, col.Emails, 2)
	})

	t.Run("unknown day", func(t *testing.T) {
		code := getJSON(t, srv.URL+"/api/days/99", nil)
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("no artifact", func(t *testing.T) {
		code := getJSON(t, srv.URL+"/api/days/7b", nil)
		assert.Equal(t, http.StatusNotFound, code)
	})
}

func TestListDays(t *testing.T) {
	store := &fakeStore{cols: map[domain.Day]*domain.DayCollection{
		domain.DayConfirmation: sampleCollection(domain.DayConfirmation),
		domain.DayFinalPush:    sampleCollection(domain.DayFinalPush),
	}}
	srv := testServer(store, nil)
	defer srv.Close()

	var body struct {
		Days []domain.Day `json:"days"`
	}
	code := getJSON(t, srv.URL+"/api/days", &body)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, []domain.Day{domain.DayConfirmation, domain.DayFinalPush}, body.Days)
}

func TestGetStats(t *testing.T) {
	store := &fakeStore{cols: map[domain.Day]*domain.DayCollection{
		domain.DayConfirmation:   sampleCollection(domain.DayConfirmation),
		domain.DayIndoctrination: sampleCollection(domain.DayIndoctrination),
	}}
	srv := testServer(store, nil)
	defer srv.Close()

	var body struct {
		Days    []dayStats             `json:"days"`
		Overall domain.BatchStatistics `json:"overall"`
	}
	code := getJSON(t, srv.URL+"/api/stats", &body)
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, body.Days, 2)
	assert.Equal(t, 4, body.Overall.Total)
	assert.Equal(t, 2, body.Overall.Generated)
	assert.Equal(t, 2, body.Overall.ByReason[domain.ReasonOptedOut])
}

func TestGenerate(t *testing.T) {
	runner := &fakeRunner{col: sampleCollection(domain.DayConfirmation)}
	srv := testServer(&fakeStore{}, runner)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/generate", "application/json",
		strings.NewReader(`{"day":"0"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, runner.calls)

	var col domain.DayCollection
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&col))
	assert.Equal(t, domain.DayConfirmation, col.Day)
}

func TestGenerate_Errors(t *testing.T) {
	t.Run("bad day", func(t *testing.T) {
		srv := testServer(&fakeStore{}, &fakeRunner{})
		defer srv.Close()

		resp, err := http.Post(srv.URL+"/api/generate", "application/json",
			strings.NewReader(`{"day":"99"}`))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("no runner", func(t *testing.T) {
		srv := testServer(&fakeStore{}, nil)
		defer srv.Close()

		resp, err := http.Post(srv.URL+"/api/generate", "application/json",
			strings.NewReader(`{"day":"0"}`))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})
}
