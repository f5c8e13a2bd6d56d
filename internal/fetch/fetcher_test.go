package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func okResponse(body string) *http.Response {
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func newTestFetcher(rt roundTripFunc, opts ...Option) *Fetcher {
	opts = append([]Option{WithHTTPClient(&http.Client{Transport: rt})}, opts...)
	return New(opts...)
}

var creds = UserPassword{Username: "user", Password: "pass"}

func TestFetch_ThreeTimeoutsExhaust(t *testing.T) {
	var calls int32
	f := newTestFetcher(func(*http.Request) (*http.Response, error) {
		atomic.AddInt32(&calls, 1)
		return nil, timeoutErr{}
	})

	_, err := f.Fetch(context.Background(), Request{Name: "flight_api", Method: http.MethodPost, URL: "http://travel.test/search"}, creds)
	require.ErrorIs(t, err, ErrExhausted)
	require.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestFetch_NonTimeoutErrorAbortsImmediately(t *testing.T) {
	var calls int32
	f := newTestFetcher(func(*http.Request) (*http.Response, error) {
		atomic.AddInt32(&calls, 1)
		return nil, errors.New("connection reset")
	})

	_, err := f.Fetch(context.Background(), Request{Name: "flight_api", URL: "http://travel.test/search"}, creds)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrExhausted)
	require.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestFetch_HTTPErrorAbortsImmediately(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := New().Fetch(context.Background(), Request{Name: "hotel_api", Method: http.MethodPost, URL: srv.URL, Body: map[string]int{"a": 1}}, creds)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusInternalServerError, statusErr.HTTPStatusCode())
	require.Equal(t, "boom", statusErr.Body)
	require.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestFetch_UnauthorizedIsDistinct(t *testing.T) {
	f := newTestFetcher(func(*http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusUnauthorized, Header: make(http.Header), Body: io.NopCloser(strings.NewReader("nope"))}, nil
	})

	_, err := f.Fetch(context.Background(), Request{Name: "visa_api", URL: "http://visa.test/x"}, Token{Value: "tkn"})
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestFetch_MissingCredentialsSkipsNetwork(t *testing.T) {
	var calls int32
	f := newTestFetcher(func(*http.Request) (*http.Response, error) {
		atomic.AddInt32(&calls, 1)
		return okResponse(`{}`), nil
	})

	_, err := f.Fetch(context.Background(), Request{URL: "http://travel.test"}, UserPassword{Username: "u"})
	require.ErrorIs(t, err, ErrMissingCredentials)

	_, err = f.Fetch(context.Background(), Request{URL: "http://travel.test"}, nil)
	require.ErrorIs(t, err, ErrMissingCredentials)

	_, err = f.Fetch(context.Background(), Request{URL: "http://visa.test"}, Token{})
	require.ErrorIs(t, err, ErrMissingCredentials)
	require.Zero(t, atomic.LoadInt32(&calls))
}

func TestFetch_RecoversAfterTimeout(t *testing.T) {
	var calls int32
	var seen *http.Request
	f := newTestFetcher(func(r *http.Request) (*http.Response, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return nil, timeoutErr{}
		}
		seen = r
		return okResponse(`{"Result":[]}`), nil
	})

	body, err := f.Fetch(context.Background(), Request{Name: "flight_api", Method: http.MethodPost, URL: "http://travel.test/search", Body: map[string]int{"Adult": 2}}, creds)
	require.NoError(t, err)
	require.JSONEq(t, `{"Result":[]}`, string(body))
	require.EqualValues(t, 2, atomic.LoadInt32(&calls))
	require.Equal(t, "user", seen.Header.Get("Username"))
	require.Equal(t, "pass", seen.Header.Get("Password"))
	require.Equal(t, "application/json", seen.Header.Get("Content-Type"))

	var sent map[string]int
	raw, err := io.ReadAll(seen.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &sent))
	require.Equal(t, 2, sent["Adult"])
}

func TestFetch_PerAttemptTimeout(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	f := New(WithTimeout(20 * time.Millisecond))
	_, err := f.Fetch(context.Background(), Request{Name: "slow_api", URL: srv.URL}, Token{Value: "t"})
	require.ErrorIs(t, err, ErrExhausted)
	require.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestFetch_CanceledParentIsNotRetried(t *testing.T) {
	var calls int32
	ctx, cancel := context.WithCancel(context.Background())
	f := newTestFetcher(func(r *http.Request) (*http.Response, error) {
		atomic.AddInt32(&calls, 1)
		cancel()
		return nil, context.DeadlineExceeded
	})

	_, err := f.Fetch(ctx, Request{URL: "http://travel.test"}, creds)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrExhausted)
	require.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestTokenCredentials_DefaultHeader(t *testing.T) {
	h := make(http.Header)
	Token{Value: "abc"}.Apply(h)
	require.Equal(t, "abc", h.Get("token"))

	h = make(http.Header)
	Token{Header: "X-Api-Key", Value: "abc"}.Apply(h)
	require.Equal(t, "abc", h.Get("X-Api-Key"))
}
