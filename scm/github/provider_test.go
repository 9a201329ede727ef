package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-github/v74/github"

	"github.com/ryclarke/gardener/config"
	"github.com/ryclarke/gardener/scm"
	testhelper "github.com/ryclarke/gardener/utils/testing"
)

const (
	testOwner = "deliciousbrains"
	testRepo  = "wp-migrate-db-pro"
)

func newTestGithub(t *testing.T, handler http.Handler) *Github {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := github.NewClient(nil)
	client.BaseURL, _ = client.BaseURL.Parse(server.URL + "/")

	return &Github{
		client:      client,
		owner:       testOwner,
		maxRateWait: time.Minute,
	}
}

// writeJSON encodes v as the response body
func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("Failed to encode response: %v", err)
	}
}

func TestNew(t *testing.T) {
	ctx := testhelper.LoadFixture(t, "../../config")
	config.Viper(ctx).Set(config.AuthToken, "secret")
	config.Viper(ctx).Set(config.WriteBackoff, "250ms")

	g, ok := New(ctx, testOwner).(*Github)
	if !ok {
		t.Fatal("Expected gateway to be of type *Github")
	}

	testhelper.AssertEqual(t, g.owner, testOwner)
	testhelper.AssertEqual(t, g.client.BaseURL.Host, "api.github.com")
	testhelper.AssertEqual(t, g.writeBackoff, 250*time.Millisecond)
	testhelper.AssertEqual(t, g.maxRateWait, 5*time.Minute)
}

func TestNewEnterprise(t *testing.T) {
	ctx := testhelper.LoadFixture(t, "../../config")
	config.Viper(ctx).Set(config.GitHost, "git.example.com")

	g := New(ctx, testOwner).(*Github)

	testhelper.AssertEqual(t, g.client.BaseURL.String(), "https://git.example.com/api/v3/")
}

func TestRegistered(t *testing.T) {
	testhelper.AssertEqual(t, scm.Registered("github"), true)
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		wantNotFound  bool
		wantTransient bool
	}{
		{name: "not found", status: http.StatusNotFound, wantNotFound: true},
		{name: "bad gateway", status: http.StatusBadGateway, wantTransient: true},
		{name: "validation failed", status: http.StatusUnprocessableEntity},
		{name: "unauthorized", status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGithub(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(t, w, tt.status, map[string]string{"message": http.StatusText(tt.status)})
			}))

			_, err := g.GetIssue(context.Background(), testOwner, testRepo, 4)
			testhelper.AssertError(t, err, true)
			testhelper.AssertContains(t, err.Error(), "failed to get issue deliciousbrains/wp-migrate-db-pro#4")
			testhelper.AssertEqual(t, scm.IsNotFound(err), tt.wantNotFound)
			testhelper.AssertEqual(t, scm.IsTransient(err), tt.wantTransient)
		})
	}
}

func TestNetworkErrorIsTransient(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	client := github.NewClient(nil)
	client.BaseURL, _ = client.BaseURL.Parse(server.URL + "/")
	server.Close()

	g := &Github{client: client, owner: testOwner, maxRateWait: time.Minute}

	_, err := g.ListTeams(context.Background(), testOwner)
	testhelper.AssertEqual(t, scm.IsTransient(err), true)
}

func rateLimited(w http.ResponseWriter, reset time.Time) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-RateLimit-Limit", "5000")
	w.Header().Set("X-RateLimit-Remaining", "0")
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))
	w.WriteHeader(http.StatusForbidden)
	fmt.Fprint(w, `{"message":"API rate limit exceeded"}`)
}

func TestRateLimitRetry(t *testing.T) {
	var calls atomic.Int32

	g := newTestGithub(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			rateLimited(w, time.Now().Add(-time.Second))
			return
		}

		writeJSON(t, w, http.StatusOK, map[string]any{"number": 4, "state": "open", "title": "Broken"})
	}))

	issue, err := g.GetIssue(context.Background(), testOwner, testRepo, 4)
	testhelper.AssertError(t, err, false)
	testhelper.AssertEqual(t, issue.Title, "Broken")
	testhelper.AssertEqual(t, calls.Load(), int32(2))
}

func TestRateLimitTooLong(t *testing.T) {
	var calls atomic.Int32

	g := newTestGithub(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		rateLimited(w, time.Now().Add(time.Hour))
	}))

	_, err := g.GetIssue(context.Background(), testOwner, testRepo, 4)
	testhelper.AssertEqual(t, scm.IsTransient(err), true)
	testhelper.AssertContains(t, err.Error(), "rate limit resets in")
	testhelper.AssertEqual(t, calls.Load(), int32(1))
}

func TestRateLimitCanceled(t *testing.T) {
	g := newTestGithub(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rateLimited(w, time.Now().Add(30*time.Second))
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := g.GetIssue(ctx, testOwner, testRepo, 4)
	testhelper.AssertError(t, err, true)
	testhelper.AssertContains(t, err.Error(), context.DeadlineExceeded.Error())
}

func TestWriteBackoff(t *testing.T) {
	g := newTestGithub(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusCreated, map[string]any{"id": 1, "body": "hello"})
	}))
	g.writeBackoff = 30 * time.Millisecond

	start := time.Now()

	for range 3 {
		testhelper.AssertError(t, g.CreateComment(context.Background(), testOwner, testRepo, 4, "hello"), false)
	}

	if elapsed := time.Since(start); elapsed < 2*g.writeBackoff {
		t.Errorf("Expected writes to be spaced by %s, took %s", g.writeBackoff, elapsed)
	}
}

func TestWriteBackoffCanceled(t *testing.T) {
	var requests atomic.Int32

	g := newTestGithub(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		writeJSON(t, w, http.StatusCreated, map[string]any{"id": 1, "body": "hello"})
	}))
	g.writeBackoff = time.Hour

	apiLock.Lock()
	lastWrite = time.Now()
	apiLock.Unlock()

	t.Cleanup(func() {
		apiLock.Lock()
		lastWrite = time.Time{}
		apiLock.Unlock()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := g.CreateComment(ctx, testOwner, testRepo, 4, "hello")

	testhelper.AssertErrorIs(t, err, context.DeadlineExceeded)
	testhelper.AssertEqual(t, requests.Load(), int32(0))

	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Expected the backoff to end with the context, took %s", elapsed)
	}

	// the lock is released, so reads still go through
	release := g.readLock()
	release()
}
