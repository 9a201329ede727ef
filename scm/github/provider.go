package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/go-github/v74/github"
	"golang.org/x/oauth2"

	"github.com/ryclarke/gardener/config"
	"github.com/ryclarke/gardener/logging"
	"github.com/ryclarke/gardener/scm"
)

const publicHost = "github.com"

var _ scm.Gateway = new(Github)

func init() {
	// Register the GitHub provider factory
	scm.Register("github", New)
}

// apiLock is shared by every gateway so repositories processed in parallel draw on one
// rate budget. Writes are exclusive and spaced by the write backoff.
var (
	apiLock   sync.RWMutex
	lastWrite time.Time
)

// New creates a GitHub gateway for the owner using the token and host configured in ctx.
func New(ctx context.Context, owner string) scm.Gateway {
	v := config.Viper(ctx)

	client := newClient(ctx, v.GetString(config.AuthToken))

	if host := v.GetString(config.GitHost); host != "" && host != publicHost {
		enterprise, err := client.WithEnterpriseURLs("https://"+host+"/api/v3/", "https://"+host+"/api/uploads/")
		if err != nil {
			logging.Logger.Warn("invalid enterprise host, using github.com", "host", host, "error", err)
		} else {
			client = enterprise
		}
	}

	return &Github{
		client:       client,
		owner:        owner,
		writeBackoff: v.GetDuration(config.WriteBackoff),
		maxRateWait:  v.GetDuration(config.MaxRateWait),
	}
}

// newClient creates an API client authenticated with a static token; an empty token
// yields an unauthenticated client.
func newClient(ctx context.Context, token string) *github.Client {
	var tc *http.Client

	if token != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		tc = oauth2.NewClient(ctx, ts)
	}

	return github.NewClient(tc)
}

// Github implements scm.Gateway against the GitHub REST API.
type Github struct {
	client *github.Client
	owner  string

	// writeBackoff is the minimum spacing between content-creating requests.
	writeBackoff time.Duration
	// maxRateWait caps how long a request waits for a rate limit to reset before giving up.
	maxRateWait time.Duration
}

// readLock acquires the shared API lock and returns its release function.
func (g *Github) readLock() func() {
	apiLock.RLock()

	return apiLock.RUnlock
}

// writeLock acquires the exclusive API lock, waiting out the write backoff, and returns its
// release function. The lock is not held when ctx ends during the wait.
func (g *Github) writeLock(ctx context.Context) (func(), error) {
	apiLock.Lock()

	if wait := g.writeBackoff - time.Since(lastWrite); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			apiLock.Unlock()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	return func() {
		lastWrite = time.Now()
		apiLock.Unlock()
	}, nil
}

// handleRateLimitError waits for a rate limit to reset when err is one. It reports whether
// the request should be retried, or an error when the wait is too long or ctx ends first.
func (g *Github) handleRateLimitError(ctx context.Context, err error) (bool, error) {
	var (
		wait     time.Duration
		rateErr  *github.RateLimitError
		abuseErr *github.AbuseRateLimitError
	)

	switch {
	case errors.As(err, &rateErr):
		wait = time.Until(rateErr.Rate.Reset.Time)
	case errors.As(err, &abuseErr):
		wait = abuseErr.GetRetryAfter()
	default:
		return false, nil
	}

	if wait > g.maxRateWait {
		return false, fmt.Errorf("rate limit resets in %s, longer than %s: %w", wait.Round(time.Second), g.maxRateWait, scm.ErrTransient)
	}

	if wait > 0 {
		logging.Logger.Warn("rate limited, waiting for reset", "wait", wait)

		timer := time.NewTimer(wait)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-timer.C:
		}
	}

	return true, nil
}

// call runs fn under the API lock, retrying once after waiting out a rate limit. Errors are
// classified into scm.ErrNotFound and scm.ErrTransient.
func call[T any](ctx context.Context, g *Github, write bool, action string, fn func() (T, *github.Response, error)) (T, *github.Response, error) {
	// acquire the lock (and release it when done)
	if write {
		release, err := g.writeLock(ctx)
		if err != nil {
			var zero T
			return zero, nil, fmt.Errorf("failed to %s: %w", action, err)
		}
		defer release()
	} else {
		defer g.readLock()()
	}

	out, resp, err := fn()
	if err != nil {
		if retry, rateErr := g.handleRateLimitError(ctx, err); rateErr != nil {
			return out, resp, fmt.Errorf("failed to %s: %w: %w", action, rateErr, classify(resp, err))
		} else if !retry {
			return out, resp, fmt.Errorf("failed to %s: %w", action, classify(resp, err))
		}

		// retry the request after waiting for the rate limit to reset
		if out, resp, err = fn(); err != nil {
			return out, resp, fmt.Errorf("failed to %s after retry: %w", action, classify(resp, err))
		}
	}

	return out, resp, nil
}

// collect drains every page of a listing.
func collect[T any](ctx context.Context, g *Github, action string, list func(opt github.ListOptions) ([]T, *github.Response, error)) ([]T, error) {
	output := make([]T, 0)
	opt := github.ListOptions{PerPage: scm.DefaultPageSize}

	for {
		page, resp, err := call(ctx, g, false, action, func() ([]T, *github.Response, error) {
			return list(opt)
		})
		if err != nil {
			return nil, err
		}

		output = append(output, page...)

		if resp == nil || resp.NextPage == 0 {
			break
		}

		opt.Page = resp.NextPage
	}

	return output, nil
}

// classify marks err as not found or transient based on the response.
func classify(resp *github.Response, err error) error {
	var (
		rateErr  *github.RateLimitError
		abuseErr *github.AbuseRateLimitError
	)

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.As(err, &rateErr), errors.As(err, &abuseErr):
		return fmt.Errorf("%w: %w", scm.ErrTransient, err)
	case resp == nil:
		// no response at all: the request never completed
		return fmt.Errorf("%w: %w", scm.ErrTransient, err)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %w", scm.ErrNotFound, err)
	case resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%w: %w", scm.ErrTransient, err)
	default:
		return err
	}
}
