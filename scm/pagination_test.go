package scm_test

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/ryclarke/gardener/scm"
	"github.com/ryclarke/gardener/scm/fake"
	testhelper "github.com/ryclarke/gardener/utils/testing"
)

// pageRecorder records the pages requested from the wrapped gateway.
type pageRecorder struct {
	scm.Gateway

	pages   []int
	failAt  int
	failure error
}

func (p *pageRecorder) ListPullRequests(ctx context.Context, owner, repo string, state scm.PullRequestState, page, perPage int) ([]scm.PullRequest, error) {
	p.pages = append(p.pages, page)

	if p.failAt == page {
		return nil, p.failure
	}

	return p.Gateway.ListPullRequests(ctx, owner, repo, state, page, perPage)
}

func seedPulls(count int) *fake.Fake {
	gw := fake.NewFake("deliciousbrains")
	repo := gw.AddRepo("wp-migrate-db-pro")

	for i := 1; i <= count; i++ {
		state := scm.PullRequestOpen
		if i%2 == 0 {
			state = scm.PullRequestClosed
		}

		repo.AddPull(scm.PullRequest{Number: i, State: state, Head: fmt.Sprintf("feature-%d", i), Base: "develop"})
	}

	return gw
}

func TestCollectPullRequests(t *testing.T) {
	tests := []struct {
		name      string
		count     int
		perPage   int
		state     scm.PullRequestState
		wantCount int
		wantPages []int
	}{
		{name: "empty repository", count: 0, perPage: 2, state: scm.PullRequestAll, wantCount: 0, wantPages: []int{1}},
		{name: "partial last page", count: 5, perPage: 2, state: scm.PullRequestAll, wantCount: 5, wantPages: []int{1, 2, 3, 4}},
		{name: "exact pages", count: 4, perPage: 2, state: scm.PullRequestAll, wantCount: 4, wantPages: []int{1, 2, 3}},
		{name: "default page size", count: 5, perPage: 0, state: scm.PullRequestAll, wantCount: 5, wantPages: []int{1, 2}},
		{name: "open only", count: 5, perPage: 2, state: scm.PullRequestOpen, wantCount: 3, wantPages: []int{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &pageRecorder{Gateway: seedPulls(tt.count)}

			pulls, err := scm.CollectPullRequests(context.Background(), gw, "deliciousbrains", "wp-migrate-db-pro", tt.state, tt.perPage)
			testhelper.AssertError(t, err, false)
			testhelper.AssertLength(t, pulls, tt.wantCount)

			if !slices.Equal(gw.pages, tt.wantPages) {
				t.Errorf("got pages = %v, want: %v", gw.pages, tt.wantPages)
			}

			for i := 1; i < len(pulls); i++ {
				if pulls[i].Number <= pulls[i-1].Number {
					t.Errorf("Expected listing order to be preserved, got: %v", pulls)
				}
			}
		})
	}
}

func TestCollectPullRequestsError(t *testing.T) {
	boom := fmt.Errorf("server error: %w", scm.ErrTransient)
	gw := &pageRecorder{Gateway: seedPulls(5), failAt: 2, failure: boom}

	pulls, err := scm.CollectPullRequests(context.Background(), gw, "deliciousbrains", "wp-migrate-db-pro", scm.PullRequestAll, 2)
	if !errors.Is(err, boom) {
		t.Fatalf("Expected %v, got: %v", boom, err)
	}

	if pulls != nil {
		t.Errorf("Expected no pull requests on failure, got: %v", pulls)
	}

	if !slices.Equal(gw.pages, []int{1, 2}) {
		t.Errorf("Expected listing to stop at the failing page, got: %v", gw.pages)
	}
}

func TestPullRequestsStopsEarly(t *testing.T) {
	gw := &pageRecorder{Gateway: seedPulls(10)}

	var seen []int
	for pr, err := range scm.PullRequests(context.Background(), gw, "deliciousbrains", "wp-migrate-db-pro", scm.PullRequestAll, 2) {
		testhelper.AssertError(t, err, false)

		seen = append(seen, pr.Number)
		if len(seen) == 3 {
			break
		}
	}

	if !slices.Equal(seen, []int{1, 2, 3}) {
		t.Errorf("got = %v, want: [1 2 3]", seen)
	}

	if !slices.Equal(gw.pages, []int{1, 2}) {
		t.Errorf("Expected no pages fetched past the break, got: %v", gw.pages)
	}
}
