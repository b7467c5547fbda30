package detail_test

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diallo/callreview/internal/detail"
	"github.com/diallo/callreview/internal/render"
	"github.com/diallo/callreview/internal/resource"
	"github.com/diallo/callreview/pkg/config"
	"github.com/diallo/callreview/pkg/errors"
	"github.com/diallo/callreview/pkg/i18n"
	"github.com/diallo/callreview/pkg/logger"
	"github.com/diallo/callreview/pkg/testutil"
)

func newRenderer() *render.Renderer {
	return render.New(config.RenderConfig{GoodThreshold: 8, FairThreshold: 6})
}

// scriptedFetcher answers each call with the next queued result once released
type scriptedFetcher struct {
	mu      sync.Mutex
	calls   int
	results []fetchResult
}

type fetchResult struct {
	doc     any
	err     error
	release chan struct{}
}

func (f *scriptedFetcher) GetDocument(ctx context.Context, docID string) (any, error) {
	f.mu.Lock()
	r := f.results[f.calls]
	f.calls++
	f.mu.Unlock()

	if r.release != nil {
		<-r.release
	}
	return r.doc, r.err
}

func TestService_LoadAgainstBackend(t *testing.T) {
	fake := testutil.NewFakeBackend(t)
	fake.On(http.MethodGet, resource.PathDocs, testutil.OK("response", testutil.RawDocument(testutil.ReportCurrent)))

	backend := resource.NewBackend(resource.NewClient(fake.URL(), time.Second, logger.Nop()), "")
	svc := detail.NewService(backend, newRenderer(), logger.Nop())

	snapshot, err := svc.Load(testutil.DefaultTestContext(t), "665f1c2e9b1d4a0012345678")
	require.NoError(t, err)

	assert.Equal(t, detail.StateReady, snapshot.State)
	require.NotNil(t, snapshot.View)
	assert.Equal(t, "Amina Diallo", snapshot.View.Overview.AgentName)
	assert.Equal(t, uint64(1), snapshot.Seq)

	current, ok := svc.Get("665f1c2e9b1d4a0012345678")
	require.True(t, ok)
	assert.Equal(t, snapshot, current)
}

func TestService_FailedFetchLeavesNoData(t *testing.T) {
	fake := testutil.NewFakeBackend(t)
	fake.On(http.MethodGet, resource.PathDocs, testutil.Refused("No Data Found"))

	backend := resource.NewBackend(resource.NewClient(fake.URL(), time.Second, logger.Nop()), "")
	svc := detail.NewService(backend, newRenderer(), logger.Nop())

	snapshot, err := svc.Load(testutil.DefaultTestContext(t), "missing")
	require.Error(t, err)
	assert.Equal(t, errors.CodeDomainFailure, errors.CodeOf(err))
	assert.Equal(t, detail.StateNoData, snapshot.State)
	assert.Nil(t, snapshot.View)
}

func TestService_NormalizationFailureLeavesNoData(t *testing.T) {
	fetcher := &scriptedFetcher{results: []fetchResult{{doc: []any{"not", "a", "report"}}}}
	svc := detail.NewService(fetcher, newRenderer(), logger.Nop())

	snapshot, err := svc.Load(testutil.DefaultTestContext(t), "x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotAnObject))
	assert.Equal(t, detail.StateNoData, snapshot.State)
	assert.Nil(t, snapshot.View)
}

func TestService_LastIssuedLoadWins(t *testing.T) {
	older := fetchResult{doc: map[string]any{"_id": "x", "summary": "stale"}, release: make(chan struct{})}
	newer := fetchResult{doc: map[string]any{"_id": "x", "summary": "fresh"}, release: make(chan struct{})}
	fetcher := &scriptedFetcher{results: []fetchResult{older, newer}}
	svc := detail.NewService(fetcher, newRenderer(), logger.Nop())

	ctx := testutil.DefaultTestContext(t)
	firstDone := make(chan detail.Snapshot)
	go func() {
		snapshot, _ := svc.Load(ctx, "x")
		firstDone <- snapshot
	}()
	testutil.RequireEventually(t, func() bool {
		fetcher.mu.Lock()
		defer fetcher.mu.Unlock()
		return fetcher.calls == 1
	}, time.Second, 5*time.Millisecond, "first load did not start")

	secondDone := make(chan detail.Snapshot)
	go func() {
		snapshot, _ := svc.Load(ctx, "x")
		secondDone <- snapshot
	}()
	testutil.RequireEventually(t, func() bool {
		fetcher.mu.Lock()
		defer fetcher.mu.Unlock()
		return fetcher.calls == 2
	}, time.Second, 5*time.Millisecond, "second load did not start")

	// the newer load resolves first, the older one afterwards
	close(newer.release)
	second := <-secondDone
	close(older.release)
	first := <-firstDone

	require.NotNil(t, second.View)
	assert.Equal(t, "fresh", second.View.Overview.Summary)
	assert.Equal(t, uint64(2), second.Seq)

	assert.Equal(t, second, first, "superseded load reports the newer view")

	current, ok := svc.Get("x")
	require.True(t, ok)
	assert.Equal(t, "fresh", current.View.Overview.Summary)
}

func TestService_RefreshKeepsReadyViewWhileLoading(t *testing.T) {
	release := make(chan struct{})
	fetcher := &scriptedFetcher{results: []fetchResult{
		{doc: map[string]any{"_id": "x"}},
		{doc: map[string]any{"_id": "x"}, release: release},
	}}
	svc := detail.NewService(fetcher, newRenderer(), logger.Nop())

	_, err := svc.Load(testutil.DefaultTestContext(t), "x")
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = svc.Load(testutil.DefaultTestContext(t), "x")
	}()
	testutil.RequireEventually(t, func() bool {
		fetcher.mu.Lock()
		defer fetcher.mu.Unlock()
		return fetcher.calls == 2
	}, time.Second, 5*time.Millisecond, "refresh did not start")

	current, _ := svc.Get("x")
	assert.Equal(t, detail.StateReady, current.State)

	close(release)
	<-done
}

func TestService_RendersInRequestLocale(t *testing.T) {
	fetcher := &scriptedFetcher{results: []fetchResult{{doc: map[string]any{"payment_discussed": true}}}}
	svc := detail.NewService(fetcher, newRenderer(), logger.Nop())

	ctx := i18n.WithLocale(testutil.DefaultTestContext(t), "de")
	snapshot, err := svc.Load(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, "Ja", snapshot.View.Overview.PaymentDiscussed.Label)
}

func TestService_Forget(t *testing.T) {
	fetcher := &scriptedFetcher{results: []fetchResult{{doc: map[string]any{}}}}
	svc := detail.NewService(fetcher, newRenderer(), logger.Nop())

	_, err := svc.Load(testutil.DefaultTestContext(t), "x")
	require.NoError(t, err)

	svc.Forget("x")
	_, ok := svc.Get("x")
	assert.False(t, ok)
}
