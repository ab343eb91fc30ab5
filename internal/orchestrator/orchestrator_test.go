package orchestrator

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/recongraph/api/schemas"
	"github.com/xkilldash9x/recongraph/internal/config"
	"github.com/xkilldash9x/recongraph/internal/insight"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// mockScanService counts calls per flow and serves a canned result or error.
type mockScanService struct {
	result *schemas.ScanResult
	err    error

	attackCalls    atomic.Int32
	footprintCalls atomic.Int32
}

func (m *mockScanService) AttackSurface(ctx context.Context, query string) (*schemas.ScanResult, error) {
	m.attackCalls.Add(1)
	return m.result, m.err
}

func (m *mockScanService) Footprint(ctx context.Context, query string) (*schemas.ScanResult, error) {
	m.footprintCalls.Add(1)
	return m.result, m.err
}

// mockInsightService counts calls and serves canned text or an error.
type mockInsightService struct {
	text  string
	err   error
	calls atomic.Int32
}

func (m *mockInsightService) GenerateResponse(ctx context.Context, req schemas.GenerationRequest) (string, error) {
	m.calls.Add(1)
	return m.text, m.err
}

func newTestOrchestrator(t *testing.T, scan ScanService, insightSvc InsightService) *Orchestrator {
	t.Helper()
	cfg := config.NewDefaultConfig()
	cfg.Progress.TickInterval = 10 * time.Millisecond

	orch, err := New(cfg, zaptest.NewLogger(t), scan, insightSvc)
	require.NoError(t, err)
	t.Cleanup(orch.Close)
	return orch
}

func TestNewRejectsNilDependencies(t *testing.T) {
	logger := zaptest.NewLogger(t)
	cfg := config.NewDefaultConfig()

	_, err := New(nil, logger, &mockScanService{}, nil)
	assert.Error(t, err)
	_, err = New(cfg, nil, &mockScanService{}, nil)
	assert.Error(t, err)
	_, err = New(cfg, logger, nil, nil)
	assert.Error(t, err)

	// A nil insight service is explicitly allowed.
	_, err = New(cfg, logger, &mockScanService{}, nil)
	assert.NoError(t, err)
}

func TestInferKind(t *testing.T) {
	tests := []struct {
		raw  string
		want schemas.QueryKind
	}{
		{"93.184.216.34", schemas.KindIP},
		{"256.1.1.1", schemas.KindUsername}, // octet out of range, not an IP
		{"example.com", schemas.KindDomain},
		{"sub.example.co.uk", schemas.KindDomain},
		{"user@example.com", schemas.KindEmail},
		{"+14155552671", schemas.KindPhone},
		{"14155552671", schemas.KindPhone},
		{"someuser", schemas.KindUsername},
		{"", schemas.KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, InferKind(tt.raw))
		})
	}
}

func TestSubmitRejectsInvalidAttackSurfaceTarget(t *testing.T) {
	scan := &mockScanService{}
	orch := newTestOrchestrator(t, scan, nil)

	err := orch.Submit(context.Background(), FlowAttackSurface, "not a valid target!!")
	require.ErrorIs(t, err, ErrInvalidTarget)

	snap := orch.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.NotEmpty(t, snap.Err)
	assert.Nil(t, snap.Graph)
	assert.Zero(t, scan.attackCalls.Load(), "validation failures must not reach the scan service")
}

func TestSubmitRejectsEmptyTargetOnBothFlows(t *testing.T) {
	scan := &mockScanService{}
	orch := newTestOrchestrator(t, scan, nil)

	assert.ErrorIs(t, orch.Submit(context.Background(), FlowAttackSurface, "   "), ErrInvalidTarget)
	assert.ErrorIs(t, orch.Submit(context.Background(), FlowFootprint, ""), ErrInvalidTarget)
	assert.Zero(t, scan.attackCalls.Load())
	assert.Zero(t, scan.footprintCalls.Load())
}

func TestSubmitScanFailureSkipsBuildAndInsight(t *testing.T) {
	scan := &mockScanService{err: errors.New("scan service error: rate limited")}
	insightSvc := &mockInsightService{text: "advice"}
	orch := newTestOrchestrator(t, scan, insightSvc)

	err := orch.Submit(context.Background(), FlowAttackSurface, "93.184.216.34")
	require.Error(t, err)

	snap := orch.Snapshot()
	assert.Equal(t, StateFailed, snap.State)
	assert.Contains(t, snap.Err, "rate limited")
	assert.Nil(t, snap.Graph, "a failed scan must not produce a graph")
	assert.Zero(t, insightSvc.calls.Load(), "a failed scan must not trigger an insight call")
}

func TestSubmitSuccessPopulates(t *testing.T) {
	scan := &mockScanService{result: &schemas.ScanResult{
		Tor: &schemas.TorStatus{ExitNode: true},
	}}
	insightSvc := &mockInsightService{text: "* Use a VPN."}
	orch := newTestOrchestrator(t, scan, insightSvc)

	err := orch.Submit(context.Background(), FlowAttackSurface, "93.184.216.34")
	require.NoError(t, err)

	snap := orch.Snapshot()
	assert.Equal(t, StatePopulated, snap.State)
	require.NotNil(t, snap.Graph)
	assert.Len(t, snap.Graph.Nodes, 2, "root plus the tor node")
	assert.Equal(t, "* Use a VPN.", snap.Recommendations)
	assert.Equal(t, 100, snap.Progress)
	assert.Equal(t, schemas.KindIP, snap.Query.Kind)
	assert.Equal(t, int32(1), insightSvc.calls.Load())
}

func TestSubmitFootprintRoutesToFootprint(t *testing.T) {
	scan := &mockScanService{result: &schemas.ScanResult{}}
	orch := newTestOrchestrator(t, scan, nil)

	require.NoError(t, orch.Submit(context.Background(), FlowFootprint, "someuser"))
	assert.Equal(t, int32(1), scan.footprintCalls.Load())
	assert.Zero(t, scan.attackCalls.Load())
}

func TestSubmitInsightFailureDegradesToFallback(t *testing.T) {
	scan := &mockScanService{result: &schemas.ScanResult{}}
	insightSvc := &mockInsightService{err: errors.New("quota exceeded")}
	orch := newTestOrchestrator(t, scan, insightSvc)

	err := orch.Submit(context.Background(), FlowAttackSurface, "example.com")
	require.NoError(t, err, "an insight failure is not a scan failure")

	snap := orch.Snapshot()
	assert.Equal(t, StatePopulated, snap.State)
	require.NotNil(t, snap.Graph)
	assert.Equal(t, insight.FallbackMessage, snap.Recommendations)
}

func TestSubmitWithoutInsightServiceUsesFallback(t *testing.T) {
	scan := &mockScanService{result: &schemas.ScanResult{}}
	orch := newTestOrchestrator(t, scan, nil)

	require.NoError(t, orch.Submit(context.Background(), FlowAttackSurface, "example.com"))
	assert.Equal(t, insight.FallbackMessage, orch.Snapshot().Recommendations)
}

func TestResubmissionDiscardsPriorState(t *testing.T) {
	scan := &mockScanService{err: errors.New("boom")}
	orch := newTestOrchestrator(t, scan, nil)

	require.Error(t, orch.Submit(context.Background(), FlowAttackSurface, "example.com"))
	assert.Equal(t, StateFailed, orch.Snapshot().State)

	// A later submission starts clean.
	scan.err = nil
	scan.result = &schemas.ScanResult{}
	require.NoError(t, orch.Submit(context.Background(), FlowAttackSurface, "example.com"))

	snap := orch.Snapshot()
	assert.Equal(t, StatePopulated, snap.State)
	assert.Empty(t, snap.Err, "the previous failure must not leak into the new submission")
	require.NotNil(t, snap.Graph)
}
