// File: internal/orchestrator/orchestrator.go
// Description: Drives one end-to-end scan: input validation, the Scan Service
// round trip, graph construction, and the follow-up insight request. The two
// external collaborators are injected via interfaces, keeping the state
// machine decoupled and testable.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/recongraph/api/schemas"
	"github.com/xkilldash9x/recongraph/internal/config"
	"github.com/xkilldash9x/recongraph/internal/graph"
	"github.com/xkilldash9x/recongraph/internal/insight"
)

// State is the lifecycle phase of the current scan attempt.
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateInFlight   State = "in-flight"
	StatePopulated  State = "populated"
	StateFailed     State = "failed"
)

// Flow selects which logical Scan Service endpoint a submission targets.
type Flow string

const (
	// FlowAttackSurface is the IP/domain-centric scan. Input must look like
	// an IPv4 address, a domain, or an email address.
	FlowAttackSurface Flow = "attack-surface"
	// FlowFootprint is the identity-centric scan. Any non-empty string is
	// accepted; the target kind is resolved server-side.
	FlowFootprint Flow = "footprint"
)

// ErrInvalidTarget marks user-correctable validation failures: the scan never
// started and no request was issued.
var ErrInvalidTarget = errors.New("invalid target")

// Validation patterns for target strings.
var (
	ipv4Pattern   = regexp.MustCompile(`^((25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.){3}(25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)$`)
	domainPattern = regexp.MustCompile(`^([a-zA-Z0-9-]+\.)*[a-zA-Z0-9-]+\.[a-zA-Z]{2,}$`)
	emailPattern  = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phonePattern  = regexp.MustCompile(`^\+?[0-9]\d{1,14}$`)
)

// InferKind classifies a raw target string. The result is a labeling hint;
// the Scan Service decides what it actually resolves.
func InferKind(raw string) schemas.QueryKind {
	switch {
	case ipv4Pattern.MatchString(raw):
		return schemas.KindIP
	case emailPattern.MatchString(raw):
		return schemas.KindEmail
	case domainPattern.MatchString(raw):
		return schemas.KindDomain
	case phonePattern.MatchString(raw):
		return schemas.KindPhone
	case raw != "":
		return schemas.KindUsername
	default:
		return schemas.KindUnknown
	}
}

// ScanService is the narrow interface to the reconnaissance backend.
type ScanService interface {
	AttackSurface(ctx context.Context, query string) (*schemas.ScanResult, error)
	Footprint(ctx context.Context, query string) (*schemas.ScanResult, error)
}

// InsightService generates the natural-language summary for a scan result.
type InsightService interface {
	GenerateResponse(ctx context.Context, req schemas.GenerationRequest) (string, error)
}

// Snapshot is a consistent view of the orchestrator's current scan state for
// the presentation layer.
type Snapshot struct {
	State           State
	Query           schemas.ScanQuery
	Progress        int
	Graph           *schemas.Graph
	Recommendations string
	Err             string
}

// Orchestrator owns the state of at most one scan at a time. A re-submission
// discards all prior state; a late response from a superseded submission is
// detected by its tag and dropped (last write wins).
type Orchestrator struct {
	scan        ScanService
	insight     InsightService
	logger      *zap.Logger
	progressCfg config.ProgressConfig
	temperature float32

	mu              sync.Mutex
	state           State
	seq             uint64
	query           schemas.ScanQuery
	graph           *schemas.Graph
	recommendations string
	progress        int
	errMsg          string
	stopProgress    chan struct{}

	wg sync.WaitGroup
}

// New creates an Orchestrator. The insight service may be nil (no API key
// configured); recommendations then degrade to the static fallback message.
func New(cfg *config.Config, logger *zap.Logger, scan ScanService, insightSvc InsightService) (*Orchestrator, error) {
	if cfg == nil || logger == nil || scan == nil {
		return nil, fmt.Errorf("cannot initialize orchestrator with nil dependencies")
	}
	return &Orchestrator{
		scan:        scan,
		insight:     insightSvc,
		logger:      logger.Named("orchestrator"),
		progressCfg: cfg.Progress,
		temperature: cfg.Insight.Temperature,
		state:       StateIdle,
	}, nil
}

// Snapshot returns the current scan state.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return Snapshot{
		State:           o.state,
		Query:           o.query,
		Progress:        o.progress,
		Graph:           o.graph,
		Recommendations: o.recommendations,
		Err:             o.errMsg,
	}
}

// Close stops the progress ticker of any in-flight submission and waits for
// it to exit.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	o.cancelProgressLocked()
	o.mu.Unlock()
	o.wg.Wait()
}

// Submit runs one scan end to end: validate, request, build, summarize.
// It blocks until the scan attempt reaches a terminal state. Validation and
// scan failures are returned (and recorded in the snapshot); an insight
// failure is not an error.
func (o *Orchestrator) Submit(ctx context.Context, flow Flow, raw string) error {
	raw = strings.TrimSpace(raw)

	o.mu.Lock()
	// Entering validating discards everything the previous submission left
	// behind, including its ticker.
	o.cancelProgressLocked()
	o.seq++
	tag := o.seq
	o.state = StateValidating
	o.graph = nil
	o.recommendations = ""
	o.errMsg = ""
	o.progress = 0

	if err := validate(flow, raw); err != nil {
		o.state = StateIdle
		o.errMsg = err.Error()
		o.mu.Unlock()
		return err
	}

	query := schemas.ScanQuery{Raw: raw, Kind: InferKind(raw)}
	o.query = query
	o.state = StateInFlight
	o.startProgressLocked(tag)
	o.mu.Unlock()

	o.logger.Info("Starting scan",
		zap.String("flow", string(flow)),
		zap.String("kind", string(query.Kind)),
	)

	result, err := o.request(ctx, flow, raw)
	if err != nil {
		o.mu.Lock()
		if o.seq == tag {
			o.state = StateFailed
			o.errMsg = err.Error()
			o.cancelProgressLocked()
		}
		o.mu.Unlock()
		o.logger.Error("Scan failed", zap.Error(err))
		return err
	}

	// The build runs synchronously on the response; the insight call is
	// strictly sequenced after it because its request body is this result.
	g := graph.Build(query, result)

	o.mu.Lock()
	if o.seq != tag {
		// A newer submission owns the state now; this result is stale.
		o.mu.Unlock()
		o.logger.Warn("Discarding stale scan result", zap.String("query", raw))
		return nil
	}
	o.graph = &g
	o.state = StatePopulated
	o.mu.Unlock()

	recommendations := o.generateInsight(ctx, result)

	o.mu.Lock()
	if o.seq == tag {
		o.recommendations = recommendations
		o.progress = 100
		o.cancelProgressLocked()
	}
	o.mu.Unlock()

	return nil
}

func (o *Orchestrator) request(ctx context.Context, flow Flow, raw string) (*schemas.ScanResult, error) {
	if flow == FlowFootprint {
		return o.scan.Footprint(ctx, raw)
	}
	return o.scan.AttackSurface(ctx, raw)
}

// generateInsight never fails: any error degrades to the fallback message.
func (o *Orchestrator) generateInsight(ctx context.Context, result *schemas.ScanResult) string {
	if o.insight == nil {
		return insight.FallbackMessage
	}
	req, err := insight.BuildRequest(result, o.temperature)
	if err != nil {
		o.logger.Warn("Failed to build insight request", zap.Error(err))
		return insight.FallbackMessage
	}
	text, err := o.insight.GenerateResponse(ctx, req)
	if err != nil {
		o.logger.Warn("Insight generation failed, using fallback", zap.Error(err))
		return insight.FallbackMessage
	}
	return text
}

func validate(flow Flow, raw string) error {
	if raw == "" {
		return fmt.Errorf("%w: target must not be empty", ErrInvalidTarget)
	}
	if flow == FlowAttackSurface &&
		!ipv4Pattern.MatchString(raw) && !domainPattern.MatchString(raw) && !emailPattern.MatchString(raw) {
		return fmt.Errorf("%w: %q is not an IPv4 address, domain, or email address", ErrInvalidTarget, raw)
	}
	return nil
}

// -- Synthetic progress --

// startProgressLocked launches the cosmetic progress ticker for the given
// submission tag. The ticker advances a fixed step per interval and stops on
// saturation; it says nothing about real request progress.
func (o *Orchestrator) startProgressLocked(tag uint64) {
	stop := make(chan struct{})
	o.stopProgress = stop

	interval := o.progressCfg.TickInterval
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	step := o.progressCfg.Step
	if step <= 0 {
		step = 10
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				o.mu.Lock()
				if o.seq != tag {
					o.mu.Unlock()
					return
				}
				if o.progress < 100 {
					o.progress += step
				}
				saturated := o.progress >= 100
				if saturated {
					o.progress = 100
				}
				o.mu.Unlock()
				if saturated {
					return
				}
			}
		}
	}()
}

// cancelProgressLocked signals the current ticker goroutine, if any, to exit.
// Callers must hold o.mu.
func (o *Orchestrator) cancelProgressLocked() {
	if o.stopProgress != nil {
		close(o.stopProgress)
		o.stopProgress = nil
	}
}
