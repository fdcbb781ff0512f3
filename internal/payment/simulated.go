package payment

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SimulatedGateway stands in for a real provider. Every charge waits Delay
// and then succeeds, unless Decline says otherwise.
type SimulatedGateway struct {
	Delay time.Duration
	// Decline, when set, decides which requests are refused.
	Decline func(req ChargeRequest) bool

	mu      sync.Mutex
	byKey   map[string]*ChargeResult
	byID    map[string]*ChargeResult
	charges int
}

// NewSimulatedGateway creates a gateway that approves every charge after delay.
func NewSimulatedGateway(delay time.Duration) *SimulatedGateway {
	return &SimulatedGateway{
		Delay: delay,
		byKey: make(map[string]*ChargeResult),
		byID:  make(map[string]*ChargeResult),
	}
}

var _ Gateway = (*SimulatedGateway)(nil)

func (g *SimulatedGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	if req.IdempotencyKey != "" {
		g.mu.Lock()
		prev, ok := g.byKey[req.IdempotencyKey]
		g.mu.Unlock()
		if ok {
			if prev.Status == IntentFailed {
				return nil, ErrDeclined
			}
			res := *prev
			return &res, nil
		}
	}

	if g.Delay > 0 {
		timer := time.NewTimer(g.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	res := &ChargeResult{
		IntentID:    "pi_sim_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:24],
		Status:      IntentSucceeded,
		ProcessedAt: time.Now().UTC(),
	}
	if g.Decline != nil && g.Decline(req) {
		res.Status = IntentFailed
	}

	g.mu.Lock()
	g.charges++
	if req.IdempotencyKey != "" {
		g.byKey[req.IdempotencyKey] = res
	}
	g.byID[res.IntentID] = res
	g.mu.Unlock()

	if res.Status == IntentFailed {
		return nil, ErrDeclined
	}
	out := *res
	return &out, nil
}

func (g *SimulatedGateway) Status(ctx context.Context, intentID string) (*ChargeResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	res, ok := g.byID[intentID]
	if !ok {
		return nil, ErrUnknownIntent
	}
	out := *res
	return &out, nil
}

// IntentFor returns the intent recorded for an idempotency key, if any.
func (g *SimulatedGateway) IntentFor(key string) (*ChargeResult, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	res, ok := g.byKey[key]
	if !ok {
		return nil, false
	}
	out := *res
	return &out, true
}

// Charges counts the charges that reached the simulated provider.
func (g *SimulatedGateway) Charges() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.charges
}
