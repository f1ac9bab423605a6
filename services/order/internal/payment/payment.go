// Package payment simulates the card processor the orders service charges.
package payment

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
)

var ErrRejected = errors.New("payment rejected")

// Simulated approves a charge with probability SuccessRate.
type Simulated struct {
	SuccessRate float64

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewSimulated(successRate float64, seed uint64) *Simulated {
	return &Simulated{
		SuccessRate: successRate,
		rnd:         rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (s *Simulated) Charge(ctx context.Context, user string, amount float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	roll := s.rnd.Float64()
	s.mu.Unlock()
	if roll < s.SuccessRate {
		return nil
	}
	return ErrRejected
}

// Always is a processor with a fixed answer.
type Always struct{ Err error }

func (a Always) Charge(context.Context, string, float64) error { return a.Err }
