// Package workload drives a node with a random mix of local events and sends.
package workload

import (
	"context"
	"errors"
	"math/rand"

	"github.com/spencer-p/ordering/pkg/hash"

	logs "github.com/danmuck/smplog"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

var (
	ErrNoPeers = errors.New("No peers to send to")

	// The limiter fails early when the deadline falls before the next token.
	errLimited = errors.New("Context done before next step")
)

type Kind int

const (
	Exec Kind = iota
	Send
)

func (k Kind) String() string {
	if k == Send {
		return "send"
	}
	return "exec"
}

// Step is one unit of work. Key names the message for a Send and is used to
// choose the destination.
type Step struct {
	Kind Kind
	Key  string
	To   int
}

type Config struct {
	Pid int
	N   int
	// Steps per second. Zero or less means unlimited.
	Rate float64
	// Fraction of steps that are sends.
	SendRatio float64
	Seed      int64
}

type Driver struct {
	pid     int
	ring    hash.Interface
	limiter *rate.Limiter
	ratio   float64
	rng     *rand.Rand
}

func New(cfg Config) *Driver {
	peers := make([]int, 0, cfg.N)
	for q := 0; q < cfg.N; q++ {
		if q != cfg.Pid {
			peers = append(peers, q)
		}
	}

	limit := rate.Inf
	if cfg.Rate > 0 {
		limit = rate.Limit(cfg.Rate)
	}

	return &Driver{
		pid:     cfg.Pid,
		ring:    hash.New(peers),
		limiter: rate.NewLimiter(limit, 1),
		ratio:   cfg.SendRatio,
		rng:     rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Next waits for the limiter and returns the following step.
func (d *Driver) Next(ctx context.Context) (Step, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return Step{}, errLimited
	}

	if d.rng.Float64() >= d.ratio {
		return Step{Kind: Exec}, nil
	}

	key := uuid.New().String()
	to, err := d.ring.Get(key)
	if errors.Is(err, hash.ErrNoElements) {
		return Step{}, ErrNoPeers
	} else if err != nil {
		return Step{}, err
	}
	return Step{Kind: Send, Key: key, To: to}, nil
}

// Run feeds steps to do until ctx is done. Errors from do are logged and do
// not stop the driver.
func (d *Driver) Run(ctx context.Context, do func(Step) error) error {
	logs.Infof("workload: driving process %d", d.pid)
	for {
		step, err := d.Next(ctx)
		if errors.Is(err, errLimited) {
			<-ctx.Done()
			return ctx.Err()
		} else if err != nil {
			return err
		}
		if err := do(step); err != nil {
			logs.Warnf("workload: %s %s failed: %v", step.Kind, step.Key, err)
		}
	}
}
