package workload

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestNeverSendsToSelf(t *testing.T) {
	for pid := 0; pid < 4; pid++ {
		d := New(Config{Pid: pid, N: 4, SendRatio: 1, Seed: int64(pid)})
		seen := map[int]bool{}
		for i := 0; i < 200; i++ {
			step, err := d.Next(context.Background())
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if step.Kind != Send {
				t.Fatalf("got %s with a send ratio of 1", step.Kind)
			}
			if step.To == pid {
				t.Fatalf("process %d chose itself for key %s", pid, step.Key)
			}
			if step.To < 0 || step.To >= 4 {
				t.Fatalf("process %d chose %d outside the cluster", pid, step.To)
			}
			seen[step.To] = true
		}
		if len(seen) != 3 {
			t.Errorf("process %d only sent to %v", pid, seen)
		}
	}
}

func TestSendRatio(t *testing.T) {
	tests := []struct {
		ratio     float64
		wantSends bool
		wantExecs bool
	}{
		{ratio: 0, wantSends: false, wantExecs: true},
		{ratio: 1, wantSends: true, wantExecs: false},
		{ratio: 0.5, wantSends: true, wantExecs: true},
	}

	for _, tc := range tests {
		d := New(Config{Pid: 0, N: 3, SendRatio: tc.ratio, Seed: 7})
		counts := map[Kind]int{}
		for i := 0; i < 100; i++ {
			step, err := d.Next(context.Background())
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			counts[step.Kind]++
		}
		got := []bool{counts[Send] > 0, counts[Exec] > 0}
		if diff := cmp.Diff(got, []bool{tc.wantSends, tc.wantExecs}); diff != "" {
			t.Errorf("ratio %v gave %v (-got,+want): %s", tc.ratio, counts, diff)
		}
	}
}

func TestNoPeers(t *testing.T) {
	d := New(Config{Pid: 0, N: 1, SendRatio: 1})
	if _, err := d.Next(context.Background()); !errors.Is(err, ErrNoPeers) {
		t.Errorf("got %v, wanted %v", err, ErrNoPeers)
	}
}

func TestRunStopsWithContext(t *testing.T) {
	d := New(Config{Pid: 1, N: 2, Rate: 1000, SendRatio: 0.5, Seed: 1})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	steps := 0
	err := d.Run(ctx, func(Step) error {
		steps++
		if steps%2 == 0 {
			return errors.New("ignored")
		}
		return nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("got %v, wanted %v", err, context.DeadlineExceeded)
	}
	if steps == 0 {
		t.Errorf("driver ran no steps")
	}
}
