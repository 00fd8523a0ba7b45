// Package causal orders events gathered from several processes so that no
// event comes before one that happened before it.
package causal

import (
	"github.com/spencer-p/ordering/pkg/clock"
)

// Buffer holds events until everything that happened before them has been
// delivered.
type Buffer[C clock.Clock[C]] struct {
	pending   []C
	delivered []C
}

func (b *Buffer[C]) Add(events ...C) {
	// TODO(spencer-p) using a heap keyed on a vector sum is better
	b.pending = append(b.pending, events...)
}

// Deliver releases every event whose predecessors are no longer pending, in a
// causally consistent order, and returns them.
func (b *Buffer[C]) Deliver() []C {
	var out []C
	for didwork := true; didwork; {
		didwork = false
		for i := 0; i < len(b.pending); i++ {
			e := b.pending[i]
			if b.blocked(e) {
				continue
			}
			out = append(out, e)
			b.pending = append(b.pending[:i], b.pending[i+1:]...)
			i--
			didwork = true
		}
	}
	b.delivered = append(b.delivered, out...)
	return out
}

// Pending returns how many events are still held back.
func (b *Buffer[C]) Pending() int {
	return len(b.pending)
}

// Delivered returns everything delivered so far.
func (b *Buffer[C]) Delivered() []C {
	return append([]C(nil), b.delivered...)
}

func (b *Buffer[C]) blocked(e C) bool {
	for _, p := range b.pending {
		if clock.Before(p, e) {
			return true
		}
	}
	return false
}

// Linearize merges the histories of several processes into one sequence
// consistent with happens-before.
func Linearize[C clock.Clock[C]](histories ...[]C) []C {
	var b Buffer[C]
	for _, h := range histories {
		b.Add(h...)
	}
	return b.Deliver()
}

// Consistent reports whether no event in seq is preceded by one that happened
// after it.
func Consistent[C clock.Clock[C]](seq []C) bool {
	for i := range seq {
		for j := i + 1; j < len(seq); j++ {
			if clock.Before(seq[j], seq[i]) {
				return false
			}
		}
	}
	return true
}
