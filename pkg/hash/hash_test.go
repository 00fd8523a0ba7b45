package hash

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEltsEqual(t *testing.T) {
	tests := []struct {
		e1, e2 []int
		want   bool
	}{{
		e1:   []int{1, 2},
		e2:   []int{1, 3},
		want: false,
	}, {
		e1:   []int{1, 2},
		e2:   []int{1, 2},
		want: true,
	}, {
		e1:   []int{1, 2},
		e2:   []int{2, 1},
		want: true,
	}, {
		e1:   []int{},
		e2:   []int{1, 2},
		want: false,
	}, {
		e1:   []int{1, 2, 3},
		e2:   []int{1, 2},
		want: false,
	}}

	for _, tc := range tests {
		got := eltsEqual(tc.e1, tc.e2)
		if got != tc.want {
			t.Errorf("For %v == %v, got %t, wanted %t", tc.e1, tc.e2, got, tc.want)
		}
	}
}

func TestRing(t *testing.T) {
	r := New([]int{3, 1, 2})
	if diff := cmp.Diff(r.Members(), []int{1, 2, 3}); diff != "" {
		t.Errorf("bad members (-got,+want): %s", diff)
	}

	counts := map[int]int{}
	for i := 0; i < 300; i++ {
		key := fmt.Sprintf("key-%d", i)
		got, err := r.Get(key)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if again, _ := r.Get(key); again != got {
			t.Errorf("key %q moved from %d to %d", key, got, again)
		}
		counts[got]++
	}
	for _, m := range []int{1, 2, 3} {
		if counts[m] == 0 {
			t.Errorf("process %d owns no keys: %v", m, counts)
		}
	}

	if r.TestAndSet([]int{2, 1, 3}) {
		t.Errorf("same members in a different order should not change the ring")
	}
	if !r.TestAndSet([]int{2}) {
		t.Errorf("new members should change the ring")
	}
	if got, _ := r.Get("anything"); got != 2 {
		t.Errorf("a ring of one should map everything to it, got %d", got)
	}

	r.Set(nil)
	if _, err := r.Get("x"); !errors.Is(err, ErrNoElements) {
		t.Errorf("empty ring returned %v, wanted %v", err, ErrNoElements)
	}
}
