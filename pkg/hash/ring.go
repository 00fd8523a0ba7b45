package hash

import (
	"errors"
	"sort"
	"strconv"
	"sync"

	"stathat.com/c/consistent"
)

var (
	ErrNoElements = errors.New("No elements to hash to")
)

// Ring implements consistent hashing of keys onto process ids.
type Ring struct {
	c       *consistent.Consistent
	members []int
	mtx     sync.Mutex
}

func New(members []int) *Ring {
	r := &Ring{c: consistent.New()}
	r.Set(members)
	return r
}

// Get returns the process that owns the given key.
func (r *Ring) Get(key string) (int, error) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	name, err := r.c.Get(key)
	if errors.Is(err, consistent.ErrEmptyCircle) {
		return -1, ErrNoElements
	} else if err != nil {
		return -1, err
	}
	return strconv.Atoi(name)
}

// Members returns the processes on the ring in ascending order.
func (r *Ring) Members() []int {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	res := make([]int, len(r.members))
	copy(res, r.members)
	return res
}

func (r *Ring) Set(members []int) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.set(members)
}

// Test and set performs an atomic Set operation iff the new member slice is
// different than the old. Returns true if the member slice changed.
func (r *Ring) TestAndSet(members []int) bool {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	changed := !eltsEqual(members, r.members)
	if changed {
		r.set(members)
	}
	return changed
}

func (r *Ring) set(members []int) {
	sorted := make([]int, len(members))
	copy(sorted, members)
	sort.Ints(sorted)

	names := make([]string, len(sorted))
	for i, m := range sorted {
		names[i] = strconv.Itoa(m)
	}
	r.c.Set(names)
	r.members = sorted
}

// eltsEqual returns true iff the elts are the same set-wise.
func eltsEqual(e1 []int, e2 []int) bool {
	s1 := make(map[int]struct{}, len(e1))
	for _, e := range e1 {
		s1[e] = struct{}{}
	}
	s2 := make(map[int]struct{}, len(e2))
	for _, e := range e2 {
		s2[e] = struct{}{}
	}
	if len(s1) != len(s2) {
		return false
	}
	for e := range s1 {
		if _, ok := s2[e]; !ok {
			return false
		}
	}
	return true
}
