package channel

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestQueueFIFO(t *testing.T) {
	q := NewQueue[int]()
	var wg sync.WaitGroup
	var got []int

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			v, err := q.Pop()
			if err != nil {
				return
			}
			got = append(got, v)
		}
	}()

	want := make([]int, 100)
	for i := range want {
		want[i] = i
		if err := q.Push(i); err != nil {
			t.Fatalf("unexpected push error: %v", err)
		}
	}
	q.Close()
	wg.Wait()

	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("values out of order (-got,+want): %s", diff)
	}
}

func TestQueueClose(t *testing.T) {
	q := NewQueue[string]()
	q.Push("a")
	q.Close()

	if err := q.Push("b"); !errors.Is(err, ErrClosed) {
		t.Errorf("push after close returned %v, wanted %v", err, ErrClosed)
	}
	if v, err := q.Pop(); err != nil || v != "a" {
		t.Errorf("pop after close returned %q, %v; wanted the value pushed before close", v, err)
	}
	if _, err := q.Pop(); !errors.Is(err, ErrClosed) {
		t.Errorf("pop on a drained closed queue returned %v, wanted %v", err, ErrClosed)
	}
	if _, ok := q.TryPop(); ok {
		t.Errorf("try pop on a drained queue should fail")
	}
}

func TestMeshPairFIFO(t *testing.T) {
	type msg struct{ from, seq int }
	m := NewMesh[msg](3)

	var wg sync.WaitGroup
	for from := 1; from < 3; from++ {
		wg.Add(1)
		go func(from int) {
			defer wg.Done()
			for seq := 0; seq < 50; seq++ {
				m.Send(0, msg{from, seq})
			}
		}(from)
	}
	wg.Wait()

	next := map[int]int{}
	for i := 0; i < 100; i++ {
		v, err := m.Receive(0)
		if err != nil {
			t.Fatalf("unexpected receive error: %v", err)
		}
		if v.seq != next[v.from] {
			t.Fatalf("from %d got seq %d, wanted %d", v.from, v.seq, next[v.from])
		}
		next[v.from]++
	}
}

func TestMeshBroadcaster(t *testing.T) {
	m := NewMesh[int](4)
	if err := m.Broadcaster(2)(7); err != nil {
		t.Fatalf("unexpected broadcast error: %v", err)
	}

	got := []int{m.Pending(0), m.Pending(1), m.Pending(2), m.Pending(3)}
	if diff := cmp.Diff(got, []int{1, 1, 0, 1}); diff != "" {
		t.Errorf("bad fan-out (-got,+want): %s", diff)
	}

	if err := m.Send(4, 1); err == nil {
		t.Errorf("sending outside the mesh should fail")
	}
}
