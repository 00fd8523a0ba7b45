package wire

import (
	"errors"
	"testing"

	"github.com/spencer-p/ordering/pkg/clock"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestVectorCodec(t *testing.T) {
	want := clock.NewVector(2, 4).Merge(clock.NewVector(0, 4).Extend())
	b, err := VectorCodec{}.Encode(want)
	if err != nil {
		t.Fatalf("unexpected encode error: %v", err)
	}
	got, err := VectorCodec{}.Decode(b)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("bad decode (-got,+want): %s", diff)
	}
}

func TestMatrixCodec(t *testing.T) {
	a := clock.NewMatrix(0, 3).Extend()
	want := clock.NewMatrix(1, 3).Merge(a).Extend()

	b, err := MatrixCodec{}.Encode(want)
	if err != nil {
		t.Fatalf("unexpected encode error: %v", err)
	}
	got, err := MatrixCodec{}.Decode(b)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("bad decode (-got,+want): %s", diff)
	}

	// Decoded rows must not alias each other.
	got.Rows[0] = append(got.Rows[0], 9)
	if got.Rows[1][0] != want.Rows[1][0] {
		t.Errorf("appending to row 0 clobbered row 1: %v", got.Rows)
	}
}

func TestMarkerCodec(t *testing.T) {
	tests := []clock.Marker{
		{Counter: 7, Pid: 1},
		{Counter: 3, Pid: 2, Snapshot: true, ID: clock.SnapshotID{Origin: 0, Counter: 2}},
		{},
	}

	for _, want := range tests {
		b, _ := MarkerCodec{}.Encode(want)
		got, err := MarkerCodec{}.Decode(b)
		if err != nil {
			t.Errorf("unexpected decode error for %v: %v", want, err)
		}
		if diff := cmp.Diff(got, want); diff != "" {
			t.Errorf("bad decode (-got,+want): %s", diff)
		}
	}
}

func TestUnknownFieldsAreSkipped(t *testing.T) {
	b, _ := MarkerCodec{}.Encode(clock.Marker{Counter: 4, Pid: 1})
	b = protowire.AppendTag(b, 9, protowire.BytesType)
	b = protowire.AppendBytes(b, []byte("extension"))

	got, err := MarkerCodec{}.Decode(b)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if got.Counter != 4 || got.Pid != 1 {
		t.Errorf("got %v, wanted <1:4>", got)
	}
}

func TestMalformed(t *testing.T) {
	truncated, _ := VectorCodec{}.Encode(clock.NewVector(0, 3))
	truncated = truncated[:len(truncated)-1]

	short, _ := MatrixCodec{}.Encode(clock.NewMatrix(0, 2))
	short = protowire.AppendTag(short, 2, protowire.VarintType)
	short = protowire.AppendVarint(short, 3)

	tests := map[string]func() error{
		"truncated vector": func() error {
			_, err := VectorCodec{}.Decode(truncated)
			return err
		},
		"owner outside vector": func() error {
			b := appendVarint(nil, 1, 5)
			b = appendPacked(b, 2, []uint64{1, 0})
			_, err := VectorCodec{}.Decode(b)
			return err
		},
		"matrix size disagrees with entries": func() error {
			_, err := MatrixCodec{}.Decode(short)
			return err
		},
		"matrix size overflows when squared": func() error {
			b := appendVarint(nil, 1, 0)
			b = appendVarint(b, 2, 1<<32)
			b = appendPacked(b, 3, nil)
			_, err := MatrixCodec{}.Decode(b)
			return err
		},
		"matrix larger than its entries": func() error {
			b := appendVarint(nil, 1, 0)
			b = appendVarint(b, 2, 3)
			b = appendPacked(b, 3, []uint64{1, 0, 0, 0})
			_, err := MatrixCodec{}.Decode(b)
			return err
		},
		"bad tag": func() error {
			_, err := MarkerCodec{}.Decode([]byte{0xff})
			return err
		},
	}

	for name, fn := range tests {
		if err := fn(); !errors.Is(err, ErrMalformed) {
			t.Errorf("%s: got %v, wanted %v", name, err, ErrMalformed)
		}
	}
}
