// Package wire encodes clock values in the protobuf wire format so they can
// travel between processes over a byte stream.
//
//	Vector: 1 pid, 2 packed counts
//	Matrix: 1 pid, 2 n, 3 packed entries in row-major order
//	Marker: 1 counter, 2 pid, 3 snapshot, 4 origin, 5 origin counter
package wire

import (
	"errors"
	"fmt"

	"github.com/spencer-p/ordering/pkg/clock"

	"google.golang.org/protobuf/encoding/protowire"
)

var (
	ErrMalformed = errors.New("Malformed clock encoding")
)

// Codec converts clock values of kind C to and from bytes.
type Codec[C any] interface {
	Encode(C) ([]byte, error)
	Decode([]byte) (C, error)
}

type VectorCodec struct{}

func (VectorCodec) Encode(v clock.Vector) ([]byte, error) {
	var b []byte
	b = appendVarint(b, 1, uint64(v.Pid))
	b = appendPacked(b, 2, v.Counts)
	return b, nil
}

func (VectorCodec) Decode(b []byte) (v clock.Vector, err error) {
	err = consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.VarintType:
			x, n := protowire.ConsumeVarint(b)
			v.Pid = int(x)
			return n, nil
		case num == 2 && typ == protowire.BytesType:
			return consumePacked(b, &v.Counts)
		}
		return protowire.ConsumeFieldValue(num, typ, b), nil
	})
	if err != nil {
		return clock.Vector{}, err
	}
	if v.Pid < 0 || v.Pid >= len(v.Counts) {
		return clock.Vector{}, fmt.Errorf("%w: vector owner %d of %d", ErrMalformed, v.Pid, len(v.Counts))
	}
	return v, nil
}

type MatrixCodec struct{}

func (MatrixCodec) Encode(m clock.Matrix) ([]byte, error) {
	n := len(m.Rows)
	entries := make([]uint64, 0, n*n)
	for _, row := range m.Rows {
		if len(row) != n {
			return nil, fmt.Errorf("%w: row of %d in a %d process matrix", ErrMalformed, len(row), n)
		}
		entries = append(entries, row...)
	}

	var b []byte
	b = appendVarint(b, 1, uint64(m.Pid))
	b = appendVarint(b, 2, uint64(n))
	b = appendPacked(b, 3, entries)
	return b, nil
}

func (MatrixCodec) Decode(b []byte) (clock.Matrix, error) {
	var (
		pid, n  int
		entries []uint64
	)
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.VarintType:
			x, k := protowire.ConsumeVarint(b)
			pid = int(x)
			return k, nil
		case num == 2 && typ == protowire.VarintType:
			x, k := protowire.ConsumeVarint(b)
			n = int(x)
			return k, nil
		case num == 3 && typ == protowire.BytesType:
			return consumePacked(b, &entries)
		}
		return protowire.ConsumeFieldValue(num, typ, b), nil
	})
	if err != nil {
		return clock.Matrix{}, err
	}
	// Divide rather than square n, which comes off the wire and may overflow.
	if n <= 0 || n > len(entries) || len(entries)%n != 0 || len(entries)/n != n || pid < 0 || pid >= n {
		return clock.Matrix{}, fmt.Errorf("%w: %d entries for owner %d of %d", ErrMalformed, len(entries), pid, n)
	}

	m := clock.Matrix{Pid: pid, Rows: make([][]uint64, n)}
	for r := range m.Rows {
		m.Rows[r] = entries[r*n : (r+1)*n : (r+1)*n]
	}
	return m, nil
}

type MarkerCodec struct{}

func (MarkerCodec) Encode(m clock.Marker) ([]byte, error) {
	var b []byte
	b = appendVarint(b, 1, m.Counter)
	b = appendVarint(b, 2, uint64(m.Pid))
	if m.Snapshot {
		b = appendVarint(b, 3, protowire.EncodeBool(true))
		b = appendVarint(b, 4, uint64(m.ID.Origin))
		b = appendVarint(b, 5, m.ID.Counter)
	}
	return b, nil
}

func (MarkerCodec) Decode(b []byte) (m clock.Marker, err error) {
	err = consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if typ != protowire.VarintType || num < 1 || num > 5 {
			return protowire.ConsumeFieldValue(num, typ, b), nil
		}
		x, n := protowire.ConsumeVarint(b)
		switch num {
		case 1:
			m.Counter = x
		case 2:
			m.Pid = int(x)
		case 3:
			m.Snapshot = protowire.DecodeBool(x)
		case 4:
			m.ID.Origin = int(x)
		case 5:
			m.ID.Counter = x
		}
		return n, nil
	})
	if err != nil {
		return clock.Marker{}, err
	}
	return m, nil
}

func appendVarint(b []byte, num protowire.Number, x uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, x)
}

func appendPacked(b []byte, num protowire.Number, xs []uint64) []byte {
	var packed []byte
	for _, x := range xs {
		packed = protowire.AppendVarint(packed, x)
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, packed)
}

func consumePacked(b []byte, out *[]uint64) (int, error) {
	packed, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return n, nil
	}
	for len(packed) > 0 {
		x, k := protowire.ConsumeVarint(packed)
		if k < 0 {
			return 0, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(k))
		}
		*out = append(*out, x)
		packed = packed[k:]
	}
	return n, nil
}

// consumeFields walks every field of b. field consumes the value of one field
// and returns its length, or a negative protowire error code.
func consumeFields(b []byte, field func(protowire.Number, protowire.Type, []byte) (int, error)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		b = b[n:]

		n, err := field(num, typ, b)
		if err != nil {
			return err
		}
		if n < 0 {
			return fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		b = b[n:]
	}
	return nil
}
