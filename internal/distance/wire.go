package distance

import (
	"encoding/binary"
	"fmt"

	"github.com/golang/snappy"
)

// Encode serializes the matrix as N followed by the row-major values, each
// a little-endian uint32, then snappy-compresses the result. This is the
// payload the Distributed Coordinator's broadcast transport puts on the
// wire: for N <= 18 the uncompressed form is at most a few KB, but
// compressing it keeps the broadcast path identical in shape to the
// teacher's WAL entries, which are always snappy-framed before they hit a
// socket.
func (m *Matrix) Encode() []byte {
	raw := make([]byte, 4+4*len(m.d))
	binary.LittleEndian.PutUint32(raw[0:4], uint32(m.n))
	for i, v := range m.d {
		binary.LittleEndian.PutUint32(raw[4+4*i:8+4*i], uint32(v))
	}
	return snappy.Encode(nil, raw)
}

// DecodeMatrix reverses Encode, rebuilding an identical Matrix including
// its derived c1/c2 tables.
func DecodeMatrix(compressed []byte) (*Matrix, error) {
	raw, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, fmt.Errorf("distance: decode matrix: %w", err)
	}
	if len(raw) < 4 {
		return nil, fmt.Errorf("distance: decode matrix: payload too short")
	}

	n := int(binary.LittleEndian.Uint32(raw[0:4]))
	want := 4 + 4*n*n
	if len(raw) != want {
		return nil, fmt.Errorf("distance: decode matrix: expected %d bytes, got %d", want, len(raw))
	}

	values := make([]int, n*n)
	for i := range values {
		values[i] = int(binary.LittleEndian.Uint32(raw[4+4*i : 8+4*i]))
	}

	return New(n, values)
}
