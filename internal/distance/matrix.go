// Package distance owns the immutable symmetric distance matrix and its
// derived cheapest/second-cheapest outgoing edge tables, plus the wire
// format used to broadcast the matrix from rank 0 to every other worker.
package distance

import (
	"hash/fnv"

	"github.com/tspbb/solver/internal/solvererr"
)

// MaxCities is the largest instance size this solver supports: the visited
// mask is assumed to fit in a native int, and branch-and-bound on more than
// 18 cities is out of scope (spec.md §1 Non-goals).
const MaxCities = 18

// Matrix is an immutable, symmetric, non-negative-integer cost matrix.
// D[i][i] is always 0. City 0 is the fixed origin of every tour.
type Matrix struct {
	n  int
	d  []int // row-major, n*n
	c1 []int // cheapest outgoing edge per city
	c2 []int // second-cheapest outgoing edge per city
}

// New builds a Matrix from a declared size N and a flat list of values that
// must be either N*N (full matrix, row-major) or N*(N-1)/2 (strict lower
// triangle, row-major: row 1 col 0; row 2 cols 0..1; ...) integers.
//
// D[i][i] is forced to 0 regardless of what the input supplies. New fails
// with solvererr.ErrMalformedMatrix when N is outside [1, MaxCities] or
// when len(values) matches neither recognized layout.
func New(n int, values []int) (*Matrix, error) {
	if n < 1 || n > MaxCities {
		return nil, solvererr.ErrMalformedMatrix
	}

	d := make([]int, n*n)

	switch len(values) {
	case n * n:
		copy(d, values)
	case n * (n - 1) / 2:
		fillFromLowerTriangle(d, n, values)
	default:
		return nil, solvererr.ErrMalformedMatrix
	}

	for i := 0; i < n; i++ {
		d[i*n+i] = 0
	}

	m := &Matrix{n: n, d: d}
	m.deriveCheapEdges()
	return m, nil
}

// fillFromLowerTriangle interprets values as the strict lower triangle of a
// symmetric matrix (row 1 col 0; row 2 cols 0..1; ... row n-1 cols 0..n-2)
// and mirrors it onto both halves of d.
func fillFromLowerTriangle(d []int, n int, values []int) {
	idx := 0
	for row := 1; row < n; row++ {
		for col := 0; col < row; col++ {
			v := values[idx]
			idx++
			d[row*n+col] = v
			d[col*n+row] = v
		}
	}
}

// deriveCheapEdges computes c1[i]/c2[i] in one pass per row. With fewer
// than two off-diagonal entries (N < 3) the missing value defaults to 0.
func (m *Matrix) deriveCheapEdges() {
	n := m.n
	m.c1 = make([]int, n)
	m.c2 = make([]int, n)

	for i := 0; i < n; i++ {
		best, second := -1, -1
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			v := m.d[i*n+j]
			if best == -1 || v < best {
				second = best
				best = v
			} else if second == -1 || v < second {
				second = v
			}
		}
		if best == -1 {
			best = 0
		}
		if second == -1 {
			second = 0
		}
		m.c1[i] = best
		m.c2[i] = second
	}
}

// N returns the number of cities.
func (m *Matrix) N() int { return m.n }

// At returns D[i][j] in O(1).
func (m *Matrix) At(i, j int) int { return m.d[i*m.n+j] }

// C1 returns the cheapest outgoing edge cost for city i.
func (m *Matrix) C1(i int) int { return m.c1[i] }

// C2 returns the second-cheapest outgoing edge cost for city i.
func (m *Matrix) C2(i int) int { return m.c2[i] }

// Checksum is an fnv-1a hash over N followed by the row-major matrix
// values. The coordinator logs it when a rank's matrix is ready, so the
// ranks' log lines show whether they hold an identical Distance Model; it
// does not compare checksums across ranks itself.
func (m *Matrix) Checksum() uint64 {
	h := fnv.New64a()
	b := make([]byte, 8)
	putUvarint := func(v int) {
		for i := range b {
			b[i] = byte(v >> (8 * i))
		}
		h.Write(b)
	}
	putUvarint(m.n)
	for _, v := range m.d {
		putUvarint(v)
	}
	return h.Sum64()
}
