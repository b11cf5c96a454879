package distance

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/tspbb/solver/internal/solvererr"
)

// ParseFile reads the distance-file format described in spec.md §6: a
// leading integer N, followed by either N*N integers (full matrix,
// row-major) or N*(N-1)/2 integers (strict lower triangle, row-major).
// Whitespace (spaces and newlines, in any mix) separates tokens.
func ParseFile(r io.Reader) (*Matrix, error) {
	ints, err := scanInts(r)
	if err != nil {
		return nil, err
	}
	if len(ints) == 0 {
		return nil, solvererr.ErrMalformedMatrix
	}

	n := ints[0]
	values := ints[1:]
	return New(n, values)
}

// scanInts tokenizes the entire reader on whitespace and parses each token
// as a non-negative integer.
func scanInts(r io.Reader) ([]int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)
	// Distance files for N<=18 are small; raise the default token/line
	// cap defensively in case the input is all on one very long line.
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	var out []int
	for scanner.Scan() {
		tok := scanner.Text()
		v, err := strconv.Atoi(tok)
		if err != nil {
			return nil, fmt.Errorf("%w: non-integer token %q", solvererr.ErrMalformedMatrix, tok)
		}
		if v < 0 {
			return nil, fmt.Errorf("%w: negative value %d", solvererr.ErrMalformedMatrix, v)
		}
		out = append(out, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", solvererr.ErrMalformedMatrix, err)
	}
	return out, nil
}
