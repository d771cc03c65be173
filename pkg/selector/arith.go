package selector

import (
	"fmt"
	"math"
)

// normalizeSlice resolves slice bounds against n rows the way Python's
// slice.indices does: unset bounds default by the sign of step, negative
// bounds count from the end, and everything is clipped into the frame.
// step must not be zero.
func normalizeSlice(n, start, stop, step int64) (first, count, stride int64) {
	if step == Unset {
		step = 1
	}
	if step > 0 {
		start = clipForward(n, start, 0)
		stop = clipForward(n, stop, n)
		if stop > start {
			count = (stop-start-1)/step + 1
		}
	} else {
		start = clipBackward(n, start, n-1)
		stop = clipBackward(n, stop, -1)
		if start > stop {
			count = (start-stop-1)/(-step) + 1
		}
	}
	if count == 0 {
		start = 0
	}
	return start, count, step
}

// clipForward clips a bound into [0, n].
func clipForward(n, v, dflt int64) int64 {
	switch {
	case v == Unset:
		return dflt
	case v < 0:
		v += n
		if v < 0 {
			return 0
		}
	case v > n:
		return n
	}
	return v
}

// clipBackward clips a bound into [-1, n-1].
func clipBackward(n, v, dflt int64) int64 {
	switch {
	case v == Unset:
		return dflt
	case v < 0:
		v += n
		if v < 0 {
			return -1
		}
	case v >= n:
		return n - 1
	}
	return v
}

// rangeTerms returns the number of terms of range(start, stop, step) and
// its last term. ok is false for an empty range. The span is computed in
// uint64 so that ranges wider than MaxInt64 count correctly. step must not
// be zero.
func rangeTerms(start, stop, step int64) (count uint64, last int64, ok bool) {
	if step > 0 {
		if stop <= start {
			return 0, 0, false
		}
		span := uint64(stop) - uint64(start)
		count = (span-1)/uint64(step) + 1
		return count, int64(uint64(start) + (count-1)*uint64(step)), true
	}
	if start <= stop {
		return 0, 0, false
	}
	span := uint64(start) - uint64(stop)
	stride := -uint64(step)
	count = (span-1)/stride + 1
	return count, int64(uint64(start) - (count-1)*stride), true
}

// checkWraparound verifies that the first and last term of a non-empty range
// lie on the same side of zero. Such a range has at most MaxInt64 terms.
func checkWraparound(start, stop, step, last int64) error {
	if (start >= 0) != (last >= 0) {
		return fmt.Errorf("%w: range(%d, %d, %d) crosses from %d to %d",
			ErrWraparound, start, stop, step, start, last)
	}
	return nil
}

// rowsNeeded is the smallest row count for which index v is valid.
func rowsNeeded(v int64) int64 {
	switch {
	case v == math.MaxInt64, v == math.MinInt64:
		return math.MaxInt64
	case v >= 0:
		return v + 1
	}
	return -v
}
