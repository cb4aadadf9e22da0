package content

import (
	"strconv"
	"strings"
)

// ByteRange is a single inclusive byte interval within a file.
type ByteRange struct {
	Start int64
	End   int64
}

// Length returns the number of bytes covered by the range.
func (b ByteRange) Length() int64 {
	return b.End - b.Start + 1
}

// ParseRange parses a Range header value against a file of the given
// size. Only a single bytes range with an explicit start is accepted;
// suffix ranges ("bytes=-500") and multi-range requests are rejected.
// An end past the last byte is clamped to it.
func ParseRange(header string, size int64) (ByteRange, error) {
	const prefix = "bytes="
	if !strings.HasPrefix(header, prefix) {
		return ByteRange{}, ErrRangeNotSatisfiable
	}
	spec := strings.TrimPrefix(header, prefix)
	if strings.Contains(spec, ",") {
		return ByteRange{}, ErrRangeNotSatisfiable
	}

	startStr, endStr, ok := strings.Cut(spec, "-")
	if !ok || startStr == "" {
		return ByteRange{}, ErrRangeNotSatisfiable
	}

	start, err := strconv.ParseInt(strings.TrimSpace(startStr), 10, 64)
	if err != nil || start < 0 {
		return ByteRange{}, ErrRangeNotSatisfiable
	}

	end := size - 1
	if strings.TrimSpace(endStr) != "" {
		end, err = strconv.ParseInt(strings.TrimSpace(endStr), 10, 64)
		if err != nil || end < 0 {
			return ByteRange{}, ErrRangeNotSatisfiable
		}
		if end > size-1 {
			end = size - 1
		}
	}

	if start >= size || start > end {
		return ByteRange{}, ErrRangeNotSatisfiable
	}
	return ByteRange{Start: start, End: end}, nil
}
