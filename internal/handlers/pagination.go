package handlers

import (
	"fmt"
	"strconv"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// parseLimitSkip reads ?limit= and ?skip=. Limit is capped at 100 so a
// single request cannot pull an unbounded result set.
func parseLimitSkip(limitStr, skipStr string) (int64, int64, error) {
	limit := int64(defaultLimit)
	skip := int64(0)

	if limitStr != "" {
		parsed, err := strconv.ParseInt(limitStr, 10, 64)
		if err != nil || parsed < 1 {
			return 0, 0, fmt.Errorf("invalid limit: %s", limitStr)
		}
		limit = parsed
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	if skipStr != "" {
		parsed, err := strconv.ParseInt(skipStr, 10, 64)
		if err != nil || parsed < 0 {
			return 0, 0, fmt.Errorf("invalid skip: %s", skipStr)
		}
		skip = parsed
	}

	return limit, skip, nil
}
