package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextRunLaterToday(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Moscow")
	require.NoError(t, err)

	now := time.Date(2025, time.June, 10, 8, 30, 0, 0, loc)
	next := NextRun(now, 10, 0)

	assert.Equal(t, time.Date(2025, time.June, 10, 10, 0, 0, 0, loc), next)
}

func TestNextRunRollsToTomorrow(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Moscow")
	require.NoError(t, err)

	now := time.Date(2025, time.June, 10, 10, 0, 0, 0, loc)
	next := NextRun(now, 10, 0)
	assert.Equal(t, time.Date(2025, time.June, 11, 10, 0, 0, 0, loc), next)

	now = time.Date(2025, time.June, 10, 23, 59, 0, 0, loc)
	next = NextRun(now, 0, 0)
	assert.Equal(t, time.Date(2025, time.June, 11, 0, 0, 0, 0, loc), next)
}

func TestNextRunMonthBoundary(t *testing.T) {
	now := time.Date(2025, time.June, 30, 12, 0, 0, 0, time.UTC)
	next := NextRun(now, 10, 0)
	assert.Equal(t, time.Date(2025, time.July, 1, 10, 0, 0, 0, time.UTC), next)
}
