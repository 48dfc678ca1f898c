package suez

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runSearch(t *testing.T, env *testEnv, today time.Time) (float64, error) {
	t.Helper()
	c := env.client(t, today, testCounter)

	var total float64
	var searchErr error
	require.NoError(t, c.withSession(context.Background(), func(ctx context.Context, s *session) error {
		total, searchErr = s.lastKnown(ctx, today, testCounter)
		return nil
	}))
	return total, searchErr
}

func TestLastKnownStopsAtFirstReading(t *testing.T) {
	env := newTestEnv(t)
	env.portal.months["2024/5"] = monthPage(10, func(day int) (float64, float64) {
		if day <= 3 {
			return 1, float64(200 + day)
		}
		return 0, 0
	})

	total, err := runSearch(t, env, parisTime(2024, time.May, 10))
	require.NoError(t, err)
	assert.Equal(t, 203.0, total)
	assert.Equal(t, 1, env.portal.monthCount("2024/5"))
	assert.Equal(t, 0, env.portal.monthCount("2024/4"))
}

func TestLastKnownIgnoresBelowEpsilon(t *testing.T) {
	env := newTestEnv(t)
	env.portal.months["2024/5"] = monthPage(2, func(day int) (float64, float64) {
		if day == 1 {
			return 0, 0.5
		}
		return 0, 0.0000005
	})

	total, err := runSearch(t, env, parisTime(2024, time.May, 2))
	require.NoError(t, err)
	assert.Equal(t, 0.5, total)
}

func TestLastKnownCrossesYearAndSkipsErrorMonths(t *testing.T) {
	env := newTestEnv(t)
	// January has no page at all, December's last days hold the reading.
	env.portal.months["2023/12"] = monthPage(31, func(day int) (float64, float64) {
		if day <= 28 {
			return 1, float64(1000 + day)
		}
		return 0, 0
	})

	total, err := runSearch(t, env, parisTime(2024, time.January, 5))
	require.NoError(t, err)
	assert.Equal(t, 1028.0, total)
	assert.Equal(t, 1, env.portal.monthCount("2024/1"))
	assert.Equal(t, 1, env.portal.monthCount("2023/12"))
}

func TestLastKnownBoundedAtSixtyDays(t *testing.T) {
	env := newTestEnv(t)
	// only short pages: every lookup past the end counts as no reading
	for _, key := range []string{"2024/7", "2024/6", "2024/5", "2024/4"} {
		env.portal.months[key] = `[["1",0,0]]`
	}

	_, err := runSearch(t, env, parisTime(2024, time.July, 31))
	require.True(t, errors.Is(err, ErrLastKnownNotFound))

	// Jul 31 back 60 days reaches Jun 2: two month pages, each read once.
	assert.Equal(t, 1, env.portal.monthCount("2024/7"))
	assert.Equal(t, 1, env.portal.monthCount("2024/6"))
	assert.Equal(t, 0, env.portal.monthCount("2024/5"))
}

func TestLastKnownAbortsOnMalformedTotal(t *testing.T) {
	env := newTestEnv(t)
	env.portal.months["2024/5"] = `[["1",0,"n/a"]]`

	_, err := runSearch(t, env, parisTime(2024, time.May, 1))
	var malformed *MalformedResponseError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "last_known", malformed.Field)
}

func TestLastKnownAbortsOnTransportError(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t, parisTime(2024, time.May, 1), testCounter)
	env.server.Close()

	err := c.withSession(context.Background(), func(ctx context.Context, s *session) error {
		_, err := s.lastKnown(ctx, parisTime(2024, time.May, 1), testCounter)
		return err
	})
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrLastKnownNotFound))
}
