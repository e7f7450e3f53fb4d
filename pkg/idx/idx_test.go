package idx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewIsSortable(t *testing.T) {
	t.Parallel()

	a := New()
	b := New()
	require.Len(t, a, 26)
	require.Less(t, a, b)
}

func TestTime(t *testing.T) {
	t.Parallel()

	before := time.Now().UTC().Truncate(time.Millisecond)
	id := New()
	got := Time(id)
	require.False(t, got.Before(before))
	require.WithinDuration(t, time.Now().UTC(), got, time.Second)

	require.True(t, Time("not-a-ulid").IsZero())
}
