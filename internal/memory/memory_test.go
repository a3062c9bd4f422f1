package memory

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConversation_EvictsOldestBeyondCapacity(t *testing.T) {
	conv := NewConversation(2)
	conv.Append("q1", "a1", nil)
	conv.Append("q2", "a2", nil)
	conv.Append("q3", "a3", nil)

	require.Equal(t, 2, conv.Len())
	turns := conv.Recent(10)
	require.Len(t, turns, 2)
	require.Equal(t, "q2", turns[0].Query)
	require.Equal(t, "q3", turns[1].Query)
	require.Equal(t, 2, turns[0].Seq)
	require.Equal(t, 3, turns[1].Seq)
}

func TestConversation_RecentChronological(t *testing.T) {
	conv := NewConversation(5)
	for i := 1; i <= 4; i++ {
		conv.Append(fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i), nil)
	}

	turns := conv.Recent(2)
	require.Len(t, turns, 2)
	require.Equal(t, "q3", turns[0].Query)
	require.Equal(t, "q4", turns[1].Query)

	require.Nil(t, conv.Recent(0))
	require.Len(t, conv.Recent(100), 4)
}

func TestStore_GetCreatesOnce(t *testing.T) {
	store := NewStore(10, 16, time.Minute)
	first := store.Get("s1")
	first.Append("q", "a", nil)
	second := store.Get("s1")
	require.Same(t, first, second)
	require.Equal(t, 1, second.Len())

	other := store.Get("s2")
	require.NotSame(t, first, other)
	require.Equal(t, 2, store.Len())
}

func TestStore_CapBoundsSessions(t *testing.T) {
	store := NewStore(10, 2, time.Minute)
	store.Get("s1")
	store.Get("s2")
	store.Get("s3")
	require.Equal(t, 2, store.Len())
	_, ok := store.Peek("s1")
	require.False(t, ok, "oldest session should have been evicted")
}
