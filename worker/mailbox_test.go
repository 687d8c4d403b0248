package worker

import (
	"sync"
	"testing"

	"github.com/battlesnakeio/snake/rules"
	"github.com/stretchr/testify/require"
)

func TestMailboxEmpty(t *testing.T) {
	m := NewMailbox()
	_, ok := m.Drain()
	require.False(t, ok)
}

func TestMailboxLatestWins(t *testing.T) {
	m := NewMailbox()
	m.Post(rules.DirectionUp)
	m.Post(rules.DirectionLeft)
	m.Post(rules.DirectionDown)

	d, ok := m.Drain()
	require.True(t, ok)
	require.Equal(t, rules.DirectionDown, d)

	_, ok = m.Drain()
	require.False(t, ok, "a direction is delivered once")
}

func TestMailboxConcurrentPosts(t *testing.T) {
	m := NewMailbox()
	var wg sync.WaitGroup
	wg.Add(20)
	for i := 0; i < 20; i++ {
		go func(i int) {
			defer wg.Done()
			m.Post(rules.Directions[i%len(rules.Directions)])
		}(i)
	}
	wg.Wait()

	d, ok := m.Drain()
	require.True(t, ok)
	require.True(t, d.Valid())
	_, ok = m.Drain()
	require.False(t, ok)
}
