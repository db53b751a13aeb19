package recommend

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTrainEmptyDataReturnsNil(t *testing.T) {
	require.Nil(t, Train(DefaultConfig(), nil))
	require.Nil(t, Train(DefaultConfig(), []Interaction{}))
}

func TestTrainLearnsObservedPreferences(t *testing.T) {
	// User 1 books spots 10 and 11, user 2 books spots 20 and 21. Each user
	// should score their own spots above the other user's.
	data := []Interaction{
		{UserID: 1, SpotID: 10, Weight: 1.0},
		{UserID: 1, SpotID: 11, Weight: 1.5},
		{UserID: 2, SpotID: 20, Weight: 1.0},
		{UserID: 2, SpotID: 21, Weight: 1.5},
	}
	m := Train(DefaultConfig(), data)
	require.NotNil(t, m)

	own, ok := m.Score(1, 10)
	require.True(t, ok)
	other, ok := m.Score(1, 20)
	require.True(t, ok)
	require.Greater(t, own, other)
}

func TestTrainHigherWeightScoresHigher(t *testing.T) {
	data := []Interaction{
		{UserID: 1, SpotID: 10, Weight: 1.0},
		{UserID: 1, SpotID: 11, Weight: 1.5},
	}
	cfg := DefaultConfig()
	cfg.Iterations = 200
	m := Train(cfg, data)
	require.NotNil(t, m)

	plain, ok := m.Score(1, 10)
	require.True(t, ok)
	rated, ok := m.Score(1, 11)
	require.True(t, ok)
	require.Greater(t, rated, plain)
}

func TestTrainIsDeterministicForSeed(t *testing.T) {
	data := []Interaction{
		{UserID: 1, SpotID: 10, Weight: 1.0},
		{UserID: 2, SpotID: 10, Weight: 1.5},
		{UserID: 2, SpotID: 11, Weight: 1.0},
	}
	a := Train(DefaultConfig(), data)
	b := Train(DefaultConfig(), data)

	sa, ok := a.Score(2, 11)
	require.True(t, ok)
	sb, ok := b.Score(2, 11)
	require.True(t, ok)
	require.Equal(t, sa, sb)
}

func TestModelScoreUnseenPair(t *testing.T) {
	m := Train(DefaultConfig(), []Interaction{{UserID: 1, SpotID: 10, Weight: 1.0}})
	require.NotNil(t, m)

	_, ok := m.Score(99, 10)
	require.False(t, ok)
	_, ok = m.Score(1, 99)
	require.False(t, ok)
}

func TestScorerSwap(t *testing.T) {
	s := NewScorer()
	require.False(t, s.Ready())
	_, ok := s.Score(1, 10)
	require.False(t, ok)

	m := Train(DefaultConfig(), []Interaction{{UserID: 1, SpotID: 10, Weight: 1.0}})
	s.Swap(m)
	require.True(t, s.Ready())
	_, ok = s.Score(1, 10)
	require.True(t, ok)

	s.Swap(nil)
	require.False(t, s.Ready())
}

func TestScorerConcurrentSwapAndRead(t *testing.T) {
	s := NewScorer()
	m := Train(DefaultConfig(), []Interaction{{UserID: 1, SpotID: 10, Weight: 1.0}})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				s.Score(1, 10)
			}
		}()
	}
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				s.Swap(m)
				s.Swap(nil)
			}
		}()
	}
	wg.Wait()
}
