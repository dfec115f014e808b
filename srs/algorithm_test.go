package srs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeNextReview(t *testing.T) {
	p := DefaultParams()

	tests := []struct {
		name     string
		state    State
		response Response
		want     Update
	}{
		{
			name:     "good from default state",
			state:    State{IntervalDays: 1, Repetitions: 0, Ease: 2.5},
			response: Good,
			want:     Update{IntervalDays: 3, Repetitions: 1, Ease: 2.5, Mastery: Learning},
		},
		{
			name:     "easy with enough repetitions masters the card",
			state:    State{IntervalDays: 10, Repetitions: 3, Ease: 2.0},
			response: Easy,
			want:     Update{IntervalDays: 26, Repetitions: 4, Ease: 2.15, Mastery: Mastered},
		},
		{
			name:     "hard hits the ease floor",
			state:    State{IntervalDays: 5, Repetitions: 1, Ease: 1.35},
			response: Hard,
			want:     Update{IntervalDays: 6, Repetitions: 2, Ease: 1.3, Mastery: Reviewing},
		},
		{
			name:     "again resets regardless of prior state",
			state:    State{IntervalDays: 120, Repetitions: 9, Ease: 2.5},
			response: Again,
			want:     Update{IntervalDays: 1, Repetitions: 0, Ease: 2.3, Mastery: Learning},
		},
		{
			name:     "again at the ease floor stays at the floor",
			state:    State{IntervalDays: 1, Repetitions: 0, Ease: 1.3},
			response: Again,
			want:     Update{IntervalDays: 1, Repetitions: 0, Ease: 1.3, Mastery: Learning},
		},
		{
			name:     "easy at the ease ceiling stays at the ceiling",
			state:    State{IntervalDays: 2, Repetitions: 2, Ease: 2.5},
			response: Easy,
			want:     Update{IntervalDays: 7, Repetitions: 3, Ease: 2.5, Mastery: Mastered},
		},
		{
			name:     "interval clamps at the cap",
			state:    State{IntervalDays: 300, Repetitions: 8, Ease: 2.5},
			response: Good,
			want:     Update{IntervalDays: 365, Repetitions: 9, Ease: 2.5, Mastery: Reviewing},
		},
		{
			name:     "hard with zero prior repetitions stays learning",
			state:    State{IntervalDays: 1, Repetitions: 0, Ease: 2.5},
			response: Hard,
			want:     Update{IntervalDays: 1, Repetitions: 1, Ease: 2.35, Mastery: Learning},
		},
		{
			name:     "easy with one prior repetition stays reviewing",
			state:    State{IntervalDays: 3, Repetitions: 1, Ease: 2.0},
			response: Easy,
			want:     Update{IntervalDays: 8, Repetitions: 2, Ease: 2.15, Mastery: Reviewing},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.ComputeNextReview(tt.state, tt.response)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeNextReviewInvalidResponse(t *testing.T) {
	p := DefaultParams()
	_, err := p.ComputeNextReview(DefaultState(), Response("meh"))
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestComputeNextReviewBounds(t *testing.T) {
	p := DefaultParams()
	intervals := []int{1, 2, 7, 50, 200, 365}
	repetitions := []int{0, 1, 2, 5, 20}
	eases := []float64{1.3, 1.45, 1.8, 2.2, 2.5}
	responses := []Response{Again, Hard, Good, Easy}

	for _, interval := range intervals {
		for _, reps := range repetitions {
			for _, ease := range eases {
				for _, response := range responses {
					got, err := p.ComputeNextReview(State{
						IntervalDays: interval,
						Repetitions:  reps,
						Ease:         ease,
					}, response)
					require.NoError(t, err)
					assert.GreaterOrEqual(t, got.IntervalDays, 1)
					assert.LessOrEqual(t, got.IntervalDays, p.MaxIntervalDays)
					assert.GreaterOrEqual(t, got.Ease, p.MinEase)
					assert.LessOrEqual(t, got.Ease, p.MaxEase)
				}
			}
		}
	}
}

func TestComputeNextReviewAgainAlwaysResets(t *testing.T) {
	p := DefaultParams()
	states := []State{
		{IntervalDays: 1, Repetitions: 0, Ease: 2.5},
		{IntervalDays: 30, Repetitions: 4, Ease: 1.7},
		{IntervalDays: 365, Repetitions: 20, Ease: 1.3},
	}

	for _, state := range states {
		got, err := p.ComputeNextReview(state, Again)
		require.NoError(t, err)
		assert.Equal(t, 1, got.IntervalDays)
		assert.Equal(t, 0, got.Repetitions)
		assert.Equal(t, Learning, got.Mastery)
	}
}

func TestComputeNextReviewGoodProgression(t *testing.T) {
	p := DefaultParams()
	state := DefaultState()

	wantIntervals := []int{3, 8, 20}
	wantMastery := []MasteryLevel{Learning, Reviewing, Reviewing}

	for i := range wantIntervals {
		got, err := p.ComputeNextReview(state, Good)
		require.NoError(t, err)
		assert.Equal(t, wantIntervals[i], got.IntervalDays, "review %d", i+1)
		assert.Equal(t, i+1, got.Repetitions, "review %d", i+1)
		assert.Equal(t, wantMastery[i], got.Mastery, "review %d", i+1)
		state = State{IntervalDays: got.IntervalDays, Repetitions: got.Repetitions, Ease: got.Ease}
	}
}

func TestComputeNextReviewCustomParams(t *testing.T) {
	// A tight interval cap makes clamping observable without huge inputs
	p := DefaultParams()
	p.MaxIntervalDays = 10

	got, err := p.ComputeNextReview(State{IntervalDays: 8, Repetitions: 3, Ease: 2.5}, Good)
	require.NoError(t, err)
	assert.Equal(t, 10, got.IntervalDays)
}
