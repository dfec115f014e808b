package srs

import "math"

// Response is the user's qualitative recall judgment for a single review.
type Response string

const (
	Again Response = "again"
	Hard  Response = "hard"
	Good  Response = "good"
	Easy  Response = "easy"
)

// Valid reports whether r is one of the four recognized responses.
func (r Response) Valid() bool {
	switch r {
	case Again, Hard, Good, Easy:
		return true
	}
	return false
}

// MasteryLevel buckets a card's retention state. It is a pure function of
// the repetition count before an update and the response given, never set
// independently.
type MasteryLevel string

const (
	Learning  MasteryLevel = "learning"
	Reviewing MasteryLevel = "reviewing"
	Mastered  MasteryLevel = "mastered"
)

// StudyMode is recorded with each session for bookkeeping; it does not
// affect scheduling.
type StudyMode string

const (
	ModeSpacedRepetition StudyMode = "spaced_repetition"
	ModeCram             StudyMode = "cram"
	ModeTest             StudyMode = "test"
	ModeMatch            StudyMode = "match"
)

// Params holds the scheduling constants. Tests probe boundary behavior by
// constructing their own Params rather than relying on magic numbers.
type Params struct {
	MinEase         float64 // ease floor
	MaxEase         float64 // ease ceiling
	MaxIntervalDays int     // interval cap
	AgainPenalty    float64 // ease drop after a failed review
	HardPenalty     float64 // ease drop after a hard review
	EasyBonus       float64 // ease gain after an easy review
	HardMultiplier  float64 // interval growth for hard reviews
	EasyMultiplier  float64 // extra interval growth for easy reviews
}

// DefaultParams returns the production scheduling constants.
func DefaultParams() Params {
	return Params{
		MinEase:         1.3,
		MaxEase:         2.5,
		MaxIntervalDays: 365,
		AgainPenalty:    0.2,
		HardPenalty:     0.15,
		EasyBonus:       0.15,
		HardMultiplier:  1.2,
		EasyMultiplier:  1.3,
	}
}

// State is a flashcard's current scheduling state.
type State struct {
	IntervalDays int
	Repetitions  int
	Ease         float64
}

// DefaultState is the scheduling state every card starts with: due
// immediately, one-day interval, maximum ease.
func DefaultState() State {
	return State{IntervalDays: 1, Repetitions: 0, Ease: DefaultParams().MaxEase}
}

// Update is the next scheduling state produced by a review.
type Update struct {
	IntervalDays int
	Repetitions  int
	Ease         float64
	Mastery      MasteryLevel
}

// ComputeNextReview applies one review to a card's scheduling state. Pure
// function, no storage or clock access.
//
// "again" is a hard reset: the interval returns to one day, repetitions go
// to zero and ease drops. The other responses scale the interval
// multiplicatively by ease, which itself drifts slowly as a function of
// sustained performance, so a single outlier response cannot swing the
// schedule.
func (p Params) ComputeNextReview(cur State, response Response) (Update, error) {
	if !response.Valid() {
		return Update{}, ErrInvalidResponse
	}

	interval := cur.IntervalDays
	if interval < 1 {
		interval = 1
	}
	ease := cur.Ease

	var next Update
	switch response {
	case Again:
		next.IntervalDays = 1
		next.Ease = math.Max(p.MinEase, ease-p.AgainPenalty)
		next.Repetitions = 0
	case Hard:
		next.IntervalDays = int(math.Max(1, math.Round(float64(interval)*p.HardMultiplier)))
		next.Ease = math.Max(p.MinEase, ease-p.HardPenalty)
		next.Repetitions = cur.Repetitions + 1
	case Good:
		next.IntervalDays = int(math.Round(float64(interval) * ease))
		next.Ease = ease
		next.Repetitions = cur.Repetitions + 1
	case Easy:
		next.IntervalDays = int(math.Round(float64(interval) * ease * p.EasyMultiplier))
		next.Ease = math.Min(p.MaxEase, ease+p.EasyBonus)
		next.Repetitions = cur.Repetitions + 1
	}

	if next.IntervalDays < 1 {
		next.IntervalDays = 1
	}
	if next.IntervalDays > p.MaxIntervalDays {
		next.IntervalDays = p.MaxIntervalDays
	}
	next.Ease = round2(next.Ease)

	// Mastery consults the repetition count BEFORE this update: the third
	// consecutive easy answer, with prior repetitions already >= 2, is what
	// graduates a card to mastered.
	next.Mastery = masteryFor(cur.Repetitions, response)

	return next, nil
}

func masteryFor(priorRepetitions int, response Response) MasteryLevel {
	switch response {
	case Again:
		return Learning
	case Easy:
		if priorRepetitions >= 2 {
			return Mastered
		}
		return Reviewing
	default: // Hard, Good
		if priorRepetitions == 0 {
			return Learning
		}
		return Reviewing
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
