package models

// Direction is the oracle's expected move for a security over the horizon.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionFlat Direction = "flat"
	DirectionDown Direction = "down"
)

func (d Direction) Valid() bool {
	switch d {
	case DirectionUp, DirectionFlat, DirectionDown:
		return true
	}
	return false
}

// RunStatus is the lifecycle of a scoring run (batch or index-scoped).
// Terminal states are final.
type RunStatus string

const (
	RunPending  RunStatus = "pending"
	RunRunning  RunStatus = "running"
	RunComplete RunStatus = "complete"
	RunFailed   RunStatus = "failed"
)

func (s RunStatus) Valid() bool {
	switch s {
	case RunPending, RunRunning, RunComplete, RunFailed:
		return true
	}
	return false
}

func (s RunStatus) Terminal() bool {
	return s == RunComplete || s == RunFailed
}

// ReviewState is the approval state of a constituent score.
// Scores are created pending and move exactly once to a terminal state.
type ReviewState string

const (
	StatePending  ReviewState = "pending"
	StateApproved ReviewState = "approved"
	StateRejected ReviewState = "rejected"
	StateOnHold   ReviewState = "on_hold"
)

func (s ReviewState) Valid() bool {
	switch s {
	case StatePending, StateApproved, StateRejected, StateOnHold:
		return true
	}
	return false
}

// Sentiment is the normalized news sentiment attached to a constituent score.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return true
	}
	return false
}
