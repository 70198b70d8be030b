// internal/game/types.go
//
// Core type definitions for the number guessing game.
// Defines:
//   - Outcome: result of a single submission (too_low/too_high/correct/invalid).
//   - Status: round state (in_progress/won).
//   - GuessRecord: one entry of the guess history.
//   - View: render snapshot of a session (never includes the target).

package game

import "strconv"

// Outcome represents the evaluation result of one submission.
type Outcome string

const (
	OutcomeTooLow  Outcome = "too_low"
	OutcomeTooHigh Outcome = "too_high"
	OutcomeCorrect Outcome = "correct"
	OutcomeInvalid Outcome = "invalid"
)

// Feedback strings shown to the player.
const (
	PromptMessage  = "Guess a number between 1 and 100"
	InvalidMessage = "Please enter a valid number"
	TooLowMessage  = "Too low!"
	TooHighMessage = "Too high!"
	CorrectMessage = "Correct! Well done!"
)

// Message returns the feedback string for an outcome.
func (o Outcome) Message() string {
	switch o {
	case OutcomeTooLow:
		return TooLowMessage
	case OutcomeTooHigh:
		return TooHighMessage
	case OutcomeCorrect:
		return CorrectMessage
	case OutcomeInvalid:
		return InvalidMessage
	}
	return ""
}

// Status is the coarse state of the current round.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusWon        Status = "won"
)

// GuessRecord is one history entry.
// Value is meaningful only when Outcome != OutcomeInvalid; Raw always holds
// the submitted text.
type GuessRecord struct {
	Value   int     `json:"value"`
	Raw     string  `json:"raw"`
	Outcome Outcome `json:"outcome"`
}

// Display renders the record the way the history list shows it: the parsed
// number for valid guesses, the raw text otherwise.
func (r GuessRecord) Display() string {
	if r.Outcome == OutcomeInvalid {
		return r.Raw
	}
	return strconv.Itoa(r.Value)
}

// View is everything a presentation layer may render.
type View struct {
	SessionID string        `json:"sessionId"`
	Round     int           `json:"round"`
	Attempts  int           `json:"attempts"`
	History   []GuessRecord `json:"history"`
	BestScore *int          `json:"bestScore"`
	Status    Status        `json:"status"`
	Feedback  string        `json:"feedback"`
	Input     string        `json:"input"`
	CanSubmit bool          `json:"canSubmit"`
}
