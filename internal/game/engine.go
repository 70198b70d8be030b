// internal/game/engine.go
//
// Core game engine for a single guess-the-number session.
// Responsibilities:
//   - Draw a secret target in [MinTarget, MaxTarget] at the start of every round.
//   - Parse and score submissions (too low / too high / correct / invalid).
//   - Track attempts, history (most recent first) and the session best score.
//   - Track state transitions: in_progress → won (reset only by StartRound).
//
// A Session is not safe for concurrent use; callers serialize access
// (see store.Store.Update).
package game

import (
	crand "crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"math/rand/v2"
)

const (
	MinTarget = 1
	MaxTarget = 100
)

// Source yields uniformly distributed integers in [0, n).
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	IntN(n int) int
}

// Session owns all state of one player's game across many rounds.
type Session struct {
	id       string
	src      Source
	target   int
	round    int
	attempts int
	history  []GuessRecord
	best     int
	hasBest  bool
	status   Status
	input    string
	feedback string
}

// NewSession constructs a session and starts its first round.
// If src is nil a PCG generator seeded from crypto/rand is used.
func NewSession(src Source) *Session {
	if src == nil {
		src = NewSource()
	}
	s := &Session{id: randomID(), src: src}
	s.StartRound()
	return s
}

// NewSource returns a PCG-backed Source seeded from crypto/rand.
func NewSource() Source {
	var b [16]byte
	_, _ = crand.Read(b[:])
	return rand.New(rand.NewPCG(binary.LittleEndian.Uint64(b[:8]), binary.LittleEndian.Uint64(b[8:])))
}

// StartRound draws a fresh target and clears all per-round state.
// The best score is carried over.
func (s *Session) StartRound() {
	s.target = s.src.IntN(MaxTarget-MinTarget+1) + MinTarget
	s.round++
	s.attempts = 0
	s.history = nil
	s.status = StatusInProgress
	s.input = ""
	s.feedback = PromptMessage
}

// SubmitGuess parses raw, scores it against the target and records it.
//
// Unparseable text is recorded as OutcomeInvalid and does not count as an
// attempt. Every call appends exactly one history entry.
func (s *Session) SubmitGuess(raw string) Outcome {
	n, ok := ParseGuess(raw)
	if !ok {
		s.record(GuessRecord{Raw: raw, Outcome: OutcomeInvalid})
		return OutcomeInvalid
	}

	s.attempts++
	var out Outcome
	switch {
	case n == s.target:
		out = OutcomeCorrect
		s.status = StatusWon
		if !s.hasBest || s.attempts < s.best {
			s.best, s.hasBest = s.attempts, true
		}
	case n < s.target:
		out = OutcomeTooLow
	default:
		out = OutcomeTooHigh
	}
	s.record(GuessRecord{Value: n, Raw: raw, Outcome: out})
	return out
}

// SubmitInput submits the current input text.
func (s *Session) SubmitInput() Outcome { return s.SubmitGuess(s.input) }

// record prepends r to the history, clears the input and updates feedback.
func (s *Session) record(r GuessRecord) {
	s.history = append([]GuessRecord{r}, s.history...)
	s.input = ""
	s.feedback = r.Outcome.Message()
}

// SetInput replaces the current raw input text.
func (s *Session) SetInput(text string) { s.input = text }

func (s *Session) ID() string       { return s.id }
func (s *Session) Input() string    { return s.input }
func (s *Session) Round() int       { return s.round }
func (s *Session) Attempts() int    { return s.attempts }
func (s *Session) Status() Status   { return s.status }
func (s *Session) Won() bool        { return s.status == StatusWon }
func (s *Session) Feedback() string { return s.feedback }

// BestScore reports the fewest attempts of any won round, if any.
func (s *Session) BestScore() (int, bool) { return s.best, s.hasBest }

// History returns a copy of the guess history, most recent first.
func (s *Session) History() []GuessRecord {
	out := make([]GuessRecord, len(s.history))
	copy(out, s.history)
	return out
}

// CanSubmit reports whether the submit control should be enabled.
func (s *Session) CanSubmit() bool {
	return s.input != "" && s.status == StatusInProgress
}

// View returns a render snapshot. The target is never included.
func (s *Session) View() View {
	v := View{
		SessionID: s.id,
		Round:     s.round,
		Attempts:  s.attempts,
		History:   s.History(),
		Status:    s.status,
		Feedback:  s.feedback,
		Input:     s.input,
		CanSubmit: s.CanSubmit(),
	}
	if s.hasBest {
		best := s.best
		v.BestScore = &best
	}
	return v
}

// randomID returns a compact 16-hex-char identifier.
func randomID() string {
	var b [8]byte
	_, _ = crand.Read(b[:])
	return hex.EncodeToString(b[:])
}
