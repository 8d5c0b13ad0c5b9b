// Package quiz runs the timed question mini-game. Resolution is the one
// genuinely race-sensitive user path in the simulation: two members answering
// correctly at the same instant must produce exactly one winner, which the
// ledger's guarded check-and-set provides.
package quiz

import (
	"log/slog"
	"strings"

	"github.com/talgya/chatlife/internal/entropy"
	"github.com/talgya/chatlife/internal/ledger"
)

// Catalogue of question/answer pairs posted to chats.
var Catalogue = [][2]string{
	{"5 - 2 = ?", "3"},
	{"10 + 7 = ?", "17"},
	{"3 x 4 = ?", "12"},
	{"15 / 3 = ?", "5"},
	{"2^2 = ?", "4"},
	{"sqrt(9) = ?", "3"},
	{"7 + 8 = ?", "15"},
	{"20 - 11 = ?", "9"},
	{"6 x 3 = ?", "18"},
	{"100 / 10 = ?", "10"},
}

// Arbiter creates quizzes and resolves answers to exactly one winner.
type Arbiter struct {
	led *ledger.Ledger
	src entropy.Source
}

// NewArbiter wires the arbiter to its storage and randomness source.
func NewArbiter(led *ledger.Ledger, src entropy.Source) *Arbiter {
	return &Arbiter{led: led, src: src}
}

// Outcome reports a submission result. A loser of the resolution race gets
// Correct=false even when the text matched: the quiz was already gone.
type Outcome struct {
	Correct bool
	Reward  int
}

// Create draws a catalogue question with a reward in [30,70] and persists it
// as the chat's active quiz.
func (a *Arbiter) Create(chatID int64) (*ledger.Quiz, error) {
	pair := Catalogue[a.src.IntN(len(Catalogue))]
	reward := entropy.Between(a.src, 30, 70)

	q, err := a.led.CreateQuiz(chatID, pair[0], pair[1], reward)
	if err != nil {
		return nil, err
	}
	slog.Debug("quiz created", "chat", chatID, "quiz", q.ID, "reward", reward)
	return q, nil
}

// Submit checks a candidate answer against a quiz. The comparison is exact
// and case-sensitive after trimming. A missing or already-resolved quiz is
// a benign miss, not an error.
func (a *Arbiter) Submit(quizID, participantID int64, candidate string) (Outcome, error) {
	q, err := a.led.QuizByID(quizID)
	if err != nil {
		return Outcome{}, err
	}
	if q == nil || !q.Active {
		return Outcome{}, nil
	}

	if strings.TrimSpace(candidate) != q.Answer {
		return Outcome{}, nil
	}

	won, reward, err := a.led.ResolveQuiz(quizID, participantID)
	if err != nil {
		return Outcome{}, err
	}
	if !won {
		// Matched the text but lost the resolution race.
		return Outcome{}, nil
	}

	slog.Info("quiz resolved", "quiz", quizID, "winner", participantID, "reward", reward)
	return Outcome{Correct: true, Reward: reward}, nil
}
