// Package income runs the per-chat passive money flows: server income and
// salary payouts. Each participant is processed independently; one failing
// member never blocks the rest of the batch.
package income

import (
	"fmt"
	"log/slog"

	"github.com/talgya/chatlife/internal/ledger"
	"github.com/talgya/chatlife/internal/rules"
)

// Store is the slice of the ledger the accrual batches need. Kept narrow so
// tests can substitute a failing store for a single participant.
type Store interface {
	EarnersWithServers(chatID int64) ([]ledger.Server, error)
	SalariedMembers(chatID int64) ([]ledger.Job, error)
	ApplyBalanceDelta(id int64, delta int64) (int64, error)
	ApplyStatDelta(id int64, field ledger.StatField, delta int) (int, error)
	MarkCollected(id int64) error
	AppendEvent(chatID, participantID int64, kind, message string) error
}

// Accrual executes income batches against a store.
type Accrual struct {
	store Store
}

// New returns an accrual runner.
func New(store Store) *Accrual {
	return &Accrual{store: store}
}

// Result summarizes one batch. Errors holds one entry per failed
// participant; the batch itself never aborts midway.
type Result struct {
	Credited     int64
	Participants int
	Affected     []int64
	Errors       []error
}

// CollectServerIncome credits every chat member's server income rate.
func (a *Accrual) CollectServerIncome(chatID int64) (Result, error) {
	servers, err := a.store.EarnersWithServers(chatID)
	if err != nil {
		return Result{}, err
	}

	var res Result
	for _, s := range servers {
		if _, err := a.store.ApplyBalanceDelta(s.ParticipantID, int64(s.IncomeRate)); err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("participant %d: %w", s.ParticipantID, err))
			continue
		}
		if err := a.store.MarkCollected(s.ParticipantID); err != nil {
			slog.Warn("mark collected failed", "participant", s.ParticipantID, "error", err)
		}
		res.Credited += int64(s.IncomeRate)
		res.Participants++
		res.Affected = append(res.Affected, s.ParticipantID)
	}
	return res, nil
}

// PaySalaries credits every working chat member's salary and charges the
// stress toll on their energy.
func (a *Accrual) PaySalaries(chatID int64) (Result, error) {
	jobs, err := a.store.SalariedMembers(chatID)
	if err != nil {
		return Result{}, err
	}

	var res Result
	for _, j := range jobs {
		if _, err := a.store.ApplyBalanceDelta(j.ParticipantID, int64(j.Salary)); err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("participant %d: %w", j.ParticipantID, err))
			continue
		}
		if toll := rules.SalaryEnergyCost(j.StressLevel); toll > 0 {
			if _, err := a.store.ApplyStatDelta(j.ParticipantID, ledger.StatEnergy, -toll); err != nil {
				res.Errors = append(res.Errors, fmt.Errorf("participant %d: %w", j.ParticipantID, err))
			}
		}
		if err := a.store.AppendEvent(chatID, j.ParticipantID, "salary",
			fmt.Sprintf("salary paid: %d", j.Salary)); err != nil {
			slog.Warn("salary event log failed", "participant", j.ParticipantID, "error", err)
		}
		res.Credited += int64(j.Salary)
		res.Participants++
		res.Affected = append(res.Affected, j.ParticipantID)
	}
	return res, nil
}
