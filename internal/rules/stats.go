// Package rules holds the pure simulation arithmetic: stat decay, neglect
// of dependents, manual work, and the life-event table. Functions here draw
// from an injected entropy source and return deltas; callers apply them
// through the ledger's atomic operations.
package rules

import (
	"errors"

	"github.com/talgya/chatlife/internal/entropy"
	"github.com/talgya/chatlife/internal/ledger"
)

// Domain precondition failures, surfaced to the actor as rejected actions.
var (
	ErrNoJob              = errors.New("no job assigned")
	ErrInsufficientEnergy = errors.New("not enough energy")
)

// WorkEnergyCost is the fixed energy price of one manual work shift.
const WorkEnergyCost = 20

// StatDecay is the outcome of one decay roll for one participant.
// Zero deltas mean the roll missed.
type StatDecay struct {
	Health int
	Energy int
	Mood   int
}

// DecayTick rolls natural stat degradation. Each stat decays independently:
// health with p=0.30 by [1,5], energy with p=0.40 by [2,8], mood with
// p=0.30 by [1,6]. The checks are not mutually exclusive.
func DecayTick(src entropy.Source) StatDecay {
	var d StatDecay
	if entropy.Chance(src, 0.30) {
		d.Health = -entropy.Between(src, 1, 5)
	}
	if entropy.Chance(src, 0.40) {
		d.Energy = -entropy.Between(src, 2, 8)
	}
	if entropy.Chance(src, 0.30) {
		d.Mood = -entropy.Between(src, 1, 6)
	}
	return d
}

// Neglect is the outcome of one dependent-neglect roll.
type Neglect struct {
	PartnerMoodDelta int    // negative when the partner feels ignored
	PetHungerDelta   int    // positive when the pet goes hungry
	Notice           string // at most one notification per roll
}

// NeglectCheck rolls dependent neglect for one participant's property set.
// The partner check takes priority: if a partner exists it is the only roll
// made, the pet is only checked otherwise. At most one notice results.
func NeglectCheck(props *ledger.Properties, src entropy.Source) Neglect {
	if props.HasPartner {
		if entropy.Chance(src, 0.20) {
			return Neglect{
				PartnerMoodDelta: -entropy.Between(src, 5, 15),
				Notice:           "Your partner misses your attention...",
			}
		}
		return Neglect{}
	}
	if props.HasPet {
		if entropy.Chance(src, 0.30) {
			return Neglect{
				PetHungerDelta: entropy.Between(src, 10, 30),
				Notice:         "Your pet is hungry!",
			}
		}
	}
	return Neglect{}
}

// WorkOutcome is the computed effect of one manual work shift.
type WorkOutcome struct {
	Pay         int // one quarter of the hourly salary
	EnergyDelta int
	MoodDelta   int
}

// WorkOnce validates and computes a manual work shift. Fails with ErrNoJob
// for the unemployed and ErrInsufficientEnergy below the energy cost; there
// is no cooldown beyond the energy gate.
func WorkOnce(job *ledger.Job, participant *ledger.Participant) (WorkOutcome, error) {
	if !job.Employed() {
		return WorkOutcome{}, ErrNoJob
	}
	if participant.Energy < WorkEnergyCost {
		return WorkOutcome{}, ErrInsufficientEnergy
	}
	return WorkOutcome{
		Pay:         job.Salary / 4,
		EnergyDelta: -WorkEnergyCost,
		MoodDelta:   -(job.StressLevel / 20),
	}, nil
}

// SalaryEnergyCost computes the passive energy toll of one payout cycle.
func SalaryEnergyCost(stressLevel int) int {
	return stressLevel / 10
}
