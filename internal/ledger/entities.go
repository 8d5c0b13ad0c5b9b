package ledger

import "time"

// Participant is the core per-player record. Balance is unbounded (may go
// negative through penalty events); health/energy/mood are clamped [0,100].
type Participant struct {
	ID        int64     `db:"participant_id"`
	Balance   int64     `db:"balance"`
	Health    int       `db:"health"`
	Energy    int       `db:"energy"`
	Mood      int       `db:"mood"`
	CreatedAt time.Time `db:"created_at"`
}

// Properties holds everything a participant can own. The boolean gates the
// dependent numeric field: the number is meaningless while the flag is false.
type Properties struct {
	ParticipantID    int64 `db:"participant_id"`
	HasPartner       bool  `db:"has_partner"`
	PartnerMood      int   `db:"partner_mood"`
	HasPet           bool  `db:"has_pet"`
	PetHunger        int   `db:"pet_hunger"`
	HasVehicle       bool  `db:"has_vehicle"`
	VehicleCondition int   `db:"vehicle_condition"`
	HasResidence     bool  `db:"has_residence"`
	ResidenceComfort int   `db:"residence_comfort"`
	HasVenture       bool  `db:"has_venture"`
	VentureLevel     int   `db:"venture_level"`
}

// Server is the passive income asset every participant starts with.
type Server struct {
	ParticipantID int64     `db:"participant_id"`
	Level         int       `db:"level"`
	IncomeRate    int       `db:"income_rate"`
	LastCollected time.Time `db:"last_collected"`
}

// UnemployedKind is the job kind of participants without work; it is the
// only kind allowed to carry salary 0.
const UnemployedKind = "unemployed"

// Job is a participant's employment record.
type Job struct {
	ParticipantID int64     `db:"participant_id"`
	Kind          string    `db:"job_kind"`
	Salary        int       `db:"salary"`
	StressLevel   int       `db:"stress_level"`
	LastWorked    time.Time `db:"last_worked"`
}

// Employed reports whether the job pays anything.
func (j *Job) Employed() bool {
	return j.Kind != UnemployedKind
}

// InventoryLine is one stack of items. Quantity is never persisted at zero;
// the row is removed instead.
type InventoryLine struct {
	ParticipantID int64  `db:"participant_id"`
	ItemKind      string `db:"item_kind"`
	Quantity      int    `db:"quantity"`
}

// Quiz is a timed question posted to a chat. Exactly one active→inactive
// transition happens per quiz; an unanswered quiz stays active forever.
type Quiz struct {
	ID        int64     `db:"id"`
	ChatID    int64     `db:"chat_id"`
	Question  string    `db:"question"`
	Answer    string    `db:"answer"`
	Reward    int       `db:"reward"`
	Active    bool      `db:"active"`
	CreatedAt time.Time `db:"created_at"`
}

// EventLogEntry is an append-only audit record.
type EventLogEntry struct {
	ID            int64     `db:"id"`
	ChatID        int64     `db:"chat_id"`
	ParticipantID int64     `db:"participant_id"`
	Kind          string    `db:"kind"`
	Message       string    `db:"message"`
	CreatedAt     time.Time `db:"created_at"`
}

// Membership links a participant to a chat roster.
type Membership struct {
	ChatID        int64     `db:"chat_id"`
	ParticipantID int64     `db:"participant_id"`
	LastActive    time.Time `db:"last_active"`
}
