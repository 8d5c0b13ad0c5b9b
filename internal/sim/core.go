// Package sim is the facade the chat transport talks to: user actions come
// in through DispatchAction, scheduled ticks through OnTick, and anything
// worth announcing goes back out as a Notification for the transport to
// render.
package sim

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/chatlife/internal/config"
	"github.com/talgya/chatlife/internal/entropy"
	"github.com/talgya/chatlife/internal/income"
	"github.com/talgya/chatlife/internal/ledger"
	"github.com/talgya/chatlife/internal/quiz"
	"github.com/talgya/chatlife/internal/rules"
	"github.com/talgya/chatlife/internal/scheduler"
)

// decayWindow scopes decay ticks to members active within the last day.
const decayWindow = 24 * time.Hour

// Notification is an outbound announcement for the transport layer.
type Notification struct {
	Text     string
	Affected []int64
}

// Core wires the ledger, rules, arbiter and accrual into one simulation.
// Construct it once at startup and inject it everywhere; there is no
// ambient shared storage handle.
type Core struct {
	led     *ledger.Ledger
	cfg     *config.Config
	src     entropy.Source
	arbiter *quiz.Arbiter
	accrual *income.Accrual
}

// New builds the simulation core.
func New(led *ledger.Ledger, cfg *config.Config, src entropy.Source) *Core {
	return &Core{
		led:     led,
		cfg:     cfg,
		src:     src,
		arbiter: quiz.NewArbiter(led, src),
		accrual: income.New(led),
	}
}

// Ledger exposes the underlying store for read-only surfaces (API, tops).
func (c *Core) Ledger() *ledger.Ledger {
	return c.led
}

// RegisterChatMember puts a participant on a chat roster, creating their
// full record set. The server and job rows must exist up front so scheduled
// income and payroll see the member before they ever open their profile.
func (c *Core) RegisterChatMember(chatID, participantID int64) error {
	if _, err := c.led.Participant(participantID); err != nil {
		return err
	}
	if _, err := c.led.Server(participantID); err != nil {
		return err
	}
	if _, err := c.led.Job(participantID); err != nil {
		return err
	}
	return c.led.RegisterMember(chatID, participantID)
}

// ListChatMembers returns the chat roster.
func (c *Core) ListChatMembers(chatID int64) ([]int64, error) {
	return c.led.Members(chatID)
}

// TaskSpecs builds the scheduler bindings from configured intervals. Initial
// delays are staggered so a chat's tasks never all fire at once.
func (c *Core) TaskSpecs() []scheduler.TaskSpec {
	return []scheduler.TaskSpec{
		{Kind: scheduler.TaskQuiz, Every: c.cfg.QuizEvery(), After: 10 * time.Second},
		{Kind: scheduler.TaskSalary, Every: c.cfg.SalaryEvery(), After: 60 * time.Second},
		{Kind: scheduler.TaskDecay, Every: c.cfg.DecayEvery(), After: 15 * time.Minute},
		{Kind: scheduler.TaskEvent, Every: c.cfg.EventEvery(), After: 20 * time.Minute},
		{Kind: scheduler.TaskIncome, Every: c.cfg.IncomeEvery(), After: 5 * time.Minute},
	}
}

// OnTick runs one scheduled task for one chat. A tick touching zero
// participants is a quiet no-op. Failures are returned for logging but must
// never deregister the chat.
func (c *Core) OnTick(chatID int64, kind scheduler.TaskKind) (*Notification, error) {
	switch kind {
	case scheduler.TaskQuiz:
		return c.tickQuiz(chatID)
	case scheduler.TaskSalary:
		return c.tickSalary(chatID)
	case scheduler.TaskDecay:
		return c.tickDecay(chatID)
	case scheduler.TaskEvent:
		return c.tickEvent(chatID)
	case scheduler.TaskIncome:
		return c.tickIncome(chatID)
	}
	return nil, fmt.Errorf("unknown task kind %q", kind)
}

func (c *Core) tickQuiz(chatID int64) (*Notification, error) {
	q, err := c.arbiter.Create(chatID)
	if err != nil {
		return nil, err
	}
	return &Notification{
		Text: fmt.Sprintf("QUIZ TIME!\n\n%s\n\nFirst correct answer wins %d.", q.Question, q.Reward),
	}, nil
}

func (c *Core) tickSalary(chatID int64) (*Notification, error) {
	res, err := c.accrual.PaySalaries(chatID)
	if err != nil {
		return nil, err
	}
	for _, e := range res.Errors {
		slog.Warn("salary payout skipped", "chat", chatID, "error", e)
	}
	if res.Participants == 0 {
		return nil, nil
	}
	return &Notification{
		Text:     "PAYDAY! Everyone with a job got their salary. Mind your energy.",
		Affected: res.Affected,
	}, nil
}

func (c *Core) tickDecay(chatID int64) (*Notification, error) {
	members, err := c.led.ActiveMembers(chatID, decayWindow)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, nil
	}

	var notices []string
	var affected []int64
	for _, id := range members {
		d := rules.DecayTick(c.src)
		if err := c.applyDecay(id, d); err != nil {
			slog.Warn("decay skipped", "chat", chatID, "participant", id, "error", err)
			continue
		}

		props, err := c.led.Properties(id)
		if err != nil {
			slog.Warn("decay neglect skipped", "chat", chatID, "participant", id, "error", err)
			continue
		}
		n := rules.NeglectCheck(props, c.src)
		if n.PartnerMoodDelta != 0 {
			if _, err := c.led.ApplyPartnerMoodDelta(id, n.PartnerMoodDelta); err != nil {
				slog.Warn("partner mood update failed", "participant", id, "error", err)
			}
		}
		if n.PetHungerDelta != 0 {
			if _, err := c.led.ApplyPetHungerDelta(id, n.PetHungerDelta); err != nil {
				slog.Warn("pet hunger update failed", "participant", id, "error", err)
			}
		}
		if n.Notice != "" {
			notices = append(notices, n.Notice)
		}
		affected = append(affected, id)
	}

	// The chat only hears about decay occasionally, one notice at a time.
	if len(notices) > 0 && entropy.Chance(c.src, 0.3) {
		return &Notification{
			Text:     notices[c.src.IntN(len(notices))],
			Affected: affected,
		}, nil
	}
	return nil, nil
}

func (c *Core) applyDecay(id int64, d rules.StatDecay) error {
	if d.Health != 0 {
		if _, err := c.led.ApplyStatDelta(id, ledger.StatHealth, d.Health); err != nil {
			return err
		}
	}
	if d.Energy != 0 {
		if _, err := c.led.ApplyStatDelta(id, ledger.StatEnergy, d.Energy); err != nil {
			return err
		}
	}
	if d.Mood != 0 {
		if _, err := c.led.ApplyStatDelta(id, ledger.StatMood, d.Mood); err != nil {
			return err
		}
	}
	return nil
}

func (c *Core) tickEvent(chatID int64) (*Notification, error) {
	// Most event ticks pass without anything happening.
	if !entropy.Chance(c.src, 0.2) {
		return nil, nil
	}

	members, err := c.led.Members(chatID)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, nil
	}
	target := members[c.src.IntN(len(members))]

	ev := rules.DrawEvent(c.src)
	if err := c.applyEvent(target, ev); err != nil {
		return nil, err
	}
	if err := c.led.AppendEvent(chatID, target, ev.Kind, ev.Text); err != nil {
		slog.Warn("event log append failed", "chat", chatID, "error", err)
	}

	text := fmt.Sprintf("LIFE HAPPENS!\n\nParticipant %d: %s\n%s", target, ev.Text, summarizeEffect(ev))
	return &Notification{Text: text, Affected: []int64{target}}, nil
}

func (c *Core) applyEvent(id int64, ev rules.EventEffect) error {
	if ev.Balance != 0 {
		if _, err := c.led.ApplyBalanceDelta(id, int64(ev.Balance)); err != nil {
			return err
		}
	}
	return c.applyDecay(id, rules.StatDecay{Health: ev.Health, Energy: ev.Energy, Mood: ev.Mood})
}

func summarizeEffect(ev rules.EventEffect) string {
	s := ""
	if ev.Balance != 0 {
		s += fmt.Sprintf("balance %+d\n", ev.Balance)
	}
	if ev.Health != 0 {
		s += fmt.Sprintf("health %+d\n", ev.Health)
	}
	if ev.Energy != 0 {
		s += fmt.Sprintf("energy %+d\n", ev.Energy)
	}
	if ev.Mood != 0 {
		s += fmt.Sprintf("mood %+d\n", ev.Mood)
	}
	return s
}

func (c *Core) tickIncome(chatID int64) (*Notification, error) {
	res, err := c.accrual.CollectServerIncome(chatID)
	if err != nil {
		return nil, err
	}
	for _, e := range res.Errors {
		slog.Warn("income credit skipped", "chat", chatID, "error", e)
	}
	if res.Participants == 0 {
		return nil, nil
	}

	// Servers hum along quietly; announce only once in a while.
	if !entropy.Chance(c.src, 0.1) {
		return nil, nil
	}
	return &Notification{
		Text:     fmt.Sprintf("SERVERS ONLINE!\n\nTotal income this cycle: %s.", humanize.Comma(res.Credited)),
		Affected: res.Affected,
	}, nil
}
