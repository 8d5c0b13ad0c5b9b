package sim

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/talgya/chatlife/internal/ledger"
	"github.com/talgya/chatlife/internal/quiz"
	"github.com/talgya/chatlife/internal/rules"
)

// Action names a user-initiated operation.
type Action string

const (
	ActionViewProfile       Action = "view-profile"
	ActionWorkOnce          Action = "work-once"
	ActionTakeJob           Action = "take-job"
	ActionBuyItem           Action = "buy-item"
	ActionAnswerQuiz        Action = "collect-quiz-answer"
	ActionUpgradeServer     Action = "upgrade-server"
	ActionStartRelationship Action = "start-relationship"
	ActionGiveGift          Action = "give-gift"
	ActionAdoptPet          Action = "adopt-pet"
	ActionFeedPet           Action = "feed-pet"
	ActionBuyVehicle        Action = "buy-vehicle"
	ActionBuyResidence      Action = "buy-residence"
	ActionBuyVenture        Action = "buy-venture"
)

// Params carries the action-specific inputs.
type Params struct {
	ChatID  int64
	Item    string // buy-item
	JobKind string // take-job
	Answer  string // collect-quiz-answer
	QuizID  int64  // collect-quiz-answer; 0 = the chat's latest active quiz
}

// Domain precondition failures. State is unchanged when these are returned.
var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrAlreadyOwned      = errors.New("already owned")
	ErrNoPartner         = errors.New("no partner")
	ErrNoPet             = errors.New("no pet")
	ErrUnknownAction     = errors.New("unknown action")
	ErrUnknownItem       = errors.New("unknown item")
	ErrUnknownJob        = errors.New("unknown job")
)

// Profile is the full state snapshot behind view-profile.
type Profile struct {
	Participant *ledger.Participant
	Properties  *ledger.Properties
	Server      *ledger.Server
	Job         *ledger.Job
	Inventory   []ledger.InventoryLine
}

// ActionResult is what the transport renders back to the actor.
type ActionResult struct {
	Text    string
	Balance int64 // balance after the action, when money moved
	Profile *Profile
	Quiz    *quiz.Outcome
}

// DispatchAction executes one user action against the simulation.
func (c *Core) DispatchAction(participantID int64, action Action, params Params) (ActionResult, error) {
	if params.ChatID != 0 {
		if err := c.led.TouchMember(params.ChatID, participantID); err != nil {
			slog.Warn("member touch failed", "participant", participantID, "error", err)
		}
	}

	switch action {
	case ActionViewProfile:
		return c.viewProfile(participantID)
	case ActionWorkOnce:
		return c.workOnce(participantID)
	case ActionTakeJob:
		return c.takeJob(participantID, params.JobKind)
	case ActionBuyItem:
		return c.buyItem(participantID, params.Item)
	case ActionAnswerQuiz:
		return c.answerQuiz(participantID, params)
	case ActionUpgradeServer:
		return c.upgradeServer(participantID)
	case ActionStartRelationship:
		return c.startRelationship(participantID)
	case ActionGiveGift:
		return c.giveGift(participantID)
	case ActionAdoptPet:
		return c.adoptPet(participantID)
	case ActionFeedPet:
		return c.feedPet(participantID)
	case ActionBuyVehicle:
		return c.buyProperty(participantID, "vehicle")
	case ActionBuyResidence:
		return c.buyProperty(participantID, "residence")
	case ActionBuyVenture:
		return c.buyProperty(participantID, "venture")
	}
	return ActionResult{}, fmt.Errorf("%w: %s", ErrUnknownAction, action)
}

func (c *Core) viewProfile(id int64) (ActionResult, error) {
	p, err := c.led.Participant(id)
	if err != nil {
		return ActionResult{}, err
	}
	props, err := c.led.Properties(id)
	if err != nil {
		return ActionResult{}, err
	}
	srv, err := c.led.Server(id)
	if err != nil {
		return ActionResult{}, err
	}
	job, err := c.led.Job(id)
	if err != nil {
		return ActionResult{}, err
	}
	inv, err := c.led.Inventory(id)
	if err != nil {
		return ActionResult{}, err
	}

	return ActionResult{
		Text: fmt.Sprintf("balance %s | health %d | energy %d | mood %d",
			humanize.Comma(p.Balance), p.Health, p.Energy, p.Mood),
		Balance: p.Balance,
		Profile: &Profile{Participant: p, Properties: props, Server: srv, Job: job, Inventory: inv},
	}, nil
}

func (c *Core) workOnce(id int64) (ActionResult, error) {
	job, err := c.led.Job(id)
	if err != nil {
		return ActionResult{}, err
	}
	p, err := c.led.Participant(id)
	if err != nil {
		return ActionResult{}, err
	}

	out, err := rules.WorkOnce(job, p)
	if err != nil {
		return ActionResult{}, err
	}

	balance, err := c.led.ApplyBalanceDelta(id, int64(out.Pay))
	if err != nil {
		return ActionResult{}, err
	}
	energy, err := c.led.ApplyStatDelta(id, ledger.StatEnergy, out.EnergyDelta)
	if err != nil {
		return ActionResult{}, err
	}
	if out.MoodDelta != 0 {
		if _, err := c.led.ApplyStatDelta(id, ledger.StatMood, out.MoodDelta); err != nil {
			return ActionResult{}, err
		}
	}
	if err := c.led.MarkWorked(id); err != nil {
		slog.Warn("mark worked failed", "participant", id, "error", err)
	}

	return ActionResult{
		Text:    fmt.Sprintf("You put in a shift: +%d. Energy left: %d.", out.Pay, energy),
		Balance: balance,
	}, nil
}

func (c *Core) takeJob(id int64, kind string) (ActionResult, error) {
	prof, ok := rules.FindProfession(kind)
	if !ok {
		return ActionResult{}, fmt.Errorf("%w: %s", ErrUnknownJob, kind)
	}
	if err := c.led.SetJob(id, prof.Kind, prof.Salary, prof.Stress); err != nil {
		return ActionResult{}, err
	}
	return ActionResult{
		Text: fmt.Sprintf("You are now a %s. Salary %d, stress %d.", prof.Kind, prof.Salary, prof.Stress),
	}, nil
}

var consumables = map[string]ledger.ItemEffect{
	"food":          {Health: 10, Energy: 15},
	"medicine":      {Health: 30},
	"entertainment": {Mood: 20},
	"pet_food":      {Stock: true},
}

func (c *Core) buyItem(id int64, item string) (ActionResult, error) {
	eff, ok := consumables[item]
	if !ok {
		return ActionResult{}, fmt.Errorf("%w: %s", ErrUnknownItem, item)
	}
	price := c.cfg.Price(item)

	state, balance, err := c.led.PurchaseItem(id, item, int64(price), eff)
	if err != nil {
		return ActionResult{}, err
	}
	if err := purchaseErr(state); err != nil {
		return ActionResult{}, err
	}

	return ActionResult{
		Text:    fmt.Sprintf("Bought %s for %d.", item, price),
		Balance: balance,
	}, nil
}

func (c *Core) answerQuiz(id int64, params Params) (ActionResult, error) {
	quizID := params.QuizID
	if quizID == 0 {
		q, err := c.led.LatestActiveQuiz(params.ChatID)
		if err != nil {
			return ActionResult{}, err
		}
		if q == nil {
			// No active quiz: a benign miss, never an error.
			return ActionResult{Quiz: &quiz.Outcome{}}, nil
		}
		quizID = q.ID
	}

	out, err := c.arbiter.Submit(quizID, id, params.Answer)
	if err != nil {
		return ActionResult{}, err
	}
	res := ActionResult{Quiz: &out}
	if out.Correct {
		p, err := c.led.Participant(id)
		if err != nil {
			return ActionResult{}, err
		}
		res.Balance = p.Balance
		res.Text = fmt.Sprintf("Correct! +%d. New balance: %s.", out.Reward, humanize.Comma(p.Balance))
	}
	return res, nil
}

// serverUpgradeRateStep is the income gained per server level.
const serverUpgradeRateStep = 15

func (c *Core) upgradeServer(id int64) (ActionResult, error) {
	state, balance, srv, err := c.led.PurchaseServerUpgrade(
		id, int64(c.cfg.Price("server_upgrade")), serverUpgradeRateStep)
	if err != nil {
		return ActionResult{}, err
	}
	if err := purchaseErr(state); err != nil {
		return ActionResult{}, err
	}

	return ActionResult{
		Text:    fmt.Sprintf("Server upgraded to level %d, income %d per cycle.", srv.Level, srv.IncomeRate),
		Balance: balance,
	}, nil
}

func (c *Core) startRelationship(id int64) (ActionResult, error) {
	state, balance, err := c.led.PurchaseProperty(id, "partner", int64(c.cfg.Price("partner")))
	if err != nil {
		return ActionResult{}, err
	}
	if err := purchaseErr(state); err != nil {
		return ActionResult{}, err
	}

	return ActionResult{
		Text:    "You are in a relationship now. Starting mood: 80/100. Pay attention!",
		Balance: balance,
	}, nil
}

// giftMoodBoost is how much one gift lifts the partner's mood.
const giftMoodBoost = 40

func (c *Core) giveGift(id int64) (ActionResult, error) {
	state, balance, mood, err := c.led.PurchaseGift(id, int64(c.cfg.Price("gift")), giftMoodBoost)
	if err != nil {
		return ActionResult{}, err
	}
	if state == ledger.PurchaseNoTarget {
		return ActionResult{}, ErrNoPartner
	}
	if err := purchaseErr(state); err != nil {
		return ActionResult{}, err
	}

	return ActionResult{
		Text:    fmt.Sprintf("Gift delivered. Partner mood: %d/100.", mood),
		Balance: balance,
	}, nil
}

func (c *Core) adoptPet(id int64) (ActionResult, error) {
	state, _, err := c.led.PurchaseProperty(id, "pet", 0)
	if err != nil {
		return ActionResult{}, err
	}
	if err := purchaseErr(state); err != nil {
		return ActionResult{}, err
	}
	return ActionResult{Text: "You adopted a pet. Keep it fed."}, nil
}

// feedPetHungerDrop is how much one feeding satisfies the pet.
const feedPetHungerDrop = 40

func (c *Core) feedPet(id int64) (ActionResult, error) {
	out, err := c.led.FeedPet(id, int64(c.cfg.Price("pet_food")), feedPetHungerDrop)
	if err != nil {
		return ActionResult{}, err
	}
	if out.State == ledger.PurchaseNoTarget {
		return ActionResult{}, ErrNoPet
	}
	if err := purchaseErr(out.State); err != nil {
		return ActionResult{}, err
	}

	res := ActionResult{Text: fmt.Sprintf("Pet fed. Hunger: %d/100.", out.Hunger)}
	if out.Paid {
		res.Balance = out.Balance
	}
	return res, nil
}

func (c *Core) buyProperty(id int64, kind string) (ActionResult, error) {
	switch kind {
	case "vehicle", "residence", "venture":
	default:
		return ActionResult{}, fmt.Errorf("%w: %s", ErrUnknownItem, kind)
	}

	state, balance, err := c.led.PurchaseProperty(id, kind, int64(c.cfg.Price(kind)))
	if err != nil {
		return ActionResult{}, err
	}
	if err := purchaseErr(state); err != nil {
		return ActionResult{}, err
	}

	return ActionResult{
		Text:    fmt.Sprintf("Congratulations on your new %s!", kind),
		Balance: balance,
	}, nil
}

// purchaseErr maps the ledger's purchase outcomes onto action errors.
// PurchaseNoTarget stays with the callers that know which dependent is
// missing.
func purchaseErr(state ledger.PurchaseState) error {
	switch state {
	case ledger.PurchaseAlreadyOwned:
		return ErrAlreadyOwned
	case ledger.PurchaseNoFunds:
		return ErrInsufficientFunds
	}
	return nil
}
