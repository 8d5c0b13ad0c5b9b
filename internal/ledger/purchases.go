package ledger

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// PurchaseState reports how a guarded purchase resolved. Only PurchaseOK
// moves money; every other state commits nothing.
type PurchaseState int

const (
	PurchaseOK PurchaseState = iota + 1
	PurchaseAlreadyOwned
	PurchaseNoFunds
	PurchaseNoTarget
)

// ItemEffect is what a consumable does when bought: immediate stat changes,
// or a stack added to the inventory.
type ItemEffect struct {
	Health int
	Energy int
	Mood   int
	Stock  bool
}

// propertyClaim is the conditional flip that makes an ownership purchase
// first-buyer-wins. Clauses are fixed strings, never caller input.
type propertyClaim struct {
	set  string
	gate string
}

var propertyClaims = map[string]propertyClaim{
	"partner":   {set: "has_partner = 1, partner_mood = 80", gate: "has_partner"},
	"pet":       {set: "has_pet = 1, pet_hunger = 0", gate: "has_pet"},
	"vehicle":   {set: "has_vehicle = 1, vehicle_condition = 100", gate: "has_vehicle"},
	"residence": {set: "has_residence = 1, residence_comfort = 100", gate: "has_residence"},
	"venture":   {set: "has_venture = 1, venture_level = 1", gate: "has_venture"},
}

// PurchaseProperty claims an ownership gate and debits the price in one
// transaction. The claim is a conditional UPDATE on the gate, so of two
// concurrent buyers exactly one becomes the owner and the loser is never
// charged; a claim the buyer cannot afford rolls back entirely.
func (l *Ledger) PurchaseProperty(id int64, kind string, price int64) (PurchaseState, int64, error) {
	claim, ok := propertyClaims[kind]
	if !ok {
		return 0, 0, storeErr("purchase property", fmt.Errorf("unknown property kind %s", kind))
	}
	if _, err := l.Properties(id); err != nil {
		return 0, 0, err
	}
	if _, err := l.Participant(id); err != nil {
		return 0, 0, err
	}

	tx, err := l.conn.Beginx()
	if err != nil {
		return 0, 0, storeErr("begin purchase", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`UPDATE properties SET `+claim.set+` WHERE participant_id = ? AND `+claim.gate+` = 0`, id)
	if err != nil {
		return 0, 0, storeErr("claim property", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, 0, storeErr("claim property", err)
	}
	if n == 0 {
		return PurchaseAlreadyOwned, 0, nil
	}

	balance, state, err := debit(tx, id, price)
	if err != nil || state != PurchaseOK {
		return state, 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, storeErr("commit purchase", err)
	}
	return PurchaseOK, balance, nil
}

// PurchaseItem debits the price and applies the consumable's effect in one
// transaction: either the effect lands together with the debit or neither
// does.
func (l *Ledger) PurchaseItem(id int64, kind string, price int64, eff ItemEffect) (PurchaseState, int64, error) {
	if _, err := l.Participant(id); err != nil {
		return 0, 0, err
	}

	tx, err := l.conn.Beginx()
	if err != nil {
		return 0, 0, storeErr("begin purchase", err)
	}
	defer tx.Rollback()

	balance, state, err := debit(tx, id, price)
	if err != nil || state != PurchaseOK {
		return state, 0, err
	}

	if eff.Stock {
		if _, err := tx.Exec(`
			INSERT INTO inventory (participant_id, item_kind, quantity) VALUES (?, ?, 1)
			ON CONFLICT (participant_id, item_kind) DO UPDATE SET quantity = quantity + 1`,
			id, kind,
		); err != nil {
			return 0, 0, storeErr("stock item", err)
		}
	} else {
		effects := []struct {
			field StatField
			delta int
		}{
			{StatHealth, eff.Health},
			{StatEnergy, eff.Energy},
			{StatMood, eff.Mood},
		}
		for _, e := range effects {
			if e.delta == 0 {
				continue
			}
			if _, err := tx.Exec(
				`UPDATE participants SET `+string(e.field)+` = MIN(100, MAX(0, `+string(e.field)+` + ?)) WHERE participant_id = ?`,
				e.delta, id,
			); err != nil {
				return 0, 0, storeErr("apply item effect", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, storeErr("commit purchase", err)
	}
	return PurchaseOK, balance, nil
}

// PurchaseServerUpgrade debits the price and raises the server one level in
// one transaction.
func (l *Ledger) PurchaseServerUpgrade(id int64, price int64, rateStep int) (PurchaseState, int64, *Server, error) {
	if _, err := l.Server(id); err != nil {
		return 0, 0, nil, err
	}
	if _, err := l.Participant(id); err != nil {
		return 0, 0, nil, err
	}

	tx, err := l.conn.Beginx()
	if err != nil {
		return 0, 0, nil, storeErr("begin upgrade", err)
	}
	defer tx.Rollback()

	balance, state, err := debit(tx, id, price)
	if err != nil || state != PurchaseOK {
		return state, 0, nil, err
	}

	if _, err := tx.Exec(
		`UPDATE servers SET level = level + 1, income_rate = income_rate + ? WHERE participant_id = ?`,
		rateStep, id,
	); err != nil {
		return 0, 0, nil, storeErr("upgrade server", err)
	}
	var s Server
	if err := tx.Get(&s, `SELECT * FROM servers WHERE participant_id = ?`, id); err != nil {
		return 0, 0, nil, storeErr("read server", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, nil, storeErr("commit upgrade", err)
	}
	return PurchaseOK, balance, &s, nil
}

// PurchaseGift debits the gift price and raises partner mood in one
// transaction. Without a partner nothing is charged.
func (l *Ledger) PurchaseGift(id int64, price int64, moodDelta int) (PurchaseState, int64, int, error) {
	if _, err := l.Properties(id); err != nil {
		return 0, 0, 0, err
	}
	if _, err := l.Participant(id); err != nil {
		return 0, 0, 0, err
	}

	tx, err := l.conn.Beginx()
	if err != nil {
		return 0, 0, 0, storeErr("begin gift", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`UPDATE properties SET partner_mood = MIN(100, MAX(0, partner_mood + ?)) WHERE participant_id = ? AND has_partner = 1`,
		moodDelta, id,
	)
	if err != nil {
		return 0, 0, 0, storeErr("apply gift", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, 0, 0, storeErr("apply gift", err)
	}
	if n == 0 {
		return PurchaseNoTarget, 0, 0, nil
	}

	balance, state, err := debit(tx, id, price)
	if err != nil || state != PurchaseOK {
		return state, 0, 0, err
	}

	var mood int
	if err := tx.Get(&mood, `SELECT partner_mood FROM properties WHERE participant_id = ?`, id); err != nil {
		return 0, 0, 0, storeErr("read partner mood", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, 0, storeErr("commit gift", err)
	}
	return PurchaseOK, balance, mood, nil
}

// FeedOutcome reports one pet feeding.
type FeedOutcome struct {
	State   PurchaseState
	Paid    bool  // a portion was bought because none was stocked
	Balance int64 // balance after payment; meaningful only when Paid
	Hunger  int
}

// FeedPet lowers pet hunger using one stocked portion of pet food, buying a
// portion at price when the stock is empty. Consumption, payment and the
// hunger drop commit together; an unaffordable feeding changes nothing.
func (l *Ledger) FeedPet(id int64, price int64, hungerDrop int) (FeedOutcome, error) {
	if _, err := l.Properties(id); err != nil {
		return FeedOutcome{}, err
	}
	if _, err := l.Participant(id); err != nil {
		return FeedOutcome{}, err
	}

	tx, err := l.conn.Beginx()
	if err != nil {
		return FeedOutcome{}, storeErr("begin feed", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`UPDATE properties SET pet_hunger = MIN(100, MAX(0, pet_hunger - ?)) WHERE participant_id = ? AND has_pet = 1`,
		hungerDrop, id,
	)
	if err != nil {
		return FeedOutcome{}, storeErr("feed pet", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return FeedOutcome{}, storeErr("feed pet", err)
	}
	if n == 0 {
		return FeedOutcome{State: PurchaseNoTarget}, nil
	}

	var out FeedOutcome
	res, err = tx.Exec(
		`UPDATE inventory SET quantity = quantity - 1
		 WHERE participant_id = ? AND item_kind = 'pet_food' AND quantity > 0`, id)
	if err != nil {
		return FeedOutcome{}, storeErr("consume pet food", err)
	}
	n, err = res.RowsAffected()
	if err != nil {
		return FeedOutcome{}, storeErr("consume pet food", err)
	}
	if n == 0 {
		balance, state, err := debit(tx, id, price)
		if err != nil || state != PurchaseOK {
			return FeedOutcome{State: state}, err
		}
		out.Paid = true
		out.Balance = balance
	} else {
		// Quantity never persists at zero.
		if _, err := tx.Exec(
			`DELETE FROM inventory WHERE participant_id = ? AND item_kind = 'pet_food' AND quantity <= 0`, id,
		); err != nil {
			return FeedOutcome{}, storeErr("trim empty stack", err)
		}
	}

	if err := tx.Get(&out.Hunger, `SELECT pet_hunger FROM properties WHERE participant_id = ?`, id); err != nil {
		return FeedOutcome{}, storeErr("read pet hunger", err)
	}

	if err := tx.Commit(); err != nil {
		return FeedOutcome{}, storeErr("commit feed", err)
	}
	out.State = PurchaseOK
	return out, nil
}

// debit takes price from the balance inside tx when it is covered, as a
// conditional UPDATE. Price 0 skips the debit and just reads the balance.
func debit(tx *sqlx.Tx, id int64, price int64) (int64, PurchaseState, error) {
	if price > 0 {
		res, err := tx.Exec(
			`UPDATE participants SET balance = balance - ? WHERE participant_id = ? AND balance >= ?`,
			price, id, price,
		)
		if err != nil {
			return 0, 0, storeErr("debit", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, 0, storeErr("debit", err)
		}
		if n == 0 {
			return 0, PurchaseNoFunds, nil
		}
	}

	var balance int64
	if err := tx.Get(&balance, `SELECT balance FROM participants WHERE participant_id = ?`, id); err != nil {
		return 0, 0, storeErr("read balance", err)
	}
	return balance, PurchaseOK, nil
}
