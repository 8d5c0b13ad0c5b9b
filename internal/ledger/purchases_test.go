package ledger

import (
	"sync"
	"testing"
)

func TestPurchasePropertyStates(t *testing.T) {
	l := testLedger(t)

	state, balance, err := l.PurchaseProperty(1, "vehicle", 400)
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if state != PurchaseOK || balance != 600 {
		t.Fatalf("expected OK with 600 left, got state=%d balance=%d", state, balance)
	}
	props, _ := l.Properties(1)
	if !props.HasVehicle || props.VehicleCondition != 100 {
		t.Errorf("vehicle should be owned in perfect condition, got %+v", props)
	}

	state, _, err = l.PurchaseProperty(1, "vehicle", 400)
	if err != nil {
		t.Fatalf("repurchase: %v", err)
	}
	if state != PurchaseAlreadyOwned {
		t.Errorf("second purchase should report AlreadyOwned, got %d", state)
	}

	// An unaffordable claim rolls back entirely: no debit, no ownership.
	state, _, err = l.PurchaseProperty(1, "residence", 5000)
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if state != PurchaseNoFunds {
		t.Errorf("expected NoFunds, got %d", state)
	}
	props, _ = l.Properties(1)
	if props.HasResidence {
		t.Error("a failed debit must not leave the residence claimed")
	}
	p, _ := l.Participant(1)
	if p.Balance != 600 {
		t.Errorf("failed purchase must not move money, got %d", p.Balance)
	}
}

func TestPurchasePropertyUnknownKind(t *testing.T) {
	l := testLedger(t)

	if _, _, err := l.PurchaseProperty(1, "yacht", 100); err == nil {
		t.Error("unknown property kind should error")
	}
}

func TestConcurrentPropertyPurchaseChargesOnce(t *testing.T) {
	l := testLedger(t)
	if _, err := l.Participant(1); err != nil {
		t.Fatalf("participant: %v", err)
	}

	const racers = 8
	states := make([]PurchaseState, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			state, _, err := l.PurchaseProperty(1, "venture", 100)
			if err != nil {
				t.Errorf("racer %d: %v", i, err)
				return
			}
			states[i] = state
		}(i)
	}
	wg.Wait()

	owners := 0
	for _, s := range states {
		if s == PurchaseOK {
			owners++
		}
	}
	if owners != 1 {
		t.Fatalf("exactly one concurrent buyer may claim the venture, got %d", owners)
	}

	// Exactly one price paid across all buyers.
	p, err := l.Participant(1)
	if err != nil {
		t.Fatalf("participant: %v", err)
	}
	if p.Balance != 900 {
		t.Errorf("the venture must be paid for exactly once, got balance %d", p.Balance)
	}
}

func TestPurchaseItemAppliesWithDebit(t *testing.T) {
	l := testLedger(t)

	if _, err := l.ApplyStatDelta(1, StatHealth, -50); err != nil {
		t.Fatalf("prep: %v", err)
	}

	state, balance, err := l.PurchaseItem(1, "food", 50, ItemEffect{Health: 10, Energy: 15})
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if state != PurchaseOK || balance != 950 {
		t.Fatalf("expected OK with 950 left, got state=%d balance=%d", state, balance)
	}
	p, _ := l.Participant(1)
	if p.Health != 60 || p.Energy != 100 {
		t.Errorf("effects should land with the debit, got health=%d energy=%d", p.Health, p.Energy)
	}

	// Without funds neither the debit nor the effect happens.
	if _, err := l.ApplyBalanceDelta(1, -950); err != nil {
		t.Fatalf("drain: %v", err)
	}
	state, _, err = l.PurchaseItem(1, "food", 50, ItemEffect{Health: 10, Energy: 15})
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if state != PurchaseNoFunds {
		t.Errorf("expected NoFunds, got %d", state)
	}
	p, _ = l.Participant(1)
	if p.Health != 60 || p.Balance != 0 {
		t.Errorf("refused purchase must change nothing, got health=%d balance=%d", p.Health, p.Balance)
	}
}

func TestPurchaseItemStocksInventory(t *testing.T) {
	l := testLedger(t)

	state, balance, err := l.PurchaseItem(1, "pet_food", 40, ItemEffect{Stock: true})
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if state != PurchaseOK || balance != 960 {
		t.Fatalf("expected OK with 960 left, got state=%d balance=%d", state, balance)
	}

	lines, err := l.Inventory(1)
	if err != nil {
		t.Fatalf("inventory: %v", err)
	}
	if len(lines) != 1 || lines[0].ItemKind != "pet_food" || lines[0].Quantity != 1 {
		t.Errorf("expected one stocked portion, got %+v", lines)
	}
}

func TestPurchaseServerUpgrade(t *testing.T) {
	l := testLedger(t)

	state, balance, srv, err := l.PurchaseServerUpgrade(1, 600, 15)
	if err != nil {
		t.Fatalf("upgrade: %v", err)
	}
	if state != PurchaseOK || balance != 400 {
		t.Fatalf("expected OK with 400 left, got state=%d balance=%d", state, balance)
	}
	if srv.Level != 2 || srv.IncomeRate != 25 {
		t.Errorf("expected level 2 / rate 25, got %+v", srv)
	}

	// Second upgrade is unaffordable; the server must not move.
	state, _, _, err = l.PurchaseServerUpgrade(1, 600, 15)
	if err != nil {
		t.Fatalf("upgrade: %v", err)
	}
	if state != PurchaseNoFunds {
		t.Errorf("expected NoFunds, got %d", state)
	}
	srv, _ = l.Server(1)
	if srv.Level != 2 || srv.IncomeRate != 25 {
		t.Errorf("refused upgrade must not touch the server, got %+v", srv)
	}
}

func TestPurchaseGift(t *testing.T) {
	l := testLedger(t)

	state, _, _, err := l.PurchaseGift(1, 300, 40)
	if err != nil {
		t.Fatalf("gift: %v", err)
	}
	if state != PurchaseNoTarget {
		t.Errorf("gift without a partner should report NoTarget, got %d", state)
	}
	p, _ := l.Participant(1)
	if p.Balance != 1000 {
		t.Errorf("no partner, no charge, got %d", p.Balance)
	}

	if state, _, err := l.PurchaseProperty(1, "partner", 0); err != nil || state != PurchaseOK {
		t.Fatalf("claim partner: state=%d err=%v", state, err)
	}
	state, balance, mood, err := l.PurchaseGift(1, 300, 40)
	if err != nil {
		t.Fatalf("gift: %v", err)
	}
	if state != PurchaseOK || balance != 700 || mood != 100 {
		t.Errorf("expected OK, 700 left, mood clamped at 100; got state=%d balance=%d mood=%d",
			state, balance, mood)
	}

	// An unaffordable gift leaves the mood exactly where it was.
	if _, err := l.ApplyPartnerMoodDelta(1, -50); err != nil {
		t.Fatalf("prep mood: %v", err)
	}
	state, _, _, err = l.PurchaseGift(1, 5000, 40)
	if err != nil {
		t.Fatalf("gift: %v", err)
	}
	if state != PurchaseNoFunds {
		t.Errorf("expected NoFunds, got %d", state)
	}
	props, _ := l.Properties(1)
	if props.PartnerMood != 50 {
		t.Errorf("refused gift must not lift the mood, got %d", props.PartnerMood)
	}
}

func TestFeedPetTransactional(t *testing.T) {
	l := testLedger(t)

	out, err := l.FeedPet(1, 40, 40)
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	if out.State != PurchaseNoTarget {
		t.Errorf("feeding without a pet should report NoTarget, got %d", out.State)
	}

	if state, _, err := l.PurchaseProperty(1, "pet", 0); err != nil || state != PurchaseOK {
		t.Fatalf("claim pet: state=%d err=%v", state, err)
	}
	if _, err := l.ApplyPetHungerDelta(1, 80); err != nil {
		t.Fatalf("prep hunger: %v", err)
	}

	// Empty stock: the feeding buys a portion on the spot.
	out, err = l.FeedPet(1, 40, 40)
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	if out.State != PurchaseOK || !out.Paid || out.Balance != 960 || out.Hunger != 40 {
		t.Fatalf("expected paid feed at 960 left / hunger 40, got %+v", out)
	}

	// Stocked food is consumed instead of money.
	if err := l.AddItem(1, "pet_food", 1); err != nil {
		t.Fatalf("stock: %v", err)
	}
	out, err = l.FeedPet(1, 40, 40)
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	if out.State != PurchaseOK || out.Paid || out.Hunger != 0 {
		t.Fatalf("expected free feed from stock, got %+v", out)
	}
	lines, _ := l.Inventory(1)
	if len(lines) != 0 {
		t.Errorf("the stocked portion should be consumed, got %+v", lines)
	}

	// No stock and no money: the hunger drop rolls back with the debit.
	if _, err := l.ApplyPetHungerDelta(1, 50); err != nil {
		t.Fatalf("prep hunger: %v", err)
	}
	if _, err := l.ApplyBalanceDelta(1, -960); err != nil {
		t.Fatalf("drain: %v", err)
	}
	out, err = l.FeedPet(1, 40, 40)
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	if out.State != PurchaseNoFunds {
		t.Errorf("expected NoFunds, got %d", out.State)
	}
	props, _ := l.Properties(1)
	if props.PetHunger != 50 {
		t.Errorf("refused feeding must not lower hunger, got %d", props.PetHunger)
	}
}
