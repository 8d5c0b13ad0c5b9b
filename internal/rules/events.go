package rules

import "github.com/talgya/chatlife/internal/entropy"

// EffectRange is a signed inclusive range applied to one stat.
type EffectRange struct {
	Lo, Hi int
}

// LifeEvent is one entry of the random event catalogue. Each effect range
// resolves to exactly one concrete integer when the event is applied.
type LifeEvent struct {
	Kind    string
	Text    string
	Balance *EffectRange
	Health  *EffectRange
	Energy  *EffectRange
	Mood    *EffectRange
}

func gain(lo, hi int) *EffectRange { return &EffectRange{Lo: lo, Hi: hi} }
func loss(lo, hi int) *EffectRange { return &EffectRange{Lo: -hi, Hi: -lo} }

// EventCatalogue is the fixed set of life events, gains and losses mixed.
var EventCatalogue = []LifeEvent{
	{Kind: "luck", Text: "You found money on the street!", Balance: gain(50, 200)},
	{Kind: "illness", Text: "You caught a cold...", Health: loss(10, 30)},
	{Kind: "overwork", Text: "You worked yourself ragged...", Energy: loss(20, 40)},
	{Kind: "joy", Text: "You ran into an old friend!", Mood: gain(10, 30)},
	{Kind: "breakdown", Text: "The car broke down.", Balance: loss(100, 300)},
	{Kind: "dividend", Text: "Your server turned a profit.", Balance: gain(20, 100)},
	{Kind: "quarrel", Text: "Your partner is upset...", Mood: loss(20, 40)},
	{Kind: "pet", Text: "The pet raided the fridge!", Mood: loss(10, 20)},
	{Kind: "bonus", Text: "You got a bonus at work!", Balance: gain(200, 500)},
	{Kind: "rest", Text: "You had a great rest.", Energy: gain(20, 40)},
}

// EventEffect is a fully resolved event: every range collapsed to one value.
type EventEffect struct {
	Kind    string
	Text    string
	Balance int
	Health  int
	Energy  int
	Mood    int
}

// DrawEvent picks one catalogue entry uniformly and resolves its ranges.
func DrawEvent(src entropy.Source) EventEffect {
	ev := EventCatalogue[src.IntN(len(EventCatalogue))]
	return EventEffect{
		Kind:    ev.Kind,
		Text:    ev.Text,
		Balance: resolve(ev.Balance, src),
		Health:  resolve(ev.Health, src),
		Energy:  resolve(ev.Energy, src),
		Mood:    resolve(ev.Mood, src),
	}
}

func resolve(r *EffectRange, src entropy.Source) int {
	if r == nil {
		return 0
	}
	return entropy.Between(src, r.Lo, r.Hi)
}
