package rules

// Profession is one entry of the fixed job catalogue.
type Profession struct {
	Kind   string
	Salary int // per payout cycle
	Stress int
}

// JobCatalogue lists every profession a participant can take.
var JobCatalogue = []Profession{
	{Kind: "mover", Salary: 150, Stress: 5},
	{Kind: "waiter", Salary: 200, Stress: 10},
	{Kind: "programmer", Salary: 500, Stress: 15},
	{Kind: "manager", Salary: 400, Stress: 20},
	{Kind: "designer", Salary: 350, Stress: 10},
	{Kind: "driver", Salary: 300, Stress: 15},
	{Kind: "builder", Salary: 250, Stress: 20},
	{Kind: "teacher", Salary: 280, Stress: 10},
}

// FindProfession looks up a catalogue entry by kind.
func FindProfession(kind string) (Profession, bool) {
	for _, p := range JobCatalogue {
		if p.Kind == kind {
			return p, true
		}
	}
	return Profession{}, false
}
