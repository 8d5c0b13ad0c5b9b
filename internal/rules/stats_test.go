package rules

import (
	"errors"
	"testing"

	"github.com/talgya/chatlife/internal/entropy"
	"github.com/talgya/chatlife/internal/ledger"
)

// scriptedSource plays back fixed draws so single rolls become predictable.
type scriptedSource struct {
	floats []float64
	ints   []int
	fi, ii int
}

func (s *scriptedSource) Float() float64 {
	v := s.floats[s.fi%len(s.floats)]
	s.fi++
	return v
}

func (s *scriptedSource) IntN(n int) int {
	v := s.ints[s.ii%len(s.ints)]
	s.ii++
	return v % n
}

func TestDecayTickRanges(t *testing.T) {
	src := entropy.NewSeeded(1)

	var healthHits, energyHits, moodHits int
	for i := 0; i < 2000; i++ {
		d := DecayTick(src)
		if d.Health != 0 {
			healthHits++
			if d.Health < -5 || d.Health > -1 {
				t.Fatalf("health delta out of [-5,-1]: %d", d.Health)
			}
		}
		if d.Energy != 0 {
			energyHits++
			if d.Energy < -8 || d.Energy > -2 {
				t.Fatalf("energy delta out of [-8,-2]: %d", d.Energy)
			}
		}
		if d.Mood != 0 {
			moodHits++
			if d.Mood < -6 || d.Mood > -1 {
				t.Fatalf("mood delta out of [-6,-1]: %d", d.Mood)
			}
		}
	}

	// Rough frequency sanity: probabilities are 0.30 / 0.40 / 0.30.
	if healthHits < 400 || healthHits > 800 {
		t.Errorf("health decay frequency off: %d of 2000", healthHits)
	}
	if energyHits < 600 || energyHits > 1000 {
		t.Errorf("energy decay frequency off: %d of 2000", energyHits)
	}
	if moodHits < 400 || moodHits > 800 {
		t.Errorf("mood decay frequency off: %d of 2000", moodHits)
	}
}

func TestDecayChecksIndependent(t *testing.T) {
	// Every roll hits: all three stats decay in the same tick.
	src := &scriptedSource{floats: []float64{0.01}, ints: []int{0}}
	d := DecayTick(src)
	if d.Health == 0 || d.Energy == 0 || d.Mood == 0 {
		t.Errorf("all three checks should fire independently, got %+v", d)
	}
}

func TestNeglectPartnerPriority(t *testing.T) {
	// A hit roll neglects the partner, never the pet, even with both owned.
	src := &scriptedSource{floats: []float64{0.1}, ints: []int{3}}
	props := &ledger.Properties{HasPartner: true, HasPet: true}

	n := NeglectCheck(props, src)
	if n.PartnerMoodDelta == 0 {
		t.Fatal("partner neglect should fire at p=0.1 roll")
	}
	if n.PartnerMoodDelta < -15 || n.PartnerMoodDelta > -5 {
		t.Errorf("partner mood delta out of [-15,-5]: %d", n.PartnerMoodDelta)
	}
	if n.PetHungerDelta != 0 {
		t.Error("pet must not be checked when a partner exists")
	}
	if n.Notice == "" {
		t.Error("a neglect hit should carry a notice")
	}
}

func TestNeglectPartnerMissSkipsPet(t *testing.T) {
	// Partner roll misses (0.5 > 0.2); the pet is still not checked.
	src := &scriptedSource{floats: []float64{0.5}, ints: []int{0}}
	props := &ledger.Properties{HasPartner: true, HasPet: true}

	n := NeglectCheck(props, src)
	if n.PartnerMoodDelta != 0 || n.PetHungerDelta != 0 || n.Notice != "" {
		t.Errorf("expected empty neglect, got %+v", n)
	}
}

func TestNeglectPetOnly(t *testing.T) {
	src := &scriptedSource{floats: []float64{0.1}, ints: []int{5}}
	props := &ledger.Properties{HasPet: true}

	n := NeglectCheck(props, src)
	if n.PetHungerDelta < 10 || n.PetHungerDelta > 30 {
		t.Errorf("pet hunger delta out of [10,30]: %d", n.PetHungerDelta)
	}
	if n.PartnerMoodDelta != 0 {
		t.Error("no partner, no partner delta")
	}
}

func TestWorkOnceGating(t *testing.T) {
	unemployed := &ledger.Job{Kind: ledger.UnemployedKind}
	employed := &ledger.Job{Kind: "programmer", Salary: 500, StressLevel: 15}

	// NoJob wins regardless of energy.
	_, err := WorkOnce(unemployed, &ledger.Participant{Energy: 100})
	if !errors.Is(err, ErrNoJob) {
		t.Errorf("expected ErrNoJob, got %v", err)
	}

	// Energy gate at exactly the threshold.
	_, err = WorkOnce(employed, &ledger.Participant{Energy: 19})
	if !errors.Is(err, ErrInsufficientEnergy) {
		t.Errorf("expected ErrInsufficientEnergy at 19, got %v", err)
	}
	out, err := WorkOnce(employed, &ledger.Participant{Energy: 20})
	if err != nil {
		t.Fatalf("work at exactly 20 energy should pass: %v", err)
	}

	if out.Pay != 125 {
		t.Errorf("pay should be salary/4 = 125, got %d", out.Pay)
	}
	if out.EnergyDelta != -20 {
		t.Errorf("energy delta should be -20, got %d", out.EnergyDelta)
	}
	if out.MoodDelta != 0 {
		t.Errorf("stress 15 gives mood delta -(15/20) = 0, got %d", out.MoodDelta)
	}

	stressed := &ledger.Job{Kind: "manager", Salary: 400, StressLevel: 40}
	out, err = WorkOnce(stressed, &ledger.Participant{Energy: 50})
	if err != nil {
		t.Fatalf("work: %v", err)
	}
	if out.MoodDelta != -2 {
		t.Errorf("stress 40 gives mood delta -2, got %d", out.MoodDelta)
	}
}

func TestSalaryEnergyCost(t *testing.T) {
	cases := []struct{ stress, want int }{
		{0, 0}, {5, 0}, {10, 1}, {19, 1}, {20, 2},
	}
	for _, c := range cases {
		if got := SalaryEnergyCost(c.stress); got != c.want {
			t.Errorf("stress %d: expected toll %d, got %d", c.stress, c.want, got)
		}
	}
}

func TestFindProfession(t *testing.T) {
	p, ok := FindProfession("programmer")
	if !ok || p.Salary != 500 {
		t.Errorf("expected programmer at 500, got %+v ok=%v", p, ok)
	}
	if _, ok := FindProfession("astronaut"); ok {
		t.Error("unknown profession should not resolve")
	}
}
