package income

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/talgya/chatlife/internal/ledger"
)

// fakeStore backs accrual batches in memory and can be told to fail a
// specific participant's balance update.
type fakeStore struct {
	servers  []ledger.Server
	jobs     []ledger.Job
	balances map[int64]int64
	energy   map[int64]int
	failFor  int64
	events   int
}

var errInjected = errors.New("injected storage failure")

func (f *fakeStore) EarnersWithServers(chatID int64) ([]ledger.Server, error) {
	return f.servers, nil
}

func (f *fakeStore) SalariedMembers(chatID int64) ([]ledger.Job, error) {
	return f.jobs, nil
}

func (f *fakeStore) ApplyBalanceDelta(id int64, delta int64) (int64, error) {
	if id == f.failFor {
		return 0, errInjected
	}
	f.balances[id] += delta
	return f.balances[id], nil
}

func (f *fakeStore) ApplyStatDelta(id int64, field ledger.StatField, delta int) (int, error) {
	f.energy[id] += delta
	if f.energy[id] < 0 {
		f.energy[id] = 0
	}
	return f.energy[id], nil
}

func (f *fakeStore) MarkCollected(id int64) error { return nil }

func (f *fakeStore) AppendEvent(chatID, participantID int64, kind, message string) error {
	f.events++
	return nil
}

func newFakeStore() *fakeStore {
	return &fakeStore{balances: map[int64]int64{}, energy: map[int64]int{}}
}

func TestPaySalariesBatchIsolation(t *testing.T) {
	f := newFakeStore()
	for i := int64(1); i <= 4; i++ {
		f.jobs = append(f.jobs, ledger.Job{ParticipantID: i, Salary: int(100 * i), StressLevel: 20})
		f.energy[i] = 100
	}
	f.failFor = 2

	acc := New(f)
	res, err := acc.PaySalaries(5)
	if err != nil {
		t.Fatalf("batch should not abort: %v", err)
	}

	if len(res.Errors) != 1 {
		t.Fatalf("expected one collected error, got %d", len(res.Errors))
	}
	if !errors.Is(res.Errors[0], errInjected) {
		t.Errorf("collected error should wrap the injected one, got %v", res.Errors[0])
	}
	if res.Participants != 3 {
		t.Errorf("three participants should have been paid, got %d", res.Participants)
	}

	// Each survivor gets exactly their own salary; the failed one nothing.
	for i := int64(1); i <= 4; i++ {
		want := int64(100 * i)
		if i == 2 {
			want = 0
		}
		if f.balances[i] != want {
			t.Errorf("participant %d: expected balance %d, got %d", i, want, f.balances[i])
		}
	}

	// Stress 20 drains 2 energy from everyone who was paid.
	for _, id := range res.Affected {
		if f.energy[id] != 98 {
			t.Errorf("participant %d: expected energy 98, got %d", id, f.energy[id])
		}
	}
	if f.events != 3 {
		t.Errorf("expected 3 salary log entries, got %d", f.events)
	}
}

func TestCollectServerIncome(t *testing.T) {
	f := newFakeStore()
	for i := int64(1); i <= 3; i++ {
		f.servers = append(f.servers, ledger.Server{ParticipantID: i, Level: int(i), IncomeRate: int(10 * i)})
	}

	acc := New(f)
	res, err := acc.CollectServerIncome(5)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if res.Credited != 60 {
		t.Errorf("expected total 60 credited, got %d", res.Credited)
	}
	if res.Participants != 3 || len(res.Affected) != 3 {
		t.Errorf("all three servers should pay out, got %+v", res)
	}
	for i := int64(1); i <= 3; i++ {
		if f.balances[i] != 10*i {
			t.Errorf("participant %d: expected %d, got %d", i, 10*i, f.balances[i])
		}
	}
}

func TestAccrualAgainstRealLedger(t *testing.T) {
	led, err := ledger.Open(filepath.Join(t.TempDir(), "income.db"))
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	defer led.Close()

	for i := int64(1); i <= 2; i++ {
		if _, err := led.Participant(i); err != nil {
			t.Fatalf("participant: %v", err)
		}
		if err := led.RegisterMember(5, i); err != nil {
			t.Fatalf("register: %v", err)
		}
	}
	if err := led.SetJob(1, "waiter", 200, 10); err != nil {
		t.Fatalf("set job: %v", err)
	}

	acc := New(led)

	// Both members own the default server (rate 10); only one has a job.
	res, err := acc.CollectServerIncome(5)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if res.Credited != 20 {
		t.Errorf("expected 20 server income, got %d", res.Credited)
	}

	res, err = acc.PaySalaries(5)
	if err != nil {
		t.Fatalf("payroll: %v", err)
	}
	if res.Participants != 1 || res.Credited != 200 {
		t.Errorf("only the waiter earns a salary, got %+v", res)
	}

	p, _ := led.Participant(1)
	if p.Balance != 1000+10+200 {
		t.Errorf("expected 1210, got %d", p.Balance)
	}
	if p.Energy != 99 {
		t.Errorf("stress 10 should cost 1 energy, got %d", p.Energy)
	}
}
