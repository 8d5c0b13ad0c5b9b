package ledger

// StatField names a clamped participant stat.
type StatField string

const (
	StatHealth StatField = "health"
	StatEnergy StatField = "energy"
	StatMood   StatField = "mood"
)

func (f StatField) valid() bool {
	switch f {
	case StatHealth, StatEnergy, StatMood:
		return true
	}
	return false
}

// Participant returns the participant record, creating it with default
// values on first access.
func (l *Ledger) Participant(id int64) (*Participant, error) {
	_, err := l.conn.Exec(
		`INSERT OR IGNORE INTO participants (participant_id, balance) VALUES (?, ?)`,
		id, l.StartBalance,
	)
	if err != nil {
		return nil, storeErr("create participant", err)
	}

	var p Participant
	if err := l.conn.Get(&p, `SELECT * FROM participants WHERE participant_id = ?`, id); err != nil {
		return nil, storeErr("get participant", err)
	}
	return &p, nil
}

// ApplyBalanceDelta adjusts a participant's balance by delta and returns the
// new balance. The arithmetic runs inside the UPDATE so two concurrent
// callers cannot lose an update. Balance has no floor or ceiling.
func (l *Ledger) ApplyBalanceDelta(id int64, delta int64) (int64, error) {
	if _, err := l.Participant(id); err != nil {
		return 0, err
	}

	tx, err := l.conn.Beginx()
	if err != nil {
		return 0, storeErr("begin balance delta", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`UPDATE participants SET balance = balance + ? WHERE participant_id = ?`,
		delta, id,
	); err != nil {
		return 0, storeErr("apply balance delta", err)
	}

	var balance int64
	if err := tx.Get(&balance, `SELECT balance FROM participants WHERE participant_id = ?`, id); err != nil {
		return 0, storeErr("read balance", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, storeErr("commit balance delta", err)
	}
	return balance, nil
}

// ApplyStatDelta adjusts a clamped stat by delta and returns the new value.
// Clamping to [0,100] happens inside the same UPDATE that computes the delta.
func (l *Ledger) ApplyStatDelta(id int64, field StatField, delta int) (int, error) {
	if !field.valid() {
		return 0, storeErr("apply stat delta", errBadField(field))
	}
	if _, err := l.Participant(id); err != nil {
		return 0, err
	}

	tx, err := l.conn.Beginx()
	if err != nil {
		return 0, storeErr("begin stat delta", err)
	}
	defer tx.Rollback()

	// Field name is from the whitelist above, never caller input.
	if _, err := tx.Exec(
		`UPDATE participants SET `+string(field)+` = MIN(100, MAX(0, `+string(field)+` + ?)) WHERE participant_id = ?`,
		delta, id,
	); err != nil {
		return 0, storeErr("apply stat delta", err)
	}

	var value int
	if err := tx.Get(&value, `SELECT `+string(field)+` FROM participants WHERE participant_id = ?`, id); err != nil {
		return 0, storeErr("read stat", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, storeErr("commit stat delta", err)
	}
	return value, nil
}

// TrySpend debits amount from a balance only when it is covered, as one
// conditional UPDATE. Reports whether the debit happened; two concurrent
// purchases can never both spend the same funds.
func (l *Ledger) TrySpend(id int64, amount int64) (bool, error) {
	if _, err := l.Participant(id); err != nil {
		return false, err
	}

	res, err := l.conn.Exec(
		`UPDATE participants SET balance = balance - ? WHERE participant_id = ? AND balance >= ?`,
		amount, id, amount,
	)
	if err != nil {
		return false, storeErr("try spend", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storeErr("try spend", err)
	}
	return n > 0, nil
}

type errBadField StatField

func (e errBadField) Error() string {
	return "unknown stat field " + string(e)
}
