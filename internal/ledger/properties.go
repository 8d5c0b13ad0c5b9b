package ledger

// Properties returns the ownership record, creating an empty one on first
// access (nothing owned, all numeric fields zero).
func (l *Ledger) Properties(id int64) (*Properties, error) {
	_, err := l.conn.Exec(`INSERT OR IGNORE INTO properties (participant_id) VALUES (?)`, id)
	if err != nil {
		return nil, storeErr("create properties", err)
	}

	var p Properties
	if err := l.conn.Get(&p, `SELECT * FROM properties WHERE participant_id = ?`, id); err != nil {
		return nil, storeErr("get properties", err)
	}
	return &p, nil
}

// SetPartner flips the partner flag and seeds the partner's mood.
func (l *Ledger) SetPartner(id int64, mood int) error {
	return l.setProps(id,
		`UPDATE properties SET has_partner = 1, partner_mood = ? WHERE participant_id = ?`,
		mood, id)
}

// ClearPartner records the partner leaving. The row is kept; only the gate
// flips false.
func (l *Ledger) ClearPartner(id int64) error {
	return l.setProps(id,
		`UPDATE properties SET has_partner = 0, partner_mood = 0 WHERE participant_id = ?`, id)
}

// ApplyPartnerMoodDelta adjusts partner mood, clamped [0,100] inside the
// UPDATE. Returns the new mood. A no-op when there is no partner.
func (l *Ledger) ApplyPartnerMoodDelta(id int64, delta int) (int, error) {
	return l.applyPropDelta(id, "partner_mood", "has_partner", delta)
}

// ApplyPetHungerDelta adjusts pet hunger, clamped [0,100]. Returns the new
// hunger. A no-op when there is no pet.
func (l *Ledger) ApplyPetHungerDelta(id int64, delta int) (int, error) {
	return l.applyPropDelta(id, "pet_hunger", "has_pet", delta)
}

func (l *Ledger) setProps(id int64, query string, args ...any) error {
	if _, err := l.Properties(id); err != nil {
		return err
	}
	if _, err := l.conn.Exec(query, args...); err != nil {
		return storeErr("set properties", err)
	}
	return nil
}

// applyPropDelta is the clamped-delta path for gated numeric property
// fields. Field and gate names come from the callers above, never input.
func (l *Ledger) applyPropDelta(id int64, field, gate string, delta int) (int, error) {
	if _, err := l.Properties(id); err != nil {
		return 0, err
	}

	tx, err := l.conn.Beginx()
	if err != nil {
		return 0, storeErr("begin property delta", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`UPDATE properties SET `+field+` = MIN(100, MAX(0, `+field+` + ?)) WHERE participant_id = ? AND `+gate+` = 1`,
		delta, id,
	); err != nil {
		return 0, storeErr("apply property delta", err)
	}

	var value int
	if err := tx.Get(&value, `SELECT `+field+` FROM properties WHERE participant_id = ?`, id); err != nil {
		return 0, storeErr("read property", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, storeErr("commit property delta", err)
	}
	return value, nil
}
