package ledger

// Server returns the passive income asset, created at level 1 / rate 10 on
// first access.
func (l *Ledger) Server(id int64) (*Server, error) {
	_, err := l.conn.Exec(`INSERT OR IGNORE INTO servers (participant_id) VALUES (?)`, id)
	if err != nil {
		return nil, storeErr("create server", err)
	}

	var s Server
	if err := l.conn.Get(&s, `SELECT * FROM servers WHERE participant_id = ?`, id); err != nil {
		return nil, storeErr("get server", err)
	}
	return &s, nil
}

// UpgradeServer raises the server one level and its income rate by rateStep.
// Income rate only ever grows through this path. Returns the upgraded record.
func (l *Ledger) UpgradeServer(id int64, rateStep int) (*Server, error) {
	if _, err := l.Server(id); err != nil {
		return nil, err
	}
	if _, err := l.conn.Exec(
		`UPDATE servers SET level = level + 1, income_rate = income_rate + ? WHERE participant_id = ?`,
		rateStep, id,
	); err != nil {
		return nil, storeErr("upgrade server", err)
	}
	return l.Server(id)
}

// MarkCollected stamps the server's last income collection time.
func (l *Ledger) MarkCollected(id int64) error {
	_, err := l.conn.Exec(
		`UPDATE servers SET last_collected = CURRENT_TIMESTAMP WHERE participant_id = ?`, id)
	return storeErr("mark collected", err)
}

// Job returns the employment record, created as unemployed on first access.
func (l *Ledger) Job(id int64) (*Job, error) {
	_, err := l.conn.Exec(`INSERT OR IGNORE INTO jobs (participant_id) VALUES (?)`, id)
	if err != nil {
		return nil, storeErr("create job", err)
	}

	var j Job
	if err := l.conn.Get(&j, `SELECT * FROM jobs WHERE participant_id = ?`, id); err != nil {
		return nil, storeErr("get job", err)
	}
	return &j, nil
}

// SetJob assigns a profession. Salary 0 is only valid for the unemployed
// kind; callers pass catalogue entries so this is not re-validated here.
func (l *Ledger) SetJob(id int64, kind string, salary, stress int) error {
	if _, err := l.Job(id); err != nil {
		return err
	}
	_, err := l.conn.Exec(
		`UPDATE jobs SET job_kind = ?, salary = ?, stress_level = ? WHERE participant_id = ?`,
		kind, salary, stress, id,
	)
	return storeErr("set job", err)
}

// MarkWorked stamps the last manual work time.
func (l *Ledger) MarkWorked(id int64) error {
	_, err := l.conn.Exec(
		`UPDATE jobs SET last_worked = CURRENT_TIMESTAMP WHERE participant_id = ?`, id)
	return storeErr("mark worked", err)
}

// AddItem adds quantity of an item to the inventory, merging stacks.
func (l *Ledger) AddItem(id int64, kind string, quantity int) error {
	_, err := l.conn.Exec(`
		INSERT INTO inventory (participant_id, item_kind, quantity) VALUES (?, ?, ?)
		ON CONFLICT (participant_id, item_kind) DO UPDATE SET quantity = quantity + excluded.quantity`,
		id, kind, quantity,
	)
	return storeErr("add item", err)
}

// ConsumeItem removes one item from a stack, deleting the row when it would
// reach zero. Returns false when the participant has none.
func (l *Ledger) ConsumeItem(id int64, kind string) (bool, error) {
	tx, err := l.conn.Beginx()
	if err != nil {
		return false, storeErr("begin consume", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`UPDATE inventory SET quantity = quantity - 1
		 WHERE participant_id = ? AND item_kind = ? AND quantity > 0`,
		id, kind,
	)
	if err != nil {
		return false, storeErr("consume item", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storeErr("consume item", err)
	}
	if n == 0 {
		return false, nil
	}

	// Quantity never persists at zero.
	if _, err := tx.Exec(
		`DELETE FROM inventory WHERE participant_id = ? AND item_kind = ? AND quantity <= 0`,
		id, kind,
	); err != nil {
		return false, storeErr("trim empty stack", err)
	}

	if err := tx.Commit(); err != nil {
		return false, storeErr("commit consume", err)
	}
	return true, nil
}

// Inventory lists a participant's item stacks.
func (l *Ledger) Inventory(id int64) ([]InventoryLine, error) {
	var lines []InventoryLine
	err := l.conn.Select(&lines,
		`SELECT * FROM inventory WHERE participant_id = ? ORDER BY item_kind`, id)
	if err != nil {
		return nil, storeErr("list inventory", err)
	}
	return lines, nil
}
