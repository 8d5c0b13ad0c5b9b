// Package ledger provides SQLite-backed durable state for the simulation.
// Every mutation goes through atomic SQL deltas computed inside a single
// UPDATE, so concurrent ticks and user actions can never lose an update.
package ledger

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Ledger wraps a SQLite connection holding all game entities.
type Ledger struct {
	conn *sqlx.DB

	// StartBalance seeds newly created participants. Configurable; the
	// schema default stays 1000 for rows created outside Go.
	StartBalance int
}

// Open opens or creates a SQLite database at the given path. The pragmas
// ride the DSN so every pooled connection gets WAL and the busy timeout;
// without the timeout concurrent writers would see SQLITE_BUSY instead of
// waiting their turn.
func Open(path string) (*Ledger, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	l := &Ledger{conn: conn, StartBalance: 1000}
	if err := l.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return l, nil
}

// Close closes the database connection.
func (l *Ledger) Close() error {
	return l.conn.Close()
}

func (l *Ledger) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS participants (
		participant_id INTEGER PRIMARY KEY,
		balance INTEGER NOT NULL DEFAULT 1000,
		health INTEGER NOT NULL DEFAULT 100,
		energy INTEGER NOT NULL DEFAULT 100,
		mood INTEGER NOT NULL DEFAULT 100,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS properties (
		participant_id INTEGER PRIMARY KEY,
		has_partner INTEGER NOT NULL DEFAULT 0,
		partner_mood INTEGER NOT NULL DEFAULT 0,
		has_pet INTEGER NOT NULL DEFAULT 0,
		pet_hunger INTEGER NOT NULL DEFAULT 0,
		has_vehicle INTEGER NOT NULL DEFAULT 0,
		vehicle_condition INTEGER NOT NULL DEFAULT 0,
		has_residence INTEGER NOT NULL DEFAULT 0,
		residence_comfort INTEGER NOT NULL DEFAULT 0,
		has_venture INTEGER NOT NULL DEFAULT 0,
		venture_level INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS servers (
		participant_id INTEGER PRIMARY KEY,
		level INTEGER NOT NULL DEFAULT 1,
		income_rate INTEGER NOT NULL DEFAULT 10,
		last_collected TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS jobs (
		participant_id INTEGER PRIMARY KEY,
		job_kind TEXT NOT NULL DEFAULT 'unemployed',
		salary INTEGER NOT NULL DEFAULT 0,
		stress_level INTEGER NOT NULL DEFAULT 0,
		last_worked TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS inventory (
		participant_id INTEGER NOT NULL,
		item_kind TEXT NOT NULL,
		quantity INTEGER NOT NULL DEFAULT 1,
		PRIMARY KEY (participant_id, item_kind)
	);

	CREATE TABLE IF NOT EXISTS quizzes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		chat_id INTEGER NOT NULL,
		question TEXT NOT NULL,
		answer TEXT NOT NULL,
		reward INTEGER NOT NULL DEFAULT 50,
		active INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS event_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		chat_id INTEGER NOT NULL,
		participant_id INTEGER NOT NULL,
		kind TEXT NOT NULL,
		message TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS chat_members (
		chat_id INTEGER NOT NULL,
		participant_id INTEGER NOT NULL,
		last_active TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (chat_id, participant_id)
	);

	CREATE INDEX IF NOT EXISTS idx_quizzes_chat_active ON quizzes(chat_id, active);
	CREATE INDEX IF NOT EXISTS idx_event_log_chat ON event_log(chat_id);
	CREATE INDEX IF NOT EXISTS idx_chat_members_chat ON chat_members(chat_id);
	`
	_, err := l.conn.Exec(schema)
	return err
}

// StorageError marks a failed durable-store operation. The triggering
// action is aborted with prior state unchanged.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("ledger: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}
