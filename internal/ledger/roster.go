package ledger

import (
	"fmt"
	"time"
)

// RegisterMember adds a participant to a chat roster, refreshing the
// activity timestamp when already present.
func (l *Ledger) RegisterMember(chatID, participantID int64) error {
	_, err := l.conn.Exec(`
		INSERT INTO chat_members (chat_id, participant_id, last_active)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (chat_id, participant_id) DO UPDATE SET last_active = CURRENT_TIMESTAMP`,
		chatID, participantID,
	)
	return storeErr("register member", err)
}

// TouchMember refreshes a member's activity timestamp. Unknown members are
// ignored; registration is the explicit path.
func (l *Ledger) TouchMember(chatID, participantID int64) error {
	_, err := l.conn.Exec(
		`UPDATE chat_members SET last_active = CURRENT_TIMESTAMP WHERE chat_id = ? AND participant_id = ?`,
		chatID, participantID,
	)
	return storeErr("touch member", err)
}

// Members lists every participant registered in a chat.
func (l *Ledger) Members(chatID int64) ([]int64, error) {
	var ids []int64
	err := l.conn.Select(&ids,
		`SELECT participant_id FROM chat_members WHERE chat_id = ? ORDER BY participant_id`, chatID)
	if err != nil {
		return nil, storeErr("list members", err)
	}
	return ids, nil
}

// ActiveMembers lists chat members whose last activity is within the window.
func (l *Ledger) ActiveMembers(chatID int64, window time.Duration) ([]int64, error) {
	// Comparison happens in SQLite's own timestamp format; binding a Go
	// time.Time here would compare RFC3339 text against CURRENT_TIMESTAMP
	// text and never match.
	modifier := fmt.Sprintf("-%d seconds", int64(window.Seconds()))
	var ids []int64
	err := l.conn.Select(&ids,
		`SELECT participant_id FROM chat_members WHERE chat_id = ? AND last_active > datetime('now', ?) ORDER BY participant_id`,
		chatID, modifier)
	if err != nil {
		return nil, storeErr("list active members", err)
	}
	return ids, nil
}

// Chats lists every chat with at least one registered member.
func (l *Ledger) Chats() ([]int64, error) {
	var ids []int64
	err := l.conn.Select(&ids, `SELECT DISTINCT chat_id FROM chat_members ORDER BY chat_id`)
	if err != nil {
		return nil, storeErr("list chats", err)
	}
	return ids, nil
}

// LeaderboardEntry is one row of a chat's top list.
type LeaderboardEntry struct {
	ParticipantID int64 `db:"participant_id"`
	Balance       int64 `db:"balance"`
	Health        int   `db:"health"`
	Mood          int   `db:"mood"`
}

// Leaderboard returns the chat's members ranked by balance.
func (l *Ledger) Leaderboard(chatID int64, limit int) ([]LeaderboardEntry, error) {
	var rows []LeaderboardEntry
	err := l.conn.Select(&rows, `
		SELECT p.participant_id, p.balance, p.health, p.mood
		FROM participants p
		JOIN chat_members cm ON cm.participant_id = p.participant_id AND cm.chat_id = ?
		ORDER BY p.balance DESC
		LIMIT ?`,
		chatID, limit)
	if err != nil {
		return nil, storeErr("leaderboard", err)
	}
	return rows, nil
}

// EarnersWithServers lists members of a chat whose server produces income.
// Members whose server row was never materialized still earn at the default
// level 1 / rate 10; the join fills the defaults in rather than depending on
// lazy row creation.
func (l *Ledger) EarnersWithServers(chatID int64) ([]Server, error) {
	var rows []Server
	err := l.conn.Select(&rows, `
		SELECT cm.participant_id AS participant_id,
		       COALESCE(s.level, 1) AS level,
		       COALESCE(s.income_rate, 10) AS income_rate
		FROM chat_members cm
		LEFT JOIN servers s ON s.participant_id = cm.participant_id
		WHERE cm.chat_id = ? AND COALESCE(s.income_rate, 10) > 0`,
		chatID)
	if err != nil {
		return nil, storeErr("list servers", err)
	}
	return rows, nil
}

// SalariedMembers lists members of a chat holding a paying job.
func (l *Ledger) SalariedMembers(chatID int64) ([]Job, error) {
	var rows []Job
	err := l.conn.Select(&rows, `
		SELECT j.participant_id, j.job_kind, j.salary, j.stress_level, j.last_worked
		FROM jobs j
		JOIN chat_members cm ON cm.participant_id = j.participant_id AND cm.chat_id = ?
		WHERE j.salary > 0`,
		chatID)
	if err != nil {
		return nil, storeErr("list salaried members", err)
	}
	return rows, nil
}

// AppendEvent writes one append-only audit record.
func (l *Ledger) AppendEvent(chatID, participantID int64, kind, message string) error {
	_, err := l.conn.Exec(
		`INSERT INTO event_log (chat_id, participant_id, kind, message) VALUES (?, ?, ?, ?)`,
		chatID, participantID, kind, message,
	)
	return storeErr("append event", err)
}

// RecentEvents returns the newest audit records for a chat.
func (l *Ledger) RecentEvents(chatID int64, limit int) ([]EventLogEntry, error) {
	var rows []EventLogEntry
	err := l.conn.Select(&rows,
		`SELECT * FROM event_log WHERE chat_id = ? ORDER BY id DESC LIMIT ?`,
		chatID, limit)
	if err != nil {
		return nil, storeErr("recent events", err)
	}
	return rows, nil
}
