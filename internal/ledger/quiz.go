package ledger

import "database/sql"

// CreateQuiz persists a new active quiz for a chat and returns it.
func (l *Ledger) CreateQuiz(chatID int64, question, answer string, reward int) (*Quiz, error) {
	res, err := l.conn.Exec(
		`INSERT INTO quizzes (chat_id, question, answer, reward) VALUES (?, ?, ?, ?)`,
		chatID, question, answer, reward,
	)
	if err != nil {
		return nil, storeErr("create quiz", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, storeErr("create quiz", err)
	}
	return l.QuizByID(id)
}

// QuizByID returns a quiz or (nil, nil) when absent.
func (l *Ledger) QuizByID(id int64) (*Quiz, error) {
	var q Quiz
	err := l.conn.Get(&q, `SELECT * FROM quizzes WHERE id = ?`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("get quiz", err)
	}
	return &q, nil
}

// LatestActiveQuiz returns the newest active quiz in a chat, or (nil, nil).
func (l *Ledger) LatestActiveQuiz(chatID int64) (*Quiz, error) {
	var q Quiz
	err := l.conn.Get(&q,
		`SELECT * FROM quizzes WHERE chat_id = ? AND active = 1 ORDER BY id DESC LIMIT 1`,
		chatID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("get active quiz", err)
	}
	return &q, nil
}

// ResolveQuiz atomically flips a quiz inactive and credits the winner's
// balance with the reward. The WHERE active = 1 guard makes the flip a
// check-and-set: of two concurrent winners exactly one sees won=true, the
// other finds the quiz already resolved. Returns the reward granted.
func (l *Ledger) ResolveQuiz(quizID, winnerID int64) (won bool, reward int, err error) {
	if _, err := l.Participant(winnerID); err != nil {
		return false, 0, err
	}

	tx, err := l.conn.Beginx()
	if err != nil {
		return false, 0, storeErr("begin resolve quiz", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`UPDATE quizzes SET active = 0 WHERE id = ? AND active = 1`, quizID)
	if err != nil {
		return false, 0, storeErr("resolve quiz", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, 0, storeErr("resolve quiz", err)
	}
	if n == 0 {
		// Already resolved or never existed. Benign.
		return false, 0, nil
	}

	if err := tx.Get(&reward, `SELECT reward FROM quizzes WHERE id = ?`, quizID); err != nil {
		return false, 0, storeErr("read quiz reward", err)
	}

	if _, err := tx.Exec(
		`UPDATE participants SET balance = balance + ? WHERE participant_id = ?`,
		reward, winnerID,
	); err != nil {
		return false, 0, storeErr("grant quiz reward", err)
	}

	if err := tx.Commit(); err != nil {
		return false, 0, storeErr("commit resolve quiz", err)
	}
	return true, reward, nil
}
