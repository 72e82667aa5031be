package store

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ResultsDB records game outcomes and evaluator agreement in SQLite. It
// doubles as the dedupe set for the evaluator: a game already present is
// never downloaded twice.
type ResultsDB struct {
	conn *sql.DB
	mu   sync.Mutex
}

// GameResult is one finished game.
type GameResult struct {
	ID       string
	Winner   string
	Turns    int
	Source   string
	PlayedAt time.Time
}

// Evaluation is the heuristic agreement measurement for one snake in one
// downloaded game: of TurnsScored decisions, Agreed matched the move the
// snake actually played.
type Evaluation struct {
	GameID      string
	Snake       string
	TurnsScored int
	Agreed      int
}

// OpenResultsDB opens (and if needed initializes) the results database.
func OpenResultsDB(path string) (*ResultsDB, error) {
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("open results db: %w", err)
	}

	// SQLite supports a single writer.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	db := &ResultsDB{conn: conn}
	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

func (db *ResultsDB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS games (
		id TEXT PRIMARY KEY,
		winner TEXT,                    -- id/name of the winning snake, '' for a draw
		turns INTEGER,
		source TEXT,                    -- 'arena' or 'scraped'
		played_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS evaluations (
		game_id TEXT,
		snake TEXT,
		turns_scored INTEGER,
		agreed INTEGER,
		PRIMARY KEY (game_id, snake),
		FOREIGN KEY (game_id) REFERENCES games(id)
	);

	CREATE INDEX IF NOT EXISTS idx_games_source ON games(source);
	`

	db.mu.Lock()
	defer db.mu.Unlock()

	if _, err := db.conn.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (db *ResultsDB) Close() error {
	return db.conn.Close()
}

// GameExists reports whether a game id has already been recorded.
func (db *ResultsDB) GameExists(gameID string) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var one int
	err := db.conn.QueryRow("SELECT 1 FROM games WHERE id = ?", gameID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// RecordGame inserts one finished game. Re-recording an id is a no-op.
func (db *ResultsDB) RecordGame(result GameResult) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	_, err := db.conn.Exec(
		"INSERT OR IGNORE INTO games (id, winner, turns, source) VALUES (?, ?, ?, ?)",
		result.ID, result.Winner, result.Turns, result.Source,
	)
	if err != nil {
		return fmt.Errorf("insert game: %w", err)
	}
	return nil
}

// RecordEvaluations stores a game plus its per-snake agreement rows in one
// transaction.
func (db *ResultsDB) RecordEvaluations(result GameResult, evals []Evaluation) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		"INSERT OR IGNORE INTO games (id, winner, turns, source) VALUES (?, ?, ?, ?)",
		result.ID, result.Winner, result.Turns, result.Source,
	)
	if err != nil {
		return fmt.Errorf("insert game: %w", err)
	}

	stmt, err := tx.Prepare(
		"INSERT OR REPLACE INTO evaluations (game_id, snake, turns_scored, agreed) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare evaluation: %w", err)
	}
	defer stmt.Close()

	for _, e := range evals {
		if _, err := stmt.Exec(e.GameID, e.Snake, e.TurnsScored, e.Agreed); err != nil {
			return fmt.Errorf("insert evaluation for %s: %w", e.Snake, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// AgreementRate returns total scored turns and agreements across all
// stored evaluations.
func (db *ResultsDB) AgreementRate() (turns, agreed int64, err error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	row := db.conn.QueryRow(
		"SELECT COALESCE(SUM(turns_scored), 0), COALESCE(SUM(agreed), 0) FROM evaluations")
	if err := row.Scan(&turns, &agreed); err != nil {
		return 0, 0, err
	}
	return turns, agreed, nil
}

// KnownGameIDs returns every recorded game id as a set, used to seed the
// evaluator's dedupe map.
func (db *ResultsDB) KnownGameIDs() (map[string]bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	rows, err := db.conn.Query("SELECT id FROM games")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = true
	}
	return ids, rows.Err()
}
