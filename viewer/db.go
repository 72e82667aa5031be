package main

import (
	"context"
	"database/sql"
	"log"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
)

// DBCache keeps a DuckDB connection over the parquet roots and refreshes
// it periodically so newly flushed batch files become visible.
type DBCache struct {
	roots       []string
	refreshRate time.Duration

	mu          sync.RWMutex
	db          *sql.DB
	lastRefresh time.Time

	gamesIndex []GameSummary
}

func NewDBCache(roots []string, refreshRate time.Duration) *DBCache {
	return &DBCache{
		roots:       roots,
		refreshRate: refreshRate,
	}
}

func (c *DBCache) Get() (*sql.DB, error) {
	c.mu.RLock()
	if c.db != nil && time.Since(c.lastRefresh) < c.refreshRate {
		db := c.db
		c.mu.RUnlock()
		return db, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db != nil && time.Since(c.lastRefresh) < c.refreshRate {
		return c.db, nil
	}
	return c.refreshLocked()
}

func (c *DBCache) refreshLocked() (*sql.DB, error) {
	start := time.Now()

	newDB, err := openDuckDBWithGlobs(c.roots)
	if err != nil {
		return nil, err
	}

	if c.db != nil {
		_ = c.db.Close()
	}

	c.db = newDB
	c.lastRefresh = time.Now()
	// New files may have added games; rebuild lazily.
	c.gamesIndex = nil

	log.Printf("DBCache refreshed in %v", time.Since(start))
	return c.db, nil
}

// GetGamesIndex returns the cached index, rebuilding it after a refresh.
func (c *DBCache) GetGamesIndex(ctx context.Context) ([]GameSummary, error) {
	c.mu.RLock()
	if c.gamesIndex != nil && c.db != nil && time.Since(c.lastRefresh) < c.refreshRate {
		idx := c.gamesIndex
		c.mu.RUnlock()
		return idx, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gamesIndex != nil && c.db != nil && time.Since(c.lastRefresh) < c.refreshRate {
		return c.gamesIndex, nil
	}

	if c.db == nil || time.Since(c.lastRefresh) >= c.refreshRate {
		if _, err := c.refreshLocked(); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	games, err := queryAllGames(ctx, c.db)
	if err != nil {
		return nil, err
	}
	c.gamesIndex = games
	log.Printf("Games index rebuilt: %d games in %v", len(games), time.Since(start))

	return c.gamesIndex, nil
}

func (c *DBCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db != nil {
		err := c.db.Close()
		c.db = nil
		return err
	}
	return nil
}

// openDuckDBWithGlobs builds an in-memory DuckDB with a `turns` view over
// every parquet file under the roots, skipping in-progress tmp batches.
func openDuckDBWithGlobs(roots []string) (*sql.DB, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, err
	}
	_, _ = db.Exec("PRAGMA threads=4")

	globs := make([]string, 0, len(roots))
	for _, root := range roots {
		root = strings.TrimSpace(root)
		if root == "" {
			continue
		}
		glob := filepath.Join(root, "**", "*.parquet")
		globs = append(globs, "'"+escapeSQLString(glob)+"'")
	}

	if len(globs) == 0 {
		// Empty view with the turn_row_v1 shape.
		_, err := db.Exec(`CREATE OR REPLACE VIEW turns AS
			SELECT * FROM (
				SELECT
					NULL::VARCHAR AS game_id,
					NULL::INTEGER AS turn,
					NULL::INTEGER AS width,
					NULL::INTEGER AS height,
					NULL::INTEGER[] AS food_x,
					NULL::INTEGER[] AS food_y,
					NULL::STRUCT(
						id VARCHAR,
						alive BOOLEAN,
						health INTEGER,
						move INTEGER,
						body_x INTEGER[],
						body_y INTEGER[],
						outcome REAL
					)[] AS snakes,
					NULL::VARCHAR AS source,
					NULL::VARCHAR AS filename
			) WHERE 1=0`)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		return db, nil
	}

	sqlText := `CREATE OR REPLACE VIEW turns AS
		SELECT * FROM read_parquet([` + strings.Join(globs, ",") + `], filename=true, union_by_name=true)
		WHERE NOT contains(filename, '/tmp/')`
	if _, err := db.Exec(sqlText); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func escapeSQLString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// queryAllGames summarizes every game in one pass. The winner comes from
// the terminal row's outcomes.
func queryAllGames(ctx context.Context, db *sql.DB) ([]GameSummary, error) {
	query := `WITH game_stats AS (
		SELECT
			game_id,
			CASE
				WHEN starts_with(game_id, 'arena_') THEN try_cast(regexp_extract(game_id, '^arena_([0-9]+)_', 1) AS BIGINT)
				ELSE NULL
			END AS started_ns,
			(MAX(turn) - MIN(turn))::INTEGER AS turn_count,
			MIN(width)::INTEGER AS width,
			MIN(height)::INTEGER AS height,
			MIN(source)::VARCHAR AS source
		FROM turns
		GROUP BY game_id
	),
	last_turns AS (
		SELECT game_id, snakes
		FROM (
			SELECT game_id, snakes, turn,
				row_number() OVER (PARTITION BY game_id ORDER BY turn DESC) AS rn
			FROM turns
		)
		WHERE rn = 1
	)
	SELECT
		g.game_id,
		g.started_ns,
		g.turn_count,
		g.width,
		g.height,
		g.source,
		COALESCE(list_filter(lt.snakes, s -> s.outcome > 0)[1].id, '') AS winner
	FROM game_stats g
	LEFT JOIN last_turns lt ON g.game_id = lt.game_id`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]GameSummary, 0, 1024)
	for rows.Next() {
		var g GameSummary
		if err := rows.Scan(&g.GameID, &g.StartedNs, &g.TurnCount, &g.Width, &g.Height, &g.Source, &g.Winner); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Newest first by default.
	sortGames(out, "started_ns", "desc")
	return out, nil
}

func normalizeSort(sortKey, sortDir string) (string, string) {
	sk := strings.ToLower(strings.TrimSpace(sortKey))
	sd := strings.ToLower(strings.TrimSpace(sortDir))
	if sd != "asc" && sd != "desc" {
		sd = "desc"
	}
	switch sk {
	case "time", "started", "started_ns":
		sk = "started_ns"
	case "id", "game", "game_id":
		sk = "game_id"
	case "turns", "turn_count":
		sk = "turn_count"
	case "source":
		sk = "source"
	case "winner":
		sk = "winner"
	default:
		sk = "started_ns"
		sd = "desc"
	}
	return sk, sd
}

func sortGames(games []GameSummary, sortKey, sortDir string) {
	sk, sd := normalizeSort(sortKey, sortDir)

	sort.Slice(games, func(i, j int) bool {
		var less bool
		switch sk {
		case "started_ns":
			switch {
			case games[i].StartedNs == nil && games[j].StartedNs == nil:
				less = games[i].GameID < games[j].GameID
			case games[i].StartedNs == nil:
				less = false
			case games[j].StartedNs == nil:
				less = true
			default:
				if *games[i].StartedNs != *games[j].StartedNs {
					less = *games[i].StartedNs < *games[j].StartedNs
				} else {
					less = games[i].GameID < games[j].GameID
				}
			}
		case "turn_count":
			less = games[i].TurnCount < games[j].TurnCount
		case "source":
			less = games[i].Source < games[j].Source
		case "winner":
			less = games[i].Winner < games[j].Winner
		default:
			less = games[i].GameID < games[j].GameID
		}
		if sd == "desc" {
			return !less
		}
		return less
	})
}

// paginateGames sorts a copy of the index and returns one page of it.
func paginateGames(games []GameSummary, limit, offset int, sortKey, sortDir string) []GameSummary {
	sorted := make([]GameSummary, len(games))
	copy(sorted, games)
	sortGames(sorted, sortKey, sortDir)

	if offset >= len(sorted) {
		return []GameSummary{}
	}
	end := offset + limit
	if end > len(sorted) {
		end = len(sorted)
	}
	return sorted[offset:end]
}

// buildStats aggregates the games index into the /api/stats payload.
func buildStats(games []GameSummary) StatsResponse {
	stats := StatsResponse{Wins: make(map[string]int64)}
	var totalTurns int64

	for _, g := range games {
		stats.Games++
		totalTurns += int64(g.TurnCount)
		if g.Winner == "" {
			stats.Draws++
		} else {
			stats.Wins[g.Winner]++
		}
	}

	stats.Turns = totalTurns
	if stats.Games > 0 {
		stats.AvgLength = float64(totalTurns) / float64(stats.Games)
	}
	return stats
}
