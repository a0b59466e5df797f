package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/support-agent/backend/internal/storage/models"
	"github.com/support-agent/backend/pkg/logger"
)

// Client keeps a local audit trail of processed exchanges. It sits beside
// the document store, not in front of it: inserts are best-effort and the
// request path never depends on them.
type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err = db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS exchanges (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL,
		question TEXT NOT NULL,
		answer TEXT,
		matched_title TEXT,
		score REAL,
		fallback INTEGER DEFAULT 0,
		persisted INTEGER DEFAULT 1,
		latency_ms INTEGER,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_exchanges_user ON exchanges(username);
	CREATE INDEX IF NOT EXISTS idx_exchanges_created ON exchanges(created_at);
	`

	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

func (c *Client) InsertExchange(record *models.ExchangeRecord) error {
	query := `
		INSERT INTO exchanges (id, username, question, answer, matched_title, score,
			fallback, persisted, latency_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	fallback := 0
	if record.Fallback {
		fallback = 1
	}
	persisted := 0
	if record.Persisted {
		persisted = 1
	}

	_, err := c.db.Exec(
		query,
		record.ID,
		record.Username,
		record.Question,
		record.Answer,
		record.MatchedTitle,
		record.Score,
		fallback,
		persisted,
		record.LatencyMS,
		record.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert exchange: %w", err)
	}

	return nil
}

func (c *Client) RecentExchanges(username string, limit int) ([]models.ExchangeRecord, error) {
	query := `
		SELECT id, question, answer, matched_title, score, fallback, persisted, latency_ms, created_at
		FROM exchanges
		WHERE username = ?
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := c.db.Query(query, username, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query exchanges: %w", err)
	}
	defer rows.Close()

	var records []models.ExchangeRecord
	for rows.Next() {
		var r models.ExchangeRecord
		var fallback, persisted int
		var createdAt int64

		err := rows.Scan(&r.ID, &r.Question, &r.Answer, &r.MatchedTitle, &r.Score,
			&fallback, &persisted, &r.LatencyMS, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		r.Username = username
		r.Fallback = fallback == 1
		r.Persisted = persisted == 1
		r.CreatedAt = time.Unix(createdAt, 0)
		records = append(records, r)
	}

	return records, rows.Err()
}
