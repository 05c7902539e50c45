package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/cyberpulse/backend/internal/storage/models"
	"github.com/cyberpulse/backend/pkg/logger"
)

type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
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
	CREATE TABLE IF NOT EXISTS feed_history (
		id TEXT PRIMARY KEY,
		query_text TEXT NOT NULL,
		topic_count INTEGER NOT NULL,
		total_articles INTEGER NOT NULL,
		high_severity_count INTEGER NOT NULL,
		top_topic_id TEXT,
		mean_sentiment REAL,
		api_calls INTEGER,
		latency_ms INTEGER,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_feed_created ON feed_history(created_at);

	CREATE TABLE IF NOT EXISTS feed_topics (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		feed_id TEXT NOT NULL,
		topic_id TEXT NOT NULL,
		article_count INTEGER NOT NULL,
		FOREIGN KEY (feed_id) REFERENCES feed_history(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_feed_topics_feed ON feed_topics(feed_id);
	`

	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	logger.Info("Database schema initialized")
	return nil
}

func (c *Client) InsertFeedRecord(record *models.FeedRecord) error {
	_, err := c.db.Exec(`
		INSERT INTO feed_history
		(id, query_text, topic_count, total_articles, high_severity_count, top_topic_id, mean_sentiment, api_calls, latency_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.QueryText,
		record.TopicCount,
		record.TotalArticles,
		record.HighSeverityCount,
		record.TopTopicID,
		record.MeanSentiment,
		record.APICalls,
		record.LatencyMS,
		record.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert feed record: %w", err)
	}
	return nil
}

func (c *Client) InsertTopicResult(result *models.TopicResult) error {
	_, err := c.db.Exec(`
		INSERT INTO feed_topics (feed_id, topic_id, article_count)
		VALUES (?, ?, ?)`,
		result.FeedID,
		result.TopicID,
		result.ArticleCount,
	)
	if err != nil {
		return fmt.Errorf("failed to insert topic result: %w", err)
	}
	return nil
}

func (c *Client) GetRecentFeeds(limit int) ([]*models.FeedRecord, error) {
	rows, err := c.db.Query(`
		SELECT id, query_text, topic_count, total_articles, high_severity_count, top_topic_id, mean_sentiment, api_calls, latency_ms, created_at
		FROM feed_history
		ORDER BY created_at DESC
		LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query feed history: %w", err)
	}
	defer rows.Close()

	var records []*models.FeedRecord
	for rows.Next() {
		var r models.FeedRecord
		var createdAt int64
		err := rows.Scan(
			&r.ID,
			&r.QueryText,
			&r.TopicCount,
			&r.TotalArticles,
			&r.HighSeverityCount,
			&r.TopTopicID,
			&r.MeanSentiment,
			&r.APICalls,
			&r.LatencyMS,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feed record: %w", err)
		}
		r.CreatedAt = time.Unix(createdAt, 0)
		records = append(records, &r)
	}

	return records, rows.Err()
}

func (c *Client) GetTopicResults(feedID string) ([]*models.TopicResult, error) {
	rows, err := c.db.Query(`
		SELECT id, feed_id, topic_id, article_count
		FROM feed_topics
		WHERE feed_id = ?
		ORDER BY id`,
		feedID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query topic results: %w", err)
	}
	defer rows.Close()

	var results []*models.TopicResult
	for rows.Next() {
		var r models.TopicResult
		if err := rows.Scan(&r.ID, &r.FeedID, &r.TopicID, &r.ArticleCount); err != nil {
			return nil, fmt.Errorf("failed to scan topic result: %w", err)
		}
		results = append(results, &r)
	}

	return results, rows.Err()
}
