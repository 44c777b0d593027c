package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"snaplist/internal/vision"
)

// ListingRecord is one row of the listing history audit table.
type ListingRecord struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Price       string    `json:"price"`
	Method      string    `json:"method"`
	Confidence  float64   `json:"confidence"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Store persists generated listings for audit and caches vision results.
type Store interface {
	SaveListing(rec *ListingRecord) error
	RecentListings(limit int) ([]ListingRecord, error)

	// Vision cache methods. GetVisionCache returns nil, nil on a miss.
	GetVisionCache(imageHash string) (*vision.Analysis, error)
	SetVisionCache(imageHash string, analysis *vision.Analysis) error

	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens (or creates) the SQLite database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.init(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) init() error {
	listingsQuery := `
	CREATE TABLE IF NOT EXISTS listings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL,
		price TEXT NOT NULL,
		method TEXT NOT NULL,
		confidence REAL NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := s.db.Exec(listingsQuery); err != nil {
		return fmt.Errorf("failed to create listings table: %w", err)
	}

	cacheQuery := `
	CREATE TABLE IF NOT EXISTS vision_cache (
		image_hash TEXT PRIMARY KEY,
		analysis TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := s.db.Exec(cacheQuery); err != nil {
		return fmt.Errorf("failed to create vision_cache table: %w", err)
	}

	return nil
}

// SaveListing appends a listing to the history table.
func (s *SQLiteStore) SaveListing(rec *ListingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO listings (title, description, category, price, method, confidence)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Title, rec.Description, rec.Category, rec.Price, rec.Method, rec.Confidence,
	)
	if err != nil {
		return fmt.Errorf("failed to save listing: %w", err)
	}
	return nil
}

// RecentListings returns up to limit most recent listings, newest first.
func (s *SQLiteStore) RecentListings(limit int) ([]ListingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT id, title, description, category, price, method, confidence, created_at
		 FROM listings ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query listings: %w", err)
	}
	defer rows.Close()

	var records []ListingRecord
	for rows.Next() {
		var rec ListingRecord
		if err := rows.Scan(
			&rec.ID, &rec.Title, &rec.Description, &rec.Category,
			&rec.Price, &rec.Method, &rec.Confidence, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan listing row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetVisionCache returns the cached analysis for an image hash, or nil, nil
// if there is no entry.
func (s *SQLiteStore) GetVisionCache(imageHash string) (*vision.Analysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var data string
	err := s.db.QueryRow(
		"SELECT analysis FROM vision_cache WHERE image_hash = ?", imageHash,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query vision cache: %w", err)
	}

	var analysis vision.Analysis
	if err := json.Unmarshal([]byte(data), &analysis); err != nil {
		return nil, fmt.Errorf("failed to decode cached analysis: %w", err)
	}
	return &analysis, nil
}

// SetVisionCache stores the analysis for an image hash, replacing any
// existing entry.
func (s *SQLiteStore) SetVisionCache(imageHash string, analysis *vision.Analysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("failed to encode analysis: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO vision_cache (image_hash, analysis) VALUES (?, ?)
		 ON CONFLICT(image_hash) DO UPDATE SET analysis = excluded.analysis`,
		imageHash, string(data),
	)
	if err != nil {
		return fmt.Errorf("failed to store vision cache entry: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
