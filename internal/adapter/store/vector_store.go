package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"

	"semvec/internal/domain"
	"semvec/internal/port"
)

func init() {
	sqlite_vec.Auto()
}

// Compile-time interface check.
var _ port.VectorStore = (*SQLiteVectorStore)(nil)

// SQLiteVectorStore persists items in SQLite and ranks them with the
// sqlite-vec distance functions. Embeddings are stored as float32 blobs.
type SQLiteVectorStore struct {
	db        *sql.DB
	dimension int
}

// NewSQLiteVectorStore opens (or creates) a SQLite database at dbPath. The
// dimension is fixed for the lifetime of the schema; reopening an existing
// store with a different dimension fails at EnsureSchema.
func NewSQLiteVectorStore(dbPath string, dimension int) (*SQLiteVectorStore, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("invalid embedding dimension: %d", dimension)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	return &SQLiteVectorStore{db: db, dimension: dimension}, nil
}

// EnsureSchema idempotently creates the items table and pins the embedding
// dimension. Safe to call repeatedly.
func (s *SQLiteVectorStore) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS items (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	text      TEXT NOT NULL,
	embedding BLOB NOT NULL
);

CREATE TABLE IF NOT EXISTS schema_info (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("creating items table: %w", err)
	}

	var stored string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM schema_info WHERE key = 'dimension'`).Scan(&stored)
	switch {
	case err == sql.ErrNoRows:
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO schema_info(key, value) VALUES ('dimension', ?)`,
			strconv.Itoa(s.dimension))
		if err != nil {
			return fmt.Errorf("recording schema dimension: %w", err)
		}
	case err != nil:
		return fmt.Errorf("reading schema dimension: %w", err)
	default:
		if stored != strconv.Itoa(s.dimension) {
			return fmt.Errorf("store has dimension %s, configured %d", stored, s.dimension)
		}
	}

	return nil
}

// InsertMany appends all pairs as new items in a single transaction. A
// dimension mismatch on any row aborts the whole batch.
func (s *SQLiteVectorStore) InsertMany(ctx context.Context, texts []string, vectors [][]float32) (int, error) {
	if len(texts) != len(vectors) {
		return 0, fmt.Errorf("texts/vectors length mismatch: %d vs %d", len(texts), len(vectors))
	}
	if len(texts) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO items(text, embedding) VALUES (?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i := range texts {
		if len(vectors[i]) != s.dimension {
			return 0, fmt.Errorf("row %d: vector dimension mismatch: expected %d, got %d", i, s.dimension, len(vectors[i]))
		}

		blob, err := sqlite_vec.SerializeFloat32(vectors[i])
		if err != nil {
			return 0, fmt.Errorf("row %d: serializing embedding: %w", i, err)
		}

		if _, err := stmt.ExecContext(ctx, texts[i], blob); err != nil {
			return 0, fmt.Errorf("row %d: inserting item: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing insert: %w", err)
	}
	return len(texts), nil
}

// QueryNearest returns at most k items ordered ascending by distance under
// the given metric. Ties are broken by ascending item id so the ordering is
// deterministic.
func (s *SQLiteVectorStore) QueryNearest(ctx context.Context, query []float32, metric domain.Metric, k int) ([]domain.RankedResult, error) {
	if len(query) != s.dimension {
		return nil, fmt.Errorf("query dimension mismatch: expected %d, got %d", s.dimension, len(query))
	}
	if k <= 0 {
		return nil, nil
	}

	var distanceFn string
	switch metric {
	case domain.MetricEuclidean:
		distanceFn = "vec_distance_l2"
	case domain.MetricCosine:
		distanceFn = "vec_distance_cosine"
	default:
		return nil, fmt.Errorf("unsupported metric: %s", metric)
	}

	blob, err := sqlite_vec.SerializeFloat32(query)
	if err != nil {
		return nil, fmt.Errorf("serializing query vector: %w", err)
	}

	q := fmt.Sprintf(
		`SELECT id, text, %s(embedding, ?) AS distance FROM items ORDER BY distance ASC, id ASC LIMIT ?`,
		distanceFn,
	)

	rows, err := s.db.QueryContext(ctx, q, blob, k)
	if err != nil {
		return nil, fmt.Errorf("querying nearest items: %w", err)
	}
	defer rows.Close()

	var results []domain.RankedResult
	for rows.Next() {
		var r domain.RankedResult
		if err := rows.Scan(&r.ItemID, &r.Text, &r.Distance); err != nil {
			return nil, fmt.Errorf("scanning result row: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating result rows: %w", err)
	}

	return results, nil
}

// Count returns the number of stored items.
func (s *SQLiteVectorStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting items: %w", err)
	}
	return n, nil
}

// Close closes the underlying database connection.
func (s *SQLiteVectorStore) Close() error {
	return s.db.Close()
}
