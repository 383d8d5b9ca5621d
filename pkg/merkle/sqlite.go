package merkle

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStorer implements Storer using SQLite as the storage backend.
type SQLiteStorer struct {
	db *sql.DB
}

// NewSQLiteStorer creates a new SQLite-backed storer.
// The dbPath can be a file path or ":memory:" for an in-memory database.
func NewSQLiteStorer(dbPath string) (*SQLiteStorer, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to ":memory:" is a fresh database.
	db.SetMaxOpenConns(1)

	s := &SQLiteStorer{db: db}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

// migrate creates the necessary tables if they don't exist.
func (s *SQLiteStorer) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS transcript_nodes (
		hash TEXT PRIMARY KEY,
		parent_hash TEXT,
		bucket TEXT NOT NULL,
		model TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_transcript_nodes_parent_hash ON transcript_nodes(parent_hash);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Put stores a node. If the node already exists (by hash), this is a no-op.
func (s *SQLiteStorer) Put(ctx context.Context, node *Node) error {
	if node == nil {
		return fmt.Errorf("cannot store nil node")
	}

	bucketJSON, err := json.Marshal(node.Bucket)
	if err != nil {
		return fmt.Errorf("failed to marshal bucket: %w", err)
	}

	query := `INSERT OR IGNORE INTO transcript_nodes (hash, parent_hash, bucket, model) VALUES (?, ?, ?, ?)`

	_, err = s.db.ExecContext(ctx, query, node.Hash, node.ParentHash, string(bucketJSON), node.Model)
	if err != nil {
		return fmt.Errorf("failed to insert node: %w", err)
	}

	return nil
}

// Get retrieves a node by its hash.
func (s *SQLiteStorer) Get(ctx context.Context, hash string) (*Node, error) {
	query := `SELECT hash, parent_hash, bucket, model FROM transcript_nodes WHERE hash = ?`

	node, err := scanNode(s.db.QueryRowContext(ctx, query, hash))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound{Hash: hash}
	}
	if err != nil {
		return nil, err
	}

	return node, nil
}

// Has checks if a node exists by its hash.
func (s *SQLiteStorer) Has(ctx context.Context, hash string) (bool, error) {
	query := `SELECT 1 FROM transcript_nodes WHERE hash = ? LIMIT 1`

	var exists int
	err := s.db.QueryRowContext(ctx, query, hash).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check existence: %w", err)
	}

	return true, nil
}

// GetByParent retrieves all nodes that have the given parent hash.
func (s *SQLiteStorer) GetByParent(ctx context.Context, parentHash *string) ([]*Node, error) {
	if parentHash == nil {
		return s.query(ctx, `SELECT hash, parent_hash, bucket, model FROM transcript_nodes WHERE parent_hash IS NULL ORDER BY rowid`)
	}
	return s.query(ctx, `SELECT hash, parent_hash, bucket, model FROM transcript_nodes WHERE parent_hash = ? ORDER BY rowid`, *parentHash)
}

// List returns all nodes in the store.
func (s *SQLiteStorer) List(ctx context.Context) ([]*Node, error) {
	return s.query(ctx, `SELECT hash, parent_hash, bucket, model FROM transcript_nodes ORDER BY rowid`)
}

// Roots returns all root nodes.
func (s *SQLiteStorer) Roots(ctx context.Context) ([]*Node, error) {
	return s.GetByParent(ctx, nil)
}

// Leaves returns all nodes without children.
func (s *SQLiteStorer) Leaves(ctx context.Context) ([]*Node, error) {
	return s.query(ctx, `
		SELECT n.hash, n.parent_hash, n.bucket, n.model FROM transcript_nodes n
		WHERE NOT EXISTS (SELECT 1 FROM transcript_nodes c WHERE c.parent_hash = n.hash)
		ORDER BY n.rowid`)
}

// Ancestry returns the path from a node back to its root.
func (s *SQLiteStorer) Ancestry(ctx context.Context, hash string) ([]*Node, error) {
	return ancestry(ctx, hash, s.Get)
}

// Descendants returns the path from the root down to the node.
func (s *SQLiteStorer) Descendants(ctx context.Context, hash string) ([]*Node, error) {
	path, err := s.Ancestry(ctx, hash)
	if err != nil {
		return nil, err
	}
	return reversed(path), nil
}

// Depth returns the depth of a node (0 for roots).
func (s *SQLiteStorer) Depth(ctx context.Context, hash string) (int, error) {
	path, err := s.Ancestry(ctx, hash)
	if err != nil {
		return 0, err
	}
	return len(path) - 1, nil
}

// Close closes the database connection.
func (s *SQLiteStorer) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorer) query(ctx context.Context, query string, args ...any) ([]*Node, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query nodes: %w", err)
	}
	defer rows.Close()

	nodes := []*Node{}
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate nodes: %w", err)
	}

	return nodes, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNode(row rowScanner) (*Node, error) {
	var (
		node       Node
		parentHash sql.NullString
		bucketJSON string
	)

	if err := row.Scan(&node.Hash, &parentHash, &bucketJSON, &node.Model); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan node: %w", err)
	}

	if parentHash.Valid {
		node.ParentHash = &parentHash.String
	}

	if err := json.Unmarshal([]byte(bucketJSON), &node.Bucket); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bucket: %w", err)
	}

	return &node, nil
}
