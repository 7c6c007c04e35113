package vectorindex

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// PGVectorStore keeps records in a Postgres table with a pgvector column and
// JSONB metadata. The table name is the index name.
type PGVectorStore struct {
	pool      *pgxpool.Pool
	name      string
	table     string
	dimension int
}

// NewPGVectorStore connects to connString. A non-empty password overrides
// the one in the connection string so the secret can be supplied separately.
func NewPGVectorStore(ctx context.Context, connString, password, indexName string, dimension int) (*PGVectorStore, error) {
	poolCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse vector index URL: %w", err)
	}
	if password != "" {
		poolCfg.ConnConfig.Password = password
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to vector index: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping vector index: %w", err)
	}

	s := &PGVectorStore{
		pool:      pool,
		name:      indexName,
		table:     pgx.Identifier{indexName}.Sanitize(),
		dimension: dimension,
	}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

func (s *PGVectorStore) Close() {
	s.pool.Close()
}

func (s *PGVectorStore) ensureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements(s.name, s.dimension) {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to prepare vector index schema: %w", err)
		}
	}
	return nil
}

// schemaStatements builds the DDL for an index. Identifiers are quoted from
// the raw name so each is escaped exactly once.
func schemaStatements(name string, dimension int) []string {
	table := pgx.Identifier{name}.Sanitize()
	return []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id         TEXT PRIMARY KEY,
			content    TEXT NOT NULL,
			metadata   JSONB NOT NULL DEFAULT '{}'::jsonb,
			embedding  vector(%d) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, table, dimension),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s USING GIN (metadata jsonb_path_ops)`,
			pgx.Identifier{name + "_metadata_idx"}.Sanitize(), table),
	}
}

// Upsert writes all records in one transaction.
func (s *PGVectorStore) Upsert(ctx context.Context, records []Record) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, content, metadata, embedding)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET content = EXCLUDED.content, metadata = EXCLUDED.metadata, embedding = EXCLUDED.embedding
	`, s.table)

	batch := &pgx.Batch{}
	for _, r := range records {
		if len(r.Vector) != s.dimension {
			return fmt.Errorf("vector dimension %d does not match index dimension %d", len(r.Vector), s.dimension)
		}
		metadata, err := json.Marshal(r.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode metadata: %w", err)
		}
		batch.Queue(query, r.ID, r.Text, metadata, pgvector.NewVector(r.Vector))
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to upsert vectors: %w", err)
	}

	return tx.Commit(ctx)
}

// Query orders by cosine distance, nearest first.
func (s *PGVectorStore) Query(ctx context.Context, vector []float32, k int, filter Filter) ([]Record, error) {
	filterJSON, err := json.Marshal(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to encode filter: %w", err)
	}
	if filter == nil {
		filterJSON = []byte(`{}`)
	}

	query := fmt.Sprintf(`
		SELECT id, content, metadata, 1 - (embedding <=> $1) AS score
		FROM %s
		WHERE metadata @> $2::jsonb
		ORDER BY embedding <=> $1
		LIMIT $3
	`, s.table)

	rows, err := s.pool.Query(ctx, query, pgvector.NewVector(vector), string(filterJSON), k)
	if err != nil {
		return nil, fmt.Errorf("failed to search vectors: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var metadata []byte
		if err := rows.Scan(&r.ID, &r.Text, &metadata, &r.Score); err != nil {
			return nil, fmt.Errorf("failed to scan vector row: %w", err)
		}
		if err := json.Unmarshal(metadata, &r.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode metadata: %w", err)
		}
		records = append(records, r)
	}

	return records, rows.Err()
}
