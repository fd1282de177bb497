package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

const schemeColumns = `scheme_id, scheme_name, description_raw, source_url,
	eligibility_structured, eligibility_raw, last_updated, embedding`

func (s *PostgresStore) GetScheme(ctx context.Context, id string) (*Scheme, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+schemeColumns+`
		FROM schemes WHERE scheme_id = $1`, id)

	sc, err := scanScheme(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sc, nil
}

func (s *PostgresStore) ListSchemes(ctx context.Context) ([]*Scheme, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+schemeColumns+`
		FROM schemes ORDER BY scheme_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schemes []*Scheme
	for rows.Next() {
		sc, err := scanScheme(rows)
		if err != nil {
			return nil, err
		}
		schemes = append(schemes, sc)
	}
	return schemes, rows.Err()
}

func (s *PostgresStore) UpsertScheme(ctx context.Context, sc *Scheme) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO schemes (scheme_id, scheme_name, description_raw, source_url,
			eligibility_structured, eligibility_raw, last_updated, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (scheme_id) DO UPDATE SET
			scheme_name = EXCLUDED.scheme_name,
			description_raw = EXCLUDED.description_raw,
			source_url = EXCLUDED.source_url,
			eligibility_structured = EXCLUDED.eligibility_structured,
			eligibility_raw = EXCLUDED.eligibility_raw,
			last_updated = EXCLUDED.last_updated,
			embedding = EXCLUDED.embedding`,
		sc.SchemeID, sc.SchemeName, sc.DescriptionRaw, sc.SourceURL,
		sc.Eligibility, sc.EligibilityRaw, sc.LastUpdated, sc.Embedding,
	)
	return err
}

func (s *PostgresStore) CountSchemes(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM schemes`).Scan(&n)
	return n, err
}

func scanScheme(row pgx.Row) (*Scheme, error) {
	sc := &Scheme{}
	err := row.Scan(
		&sc.SchemeID, &sc.SchemeName, &sc.DescriptionRaw, &sc.SourceURL,
		&sc.Eligibility, &sc.EligibilityRaw, &sc.LastUpdated, &sc.Embedding,
	)
	if err != nil {
		return nil, err
	}
	return sc, nil
}
