package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amishk599/jobscout/internal/model"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS search_queries (
	id               BIGSERIAL PRIMARY KEY,
	keywords         TEXT NOT NULL,
	location         TEXT NOT NULL,
	job_type         TEXT,
	experience_level TEXT,
	remote_ok        BOOLEAN NOT NULL DEFAULT FALSE,
	max_results      INTEGER NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS summaries (
	id                TEXT PRIMARY KEY,
	salary_range      TEXT NOT NULL,
	job_type          TEXT NOT NULL,
	experience_level  TEXT NOT NULL,
	standout_features TEXT NOT NULL,
	qualifications    TEXT NOT NULL,
	posting_id        BIGINT,
	created_at        TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS postings (
	id               BIGSERIAL PRIMARY KEY,
	title            TEXT NOT NULL,
	company          TEXT NOT NULL,
	location         TEXT NOT NULL DEFAULT '',
	description      TEXT NOT NULL DEFAULT '',
	url              TEXT NOT NULL DEFAULT '',
	posted_date      TEXT NOT NULL DEFAULT '',
	source           TEXT NOT NULL DEFAULT '',
	salary_range     TEXT NOT NULL DEFAULT '',
	job_type         TEXT,
	experience_level TEXT,
	title_key        TEXT NOT NULL,
	company_key      TEXT NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL,
	summary_id       TEXT,
	search_query_id  BIGINT
);

CREATE UNIQUE INDEX IF NOT EXISTS postings_identity ON postings (title_key, company_key);
CREATE INDEX IF NOT EXISTS postings_pending ON postings (id) WHERE summary_id IS NULL;

CREATE TABLE IF NOT EXISTS company_profiles (
	id                 BIGSERIAL PRIMARY KEY,
	name               TEXT NOT NULL,
	name_key           TEXT NOT NULL UNIQUE,
	overview           TEXT NOT NULL,
	products_services  TEXT NOT NULL,
	size_locations     TEXT NOT NULL,
	culture            TEXT NOT NULL,
	recent_news        TEXT NOT NULL,
	applicant_appeal   TEXT NOT NULL,
	potential_concerns TEXT NOT NULL,
	created_at         TIMESTAMPTZ NOT NULL
);
`

const postgresPostingColumns = `id, title, company, location, description, url, posted_date, source,
	salary_range, job_type, experience_level, created_at, summary_id, search_query_id`

// unique_violation
const pgUniqueViolation = "23505"

// PostgresStore persists postings, summaries and search runs in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
	opts options
}

// NewPostgresStore connects to databaseURL, verifies connectivity and
// ensures the schema exists.
func NewPostgresStore(ctx context.Context, databaseURL string, opts ...Option) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &PostgresStore{pool: pool, opts: buildOptions(opts)}, nil
}

func (s *PostgresStore) Add(ctx context.Context, p model.Posting) (model.Posting, error) {
	key := p.Identity()
	createdAt := s.opts.timestamp()

	var queryID *int64
	if p.SearchQueryID != 0 {
		queryID = &p.SearchQueryID
	}

	err := s.pool.QueryRow(ctx,
		`INSERT INTO postings (title, company, location, description, url, posted_date, source,
			salary_range, job_type, experience_level, title_key, company_key, created_at, search_query_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id`,
		p.Title, p.Company, p.Location, p.Description, p.URL, p.PostedDate, p.Source,
		p.SalaryRange, nullableEnum(p.JobType), nullableEnum(p.ExperienceLevel),
		key.Title, key.Company, createdAt, queryID,
	).Scan(&p.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return model.Posting{}, fmt.Errorf("adding %q at %q: %w", p.Title, p.Company, model.ErrDuplicateIdentity)
		}
		return model.Posting{}, fmt.Errorf("adding %q at %q: %w", p.Title, p.Company, err)
	}

	p.CreatedAt = createdAt
	p.SummaryID = ""
	return p, nil
}

func (s *PostgresStore) GetByIdentity(ctx context.Context, title, company string) (model.Posting, error) {
	key := model.Identity(title, company)
	row := s.pool.QueryRow(ctx,
		`SELECT `+postgresPostingColumns+` FROM postings WHERE title_key = $1 AND company_key = $2`,
		key.Title, key.Company,
	)
	p, err := scanPostgresPosting(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Posting{}, model.ErrNotFound
	}
	if err != nil {
		return model.Posting{}, fmt.Errorf("looking up %q at %q: %w", title, company, err)
	}
	return p, nil
}

func (s *PostgresStore) GetPosting(ctx context.Context, id int64) (model.Posting, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+postgresPostingColumns+` FROM postings WHERE id = $1`, id)
	p, err := scanPostgresPosting(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Posting{}, model.ErrNotFound
	}
	if err != nil {
		return model.Posting{}, fmt.Errorf("getting posting %d: %w", id, err)
	}
	return p, nil
}

func (s *PostgresStore) FindPendingEnrichment(ctx context.Context) ([]model.Posting, error) {
	return s.queryPostings(ctx, `SELECT `+postgresPostingColumns+` FROM postings WHERE summary_id IS NULL ORDER BY id`)
}

func (s *PostgresStore) ListPostings(ctx context.Context) ([]model.Posting, error) {
	return s.queryPostings(ctx, `SELECT `+postgresPostingColumns+` FROM postings ORDER BY id`)
}

func (s *PostgresStore) queryPostings(ctx context.Context, query string, args ...any) ([]model.Posting, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying postings: %w", err)
	}
	defer rows.Close()

	var postings []model.Posting
	for rows.Next() {
		p, err := scanPostgresPosting(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning posting: %w", err)
		}
		postings = append(postings, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating postings: %w", err)
	}
	return postings, nil
}

func (s *PostgresStore) LinkSummary(ctx context.Context, postingID int64, sum model.Summary) (model.Posting, error) {
	if sum.ID == "" {
		return model.Posting{}, errors.New("linking summary: id is required")
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE postings SET summary_id = $1 WHERE id = $2 AND summary_id IS NULL`,
		sum.ID, postingID,
	)
	if err != nil {
		return model.Posting{}, fmt.Errorf("linking summary to posting %d: %w", postingID, err)
	}

	p, err := s.GetPosting(ctx, postingID)
	if err != nil {
		return model.Posting{}, err
	}
	if tag.RowsAffected() == 0 {
		return p, fmt.Errorf("posting %d: %w", postingID, model.ErrAlreadyEnriched)
	}
	return p, nil
}

func (s *PostgresStore) CreateSummary(ctx context.Context, sum model.Summary) (model.Summary, error) {
	if sum.ID == "" {
		return model.Summary{}, errors.New("creating summary: id is required")
	}
	sum.CreatedAt = s.opts.timestamp()

	var postingID *int64
	if sum.PostingID != 0 {
		postingID = &sum.PostingID
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO summaries (id, salary_range, job_type, experience_level, standout_features,
			qualifications, posting_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		sum.ID, sum.SalaryRange, string(sum.JobType), string(sum.ExperienceLevel),
		sum.StandoutFeatures, sum.Qualifications, postingID, sum.CreatedAt,
	)
	if err != nil {
		return model.Summary{}, fmt.Errorf("creating summary %s: %w", sum.ID, err)
	}
	return sum, nil
}

func (s *PostgresStore) GetSummary(ctx context.Context, id string) (model.Summary, error) {
	var (
		sum       model.Summary
		jobType   string
		level     string
		postingID *int64
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, salary_range, job_type, experience_level, standout_features, qualifications,
			posting_id, created_at
		FROM summaries WHERE id = $1`, id,
	).Scan(&sum.ID, &sum.SalaryRange, &jobType, &level, &sum.StandoutFeatures, &sum.Qualifications,
		&postingID, &sum.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Summary{}, model.ErrNotFound
	}
	if err != nil {
		return model.Summary{}, fmt.Errorf("getting summary %s: %w", id, err)
	}

	sum.JobType = model.JobType(jobType)
	sum.ExperienceLevel = model.ExperienceLevel(level)
	if postingID != nil {
		sum.PostingID = *postingID
	}
	sum.CreatedAt = sum.CreatedAt.UTC()
	return sum, nil
}

func (s *PostgresStore) DeleteSummary(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM summaries WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting summary %s: %w", id, err)
	}
	return nil
}

func (s *PostgresStore) RecordQuery(ctx context.Context, q model.SearchQuery) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO search_queries (keywords, location, job_type, experience_level, remote_ok, max_results, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		q.Keywords, q.Location, nullableEnum(q.JobType), nullableEnum(q.ExperienceLevel),
		q.RemoteOK, q.MaxResults, s.opts.timestamp(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("recording query %q: %w", q.Keywords, err)
	}
	return id, nil
}

func (s *PostgresStore) GetCompanyProfile(ctx context.Context, name string) (model.CompanyProfile, error) {
	var p model.CompanyProfile
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, overview, products_services, size_locations, culture, recent_news,
			applicant_appeal, potential_concerns, created_at
		FROM company_profiles WHERE name_key = $1`, model.CompanyKey(name),
	).Scan(&p.ID, &p.Name, &p.Overview, &p.ProductsServices, &p.SizeLocations, &p.Culture,
		&p.RecentNews, &p.ApplicantAppeal, &p.PotentialConcerns, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.CompanyProfile{}, model.ErrNotFound
	}
	if err != nil {
		return model.CompanyProfile{}, fmt.Errorf("getting profile for %q: %w", name, err)
	}
	p.CreatedAt = p.CreatedAt.UTC()
	return p, nil
}

func (s *PostgresStore) SaveCompanyProfile(ctx context.Context, p model.CompanyProfile) (model.CompanyProfile, error) {
	key := model.CompanyKey(p.Name)
	if key == "" {
		return model.CompanyProfile{}, errors.New("saving company profile: name is required")
	}
	createdAt := s.opts.timestamp()

	err := s.pool.QueryRow(ctx,
		`INSERT INTO company_profiles (name, name_key, overview, products_services, size_locations,
			culture, recent_news, applicant_appeal, potential_concerns, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		p.Name, key, p.Overview, p.ProductsServices, p.SizeLocations, p.Culture,
		p.RecentNews, p.ApplicantAppeal, p.PotentialConcerns, createdAt,
	).Scan(&p.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return model.CompanyProfile{}, fmt.Errorf("saving profile for %q: %w", p.Name, model.ErrDuplicateIdentity)
		}
		return model.CompanyProfile{}, fmt.Errorf("saving profile for %q: %w", p.Name, err)
	}
	p.CreatedAt = createdAt
	return p, nil
}

// Close releases every pooled connection.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func scanPostgresPosting(row pgx.Row) (model.Posting, error) {
	var (
		p         model.Posting
		jobType   *string
		level     *string
		createdAt time.Time
		summaryID *string
		queryID   *int64
	)
	err := row.Scan(&p.ID, &p.Title, &p.Company, &p.Location, &p.Description, &p.URL, &p.PostedDate,
		&p.Source, &p.SalaryRange, &jobType, &level, &createdAt, &summaryID, &queryID)
	if err != nil {
		return model.Posting{}, err
	}

	p.JobType = enumPtr[model.JobType](jobType)
	p.ExperienceLevel = enumPtr[model.ExperienceLevel](level)
	p.CreatedAt = createdAt.UTC()
	if summaryID != nil {
		p.SummaryID = *summaryID
	}
	if queryID != nil {
		p.SearchQueryID = *queryID
	}
	return p, nil
}
