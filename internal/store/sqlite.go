package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/amishk599/jobscout/internal/model"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS search_queries (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	keywords         TEXT NOT NULL,
	location         TEXT NOT NULL,
	job_type         TEXT,
	experience_level TEXT,
	remote_ok        INTEGER NOT NULL DEFAULT 0,
	max_results      INTEGER NOT NULL,
	created_at       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS summaries (
	id                TEXT PRIMARY KEY,
	salary_range      TEXT NOT NULL,
	job_type          TEXT NOT NULL,
	experience_level  TEXT NOT NULL,
	standout_features TEXT NOT NULL,
	qualifications    TEXT NOT NULL,
	posting_id        INTEGER,
	created_at        TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS postings (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
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
	created_at       TEXT NOT NULL,
	summary_id       TEXT,
	search_query_id  INTEGER
);

CREATE UNIQUE INDEX IF NOT EXISTS postings_identity ON postings (title_key, company_key);
CREATE INDEX IF NOT EXISTS postings_pending ON postings (id) WHERE summary_id IS NULL;

CREATE TABLE IF NOT EXISTS company_profiles (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	name               TEXT NOT NULL,
	name_key           TEXT NOT NULL UNIQUE,
	overview           TEXT NOT NULL,
	products_services  TEXT NOT NULL,
	size_locations     TEXT NOT NULL,
	culture            TEXT NOT NULL,
	recent_news        TEXT NOT NULL,
	applicant_appeal   TEXT NOT NULL,
	potential_concerns TEXT NOT NULL,
	created_at         TEXT NOT NULL
);
`

const sqlitePostingColumns = `id, title, company, location, description, url, posted_date, source,
	salary_range, job_type, experience_level, created_at, summary_id, search_query_id`

// SQLiteStore persists postings, summaries and search runs in a SQLite file.
type SQLiteStore struct {
	db   *sql.DB
	opts options
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures the
// schema exists.
func NewSQLiteStore(dbPath string, opts ...Option) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// SQLite allows a single writer; serialize through one connection.
	db.SetMaxOpenConns(1)

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLiteStore{db: db, opts: buildOptions(opts)}, nil
}

func (s *SQLiteStore) Add(ctx context.Context, p model.Posting) (model.Posting, error) {
	key := p.Identity()
	createdAt := s.opts.timestamp()

	var queryID any
	if p.SearchQueryID != 0 {
		queryID = p.SearchQueryID
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO postings (title, company, location, description, url, posted_date, source,
			salary_range, job_type, experience_level, title_key, company_key, created_at, search_query_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Title, p.Company, p.Location, p.Description, p.URL, p.PostedDate, p.Source,
		p.SalaryRange, nullableEnum(p.JobType), nullableEnum(p.ExperienceLevel),
		key.Title, key.Company, formatTime(createdAt), queryID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Posting{}, fmt.Errorf("adding %q at %q: %w", p.Title, p.Company, model.ErrDuplicateIdentity)
		}
		return model.Posting{}, fmt.Errorf("adding %q at %q: %w", p.Title, p.Company, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return model.Posting{}, fmt.Errorf("reading posting id: %w", err)
	}

	p.ID = id
	p.CreatedAt = createdAt
	p.SummaryID = ""
	return p, nil
}

func (s *SQLiteStore) GetByIdentity(ctx context.Context, title, company string) (model.Posting, error) {
	key := model.Identity(title, company)
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sqlitePostingColumns+` FROM postings WHERE title_key = ? AND company_key = ?`,
		key.Title, key.Company,
	)
	p, err := scanSQLitePosting(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Posting{}, model.ErrNotFound
	}
	if err != nil {
		return model.Posting{}, fmt.Errorf("looking up %q at %q: %w", title, company, err)
	}
	return p, nil
}

func (s *SQLiteStore) GetPosting(ctx context.Context, id int64) (model.Posting, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sqlitePostingColumns+` FROM postings WHERE id = ?`, id)
	p, err := scanSQLitePosting(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Posting{}, model.ErrNotFound
	}
	if err != nil {
		return model.Posting{}, fmt.Errorf("getting posting %d: %w", id, err)
	}
	return p, nil
}

func (s *SQLiteStore) FindPendingEnrichment(ctx context.Context) ([]model.Posting, error) {
	return s.queryPostings(ctx, `SELECT `+sqlitePostingColumns+` FROM postings WHERE summary_id IS NULL ORDER BY id`)
}

func (s *SQLiteStore) ListPostings(ctx context.Context) ([]model.Posting, error) {
	return s.queryPostings(ctx, `SELECT `+sqlitePostingColumns+` FROM postings ORDER BY id`)
}

func (s *SQLiteStore) queryPostings(ctx context.Context, query string, args ...any) ([]model.Posting, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying postings: %w", err)
	}
	defer rows.Close()

	var postings []model.Posting
	for rows.Next() {
		p, err := scanSQLitePosting(rows)
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

// LinkSummary sets summary_id only while it is still NULL, so concurrent
// enrichment passes cannot both succeed.
func (s *SQLiteStore) LinkSummary(ctx context.Context, postingID int64, sum model.Summary) (model.Posting, error) {
	if sum.ID == "" {
		return model.Posting{}, errors.New("linking summary: id is required")
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE postings SET summary_id = ? WHERE id = ? AND summary_id IS NULL`,
		sum.ID, postingID,
	)
	if err != nil {
		return model.Posting{}, fmt.Errorf("linking summary to posting %d: %w", postingID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Posting{}, fmt.Errorf("linking summary to posting %d: %w", postingID, err)
	}

	p, err := s.GetPosting(ctx, postingID)
	if err != nil {
		return model.Posting{}, err
	}
	if n == 0 {
		return p, fmt.Errorf("posting %d: %w", postingID, model.ErrAlreadyEnriched)
	}
	return p, nil
}

func (s *SQLiteStore) CreateSummary(ctx context.Context, sum model.Summary) (model.Summary, error) {
	if sum.ID == "" {
		return model.Summary{}, errors.New("creating summary: id is required")
	}
	sum.CreatedAt = s.opts.timestamp()

	var postingID any
	if sum.PostingID != 0 {
		postingID = sum.PostingID
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO summaries (id, salary_range, job_type, experience_level, standout_features,
			qualifications, posting_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sum.ID, sum.SalaryRange, string(sum.JobType), string(sum.ExperienceLevel),
		sum.StandoutFeatures, sum.Qualifications, postingID, formatTime(sum.CreatedAt),
	)
	if err != nil {
		return model.Summary{}, fmt.Errorf("creating summary %s: %w", sum.ID, err)
	}
	return sum, nil
}

func (s *SQLiteStore) GetSummary(ctx context.Context, id string) (model.Summary, error) {
	var (
		sum       model.Summary
		jobType   string
		level     string
		postingID sql.NullInt64
		createdAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, salary_range, job_type, experience_level, standout_features, qualifications,
			posting_id, created_at
		FROM summaries WHERE id = ?`, id,
	).Scan(&sum.ID, &sum.SalaryRange, &jobType, &level, &sum.StandoutFeatures, &sum.Qualifications,
		&postingID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Summary{}, model.ErrNotFound
	}
	if err != nil {
		return model.Summary{}, fmt.Errorf("getting summary %s: %w", id, err)
	}

	sum.JobType = model.JobType(jobType)
	sum.ExperienceLevel = model.ExperienceLevel(level)
	sum.PostingID = postingID.Int64
	if sum.CreatedAt, err = parseTime(createdAt); err != nil {
		return model.Summary{}, fmt.Errorf("getting summary %s: %w", id, err)
	}
	return sum, nil
}

func (s *SQLiteStore) DeleteSummary(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM summaries WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting summary %s: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) RecordQuery(ctx context.Context, q model.SearchQuery) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO search_queries (keywords, location, job_type, experience_level, remote_ok, max_results, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		q.Keywords, q.Location, nullableEnum(q.JobType), nullableEnum(q.ExperienceLevel),
		q.RemoteOK, q.MaxResults, formatTime(s.opts.timestamp()),
	)
	if err != nil {
		return 0, fmt.Errorf("recording query %q: %w", q.Keywords, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading query id: %w", err)
	}
	return id, nil
}

func (s *SQLiteStore) GetCompanyProfile(ctx context.Context, name string) (model.CompanyProfile, error) {
	var (
		p         model.CompanyProfile
		createdAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, overview, products_services, size_locations, culture, recent_news,
			applicant_appeal, potential_concerns, created_at
		FROM company_profiles WHERE name_key = ?`, model.CompanyKey(name),
	).Scan(&p.ID, &p.Name, &p.Overview, &p.ProductsServices, &p.SizeLocations, &p.Culture,
		&p.RecentNews, &p.ApplicantAppeal, &p.PotentialConcerns, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.CompanyProfile{}, model.ErrNotFound
	}
	if err != nil {
		return model.CompanyProfile{}, fmt.Errorf("getting profile for %q: %w", name, err)
	}
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return model.CompanyProfile{}, fmt.Errorf("getting profile for %q: %w", name, err)
	}
	return p, nil
}

func (s *SQLiteStore) SaveCompanyProfile(ctx context.Context, p model.CompanyProfile) (model.CompanyProfile, error) {
	key := model.CompanyKey(p.Name)
	if key == "" {
		return model.CompanyProfile{}, errors.New("saving company profile: name is required")
	}
	createdAt := s.opts.timestamp()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO company_profiles (name, name_key, overview, products_services, size_locations,
			culture, recent_news, applicant_appeal, potential_concerns, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Name, key, p.Overview, p.ProductsServices, p.SizeLocations, p.Culture,
		p.RecentNews, p.ApplicantAppeal, p.PotentialConcerns, formatTime(createdAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.CompanyProfile{}, fmt.Errorf("saving profile for %q: %w", p.Name, model.ErrDuplicateIdentity)
		}
		return model.CompanyProfile{}, fmt.Errorf("saving profile for %q: %w", p.Name, err)
	}
	if p.ID, err = res.LastInsertId(); err != nil {
		return model.CompanyProfile{}, fmt.Errorf("reading profile id: %w", err)
	}
	p.CreatedAt = createdAt
	return p, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLitePosting(row rowScanner) (model.Posting, error) {
	var (
		p         model.Posting
		jobType   sql.NullString
		level     sql.NullString
		createdAt string
		summaryID sql.NullString
		queryID   sql.NullInt64
	)
	err := row.Scan(&p.ID, &p.Title, &p.Company, &p.Location, &p.Description, &p.URL, &p.PostedDate,
		&p.Source, &p.SalaryRange, &jobType, &level, &createdAt, &summaryID, &queryID)
	if err != nil {
		return model.Posting{}, err
	}

	p.JobType = enumPtr[model.JobType](nullString(jobType))
	p.ExperienceLevel = enumPtr[model.ExperienceLevel](nullString(level))
	p.SummaryID = summaryID.String
	p.SearchQueryID = queryID.Int64
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return model.Posting{}, err
	}
	return p, nil
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		code := se.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			(code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(se.Error(), "UNIQUE"))
	}
	return false
}
