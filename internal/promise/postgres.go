package promise

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/biotrust-cli/internal/db"
	"github.com/sells-group/biotrust-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool; used by tests with pgxmock.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS promises (
	id                  TEXT PRIMARY KEY,
	company             TEXT NOT NULL,
	executive_name      TEXT NOT NULL,
	executive_title     TEXT NOT NULL DEFAULT '',
	text                TEXT NOT NULL,
	type                TEXT NOT NULL,
	date_made           TIMESTAMPTZ NOT NULL,
	deadline            TIMESTAMPTZ,
	source              TEXT NOT NULL DEFAULT '',
	confidence_language TEXT NOT NULL DEFAULT 'neutral',
	metrics             JSONB NOT NULL DEFAULT '{}',
	status              TEXT NOT NULL DEFAULT 'pending',
	outcome_date        TIMESTAMPTZ,
	outcome_details     TEXT,
	delay_days          INTEGER,
	credibility_impact  DOUBLE PRECISION,
	created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at          TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS executive_credibility (
	executive_id   TEXT PRIMARY KEY,
	executive_name TEXT NOT NULL,
	company        TEXT NOT NULL,
	data           JSONB NOT NULL,
	last_updated   TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS company_credibility (
	company      TEXT PRIMARY KEY,
	data         JSONB NOT NULL,
	last_updated TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_promises_company ON promises(company);
CREATE INDEX IF NOT EXISTS idx_promises_executive ON promises(executive_name);
CREATE INDEX IF NOT EXISTS idx_promises_status ON promises(status);
CREATE INDEX IF NOT EXISTS idx_promises_deadline ON promises(deadline);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

const pgPromiseColumns = `id, company, executive_name, executive_title, text, type, date_made,
	deadline, source, confidence_language, metrics, status, outcome_date, outcome_details,
	delay_days, credibility_impact, created_at, updated_at`

func (s *PostgresStore) SavePromise(ctx context.Context, p model.Promise) error {
	metricsJSON, err := json.Marshal(p.Metrics)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal metrics")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO promises (`+pgPromiseColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		 ON CONFLICT (id) DO UPDATE SET
		   status = EXCLUDED.status,
		   outcome_date = EXCLUDED.outcome_date,
		   outcome_details = EXCLUDED.outcome_details,
		   delay_days = EXCLUDED.delay_days,
		   credibility_impact = EXCLUDED.credibility_impact,
		   updated_at = EXCLUDED.updated_at`,
		p.ID, p.Company, p.ExecutiveName, p.ExecutiveTitle, p.Text, string(p.Type), p.DateMade,
		p.Deadline, p.Source, string(p.ConfidenceLanguage), metricsJSON,
		string(p.Status), p.OutcomeDate, p.OutcomeDetails,
		p.DelayDays, p.CredibilityImpact, p.CreatedAt, p.UpdatedAt,
	)
	return eris.Wrapf(err, "postgres: save promise %s", p.ID)
}

func (s *PostgresStore) GetPromise(ctx context.Context, id string) (*model.Promise, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+pgPromiseColumns+` FROM promises WHERE id = $1`, id)
	p, err := scanPGPromise(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.New("promise not found")
		}
		return nil, err
	}
	return p, nil
}

// ListByExecutive matches the company filter as a substring so that
// name variants ("Acme Bio", "Acme Bio Inc") resolve to one history.
func (s *PostgresStore) ListByExecutive(ctx context.Context, executiveName, company string) ([]model.Promise, error) {
	query := `SELECT ` + pgPromiseColumns + ` FROM promises WHERE executive_name = $1`
	args := []any{executiveName}
	if company != "" {
		query += ` AND company ILIKE '%' || $2 || '%'`
		args = append(args, company)
	}
	query += ` ORDER BY date_made DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list promises for %s", executiveName)
	}
	return collectPGPromises(rows)
}

func (s *PostgresStore) ListByCompany(ctx context.Context, company string) ([]model.Promise, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+pgPromiseColumns+` FROM promises WHERE company = $1 ORDER BY date_made DESC`,
		company,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list promises for company %s", company)
	}
	return collectPGPromises(rows)
}

func (s *PostgresStore) DueBefore(ctx context.Context, cutoff time.Time) ([]model.Promise, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+pgPromiseColumns+` FROM promises
		 WHERE status IN ('pending', 'in_progress') AND deadline IS NOT NULL AND deadline <= $1
		 ORDER BY deadline ASC`,
		cutoff,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list due promises")
	}
	return collectPGPromises(rows)
}

func (s *PostgresStore) SearchPromises(ctx context.Context, query string) ([]model.Promise, error) {
	like := "%" + query + "%"
	rows, err := s.pool.Query(ctx,
		`SELECT `+pgPromiseColumns+` FROM promises
		 WHERE text ILIKE $1 OR company ILIKE $1 OR executive_name ILIKE $1
		 ORDER BY date_made DESC`,
		like,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: search promises %q", query)
	}
	return collectPGPromises(rows)
}

func (s *PostgresStore) SaveExecutiveCredibility(ctx context.Context, cred model.ExecutiveCredibility) error {
	data, err := json.Marshal(cred)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal executive credibility")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO executive_credibility (executive_id, executive_name, company, data, last_updated)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (executive_id) DO UPDATE SET data = EXCLUDED.data, last_updated = EXCLUDED.last_updated`,
		cred.ExecutiveID, cred.ExecutiveName, cred.Company, data, cred.LastUpdated,
	)
	return eris.Wrapf(err, "postgres: save executive credibility %s", cred.ExecutiveID)
}

func (s *PostgresStore) GetExecutiveCredibility(ctx context.Context, executiveID string) (*model.ExecutiveCredibility, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM executive_credibility WHERE executive_id = $1`, executiveID,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get executive credibility %s", executiveID)
	}
	var cred model.ExecutiveCredibility
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal executive credibility")
	}
	return &cred, nil
}

func (s *PostgresStore) SaveCompanyCredibility(ctx context.Context, cred model.CompanyCredibility) error {
	data, err := json.Marshal(cred)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal company credibility")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO company_credibility (company, data, last_updated)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (company) DO UPDATE SET data = EXCLUDED.data, last_updated = EXCLUDED.last_updated`,
		cred.Company, data, cred.LastUpdated,
	)
	return eris.Wrapf(err, "postgres: save company credibility %s", cred.Company)
}

func (s *PostgresStore) GetCompanyCredibility(ctx context.Context, company string) (*model.CompanyCredibility, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM company_credibility WHERE company = $1`, company,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get company credibility %s", company)
	}
	var cred model.CompanyCredibility
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal company credibility")
	}
	return &cred, nil
}

// helpers

func scanPGPromise(row pgx.Row) (*model.Promise, error) {
	var p model.Promise
	var typeStr, statusStr, confidenceStr string
	var metricsJSON []byte
	var outcomeDetails *string

	err := row.Scan(&p.ID, &p.Company, &p.ExecutiveName, &p.ExecutiveTitle, &p.Text,
		&typeStr, &p.DateMade, &p.Deadline, &p.Source, &confidenceStr, &metricsJSON,
		&statusStr, &p.OutcomeDate, &outcomeDetails, &p.DelayDays, &p.CredibilityImpact,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, eris.Wrap(err, "postgres: scan promise")
	}

	if p.Type, err = model.ParsePromiseType(typeStr); err != nil {
		return nil, err
	}
	if p.Status, err = model.ParsePromiseStatus(statusStr); err != nil {
		return nil, err
	}
	p.ConfidenceLanguage = model.ConfidenceLevel(confidenceStr)
	if err := json.Unmarshal(metricsJSON, &p.Metrics); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal metrics")
	}
	if outcomeDetails != nil {
		p.OutcomeDetails = *outcomeDetails
	}
	return &p, nil
}

func collectPGPromises(rows pgx.Rows) ([]model.Promise, error) {
	defer rows.Close()
	var promises []model.Promise
	for rows.Next() {
		p, err := scanPGPromise(rows)
		if err != nil {
			return nil, err
		}
		promises = append(promises, *p)
	}
	return promises, eris.Wrap(rows.Err(), "postgres: iterate promises")
}
