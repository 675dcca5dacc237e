package promise

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/biotrust-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS promises (
	id                  TEXT PRIMARY KEY,
	company             TEXT NOT NULL,
	executive_name      TEXT NOT NULL,
	executive_title     TEXT NOT NULL DEFAULT '',
	text                TEXT NOT NULL,
	type                TEXT NOT NULL,
	date_made           DATETIME NOT NULL,
	deadline            DATETIME,
	source              TEXT NOT NULL DEFAULT '',
	confidence_language TEXT NOT NULL DEFAULT 'neutral',
	metrics             TEXT NOT NULL DEFAULT '{}',
	status              TEXT NOT NULL DEFAULT 'pending',
	outcome_date        DATETIME,
	outcome_details     TEXT,
	delay_days          INTEGER,
	credibility_impact  REAL,
	created_at          DATETIME NOT NULL,
	updated_at          DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS executive_credibility (
	executive_id   TEXT PRIMARY KEY,
	executive_name TEXT NOT NULL,
	company        TEXT NOT NULL,
	data           TEXT NOT NULL,
	last_updated   DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS company_credibility (
	company      TEXT PRIMARY KEY,
	data         TEXT NOT NULL,
	last_updated DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_promises_company ON promises(company);
CREATE INDEX IF NOT EXISTS idx_promises_executive ON promises(executive_name);
CREATE INDEX IF NOT EXISTS idx_promises_status ON promises(status);
CREATE INDEX IF NOT EXISTS idx_promises_deadline ON promises(deadline);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const promiseColumns = `id, company, executive_name, executive_title, text, type, date_made,
	deadline, source, confidence_language, metrics, status, outcome_date, outcome_details,
	delay_days, credibility_impact, created_at, updated_at`

func (s *SQLiteStore) SavePromise(ctx context.Context, p model.Promise) error {
	metricsJSON, err := json.Marshal(p.Metrics)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal metrics")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO promises (`+promiseColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   status = excluded.status,
		   outcome_date = excluded.outcome_date,
		   outcome_details = excluded.outcome_details,
		   delay_days = excluded.delay_days,
		   credibility_impact = excluded.credibility_impact,
		   updated_at = excluded.updated_at`,
		p.ID, p.Company, p.ExecutiveName, p.ExecutiveTitle, p.Text, string(p.Type), p.DateMade,
		nullTime(p.Deadline), p.Source, string(p.ConfidenceLanguage), string(metricsJSON),
		string(p.Status), nullTime(p.OutcomeDate), nullString(p.OutcomeDetails),
		nullInt(p.DelayDays), nullFloat(p.CredibilityImpact), p.CreatedAt, p.UpdatedAt,
	)
	return eris.Wrapf(err, "sqlite: save promise %s", p.ID)
}

func (s *SQLiteStore) GetPromise(ctx context.Context, id string) (*model.Promise, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+promiseColumns+` FROM promises WHERE id = ?`, id)
	return scanPromise(row)
}

// ListByExecutive matches the company filter as a substring so that
// name variants ("Acme Bio", "Acme Bio Inc") resolve to one history.
func (s *SQLiteStore) ListByExecutive(ctx context.Context, executiveName, company string) ([]model.Promise, error) {
	query := `SELECT ` + promiseColumns + ` FROM promises WHERE executive_name = ?`
	args := []any{executiveName}
	if company != "" {
		query += ` AND company LIKE '%' || ? || '%'`
		args = append(args, company)
	}
	query += ` ORDER BY date_made DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list promises for %s", executiveName)
	}
	return collectPromises(rows)
}

func (s *SQLiteStore) ListByCompany(ctx context.Context, company string) ([]model.Promise, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+promiseColumns+` FROM promises WHERE company = ? ORDER BY date_made DESC`,
		company,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list promises for company %s", company)
	}
	return collectPromises(rows)
}

func (s *SQLiteStore) DueBefore(ctx context.Context, cutoff time.Time) ([]model.Promise, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+promiseColumns+` FROM promises
		 WHERE status IN ('pending', 'in_progress') AND deadline IS NOT NULL AND deadline <= ?
		 ORDER BY deadline ASC`,
		cutoff,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list due promises")
	}
	return collectPromises(rows)
}

func (s *SQLiteStore) SearchPromises(ctx context.Context, query string) ([]model.Promise, error) {
	like := "%" + query + "%"
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+promiseColumns+` FROM promises
		 WHERE text LIKE ? OR company LIKE ? OR executive_name LIKE ?
		 ORDER BY date_made DESC`,
		like, like, like,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: search promises %q", query)
	}
	return collectPromises(rows)
}

func (s *SQLiteStore) SaveExecutiveCredibility(ctx context.Context, cred model.ExecutiveCredibility) error {
	data, err := json.Marshal(cred)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal executive credibility")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO executive_credibility (executive_id, executive_name, company, data, last_updated)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (executive_id) DO UPDATE SET data = excluded.data, last_updated = excluded.last_updated`,
		cred.ExecutiveID, cred.ExecutiveName, cred.Company, string(data), cred.LastUpdated,
	)
	return eris.Wrapf(err, "sqlite: save executive credibility %s", cred.ExecutiveID)
}

func (s *SQLiteStore) GetExecutiveCredibility(ctx context.Context, executiveID string) (*model.ExecutiveCredibility, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM executive_credibility WHERE executive_id = ?`, executiveID,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get executive credibility %s", executiveID)
	}
	var cred model.ExecutiveCredibility
	if err := json.Unmarshal([]byte(data), &cred); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal executive credibility")
	}
	return &cred, nil
}

func (s *SQLiteStore) SaveCompanyCredibility(ctx context.Context, cred model.CompanyCredibility) error {
	data, err := json.Marshal(cred)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal company credibility")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO company_credibility (company, data, last_updated)
		 VALUES (?, ?, ?)
		 ON CONFLICT (company) DO UPDATE SET data = excluded.data, last_updated = excluded.last_updated`,
		cred.Company, string(data), cred.LastUpdated,
	)
	return eris.Wrapf(err, "sqlite: save company credibility %s", cred.Company)
}

func (s *SQLiteStore) GetCompanyCredibility(ctx context.Context, company string) (*model.CompanyCredibility, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM company_credibility WHERE company = ?`, company,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get company credibility %s", company)
	}
	var cred model.CompanyCredibility
	if err := json.Unmarshal([]byte(data), &cred); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal company credibility")
	}
	return &cred, nil
}

// helpers

type scannable interface {
	Scan(dest ...any) error
}

func scanPromise(row scannable) (*model.Promise, error) {
	var p model.Promise
	var typeStr, statusStr, confidenceStr, metricsJSON string
	var deadline, outcomeDate sql.NullTime
	var outcomeDetails sql.NullString
	var delayDays sql.NullInt64
	var impact sql.NullFloat64

	err := row.Scan(&p.ID, &p.Company, &p.ExecutiveName, &p.ExecutiveTitle, &p.Text,
		&typeStr, &p.DateMade, &deadline, &p.Source, &confidenceStr, &metricsJSON,
		&statusStr, &outcomeDate, &outcomeDetails, &delayDays, &impact,
		&p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.New("promise not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan promise")
	}

	if p.Type, err = model.ParsePromiseType(typeStr); err != nil {
		return nil, err
	}
	if p.Status, err = model.ParsePromiseStatus(statusStr); err != nil {
		return nil, err
	}
	p.ConfidenceLanguage = model.ConfidenceLevel(confidenceStr)
	if err := json.Unmarshal([]byte(metricsJSON), &p.Metrics); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal metrics")
	}
	if deadline.Valid {
		t := deadline.Time.UTC()
		p.Deadline = &t
	}
	if outcomeDate.Valid {
		t := outcomeDate.Time.UTC()
		p.OutcomeDate = &t
	}
	if outcomeDetails.Valid {
		p.OutcomeDetails = outcomeDetails.String
	}
	if delayDays.Valid {
		d := int(delayDays.Int64)
		p.DelayDays = &d
	}
	if impact.Valid {
		v := impact.Float64
		p.CredibilityImpact = &v
	}
	return &p, nil
}

func collectPromises(rows *sql.Rows) ([]model.Promise, error) {
	defer rows.Close()
	var promises []model.Promise
	for rows.Next() {
		p, err := scanPromise(rows)
		if err != nil {
			return nil, err
		}
		promises = append(promises, *p)
	}
	return promises, eris.Wrap(rows.Err(), "sqlite: iterate promises")
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
