package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	// Register postgres and sqlite3 drivers
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"chit-fund-analyzer/domain"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

type DB interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	Close() error
}

// SQLAnalysisRepository stores analyses as JSON documents in a SQL table.
type SQLAnalysisRepository struct {
	db     DB
	driver string
	now    func() time.Time
}

// OpenSQL opens a database for one of the supported drivers.
func OpenSQL(driver, dsn string) (*sql.DB, error) {
	switch driver {
	case DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", driver)
	}
	return sql.Open(driver, dsn)
}

func InitSchema(db DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS chit_analyses(
		id TEXT PRIMARY KEY,
		created_at BIGINT NOT NULL,
		input TEXT NOT NULL,
		result TEXT NOT NULL
	)`)
	return err
}

func NewSQLAnalysisRepository(db DB, driver string) *SQLAnalysisRepository {
	return &SQLAnalysisRepository{db: db, driver: driver, now: time.Now}
}

func (r *SQLAnalysisRepository) Save(
	input domain.ChitFundInput,
	result domain.ChitFundAnalysisResult,
) error {
	in, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("encode input: %w", err)
	}
	res, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	_, err = r.db.Exec(r.rebind(`INSERT INTO chit_analyses(id,created_at,input,result) VALUES(?,?,?,?)`),
		uuid.NewString(), r.now().UTC().UnixNano(), string(in), string(res))
	return err
}

func (r *SQLAnalysisRepository) List(limit int) ([]domain.AnalysisRecord, error) {
	rows, err := r.db.Query(r.rebind(`SELECT id,created_at,input,result FROM chit_analyses ORDER BY created_at DESC LIMIT ?`),
		normalizeLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AnalysisRecord
	for rows.Next() {
		var (
			id      string
			created int64
			in, res string
			rec     domain.AnalysisRecord
		)
		if err := rows.Scan(&id, &created, &in, &res); err != nil {
			return nil, err
		}
		if rec.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("record %s: %w", id, err)
		}
		rec.CreatedAt = time.Unix(0, created).UTC()
		if err := json.Unmarshal([]byte(in), &rec.Input); err != nil {
			return nil, fmt.Errorf("record %s input: %w", id, err)
		}
		if err := json.Unmarshal([]byte(res), &rec.Result); err != nil {
			return nil, fmt.Errorf("record %s result: %w", id, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// rebind turns ? placeholders into $n for postgres.
func (r *SQLAnalysisRepository) rebind(query string) string {
	if r.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}
