// Package store looks up driver records in the local DVLA SQLite database
// after a successful Drivers Licence match.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"
)

// Driver is one row of the DVLA drivers table plus the match score the
// lookup query ranked it with.
type Driver struct {
	LicenseNumber string `json:"license_number"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	DateOfBirth   string `json:"date_of_birth"`
	Address       string `json:"address"`
	Status        string `json:"status"`
	ExpiryDate    string `json:"expiry_date"`
	MatchScore    int    `json:"match_score"`
}

type Store struct {
	db *sql.DB
}

// Open connects to the SQLite database at path. The file must already
// exist; lookups against a silently created empty database would always
// come back empty and hide a misconfigured path.
func Open(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("database not found at %s: %w", path, err)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// EnsureSchema creates the drivers table when it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS drivers (
	license_number TEXT PRIMARY KEY,
	first_name     TEXT NOT NULL,
	last_name      TEXT NOT NULL,
	date_of_birth  TEXT,
	address        TEXT,
	status         TEXT NOT NULL DEFAULT 'active',
	expiry_date    TEXT
)`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating drivers table: %w", err)
	}
	return nil
}

const lookupLimit = 5

// FindByLicense returns up to five active drivers whose license number
// resembles num, best match first. Exact matches score 100, prefix matches
// 90, substring matches 80.
func (s *Store) FindByLicense(ctx context.Context, num string) ([]Driver, error) {
	const query = `
SELECT license_number, first_name, last_name, date_of_birth, address, status, expiry_date,
       CASE
           WHEN license_number = ?      THEN 100
           WHEN license_number LIKE ?   THEN 90
           WHEN license_number LIKE ?   THEN 80
           ELSE 50
       END AS match_score
FROM drivers
WHERE license_number LIKE ?
  AND status = 'active'
ORDER BY match_score DESC, expiry_date DESC
LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query,
		num, num+"%", "%"+num+"%", "%"+num+"%", lookupLimit)
	if err != nil {
		return nil, fmt.Errorf("querying drivers by license %s: %w", num, err)
	}
	defer rows.Close()
	return scanDrivers(rows)
}

// FindByName returns up to five active drivers with the given last name,
// ranked by how well the first name agrees. OCR often mangles first names,
// so a last-name match alone still scores 80.
func (s *Store) FindByName(ctx context.Context, first, last string) ([]Driver, error) {
	const query = `
SELECT license_number, first_name, last_name, date_of_birth, address, status, expiry_date,
       CASE
           WHEN LOWER(first_name) = LOWER(?) AND LOWER(last_name) = LOWER(?) THEN 100
           WHEN LOWER(last_name) = LOWER(?) AND LOWER(first_name) LIKE LOWER(?) THEN 90
           WHEN LOWER(last_name) = LOWER(?) THEN 80
           ELSE 50
       END AS match_score
FROM drivers
WHERE LOWER(last_name) = LOWER(?)
  AND status = 'active'
ORDER BY match_score DESC, expiry_date DESC
LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query,
		first, last, last, "%"+first+"%", last, last, lookupLimit)
	if err != nil {
		return nil, fmt.Errorf("querying drivers by name %s %s: %w", first, last, err)
	}
	defer rows.Close()
	return scanDrivers(rows)
}

func scanDrivers(rows *sql.Rows) ([]Driver, error) {
	var drivers []Driver
	for rows.Next() {
		var d Driver
		if err := rows.Scan(&d.LicenseNumber, &d.FirstName, &d.LastName,
			&d.DateOfBirth, &d.Address, &d.Status, &d.ExpiryDate, &d.MatchScore); err != nil {
			return nil, fmt.Errorf("scanning driver row: %w", err)
		}
		drivers = append(drivers, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading driver rows: %w", err)
	}
	return drivers, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
