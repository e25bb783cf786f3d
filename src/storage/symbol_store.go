package storage

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"quote-server/src/logger"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// schema.table.field, each part a plain identifier
var tableRefRegex = regexp.MustCompile(`^(\w+)\.(\w+)\.(\w+)$`)

// TableRef points at a column holding one symbol per row.
type TableRef struct {
	Schema string
	Table  string
	Field  string
}

// ParseTableRef reports whether entry is a schema.table.field reference.
func ParseTableRef(entry string) (TableRef, bool) {
	m := tableRefRegex.FindStringSubmatch(entry)
	if len(m) != 4 {
		return TableRef{}, false
	}
	return TableRef{Schema: m[1], Table: m[2], Field: m[3]}, true
}

// -----------------------------------------------------------------------------
// SymbolStore expands table references in the tracked symbol list with the
// rows of an external database. It only ever reads.
// -----------------------------------------------------------------------------

type SymbolStore struct {
	DB     *sql.DB
	Driver string
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

// OpenSymbolStore connects with lib/pq ("postgres") or modernc ("sqlite").
func OpenSymbolStore(ctx context.Context, driver, dsn string, log *logger.Logger) (*SymbolStore, error) {
	if driver != DriverPostgres && driver != DriverSQLite {
		return nil, fmt.Errorf("unsupported symbols database driver '%s'", driver)
	}
	if log == nil {
		log = logger.NewNopLogger()
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to symbols database: %w", err)
	}

	log.Info("Connected to %s symbols database", driver)
	return &SymbolStore{DB: db, Driver: driver, Logger: log}, nil
}

// -----------------------------------------------------------------------------

// ExpandSymbols replaces every table reference in raw with the symbols read
// from it. Plain symbols pass through in place.
func (s *SymbolStore) ExpandSymbols(ctx context.Context, raw []string) ([]string, error) {
	out := make([]string, 0, len(raw))
	for _, entry := range raw {
		ref, ok := ParseTableRef(entry)
		if !ok {
			out = append(out, entry)
			continue
		}

		loaded, err := s.SymbolsFromTable(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("failed to load symbols from %s: %w", entry, err)
		}
		s.Logger.Info("Loaded %d symbols from %s", len(loaded), entry)
		out = append(out, loaded...)
	}
	return out, nil
}

// -----------------------------------------------------------------------------

func (s *SymbolStore) SymbolsFromTable(ctx context.Context, ref TableRef) ([]string, error) {
	// Identifiers are \w+ only, quoting is enough for both drivers
	query := fmt.Sprintf(`SELECT "%s" FROM "%s"."%s"`, ref.Field, ref.Schema, ref.Table)

	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var sym sql.NullString
		if err := rows.Scan(&sym); err != nil {
			return nil, err
		}
		if sym.Valid && sym.String != "" {
			symbols = append(symbols, sym.String)
		}
	}
	return symbols, rows.Err()
}

// -----------------------------------------------------------------------------

func (s *SymbolStore) Close() error {
	return s.DB.Close()
}
