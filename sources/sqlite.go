package sources

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/molnia/dbatch/core/builders"
)

// Register connector
func init() {
	_ = registerConnector(&SQLite{}, "sqlite", "sqlite3")
}

var _ Connector = (*SQLite)(nil)

type SQLite struct{}

func (s *SQLite) Connect(url string) (*builders.Client, error) {
	path := strings.TrimPrefix(url, "sqlite://")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to sqlite database: %w", err)
	}

	return builders.NewClient(db), nil
}

func (s *SQLite) Placeholder(_ int) string {
	return "?"
}
