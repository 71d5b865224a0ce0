package sources

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"

	"github.com/molnia/dbatch/core/builders"
)

// Register connector
func init() {
	_ = registerConnector(&MySQL{}, "mysql", "mariadb")
}

var _ Connector = (*MySQL)(nil)

type MySQL struct{}

func (m *MySQL) Connect(url string) (*builders.Client, error) {
	// accept both a plain driver DSN and a scheme-prefixed one
	dsn := strings.TrimPrefix(url, "mysql://")

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to mysql database: %w", err)
	}

	return builders.NewClient(db), nil
}

func (m *MySQL) Placeholder(_ int) string {
	return "?"
}
