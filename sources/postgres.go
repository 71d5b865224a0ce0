package sources

import (
	"database/sql"
	"fmt"
	nurl "net/url"

	_ "github.com/lib/pq"

	"github.com/molnia/dbatch/core/builders"
)

// Register connector
func init() {
	_ = registerConnector(&Postgres{}, "postgres", "postgresql", "pg")
}

var _ Connector = (*Postgres)(nil)

type Postgres struct{}

func (p *Postgres) Connect(url string) (*builders.Client, error) {
	u, err := nurl.Parse(url)
	if err != nil {
		return nil, fmt.Errorf("could not parse db connection string: %w", err)
	}

	db, err := sql.Open("postgres", u.String())
	if err != nil {
		return nil, fmt.Errorf("unable to connect to postgres database: %w", err)
	}

	return builders.NewClient(db), nil
}

func (p *Postgres) Placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}
