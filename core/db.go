package core

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type (
	// DBConnector hands out single connections from a pool. *sqlx.DB satisfies it.
	DBConnector interface {
		Connx(ctx context.Context) (*sqlx.Conn, error)
		DriverName() string
		Rebind(query string) string
	}
)

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}
