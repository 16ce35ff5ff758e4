package db

import (
	"database/sql"
	"time"

	"github.com/cyverse-de/dbutil"
	"github.com/lakshya189/SoniCart-E-Commerce-platform-sub001/common"
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

// uniqueViolation is the PostgreSQL error code reported when an insert violates a unique constraint.
const uniqueViolation = pq.ErrorCode("23505")

// InitDatabase establishes a database connection and verifies tha the database can be reached.
func InitDatabase(driverName, databaseURI, timeout string) (*sql.DB, error) {
	wrapMsg := "unable to initialize the database"

	// Create a database connector to establish the connection.
	connector, err := dbutil.NewDefaultConnector(timeout)
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	// Establish the database connection.
	db, err := connector.Connect(driverName, databaseURI)
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	return db, nil
}

// isUniqueViolation returns true if err was caused by a unique constraint violation.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}
	return false
}

// unavailable marks an error returned by the database as a dependency failure.
func unavailable(err error, wrapMsg string) error {
	return common.NewDependencyUnavailableError(err, wrapMsg)
}

// clock returns the current time in UTC. Tests replace it on individual stores.
func clock() time.Time {
	return time.Now().UTC()
}

// expectOneRow verifies that a statement affected exactly one row, returning a NotFoundError otherwise.
func expectOneRow(result sql.Result, wrapMsg, notFoundFormat string, a ...interface{}) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return unavailable(err, wrapMsg)
	}
	if rowsAffected == 0 {
		return common.NewNotFoundError(notFoundFormat, a...)
	}
	return nil
}
