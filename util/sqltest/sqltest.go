// Package sqltest provides a no-op database/sql driver for service tests.
// Services begin real transactions on *sql.DB while repositories are mocked,
// so tests only need Begin/Commit/Rollback to succeed.
package sqltest

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"sync"
)

type fakeDriver struct{}
type fakeConn struct{}
type fakeTx struct{}

func (fakeDriver) Open(name string) (driver.Conn, error) { return fakeConn{}, nil }

func (fakeConn) Prepare(query string) (driver.Stmt, error) {
	return nil, errors.New("sqltest: statements not supported")
}
func (fakeConn) Close() error              { return nil }
func (fakeConn) Begin() (driver.Tx, error) { return fakeTx{}, nil }

func (fakeTx) Commit() error   { return nil }
func (fakeTx) Rollback() error { return nil }

var registerOnce sync.Once

// Open returns a *sql.DB whose transactions are no-ops.
func Open() *sql.DB {
	registerOnce.Do(func() {
		sql.Register("sqltest", fakeDriver{})
	})
	db, err := sql.Open("sqltest", "")
	if err != nil {
		panic(err)
	}
	return db
}
