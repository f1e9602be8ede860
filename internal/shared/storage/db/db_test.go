package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type nopDriver struct{}

func (d nopDriver) Open(name string) (driver.Conn, error) {
	return nopConn{}, nil
}

type nopConn struct{}

func (nopConn) Prepare(query string) (driver.Stmt, error) { return nopStmt{}, nil }
func (nopConn) Close() error                              { return nil }
func (nopConn) Begin() (driver.Tx, error)                 { return nopTx{}, nil }
func (nopConn) Ping(ctx context.Context) error            { return nil }

type nopStmt struct{}

func (nopStmt) Close() error                                    { return nil }
func (nopStmt) NumInput() int                                   { return -1 }
func (nopStmt) Exec(args []driver.Value) (driver.Result, error) { return nopResult{}, nil }
func (nopStmt) Query(args []driver.Value) (driver.Rows, error)  { return nopRows{}, nil }

type nopTx struct{}

func (nopTx) Commit() error   { return nil }
func (nopTx) Rollback() error { return nil }

type nopResult struct{}

func (nopResult) LastInsertId() (int64, error) { return 0, nil }
func (nopResult) RowsAffected() (int64, error) { return 0, nil }

type nopRows struct{}

func (nopRows) Columns() []string              { return []string{} }
func (nopRows) Close() error                   { return nil }
func (nopRows) Next(dest []driver.Value) error { return driver.ErrBadConn }

var registerTestDriverOnce sync.Once

func ensureTestDriverRegistered() {
	registerTestDriverOnce.Do(func() {
		sql.Register("dbtest", nopDriver{})
	})
}

func withTestDriver(t *testing.T) func() {
	t.Helper()
	ensureTestDriverRegistered()
	prev := openDB
	openDB = func(name, dsn string) (*sql.DB, error) {
		return sql.Open("dbtest", dsn)
	}
	return func() {
		openDB = prev
	}
}

func TestOptionsFromEnvAppliesOverrides(t *testing.T) {
	restore := withTestDriver(t)
	defer restore()

	t.Setenv("DB_MAX_OPEN_CONNS", "7")
	t.Setenv("DB_MAX_IDLE_CONNS", "3")
	t.Setenv("DB_CONN_MAX_LIFETIME", "20m")
	t.Setenv("DB_CONN_MAX_IDLE_TIME", "45s")
	t.Setenv("DB_PING_TIMEOUT", "1s")

	opts := OptionsFromEnv(DefaultServerOptions())
	db, dialect, err := Connect(context.Background(), "postgres://ignored", opts)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer db.Close()

	if dialect != DialectPostgres {
		t.Fatalf("expected postgres dialect, got %s", dialect)
	}
	stats := db.Stats()
	if stats.MaxOpenConnections != 7 {
		t.Fatalf("expected MaxOpenConnections=7, got %d", stats.MaxOpenConnections)
	}
	if opts.MaxIdleConns != 3 {
		t.Fatalf("expected MaxIdleConns=3, got %d", opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime != 20*time.Minute {
		t.Fatalf("expected ConnMaxLifetime=20m, got %s", opts.ConnMaxLifetime)
	}
	if opts.ConnMaxIdleTime != 45*time.Second {
		t.Fatalf("expected ConnMaxIdleTime=45s, got %s", opts.ConnMaxIdleTime)
	}
	if opts.PingTimeout != time.Second {
		t.Fatalf("expected PingTimeout=1s, got %s", opts.PingTimeout)
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		url     string
		driver  string
		dsn     string
		dialect Dialect
		wantErr bool
	}{
		{url: "postgres://u:p@localhost:5432/app?sslmode=disable", driver: "pgx", dsn: "postgres://u:p@localhost:5432/app?sslmode=disable", dialect: DialectPostgres},
		{url: "postgresql://localhost/app", driver: "pgx", dsn: "postgresql://localhost/app", dialect: DialectPostgres},
		{url: "sqlite://./data/app.db", driver: "sqlite", dsn: "./data/app.db", dialect: DialectSQLite},
		{url: "file:app.db?_pragma=busy_timeout(5000)", driver: "sqlite", dsn: "file:app.db?_pragma=busy_timeout(5000)", dialect: DialectSQLite},
		{url: "", wantErr: true},
		{url: "sqlite://", wantErr: true},
		{url: "mysql://localhost/app", wantErr: true},
	}
	for _, tt := range tests {
		driverName, dsn, dialect, err := Resolve(tt.url)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("%q: expected error", tt.url)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tt.url, err)
		}
		if driverName != tt.driver || dsn != tt.dsn || dialect != tt.dialect {
			t.Fatalf("%q: got (%s, %s, %s)", tt.url, driverName, dsn, dialect)
		}
	}
}

func TestConnectSQLiteRunsMigrations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.db")
	db, dialect, err := Connect(context.Background(), "sqlite://"+path, DefaultServerOptions())
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer db.Close()

	if dialect != DialectSQLite {
		t.Fatalf("expected sqlite dialect, got %s", dialect)
	}
	if got := db.Stats().MaxOpenConnections; got != 1 {
		t.Fatalf("expected single sqlite connection, got %d", got)
	}
	if err := RunMigrations(context.Background(), db, dialect); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}
	for _, table := range []string{"sessions", "analysis_records"} {
		var name string
		row := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = $1`, table)
		if err := row.Scan(&name); err != nil {
			t.Fatalf("table %s missing: %v", table, err)
		}
	}
}
