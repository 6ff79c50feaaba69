package readers

import (
	"strings"
	"testing"
)

func TestDSNMySQL(t *testing.T) {
	driver, dsn, err := DSN("mysql", "db.internal", 3306, "app", "root", "secret")
	if err != nil {
		t.Fatal(err)
	}
	if driver != "mysql" {
		t.Fatalf("driver = %q, want mysql", driver)
	}
	if !strings.Contains(dsn, "tcp(db.internal:3306)") || !strings.Contains(dsn, "/app") {
		t.Fatalf("mysql dsn = %q, missing expected host/port/database", dsn)
	}
}

func TestDSNPostgresAcceptsBothSpellings(t *testing.T) {
	for _, dbType := range []string{"postgres", "postgresql"} {
		driver, dsn, err := DSN(dbType, "db.internal", 5432, "app", "postgres", "secret")
		if err != nil {
			t.Fatal(err)
		}
		if driver != "postgres" {
			t.Fatalf("driver = %q, want postgres", driver)
		}
		if !strings.Contains(dsn, "dbname=app") {
			t.Fatalf("postgres dsn = %q, missing dbname", dsn)
		}
	}
}

func TestDSNSQLiteUsesDatabaseAsPath(t *testing.T) {
	driver, dsn, err := DSN("sqlite3", "", 0, "/tmp/data.db", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if driver != "sqlite" || dsn != "/tmp/data.db" {
		t.Fatalf("DSN(sqlite3) = %q, %q; want sqlite, /tmp/data.db", driver, dsn)
	}
}

func TestDSNRejectsUnknownType(t *testing.T) {
	if _, _, err := DSN("oracle", "h", 1, "d", "u", "p"); err == nil {
		t.Fatal("DSN should reject an unsupported database type")
	}
}

func TestDSNIsCaseInsensitive(t *testing.T) {
	driver, _, err := DSN("MySQL", "h", 3306, "d", "u", "p")
	if err != nil {
		t.Fatal(err)
	}
	if driver != "mysql" {
		t.Fatalf("DSN should normalize case, got driver %q", driver)
	}
}
