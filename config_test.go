package wiremysql

import (
	"testing"
	"time"
)

func TestParseDSNFullForm(t *testing.T) {
	cfg, err := ParseDSN("root:secret@tcp(db.internal:3306)/app?timeout=5s&allowNativePasswords=false")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.User != "root" || cfg.Passwd != "secret" {
		t.Errorf("unexpected credentials: %q/%q", cfg.User, cfg.Passwd)
	}
	if cfg.Net != "tcp" || cfg.Addr != "db.internal:3306" {
		t.Errorf("unexpected net/addr: %q(%q)", cfg.Net, cfg.Addr)
	}
	if cfg.DBName != "app" {
		t.Errorf("unexpected dbname: %q", cfg.DBName)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("unexpected timeout: %v", cfg.Timeout)
	}
	if cfg.AllowNativePasswords {
		t.Error("expected allowNativePasswords=false to be honored")
	}
}

func TestParseDSNDefaultsNetAndAddr(t *testing.T) {
	cfg, err := ParseDSN("/app")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Net != "tcp" {
		t.Errorf("expected default net tcp, got %q", cfg.Net)
	}
	if cfg.Addr != "127.0.0.1:3306" {
		t.Errorf("expected default addr, got %q", cfg.Addr)
	}
	if !cfg.AllowNativePasswords {
		t.Error("expected AllowNativePasswords to default true")
	}
	if cfg.Collation != defaultCollation {
		t.Errorf("expected default collation, got %d", cfg.Collation)
	}
}

func TestParseDSNNoCredentials(t *testing.T) {
	cfg, err := ParseDSN("tcp(localhost:3306)/db")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.User != "" || cfg.Passwd != "" {
		t.Errorf("expected no credentials, got %q/%q", cfg.User, cfg.Passwd)
	}
	if cfg.Addr != "localhost:3306" {
		t.Errorf("unexpected addr: %q", cfg.Addr)
	}
}

func TestParseDSNInvalidTimeout(t *testing.T) {
	if _, err := ParseDSN("/db?timeout=not-a-duration"); err == nil {
		t.Fatal("expected an error for a malformed timeout param")
	}
}

func TestFormatDSNRoundTrip(t *testing.T) {
	cfg := &Config{
		User:                 "root",
		Passwd:               "secret",
		Net:                  "tcp",
		Addr:                 "db.internal:3306",
		DBName:               "app",
		Timeout:              5 * time.Second,
		AllowNativePasswords: false,
	}
	dsn := cfg.FormatDSN()

	reparsed, err := ParseDSN(dsn)
	if err != nil {
		t.Fatalf("FormatDSN produced an unparseable DSN %q: %v", dsn, err)
	}
	if reparsed.User != cfg.User || reparsed.Passwd != cfg.Passwd ||
		reparsed.Net != cfg.Net || reparsed.Addr != cfg.Addr ||
		reparsed.DBName != cfg.DBName || reparsed.Timeout != cfg.Timeout ||
		reparsed.AllowNativePasswords != cfg.AllowNativePasswords {
		t.Fatalf("round trip mismatch: got %+v, want %+v", reparsed, cfg)
	}
}

func TestFormatDSNOmitsDefaultedParams(t *testing.T) {
	cfg := &Config{Net: "tcp", Addr: "127.0.0.1:3306", DBName: "app", AllowNativePasswords: true}
	dsn := cfg.FormatDSN()
	if dsn != "tcp(127.0.0.1:3306)/app" {
		t.Errorf("expected no trailing ?params for defaulted values, got %q", dsn)
	}
}

func TestConfigCollationDefaultsWhenUnset(t *testing.T) {
	cfg := &Config{}
	if got := cfg.collation(); got != defaultCollation {
		t.Errorf("expected defaultCollation, got %d", got)
	}

	cfg.Collation = 45
	if got := cfg.collation(); got != 45 {
		t.Errorf("expected the explicit collation to be honored, got %d", got)
	}
}

func TestConfigLoggerDefaultsWhenUnset(t *testing.T) {
	cfg := &Config{}
	if cfg.logger() == nil {
		t.Error("expected a non-nil default logger")
	}
}
