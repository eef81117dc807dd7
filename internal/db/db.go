package db

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"

	"daybook/internal/config"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var db *sql.DB

// MigrationStatus holds information about database migration state
type MigrationStatus struct {
	CurrentVersion uint
	LatestVersion  uint
	Dirty          bool
	Pending        bool
}

// Open opens the database connection without running migrations
func Open() (*sql.DB, error) {
	if db != nil {
		return db, nil
	}

	// Ensure directories exist
	if err := config.EnsureDirectories(); err != nil {
		return nil, err
	}

	dbPath, err := config.DatabasePath()
	if err != nil {
		return nil, err
	}

	database, err := OpenFile(dbPath)
	if err != nil {
		return nil, err
	}

	db = database
	return db, nil
}

// OpenFile opens a database at an explicit path with foreign keys enforced.
// It does not touch the package-level connection; tests use it directly.
func OpenFile(path string) (*sql.DB, error) {
	return sql.Open("sqlite3", path+"?_foreign_keys=on&_loc=auto")
}

// OpenAndMigrate opens the database and brings its schema up to date.
func OpenAndMigrate() (*sql.DB, error) {
	database, err := Open()
	if err != nil {
		return nil, err
	}

	if err := EnsureMigrated(database); err != nil {
		return nil, err
	}

	return database, nil
}

// EnsureMigrated applies pending migrations, refusing a database left
// dirty by an interrupted migration rather than running on top of it.
func EnsureMigrated(database *sql.DB) error {
	status, err := GetMigrationStatus(database)
	if err != nil {
		return err
	}

	if status.Dirty {
		return fmt.Errorf("database is dirty at migration version %d, resolve it manually before starting", status.CurrentVersion)
	}
	if !status.Pending {
		return nil
	}

	return Migrate(database)
}

func Close() error {
	if db != nil {
		err := db.Close()
		db = nil
		return err
	}
	return nil
}

// GetMigrationStatus returns the migration status of the given database
func GetMigrationStatus(database *sql.DB) (*MigrationStatus, error) {
	if database == nil {
		return nil, fmt.Errorf("database not open")
	}

	m, err := getMigrator(database)
	if err != nil {
		return nil, err
	}

	// Get current version
	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return nil, err
	}

	// Get latest available version by checking source
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, err
	}

	// Find the latest version
	var latestVersion uint
	first, err := source.First()
	if err == nil {
		latestVersion = first
		for {
			next, err := source.Next(latestVersion)
			if err != nil {
				break
			}
			latestVersion = next
		}
	}

	status := &MigrationStatus{
		CurrentVersion: version,
		LatestVersion:  latestVersion,
		Dirty:          dirty,
		Pending:        version < latestVersion,
	}

	return status, nil
}

// Migrate runs all pending migrations on the given database
func Migrate(database *sql.DB) error {
	if database == nil {
		return fmt.Errorf("database not open")
	}

	m, err := getMigrator(database)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}

	return nil
}

// getMigrator creates a new migrate instance
func getMigrator(database *sql.DB) (*migrate.Migrate, error) {
	driver, err := sqlite3.WithInstance(database, &sqlite3.Config{})
	if err != nil {
		return nil, err
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, err
	}

	return migrate.NewWithInstance("iofs", source, "sqlite3", driver)
}
