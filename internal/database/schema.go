package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
)

// MigrationsTable records the applied schema version.
const MigrationsTable = "schema_migrations"

// SchemaState is the applied version of the paper store schema. Version 0
// means nothing was ever applied.
type SchemaState struct {
	Version uint `json:"version"`
	Dirty   bool `json:"dirty"`
}

func (s SchemaState) String() string {
	if s.Dirty {
		return fmt.Sprintf("version %d (dirty)", s.Version)
	}
	return fmt.Sprintf("version %d", s.Version)
}

// Schema applies the migrations in a directory to the paper store.
type Schema struct {
	migrate *migrate.Migrate
	sqlDB   *sql.DB
	logger  zerolog.Logger
}

// OpenSchema prepares the migrations in dir for db. Close releases the
// connection it borrows from the pool.
func OpenSchema(db *DB, dir string, logger zerolog.Logger) (*Schema, error) {
	if db == nil || db.pool == nil {
		return nil, errors.New("schema requires an open database")
	}
	if dir == "" {
		return nil, errors.New("migrations directory is required")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("migrations directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("migrations directory: %s is not a directory", dir)
	}

	sqlDB := stdlib.OpenDBFromPool(db.pool)
	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{MigrationsTable: MigrationsTable})
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+dir, "postgres", driver)
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}

	return &Schema{
		migrate: m,
		sqlDB:   sqlDB,
		logger:  logger.With().Str("migrations", dir).Logger(),
	}, nil
}

// Apply brings the schema to the newest version. An up-to-date schema is
// not an error. A dirty schema is refused until it is repaired by hand.
func (s *Schema) Apply() (SchemaState, error) {
	err := s.migrate.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		var dirty migrate.ErrDirty
		if errors.As(err, &dirty) {
			return SchemaState{Version: uint(dirty.Version), Dirty: true},
				fmt.Errorf("schema is dirty at version %d: %w", dirty.Version, err)
		}
		return SchemaState{}, fmt.Errorf("failed to apply schema: %w", err)
	}

	state, stateErr := s.State()
	if stateErr != nil {
		return state, stateErr
	}
	if errors.Is(err, migrate.ErrNoChange) {
		s.logger.Info().Stringer("schema", state).Msg("paper store schema up to date")
	} else {
		s.logger.Info().Stringer("schema", state).Msg("paper store schema applied")
	}
	return state, nil
}

// Rollback removes the papers and paper_edges tables and every stored row.
func (s *Schema) Rollback() (SchemaState, error) {
	s.logger.Warn().Msg("rolling back paper store schema")
	if err := s.migrate.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return SchemaState{}, fmt.Errorf("failed to roll back schema: %w", err)
	}
	return s.State()
}

// State returns the applied version.
func (s *Schema) State() (SchemaState, error) {
	version, dirty, err := s.migrate.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return SchemaState{}, nil
	}
	if err != nil {
		return SchemaState{}, fmt.Errorf("failed to read schema version: %w", err)
	}
	return SchemaState{Version: version, Dirty: dirty}, nil
}

// Close releases the migration source and the borrowed connection.
func (s *Schema) Close() error {
	sourceErr, dbErr := s.migrate.Close()
	return errors.Join(sourceErr, dbErr, s.sqlDB.Close())
}

// Migrate applies the schema in dir to db and closes it again. The server
// runs it at startup when migration_auto_run is set.
func Migrate(db *DB, dir string, logger zerolog.Logger) (SchemaState, error) {
	schema, err := OpenSchema(db, dir, logger)
	if err != nil {
		return SchemaState{}, err
	}

	state, err := schema.Apply()
	if closeErr := schema.Close(); closeErr != nil && err == nil {
		err = fmt.Errorf("failed to close schema: %w", closeErr)
	}
	return state, err
}
