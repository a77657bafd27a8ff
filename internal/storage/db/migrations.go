package db

import "fmt"

func (d *DB) migrate() error {
	if _, err := d.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	var version int
	err := d.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		return fmt.Errorf("getting schema version: %w", err)
	}

	migrations := []func(*DB) error{
		migrateV1,
		migrateV2,
	}

	for i := version; i < len(migrations); i++ {
		if err := migrations[i](d); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
		if _, err := d.Exec("INSERT INTO schema_migrations (version) VALUES (?)", i+1); err != nil {
			return fmt.Errorf("recording migration %d: %w", i+1, err)
		}
	}

	return nil
}

// SchemaVersion returns the highest applied migration
func (d *DB) SchemaVersion() (int, error) {
	var version int
	if err := d.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version); err != nil {
		return 0, fmt.Errorf("getting schema version: %w", err)
	}
	return version, nil
}

func migrateV1(d *DB) error {
	// One row per file materialized into a target directory
	_, err := d.Exec(`
		CREATE TABLE deployed_files (
			target_dir TEXT NOT NULL,
			relative_path TEXT NOT NULL,
			collection TEXT NOT NULL,
			mod_name TEXT NOT NULL,
			source_path TEXT NOT NULL,
			link_method INTEGER DEFAULT 0,
			deployed_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY(target_dir, relative_path)
		)
	`)
	if err != nil {
		return err
	}
	_, err = d.Exec(`CREATE INDEX idx_deployed_files_mod ON deployed_files(target_dir, mod_name)`)
	return err
}

func migrateV2(d *DB) error {
	// Summary of each deploy run, for status reporting
	_, err := d.Exec(`
		CREATE TABLE deployments (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			target_dir TEXT NOT NULL,
			collection TEXT NOT NULL,
			generation INTEGER NOT NULL,
			files INTEGER NOT NULL,
			skipped INTEGER NOT NULL,
			link_method INTEGER DEFAULT 0,
			deployed_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}
