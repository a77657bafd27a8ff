package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"penumbra/internal/domain"
)

// DeployedFile is one file materialized into a target directory
type DeployedFile struct {
	TargetDir    string
	RelativePath string
	Collection   string
	ModName      string
	SourcePath   string
	LinkMethod   domain.LinkMethod
	DeployedAt   time.Time
}

// FileConflict is a path already deployed by another collection
type FileConflict struct {
	RelativePath string
	Collection   string
	ModName      string
}

// SaveDeployedFile records a deployed file. A redeploy of the same path
// takes over the record.
func (d *DB) SaveDeployedFile(f DeployedFile) error {
	_, err := d.Exec(`
		INSERT INTO deployed_files (target_dir, relative_path, collection, mod_name, source_path, link_method)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(target_dir, relative_path) DO UPDATE SET
			collection = excluded.collection,
			mod_name = excluded.mod_name,
			source_path = excluded.source_path,
			link_method = excluded.link_method,
			deployed_at = CURRENT_TIMESTAMP
	`, f.TargetDir, f.RelativePath, f.Collection, f.ModName, f.SourcePath, int(f.LinkMethod))
	if err != nil {
		return fmt.Errorf("saving deployed file: %w", err)
	}
	return nil
}

// GetFileOwner returns the record for a deployed path, or nil
func (d *DB) GetFileOwner(targetDir, relativePath string) (*DeployedFile, error) {
	row := d.QueryRow(`
		SELECT target_dir, relative_path, collection, mod_name, source_path, link_method, deployed_at
		FROM deployed_files
		WHERE target_dir = ? AND relative_path = ?
	`, targetDir, relativePath)
	f, err := scanDeployedFile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting file owner: %w", err)
	}
	return f, nil
}

// GetDeployedFiles returns every record for a target directory, by path
func (d *DB) GetDeployedFiles(targetDir string) ([]DeployedFile, error) {
	rows, err := d.Query(`
		SELECT target_dir, relative_path, collection, mod_name, source_path, link_method, deployed_at
		FROM deployed_files
		WHERE target_dir = ?
		ORDER BY relative_path
	`, targetDir)
	if err != nil {
		return nil, fmt.Errorf("querying deployed files: %w", err)
	}
	defer rows.Close()

	var files []DeployedFile
	for rows.Next() {
		f, err := scanDeployedFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning deployed file: %w", err)
		}
		files = append(files, *f)
	}
	return files, rows.Err()
}

// GetDeployedFilesForMod returns the paths a mod provides in a target
func (d *DB) GetDeployedFilesForMod(targetDir, modName string) ([]string, error) {
	rows, err := d.Query(`
		SELECT relative_path FROM deployed_files
		WHERE target_dir = ? AND mod_name = ?
		ORDER BY relative_path
	`, targetDir, modName)
	if err != nil {
		return nil, fmt.Errorf("querying deployed files: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, fmt.Errorf("scanning path: %w", err)
		}
		paths = append(paths, path)
	}
	return paths, rows.Err()
}

// DeleteDeployedFile removes one record
func (d *DB) DeleteDeployedFile(targetDir, relativePath string) error {
	_, err := d.Exec(`
		DELETE FROM deployed_files WHERE target_dir = ? AND relative_path = ?
	`, targetDir, relativePath)
	if err != nil {
		return fmt.Errorf("deleting deployed file: %w", err)
	}
	return nil
}

// DeleteDeployedFiles removes every record for a target directory
func (d *DB) DeleteDeployedFiles(targetDir string) error {
	_, err := d.Exec(`DELETE FROM deployed_files WHERE target_dir = ?`, targetDir)
	if err != nil {
		return fmt.Errorf("deleting deployed files: %w", err)
	}
	return nil
}

// CheckFileConflicts returns which of paths are deployed in targetDir by a
// collection other than collection.
func (d *DB) CheckFileConflicts(targetDir, collection string, paths []string) ([]FileConflict, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(paths))
	args := make([]any, 0, len(paths)+2)
	args = append(args, targetDir, collection)
	for i, p := range paths {
		placeholders[i] = "?"
		args = append(args, p)
	}

	query := fmt.Sprintf(`
		SELECT relative_path, collection, mod_name FROM deployed_files
		WHERE target_dir = ? AND collection != ? AND relative_path IN (%s)
		ORDER BY relative_path
	`, strings.Join(placeholders, ","))

	rows, err := d.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("checking conflicts: %w", err)
	}
	defer rows.Close()

	var conflicts []FileConflict
	for rows.Next() {
		var c FileConflict
		if err := rows.Scan(&c.RelativePath, &c.Collection, &c.ModName); err != nil {
			return nil, fmt.Errorf("scanning conflict: %w", err)
		}
		conflicts = append(conflicts, c)
	}
	return conflicts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDeployedFile(row rowScanner) (*DeployedFile, error) {
	var f DeployedFile
	var method int
	if err := row.Scan(&f.TargetDir, &f.RelativePath, &f.Collection, &f.ModName, &f.SourcePath, &method, &f.DeployedAt); err != nil {
		return nil, err
	}
	f.LinkMethod = domain.LinkMethod(method)
	return &f, nil
}
