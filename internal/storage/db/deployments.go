package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"penumbra/internal/domain"
)

// Deployment summarizes one deploy run
type Deployment struct {
	ID         int64
	TargetDir  string
	Collection string
	Generation uint64
	Files      int
	Skipped    int
	LinkMethod domain.LinkMethod
	DeployedAt time.Time
}

// RecordDeployment stores a deploy summary and returns its id
func (d *DB) RecordDeployment(dep Deployment) (int64, error) {
	res, err := d.Exec(`
		INSERT INTO deployments (target_dir, collection, generation, files, skipped, link_method)
		VALUES (?, ?, ?, ?, ?, ?)
	`, dep.TargetDir, dep.Collection, int64(dep.Generation), dep.Files, dep.Skipped, int(dep.LinkMethod))
	if err != nil {
		return 0, fmt.Errorf("recording deployment: %w", err)
	}
	return res.LastInsertId()
}

// LastDeployment returns the most recent deploy into targetDir, or any
// target when targetDir is empty. Returns nil when there is none.
func (d *DB) LastDeployment(targetDir string) (*Deployment, error) {
	query := `
		SELECT id, target_dir, collection, generation, files, skipped, link_method, deployed_at
		FROM deployments`
	var args []any
	if targetDir != "" {
		query += ` WHERE target_dir = ?`
		args = append(args, targetDir)
	}
	query += ` ORDER BY id DESC LIMIT 1`

	var dep Deployment
	var gen int64
	var method int
	err := d.QueryRow(query, args...).Scan(&dep.ID, &dep.TargetDir, &dep.Collection, &gen, &dep.Files, &dep.Skipped, &method, &dep.DeployedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting last deployment: %w", err)
	}
	dep.Generation = uint64(gen)
	dep.LinkMethod = domain.LinkMethod(method)
	return &dep, nil
}
