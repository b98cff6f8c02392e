package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/smd-api/internal/models"
)

// VersionRepository persists the append-only version log. Rows are only
// ever inserted; there are no update or delete paths.
type VersionRepository struct {
	db *sqlx.DB
}

// NewVersionRepository constructs the repository.
func NewVersionRepository(db *sqlx.DB) *VersionRepository {
	return &VersionRepository{db: db}
}

// Create appends a version snapshot.
func (r *VersionRepository) Create(ctx context.Context, version *models.SyllabusVersion) error {
	if version.ID == "" {
		version.ID = uuid.NewString()
	}
	if version.CreatedAt.IsZero() {
		version.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO syllabus_versions (id, syllabus_id, version, content, change_log, created_by, created_at)
	VALUES (:id, :syllabus_id, :version, :content, :change_log, :created_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, version); err != nil {
		return fmt.Errorf("create syllabus version: %w", err)
	}
	return nil
}

// FindLatest returns the most recent version for a syllabus by creation
// time, or sql.ErrNoRows when none exists yet.
func (r *VersionRepository) FindLatest(ctx context.Context, syllabusID string) (*models.SyllabusVersion, error) {
	const query = `SELECT id, syllabus_id, version, content, change_log, created_by, created_at
	FROM syllabus_versions WHERE syllabus_id = $1 ORDER BY created_at DESC LIMIT 1`
	var version models.SyllabusVersion
	if err := r.db.GetContext(ctx, &version, query, syllabusID); err != nil {
		return nil, err
	}
	return &version, nil
}

// ListBySyllabus returns all versions, newest first.
func (r *VersionRepository) ListBySyllabus(ctx context.Context, syllabusID string) ([]models.SyllabusVersion, error) {
	const query = `SELECT id, syllabus_id, version, content, change_log, created_by, created_at
	FROM syllabus_versions WHERE syllabus_id = $1 ORDER BY created_at DESC`
	var versions []models.SyllabusVersion
	if err := r.db.SelectContext(ctx, &versions, query, syllabusID); err != nil {
		return nil, fmt.Errorf("list syllabus versions: %w", err)
	}
	return versions, nil
}
