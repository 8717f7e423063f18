package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/docindex"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ docindex.BuildService = (*BuildService)(nil)

// BuildService implements docindex.BuildService using SQLite.
// Payloads and document contents are stored zstd-compressed.
type BuildService struct {
	db *DB
}

// NewBuildService creates a new BuildService.
func NewBuildService(db *DB) *BuildService {
	return &BuildService{db: db}
}

// CreateBuild records a new build with its documents.
func (s *BuildService) CreateBuild(ctx context.Context, build *docindex.Build) error {
	if err := build.Validate(); err != nil {
		return err
	}

	hash := hashContent(build.Payload)
	payload, err := compress(build.Payload)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// The unchanged check shares the insert's transaction so concurrent
	// writers cannot both record the same payload.
	var latestID, latestHash string
	err = tx.QueryRowContext(ctx, `
		SELECT id, content_hash FROM builds WHERE project = ? ORDER BY rowid DESC LIMIT 1
	`, build.Project).Scan(&latestID, &latestHash)
	switch {
	case err == nil && latestHash == hash:
		return docindex.Errorf(docindex.ECONFLICT, "index unchanged since build %s", latestID)
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return err
	}

	build.ID = uuid.New().String()
	build.ContentHash = hash
	build.CreatedAt = time.Now().UTC()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO builds (id, project, content_hash, documents, terms, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, build.ID, build.Project, build.ContentHash, build.Documents, build.Terms, payload,
		build.CreatedAt.Format(timeFormat)); err != nil {
		return err
	}

	for _, doc := range build.Docs {
		doc.ContentHash = hashContent([]byte(doc.Content))
		var content []byte
		if doc.Content != "" {
			if content, err = compress([]byte(doc.Content)); err != nil {
				return err
			}
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO build_documents (build_id, position, docname, filename, title, content_hash, content)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, build.ID, doc.Position, doc.DocName, doc.Filename, doc.Title, doc.ContentHash, content); err != nil {
			return fmt.Errorf("insert document %q: %w", doc.DocName, err)
		}
	}

	return tx.Commit()
}

// FindBuildByID retrieves a build with its payload and documents.
func (s *BuildService) FindBuildByID(ctx context.Context, id string) (*docindex.Build, error) {
	var build docindex.Build
	var payload []byte
	var createdAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, project, content_hash, documents, terms, payload, created_at
		FROM builds
		WHERE id = ?
	`, id).Scan(&build.ID, &build.Project, &build.ContentHash, &build.Documents, &build.Terms, &payload, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, docindex.Errorf(docindex.ENOTFOUND, "build %s not found", id)
	} else if err != nil {
		return nil, err
	}

	if build.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if build.Payload, err = decompress(payload); err != nil {
		return nil, fmt.Errorf("build %s payload: %w", id, err)
	}
	if build.Docs, err = s.findDocuments(ctx, id); err != nil {
		return nil, err
	}
	return &build, nil
}

func (s *BuildService) findDocuments(ctx context.Context, buildID string) ([]*docindex.BuildDocument, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT position, docname, filename, title, content_hash, content
		FROM build_documents
		WHERE build_id = ?
		ORDER BY position ASC
	`, buildID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*docindex.BuildDocument
	for rows.Next() {
		var doc docindex.BuildDocument
		var content []byte
		if err := rows.Scan(&doc.Position, &doc.DocName, &doc.Filename, &doc.Title, &doc.ContentHash, &content); err != nil {
			return nil, err
		}
		if len(content) > 0 {
			data, err := decompress(content)
			if err != nil {
				return nil, fmt.Errorf("document %q content: %w", doc.DocName, err)
			}
			doc.Content = string(data)
		}
		docs = append(docs, &doc)
	}
	return docs, rows.Err()
}

// FindBuilds retrieves builds matching the filter, newest first.
func (s *BuildService) FindBuilds(ctx context.Context, filter docindex.BuildFilter) ([]*docindex.Build, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, project, content_hash, documents, terms, created_at FROM builds WHERE 1=1")
	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.Project != nil {
		query.WriteString(" AND project = ?")
		args = append(args, *filter.Project)
	}
	query.WriteString(" ORDER BY rowid DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	builds := []*docindex.Build{}
	for rows.Next() {
		var build docindex.Build
		var createdAt string
		if err := rows.Scan(&build.ID, &build.Project, &build.ContentHash, &build.Documents, &build.Terms, &createdAt); err != nil {
			return nil, err
		}
		if build.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
			return nil, err
		}
		builds = append(builds, &build)
	}
	return builds, rows.Err()
}

// FindLatestBuild retrieves the newest build of a project.
func (s *BuildService) FindLatestBuild(ctx context.Context, project string) (*docindex.Build, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM builds WHERE project = ? ORDER BY rowid DESC LIMIT 1
	`, project).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, docindex.Errorf(docindex.ENOTFOUND, "no builds recorded for project %q", project)
	} else if err != nil {
		return nil, err
	}
	return s.FindBuildByID(ctx, id)
}

// DeleteBuild permanently removes a build and its documents.
func (s *BuildService) DeleteBuild(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM builds WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return docindex.Errorf(docindex.ENOTFOUND, "build %s not found", id)
	}
	return nil
}
