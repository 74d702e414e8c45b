package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/swzro/builders/internal/types"
)

// Dates are returned as text so they keep their YYYY-MM-DD form.
var buildColumns = []string{
	"id", "user_id", "title", "description",
	"to_char(duration_start, 'YYYY-MM-DD')", "to_char(duration_end, 'YYYY-MM-DD')",
	"category", "tags", "image_url", "is_public", "source_url",
	"role", "lesson", "outcomes", "ai_generated", "created_at", "updated_at",
}

func joinColumns(cols []string) string {
	return strings.Join(cols, ", ")
}

func scanBuild(row pgx.Row) (*Build, error) {
	var b Build
	err := row.Scan(
		&b.ID, &b.UserID, &b.Title, &b.Description,
		&b.DurationStart, &b.DurationEnd,
		&b.Category, &b.Tags, &b.ImageURL, &b.IsPublic, &b.SourceURLs,
		&b.Role, &b.Lesson, &b.Outcomes, &b.AIGenerated, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func buildValues(in *types.BuildInput) map[string]any {
	var end any
	if in.DurationEnd != nil {
		end = *in.DurationEnd
	}
	return map[string]any{
		"title":          in.Title,
		"description":    in.Description,
		"duration_start": in.DurationStart,
		"duration_end":   end,
		"category":       string(in.Category),
		"tags":           StringArray(types.NormalizeTags(in.Tags)),
		"image_url":      in.ImageURL,
		"is_public":      in.IsPublic,
		"source_url":     StringArray(in.SourceURLs),
		"role":           in.Role,
		"lesson":         in.Lesson,
		"outcomes":       in.Outcomes,
		"ai_generated":   in.AIGenerated,
	}
}

// CreateBuild saves a new build owned by userID.
func (db *DB) CreateBuild(ctx context.Context, userID uuid.UUID, in *types.BuildInput) (*Build, error) {
	values := buildValues(in)
	values["user_id"] = userID

	row, err := db.queryRow(ctx, psql.Insert("builds").SetMap(values).Suffix("RETURNING "+joinColumns(buildColumns)))
	if err != nil {
		return nil, err
	}
	b, err := scanBuild(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create build: %w", err)
	}
	return b, nil
}

// GetBuild returns the build with id, or nil when there is none.
func (db *DB) GetBuild(ctx context.Context, id uuid.UUID) (*Build, error) {
	row, err := db.queryRow(ctx, psql.Select(buildColumns...).From("builds").Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, err
	}
	b, err := scanBuild(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get build: %w", err)
	}
	return b, nil
}

// ListBuildsByUser returns a user's builds, newest first. With publicOnly set, private
// builds are left out.
func (db *DB) ListBuildsByUser(ctx context.Context, userID uuid.UUID, publicOnly bool) ([]Build, error) {
	query, args, err := listBuildsQuery(userID, publicOnly).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list builds: %w", err)
	}
	defer rows.Close()

	builds := []Build{}
	for rows.Next() {
		b, err := scanBuild(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan build: %w", err)
		}
		builds = append(builds, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list builds: %w", err)
	}
	return builds, nil
}

func listBuildsQuery(userID uuid.UUID, publicOnly bool) sq.SelectBuilder {
	q := psql.Select(buildColumns...).From("builds").Where(sq.Eq{"user_id": userID}).OrderBy("created_at DESC")
	if publicOnly {
		q = q.Where(sq.Eq{"is_public": true})
	}
	return q
}

// UpdateBuild replaces the content of build id. Only the owner can update it;
// otherwise ErrNotFound is returned.
func (db *DB) UpdateBuild(ctx context.Context, userID, id uuid.UUID, in *types.BuildInput) (*Build, error) {
	row, err := db.queryRow(ctx, updateBuildQuery(userID, id, in))
	if err != nil {
		return nil, err
	}
	b, err := scanBuild(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update build: %w", err)
	}
	return b, nil
}

func updateBuildQuery(userID, id uuid.UUID, in *types.BuildInput) sq.UpdateBuilder {
	return psql.Update("builds").
		SetMap(buildValues(in)).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id, "user_id": userID}).
		Suffix("RETURNING " + joinColumns(buildColumns))
}

// DeleteBuild removes build id if userID owns it; otherwise ErrNotFound is returned.
func (db *DB) DeleteBuild(ctx context.Context, userID, id uuid.UUID) error {
	query, args, err := psql.Delete("builds").Where(sq.Eq{"id": id, "user_id": userID}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	tag, err := db.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete build: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
