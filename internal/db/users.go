package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/swzro/builders/internal/types"
)

var userColumns = []string{
	"id", "email", "username", "name", "bio", "education", "language", "etc", "skills", "created_at", "updated_at",
}

func scanUser(row pgx.Row) (*User, error) {
	var (
		u                          User
		education, language, skill []byte
	)
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.Name, &u.Bio, &education, &language, &u.Etc, &skill, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := unmarshalColumns(
		column{"education", education, &u.Education},
		column{"language", language, &u.Languages},
		column{"skills", skill, &u.Skills},
	); err != nil {
		return nil, err
	}
	return &u, nil
}

type column struct {
	name string
	raw  []byte
	dest any
}

func unmarshalColumns(cols ...column) error {
	for _, c := range cols {
		if len(c.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(c.raw, c.dest); err != nil {
			return fmt.Errorf("failed to decode %s: %w", c.name, err)
		}
	}
	return nil
}

func (db *DB) getUser(ctx context.Context, where sq.Eq) (*User, error) {
	row, err := db.queryRow(ctx, psql.Select(userColumns...).From("users").Where(where))
	if err != nil {
		return nil, err
	}
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// GetUserByID returns the user with id, or nil when there is none.
func (db *DB) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return db.getUser(ctx, sq.Eq{"id": id})
}

// GetUserByUsername returns the user with username, or nil when there is none.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	return db.getUser(ctx, sq.Eq{"username": username})
}

// UpdateProfile writes the profile of user id, creating the row on first use.
// The email comes from the caller's token and is only set when non-empty.
func (db *DB) UpdateProfile(ctx context.Context, id uuid.UUID, email string, req *types.UpdateProfileRequest) (*User, error) {
	education, err := jsonValue(req.Education)
	if err != nil {
		return nil, err
	}
	language, err := jsonValue(req.Languages)
	if err != nil {
		return nil, err
	}
	skills, err := jsonValue(req.Skills)
	if err != nil {
		return nil, err
	}

	q := psql.Insert("users").
		Columns("id", "email", "username", "name", "bio", "education", "language", "etc", "skills").
		Values(id, email, req.Username, req.Name, req.Bio, string(education), string(language), req.Etc, string(skills)).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			email = COALESCE(NULLIF(EXCLUDED.email, ''), users.email),
			username = EXCLUDED.username, name = EXCLUDED.name, bio = EXCLUDED.bio,
			education = EXCLUDED.education, language = EXCLUDED.language,
			etc = EXCLUDED.etc, skills = EXCLUDED.skills, updated_at = NOW()`).
		Suffix("RETURNING " + joinColumns(userColumns))

	row, err := db.queryRow(ctx, q)
	if err != nil {
		return nil, err
	}
	u, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return u, nil
}
