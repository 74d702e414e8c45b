package db

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swzro/builders/internal/types"
)

func TestMigrationNames(t *testing.T) {
	names, err := MigrationNames()
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "migrations/001_init.sql", names[0])

	body, err := migrationFiles.ReadFile(names[0])
	require.NoError(t, err)
	assert.Contains(t, string(body), "CREATE TABLE IF NOT EXISTS users")
	assert.Contains(t, string(body), "CREATE TABLE IF NOT EXISTS builds")
}

func TestStringArray(t *testing.T) {
	var a StringArray
	require.NoError(t, a.Scan([]byte(`["go","api"]`)))
	assert.Equal(t, StringArray{"go", "api"}, a)

	require.NoError(t, a.Scan(`["x"]`))
	assert.Equal(t, StringArray{"x"}, a)

	require.NoError(t, a.Scan(nil))
	assert.Equal(t, StringArray{}, a)

	assert.Error(t, a.Scan(42))

	v, err := StringArray(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), v)
}

func sampleInput() *types.BuildInput {
	return &types.BuildInput{
		Title:         "Todo API",
		Description:   "A REST API.",
		Category:      types.CategoryProject,
		DurationStart: "2024-01-01",
		Tags:          []string{"go", " go ", "api"},
		SourceURLs:    []string{"https://github.com/acme/todo-api"},
		IsPublic:      true,
	}
}

func TestBuildValues(t *testing.T) {
	in := sampleInput()
	values := buildValues(in)

	assert.Equal(t, StringArray{"go", "api"}, values["tags"])
	assert.Nil(t, values["duration_end"])
	assert.Equal(t, "project", values["category"])

	in.DurationEnd = types.StringPtr("2024-03-01")
	assert.Equal(t, "2024-03-01", buildValues(in)["duration_end"])
}

func TestListBuildsQuery(t *testing.T) {
	userID := uuid.New()

	query, args, err := listBuildsQuery(userID, false).ToSql()
	require.NoError(t, err)
	assert.Contains(t, query, "FROM builds WHERE user_id = $1 ORDER BY created_at DESC")
	assert.Equal(t, []any{userID.String()}, args)

	query, args, err = listBuildsQuery(userID, true).ToSql()
	require.NoError(t, err)
	assert.Contains(t, query, "WHERE user_id = $1 AND is_public = $2")
	assert.Equal(t, []any{userID.String(), true}, args)
}

func TestUpdateBuildQuery_IsOwnerScoped(t *testing.T) {
	userID, id := uuid.New(), uuid.New()

	query, args, err := updateBuildQuery(userID, id, sampleInput()).ToSql()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(query, "UPDATE builds SET "))
	assert.Contains(t, query, "updated_at = NOW()")
	assert.Contains(t, query, "WHERE id = $14 AND user_id = $15")
	assert.Equal(t, id.String(), args[len(args)-2])
	assert.Equal(t, userID.String(), args[len(args)-1])
}

func TestPublicProfile(t *testing.T) {
	u := &User{ID: uuid.New(), Email: "me@example.com", Name: "Me"}
	public := u.PublicProfile()

	assert.Empty(t, public.Email)
	assert.Equal(t, "Me", public.Name)
	assert.Equal(t, "me@example.com", u.Email)
}

// setupTestDB connects to the database named by DATABASE_URL and applies migrations.
// Skipped if DATABASE_URL is not set or connection fails
func setupTestDB(t *testing.T) *DB {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("Skipping integration test: DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := Connect(ctx, dbURL)
	if err != nil {
		t.Skipf("Skipping integration test: failed to connect to DB: %v", err)
	}
	require.NoError(t, db.Migrate(ctx))
	return db
}

func TestBuildCRUD_Integration(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	userID := uuid.New()
	username := "u" + strings.ReplaceAll(userID.String(), "-", "")[:12]
	user, err := db.UpdateProfile(ctx, userID, "it@example.com", &types.UpdateProfileRequest{Username: username})
	require.NoError(t, err)
	assert.Equal(t, username, *user.Username)

	found, err := db.GetUserByUsername(ctx, username)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, userID, found.ID)

	created, err := db.CreateBuild(ctx, userID, sampleInput())
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", created.DurationStart)
	assert.Nil(t, created.DurationEnd)
	assert.Equal(t, StringArray{"go", "api"}, created.Tags)

	in := sampleInput()
	in.IsPublic = false
	in.DurationEnd = types.StringPtr("2024-02-01")
	updated, err := db.UpdateBuild(ctx, userID, created.ID, in)
	require.NoError(t, err)
	require.NotNil(t, updated.DurationEnd)
	assert.Equal(t, "2024-02-01", *updated.DurationEnd)

	_, err = db.UpdateBuild(ctx, uuid.New(), created.ID, in)
	assert.ErrorIs(t, err, ErrNotFound)

	public, err := db.ListBuildsByUser(ctx, userID, true)
	require.NoError(t, err)
	assert.Empty(t, public)

	all, err := db.ListBuildsByUser(ctx, userID, false)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	assert.ErrorIs(t, db.DeleteBuild(ctx, uuid.New(), created.ID), ErrNotFound)
	require.NoError(t, db.DeleteBuild(ctx, userID, created.ID))

	gone, err := db.GetBuild(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}
