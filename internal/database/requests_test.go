package database

import (
	"context"
	"testing"

	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedRequest(t *testing.T, db *DB, authorID int64, description string) *models.ItemRequest {
	r := &models.ItemRequest{AuthorID: authorID, Description: description}
	require.NoError(t, db.CreateRequest(context.Background(), r))
	return r
}

func TestCreateAndGetRequest(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	author := seedUser(t, db, "Alice", "alice@example.com")

	r := seedRequest(t, db, author.ID, "need a drill")
	assert.NotZero(t, r.ID)
	assert.False(t, r.CreatedAt.IsZero())

	got, err := db.GetRequest(ctx, r.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, author.ID, got.AuthorID)
	assert.Equal(t, "need a drill", got.Description)

	got, err = db.GetRequest(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRequestsByAuthor(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	alice := seedUser(t, db, "Alice", "alice@example.com")
	bob := seedUser(t, db, "Bob", "bob@example.com")

	older := seedRequest(t, db, alice.ID, "need a drill")
	newer := seedRequest(t, db, alice.ID, "need a ladder")
	seedRequest(t, db, bob.ID, "need a tent")

	requests, err := db.RequestsByAuthor(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, requests, 2)
	assert.Equal(t, newer.ID, requests[0].ID)
	assert.Equal(t, older.ID, requests[1].ID)

	requests, err = db.RequestsByAuthor(ctx, 9999)
	require.NoError(t, err)
	assert.Empty(t, requests)
}

func TestRequestsExcludingAuthor(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	alice := seedUser(t, db, "Alice", "alice@example.com")
	bob := seedUser(t, db, "Bob", "bob@example.com")
	carol := seedUser(t, db, "Carol", "carol@example.com")

	seedRequest(t, db, alice.ID, "need a drill")
	bobReq := seedRequest(t, db, bob.ID, "need a tent")
	carolReq := seedRequest(t, db, carol.ID, "need a saw")

	requests, err := db.RequestsExcludingAuthor(ctx, alice.ID, 0, 20)
	require.NoError(t, err)
	require.Len(t, requests, 2)
	assert.Equal(t, carolReq.ID, requests[0].ID)
	assert.Equal(t, bobReq.ID, requests[1].ID)

	requests, err = db.RequestsExcludingAuthor(ctx, alice.ID, 1, 1)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, bobReq.ID, requests[0].ID)
}
