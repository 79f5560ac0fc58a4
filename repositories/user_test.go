package repositories

import (
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func Test_Upsert_And_Load_Users(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openTestDB(t))

	req.NoError(repository.UpsertUser("alice", "PEM-ALICE"))
	req.NoError(repository.UpsertUser("bob", "PEM-BOB"))

	users, err := repository.LoadUsers()
	req.NoError(err)
	req.Equal(map[string]string{"alice": "PEM-ALICE", "bob": "PEM-BOB"}, users)
}

func Test_Upsert_Overwrites_Previous_Key(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openTestDB(t))

	req.NoError(repository.UpsertUser("alice", "PEM-OLD"))
	req.NoError(repository.UpsertUser("alice", "PEM-NEW"))

	users, err := repository.LoadUsers()
	req.NoError(err)
	req.Equal("PEM-NEW", users["alice"])
}

func Test_Load_Users_Empty_Store(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openTestDB(t))

	users, err := repository.LoadUsers()
	req.NoError(err)
	req.Empty(users)
}
