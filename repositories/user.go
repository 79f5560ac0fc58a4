//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

const userPrefix = "user:"

type IUserRepository interface {
	UpsertUser(username, publicKey string) error
	LoadUsers() (map[string]string, error)
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) IUserRepository {
	return &UserRepository{db: db}
}

// UpsertUser persists a user's public key PEM under "user:{username}".
// Last login wins: an existing record is overwritten unconditionally.
func (u UserRepository) UpsertUser(username, publicKey string) error {
	err := u.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(userPrefix+username), []byte(publicKey))
	})
	if err != nil {
		return fmt.Errorf("upsert user %s: %w", username, err)
	}
	return nil
}

// LoadUsers hydrates the full username -> public key PEM directory.
// Called once at server startup, never on the message hot path.
func (u UserRepository) LoadUsers() (map[string]string, error) {
	users := make(map[string]string)
	err := u.db.View(func(txn *badger.Txn) error {
		prefix := []byte(userPrefix)
		options := badger.DefaultIteratorOptions
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			username := string(item.Key()[len(prefix):])
			err := item.Value(func(val []byte) error {
				users[username] = string(val)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	return users, nil
}
