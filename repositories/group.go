//go:generate go run go.uber.org/mock/mockgen -source=group.go -destination=../mocks/mock_group_repository.go -package=mocks
package repositories

import (
	"fmt"
	"strconv"
	"strings"

	"cipherchat/domain"

	"github.com/dgraph-io/badger/v4"
)

const memberPrefix = "member:"

type IGroupRepository interface {
	AddMembership(username, group string) error
	RemoveMembership(username, group string) error
	LoadMemberships() (map[string]domain.Set, error)
}

type GroupRepository struct {
	db *badger.DB
}

func NewGroupRepository(db *badger.DB) IGroupRepository {
	return &GroupRepository{db: db}
}

// membershipKey formats "member:{len(group)}:{group}{username}". The
// length prefix keeps the encoding injective: group names and usernames
// are arbitrary strings and may both contain the separator.
func membershipKey(username, group string) []byte {
	return []byte(fmt.Sprintf("%s%d:%s%s", memberPrefix, len(group), group, username))
}

// AddMembership persists a (group, username) pair. Idempotent: setting an
// existing key is a no-op at the data level.
func (g GroupRepository) AddMembership(username, group string) error {
	err := g.db.Update(func(txn *badger.Txn) error {
		return txn.Set(membershipKey(username, group), nil)
	})
	if err != nil {
		return fmt.Errorf("add %s to group %s: %w", username, group, err)
	}
	return nil
}

// RemoveMembership deletes a (group, username) pair. Part of the storage
// contract but never invoked by the relay core: membership survives
// disconnects and only an operator-level tool would call this.
func (g GroupRepository) RemoveMembership(username, group string) error {
	err := g.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(membershipKey(username, group))
	})
	if err != nil {
		return fmt.Errorf("remove %s from group %s: %w", username, group, err)
	}
	return nil
}

// LoadMemberships hydrates the full group -> member set map via a prefix
// scan. Called once at server startup.
func (g GroupRepository) LoadMemberships() (map[string]domain.Set, error) {
	groups := make(map[string]domain.Set)
	err := g.db.View(func(txn *badger.Txn) error {
		prefix := []byte(memberPrefix)
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			rest := string(it.Item().Key()[len(prefix):])
			sep := strings.Index(rest, ":")
			if sep < 0 {
				continue
			}
			size, err := strconv.Atoi(rest[:sep])
			if err != nil || size < 0 || sep+1+size > len(rest) {
				continue
			}
			group, username := rest[sep+1:sep+1+size], rest[sep+1+size:]
			if _, ok := groups[group]; !ok {
				groups[group] = make(domain.Set)
			}
			groups[group].Add(username)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load memberships: %w", err)
	}
	return groups, nil
}
