//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"chat-relay/domain"
	errs "chat-relay/errors"

	"github.com/dgraph-io/badger/v4"
)

const (
	userIDPrefix   = "user:id:"
	userNamePrefix = "user:name:"
	userSequence   = "seq:user"
	sequenceLease  = 100
)

type IUserRepository interface {
	CreateUser(username, email, hashedPassword string) (domain.Identity, error)
	GetUserByID(id int64) (domain.Identity, error)
	GetUserByUsername(username string) (domain.Identity, error)
	SetOnline(username string, online bool) error
}

type UserRepository struct {
	db  *badger.DB
	seq *badger.Sequence
	now func() time.Time
}

// NewUserRepository leases ids from a badger sequence. Close releases the lease.
func NewUserRepository(db *badger.DB) (*UserRepository, error) {
	seq, err := db.GetSequence([]byte(userSequence), sequenceLease)
	if err != nil {
		return nil, fmt.Errorf("user sequence: %w", err)
	}
	return &UserRepository{db: db, seq: seq, now: time.Now}, nil
}

func (u *UserRepository) Close() error {
	return u.seq.Release()
}

// CreateUser persists a new identity under both its id and its username.
// The username key is read inside the transaction, so two concurrent
// registrations of the same name conflict and only one commits.
func (u *UserRepository) CreateUser(username, email, hashedPassword string) (domain.Identity, error) {
	next, err := u.seq.Next()
	if err != nil {
		return domain.Identity{}, err
	}
	identity := domain.Identity{
		ID:           int64(next) + 1,
		Username:     username,
		PasswordHash: hashedPassword,
		Email:        email,
		CreatedAt:    u.now().UTC(),
	}
	err = u.db.Update(func(txn *badger.Txn) error {
		nameKey := []byte(userNamePrefix + username)
		_, err := txn.Get(nameKey)
		switch {
		case err == nil:
			return errs.ErrUserAlreadyExists
		case !errors.Is(err, badger.ErrKeyNotFound):
			return err
		}
		if err := txn.Set(nameKey, idBytes(identity.ID)); err != nil {
			return err
		}
		return txn.Set(userIDKey(identity.ID), encodeIdentity(identity))
	})
	if errors.Is(err, badger.ErrConflict) {
		return domain.Identity{}, errs.ErrUserAlreadyExists
	}
	if err != nil {
		return domain.Identity{}, err
	}
	return identity, nil
}

func (u *UserRepository) GetUserByID(id int64) (domain.Identity, error) {
	var identity domain.Identity
	err := u.db.View(func(txn *badger.Txn) error {
		var err error
		identity, err = getIdentity(txn, id)
		return err
	})
	return identity, err
}

func (u *UserRepository) GetUserByUsername(username string) (domain.Identity, error) {
	var identity domain.Identity
	err := u.db.View(func(txn *badger.Txn) error {
		id, err := lookupID(txn, username)
		if err != nil {
			return err
		}
		identity, err = getIdentity(txn, id)
		return err
	})
	return identity, err
}

// SetOnline rewrites the projected presence flag of a user.
func (u *UserRepository) SetOnline(username string, online bool) error {
	return u.db.Update(func(txn *badger.Txn) error {
		id, err := lookupID(txn, username)
		if err != nil {
			return err
		}
		identity, err := getIdentity(txn, id)
		if err != nil {
			return err
		}
		if identity.Online == online {
			return nil
		}
		identity.Online = online
		return txn.Set(userIDKey(id), encodeIdentity(identity))
	})
}

func lookupID(txn *badger.Txn, username string) (int64, error) {
	item, err := txn.Get([]byte(userNamePrefix + username))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, errs.ErrUserNotFound
	}
	if err != nil {
		return 0, err
	}
	var id int64
	err = item.Value(func(val []byte) error {
		if len(val) != 8 {
			return fmt.Errorf("corrupted id for %q", username)
		}
		id = int64(binary.BigEndian.Uint64(val))
		return nil
	})
	return id, err
}

func getIdentity(txn *badger.Txn, id int64) (domain.Identity, error) {
	item, err := txn.Get(userIDKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.Identity{}, errs.ErrUserNotFound
	}
	if err != nil {
		return domain.Identity{}, err
	}
	var identity domain.Identity
	err = item.Value(func(val []byte) error {
		identity, err = decodeIdentity(val)
		return err
	})
	return identity, err
}

func userIDKey(id int64) []byte {
	return []byte(fmt.Sprintf("%s%019d", userIDPrefix, id))
}

func idBytes(id int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(id))
	return b
}
