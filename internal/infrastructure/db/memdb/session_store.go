// Package memdb provides an in-memory session store driver built on
// hashicorp/go-memdb. It backs development setups and tests where no Redis is
// available; sessions do not survive a restart.
package memdb

import (
	"context"

	"github.com/hashicorp/go-memdb"

	"github.com/astroline/admin-gateway/internal/core/domain"
	"github.com/astroline/admin-gateway/internal/core/ports"
)

var schema = &memdb.DBSchema{
	Tables: map[string]*memdb.TableSchema{
		"sessions": {
			Name: "sessions",
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:    "id",
					Unique:  true,
					Indexer: &memdb.StringFieldIndex{Field: "ID"},
				},
				"token": {
					Name:    "token",
					Unique:  false,
					Indexer: &memdb.StringFieldIndex{Field: "Token"},
				},
			},
		},
	},
}

// SessionStore is the in-memory session store driver.
type SessionStore struct {
	db *memdb.MemDB
}

var _ ports.SessionStore = (*SessionStore)(nil)

// NewSessionStore creates an empty in-memory session store.
func NewSessionStore() (*SessionStore, error) {
	db, err := memdb.NewMemDB(schema)
	if err != nil {
		return nil, err
	}
	return &SessionStore{db: db}, nil
}

func (s *SessionStore) Save(_ context.Context, session *domain.Session) error {
	txn := s.db.Txn(true)
	defer txn.Abort()
	if err := txn.Insert("sessions", clone(session)); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

func (s *SessionStore) Get(_ context.Context, id string) (*domain.Session, error) {
	txn := s.db.Txn(false)
	obj, err := txn.First("sessions", "id", id)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, domain.ErrSessionNotFound
	}
	return clone(obj.(*domain.Session)), nil
}

func (s *SessionStore) SetUser(ctx context.Context, id string, user *domain.User) error {
	txn := s.db.Txn(true)
	defer txn.Abort()

	obj, err := txn.First("sessions", "id", id)
	if err != nil {
		return err
	}
	if obj == nil {
		return domain.ErrSessionNotFound
	}

	updated := clone(obj.(*domain.Session))
	updated.User = user
	if err := txn.Insert("sessions", updated); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	txn := s.db.Txn(true)
	defer txn.Abort()
	if _, err := txn.DeleteAll("sessions", "id", id); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

func (s *SessionStore) DeleteByToken(_ context.Context, token string) (int, error) {
	txn := s.db.Txn(true)
	defer txn.Abort()
	n, err := txn.DeleteAll("sessions", "token", token)
	if err != nil {
		return 0, err
	}
	txn.Commit()
	return n, nil
}

// clone keeps stored sessions isolated from caller mutations.
func clone(session *domain.Session) *domain.Session {
	copied := *session
	if session.User != nil {
		user := *session.User
		copied.User = &user
	}
	return &copied
}
