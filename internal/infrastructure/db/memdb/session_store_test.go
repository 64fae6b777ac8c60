package memdb

import (
	"context"
	"testing"
	"time"

	"github.com/astroline/admin-gateway/internal/core/domain"
)

func newStore(t *testing.T) *SessionStore {
	t.Helper()
	s, err := NewSessionStore()
	if err != nil {
		t.Fatalf("NewSessionStore: %v", err)
	}
	return s
}

func testSession(id, token string) *domain.Session {
	return &domain.Session{
		ID:        id,
		Token:     token,
		User:      &domain.User{ID: "u1", Email: "admin@example.com", Role: domain.RoleAdmin},
		CreatedAt: time.Now().UTC(),
	}
}

func TestSessionStore_SaveAndGet(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, testSession("s1", "tok-1")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Token != "tok-1" || got.User == nil || got.User.Email != "admin@example.com" {
		t.Fatalf("unexpected session: %+v", got)
	}
}

func TestSessionStore_LastWriteWins(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	_ = s.Save(ctx, testSession("s1", "tok-old"))
	_ = s.Save(ctx, testSession("s1", "tok-new"))

	got, err := s.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Token != "tok-new" {
		t.Fatalf("expected latest token, got %q", got.Token)
	}
}

func TestSessionStore_GetUnknown(t *testing.T) {
	s := newStore(t)
	if _, err := s.Get(context.Background(), "nope"); err != domain.ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionStore_Delete(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	_ = s.Save(ctx, testSession("s1", "tok-1"))
	if err := s.Delete(ctx, "s1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "s1"); err != domain.ErrSessionNotFound {
		t.Fatalf("expected session gone, got %v", err)
	}

	// deleting an unknown ID is not an error
	if err := s.Delete(ctx, "nope"); err != nil {
		t.Fatalf("Delete unknown: %v", err)
	}
}

func TestSessionStore_DeleteByToken(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	_ = s.Save(ctx, testSession("s1", "shared"))
	_ = s.Save(ctx, testSession("s2", "shared"))
	_ = s.Save(ctx, testSession("s3", "other"))

	n, err := s.DeleteByToken(ctx, "shared")
	if err != nil {
		t.Fatalf("DeleteByToken: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 evictions, got %d", n)
	}
	if _, err := s.Get(ctx, "s3"); err != nil {
		t.Fatalf("unrelated session must survive: %v", err)
	}
}

func TestSessionStore_SetUser(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	_ = s.Save(ctx, testSession("s1", "tok-1"))
	if err := s.SetUser(ctx, "s1", &domain.User{ID: "u1", Name: "Renamed"}); err != nil {
		t.Fatalf("SetUser: %v", err)
	}

	got, _ := s.Get(ctx, "s1")
	if got.User == nil || got.User.Name != "Renamed" {
		t.Fatalf("user not refreshed: %+v", got.User)
	}

	if err := s.SetUser(ctx, "nope", &domain.User{}); err != domain.ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionStore_ReturnsCopies(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	_ = s.Save(ctx, testSession("s1", "tok-1"))
	got, _ := s.Get(ctx, "s1")
	got.User.Name = "mutated"

	again, _ := s.Get(ctx, "s1")
	if again.User.Name == "mutated" {
		t.Fatalf("store handed out shared state")
	}
}
