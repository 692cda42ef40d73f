package repository

import (
	"context"
	"errors"
	"testing"

	"partsCatalog/internal/testutil"
	"partsCatalog/models"
)

func TestUserRepository_CRUDAndQueries(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "userrepo")
	repo := NewUserRepository(d)
	ctx := context.Background()

	// Create
	u, err := repo.Create(ctx, &models.User{Username: "alice", Email: "alice@example.com", PasswordHash: "h"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.ID == 0 || u.Username != "alice" || u.Role != models.RoleRegular || u.CreatedAt.IsZero() {
		t.Fatalf("unexpected created user: %+v", u)
	}

	// GetByID
	g, err := repo.GetByID(ctx, u.ID)
	if err != nil || g == nil || g.Email != "alice@example.com" {
		t.Fatalf("get by id: %v %+v", err, g)
	}

	// GetByEmail
	g2, err := repo.GetByEmail(ctx, "alice@example.com")
	if err != nil || g2 == nil || g2.ID != u.ID {
		t.Fatalf("get by email: %v %+v", err, g2)
	}
	missing, err := repo.GetByEmail(ctx, "nobody@example.com")
	if err != nil || missing != nil {
		t.Fatalf("expected nil for missing email, got %+v err=%v", missing, err)
	}

	// List
	list, err := repo.List(ctx, 10, 0)
	if err != nil || len(list) != 1 {
		t.Fatalf("list: %v len=%d", err, len(list))
	}

	// UpdateRole / UpdateRoleByEmail
	if err := repo.UpdateRole(ctx, u.ID, models.RoleAdmin); err != nil {
		t.Fatalf("update role: %v", err)
	}
	g4, _ := repo.GetByID(ctx, u.ID)
	if !g4.IsAdmin() {
		t.Fatalf("role not updated: %+v", g4)
	}
	if err := repo.UpdateRoleByEmail(ctx, "alice@example.com", models.RoleRegular); err != nil {
		t.Fatalf("update role by email: %v", err)
	}
	if err := repo.UpdateRoleByEmail(ctx, "ghost@example.com", models.RoleAdmin); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown email, got %v", err)
	}

	// Delete
	if err := repo.Delete(ctx, u.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	gone, err := repo.GetByID(ctx, u.ID)
	if err != nil || gone != nil {
		t.Fatalf("expected user deleted, got: %+v err=%v", gone, err)
	}
	if err := repo.Delete(ctx, u.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestUserRepository_CreateConflicts(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "userconflict")
	repo := NewUserRepository(d)
	ctx := context.Background()

	if _, err := repo.Create(ctx, &models.User{Username: "bob", Email: "bob@example.com", PasswordHash: "h"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	tests := []struct {
		name string
		user models.User
	}{
		{"same username", models.User{Username: "bob", Email: "other@example.com", PasswordHash: "h"}},
		{"same email", models.User{Username: "other", Email: "bob@example.com", PasswordHash: "h"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := tt.user
			if _, err := repo.Create(ctx, &u); !errors.Is(err, ErrConflict) {
				t.Fatalf("expected ErrConflict, got %v", err)
			}
		})
	}
}

func TestUserRepository_ListRoles(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "userroles")
	repo := NewUserRepository(d)

	roles, err := repo.ListRoles(context.Background())
	if err != nil {
		t.Fatalf("list roles: %v", err)
	}
	if len(roles) != 2 || roles[0].ID != models.RoleAdmin || roles[0].Name != "admin" || roles[1].ID != models.RoleRegular {
		t.Fatalf("unexpected roles: %+v", roles)
	}
}
