package repository

import (
	"context"

	"partsCatalog/models"
)

// UserRepositoryI defines operations on User entities.
type UserRepositoryI interface {
	Create(ctx context.Context, u *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]models.User, error)
	Delete(ctx context.Context, id int64) error
	UpdateRole(ctx context.Context, id int64, role models.Role) error
	ListRoles(ctx context.Context) ([]models.UserType, error)
}

// PartTypeRepositoryI defines operations on the part type lookup table.
type PartTypeRepositoryI interface {
	Create(ctx context.Context, name string) (*models.PartType, error)
	List(ctx context.Context) ([]models.PartType, error)
	Delete(ctx context.Context, id int64) error
}

// RestrictionRepositoryI defines operations on the restriction lookup table.
type RestrictionRepositoryI interface {
	Create(ctx context.Context, description string) (*models.Restriction, error)
	List(ctx context.Context) ([]models.Restriction, error)
	Delete(ctx context.Context, id int64) error
}

// LineRepositoryI defines operations on the line lookup table.
type LineRepositoryI interface {
	Create(ctx context.Context, name string) (*models.Line, error)
	List(ctx context.Context) ([]models.Line, error)
	Delete(ctx context.Context, id int64) error
}

// PartRepositoryI defines operations on Part entities and their stats.
type PartRepositoryI interface {
	Create(ctx context.Context, in models.PartInput) (*models.Part, error)
	GetByID(ctx context.Context, id int64) (*models.Part, error)
	List(ctx context.Context, typeName string) ([]models.Part, error)
	Update(ctx context.Context, id int64, in models.PartInput) (*models.Part, error)
	Delete(ctx context.Context, id int64) error
}

// ComboRepositoryI defines operations on Combo entities.
type ComboRepositoryI interface {
	Create(ctx context.Context, c *models.Combo) (*models.Combo, error)
	GetByID(ctx context.Context, id int64) (*models.Combo, error)
	List(ctx context.Context, comboType string) ([]models.Combo, error)
	Delete(ctx context.Context, id int64) error
}

// OwnershipRepositoryI defines operations on Ownership entities.
type OwnershipRepositoryI interface {
	Add(ctx context.Context, ownerID, partID int64) (*models.Ownership, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]models.Ownership, error)
	Remove(ctx context.Context, ownerID, partID int64) error
}

var (
	_ UserRepositoryI        = (*UserRepository)(nil)
	_ PartTypeRepositoryI    = (*PartTypeRepository)(nil)
	_ RestrictionRepositoryI = (*RestrictionRepository)(nil)
	_ LineRepositoryI        = (*LineRepository)(nil)
	_ PartRepositoryI        = (*PartRepository)(nil)
	_ ComboRepositoryI       = (*ComboRepository)(nil)
	_ OwnershipRepositoryI   = (*OwnershipRepository)(nil)
)
