package repository

import (
	"context"
	"database/sql"
	"time"

	"partsCatalog/internal/db"
	"partsCatalog/models"
)

type OwnershipRepository struct {
	db *db.DB
}

func NewOwnershipRepository(d *db.DB) *OwnershipRepository {
	return &OwnershipRepository{db: d}
}

// Add records that ownerID claims partID. Returns ErrNotFound for an unknown
// part and ErrConflict when the claim already exists.
func (r *OwnershipRepository) Add(ctx context.Context, ownerID, partID int64) (*models.Ownership, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	o := &models.Ownership{OwnerID: ownerID, PartID: partID}
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		ok, err := exists(ctx, r.db, tx, "parts", partID)
		if err != nil {
			return err
		}
		if !ok {
			return notFound("part")
		}
		err = tx.QueryRowContext(ctx, r.db.Rebind(`INSERT INTO ownership (owner_id, part_id) VALUES (?, ?) RETURNING id`), ownerID, partID).Scan(&o.ID)
		if err != nil {
			if isUniqueViolation(err) {
				return conflict("ownership", err)
			}
			if isForeignKeyViolation(err) {
				return notFound("user")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

// ListByOwner returns the owner's claims with the part name and type.
func (r *OwnershipRepository) ListByOwner(ctx context.Context, ownerID int64) ([]models.Ownership, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(`SELECT o.id, o.owner_id, o.part_id, p.name, pt.name
		FROM ownership o
		JOIN parts p ON p.id = o.part_id
		JOIN part_types pt ON pt.id = p.type_id
		WHERE o.owner_id = ?
		ORDER BY o.id`), ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.Ownership{}
	for rows.Next() {
		var o models.Ownership
		if err := rows.Scan(&o.ID, &o.OwnerID, &o.PartID, &o.PartName, &o.PartType); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// Remove deletes the owner's claim on partID.
func (r *OwnershipRepository) Remove(ctx context.Context, ownerID, partID int64) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM ownership WHERE owner_id = ? AND part_id = ?`), ownerID, partID)
	if err != nil {
		return err
	}
	return rowsAffected(res, "ownership")
}
