package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"partsCatalog/internal/db"
	"partsCatalog/models"
)

type ComboRepository struct {
	db    *db.DB
	lines *LineRepository
}

func NewComboRepository(d *db.DB) *ComboRepository {
	return &ComboRepository{db: d, lines: NewLineRepository(d)}
}

const comboSelect = `SELECT c.id, c.is_stock, c.line_id, l.name, c.lock_chip, c.main_blade, c.assist_blade, c.ratchet, c.bit,
       c.combo_type, c.description, c.created_at
FROM combos c
JOIN lines l ON l.id = c.line_id`

func scanCombo(row interface{ Scan(...any) error }) (*models.Combo, error) {
	var c models.Combo
	var lockChip, assistBlade sql.NullInt64
	if err := row.Scan(&c.ID, &c.IsStock, &c.LineID, &c.Line, &lockChip, &c.MainBlade, &assistBlade, &c.Ratchet, &c.Bit,
		&c.ComboType, &c.Description, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.LockChip = int64Ptr(lockChip)
	c.AssistBlade = int64Ptr(assistBlade)
	return &c, nil
}

// Create validates that the line and every referenced part exist, then inserts the combo.
func (r *ComboRepository) Create(ctx context.Context, c *models.Combo) (*models.Combo, error) {
	if c == nil {
		return nil, errors.New("combo is nil")
	}
	if c.LineID == 0 {
		return nil, invalid("line_id is required")
	}
	if c.MainBlade == 0 || c.Ratchet == 0 || c.Bit == 0 {
		return nil, invalid("main_blade, ratchet and bit are required")
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var id int64
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		line, err := r.lines.getByID(ctx, tx, c.LineID)
		if err != nil {
			return err
		}
		if line == nil {
			return notFound("line")
		}
		for _, partID := range c.PartIDs() {
			ok, err := exists(ctx, r.db, tx, "parts", partID)
			if err != nil {
				return err
			}
			if !ok {
				return notFound("part")
			}
		}
		return tx.QueryRowContext(ctx, r.db.Rebind(`INSERT INTO combos (is_stock, line_id, lock_chip, main_blade, assist_blade, ratchet, bit, combo_type, description)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`),
			c.IsStock, c.LineID, c.LockChip, c.MainBlade, c.AssistBlade, c.Ratchet, c.Bit, strings.TrimSpace(c.ComboType), c.Description).Scan(&id)
	})
	if err != nil {
		return nil, err
	}
	created, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, ErrIntegrity
	}
	return created, nil
}

// GetByID returns nil, nil when the combo does not exist.
func (r *ComboRepository) GetByID(ctx context.Context, id int64) (*models.Combo, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	c, err := scanCombo(r.db.QueryRowContext(ctx, r.db.Rebind(comboSelect+` WHERE c.id = ?`), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

// List returns all combos, newest last. A non-empty comboType filters on combo_type.
func (r *ComboRepository) List(ctx context.Context, comboType string) ([]models.Combo, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := comboSelect
	var args []any
	if comboType = strings.TrimSpace(comboType); comboType != "" {
		query += ` WHERE c.combo_type = ?`
		args = append(args, comboType)
	}
	query += ` ORDER BY c.id`

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.Combo{}
	for rows.Next() {
		c, err := scanCombo(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *ComboRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM combos WHERE id = ?`), id)
	if err != nil {
		return err
	}
	return rowsAffected(res, "combo")
}
