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

// lookupTable is a table of (id, unique text) rows: part types, restrictions, lines.
type lookupTable struct {
	db     *db.DB
	table  string
	column string
	entity string
}

type lookupRow struct {
	id    int64
	value string
}

func (t *lookupTable) create(ctx context.Context, value string) (lookupRow, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return lookupRow{}, invalid(t.column + " is required")
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var id int64
	err := t.db.QueryRowContext(ctx, t.db.Rebind(`INSERT INTO `+t.table+` (`+t.column+`) VALUES (?) RETURNING id`), value).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return lookupRow{}, conflict(t.entity, err)
		}
		return lookupRow{}, err
	}
	return lookupRow{id: id, value: value}, nil
}

func (t *lookupTable) list(ctx context.Context) ([]lookupRow, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := t.db.QueryContext(ctx, `SELECT id, `+t.column+` FROM `+t.table+` ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []lookupRow
	for rows.Next() {
		var lr lookupRow
		if err := rows.Scan(&lr.id, &lr.value); err != nil {
			return nil, err
		}
		out = append(out, lr)
	}
	return out, rows.Err()
}

// get returns ok=false when the id is absent.
func (t *lookupTable) get(ctx context.Context, q queryer, where string, arg any) (lookupRow, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var lr lookupRow
	err := q.QueryRowContext(ctx, t.db.Rebind(`SELECT id, `+t.column+` FROM `+t.table+` WHERE `+where+` = ?`), arg).Scan(&lr.id, &lr.value)
	if errors.Is(err, sql.ErrNoRows) {
		return lookupRow{}, false, nil
	}
	if err != nil {
		return lookupRow{}, false, err
	}
	return lr, true, nil
}

// delete refuses with ErrInUse while other rows still reference the entry.
func (t *lookupTable) delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := t.db.ExecContext(ctx, t.db.Rebind(`DELETE FROM `+t.table+` WHERE id = ?`), id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return inUse(t.entity, err)
		}
		return err
	}
	return rowsAffected(res, t.entity)
}

// PartTypeRepository manages the part_types lookup table.
type PartTypeRepository struct {
	t lookupTable
}

func NewPartTypeRepository(d *db.DB) *PartTypeRepository {
	return &PartTypeRepository{t: lookupTable{db: d, table: "part_types", column: "name", entity: "part type"}}
}

// Create inserts a part type. Returns ErrConflict when the name exists.
func (r *PartTypeRepository) Create(ctx context.Context, name string) (*models.PartType, error) {
	lr, err := r.t.create(ctx, name)
	if err != nil {
		return nil, err
	}
	return &models.PartType{ID: lr.id, Name: lr.value}, nil
}

func (r *PartTypeRepository) List(ctx context.Context) ([]models.PartType, error) {
	rows, err := r.t.list(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.PartType, 0, len(rows))
	for _, lr := range rows {
		out = append(out, models.PartType{ID: lr.id, Name: lr.value})
	}
	return out, nil
}

// getByName returns nil, nil when the name is unknown. Part writes call it with
// their transaction.
func (r *PartTypeRepository) getByName(ctx context.Context, q queryer, name string) (*models.PartType, error) {
	lr, ok, err := r.t.get(ctx, q, "name", name)
	if err != nil || !ok {
		return nil, err
	}
	return &models.PartType{ID: lr.id, Name: lr.value}, nil
}

// Delete returns ErrInUse while parts still carry the type.
func (r *PartTypeRepository) Delete(ctx context.Context, id int64) error {
	return r.t.delete(ctx, id)
}

// RestrictionRepository manages the restrictions lookup table.
type RestrictionRepository struct {
	t lookupTable
}

func NewRestrictionRepository(d *db.DB) *RestrictionRepository {
	return &RestrictionRepository{t: lookupTable{db: d, table: "restrictions", column: "description", entity: "restriction"}}
}

func (r *RestrictionRepository) Create(ctx context.Context, description string) (*models.Restriction, error) {
	lr, err := r.t.create(ctx, description)
	if err != nil {
		return nil, err
	}
	return &models.Restriction{ID: lr.id, Description: lr.value}, nil
}

func (r *RestrictionRepository) List(ctx context.Context) ([]models.Restriction, error) {
	rows, err := r.t.list(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Restriction, 0, len(rows))
	for _, lr := range rows {
		out = append(out, models.Restriction{ID: lr.id, Description: lr.value})
	}
	return out, nil
}

func (r *RestrictionRepository) getByID(ctx context.Context, q queryer, id int64) (*models.Restriction, error) {
	lr, ok, err := r.t.get(ctx, q, "id", id)
	if err != nil || !ok {
		return nil, err
	}
	return &models.Restriction{ID: lr.id, Description: lr.value}, nil
}

// Delete clears the restriction from any part carrying it.
func (r *RestrictionRepository) Delete(ctx context.Context, id int64) error {
	return r.t.delete(ctx, id)
}

// LineRepository manages the lines lookup table.
type LineRepository struct {
	t lookupTable
}

func NewLineRepository(d *db.DB) *LineRepository {
	return &LineRepository{t: lookupTable{db: d, table: "lines", column: "name", entity: "line"}}
}

func (r *LineRepository) Create(ctx context.Context, name string) (*models.Line, error) {
	lr, err := r.t.create(ctx, name)
	if err != nil {
		return nil, err
	}
	return &models.Line{ID: lr.id, Name: lr.value}, nil
}

func (r *LineRepository) List(ctx context.Context) ([]models.Line, error) {
	rows, err := r.t.list(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Line, 0, len(rows))
	for _, lr := range rows {
		out = append(out, models.Line{ID: lr.id, Name: lr.value})
	}
	return out, nil
}

func (r *LineRepository) getByID(ctx context.Context, q queryer, id int64) (*models.Line, error) {
	lr, ok, err := r.t.get(ctx, q, "id", id)
	if err != nil || !ok {
		return nil, err
	}
	return &models.Line{ID: lr.id, Name: lr.value}, nil
}

// Delete returns ErrInUse while combos still belong to the line.
func (r *LineRepository) Delete(ctx context.Context, id int64) error {
	return r.t.delete(ctx, id)
}
