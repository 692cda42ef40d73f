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

// PartRepository stores parts together with their stats rows. Every multi-row
// write runs in a single transaction.
type PartRepository struct {
	db           *db.DB
	types        *PartTypeRepository
	restrictions *RestrictionRepository
}

func NewPartRepository(d *db.DB) *PartRepository {
	return &PartRepository{
		db:           d,
		types:        NewPartTypeRepository(d),
		restrictions: NewRestrictionRepository(d),
	}
}

const partSelect = `SELECT p.id, p.name, p.stats_id, p.color, p.type_id, pt.name, p.restriction_id, r.description, p.description,
       s.id, s.min_attack, s.max_attack, s.min_defense, s.max_defense, s.min_stamina, s.max_stamina, s.weight, s.burst, s.dash
FROM parts p
JOIN part_types pt ON pt.id = p.type_id
LEFT JOIN restrictions r ON r.id = p.restriction_id
LEFT JOIN stats s ON s.id = p.stats_id`

func scanPart(row interface{ Scan(...any) error }) (*models.Part, error) {
	var (
		p              models.Part
		statsID        sql.NullInt64
		restrictionID  sql.NullInt64
		restrictionTxt sql.NullString
		sID            sql.NullInt64
		minAtk, maxAtk sql.NullInt64
		minDef, maxDef sql.NullInt64
		minSta, maxSta sql.NullInt64
		weight         sql.NullFloat64
		burst, dash    sql.NullInt64
	)
	if err := row.Scan(&p.ID, &p.Name, &statsID, &p.Color, &p.TypeID, &p.Type, &restrictionID, &restrictionTxt, &p.Description,
		&sID, &minAtk, &maxAtk, &minDef, &maxDef, &minSta, &maxSta, &weight, &burst, &dash); err != nil {
		return nil, err
	}
	p.StatsID = int64Ptr(statsID)
	p.RestrictionID = int64Ptr(restrictionID)
	if restrictionID.Valid && restrictionTxt.Valid {
		p.Restriction = &models.Restriction{ID: restrictionID.Int64, Description: restrictionTxt.String}
	}
	if sID.Valid {
		p.Stats = &models.Stats{
			ID:         sID.Int64,
			MinAttack:  int64Ptr(minAtk),
			MaxAttack:  int64Ptr(maxAtk),
			MinDefense: int64Ptr(minDef),
			MaxDefense: int64Ptr(maxDef),
			MinStamina: int64Ptr(minSta),
			MaxStamina: int64Ptr(maxSta),
			Weight:     float64Ptr(weight),
			Burst:      int64Ptr(burst),
			Dash:       int64Ptr(dash),
		}
	}
	return &p, nil
}

// GetByID returns nil, nil when the part does not exist.
func (r *PartRepository) GetByID(ctx context.Context, id int64) (*models.Part, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	p, err := scanPart(r.db.QueryRowContext(ctx, r.db.Rebind(partSelect+` WHERE p.id = ?`), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

// List returns every part with its type, restriction and stats, optionally
// filtered by part type name.
func (r *PartRepository) List(ctx context.Context, typeName string) ([]models.Part, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := partSelect
	var args []any
	if typeName = strings.TrimSpace(typeName); typeName != "" {
		query += ` WHERE pt.name = ?`
		args = append(args, typeName)
	}
	query += ` ORDER BY p.id`

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.Part{}
	for rows.Next() {
		p, err := scanPart(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// Create resolves the type by name and the optional restriction by id, inserts
// the part, inserts its stats keyed by the part id and links them. Nothing is
// persisted when any step fails.
func (r *PartRepository) Create(ctx context.Context, in models.PartInput) (*models.Part, error) {
	if err := validatePartInput(in); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var id int64
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		typeID, err := r.resolveRefs(ctx, tx, in)
		if err != nil {
			return err
		}
		err = tx.QueryRowContext(ctx, r.db.Rebind(`INSERT INTO parts (name, color, type_id, restriction_id, description) VALUES (?, ?, ?, ?, ?) RETURNING id`),
			in.Name, in.Color, typeID, in.RestrictionID, in.Description).Scan(&id)
		if err != nil {
			return err
		}
		s := in.Stats
		if _, err := tx.ExecContext(ctx, r.db.Rebind(`INSERT INTO stats (id, min_attack, max_attack, min_defense, max_defense, min_stamina, max_stamina, weight, burst, dash)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			id, s.MinAttack, s.MaxAttack, s.MinDefense, s.MaxDefense, s.MinStamina, s.MaxStamina, s.Weight, s.Burst, s.Dash); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, r.db.Rebind(`UPDATE parts SET stats_id = ? WHERE id = ?`), id, id)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n != 1 {
			return ErrIntegrity
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.mustGet(ctx, id)
}

// Update overwrites every part field and every stat field of an existing part.
func (r *PartRepository) Update(ctx context.Context, id int64, in models.PartInput) (*models.Part, error) {
	if err := validatePartInput(in); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		statsID, err := r.statsIDOf(ctx, tx, id)
		if err != nil {
			return err
		}
		typeID, err := r.resolveRefs(ctx, tx, in)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, r.db.Rebind(`UPDATE parts SET name = ?, color = ?, type_id = ?, restriction_id = ?, description = ? WHERE id = ?`),
			in.Name, in.Color, typeID, in.RestrictionID, in.Description, id); err != nil {
			return err
		}
		s := in.Stats
		res, err := tx.ExecContext(ctx, r.db.Rebind(`UPDATE stats SET min_attack = ?, max_attack = ?, min_defense = ?, max_defense = ?,
			min_stamina = ?, max_stamina = ?, weight = ?, burst = ?, dash = ? WHERE id = ?`),
			s.MinAttack, s.MaxAttack, s.MinDefense, s.MaxDefense, s.MinStamina, s.MaxStamina, s.Weight, s.Burst, s.Dash, statsID)
		if err != nil {
			return err
		}
		return rowsAffected(res, "stats")
	})
	if err != nil {
		return nil, err
	}
	return r.mustGet(ctx, id)
}

// Delete removes the part and its stats row together. A part still used by a
// combo is refused with ErrInUse; its ownership rows cascade.
func (r *PartRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		statsID, err := r.statsIDOf(ctx, tx, id)
		if err != nil {
			return err
		}
		ok, err := exists(ctx, r.db, tx, "stats", statsID)
		if err != nil {
			return err
		}
		if !ok {
			return notFound("stats")
		}
		if _, err := tx.ExecContext(ctx, r.db.Rebind(`DELETE FROM parts WHERE id = ?`), id); err != nil {
			if isForeignKeyViolation(err) {
				return inUse("part", err)
			}
			return err
		}
		res, err := tx.ExecContext(ctx, r.db.Rebind(`DELETE FROM stats WHERE id = ?`), statsID)
		if err != nil {
			return err
		}
		return rowsAffected(res, "stats")
	})
}

// statsIDOf returns the stats id linked to the part, failing not-found when the
// part is missing or has no stats attached.
func (r *PartRepository) statsIDOf(ctx context.Context, tx *sql.Tx, id int64) (int64, error) {
	var statsID sql.NullInt64
	err := tx.QueryRowContext(ctx, r.db.Rebind(`SELECT stats_id FROM parts WHERE id = ?`), id).Scan(&statsID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, notFound("part")
	}
	if err != nil {
		return 0, err
	}
	if !statsID.Valid {
		return 0, notFound("stats")
	}
	return statsID.Int64, nil
}

// resolveRefs looks up the part type id by name and checks the restriction exists.
func (r *PartRepository) resolveRefs(ctx context.Context, tx *sql.Tx, in models.PartInput) (int64, error) {
	pt, err := r.types.getByName(ctx, tx, in.TypeName)
	if err != nil {
		return 0, err
	}
	if pt == nil {
		return 0, notFound("part type")
	}
	if in.RestrictionID != nil {
		rs, err := r.restrictions.getByID(ctx, tx, *in.RestrictionID)
		if err != nil {
			return 0, err
		}
		if rs == nil {
			return 0, notFound("restriction")
		}
	}
	return pt.ID, nil
}

func (r *PartRepository) mustGet(ctx context.Context, id int64) (*models.Part, error) {
	p, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrIntegrity
	}
	return p, nil
}

func validatePartInput(in models.PartInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return invalid("name is required")
	}
	if strings.TrimSpace(in.TypeName) == "" {
		return invalid("type is required")
	}
	return nil
}
