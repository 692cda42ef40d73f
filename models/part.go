package models

// Part is a catalog item. StatsID is nil until a stats row is attached; once set
// it equals ID because the stats row is keyed by the owning part's id.
type Part struct {
	ID            int64        `db:"id" json:"id"`
	Name          string       `db:"name" json:"name"`
	StatsID       *int64       `db:"stats_id" json:"stats_id"`
	Color         string       `db:"color" json:"color"`
	TypeID        int64        `db:"type_id" json:"type_id"`
	Type          string       `json:"type"`
	RestrictionID *int64       `db:"restriction_id" json:"restriction_id"`
	Restriction   *Restriction `json:"restriction"`
	Description   string       `db:"description" json:"description"`
	Stats         *Stats       `json:"stats"`
}

// Stats is the performance envelope of a part. Every field is optional.
type Stats struct {
	ID         int64    `db:"id" json:"id"`
	MinAttack  *int64   `db:"min_attack" json:"min_attack"`
	MaxAttack  *int64   `db:"max_attack" json:"max_attack"`
	MinDefense *int64   `db:"min_defense" json:"min_defense"`
	MaxDefense *int64   `db:"max_defense" json:"max_defense"`
	MinStamina *int64   `db:"min_stamina" json:"min_stamina"`
	MaxStamina *int64   `db:"max_stamina" json:"max_stamina"`
	Weight     *float64 `db:"weight" json:"weight"`
	Burst      *int64   `db:"burst" json:"burst"`
	Dash       *int64   `db:"dash" json:"dash"`
}

// PartInput carries the writable fields of a part. The type is referenced by
// name and the restriction by id, both resolved by the repository.
type PartInput struct {
	Name          string
	Color         string
	TypeName      string
	RestrictionID *int64
	Description   string
	Stats         Stats
}
