package models

// PartType classifies parts (blade, ratchet, bit, ...).
type PartType struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Restriction is an optional tournament/compliance restriction a part may carry.
type Restriction struct {
	ID          int64  `db:"id" json:"id"`
	Description string `db:"description" json:"description"`
}

// Line is a product line grouping combos.
type Line struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}
