package models

import "time"

// Combo is an assembly of parts within a product line.
// MainBlade, Ratchet and Bit are required slots; LockChip and AssistBlade are optional.
type Combo struct {
	ID          int64     `db:"id" json:"id"`
	IsStock     bool      `db:"is_stock" json:"is_stock"`
	LineID      int64     `db:"line_id" json:"line_id"`
	Line        string    `json:"line"`
	LockChip    *int64    `db:"lock_chip" json:"lock_chip"`
	MainBlade   int64     `db:"main_blade" json:"main_blade"`
	AssistBlade *int64    `db:"assist_blade" json:"assist_blade"`
	Ratchet     int64     `db:"ratchet" json:"ratchet"`
	Bit         int64     `db:"bit" json:"bit"`
	ComboType   string    `db:"combo_type" json:"combo_type"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// PartIDs returns the ids of every filled slot.
func (c *Combo) PartIDs() []int64 {
	ids := []int64{c.MainBlade, c.Ratchet, c.Bit}
	if c.LockChip != nil {
		ids = append(ids, *c.LockChip)
	}
	if c.AssistBlade != nil {
		ids = append(ids, *c.AssistBlade)
	}
	return ids
}
