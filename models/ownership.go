package models

// Ownership records that a user claims a part. A user claims a given part at most once.
type Ownership struct {
	ID       int64  `db:"id" json:"id"`
	OwnerID  int64  `db:"owner_id" json:"owner_id"`
	PartID   int64  `db:"part_id" json:"part_id"`
	PartName string `json:"part_name,omitempty"`
	PartType string `json:"part_type,omitempty"`
}
