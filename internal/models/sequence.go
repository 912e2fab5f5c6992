package models

// OrderSequence is the per-day order number counter. One document per
// dateKey (YYYYMMDD); Next is only ever moved by an atomic upsert+$inc.
type OrderSequence struct {
	DateKey string `bson:"_id" json:"dateKey"`
	Next    int64  `bson:"next" json:"next"`
}
