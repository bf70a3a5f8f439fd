package models

// OrderSequence is the per-(prefix, project, day) counter behind
// business-key generation. A key is handed out by bumping seq with an
// atomic UPDATE ... SET seq = seq + 1 and reading the row back, so two
// writers on the same key serialize on the row instead of both reading
// the same count.
type OrderSequence struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Prefix    string `gorm:"size:10;not null;uniqueIndex:idx_seq_key" json:"prefix"`
	ProjectID string `gorm:"size:50;not null;uniqueIndex:idx_seq_key" json:"project_id"`
	DateKey   string `gorm:"size:8;not null;uniqueIndex:idx_seq_key" json:"date_key"`
	Seq       int    `gorm:"not null;default:0" json:"seq"`
}

func (OrderSequence) TableName() string { return "order_sequences" }
