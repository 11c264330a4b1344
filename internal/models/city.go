package models

// City is the authoritative city record. Postgres owns it; the search index
// holds a derived copy keyed by the same ID.
type City struct {
	ID          int64  `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"not null;index" json:"name"`
	State       string `gorm:"not null;index" json:"state"`
	Population  int64  `gorm:"not null;default:0;index" json:"population"`
	Description string `gorm:"type:text" json:"description"`
}

// TableName returns the default table name; repositories may override it
func (City) TableName() string {
	return "cities"
}
