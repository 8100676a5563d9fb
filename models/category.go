package models

// CategorySummary is a category label together with the number of
// forfaits carrying it. Categories are free labels stored on each forfait,
// not rows of their own.
type CategorySummary struct {
	Name  string `gorm:"column:categorie"`
	Total int64  `gorm:"column:total"`
}
