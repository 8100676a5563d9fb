package models

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ForfaitInput holds the caller supplied fields of a forfait.
type ForfaitInput struct {
	Nom         string
	Description string
	Prix        decimal.Decimal
	Image       string
	Categorie   string
}

type ForfaitsRepository struct {
	db *gorm.DB
}

func NewForfaitsRepository(db *gorm.DB) *ForfaitsRepository {
	return &ForfaitsRepository{
		db: db,
	}
}

// GetAll returns every forfait, most recently created first.
func (r *ForfaitsRepository) GetAll(ctx context.Context) ([]Forfait, error) {
	var forfaits []Forfait
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Find(&forfaits).Error; err != nil {
		return nil, translateError(err)
	}
	return forfaits, nil
}

func (r *ForfaitsRepository) GetByID(ctx context.Context, id uint) (*Forfait, error) {
	var forfait Forfait
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Take(&forfait).Error; err != nil {
		return nil, translateError(err)
	}
	return &forfait, nil
}

// GetByCategorie returns the forfaits whose category equals categorie exactly.
func (r *ForfaitsRepository) GetByCategorie(ctx context.Context, categorie string) ([]Forfait, error) {
	var forfaits []Forfait
	if err := r.db.WithContext(ctx).
		Where("categorie = ?", categorie).
		Order("created_at DESC").
		Order("id DESC").
		Find(&forfaits).Error; err != nil {
		return nil, translateError(err)
	}
	return forfaits, nil
}

// Search returns the forfaits whose name or description contains term.
// Case sensitivity is whatever the column collation gives LIKE.
func (r *ForfaitsRepository) Search(ctx context.Context, term string) ([]Forfait, error) {
	pattern := "%" + escapeLike(term) + "%"

	var forfaits []Forfait
	if err := r.db.WithContext(ctx).
		Where("nom LIKE ? ESCAPE '!' OR description LIKE ? ESCAPE '!'", pattern, pattern).
		Order("created_at DESC").
		Order("id DESC").
		Find(&forfaits).Error; err != nil {
		return nil, translateError(err)
	}
	return forfaits, nil
}

func (r *ForfaitsRepository) Create(ctx context.Context, in ForfaitInput) (*Forfait, error) {
	forfait := &Forfait{
		Nom:         in.Nom,
		Description: in.Description,
		Prix:        in.Prix,
		Image:       in.Image,
		Categorie:   in.Categorie,
	}
	if err := r.db.WithContext(ctx).Create(forfait).Error; err != nil {
		return nil, translateError(err)
	}
	return forfait, nil
}

// Update overwrites every mutable field of the forfait with the given id.
// The returned value echoes the input; CreatedAt is left zero because the
// row is not read back.
func (r *ForfaitsRepository) Update(ctx context.Context, id uint, in ForfaitInput) (*Forfait, error) {
	res := r.db.WithContext(ctx).
		Model(&Forfait{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"nom":         in.Nom,
			"description": in.Description,
			"prix":        in.Prix,
			"image":       in.Image,
			"categorie":   in.Categorie,
		})
	if res.Error != nil {
		return nil, translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrForfaitNotFound
	}

	return &Forfait{
		ID:          id,
		Nom:         in.Nom,
		Description: in.Description,
		Prix:        in.Prix,
		Image:       in.Image,
		Categorie:   in.Categorie,
	}, nil
}

func (r *ForfaitsRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&Forfait{})
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrForfaitNotFound
	}
	return nil
}

// ListCategories returns each distinct category with its forfait count,
// ordered by name.
func (r *ForfaitsRepository) ListCategories(ctx context.Context) ([]CategorySummary, error) {
	var categories []CategorySummary
	if err := r.db.WithContext(ctx).
		Model(&Forfait{}).
		Select("categorie, COUNT(*) AS total").
		Group("categorie").
		Order("categorie").
		Scan(&categories).Error; err != nil {
		return nil, translateError(err)
	}
	return categories, nil
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// escapeLike makes term match literally inside a LIKE ... ESCAPE '!' pattern.
func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}
