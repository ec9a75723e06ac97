package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"courtdash/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrDuplicateView = errors.New("saved view with this name already exists")
	ErrViewNotFound  = errors.New("saved view not found")
)

// SavedViewModel is the table row. The query is kept as JSON text.
type SavedViewModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	OwnerID   string    `gorm:"size:128;not null;uniqueIndex:idx_saved_views_owner_venue_name,priority:1"`
	VenueID   string    `gorm:"size:128;not null;uniqueIndex:idx_saved_views_owner_venue_name,priority:2"`
	Name      string    `gorm:"size:100;not null;uniqueIndex:idx_saved_views_owner_venue_name,priority:3"`
	Query     string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (SavedViewModel) TableName() string { return "saved_views" }

func (m SavedViewModel) toDomain() domain.SavedView {
	return domain.SavedView{
		ID:        m.ID,
		OwnerID:   m.OwnerID,
		VenueID:   m.VenueID,
		Name:      m.Name,
		Query:     []byte(m.Query),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

type SavedViewRepository struct {
	db *gorm.DB
}

func NewSavedViewRepository(db *gorm.DB) *SavedViewRepository {
	return &SavedViewRepository{db: db}
}

// Create stores v and fills in its ID and timestamps.
func (r *SavedViewRepository) Create(ctx context.Context, v *domain.SavedView) error {
	row := SavedViewModel{
		OwnerID: v.OwnerID,
		VenueID: v.VenueID,
		Name:    v.Name,
		Query:   string(v.Query),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateView
		}
		return err
	}
	*v = row.toDomain()
	return nil
}

func (r *SavedViewRepository) ListByOwnerVenue(ctx context.Context, ownerID, venueID string) ([]domain.SavedView, error) {
	var rows []SavedViewModel
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND venue_id = ?", ownerID, venueID).
		Order("name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.SavedView, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *SavedViewRepository) GetByID(ctx context.Context, id int64) (*domain.SavedView, error) {
	var row SavedViewModel
	err := r.db.WithContext(ctx).First(&row, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrViewNotFound
		}
		return nil, err
	}
	v := row.toDomain()
	return &v, nil
}

func (r *SavedViewRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&SavedViewModel{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrViewNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "SQLSTATE 23505")
}
