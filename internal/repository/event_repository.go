package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"iga-community/internal/model"
)

type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Create(ctx context.Context, signup *model.EventSignup) error {
	if err := r.db.WithContext(ctx).Create(signup).Error; err != nil {
		return fmt.Errorf("create event signup failed: %w", err)
	}
	return nil
}
