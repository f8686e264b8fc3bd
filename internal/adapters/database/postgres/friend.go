package postgres

import (
	"context"

	"github.com/vstrecha/vstrecha/backend/internal/domain/common/errorz"
	"github.com/vstrecha/vstrecha/backend/internal/domain/entity"
	"gorm.io/gorm"
)

type FriendStorage struct {
	db *gorm.DB
}

func NewFriendStorage(db *gorm.DB) *FriendStorage {
	return &FriendStorage{
		db: db,
	}
}

// Create stores the edge. The composite primary key rejects a second edge
// for the same pair, which is reported as errorz.AlreadyFriends.
func (s *FriendStorage) Create(ctx context.Context, edge entity.FriendEdge) error {
	err := s.db.WithContext(ctx).Create(&edge).Error
	return translate(err, nil, errorz.AlreadyFriends)
}

func (s *FriendStorage) Delete(ctx context.Context, a, b string) error {
	edge := entity.NewFriendEdge(a, b)
	res := s.db.WithContext(ctx).
		Where("user1 = ? AND user2 = ?", edge.User1, edge.User2).
		Delete(&entity.FriendEdge{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errorz.EdgeNotFound
	}
	return nil
}

func (s *FriendStorage) Exists(ctx context.Context, a, b string) (bool, error) {
	edge := entity.NewFriendEdge(a, b)
	var count int64
	err := s.db.WithContext(ctx).
		Model(&entity.FriendEdge{}).
		Where("user1 = ? AND user2 = ?", edge.User1, edge.User2).
		Count(&count).Error
	return count > 0, err
}

// Neighbors returns every profile adjacent to id. An edge is stored once, so
// both columns are scanned.
func (s *FriendStorage) Neighbors(ctx context.Context, id string) ([]string, error) {
	var edges []entity.FriendEdge
	err := s.db.WithContext(ctx).
		Where("user1 = ? OR user2 = ?", id, id).
		Find(&edges).Error
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(edges))
	for _, edge := range edges {
		ids = append(ids, edge.Other(id))
	}
	return ids, nil
}
