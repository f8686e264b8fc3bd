package postgres

import (
	"context"

	"github.com/vstrecha/vstrecha/backend/internal/domain/entity"
	"gorm.io/gorm"
)

type ScanStorage struct {
	db *gorm.DB
}

func NewScanStorage(db *gorm.DB) *ScanStorage {
	return &ScanStorage{
		db: db,
	}
}

func (s *ScanStorage) Create(ctx context.Context, scan *entity.AttendanceScan) (*entity.AttendanceScan, error) {
	err := s.db.WithContext(ctx).Create(scan).Error
	return scan, err
}

func (s *ScanStorage) CountByParticipation(ctx context.Context, participationID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&entity.AttendanceScan{}).
		Where("participation_id = ?", participationID).
		Count(&count).Error
	return count, err
}
