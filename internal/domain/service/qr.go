package service

import (
	"context"

	"github.com/vstrecha/vstrecha/backend/internal/domain/common/errorz"
	"github.com/vstrecha/vstrecha/backend/internal/domain/entity"
	qr "github.com/vstrecha/vstrecha/backend/pkg/qrcode"
)

type qrParticipationService interface {
	Participation(ctx context.Context, eventID, userID string) (*entity.Participation, error)
}

// QrService renders attendance tickets. A ticket encodes the participation id,
// which is what the scanner posts back.
type QrService struct {
	participations qrParticipationService
	qrCFG          qr.Config
}

func NewQrService(qrCFG qr.Config, participations qrParticipationService, logoPath string) *QrService {
	qrCFG.LogoPath = logoPath
	return &QrService{
		participations: participations,
		qrCFG:          qrCFG,
	}
}

func (s *QrService) Ticket(ctx context.Context, eventID, userID string) ([]byte, error) {
	participation, err := s.participations.Participation(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}
	if participation == nil {
		return nil, errorz.NotParticipating
	}
	return s.qrCFG.WithContent(participation.ID).Generate()
}
