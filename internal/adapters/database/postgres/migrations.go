package postgres

import "github.com/vstrecha/vstrecha/backend/internal/domain/entity"

// Migrations is a list of all gorm migrations for the database.
// Order matters: referenced tables come first.
var Migrations = []interface{}{
	&entity.Profile{},
	&entity.FriendEdge{},
	&entity.Invitation{},
	&entity.Event{},
	&entity.Participation{},
	&entity.AttendanceScan{},
}
