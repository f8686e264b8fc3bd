package entity

import "time"

// FriendEdge is an undirected friendship stored once per pair, lower id first.
type FriendEdge struct {
	User1     string   `gorm:"primaryKey;type:uuid"`
	User2     string   `gorm:"primaryKey;type:uuid;index"`
	Profile1  *Profile `gorm:"foreignKey:User1;constraint:OnDelete:CASCADE"`
	Profile2  *Profile `gorm:"foreignKey:User2;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

// NewFriendEdge returns the edge between a and b in canonical order.
func NewFriendEdge(a, b string) FriendEdge {
	if b < a {
		a, b = b, a
	}
	return FriendEdge{User1: a, User2: b}
}

// Other returns the endpoint of the edge that is not id.
func (e FriendEdge) Other(id string) string {
	if e.User1 == id {
		return e.User2
	}
	return e.User1
}

// Invitation is the single outstanding invitation a profile hands out.
type Invitation struct {
	ID        string   `gorm:"primaryKey;type:uuid"`
	OwnerID   string   `gorm:"not null;type:uuid;uniqueIndex"`
	Owner     *Profile `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}
