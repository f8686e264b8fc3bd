package dto

import (
	"time"

	"github.com/vstrecha/vstrecha/backend/internal/domain/entity"
)

type Profile struct {
	ID         string    `json:"id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Gender     string    `json:"gender"`
	BirthDate  *Date     `json:"birth_date,omitempty"`
	Avatar     *string   `json:"avatar,omitempty"`
	University string    `json:"university"`
	Bio        *string   `json:"bio,omitempty"`
	ExternalID int64     `json:"max_id"`
	InvitedBy  *string   `json:"invited_by,omitempty"`
	IsAdmin    bool      `json:"is_superuser"`
	CreatedAt  time.Time `json:"created_at"`
}

func NewProfileFromEntity(profile entity.Profile) Profile {
	p := Profile{
		ID:         profile.ID,
		FirstName:  profile.FirstName,
		LastName:   profile.LastName,
		Gender:     profile.Gender,
		Avatar:     profile.Avatar,
		University: profile.University,
		Bio:        profile.Bio,
		ExternalID: profile.ExternalID,
		InvitedBy:  profile.InvitedBy,
		IsAdmin:    profile.IsAdmin,
		CreatedAt:  profile.CreatedAt,
	}
	if profile.BirthDate != nil {
		d := NewDate(*profile.BirthDate)
		p.BirthDate = &d
	}
	return p
}

func NewProfilesFromEntities(profiles []entity.Profile) []Profile {
	result := make([]Profile, 0, len(profiles))
	for _, p := range profiles {
		result = append(result, NewProfileFromEntity(p))
	}
	return result
}

// ProfileInput is used both for creation and for partial updates. Nullable
// fields may be cleared with an explicit null.
type ProfileInput struct {
	FirstName  *string          `json:"first_name"`
	LastName   *string          `json:"last_name"`
	Gender     *string          `json:"gender"`
	BirthDate  Nullable[Date]   `json:"birth_date"`
	Avatar     Nullable[string] `json:"avatar"`
	University *string          `json:"university"`
	Bio        Nullable[string] `json:"bio"`
	Invitation *string          `json:"invitation,omitempty"`
}

// Apply copies every present field onto profile. Identity fields are never touched.
func (in ProfileInput) Apply(profile *entity.Profile) {
	if in.FirstName != nil {
		profile.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		profile.LastName = *in.LastName
	}
	if in.Gender != nil {
		profile.Gender = *in.Gender
	}
	if in.BirthDate.Set {
		profile.BirthDate = nil
		if in.BirthDate.Value != nil {
			t := in.BirthDate.Value.Time
			profile.BirthDate = &t
		}
	}
	if in.Avatar.Set {
		profile.Avatar = in.Avatar.Value
	}
	if in.University != nil {
		profile.University = *in.University
	}
	if in.Bio.Set {
		profile.Bio = in.Bio.Value
	}
}
