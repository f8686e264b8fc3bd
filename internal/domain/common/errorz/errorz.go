package errorz

import "errors"

// Kinds. Every domain error wraps exactly one of them, so callers can branch
// with errors.Is(err, errorz.NotFound) without knowing the concrete error.
var (
	NotFound     = errors.New("not found")
	Conflict     = errors.New("conflict")
	Forbidden    = errors.New("forbidden")
	InvalidInput = errors.New("invalid input")
	Unauthorized = errors.New("unauthorized")
)

// Error is a domain error with a human readable detail.
type Error struct {
	kind   error
	detail string
}

// New creates a domain error of the given kind.
func New(kind error, detail string) *Error {
	return &Error{kind: kind, detail: detail}
}

func (e *Error) Error() string { return e.detail }

func (e *Error) Unwrap() error { return e.kind }

// Kind returns the kind of err or nil if err is not a domain error.
func Kind(err error) error {
	for _, kind := range []error{NotFound, Conflict, Forbidden, InvalidInput, Unauthorized} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// Profiles
var (
	ProfileNotFound          = New(NotFound, "Profile not found")
	ProfileExists            = New(Conflict, "Profile already exists")
	InvitationRequired       = New(InvalidInput, "Invitation ID is required for new users")
	InvalidInvitationID      = New(InvalidInput, "Invalid invitation ID")
	CannotDeleteOtherProfile = New(Forbidden, "You can only delete your own profile")
)

// Friends and invitations
var (
	SelfFriendship    = New(InvalidInput, "Cannot become friends with yourself")
	AlreadyFriends    = New(Conflict, "Already friends")
	EdgeNotFound      = New(NotFound, "Friendship not found")
	InvalidInvitation = New(NotFound, "INVALID_INVITATION")
	OrphanInvitation  = New(InvalidInput, "INVALID_INVITATION")
)

// Events and participation
var (
	EventNotFound              = New(NotFound, "Event not found")
	EventHidden                = New(Forbidden, "Event is not available")
	NotEventCreator            = New(Forbidden, "Only the creator can modify this event")
	InvalidTag                 = New(InvalidInput, "Tag is not allowed")
	CreatorCannotJoinOwnEvent  = New(Forbidden, "Creators cannot participate in their own events")
	CreatorCannotLeaveOwnEvent = New(Forbidden, "Creators cannot leave their own events")
	RegistrationClosed         = New(Forbidden, "Registration is not available for this event")
	EventFull                  = New(Conflict, "Event is full")
	NotParticipating           = New(NotFound, "User is not participating in this event")
	ParticipationNotFound      = New(NotFound, "Participation not found")
)

// InvalidField reports a malformed input field.
func InvalidField(detail string) *Error {
	return New(InvalidInput, detail)
}
