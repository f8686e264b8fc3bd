package dto

type ScanRequest struct {
	ParticipationID string `json:"participation_id"`
}

type ScanResult struct {
	UserID  string `json:"user_id"`
	EventID string `json:"event_id"`
}

type Invitation struct {
	ID string `json:"id"`
}

type RedeemRequest struct {
	InvitationID string `json:"invitation_id"`
}
