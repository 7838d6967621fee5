package core

import "time"

// KYCStatus is the review state of a submission
type KYCStatus string

const (
	KYCPending  KYCStatus = "pending"
	KYCApproved KYCStatus = "approved"
	KYCRejected KYCStatus = "rejected"

	// KYCNotSubmitted is reported in user listings for identities without a submission.
	KYCNotSubmitted KYCStatus = "not_submitted"
)

// Submission is the KYC record owned by a single identity
type Submission struct {
	UserID    string    `json:"user"`
	ImageURL  string    `json:"imageUrl"`
	VideoURL  string    `json:"videoUrl"`
	Status    KYCStatus `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserSummary is a listing row: a user joined with its KYC submission, if any
type UserSummary struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	JoinedAt  time.Time `json:"joinedAt"`
	KYCStatus KYCStatus `json:"kycStatus"`
	KYCImage  string    `json:"kycImage,omitempty"`
	KYCVideo  string    `json:"kycVideo,omitempty"`
}

// UserFilter narrows a user listing.
type UserFilter struct {
	Search string // case-insensitive email substring, empty matches all
	Offset int
	Limit  int
}

// UserPage is one page of a user listing
type UserPage struct {
	Users      []UserSummary `json:"users"`
	Total      int           `json:"total"`
	Page       int           `json:"page"`
	TotalPages int           `json:"totalPages"`
}
