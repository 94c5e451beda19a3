// internal/domain/lead/entity.go
package lead

import (
	"fmt"
	"time"
)

// UserIDPrefix is prepended to a lead id to build the id of the user created
// when the lead is won.
const UserIDPrefix = "USER_"

type Lead struct {
	ID               int64      `json:"id" db:"id"`
	Name             string     `json:"name" db:"name"`
	MobileNumber     string     `json:"mobile_number" db:"mobile_number"`
	LeadSource       string     `json:"lead_source" db:"lead_source"`
	FirstEnquiryDate *time.Time `json:"first_enquiry_date,omitempty" db:"first_enquiry_date"`
	NextFollowUpDate *time.Time `json:"next_follow_up_date,omitempty" db:"next_follow_up_date"`
	Remarks          string     `json:"remarks,omitempty" db:"remarks"`
	Status           Status     `json:"status" db:"status"`

	// Position is the index of the lead inside its column
	Position int `json:"position" db:"position"`

	// Timestamps
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type LeadSource struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// User is the member record materialized when a lead reaches Customer Won.
type User struct {
	UserID        string    `json:"user_id" db:"user_id"`
	Name          string    `json:"name" db:"name"`
	MobileNumber1 string    `json:"mobile_number_1" db:"mobile_number_1"`
	Email         string    `json:"email" db:"email"`
	Active        bool      `json:"active" db:"active"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// StatusChange is one row of a lead's status history.
type StatusChange struct {
	ID         int64     `json:"id" db:"id"`
	LeadID     int64     `json:"lead_id" db:"lead_id"`
	FromStatus Status    `json:"from_status" db:"from_status"`
	ToStatus   Status    `json:"to_status" db:"to_status"`
	ChangedBy  int64     `json:"changed_by" db:"changed_by"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// StatusMove carries everything persisted for a single drag transition: the
// new status of the moved lead and the resulting order of the affected columns.
type StatusMove struct {
	LeadID    int64
	From      Status
	To        Status
	ChangedBy int64
	Order     map[Status][]int64
}

// ConvertedUserID returns the user id synthesized for a won lead.
func ConvertedUserID(leadID int64) string {
	return fmt.Sprintf("%s%d", UserIDPrefix, leadID)
}

// ToUser builds the user record created when the lead is won.
func (l *Lead) ToUser(now time.Time) *User {
	return &User{
		UserID:        ConvertedUserID(l.ID),
		Name:          l.Name,
		MobileNumber1: l.MobileNumber,
		Email:         "",
		Active:        true,
		CreatedAt:     now,
	}
}
