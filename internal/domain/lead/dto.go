// internal/domain/lead/dto.go
package lead

import "time"

type CreateLeadRequest struct {
	Name             string     `json:"name" binding:"required,max=255"`
	MobileNumber     string     `json:"mobile_number" binding:"required,max=20"`
	LeadSource       string     `json:"lead_source" binding:"max=100"`
	FirstEnquiryDate *time.Time `json:"first_enquiry_date"`
	NextFollowUpDate *time.Time `json:"next_follow_up_date"`
	Remarks          string     `json:"remarks"`
}

// UpdateLeadRequest is a partial update; nil fields are left untouched.
type UpdateLeadRequest struct {
	Name             *string    `json:"name" binding:"omitempty,max=255"`
	MobileNumber     *string    `json:"mobile_number" binding:"omitempty,max=20"`
	LeadSource       *string    `json:"lead_source" binding:"omitempty,max=100"`
	FirstEnquiryDate *time.Time `json:"first_enquiry_date"`
	NextFollowUpDate *time.Time `json:"next_follow_up_date"`
	Remarks          *string    `json:"remarks"`
	Status           *string    `json:"status"`
}

// IsEmpty reports whether the request changes nothing.
func (r *UpdateLeadRequest) IsEmpty() bool {
	return r.Name == nil && r.MobileNumber == nil && r.LeadSource == nil &&
		r.FirstEnquiryDate == nil && r.NextFollowUpDate == nil &&
		r.Remarks == nil && r.Status == nil
}

type CreateLeadSourceRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}
