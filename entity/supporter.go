package entity

import "fmt"

// SupporterStatus is a supporter's standing on the crowdfunding platform.
// Only the two values below are legal; anything else coming from the
// platform is rejected at the reconciliation boundary.
type SupporterStatus string

const (
	StatusActive   SupporterStatus = "active"
	StatusInactive SupporterStatus = "inactive"
)

// ParseStatus validates an externally reported status value.
func ParseStatus(value string) (SupporterStatus, error) {
	switch SupporterStatus(value) {
	case StatusActive, StatusInactive:
		return SupporterStatus(value), nil
	}
	return "", fmt.Errorf("unknown supporter status: %q", value)
}

// Supporter is one backer of a campaign. Supporter ids are assigned by the
// platform and are unique only within their campaign; the same id may
// occur in two campaigns as two distinct supporters.
type Supporter struct {
	CampaignId int64           `json:"campaign_id"`
	Id         int64           `json:"id"`
	Name       string          `json:"name"`
	Status     SupporterStatus `json:"status"`
}

func (s *Supporter) IsActive() bool {
	return s.Status == StatusActive
}

// SupporterRecord is one row of a platform supporter report as fetched.
// Status is carried raw here and validated by the reconciliation engine.
type SupporterRecord struct {
	Id     int64  `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}
