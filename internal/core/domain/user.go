package domain

// User is a read-only projection of the externally managed user profile.
// The engines never create or mutate users; they only resolve ownership and
// notification preferences.
type User struct {
	UserID          string `json:"userID"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Phone           string `json:"phone"`
	SMSNotification bool   `json:"smsNotification"`
	AuditFields
}
