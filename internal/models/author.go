package models

// Author identifies who a persisted blog belongs to. It is audit data only.
type Author struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}
