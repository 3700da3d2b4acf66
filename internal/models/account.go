package models

// Account owns integrations and campaigns and carries the SMS credit
// balance. Every dispatched message consumes one credit.
type Account struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Credits      int    `json:"credits"`
	TotalSMSSent int64  `json:"total_sms_sent"`
	IsAdmin      bool   `json:"is_admin"`
}
