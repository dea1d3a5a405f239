package domain

import "time"

// OTPRecord is one issuance attempt. The plaintext code is never stored,
// only a bcrypt hash. Records are superseded by newer issuances rather than
// deleted; expiry alone retires them.
type OTPRecord struct {
	ID        int64
	Email     string
	CodeHash  string
	CreatedAt time.Time
	ExpiresAt time.Time
	Verified  bool
}

func (r *OTPRecord) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}
