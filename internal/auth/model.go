package auth

import "time"

const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Session is the persisted login record. The JWT is the bearer credential;
// this record is what logout and the expiry sweep act on.
type Session struct {
	PhoneNumber string    `bson:"phone_number" json:"phoneNumber"`
	Role        string    `bson:"role" json:"role"`
	FamilyName  string    `bson:"family_name" json:"familyName"`
	HasPassword bool      `bson:"has_password" json:"hasPassword"`
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
	ExpiresAt   time.Time `bson:"expires_at" json:"expiresAt"`
}
