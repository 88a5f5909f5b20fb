package family

import (
	"fmt"
	"strings"
	"time"
)

// Member is one roster entry. Field names follow the database schema.
type Member struct {
	MemberID     string `json:"memberId"`
	Name         string `json:"name"`
	Mobile       string `json:"mobile"`
	FamilyName   string `json:"familyName"`
	Relationship string `json:"relationship"`
	Registered   bool   `json:"registered"`
	Password     string `json:"password,omitempty"`
	GpsInfo      string `json:"gpsInfo,omitempty"`
	UID          string `json:"uid,omitempty"`
	IsAdmin      bool   `json:"isAdmin,omitempty"`
}

// Registration records a device registration keyed by mobile number.
type Registration struct {
	UID string `json:"uid"`
}

// MemberID derives the roster key. It is deterministic so re-adding the same
// mobile to the same family collides instead of duplicating.
func MemberID(mobile, familyName string) string {
	return mobile + "_" + familyName
}

// NewFamilyID appends a creation timestamp so family names need not be
// globally unique.
func NewFamilyID(name string, now time.Time) string {
	return fmt.Sprintf("%s_%d", name, now.UnixMilli())
}

// DisplayName strips the timestamp suffix from a family id: everything after
// the last underscore is dropped. Ids without an underscore pass through.
func DisplayName(familyID string) string {
	if idx := strings.LastIndex(familyID, "_"); idx >= 0 {
		return familyID[:idx]
	}
	return familyID
}
