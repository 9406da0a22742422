package model

import "time"

// Role is a user's role within its tenant
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

// User represents the user model stored in the database
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"type:varchar(255);not null"`
	Role         Role      `json:"role" gorm:"type:varchar(20);not null;default:'member'"`
	TenantID     uint      `json:"tenantId" gorm:"index;not null"`
	CreatedAt    time.Time `json:"createdAt"`

	// Relations
	Tenant Tenant `json:"-" gorm:"foreignKey:TenantID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
}
