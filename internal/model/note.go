package model

import "time"

// Note is a short text note owned by a tenant
type Note struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Title     string    `json:"title" gorm:"type:text;not null"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	UserID    uint      `json:"userId" gorm:"index;not null"`
	TenantID  uint      `json:"tenantId" gorm:"index;not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Relations
	User   User   `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT"`
	Tenant Tenant `json:"-" gorm:"foreignKey:TenantID;constraint:OnDelete:RESTRICT"`
}
