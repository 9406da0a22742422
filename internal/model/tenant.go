package model

import "time"

// Plan is a tenant's subscription tier
type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
)

// FreePlanNoteLimit is the maximum number of notes a free tenant may hold
const FreePlanNoteLimit = 3

// Tenant represents a company account; every note is scoped to one
type Tenant struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Slug      string    `json:"slug" gorm:"type:varchar(100);uniqueIndex;not null"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	Plan      Plan      `json:"plan" gorm:"type:varchar(20);not null;default:'free'"`
	CreatedAt time.Time `json:"createdAt"`
}
