package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProjectStatus string

const (
	ProjectStatusPending    ProjectStatus = "pending"
	ProjectStatusProcessing ProjectStatus = "processing"
	ProjectStatusCompleted  ProjectStatus = "completed"
	ProjectStatusError      ProjectStatus = "error"
)

// Terminal reports whether the status accepts no further transitions.
func (s ProjectStatus) Terminal() bool {
	return s == ProjectStatusCompleted || s == ProjectStatusError
}

type Project struct {
	ID           uuid.UUID     `json:"id" gorm:"type:uuid;primaryKey"`
	UserPrompt   string        `json:"userPrompt" gorm:"type:text;not null"`
	Status       ProjectStatus `json:"status" gorm:"type:varchar(50);not null;default:'pending'"`
	ErrorMessage string        `json:"errorMessage,omitempty" gorm:"type:text"`
	CreatedAt    time.Time     `json:"createdAt"`

	Blueprints []Blueprint `json:"blueprints,omitempty" gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (Project) TableName() string {
	return "projects"
}
