package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AgentType string

const (
	AgentTypeSystems AgentType = "systems"
	AgentTypeBizops  AgentType = "bizops"
)

// Analysis is one risk finding attached to a blueprint. Embedding is stored
// as a JSON array of floats and stays null when embedding generation failed;
// such rows remain searchable through the lexical ranking only.
type Analysis struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	BlueprintID uuid.UUID `json:"blueprintId" gorm:"type:uuid;not null;index"`
	AgentType   AgentType `json:"agentType" gorm:"type:varchar(20);not null"`
	Category    string    `json:"category" gorm:"type:varchar(100);not null"`
	Finding     string    `json:"finding" gorm:"type:text;not null"`
	Severity    int       `json:"severity" gorm:"not null"` // 1..10, validated before persistence
	Embedding   Vector    `json:"embedding,omitempty" gorm:"type:jsonb"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (a *Analysis) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

func (Analysis) TableName() string {
	return "analyses"
}
