package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Blueprint is the generated architecture description for a project. It is
// written once by the architect step and never modified afterwards, except
// for the diagram which is backfilled after the analyses complete.
type Blueprint struct {
	ID          uuid.UUID    `json:"id" gorm:"type:uuid;primaryKey"`
	ProjectID   uuid.UUID    `json:"projectId" gorm:"type:uuid;not null;index"`
	Name        string       `json:"name" gorm:"type:varchar(255);not null"`
	Description string       `json:"description" gorm:"type:text;not null"`
	Pros        TradeoffList `json:"pros" gorm:"type:jsonb"`
	Cons        TradeoffList `json:"cons" gorm:"type:jsonb"`
	Diagram     string       `json:"diagram,omitempty" gorm:"type:text"`
	CreatedAt   time.Time    `json:"createdAt"`

	Analyses []Analysis `json:"analyses,omitempty" gorm:"foreignKey:BlueprintID;constraint:OnDelete:CASCADE"`
}

func (b *Blueprint) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

func (Blueprint) TableName() string {
	return "blueprints"
}
