package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/reservo/pkg/dateonly"
)

type Blackout struct {
	ID       snowflake.ID  `gorm:"primaryKey" json:"id"`
	TenantID snowflake.ID  `gorm:"not null;index" json:"tenant_id"`
	Date     dateonly.Date `gorm:"not null" json:"date"`
	Reason   string        `json:"reason,omitempty"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Blackout) TableName() string { return "blackouts" }
