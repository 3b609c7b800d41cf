package domain

import "time"

const ScopeTypeDomain = "domain"

// AssetScope is a named set of authorized root domains.
type AssetScope struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name       string     `gorm:"size:255;not null" json:"name"`
	ScopeType  string     `gorm:"size:20;not null;default:'domain'" json:"scope_type"`
	Scope      string     `gorm:"type:text" json:"scope"`
	ScopeArray StringList `gorm:"type:jsonb;not null;default:'[]'" json:"scope_array"`
}

func (AssetScope) TableName() string { return "asset_scope" }
