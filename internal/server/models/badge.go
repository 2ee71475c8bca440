package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// BadgeCriteria describes what earns a badge, e.g. {"type":"posts","threshold":25}.
type BadgeCriteria struct {
	Type             string         `json:"type"`
	Threshold        int            `json:"threshold"`
	AdditionalParams map[string]any `json:"additionalParams,omitempty"`
}

func (c BadgeCriteria) Value() (driver.Value, error) {
	return json.Marshal(c)
}

func (c *BadgeCriteria) Scan(src any) error {
	return scanJSON(src, c)
}

// Badge levels: 1 bronze, 2 silver, 3 gold.
type Badge struct {
	ID               int64         `json:"id"`
	Name             string        `json:"name"`
	Description      string        `json:"description"`
	Icon             string        `json:"icon"`
	Color            string        `json:"color"`
	Category         string        `json:"category"`
	Level            int           `json:"level"`
	ReputationPoints int           `json:"reputationPoints"`
	Criteria         BadgeCriteria `json:"criteria"`
	CreatedAt        time.Time     `json:"createdAt"`
}

type BadgeUpdate struct {
	Description      *string        `json:"description"`
	Icon             *string        `json:"icon"`
	Color            *string        `json:"color"`
	Category         *string        `json:"category"`
	Level            *int           `json:"level"`
	ReputationPoints *int           `json:"reputationPoints"`
	Criteria         *BadgeCriteria `json:"criteria"`
}

func (b *Badge) Apply(upd BadgeUpdate) {
	if upd.Description != nil {
		b.Description = *upd.Description
	}
	if upd.Icon != nil {
		b.Icon = *upd.Icon
	}
	if upd.Color != nil {
		b.Color = *upd.Color
	}
	if upd.Category != nil {
		b.Category = *upd.Category
	}
	if upd.Level != nil {
		b.Level = *upd.Level
	}
	if upd.ReputationPoints != nil {
		b.ReputationPoints = *upd.ReputationPoints
	}
	if upd.Criteria != nil {
		b.Criteria = *upd.Criteria
	}
}

// BadgeFilter narrows the catalog; zero values match everything.
type BadgeFilter struct {
	Category string
	Level    int
}

// UserBadge is keyed by (UserID, BadgeID).
type UserBadge struct {
	UserID           int64     `json:"userId"`
	BadgeID          int64     `json:"badgeId"`
	EarnedAt         time.Time `json:"earnedAt"`
	DisplayOnProfile bool      `json:"displayOnProfile"`
}

type UserBadgeWithBadge struct {
	UserBadge
	Badge *Badge `json:"badge"`
}
