package settings

import (
	"time"

	"novelhub/internal/entitlement"
)

// GlobalKey is the key of the only settings row.
const GlobalKey = "global"

type SiteSettings struct {
	Key            string    `db:"key" json:"key"`
	EnablePayments bool      `db:"enable_payments" json:"enable_payments"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

func Default() *SiteSettings {
	return &SiteSettings{Key: GlobalKey, EnablePayments: true}
}

func (s *SiteSettings) Entitlement() entitlement.Settings {
	return entitlement.Settings{EnablePayments: s.EnablePayments}
}

type PublicSettings struct {
	EnablePayments bool `json:"enable_payments"`
}

type UpdateRequest struct {
	EnablePayments *bool `json:"enable_payments" validate:"required"`
}
