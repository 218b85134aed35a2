package models

import (
	"time"

	"github.com/lib/pq"
)

const (
	SpaceStatusActive   = "active"
	SpaceStatusInactive = "inactive"
	SpaceStatusPending  = "pending"
)

// AllowedVehicleTypes is the closed set accepted for both listings and filters.
var AllowedVehicleTypes = []string{"car", "motorcycle", "truck", "van", "rv", "bicycle"}

// AllowedFeatures is the feature allow-list; unknown tokens in filters are
// dropped silently instead of failing the request.
var AllowedFeatures = []string{
	"covered",
	"security_camera",
	"lighting",
	"electric_charging",
	"handicap_accessible",
	"car_wash",
	"valet_service",
}

type ParkingSpace struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	OwnerID uint `gorm:"index;not null" json:"owner_id"`
	Owner   User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	Title       string `gorm:"size:100;not null" json:"title"`
	Description string `gorm:"size:500" json:"description"`

	Address   string  `gorm:"size:255;not null" json:"address"`
	City      string  `gorm:"size:100;not null;index" json:"city"`
	State     string  `gorm:"size:100;not null" json:"state"`
	ZipCode   string  `gorm:"size:20;not null" json:"zip_code"`
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`

	PricePerHour  float64  `gorm:"not null" json:"price_per_hour"`
	PricePerDay   *float64 `json:"price_per_day,omitempty"`
	PricePerMonth *float64 `json:"price_per_month,omitempty"`

	VehicleTypes pq.StringArray `gorm:"type:text[]" json:"vehicle_types"`
	Features     pq.StringArray `gorm:"type:text[]" json:"features"`
	Photos       pq.StringArray `gorm:"type:text[]" json:"photos"`

	Status string `gorm:"size:20;default:'active';index" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func IsValidVehicleType(v string) bool {
	for _, t := range AllowedVehicleTypes {
		if t == v {
			return true
		}
	}
	return false
}

func IsValidSpaceStatus(s string) bool {
	switch s {
	case SpaceStatusActive, SpaceStatusInactive, SpaceStatusPending:
		return true
	}
	return false
}

func IsAllowedFeature(f string) bool {
	for _, a := range AllowedFeatures {
		if a == f {
			return true
		}
	}
	return false
}
