package models

import "time"

const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
	BookingStatusCompleted = "completed"
)

type Booking struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ParkingSpaceID uint         `gorm:"index;not null" json:"parking_space_id"`
	ParkingSpace   ParkingSpace `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	UserID uint `gorm:"index;not null" json:"user_id"`
	User   User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	StartTime time.Time `gorm:"not null" json:"start_time"`
	EndTime   time.Time `gorm:"not null" json:"end_time"`

	VehiclePlate string  `gorm:"size:20" json:"vehicle_plate"`
	TotalPrice   float64 `json:"total_price"`
	Status       string  `gorm:"size:20;default:'pending';index" json:"status"`

	CancelledAt *time.Time `json:"cancelled_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CanCancel reports whether the booking is still in a cancellable state.
func (b *Booking) CanCancel() bool {
	return b.Status == BookingStatusPending || b.Status == BookingStatusConfirmed
}
