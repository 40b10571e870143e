package models

import "time"

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCancelled ReservationStatus = "cancelled"
)

type Reservation struct {
	ID         uint              `json:"id" gorm:"primaryKey"`
	Name       string            `json:"name" gorm:"not null"`
	Phone      string            `json:"phone" gorm:"not null"`
	Guests     int               `json:"guests" gorm:"not null"`
	ReservedAt time.Time         `json:"reserved_at" gorm:"not null;index"`
	Note       string            `json:"note"`
	Status     ReservationStatus `json:"status" gorm:"not null;default:'pending'"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}
