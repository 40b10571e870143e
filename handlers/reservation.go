package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"burger-ordering-api/config"
	"burger-ordering-api/models"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const maxGuests = 20

type ReservationRequest struct {
	Name       string    `json:"name" binding:"required"`
	Phone      string    `json:"phone" binding:"required"`
	Guests     int       `json:"guests" binding:"required,min=1"`
	ReservedAt time.Time `json:"reserved_at" binding:"required"`
	Note       string    `json:"note"`
}

// CreateReservation books a table (public)
func CreateReservation(c *gin.Context) {
	var req ReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Guests > maxGuests {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": fmt.Sprintf("Reservations are limited to %d guests, call us for larger groups", maxGuests)})
		return
	}
	if !req.ReservedAt.After(svc.Now()) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "reserved_at must be in the future"})
		return
	}

	r := models.Reservation{
		Name:       strings.TrimSpace(req.Name),
		Phone:      strings.TrimSpace(req.Phone),
		Guests:     req.Guests,
		ReservedAt: req.ReservedAt,
		Note:       req.Note,
		Status:     models.ReservationPending,
	}
	if err := config.DB.Create(&r).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create reservation"})
		return
	}
	log.WithFields(log.Fields{"reservation": r.ID, "guests": r.Guests, "at": r.ReservedAt}).Info("Reservation created")
	c.JSON(http.StatusCreated, gin.H{"message": "Reservation received", "reservation": r})
}

// AdminListReservations returns reservations, upcoming first (admin, staff)
func AdminListReservations(c *gin.Context) {
	query := config.DB
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if day := c.Query("date"); day != "" {
		start, err := time.ParseInLocation("2006-01-02", day, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		query = query.Where("reserved_at >= ? AND reserved_at < ?", start, start.AddDate(0, 0, 1))
	}
	var reservations []models.Reservation
	query.Order("reserved_at asc").Find(&reservations)
	c.JSON(http.StatusOK, gin.H{"count": len(reservations), "reservations": reservations})
}

type ReservationStatusRequest struct {
	Status models.ReservationStatus `json:"status" binding:"required"`
}

// UpdateReservationStatus confirms or cancels a reservation (admin, staff)
func UpdateReservationStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req ReservationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Status != models.ReservationConfirmed && req.Status != models.ReservationCancelled {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status. Must be: confirmed or cancelled"})
		return
	}

	var r models.Reservation
	if err := config.DB.First(&r, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Reservation not found"})
		return
	}
	if r.Status == models.ReservationCancelled {
		c.JSON(http.StatusConflict, gin.H{"error": "Reservation is already cancelled"})
		return
	}

	config.DB.Model(&r).Update("status", req.Status)

	if svc.Notifier != nil {
		msg := fmt.Sprintf("Rezerwacja na %s (%d os.) zostala anulowana.", r.ReservedAt.Format("02.01 15:04"), r.Guests)
		if req.Status == models.ReservationConfirmed {
			msg = fmt.Sprintf("Rezerwacja na %s (%d os.) potwierdzona.", r.ReservedAt.Format("02.01 15:04"), r.Guests)
		}
		if err := svc.Notifier.SMS(c.Request.Context(), r.Phone, msg); err != nil {
			log.WithError(err).WithField("reservation", r.ID).Warn("Reservation SMS failed")
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "Reservation updated", "reservation": r})
}
