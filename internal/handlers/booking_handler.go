package handlers

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/parknow-app/parknow-api/internal/audit"
	listing "github.com/parknow-app/parknow-api/internal/domain/listing"
	"github.com/parknow-app/parknow-api/internal/httperr"
	"github.com/parknow-app/parknow-api/internal/httpresp"
	"github.com/parknow-app/parknow-api/internal/middleware"
	"github.com/parknow-app/parknow-api/internal/models"
	"github.com/parknow-app/parknow-api/internal/payments"
)

type BookingHandler struct {
	db       *gorm.DB
	audits   *audit.Dispatcher
	checkout *payments.Checkout
}

func NewBookingHandler(db *gorm.DB, audits *audit.Dispatcher, checkout *payments.Checkout) *BookingHandler {
	return &BookingHandler{db: db, audits: audits, checkout: checkout}
}

// --------- Requests ---------

type CreateBookingRequest struct {
	ParkingSpaceID uint      `json:"parking_space_id" binding:"required"`
	StartTime      time.Time `json:"start_time" binding:"required"`
	EndTime        time.Time `json:"end_time" binding:"required"`
	VehiclePlate   string    `json:"vehicle_plate" binding:"omitempty,max=20"`
}

// --------- Handlers ---------

func (h *BookingHandler) Create(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserID)

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Binding(c, err)
		return
	}

	if !req.EndTime.After(req.StartTime) {
		httperr.Validation(c, []httperr.FieldError{
			{Field: "end_time", Message: "must be after start_time"},
		})
		return
	}

	var space models.ParkingSpace
	if err := h.db.First(&space, req.ParkingSpaceID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			httperr.NotFound(c, "parking_space_not_found", "Parking space not found")
			return
		}
		httperr.Internal(c, "internal_error", "Server error")
		return
	}

	if space.Status != models.SpaceStatusActive {
		httperr.BadRequest(c, "parking_space_not_active", "This parking space is not available for booking")
		return
	}

	// billed per started hour
	hours := math.Ceil(req.EndTime.Sub(req.StartTime).Hours())
	if hours < 1 {
		hours = 1
	}

	booking := models.Booking{
		ParkingSpaceID: space.ID,
		UserID:         userID,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		VehiclePlate:   req.VehiclePlate,
		TotalPrice:     hours * space.PricePerHour,
		Status:         models.BookingStatusPending,
	}

	if err := h.db.Create(&booking).Error; err != nil {
		httperr.Internal(c, "failed_to_create_booking", "Server error")
		return
	}

	httpresp.Created(c, booking)
}

// ListMine returns the caller's bookings, newest first.
func (h *BookingHandler) ListMine(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserID)

	page := listing.DefaultPage
	limit := listing.DefaultLimit
	var ferrs []httperr.FieldError

	if v := c.Query("page"); v != "" {
		if p, err := strconv.Atoi(v); err != nil || p < 1 {
			ferrs = append(ferrs, httperr.FieldError{Field: "page", Message: "must be an integer greater than or equal to 1"})
		} else {
			page = p
		}
	}
	if v := c.Query("limit"); v != "" {
		if p, err := strconv.Atoi(v); err != nil || p < 1 || p > listing.MaxLimit {
			ferrs = append(ferrs, httperr.FieldError{Field: "limit", Message: fmt.Sprintf("must be an integer between 1 and %d", listing.MaxLimit)})
		} else {
			limit = p
		}
	}
	if ferrs != nil {
		httperr.Validation(c, ferrs)
		return
	}

	q := h.db.Model(&models.Booking{}).Where("user_id = ?", userID)

	var bookings []models.Booking
	if err := q.
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&bookings).Error; err != nil {
		httperr.Internal(c, "failed_to_list_bookings", "Server error")
		return
	}

	var total int64
	if err := h.db.Model(&models.Booking{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		httperr.Internal(c, "failed_to_list_bookings", "Server error")
		return
	}

	httpresp.Page(c, bookings, httpresp.NewPagination(page, limit, total))
}

func (h *BookingHandler) GetByID(c *gin.Context) {
	booking := h.loadBooking(c)
	if booking == nil {
		return
	}

	userID := c.GetUint(middleware.ContextUserID)
	role := c.GetString(middleware.ContextUserRole)

	// visible to the renter, the space owner and admins
	if booking.UserID != userID && booking.ParkingSpace.OwnerID != userID && role != models.RoleAdmin {
		httperr.Forbidden(c, "not_booking_participant", "You do not have access to this booking")
		return
	}

	httpresp.OK(c, booking)
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	booking := h.loadBooking(c)
	if booking == nil {
		return
	}

	userID := c.GetUint(middleware.ContextUserID)
	role := c.GetString(middleware.ContextUserRole)

	if booking.UserID != userID && role != models.RoleAdmin {
		httperr.Forbidden(c, "not_booking_owner", "Only the renter or an admin can cancel this booking")
		return
	}

	if !booking.CanCancel() {
		httperr.BadRequest(c, "booking_not_cancellable", "This booking can no longer be cancelled")
		return
	}

	now := time.Now()
	booking.Status = models.BookingStatusCancelled
	booking.CancelledAt = &now

	if err := h.db.Save(booking).Error; err != nil {
		httperr.Internal(c, "failed_to_cancel_booking", "Server error")
		return
	}

	h.audits.Dispatch(audit.Event{
		ActorID:  &userID,
		Action:   "booking.cancel",
		Entity:   "booking",
		EntityID: &booking.ID,
	})

	httpresp.OK(c, booking)
}

func (h *BookingHandler) Delete(c *gin.Context) {
	booking := h.loadBooking(c)
	if booking == nil {
		return
	}

	if err := h.db.Delete(&models.Booking{}, booking.ID).Error; err != nil {
		httperr.Internal(c, "failed_to_delete_booking", "Server error")
		return
	}

	httpresp.Message(c, "Booking deleted successfully")
}

// Pay creates a checkout preference for a pending booking.
func (h *BookingHandler) Pay(c *gin.Context) {
	booking := h.loadBooking(c)
	if booking == nil {
		return
	}

	userID := c.GetUint(middleware.ContextUserID)
	if booking.UserID != userID {
		httperr.Forbidden(c, "not_booking_owner", "Only the renter can pay for this booking")
		return
	}

	if booking.Status != models.BookingStatusPending {
		httperr.BadRequest(c, "booking_not_payable", "Only pending bookings can be paid")
		return
	}

	if !h.checkout.Enabled() {
		httperr.Write(c, 503, "payments_unavailable", "Payments are not configured")
		return
	}

	prefID, initPoint, err := h.checkout.CreatePreference(c.Request.Context(), booking, &booking.ParkingSpace)
	if err != nil {
		httperr.Internal(c, "failed_to_create_payment", "Server error")
		return
	}

	httpresp.Created(c, gin.H{
		"booking_id":    booking.ID,
		"preference_id": prefID,
		"init_point":    initPoint,
	})
}

// --------- Helpers ---------

func (h *BookingHandler) loadBooking(c *gin.Context) *models.Booking {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.NotFound(c, "booking_not_found", "Booking not found")
		return nil
	}

	var booking models.Booking
	if err := h.db.Preload("ParkingSpace").First(&booking, uint(id)).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			httperr.NotFound(c, "booking_not_found", "Booking not found")
		} else {
			httperr.Internal(c, "internal_error", "Server error")
		}
		return nil
	}

	return &booking
}
