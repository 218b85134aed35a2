package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/parknow-app/parknow-api/internal/audit"
	"github.com/parknow-app/parknow-api/internal/httperr"
	"github.com/parknow-app/parknow-api/internal/httpresp"
	"github.com/parknow-app/parknow-api/internal/middleware"
	"github.com/parknow-app/parknow-api/internal/models"
)

type AdminHandler struct {
	db     *gorm.DB
	audits *audit.Dispatcher
}

func NewAdminHandler(db *gorm.DB, audits *audit.Dispatcher) *AdminHandler {
	return &AdminHandler{db: db, audits: audits}
}

// Dashboard aggregates record counts for the admin overview.
func (h *AdminHandler) Dashboard(c *gin.Context) {
	var (
		users          int64
		spaces         int64
		pendingSpaces  int64
		bookings       int64
		activeBookings int64
		messages       int64
	)

	h.db.Model(&models.User{}).Count(&users)
	h.db.Model(&models.ParkingSpace{}).Count(&spaces)
	h.db.Model(&models.ParkingSpace{}).Where("status = ?", models.SpaceStatusPending).Count(&pendingSpaces)
	h.db.Model(&models.Booking{}).Count(&bookings)
	h.db.Model(&models.Booking{}).
		Where("status IN ?", []string{models.BookingStatusPending, models.BookingStatusConfirmed}).
		Count(&activeBookings)
	h.db.Model(&models.ContactMessage{}).Count(&messages)

	httpresp.OK(c, gin.H{
		"users":            users,
		"parking_spaces":   spaces,
		"pending_spaces":   pendingSpaces,
		"bookings":         bookings,
		"active_bookings":  activeBookings,
		"contact_messages": messages,
	})
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	var users []models.User
	if err := h.db.Order("id ASC").Find(&users).Error; err != nil {
		httperr.Internal(c, "failed_to_list_users", "Server error")
		return
	}

	httpresp.OK(c, users)
}

type ModerateSpaceRequest struct {
	Status string `json:"status" binding:"required,oneof=active inactive pending"`
}

// ModerateSpace lets an admin flip a listing's status.
func (h *AdminHandler) ModerateSpace(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.NotFound(c, "parking_space_not_found", "Parking space not found")
		return
	}

	var req ModerateSpaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Binding(c, err)
		return
	}

	var space models.ParkingSpace
	if err := h.db.First(&space, uint(id)).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			httperr.NotFound(c, "parking_space_not_found", "Parking space not found")
			return
		}
		httperr.Internal(c, "internal_error", "Server error")
		return
	}

	space.Status = req.Status
	if err := h.db.Save(&space).Error; err != nil {
		httperr.Internal(c, "failed_to_update_parking_space", "Server error")
		return
	}

	actorID := c.GetUint(middleware.ContextUserID)
	h.audits.Dispatch(audit.Event{
		ActorID:  &actorID,
		Action:   "parking_space.moderate",
		Entity:   "parking_space",
		EntityID: &space.ID,
		Metadata: gin.H{"status": req.Status},
	})

	httpresp.OK(c, spaceJSON(&space))
}

func (h *AdminHandler) ListAuditLogs(c *gin.Context) {
	var logs []models.AuditLog
	if err := h.db.
		Order("created_at DESC").
		Limit(100).
		Find(&logs).Error; err != nil {
		httperr.Internal(c, "failed_to_list_audit_logs", "Server error")
		return
	}

	httpresp.OK(c, logs)
}
