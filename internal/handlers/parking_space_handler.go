package handlers

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/parknow-app/parknow-api/internal/audit"
	listing "github.com/parknow-app/parknow-api/internal/domain/listing"
	"github.com/parknow-app/parknow-api/internal/httperr"
	"github.com/parknow-app/parknow-api/internal/httpresp"
	"github.com/parknow-app/parknow-api/internal/images"
	"github.com/parknow-app/parknow-api/internal/middleware"
	"github.com/parknow-app/parknow-api/internal/models"
	"github.com/parknow-app/parknow-api/internal/storage"
)

type ParkingSpaceHandler struct {
	db       *gorm.DB
	repo     listing.Repository
	audits   *audit.Dispatcher
	uploader *storage.S3Uploader
}

func NewParkingSpaceHandler(
	db *gorm.DB,
	repo listing.Repository,
	audits *audit.Dispatcher,
	uploader *storage.S3Uploader,
) *ParkingSpaceHandler {
	return &ParkingSpaceHandler{
		db:       db,
		repo:     repo,
		audits:   audits,
		uploader: uploader,
	}
}

// --------- Requests ---------

type LocationInput struct {
	Address string `json:"address" binding:"required"`
	City    string `json:"city" binding:"required"`
	State   string `json:"state" binding:"required"`
	ZipCode string `json:"zip_code" binding:"required"`

	// Coordinates is the [longitude, latitude] pair.
	Coordinates []float64 `json:"coordinates" binding:"required,len=2"`
}

type CreateParkingSpaceRequest struct {
	Title       string        `json:"title" binding:"required,min=3,max=100"`
	Description string        `json:"description" binding:"omitempty,max=500"`
	Location    LocationInput `json:"location" binding:"required"`

	PricePerHour  *float64 `json:"price_per_hour" binding:"required,gte=0"`
	PricePerDay   *float64 `json:"price_per_day" binding:"omitempty,gte=0"`
	PricePerMonth *float64 `json:"price_per_month" binding:"omitempty,gte=0"`

	VehicleTypes []string `json:"vehicle_types" binding:"required,min=1,dive,oneof=car motorcycle truck van rv bicycle"`
	Features     []string `json:"features" binding:"omitempty,dive,oneof=covered security_camera lighting electric_charging handicap_accessible car_wash valet_service"`

	Status string `json:"status" binding:"omitempty,oneof=active inactive pending"`
}

type UpdateParkingSpaceRequest struct {
	Title       *string        `json:"title,omitempty" binding:"omitempty,min=3,max=100"`
	Description *string        `json:"description,omitempty" binding:"omitempty,max=500"`
	Location    *LocationInput `json:"location,omitempty"`

	PricePerHour  *float64 `json:"price_per_hour,omitempty" binding:"omitempty,gte=0"`
	PricePerDay   *float64 `json:"price_per_day,omitempty" binding:"omitempty,gte=0"`
	PricePerMonth *float64 `json:"price_per_month,omitempty" binding:"omitempty,gte=0"`

	VehicleTypes []string `json:"vehicle_types,omitempty" binding:"omitempty,min=1,dive,oneof=car motorcycle truck van rv bicycle"`
	Features     []string `json:"features,omitempty" binding:"omitempty,dive,oneof=covered security_camera lighting electric_charging handicap_accessible car_wash valet_service"`

	Status *string `json:"status,omitempty" binding:"omitempty,oneof=active inactive pending"`
}

// --------- Handlers ---------

// List is the public filtered, paginated search.
func (h *ParkingSpaceHandler) List(c *gin.Context) {
	f, ferrs := listing.ParseSearchFilter(c.Request.URL.Query())
	if ferrs != nil {
		httperr.Validation(c, ferrs)
		return
	}

	spaces, total, err := h.repo.Search(c.Request.Context(), f)
	if err != nil {
		httperr.Internal(c, "failed_to_list_parking_spaces", "Server error")
		return
	}

	httpresp.Page(c, spacesJSON(spaces), httpresp.NewPagination(f.Page, f.Limit, total))
}

// MySpaces lists the caller's own spaces regardless of status.
func (h *ParkingSpaceHandler) MySpaces(c *gin.Context) {
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

	// an unrecognized status token is ignored rather than rejected
	status := c.Query("status")
	if !models.IsValidSpaceStatus(status) {
		status = ""
	}

	spaces, total, err := h.repo.SearchByOwner(c.Request.Context(), userID, status, page, limit)
	if err != nil {
		httperr.Internal(c, "failed_to_list_parking_spaces", "Server error")
		return
	}

	httpresp.Page(c, spacesJSON(spaces), httpresp.NewPagination(page, limit, total))
}

func (h *ParkingSpaceHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.NotFound(c, "parking_space_not_found", "Parking space not found")
		return
	}

	space, err := h.repo.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			httperr.NotFound(c, "parking_space_not_found", "Parking space not found")
			return
		}
		httperr.Internal(c, "failed_to_get_parking_space", "Server error")
		return
	}

	httpresp.OK(c, spaceJSON(space))
}

func (h *ParkingSpaceHandler) Create(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserID)

	var req CreateParkingSpaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Binding(c, err)
		return
	}

	status := req.Status
	if status == "" {
		status = models.SpaceStatusActive
	}

	space := models.ParkingSpace{
		OwnerID:       userID,
		Title:         req.Title,
		Description:   req.Description,
		Address:       req.Location.Address,
		City:          req.Location.City,
		State:         req.Location.State,
		ZipCode:       req.Location.ZipCode,
		Longitude:     req.Location.Coordinates[0],
		Latitude:      req.Location.Coordinates[1],
		PricePerHour:  *req.PricePerHour,
		PricePerDay:   req.PricePerDay,
		PricePerMonth: req.PricePerMonth,
		VehicleTypes:  req.VehicleTypes,
		Features:      req.Features,
		Status:        status,
	}

	if err := h.db.Create(&space).Error; err != nil {
		httperr.Internal(c, "failed_to_create_parking_space", "Server error")
		return
	}

	h.db.Preload("Owner").First(&space, space.ID)

	h.audits.Dispatch(audit.Event{
		ActorID:  &userID,
		Action:   "parking_space.create",
		Entity:   "parking_space",
		EntityID: &space.ID,
	})

	httpresp.Created(c, spaceJSON(&space))
}

func (h *ParkingSpaceHandler) Update(c *gin.Context) {
	space := spaceFromContext(c)
	if space == nil {
		return
	}

	var req UpdateParkingSpaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Binding(c, err)
		return
	}

	if req.Title != nil {
		space.Title = *req.Title
	}
	if req.Description != nil {
		space.Description = *req.Description
	}
	if req.Location != nil {
		space.Address = req.Location.Address
		space.City = req.Location.City
		space.State = req.Location.State
		space.ZipCode = req.Location.ZipCode
		space.Longitude = req.Location.Coordinates[0]
		space.Latitude = req.Location.Coordinates[1]
	}
	if req.PricePerHour != nil {
		space.PricePerHour = *req.PricePerHour
	}
	if req.PricePerDay != nil {
		space.PricePerDay = req.PricePerDay
	}
	if req.PricePerMonth != nil {
		space.PricePerMonth = req.PricePerMonth
	}
	if req.VehicleTypes != nil {
		space.VehicleTypes = req.VehicleTypes
	}
	if req.Features != nil {
		space.Features = req.Features
	}
	if req.Status != nil {
		space.Status = *req.Status
	}

	if err := h.db.Save(space).Error; err != nil {
		httperr.Internal(c, "failed_to_update_parking_space", "Server error")
		return
	}

	actorID := c.GetUint(middleware.ContextUserID)
	h.audits.Dispatch(audit.Event{
		ActorID:  &actorID,
		Action:   "parking_space.update",
		Entity:   "parking_space",
		EntityID: &space.ID,
	})

	httpresp.OK(c, spaceJSON(space))
}

func (h *ParkingSpaceHandler) Delete(c *gin.Context) {
	space := spaceFromContext(c)
	if space == nil {
		return
	}

	if err := h.db.Delete(&models.ParkingSpace{}, space.ID).Error; err != nil {
		httperr.Internal(c, "failed_to_delete_parking_space", "Server error")
		return
	}

	actorID := c.GetUint(middleware.ContextUserID)
	h.audits.Dispatch(audit.Event{
		ActorID:  &actorID,
		Action:   "parking_space.delete",
		Entity:   "parking_space",
		EntityID: &space.ID,
	})

	httpresp.Message(c, "Parking space deleted successfully")
}

// UploadPhoto accepts one multipart image, converts it to webp and appends
// the stored URL to the space's photo list.
func (h *ParkingSpaceHandler) UploadPhoto(c *gin.Context) {
	space := spaceFromContext(c)
	if space == nil {
		return
	}

	if !h.uploader.Enabled() {
		httperr.Write(c, 503, "photo_storage_unavailable", "Photo storage is not configured")
		return
	}

	file, err := c.FormFile("photo")
	if err != nil {
		httperr.Validation(c, []httperr.FieldError{{Field: "photo", Message: "an image file is required"}})
		return
	}

	src, err := file.Open()
	if err != nil {
		httperr.Internal(c, "failed_to_read_photo", "Server error")
		return
	}
	defer src.Close()

	encoded, err := images.ToWebP(src)
	if err != nil {
		httperr.Validation(c, []httperr.FieldError{{Field: "photo", Message: "file is not a supported image"}})
		return
	}

	key := fmt.Sprintf("parking-spaces/%d/%s.webp", space.ID, uuid.NewString())
	url, err := h.uploader.Upload(c.Request.Context(), key, encoded, "image/webp")
	if err != nil {
		httperr.Internal(c, "failed_to_store_photo", "Server error")
		return
	}

	space.Photos = append(space.Photos, url)
	if err := h.db.Model(space).Update("photos", space.Photos).Error; err != nil {
		httperr.Internal(c, "failed_to_update_parking_space", "Server error")
		return
	}

	httpresp.Created(c, gin.H{"url": url, "photos": space.Photos})
}

// --------- Helpers ---------

func spaceFromContext(c *gin.Context) *models.ParkingSpace {
	v, ok := c.Get(middleware.ContextSpace)
	if !ok {
		httperr.Internal(c, "parking_space_not_loaded", "Server error")
		return nil
	}
	space, ok := v.(*models.ParkingSpace)
	if !ok {
		httperr.Internal(c, "parking_space_not_loaded", "Server error")
		return nil
	}
	return space
}

func spaceJSON(s *models.ParkingSpace) gin.H {
	out := gin.H{
		"id":          s.ID,
		"owner_id":    s.OwnerID,
		"title":       s.Title,
		"description": s.Description,
		"location": gin.H{
			"address":     s.Address,
			"city":        s.City,
			"state":       s.State,
			"zip_code":    s.ZipCode,
			"coordinates": []float64{s.Longitude, s.Latitude},
		},
		"price_per_hour":  s.PricePerHour,
		"price_per_day":   s.PricePerDay,
		"price_per_month": s.PricePerMonth,
		"vehicle_types":   []string(s.VehicleTypes),
		"features":        []string(s.Features),
		"photos":          []string(s.Photos),
		"status":          s.Status,
		"created_at":      s.CreatedAt,
		"updated_at":      s.UpdatedAt,
	}

	if s.Owner.ID != 0 {
		out["owner"] = gin.H{
			"id":    s.Owner.ID,
			"name":  s.Owner.Name,
			"email": s.Owner.Email,
			"phone": s.Owner.Phone,
		}
	}

	return out
}

func spacesJSON(spaces []models.ParkingSpace) []gin.H {
	out := make([]gin.H, 0, len(spaces))
	for i := range spaces {
		out = append(out, spaceJSON(&spaces[i]))
	}
	return out
}
