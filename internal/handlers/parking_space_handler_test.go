package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/parknow-app/parknow-api/internal/audit"
	"github.com/parknow-app/parknow-api/internal/config"
	listing "github.com/parknow-app/parknow-api/internal/domain/listing"
	"github.com/parknow-app/parknow-api/internal/middleware"
	"github.com/parknow-app/parknow-api/internal/models"
)

// stubRepo records the filter it receives and replays canned results.
type stubRepo struct {
	lastFilter *listing.SearchFilter
	spaces     []models.ParkingSpace
	total      int64
	findErr    error
}

func (s *stubRepo) Search(_ context.Context, f *listing.SearchFilter) ([]models.ParkingSpace, int64, error) {
	s.lastFilter = f
	return s.spaces, s.total, nil
}

func (s *stubRepo) SearchByOwner(_ context.Context, _ uint, _ string, _, _ int) ([]models.ParkingSpace, int64, error) {
	return s.spaces, s.total, nil
}

func (s *stubRepo) FindByID(_ context.Context, _ uint) (*models.ParkingSpace, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if len(s.spaces) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &s.spaces[0], nil
}

func fakeAuth(userID uint, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID)
		c.Set(middleware.ContextUserRole, role)
		c.Next()
	}
}

func newMockGorm(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 db,
		PreferSimpleProtocol: true,
	}), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("gorm open error: %v", err)
	}

	return gdb, mock
}

func newSpaceRouter(t *testing.T, db *gorm.DB, repo listing.Repository) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	audits := audit.NewDispatcher(audit.New(db))
	h := NewParkingSpaceHandler(db, repo, audits, nil)
	cfg := &config.Config{JWTSecret: "test-secret"}

	r := gin.New()
	spaces := r.Group("/api/parking-spaces")
	{
		spaces.GET("", h.List)
		spaces.GET("/owner/my-spaces", middleware.AuthMiddleware(cfg), middleware.RequireRole(models.RoleOwner, models.RoleAdmin), h.MySpaces)
		spaces.GET("/:id", h.GetByID)
		spaces.POST("", fakeAuth(7, models.RoleOwner), h.Create)
		spaces.PUT("/:id", fakeAuth(9, models.RoleUser), middleware.RequireSpaceOwnership(db), h.Update)
		spaces.DELETE("/:id", fakeAuth(1, models.RoleAdmin), middleware.RequireSpaceOwnership(db), h.Delete)
	}
	return r
}

func TestListPaginationEnvelope(t *testing.T) {
	repo := &stubRepo{total: 25}
	r := newSpaceRouter(t, nil, repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/parking-spaces?page=2&limit=10", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}

	var resp struct {
		Pagination struct {
			Current int   `json:"current"`
			Pages   int   `json:"pages"`
			Total   int64 `json:"total"`
			Limit   int   `json:"limit"`
		} `json:"pagination"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response json: %v", err)
	}
	if resp.Pagination.Current != 2 || resp.Pagination.Pages != 3 || resp.Pagination.Total != 25 || resp.Pagination.Limit != 10 {
		t.Fatalf("unexpected pagination envelope: %+v", resp.Pagination)
	}
}

func TestListRejectsBadVehicleType(t *testing.T) {
	repo := &stubRepo{}
	r := newSpaceRouter(t, nil, repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/parking-spaces?vehicleType=plane", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "vehicleType") {
		t.Fatalf("validation error must name the field: %s", w.Body.String())
	}
	if repo.lastFilter != nil {
		t.Fatalf("store must not be queried on validation failure")
	}
}

func TestListDropsUnknownFeatureToken(t *testing.T) {
	repo := &stubRepo{}
	r := newSpaceRouter(t, nil, repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/parking-spaces?features=covered,helipad", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	if len(repo.lastFilter.Features) != 1 || repo.lastFilter.Features[0] != "covered" {
		t.Fatalf("expected only the recognized token, got %v", repo.lastFilter.Features)
	}
}

func TestListLatAloneDisablesGeo(t *testing.T) {
	repo := &stubRepo{}
	r := newSpaceRouter(t, nil, repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/parking-spaces?lat=40.7", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if repo.lastFilter.GeoActive() {
		t.Fatalf("geo filter must be inactive with only lat")
	}
}

func TestOwnerRouteNotCapturedByIDParam(t *testing.T) {
	repo := &stubRepo{}
	r := newSpaceRouter(t, nil, repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/parking-spaces/owner/my-spaces", nil)
	r.ServeHTTP(w, req)

	// 401 proves the literal route (and its auth gate) matched, not /:id
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 from the literal route, got %d (%s)", w.Code, w.Body.String())
	}
}

func TestGetByIDNotFound(t *testing.T) {
	repo := &stubRepo{}
	r := newSpaceRouter(t, nil, repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/parking-spaces/999", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestCreateRejectsNegativePrice(t *testing.T) {
	repo := &stubRepo{}
	r := newSpaceRouter(t, nil, repo)

	body := `{
		"title": "Downtown spot",
		"location": {"address": "1 Main St", "city": "Austin", "state": "TX", "zip_code": "73301", "coordinates": [-97.74, 30.27]},
		"price_per_hour": -1,
		"vehicle_types": ["car"]
	}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/parking-spaces", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative price, got %d (%s)", w.Code, w.Body.String())
	}
}

func TestCreateAcceptsZeroPrice(t *testing.T) {
	gdb, mock := newMockGorm(t)
	mock.MatchExpectationsInOrder(false)

	mock.ExpectQuery(`^INSERT INTO "parking_spaces"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery(`^SELECT \* FROM "parking_spaces"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "title", "status"}).
			AddRow(1, 7, "Free spot", "active"))
	mock.ExpectQuery(`^SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}).
			AddRow(7, "Owner", "owner@example.com"))

	repo := &stubRepo{}
	r := newSpaceRouter(t, gdb, repo)

	body := `{
		"title": "Free spot",
		"location": {"address": "1 Main St", "city": "Austin", "state": "TX", "zip_code": "73301", "coordinates": [-97.74, 30.27]},
		"price_per_hour": 0,
		"vehicle_types": ["car"]
	}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/parking-spaces", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 for zero price, got %d (%s)", w.Code, w.Body.String())
	}
}

func TestUpdateForbiddenForNonOwner(t *testing.T) {
	gdb, mock := newMockGorm(t)

	// record owned by user 7; the router authenticates user 9 with role user
	mock.ExpectQuery(`^SELECT \* FROM "parking_spaces"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "status"}).
			AddRow(5, 7, "active"))
	mock.ExpectQuery(`^SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(7, "Owner"))

	r := newSpaceRouter(t, gdb, &stubRepo{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/parking-spaces/5", strings.NewReader(`{"title":"Hacked title"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d (%s)", w.Code, w.Body.String())
	}
}

func TestDeleteMissingRecordIsNotFound(t *testing.T) {
	gdb, mock := newMockGorm(t)

	// admin caller, but the record does not exist
	mock.ExpectQuery(`^SELECT \* FROM "parking_spaces"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "status"}))

	r := newSpaceRouter(t, gdb, &stubRepo{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/parking-spaces/123", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d (%s)", w.Code, w.Body.String())
	}
}
