package repository

import (
	"context"
	"sync"

	"github.com/lib/pq"
	"gorm.io/gorm"

	listing "github.com/parknow-app/parknow-api/internal/domain/listing"
	"github.com/parknow-app/parknow-api/internal/models"
)

// haversineMeters computes the great-circle distance from the stored
// coordinates to a query point. Arguments: lat, lng, lat.
const haversineMeters = `(6371000 * acos(LEAST(1.0,
    cos(radians(?)) * cos(radians(latitude)) * cos(radians(longitude) - radians(?)) +
    sin(radians(?)) * sin(radians(latitude)))))`

type ParkingSpaceGormRepository struct {
	db *gorm.DB
}

func NewParkingSpaceGormRepository(db *gorm.DB) *ParkingSpaceGormRepository {
	return &ParkingSpaceGormRepository{db: db}
}

// applyFilter translates the search filter into the conjunctive predicate.
// Only active spaces are ever visible through the public search.
func applyFilter(q *gorm.DB, f *listing.SearchFilter) *gorm.DB {
	q = q.Where("status = ?", models.SpaceStatusActive)

	if f.City != "" {
		q = q.Where("city ILIKE ?", "%"+f.City+"%")
	}
	if f.State != "" {
		q = q.Where("state ILIKE ?", "%"+f.State+"%")
	}

	if f.MinPrice != nil {
		q = q.Where("price_per_hour >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price_per_hour <= ?", *f.MaxPrice)
	}

	if f.VehicleType != "" {
		q = q.Where("? = ANY(vehicle_types)", f.VehicleType)
	}

	if len(f.Features) > 0 {
		q = q.Where("features && ?", pq.Array(f.Features))
	}

	if f.GeoActive() {
		q = q.Where(haversineMeters+" <= ?", *f.Lat, *f.Lng, *f.Lat, f.RadiusMeters())
	}

	return q
}

func (r *ParkingSpaceGormRepository) Search(
	ctx context.Context,
	f *listing.SearchFilter,
) ([]models.ParkingSpace, int64, error) {

	pageQuery := applyFilter(
		r.db.WithContext(ctx).Model(&models.ParkingSpace{}),
		f,
	).Preload("Owner")

	if f.GeoActive() {
		// the near-query orders by ascending distance as a side effect
		pageQuery = pageQuery.
			Select("*, "+haversineMeters+" AS distance", *f.Lat, *f.Lng, *f.Lat).
			Order("distance ASC")
	} else {
		pageQuery = pageQuery.Order("created_at DESC")
	}

	pageQuery = pageQuery.Offset(f.Offset()).Limit(f.Limit)

	countQuery := applyFilter(
		r.db.WithContext(ctx).Model(&models.ParkingSpace{}),
		f,
	)

	// page and count run concurrently against the same predicate, without a
	// transaction; a write landing between them is accepted
	var (
		spaces   []models.ParkingSpace
		total    int64
		findErr  error
		countErr error
		wg       sync.WaitGroup
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		findErr = pageQuery.Find(&spaces).Error
	}()
	go func() {
		defer wg.Done()
		countErr = countQuery.Count(&total).Error
	}()
	wg.Wait()

	if findErr != nil {
		return nil, 0, findErr
	}
	if countErr != nil {
		return nil, 0, countErr
	}

	return spaces, total, nil
}

func (r *ParkingSpaceGormRepository) SearchByOwner(
	ctx context.Context,
	ownerID uint,
	status string,
	page int,
	limit int,
) ([]models.ParkingSpace, int64, error) {

	byOwner := func() *gorm.DB {
		q := r.db.WithContext(ctx).
			Model(&models.ParkingSpace{}).
			Where("owner_id = ?", ownerID)
		if status != "" {
			q = q.Where("status = ?", status)
		}
		return q
	}

	var spaces []models.ParkingSpace
	if err := byOwner().
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&spaces).Error; err != nil {
		return nil, 0, err
	}

	var total int64
	if err := byOwner().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	return spaces, total, nil
}

func (r *ParkingSpaceGormRepository) FindByID(
	ctx context.Context,
	id uint,
) (*models.ParkingSpace, error) {

	var space models.ParkingSpace
	if err := r.db.WithContext(ctx).
		Preload("Owner").
		First(&space, id).Error; err != nil {
		return nil, err
	}
	return &space, nil
}

// Compile-time check
var _ listing.Repository = (*ParkingSpaceGormRepository)(nil)
