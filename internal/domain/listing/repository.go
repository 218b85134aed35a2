package listing

import (
	"context"

	"github.com/parknow-app/parknow-api/internal/models"
)

type Repository interface {
	// Search runs the conjunctive predicate built from f and returns one page
	// of spaces plus the total match count. Page and count are issued against
	// the same predicate but not inside one snapshot.
	Search(
		ctx context.Context,
		f *SearchFilter,
	) ([]models.ParkingSpace, int64, error)

	// SearchByOwner lists one owner's spaces, newest first, optionally
	// restricted to a status.
	SearchByOwner(
		ctx context.Context,
		ownerID uint,
		status string,
		page int,
		limit int,
	) ([]models.ParkingSpace, int64, error)

	FindByID(
		ctx context.Context,
		id uint,
	) (*models.ParkingSpace, error)
}
