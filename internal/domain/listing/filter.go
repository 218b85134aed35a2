package listing

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/parknow-app/parknow-api/internal/httperr"
	"github.com/parknow-app/parknow-api/internal/models"
)

const (
	DefaultPage     = 1
	DefaultLimit    = 10
	MaxLimit        = 50
	DefaultRadiusKm = 10
)

// SearchFilter is the parsed, validated form of the public listing query.
// Every field is optional; zero values mean "no clause".
type SearchFilter struct {
	City  string
	State string

	MinPrice *float64
	MaxPrice *float64

	Lat      *float64
	Lng      *float64
	RadiusKm float64

	VehicleType string
	Features    []string

	Page  int
	Limit int
}

// GeoActive reports whether the radius clause applies. Both coordinates must
// be present; a lone lat or lng deactivates the geo filter silently.
func (f *SearchFilter) GeoActive() bool {
	return f.Lat != nil && f.Lng != nil
}

// RadiusMeters is the distance bound handed to the store.
func (f *SearchFilter) RadiusMeters() float64 {
	return f.RadiusKm * 1000
}

func (f *SearchFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// ParseSearchFilter validates the raw query parameters and assembles a
// SearchFilter. All failing parameters are reported together. Unrecognized
// feature tokens are dropped, not rejected.
func ParseSearchFilter(values url.Values) (*SearchFilter, []httperr.FieldError) {
	f := &SearchFilter{
		RadiusKm: DefaultRadiusKm,
		Page:     DefaultPage,
		Limit:    DefaultLimit,
	}
	var errs []httperr.FieldError

	f.City = strings.TrimSpace(values.Get("city"))
	f.State = strings.TrimSpace(values.Get("state"))

	if v := values.Get("minPrice"); v != "" {
		if p, err := strconv.ParseFloat(v, 64); err != nil || p < 0 {
			errs = append(errs, httperr.FieldError{Field: "minPrice", Message: "must be a non-negative number"})
		} else {
			f.MinPrice = &p
		}
	}
	if v := values.Get("maxPrice"); v != "" {
		if p, err := strconv.ParseFloat(v, 64); err != nil || p < 0 {
			errs = append(errs, httperr.FieldError{Field: "maxPrice", Message: "must be a non-negative number"})
		} else {
			f.MaxPrice = &p
		}
	}

	if v := values.Get("lat"); v != "" {
		if p, err := strconv.ParseFloat(v, 64); err != nil {
			errs = append(errs, httperr.FieldError{Field: "lat", Message: "must be a number"})
		} else {
			f.Lat = &p
		}
	}
	if v := values.Get("lng"); v != "" {
		if p, err := strconv.ParseFloat(v, 64); err != nil {
			errs = append(errs, httperr.FieldError{Field: "lng", Message: "must be a number"})
		} else {
			f.Lng = &p
		}
	}
	if v := values.Get("radius"); v != "" {
		if p, err := strconv.ParseFloat(v, 64); err != nil || p < 0 {
			errs = append(errs, httperr.FieldError{Field: "radius", Message: "must be a non-negative number"})
		} else {
			f.RadiusKm = p
		}
	}

	if v := values.Get("vehicleType"); v != "" {
		if !models.IsValidVehicleType(v) {
			errs = append(errs, httperr.FieldError{
				Field:   "vehicleType",
				Message: fmt.Sprintf("must be one of: %s", strings.Join(models.AllowedVehicleTypes, ", ")),
			})
		} else {
			f.VehicleType = v
		}
	}

	if v := values.Get("features"); v != "" {
		for _, tok := range strings.Split(v, ",") {
			tok = strings.TrimSpace(tok)
			if models.IsAllowedFeature(tok) {
				f.Features = append(f.Features, tok)
			}
		}
	}

	if v := values.Get("page"); v != "" {
		if p, err := strconv.Atoi(v); err != nil || p < 1 {
			errs = append(errs, httperr.FieldError{Field: "page", Message: "must be an integer greater than or equal to 1"})
		} else {
			f.Page = p
		}
	}
	if v := values.Get("limit"); v != "" {
		if p, err := strconv.Atoi(v); err != nil || p < 1 || p > MaxLimit {
			errs = append(errs, httperr.FieldError{Field: "limit", Message: fmt.Sprintf("must be an integer between 1 and %d", MaxLimit)})
		} else {
			f.Limit = p
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return f, nil
}
