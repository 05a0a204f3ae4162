package tank

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// Validation failure reasons. Checked in order; the first violated rule
// wins and the operation is aborted before any network or store call.
var (
	ErrIDAndBeerTypeRequired = errors.New("id and beer type are required")
	ErrBeerTypeRequired      = errors.New("beer type is required")
	ErrNotNumeric            = errors.New("volume and capacity must be valid numbers")
	ErrVolumeExceedsCapacity = errors.New("volume cannot exceed capacity")
	ErrNotPositive           = errors.New("values must be positive")
)

// FormInput is the raw operator form submission. Numeric fields arrive as
// strings and are parsed during validation.
type FormInput struct {
	ID             string
	BeerType       string
	VolumeLiters   string
	CapacityLiters string
	Status         Status
}

// ParseNew validates a create-form submission and returns the trimmed,
// parsed Tank. The id is operator-assigned and must be non-blank here;
// collision with an existing record is the store's responsibility.
func ParseNew(in FormInput) (Tank, error) {
	if strings.TrimSpace(in.ID) == "" || strings.TrimSpace(in.BeerType) == "" {
		return Tank{}, ErrIDAndBeerTypeRequired
	}
	return parse(strings.TrimSpace(in.ID), in)
}

// ParseUpdate validates an edit-form submission. The id is fixed for the
// lifetime of the record and is not re-validated on this path.
func ParseUpdate(id string, in FormInput) (Tank, error) {
	if strings.TrimSpace(in.BeerType) == "" {
		return Tank{}, ErrBeerTypeRequired
	}
	return parse(id, in)
}

func parse(id string, in FormInput) (Tank, error) {
	volume, errV := strconv.ParseFloat(strings.TrimSpace(in.VolumeLiters), 64)
	capacity, errC := strconv.ParseFloat(strings.TrimSpace(in.CapacityLiters), 64)
	if errV != nil || errC != nil || math.IsInf(volume, 0) || math.IsNaN(volume) ||
		math.IsInf(capacity, 0) || math.IsNaN(capacity) {
		return Tank{}, ErrNotNumeric
	}
	if volume > capacity {
		return Tank{}, ErrVolumeExceedsCapacity
	}
	if volume < 0 || capacity <= 0 {
		return Tank{}, ErrNotPositive
	}
	return Tank{
		ID:             id,
		BeerType:       strings.TrimSpace(in.BeerType),
		VolumeLiters:   volume,
		CapacityLiters: capacity,
		Status:         in.Status,
	}, nil
}

// Validate applies the same rule set to an already-typed Tank. The API
// handler runs this on every create and update so that client-side form
// validation stays a UX nicety rather than the authoritative gate.
func (t Tank) Validate(requireID bool) error {
	switch {
	case requireID && (strings.TrimSpace(t.ID) == "" || strings.TrimSpace(t.BeerType) == ""):
		return ErrIDAndBeerTypeRequired
	case !requireID && strings.TrimSpace(t.BeerType) == "":
		return ErrBeerTypeRequired
	}
	if math.IsInf(t.VolumeLiters, 0) || math.IsNaN(t.VolumeLiters) ||
		math.IsInf(t.CapacityLiters, 0) || math.IsNaN(t.CapacityLiters) {
		return ErrNotNumeric
	}
	if t.VolumeLiters > t.CapacityLiters {
		return ErrVolumeExceedsCapacity
	}
	if t.VolumeLiters < 0 || t.CapacityLiters <= 0 {
		return ErrNotPositive
	}
	return nil
}
