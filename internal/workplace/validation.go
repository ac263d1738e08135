package workplace

import (
	"fmt"
	"strings"
)

// NormalizeInput trims and defaults an upsert input. Rejections wrap
// ErrInvalidInput.
func NormalizeInput(input UpsertInput) (UpsertInput, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)

	if input.Name == "" {
		return UpsertInput{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if input.Latitude < -90 || input.Latitude > 90 {
		return UpsertInput{}, fmt.Errorf("%w: latitude %v out of range", ErrInvalidInput, input.Latitude)
	}
	if input.Longitude < -180 || input.Longitude > 180 {
		return UpsertInput{}, fmt.Errorf("%w: longitude %v out of range", ErrInvalidInput, input.Longitude)
	}
	if input.RadiusM == 0 {
		input.RadiusM = DefaultRadiusM
	}
	if input.RadiusM < MinRadiusM {
		return UpsertInput{}, fmt.Errorf("%w: radius must be at least %dm", ErrInvalidInput, MinRadiusM)
	}
	return input, nil
}
