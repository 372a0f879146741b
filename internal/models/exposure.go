package models

// Exposure represents the reviewer's verdict on whether the survey target
// is visible above water in a scene.
type Exposure string

const (
	ExposureExposed    Exposure = "Exposed"
	ExposureNotExposed Exposure = "Not Exposed"
	ExposureNotMarked  Exposure = "Not Marked"
)

// Next cycles through the exposure states in review order.
func (e Exposure) Next() Exposure {
	switch e {
	case ExposureNotMarked:
		return ExposureExposed
	case ExposureExposed:
		return ExposureNotExposed
	default:
		return ExposureNotMarked
	}
}

// Valid reports whether e is one of the known exposure states.
func (e Exposure) Valid() bool {
	switch e {
	case ExposureExposed, ExposureNotExposed, ExposureNotMarked:
		return true
	}
	return false
}
