package services

import "errors"

// Data service errors
var (
	// Dataset errors
	ErrUnknownDataset = errors.New("unknown dataset")

	// Series errors
	ErrSeriesNotFound = errors.New("series not found")

	// Pattern errors
	ErrUnknownPattern = errors.New("unknown pattern type")

	// Export errors
	ErrUnknownFormat = errors.New("unknown export format")

	// General errors
	ErrInvalidInput       = errors.New("invalid input")
	ErrServiceUnavailable = errors.New("service temporarily unavailable")
)
