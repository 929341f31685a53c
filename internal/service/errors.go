package service

import "errors"

var (
	// ErrInvalidUserID is returned when user ID is empty.
	ErrInvalidUserID = errors.New("invalid user id")

	// ErrInvalidTripID is returned when trip ID is empty.
	ErrInvalidTripID = errors.New("invalid trip id")

	// ErrInvalidStopID is returned when stop ID is empty.
	ErrInvalidStopID = errors.New("invalid stop id")

	// ErrInvalidTripName is returned when a trip is saved without a name.
	ErrInvalidTripName = errors.New("trip name is required")

	// ErrNoStops is returned when a trip is saved without stops.
	ErrNoStops = errors.New("trip must have at least one stop")

	// ErrInvalidLocation is returned when stop coordinates are invalid.
	ErrInvalidLocation = errors.New("invalid location")

	// ErrInvalidCost is returned when a stop cost is negative.
	ErrInvalidCost = errors.New("invalid stop cost")

	// ErrInvalidStopTime is returned when a stop time is negative.
	ErrInvalidStopTime = errors.New("invalid stop time")

	// ErrInvalidDistance is returned when a budget distance is negative.
	ErrInvalidDistance = errors.New("invalid distance")

	// ErrInvalidEmail is returned when an email address is malformed.
	ErrInvalidEmail = errors.New("invalid email")

	// ErrUserAlreadyExists is returned when registering an email twice.
	ErrUserAlreadyExists = errors.New("user already registered")

	// ErrTripSaveInProgress is returned when another save of the same trip holds the lock.
	ErrTripSaveInProgress = errors.New("trip save already in progress")

	// ErrDirectionsUnavailable is returned when no directions provider is configured.
	ErrDirectionsUnavailable = errors.New("directions provider not configured")

	// ErrGeocodingUnavailable is returned when no geocoder is configured.
	ErrGeocodingUnavailable = errors.New("geocoding not configured")

	// ErrAddressRequired is returned when geocoding an empty address.
	ErrAddressRequired = errors.New("address is required")

	// ErrPlaceNotFound is returned when geocoding finds no match.
	ErrPlaceNotFound = errors.New("place not found")

	// ErrGeocodingFailed is returned when the geocoding provider fails.
	ErrGeocodingFailed = errors.New("geocoding failed")
)
