package service

import "errors"

// Rental booking errors. All are client errors and never retryable.
var (
	ErrRenterNotFound      = errors.New("the user does not exist")
	ErrRenterWrongRole     = errors.New("the user does not have the required role")
	ErrAdminNotFound       = errors.New("the admin does not exist")
	ErrAdminWrongRole      = errors.New("the admin does not have the required role")
	ErrCarNotFound         = errors.New("the car does not exist")
	ErrDateRangeConflict   = errors.New("this car is already rented for the selected period")
	ErrInvalidDateRange    = errors.New("starting date must not be after due date")
	ErrInvalidPrice        = errors.New("price per day must not be negative")
	ErrRentalNotFound      = errors.New("the rent does not exist")
	ErrInvalidStatus       = errors.New("invalid status")
	ErrRentalNotApplicable = errors.New("rental update is not applicable")
)

// Catalog and directory errors.
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrRoleNotFound        = errors.New("role not found")
	ErrEmailTaken          = errors.New("email already registered")
	ErrPictureNotFound     = errors.New("picture not found")
	ErrInvalidPictureType  = errors.New("invalid car picture type")
	ErrDocumentNotFound    = errors.New("document not found")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidResetCode    = errors.New("invalid or expired verification code")
	ErrInvalidToken        = errors.New("invalid token")
	ErrMissingRequiredData = errors.New("missing required data")
)
