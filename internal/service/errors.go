package service

import "errors"

// Common service errors
var (
	// ErrUnauthorized is returned when user is not authenticated
	ErrUnauthorized = errors.New("unauthorized")

	// ErrJobNotFound is returned when a job is not found
	ErrJobNotFound = errors.New("job not found")

	// ErrCustomerNotFound is returned when a customer is not found
	ErrCustomerNotFound = errors.New("customer not found")

	// ErrVendorNotFound is returned when a vendor is not found
	ErrVendorNotFound = errors.New("vendor not found")

	// ErrLineItemNotFound is returned when a line item is not found
	ErrLineItemNotFound = errors.New("line item not found")

	// ErrPurchaseOrderNotFound is returned when a purchase order is not found
	ErrPurchaseOrderNotFound = errors.New("purchase order not found")

	// ErrComponentNotFound is returned when a job component is not found
	ErrComponentNotFound = errors.New("job component not found")

	// ErrUserNotFound is returned when a user is not found
	ErrUserNotFound = errors.New("user not found")

	// ErrFileNotFound is returned when an uploaded file is not found
	ErrFileNotFound = errors.New("file not found")

	// ErrCutNotApplicable is returned when an intermediary cut is set on a
	// partner-routed job, where the partner split applies instead
	ErrCutNotApplicable = errors.New("intermediary cut does not apply to partner-routed jobs")
)
