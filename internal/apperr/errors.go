package apperr

import "errors"

// Validation is returned when the input fails field-level validation.
var Validation = errors.New("validation failed")

// NotFound indicates that the referenced resource does not exist.
var NotFound = errors.New("not found")

// Conflict indicates a state conflict: resource already claimed,
// order already assigned, or a lost concurrent race (HTTP 409).
var Conflict = errors.New("conflict")

// InvalidTransition is returned when an assignment status change
// is not allowed from the current status.
var InvalidTransition = errors.New("invalid status transition")

// UpstreamUnavailable indicates the order/payment service could not
// be reached after retries (HTTP 502).
var UpstreamUnavailable = errors.New("upstream unavailable")
