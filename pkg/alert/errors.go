package alert

import "errors"

// Domain errors for quota alerts
var (
	ErrAlertNotFound = errors.New("alert.errors.alert_not_found")
)
