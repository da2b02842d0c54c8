// ABOUTME: Sentinel errors for the validation pipeline
// ABOUTME: Construction failures wrap ErrConfiguration so callers can use errors.Is
package core

import "errors"

// ErrConfiguration is returned when a component is constructed with invalid settings
var ErrConfiguration = errors.New("configuration error")
