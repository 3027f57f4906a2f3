package types

import "errors"

var (
	// ErrProviderNotSet is returned when a provider is not configured
	ErrProviderNotSet = errors.New("provider not set")

	// ErrToolNotFound is returned when a tool is not found
	ErrToolNotFound = errors.New("tool not found")

	// ErrMaxStepsReached is returned when the step budget is exhausted
	ErrMaxStepsReached = errors.New("max steps reached")

	// ErrEmptyResponse is returned when the provider returns an empty response
	ErrEmptyResponse = errors.New("empty response from provider")
)
