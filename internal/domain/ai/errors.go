package ai

import "errors"

// ErrProviderUnavailable indicates no completion provider is configured.
var ErrProviderUnavailable = errors.New("ai: provider unavailable")

// ErrProviderError indicates the provider call failed or timed out.
var ErrProviderError = errors.New("ai: provider error")
