/*
Copyright 2025 CareSignal, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge

import (
	"fmt"
	"net/url"
)

const (
	defaultMaxTokens   = 4096
	maxAllowedTokens   = 32000
	defaultTemperature = 0.0
)

// settings holds provider-independent configuration assembled from options.
type settings struct {
	apiKey      string
	baseURL     string
	maxTokens   int64
	temperature float64
}

func defaultSettings() *settings {
	return &settings{
		maxTokens:   defaultMaxTokens,
		temperature: defaultTemperature,
	}
}

// Option configures a judge backend.
type Option func(*settings) error

// WithAPIKey sets the provider API key explicitly instead of relying on the
// provider SDK's environment lookup.
func WithAPIKey(key string) Option {
	return func(s *settings) error {
		if key == "" {
			return fmt.Errorf("API key cannot be empty")
		}
		s.apiKey = key
		return nil
	}
}

// WithBaseURL points the backend at an alternate, API-compatible endpoint.
func WithBaseURL(baseURL string) Option {
	return func(s *settings) error {
		if _, err := url.Parse(baseURL); err != nil || baseURL == "" {
			return fmt.Errorf("invalid base URL %q", baseURL)
		}
		s.baseURL = baseURL
		return nil
	}
}

// WithMaxTokens sets the maximum tokens for responses
func WithMaxTokens(tokens int64) Option {
	return func(s *settings) error {
		if tokens <= 0 {
			return fmt.Errorf("max tokens must be positive, got %d", tokens)
		}
		if tokens > maxAllowedTokens {
			return fmt.Errorf("max tokens cannot exceed %d, got %d", maxAllowedTokens, tokens)
		}
		s.maxTokens = tokens
		return nil
	}
}

// WithTemperature sets the sampling temperature (0.0-1.0)
func WithTemperature(temperature float64) Option {
	return func(s *settings) error {
		if temperature < 0.0 || temperature > 1.0 {
			return fmt.Errorf("temperature must be between 0.0 and 1.0, got %f", temperature)
		}
		s.temperature = temperature
		return nil
	}
}
