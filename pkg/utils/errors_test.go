package utils

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestCategorizeError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"nil error", nil, "None"},
		{"retry failed with timeout", fmt.Errorf("%w: %w", ErrRetryFailed, errors.New("dial tcp: i/o timeout")), "RetryFailed_NetworkTimeout"},
		{"retry failed connection refused", fmt.Errorf("%w: %w", ErrRetryFailed, errors.New("connect: connection refused")), "RetryFailed_ConnectionRefused"},
		{"retry failed dns", fmt.Errorf("%w: %w", ErrRetryFailed, errors.New("lookup example.invalid: no such host")), "RetryFailed_DNSLookup"},
		{"retry failed other", fmt.Errorf("%w: %w", ErrRetryFailed, errors.New("connection closed unexpectedly")), "RetryFailed_NetworkOther"},
		{"retry failed bare", ErrRetryFailed, "RetryFailed_Unknown"},
		{"invalid start url", fmt.Errorf("%w: 'not a url'", ErrInvalidStartURL), "Input_StartURL"},
		{"max depth", ErrMaxDepthExceeded, "Policy_MaxDepth"},
		{"page budget", ErrPageBudgetExceeded, "Policy_MaxPages"},
		{"not html", ErrNonHTMLContent, "Content_NotHTML"},
		{"http 404", fmt.Errorf("%w: status 404 Not Found", ErrHTTPStatus), "HTTP_404"},
		{"http 500", fmt.Errorf("%w: status 503 Service Unavailable", ErrHTTPStatus), "HTTP_5xx"},
		{"url parsing", fmt.Errorf("%w: parsing URL 'x'", ErrParsing), "Content_ParsingURL"},
		{"html parsing", fmt.Errorf("%w: parsing HTML from 'x'", ErrParsing), "Content_ParsingHTML"},
		{"context canceled", context.Canceled, "System_ContextCanceled"},
		{"context deadline", context.DeadlineExceeded, "System_ContextDeadlineExceeded"},
		{"unknown", errors.New("something odd"), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CategorizeError(tt.err); got != tt.expected {
				t.Errorf("CategorizeError() = %q, want %q", got, tt.expected)
			}
		})
	}
}
