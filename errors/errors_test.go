package errors

import (
	"fmt"
	"testing"
)

func TestErrorClass_String(t *testing.T) {
	tests := []struct {
		class    ErrorClass
		expected string
	}{
		{ErrorTransient, "transient"},
		{ErrorInvalid, "invalid"},
		{ErrorHost, "host"},
		{ErrorClass(999), "unknown"},
	}

	for _, test := range tests {
		t.Run(test.expected, func(t *testing.T) {
			result := test.class.String()
			if result != test.expected {
				t.Errorf("expected %s, got %s", test.expected, result)
			}
		})
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"target unresolved", ErrTargetUnresolved, true},
		{"channel full", ErrChannelFull, true},
		{"channel closed", ErrChannelClosed, true},
		{"session not ready", ErrSessionNotReady, true},
		{"identity unknown", ErrIdentityUnknown, true},
		{"mapping not found", ErrMappingNotFound, false},
		{"host call failed", ErrHostCallFailed, false},
		{"track removed in message", fmt.Errorf("track was removed"), true},
		{"not ready in message", fmt.Errorf("session not ready yet"), true},
		{"classified transient", &ClassifiedError{Class: ErrorTransient, Err: fmt.Errorf("test")}, true},
		{"classified host", &ClassifiedError{Class: ErrorHost, Err: fmt.Errorf("test")}, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := IsTransient(test.err)
			if result != test.expected {
				t.Errorf("expected %v, got %v for error: %v", test.expected, result, test.err)
			}
		})
	}
}

func TestIsInvalid(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"mapping not found", ErrMappingNotFound, true},
		{"invalid source", ErrInvalidSource, true},
		{"missing config", ErrMissingConfig, true},
		{"target unresolved", ErrTargetUnresolved, false},
		{"classified invalid", &ClassifiedError{Class: ErrorInvalid, Err: fmt.Errorf("test")}, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := IsInvalid(test.err)
			if result != test.expected {
				t.Errorf("expected %v, got %v for error: %v", test.expected, result, test.err)
			}
		})
	}
}

func TestIsHost(t *testing.T) {
	if !IsHost(ErrHostCallFailed) {
		t.Error("expected ErrHostCallFailed to classify as host")
	}
	if !IsHost(ErrHostUnsupported) {
		t.Error("expected ErrHostUnsupported to classify as host")
	}
	if IsHost(ErrChannelFull) {
		t.Error("expected ErrChannelFull not to classify as host")
	}
	if IsHost(nil) {
		t.Error("expected nil not to classify as host")
	}
}

func TestWrapHelpers(t *testing.T) {
	base := fmt.Errorf("boom")

	tests := []struct {
		name  string
		wrap  func(error, string, string, string) error
		class ErrorClass
	}{
		{"transient", WrapTransient, ErrorTransient},
		{"invalid", WrapInvalid, ErrorInvalid},
		{"host", WrapHost, ErrorHost},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.wrap(base, "Session", "handleControlEvent", "resolve target")
			if err == nil {
				t.Fatal("expected non-nil error")
			}
			if Classify(err) != test.class {
				t.Errorf("expected class %v, got %v", test.class, Classify(err))
			}
			if !Is(err, base) {
				t.Error("expected wrapped error to match base via Is")
			}
			expected := "Session.handleControlEvent: resolve target failed: boom"
			if err.Error() != expected {
				t.Errorf("expected %q, got %q", expected, err.Error())
			}
		})
	}

	for _, wrap := range []func(error, string, string, string) error{WrapTransient, WrapInvalid, WrapHost} {
		if wrap(nil, "a", "b", "c") != nil {
			t.Error("wrapping nil must return nil")
		}
	}
}

func TestClassify_DefaultsToTransient(t *testing.T) {
	if Classify(fmt.Errorf("something unexpected")) != ErrorTransient {
		t.Error("unknown errors must default to transient so dispatch keeps going")
	}
}
