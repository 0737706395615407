package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"
)

func TestReleaseError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ReleaseError
		expected string
	}{
		{
			name:     "error without cause",
			err:      New(CategoryConfig, SeverityFatal, "configuration invalid"),
			expected: "config (fatal): configuration invalid",
		},
		{
			name:     "error with cause",
			err:      Wrap(fmt.Errorf("file not found"), CategoryConfig, SeverityFatal, "failed to load config"),
			expected: "config (fatal): failed to load config: file not found",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := test.err.Error()
			if result != test.expected {
				t.Errorf("Error() = %q, want %q", result, test.expected)
			}
		})
	}
}

func TestReleaseError_WithContext(t *testing.T) {
	err := New(CategoryPublish, SeverityWarning, "upload rejected").
		WithContext("artifact", "rusocsci-0.8.0-py2.py3-none-any.whl").
		WithContext("status", 400)

	if err.Context == nil {
		t.Fatal("Context should not be nil")
	}

	if err.Context["artifact"] != "rusocsci-0.8.0-py2.py3-none-any.whl" {
		t.Errorf("Context[artifact] = %v", err.Context["artifact"])
	}

	if err.Context["status"] != 400 {
		t.Errorf("Context[status] = %v, want 400", err.Context["status"])
	}
}

func TestIsCategory(t *testing.T) {
	configErr := New(CategoryConfig, SeverityFatal, "config error")
	buildErr := New(CategoryBuild, SeverityError, "build error")
	standardErr := fmt.Errorf("standard error")

	tests := []struct {
		name     string
		err      error
		category ErrorCategory
		expected bool
	}{
		{"config error matches config category", configErr, CategoryConfig, true},
		{"config error doesn't match build category", configErr, CategoryBuild, false},
		{"build error matches build category", buildErr, CategoryBuild, true},
		{"standard error doesn't match any category", standardErr, CategoryConfig, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := IsCategory(test.err, test.category)
			if result != test.expected {
				t.Errorf("IsCategory() = %v, want %v", result, test.expected)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Wrap(cause, CategoryFileSystem, SeverityFatal, "cannot write archive")

	if !stdErrors.Is(err, cause) {
		t.Error("wrapped cause should be reachable via errors.Is")
	}
}

func TestGetCategory(t *testing.T) {
	if got := GetCategory(New(CategoryDocs, SeverityError, "x")); got != CategoryDocs {
		t.Errorf("GetCategory() = %v, want %v", got, CategoryDocs)
	}
	if got := GetCategory(fmt.Errorf("plain")); got != CategoryInternal {
		t.Errorf("GetCategory() = %v, want %v", got, CategoryInternal)
	}
}
