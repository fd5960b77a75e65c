package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"
)

func TestPaniniError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *PaniniError
		expected string
	}{
		{
			name:     "error without cause",
			err:      New(CategoryConfig, SeverityFatal, "input folder missing"),
			expected: "config (fatal): input folder missing",
		},
		{
			name:     "error with cause",
			err:      Wrap(fmt.Errorf("no such file"), CategoryData, SeverityError, "data file could not be parsed"),
			expected: "data (error): data file could not be parsed: no such file",
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

func TestPaniniError_WithContext(t *testing.T) {
	err := PageRenderFailed("about", fmt.Errorf("bad syntax")).
		WithContext("layout", "default")

	if err.Context == nil {
		t.Fatal("Context should not be nil")
	}
	if err.Context["page"] != "about" {
		t.Errorf("Context[page] = %v, want about", err.Context["page"])
	}
	if err.Context["layout"] != "default" {
		t.Errorf("Context[layout] = %v, want default", err.Context["layout"])
	}
}

func TestIsCategory(t *testing.T) {
	configErr := UnknownEngine("nunjucks")
	renderErr := PageRenderFailed("index", fmt.Errorf("boom"))
	standardErr := fmt.Errorf("standard error")
	wrapped := fmt.Errorf("outer: %w", configErr)

	tests := []struct {
		name     string
		err      error
		category ErrorCategory
		expected bool
	}{
		{"config error matches config category", configErr, CategoryConfig, true},
		{"config error doesn't match render category", configErr, CategoryRender, false},
		{"render error matches render category", renderErr, CategoryRender, true},
		{"standard error doesn't match any category", standardErr, CategoryConfig, false},
		{"wrapped config error still matches", wrapped, CategoryConfig, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := IsCategory(test.err, test.category); got != test.expected {
				t.Errorf("IsCategory() = %v, want %v", got, test.expected)
			}
		})
	}
}

func TestPaniniError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := SetupFailed("data", cause)

	if !stdErrors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestPaniniError_IsFatal(t *testing.T) {
	if !UnknownEngine("x").IsFatal() {
		t.Error("config errors should be fatal")
	}
	if PageRenderFailed("p", fmt.Errorf("e")).IsFatal() {
		t.Error("render errors must never be fatal")
	}
}
