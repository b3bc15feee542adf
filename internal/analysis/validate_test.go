package analysis

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/jackzampolin/docsmith/internal/providers"
)

func TestValidateConversion(t *testing.T) {
	mock := providers.NewMockClient(providers.MockResponse{
		Content: `{"is_valid": true, "quality_score": 0.85, "issues": [], "missed_variables": ["due_date"]}`,
	})
	vars := []VariableSuggestion{{Name: "client_company_name", OriginalText: "Acme Corp", SuggestedPlaceholder: "{{client_company_name}}"}}

	v, err := newTestClient(mock).ValidateConversion(context.Background(), "Dear Acme Corp", "Dear {{client_company_name}}", vars)
	if err != nil {
		t.Fatalf("ValidateConversion() error = %v", err)
	}
	want := &Verdict{IsValid: true, QualityScore: 0.85, Issues: []string{}, Suggestions: []string{}, MissedVariables: []string{"due_date"}}
	if !reflect.DeepEqual(v, want) {
		t.Errorf("verdict = %+v, want %+v", v, want)
	}

	req := mock.LastRequest()
	if req.MaxTokens != 1000 || req.Temperature != 0.1 {
		t.Errorf("request = %+v", req)
	}
	if !strings.Contains(req.Messages[1].Content, `"original": "Acme Corp"`) {
		t.Error("applied variables missing from prompt")
	}
}

func TestValidateConversion_Errors(t *testing.T) {
	t.Run("service failure is surfaced", func(t *testing.T) {
		mock := providers.NewMockClient(providers.MockResponse{Err: &providers.APIError{StatusCode: 500}})
		v, err := newTestClient(mock).ValidateConversion(context.Background(), "a", "b", nil)
		var se *ServiceError
		if v != nil || !errors.As(err, &se) {
			t.Errorf("ValidateConversion() = %+v, %v", v, err)
		}
	})

	t.Run("missing verdict", func(t *testing.T) {
		mock := providers.NewMockClient(providers.MockResponse{Content: `{"quality_score": 0.5}`})
		_, err := newTestClient(mock).ValidateConversion(context.Background(), "a", "b", nil)
		var fe *ResponseFormatError
		if !errors.As(err, &fe) {
			t.Errorf("error = %v, want *ResponseFormatError", err)
		}
	})
}
