// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

package validation

import (
	"strings"
	"testing"
)

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 == nil || v1 != v2 {
		t.Error("GetValidator() should return the same non-nil instance")
	}
}

type recommendationsParams struct {
	UserID string `path:"userID" validate:"required,entity_id"`
	Limit  int    `query:"limit" validate:"min=0,max=100"`
}

type searchParams struct {
	Query string `query:"q" validate:"required,search_text,max=200"`
	Limit int    `query:"limit" validate:"min=0,max=100"`
	Mode  string `json:"mode" validate:"omitempty,oneof=title author"`
}

func TestValidateStruct_Valid(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
	}{
		{"numeric user", &recommendationsParams{UserID: "276725", Limit: 10}},
		{"isbn with X", &recommendationsParams{UserID: "034545104X"}},
		{"max length id", &recommendationsParams{UserID: strings.Repeat("a", MaxEntityIDLength), Limit: 100}},
		{"search", &searchParams{Query: "the hobbit", Limit: 20}},
		{"search mode", &searchParams{Query: "tolkien", Mode: "author"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateStruct(tt.input); err != nil {
				t.Errorf("ValidateStruct() = %v, want nil", err)
			}
		})
	}
}

func TestValidateStruct_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		input     interface{}
		wantField string
		wantTag   string
	}{
		{"empty user", &recommendationsParams{}, "userID", "required"},
		{"space in id", &recommendationsParams{UserID: "u 1"}, "userID", "entity_id"},
		{"control char", &recommendationsParams{UserID: "u\x001"}, "userID", "entity_id"},
		{"too long id", &recommendationsParams{UserID: strings.Repeat("a", MaxEntityIDLength+1)}, "userID", "entity_id"},
		{"limit too big", &recommendationsParams{UserID: "u1", Limit: 101}, "limit", "max"},
		{"negative limit", &recommendationsParams{UserID: "u1", Limit: -1}, "limit", "min"},
		{"blank search", &searchParams{Query: "   "}, "q", "search_text"},
		{"bad mode", &searchParams{Query: "x", Mode: "isbn"}, "mode", "oneof"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.input)
			if err == nil {
				t.Fatal("ValidateStruct() = nil, want error")
			}
			errs := err.Errors()
			if len(errs) != 1 {
				t.Fatalf("got %d errors, want 1: %v", len(errs), err)
			}
			if errs[0].Field() != tt.wantField || errs[0].Tag() != tt.wantTag {
				t.Errorf("error = %s/%s, want %s/%s", errs[0].Field(), errs[0].Tag(), tt.wantField, tt.wantTag)
			}
		})
	}
}

func TestToAPIError_SingleError(t *testing.T) {
	err := ValidateStruct(&recommendationsParams{UserID: "u1", Limit: 500})
	if err == nil {
		t.Fatal("expected error")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %q", apiErr.Code)
	}
	if apiErr.Message != "limit must be at most 100" {
		t.Errorf("Message = %q", apiErr.Message)
	}
	if apiErr.Details["field"] != "limit" {
		t.Errorf("Details = %v", apiErr.Details)
	}
}

func TestToAPIError_MultipleErrors(t *testing.T) {
	err := ValidateStruct(&recommendationsParams{UserID: "", Limit: 500})
	if err == nil {
		t.Fatal("expected error")
	}

	apiErr := err.ToAPIError()
	if !strings.Contains(apiErr.Message, "userID: userID is required") ||
		!strings.Contains(apiErr.Message, "limit: limit must be at most 100") {
		t.Errorf("Message = %q", apiErr.Message)
	}
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok || len(fields) != 2 {
		t.Errorf("Details[fields] = %v", apiErr.Details["fields"])
	}
}

func TestErrorMessages(t *testing.T) {
	type strBounds struct {
		Name string `json:"name" validate:"min=3,max=5"`
	}
	tests := []struct {
		input strBounds
		want  string
	}{
		{strBounds{Name: "ab"}, "name must be at least 3 characters"},
		{strBounds{Name: "abcdef"}, "name must be at most 5 characters"},
	}
	for _, tt := range tests {
		err := ValidateStruct(&tt.input)
		if err == nil {
			t.Fatalf("ValidateStruct(%+v) = nil", tt.input)
		}
		if err.Error() != tt.want {
			t.Errorf("Error() = %q, want %q", err.Error(), tt.want)
		}
	}
}
