// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func subjectEcho(w http.ResponseWriter, r *http.Request) {
	subject, ok := SubjectFromContext(r.Context())
	if !ok {
		subject = "-"
	}
	_, _ = w.Write([]byte(subject))
}

func TestParseAuthMode(t *testing.T) {
	tests := []struct {
		in      string
		want    AuthMode
		wantErr bool
	}{
		{"", AuthModeNone, false},
		{"none", AuthModeNone, false},
		{"jwt", AuthModeJWT, false},
		{"basic", "", true},
	}
	for _, tt := range tests {
		got, err := ParseAuthMode(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseAuthMode(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestAuthenticate_NoneMode(t *testing.T) {
	mw := NewMiddleware(AuthModeNone, nil, nil)
	rec := httptest.NewRecorder()

	mw.Authenticate(subjectEcho)(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK || rec.Body.String() != "-" {
		t.Errorf("got %d %q, want pass-through without subject", rec.Code, rec.Body.String())
	}
}

func TestAuthenticate_JWTMode(t *testing.T) {
	m := newTestJWTManager(t)
	token, err := m.GenerateToken("u42")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"valid token", "Bearer " + token, http.StatusOK, "u42"},
		{"lowercase scheme", "bearer " + token, http.StatusOK, "u42"},
		{"missing header", "", http.StatusUnauthorized, ""},
		{"basic scheme", "Basic dXNlcjpwYXNz", http.StatusUnauthorized, ""},
		{"empty token", "Bearer ", http.StatusUnauthorized, ""},
		{"bad token", "Bearer abc.def.ghi", http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mw := NewMiddleware(AuthModeJWT, m, nil)
			req := httptest.NewRequest(http.MethodGet, "/api/v1/me/recommendations", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			mw.Authenticate(subjectEcho)(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK && rec.Body.String() != tt.wantBody {
				t.Errorf("subject = %q, want %q", rec.Body.String(), tt.wantBody)
			}
			if tt.wantStatus == http.StatusUnauthorized && rec.Header().Get("WWW-Authenticate") == "" {
				t.Error("401 without WWW-Authenticate challenge")
			}
		})
	}
}

func TestAuthenticate_SubjectRateLimit(t *testing.T) {
	m := newTestJWTManager(t)
	token, _ := m.GenerateToken("busy")

	var gotCode string
	mw := NewMiddleware(AuthModeJWT, m, NewSubjectLimiter(0.001, 1))
	mw.SetErrorWriter(func(w http.ResponseWriter, _ *http.Request, status int, code, _ string) {
		gotCode = code
		w.WriteHeader(status)
	})
	defer mw.Stop()

	call := func() int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		mw.Authenticate(subjectEcho)(rec, req)
		return rec.Code
	}

	if code := call(); code != http.StatusOK {
		t.Fatalf("first call = %d", code)
	}
	if code := call(); code != http.StatusTooManyRequests {
		t.Errorf("second call = %d, want 429", code)
	}
	if gotCode != CodeRateLimited {
		t.Errorf("error code = %q, want %q", gotCode, CodeRateLimited)
	}
}
