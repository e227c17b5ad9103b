package security

import (
	"net/http/httptest"
	"testing"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "valid", header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "lowercase scheme", header: "bearer abc", want: "abc"},
		{name: "missing", header: "", want: ""},
		{name: "basic auth", header: "Basic dXNlcjpwYXNz", want: ""},
		{name: "no token", header: "Bearer", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/api/me", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			if got := BearerToken(r); got != tt.want {
				t.Errorf("BearerToken() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsSecureRequest(t *testing.T) {
	r := httptest.NewRequest("GET", "http://example.com/", nil)
	if IsSecureRequest(r) {
		t.Error("plain http request should not be secure")
	}
	r.Header.Set("X-Forwarded-Proto", "https")
	if !IsSecureRequest(r) {
		t.Error("forwarded https request should be secure")
	}
}
