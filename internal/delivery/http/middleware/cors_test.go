package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCORS(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	tests := []struct {
		name        string
		origins     []string
		origin      string
		preflight   bool
		wantStatus  int
		wantAllow   string
		wantCredent string
	}{
		{"listed origin", []string{"https://booth.example.com/"}, "https://booth.example.com", false, http.StatusOK, "https://booth.example.com", "true"},
		{"unlisted origin", []string{"https://booth.example.com"}, "https://evil.example.com", false, http.StatusOK, "", ""},
		{"wildcard", []string{"*"}, "https://any.example.com", false, http.StatusOK, "*", ""},
		{"preflight", []string{"https://booth.example.com"}, "https://booth.example.com", true, http.StatusNoContent, "https://booth.example.com", "true"},
		{"disabled", nil, "https://booth.example.com", false, http.StatusOK, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := http.MethodGet
			if tt.preflight {
				method = http.MethodOptions
			}
			req := httptest.NewRequest(method, "/optin/abc", nil)
			req.Header.Set("Origin", tt.origin)
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			rr := httptest.NewRecorder()
			CORS(tt.origins, ok).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantAllow, rr.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.wantCredent, rr.Header().Get("Access-Control-Allow-Credentials"))
			if tt.preflight {
				assert.Equal(t, corsAllowMethods, rr.Header().Get("Access-Control-Allow-Methods"))
			}
		})
	}
}
