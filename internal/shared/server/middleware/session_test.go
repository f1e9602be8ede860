package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestSessionHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		header string
		status int
		want   string
	}{
		{name: "missing", header: "", status: http.StatusOK, want: ""},
		{name: "valid", header: "6F9619FF-8B86-D011-B42D-00CF4FC964FF", status: http.StatusOK, want: "6f9619ff-8b86-d011-b42d-00cf4fc964ff"},
		{name: "malformed", header: "not-a-uuid", status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			r := gin.New()
			r.Use(Session())
			r.GET("/s", func(c *gin.Context) {
				got = SessionIDFromContext(c)
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/s", nil)
			if tt.header != "" {
				req.Header.Set(SessionHeader, tt.header)
			}
			resp := httptest.NewRecorder()
			r.ServeHTTP(resp, req)

			if resp.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, resp.Code)
			}
			if tt.status == http.StatusOK && got != tt.want {
				t.Fatalf("expected session %q, got %q", tt.want, got)
			}
		})
	}
}
