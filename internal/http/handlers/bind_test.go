package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/idrissbado/taskhub/internal/http/handlers"
)

type bindTarget struct {
	Title    string `json:"title" binding:"required,min=1"`
	Priority string `json:"priority" binding:"omitempty,oneof=low medium high"`
}

func bindRouter() *gin.Engine {
	r := gin.New()

	r.POST("/bind", func(c *gin.Context) {
		var out bindTarget

		if !handlers.BindJSON(c, &out) {
			return
		}

		c.JSON(http.StatusOK, out)
	})

	return r
}

func TestBindJSON(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		wantStatusCode int
		wantInBody     string
	}{
		{
			name:           "valid",
			body:           `{"title":"ok","priority":"high"}`,
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "missing_required_field",
			body:           `{"priority":"high"}`,
			wantStatusCode: http.StatusBadRequest,
			wantInBody:     "is required",
		},
		{
			name:           "oneof_violation",
			body:           `{"title":"ok","priority":"urgent"}`,
			wantStatusCode: http.StatusBadRequest,
			wantInBody:     "must be one of",
		},
		{
			name:           "truncated_body",
			body:           `{"title": `,
			wantStatusCode: http.StatusBadRequest,
			wantInBody:     "invalid_json_syntax",
		},
		{
			name:           "syntax_error",
			body:           `{"title": !}`,
			wantStatusCode: http.StatusBadRequest,
			wantInBody:     "invalid_json_syntax",
		},
		{
			name:           "type_mismatch",
			body:           `{"title": 7}`,
			wantStatusCode: http.StatusBadRequest,
			wantInBody:     "invalid_json_type",
		},
	}

	r := bindRouter()

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/bind", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantInBody != "" && !strings.Contains(w.Body.String(), tt.wantInBody) {
				t.Fatalf("body %s does not contain %q", w.Body.String(), tt.wantInBody)
			}

			if tt.wantStatusCode == http.StatusBadRequest {
				var envelope struct {
					Error handlers.APIError `json:"error"`
				}

				if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
					t.Fatalf("error envelope did not decode: %v", err)
				}

				if envelope.Error.Code != "invalid_request" {
					t.Fatalf("got code %q, want invalid_request", envelope.Error.Code)
				}
			}
		})
	}
}
