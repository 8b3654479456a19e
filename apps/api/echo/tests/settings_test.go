package tests

import (
	"net/http"
	"testing"

	"github.com/trezcool/reportcard/core/settings"
)

func TestSettingsAPI(t *testing.T) {
	app, _ := setup(t)

	// run in order: each request sees the settings saved by the previous ones
	tests := []httpTest{
		{name: "defaults", method: http.MethodGet, wantCode: http.StatusOK, wantData: marshallObj(t, settings.Default())},
		{
			name:     "invalid theme",
			method:   http.MethodPut,
			body:     []byte(`{"theme":"pink"}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"theme":"theme must be one of [light dark]"}`),
		},
		{
			name:     "update",
			method:   http.MethodPut,
			body:     []byte(`{"theme":"dark","welcome_shown":true}`),
			wantCode: http.StatusOK,
			wantData: []byte(`{"theme":"dark","welcome_shown":true,"last_backup":null}`),
		},
		{
			name:     "partial update",
			method:   http.MethodPut,
			body:     []byte(`{"welcome_shown":false}`),
			wantCode: http.StatusOK,
			wantData: []byte(`{"theme":"dark","welcome_shown":false,"last_backup":null}`),
		},
		{
			name:     "toggle theme",
			method:   http.MethodPost,
			path:     "/v1/settings/theme",
			wantCode: http.StatusOK,
			wantData: []byte(`{"theme":"light","welcome_shown":false,"last_backup":null}`),
		},
		{
			name:     "saved",
			method:   http.MethodGet,
			wantCode: http.StatusOK,
			wantData: []byte(`{"theme":"light","welcome_shown":false,"last_backup":null}`),
		},
	}
	for _, tt := range tests {
		if tt.path == "" {
			tt.path = "/v1/settings"
		}

		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, serve(app, tt))
		})
	}
}
