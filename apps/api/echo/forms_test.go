package echoapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwalimu/darasa/core/forms"
)

func Test_formsApi_register(t *testing.T) {
	app, _ := newTestServer(t)

	valid := forms.Registration{
		Name:            "Amina Yusuf",
		Email:           "amina@example.com",
		Phone:           "+254712345678",
		Password:        "Passw0rd",
		PasswordConfirm: "Passw0rd",
		Newsletter:      true,
	}

	t.Run("valid form", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/forms/register", marshallObj(t, valid))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusOK,
			wantData: marshallObj(t, SuccessResponse{Success: "Registration successful! Welcome, Amina Yusuf!"}),
		}, rec)
	})

	tests := []struct {
		name      string
		mutate    func(r *forms.Registration)
		wantField string
	}{
		{"missing name", func(r *forms.Registration) { r.Name = "" }, "name"},
		{"bad email", func(r *forms.Registration) { r.Email = "not-an-email" }, "email"},
		{"bad phone", func(r *forms.Registration) { r.Phone = "12ab" }, "phone"},
		{"short password", func(r *forms.Registration) { r.Password = "Ab1"; r.PasswordConfirm = "Ab1" }, "password"},
		{"no uppercase", func(r *forms.Registration) { r.Password = "passw0rd"; r.PasswordConfirm = "passw0rd" }, "password"},
		{"no digit", func(r *forms.Registration) { r.Password = "Password"; r.PasswordConfirm = "Password" }, "password"},
		{"confirm mismatch", func(r *forms.Registration) { r.PasswordConfirm = "Other0ne" }, "password_confirm"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := valid
			tt.mutate(&form)

			req, rec := newRequest(http.MethodPost, "/v1/forms/register", marshallObj(t, form))
			app.ServeHTTP(rec, req)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			var fldErrs map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fldErrs))
			assert.Contains(t, fldErrs, tt.wantField)
		})
	}

	t.Run("password strength messages", func(t *testing.T) {
		form := valid
		form.Password = "password"
		form.PasswordConfirm = "password"

		req, rec := newRequest(http.MethodPost, "/v1/forms/register", marshallObj(t, form))
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		var fldErrs map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fldErrs))
		// upper and digit both missing, but the map keeps one message per field
		assert.Contains(t, fldErrs["password"], "password must contain")
	})
}
