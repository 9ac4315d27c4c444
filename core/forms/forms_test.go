package forms

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwalimu/darasa/core"
)

func validForm() Registration {
	return Registration{
		Name:            "Asha M",
		Email:           "asha@example.com",
		Phone:           "+254712345678",
		Password:        "Str0ngPass",
		PasswordConfirm: "Str0ngPass",
	}
}

func fieldTags(t *testing.T, err error) map[string]string {
	t.Helper()
	require.Error(t, err)
	vErrs, ok := err.(validator.ValidationErrors)
	require.True(t, ok, "expected validator.ValidationErrors, got %T", err)

	tags := make(map[string]string, len(vErrs))
	for _, fe := range vErrs {
		tags[fe.Field()] = fe.Tag()
	}
	return tags
}

func TestRegistration_Valid(t *testing.T) {
	validate, translator := core.NewValidator()
	RegisterValidators(validate, translator)

	form := validForm()
	form.Clean()
	assert.NoError(t, validate.Struct(form))
}

func TestRegistration_FieldRules(t *testing.T) {
	validate, translator := core.NewValidator()
	RegisterValidators(validate, translator)

	tests := []struct {
		name     string
		mutate   func(*Registration)
		wantTag  string
		wantFld  string
	}{
		{"missing name", func(r *Registration) { r.Name = "" }, "required", "name"},
		{"bad email", func(r *Registration) { r.Email = "not-an-email" }, "email", "email"},
		{"bad phone", func(r *Registration) { r.Phone = "call me" }, "phone", "phone"},
		{"short phone", func(r *Registration) { r.Phone = "12345" }, "phone", "phone"},
		{"confirm mismatch", func(r *Registration) { r.PasswordConfirm = "Other123" }, "eqfield", "password_confirm"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			tt.mutate(&form)
			tags := fieldTags(t, validate.Struct(form))
			assert.Equal(t, tt.wantTag, tags[tt.wantFld])
		})
	}
}

func TestRegistration_PasswordStrength(t *testing.T) {
	validate, translator := core.NewValidator()
	RegisterValidators(validate, translator)

	tests := []struct {
		name    string
		pwd     string
		wantTag string
	}{
		{"too short", "Ab1", "pwdminlen"},
		{"no uppercase", "weakpass1", "pwdupper"},
		{"no lowercase", "WEAKPASS1", "pwdlower"},
		{"no digit", "WeakPassword", "pwddigit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			form.Password = tt.pwd
			form.PasswordConfirm = tt.pwd
			tags := fieldTags(t, validate.Struct(form))
			assert.Equal(t, tt.wantTag, tags["password"])
		})
	}
}

func TestRegistration_PasswordMultipleFailures(t *testing.T) {
	validate, translator := core.NewValidator()
	RegisterValidators(validate, translator)

	form := validForm()
	form.Password = "alllowercase" // no upper, no digit
	form.PasswordConfirm = form.Password

	err := validate.Struct(form)
	vErrs, ok := err.(validator.ValidationErrors)
	require.True(t, ok)

	var tags []string
	for _, fe := range vErrs {
		tags = append(tags, fe.Tag())
	}
	assert.Contains(t, tags, "pwdupper")
	assert.Contains(t, tags, "pwddigit")
}
