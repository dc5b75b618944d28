package user_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/masomo-admin/core/user"
	testutil "github.com/trezcool/masomo-admin/tests"
)

func TestChangePassword_Policy(t *testing.T) {
	v := testutil.NewValidator()
	usr := user.User{Name: "Bu Sari", Username: "sariwati", Email: "sari@masomo.test"}

	tests := []struct {
		name    string
		current string
		pwd     string
		confirm string
		wantErr map[string]string
	}{
		{name: "valid", current: "Lama#123", pwd: "Kuda#Lari42", confirm: "Kuda#Lari42"},
		{name: "too short", current: "Lama#123", pwd: "Ab1!", confirm: "Ab1!", wantErr: map[string]string{"newPassword": "password must contain at least 8 characters"}},
		{name: "whitespace", current: "Lama#123", pwd: "Kuda Lari#42", confirm: "Kuda Lari#42", wantErr: map[string]string{"newPassword": "password must not contain whitespace"}},
		{name: "all numeric", current: "Lama#123", pwd: "12345678", confirm: "12345678", wantErr: map[string]string{"newPassword": "password cannot be entirely numeric"}},
		{name: "not complex", current: "Lama#123", pwd: "kudalari42", confirm: "kudalari42", wantErr: map[string]string{"newPassword": "password must contain at least 1 uppercase character, 1 lowercase character, 1 digit and 1 special character"}},
		{name: "similar to username", current: "Lama#123", pwd: "Sariwati1!", confirm: "Sariwati1!", wantErr: map[string]string{"newPassword": "password cannot be similar to user attributes"}},
		{name: "same as current", current: "Kuda#Lari42", pwd: "Kuda#Lari42", confirm: "Kuda#Lari42", wantErr: map[string]string{"newPassword": "new password must differ from the current one"}},
		{name: "confirmation mismatch", current: "Lama#123", pwd: "Kuda#Lari42", confirm: "Kuda#Lari43", wantErr: map[string]string{"confirmPassword": "confirmPassword must be equal to Password"}},
		{name: "missing current", pwd: "Kuda#Lari42", confirm: "Kuda#Lari42", wantErr: map[string]string{"currentPassword": "this field is required"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := user.NewChangePassword(usr, tt.current, tt.pwd, tt.confirm)
			assert.Equal(t, tt.wantErr, v.Check(form))
		})
	}
}

func TestUpdateProfile_Validation(t *testing.T) {
	v := testutil.NewValidator()

	tests := []struct {
		name    string
		form    user.UpdateProfile
		wantErr []string
	}{
		{name: "valid", form: user.UpdateProfile{Name: "Bu Sari", Username: "sari_wati", Email: "sari@masomo.test"}},
		{name: "blank name", form: user.UpdateProfile{Name: " "}, wantErr: []string{"name"}},
		{name: "short username", form: user.UpdateProfile{Name: "Bu Sari", Username: "sari"}, wantErr: []string{"username"}},
		{name: "bad email", form: user.UpdateProfile{Name: "Bu Sari", Email: "sari"}, wantErr: []string{"email"}},
		{name: "bad avatar", form: user.UpdateProfile{Name: "Bu Sari", Avatar: "not a url"}, wantErr: []string{"avatar"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := v.Check(tt.form)
			if tt.wantErr == nil {
				assert.Nil(t, errs)
				return
			}
			for _, fld := range tt.wantErr {
				assert.Contains(t, errs, fld)
			}
			assert.Len(t, errs, len(tt.wantErr))
		})
	}
}

func TestUser_Roles(t *testing.T) {
	var anon *user.User
	assert.False(t, anon.HasRole(user.RoleAdmin))
	assert.Equal(t, "", anon.DisplayName())

	usr := &user.User{Role: "guru", Username: "sari"}
	assert.True(t, usr.IsTeacher(), "roles are compared case-insensitively")
	assert.False(t, usr.IsAdmin())
	assert.False(t, usr.IsStudent())
	assert.Equal(t, "sari", usr.DisplayName())

	usr.Name = "Bu Sari"
	assert.Equal(t, "Bu Sari", usr.DisplayName())
	assert.Equal(t, "x@y.z", (&user.User{Email: "x@y.z"}).DisplayName())
}

func TestPatch(t *testing.T) {
	usr := testutil.Teacher()
	got := user.Patch(usr, user.UpdateProfile{Name: "Ibu Sari"})
	assert.Equal(t, "Ibu Sari", got.Name)
	assert.Equal(t, usr.Username, got.Username)
	assert.Equal(t, usr.Email, got.Email)
}
