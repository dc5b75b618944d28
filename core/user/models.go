package user

import (
	"strings"
	"time"

	"github.com/trezcool/masomo-admin/core"
)

// Roles
const (
	RoleAdmin   = "Admin"
	RoleTeacher = "Guru"
	RoleStudent = "Siswa"
)

var (
	AllRoles = []string{RoleAdmin, RoleTeacher, RoleStudent}

	// roles allowed into the dashboard
	DashboardRoles = []string{RoleAdmin, RoleTeacher}

	Roles = []Role{
		{Name: "Student", Value: RoleStudent},
		{Name: "Teacher", Value: RoleTeacher},
		{Name: "Admin", Value: RoleAdmin},
	}
)

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// User is the authenticated principal's profile as returned by the backend.
type User struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Avatar    string    `json:"avatar,omitempty"`
	ClassID   string    `json:"classId,omitempty"`
	Level     int       `json:"level"`
	TotalXP   int       `json:"totalXp"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	LastLogin time.Time `json:"lastLogin,omitempty"`
}

func (u *User) HasRole(role string) bool {
	return u != nil && strings.EqualFold(u.Role, role)
}

func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

func (u *User) IsTeacher() bool {
	return u.HasRole(RoleTeacher)
}

func (u *User) IsStudent() bool {
	return u.HasRole(RoleStudent)
}

// DisplayName is what the dashboard header shows for the logged in user.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Name != "" {
		return u.Name
	}
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}

// UpdateProfile defines what information may be provided to modify the logged in User.
type UpdateProfile struct {
	Name     string `json:"name" validate:"required,notblank,max=100"`
	Username string `json:"username" validate:"omitempty,min=6,max=30,alphanum_"`
	Email    string `json:"email" validate:"omitempty,email"`
	Avatar   string `json:"avatar,omitempty" validate:"omitempty,url"`
}

func (up *UpdateProfile) Clean() {
	up.Name = core.CleanString(up.Name)
	up.Username = core.CleanString(up.Username, true /* lower */)
	up.Email = core.CleanString(up.Email, true /* lower */)
	up.Avatar = core.CleanString(up.Avatar)
}

// ChangePassword is the profile page's change-password form.
type ChangePassword struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	Password        string `json:"newPassword" validate:"required"`
	PasswordConfirm string `json:"confirmPassword" validate:"required,eqfield=Password"`

	// user attributes the new password must not resemble
	Name     string `json:"-"`
	Username string `json:"-"`
	Email    string `json:"-"`
}

// NewChangePassword prepares a ChangePassword form for `usr`.
func NewChangePassword(usr User, current, pwd, confirm string) ChangePassword {
	return ChangePassword{
		CurrentPassword: current,
		Password:        pwd,
		PasswordConfirm: confirm,
		Name:            usr.Name,
		Username:        usr.Username,
		Email:           usr.Email,
	}
}

// Patch applies an UpdateProfile on a cached User.
func Patch(usr User, up UpdateProfile) User {
	usr.Name = up.Name
	if up.Username != "" {
		usr.Username = up.Username
	}
	if up.Email != "" {
		usr.Email = up.Email
	}
	if up.Avatar != "" {
		usr.Avatar = up.Avatar
	}
	return usr
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (lr *LoginRequest) Clean() {
	lr.Username = core.CleanString(lr.Username, true /* lower */)
}

// LoginResult is the data of a successful login.
type LoginResult struct {
	User         User   `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// TokenPair is the data of a successful token refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

type QueryFilter struct {
	Search   string
	Role     string
	IsActive *bool
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
