package user

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/escondite/core"
)

// Roles
const (
	RoleAdmin = "admin"
	RoleUser  = "user"

	DefaultAdminUsername = "admin"
)

var AllRoles = []string{RoleAdmin, RoleUser}

type User struct {
	ID           int    `db:"id" json:"id" yaml:"id"`
	Username     string `db:"username" json:"username" yaml:"username"`
	Role         string `db:"role" json:"role" yaml:"role"`
	PasswordHash string `db:"password_hash" json:"-" yaml:"-"`
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(pwd))
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Username        string `json:"username" validate:"required,min=3,max=50,alphanum_"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	Role            string `json:"role" validate:"required,role"`
}

func (nu *NewUser) clean() {
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.Role = core.CleanString(nu.Role, true /* lower */)
}

// UpdateUser defines what information may be provided to modify an existing User.
// Empty fields are left unchanged.
type UpdateUser struct {
	Username string `json:"username" validate:"omitempty,min=3,max=50,alphanum_"`
	Role     string `json:"role" validate:"omitempty,role"`
}

func (uu *UpdateUser) clean(orig User) {
	if uname := core.CleanString(uu.Username, true /* lower */); uname != "" {
		uu.Username = uname
	} else {
		uu.Username = orig.Username
	}
	if role := core.CleanString(uu.Role, true /* lower */); role != "" {
		uu.Role = role
	} else {
		uu.Role = orig.Role
	}
}

type SetUserPassword struct {
	Username        string `json:"-"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

type QueryFilter struct {
	Search string // case-insensitive substring of username
	Role   string
}
