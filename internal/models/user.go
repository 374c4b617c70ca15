package models

import "golang.org/x/crypto/bcrypt"

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// User is a staff account. All resident and record operations require the
// admin role.
type User struct {
	Base
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	DisplayName  string `json:"displayName"`
	Role         string `gorm:"not null;default:staff" json:"role"`
}

func (user *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	return nil
}

func (user *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

func (user *User) IsAdmin() bool {
	return user.Role == RoleAdmin
}
