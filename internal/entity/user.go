package entity

import "github.com/questbycycle/backend/pkg/enum"

type GlobalRole string

var (
	RoleUser  = enum.New(GlobalRole("user"))
	RoleAdmin = enum.New(GlobalRole("admin"))
)

var GlobalAdminRoles = []GlobalRole{RoleAdmin}

type User struct {
	Base

	Name  string `gorm:"unique"`
	Email string
	Role  GlobalRole

	// Score is derived from the completion ledger. It is overwritten every time
	// the score is recomputed and must never be edited directly.
	Score int64
}
