package domain

import "time"

// Roles carried in session tokens. The browser frontend keeps only this
// marker; the server is the one that checks it.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// SysUser is a pantry account. Admins manage the catalog; users manage
// their own stock.
type SysUser struct {
	ID        int64     `gorm:"primaryKey" json:"id,string"`
	Name      string    `json:"name"`
	Email     string    `gorm:"uniqueIndex" json:"email"`
	Phone     string    `gorm:"size:32" json:"phone"`
	Password  string    `json:"-"`
	Role      string    `gorm:"size:16" json:"role"`
	Status    string    `gorm:"size:16" json:"status"`
	LastLogin time.Time `json:"last_login"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (SysUser) TableName() string {
	return "sys_user"
}
