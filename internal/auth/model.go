package auth

import "time"

// Role values carried in the users table and in JWT claims.
const (
	RolePurchaser = "purchaser"
	RoleBoss      = "boss"
	RoleFinance   = "finance"
	RoleAdmin     = "admin"
)

// StatusActive is the only status allowed to log in.
const (
	StatusActive   = 1
	StatusDisabled = 0
)

type User struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"-"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Phone     *string   `json:"phone"`
	Status    int       `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// OperationLog records an audited action such as a login.
type OperationLog struct {
	UserID    int
	Action    string
	Detail    string
	IP        string
	CreatedAt time.Time
}

func ValidRole(role string) bool {
	switch role {
	case RolePurchaser, RoleBoss, RoleFinance, RoleAdmin:
		return true
	}
	return false
}
