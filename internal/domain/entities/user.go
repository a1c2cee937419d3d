package entities

// UserRole represents what a staff account may do in the panels
type UserRole string

const (
	UserRoleAdmin        UserRole = "admin"
	UserRoleProfessional UserRole = "professional"
	UserRoleReception    UserRole = "reception"
)

// User represents a staff account
type User struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Email  string   `json:"email"`
	Role   UserRole `json:"role"`
	Active bool     `json:"active"`
}

func (u User) GetID() string { return u.ID }

func (u User) SearchFields() []string {
	return []string{u.Name, u.Email}
}

// Agreement represents an insurance plan or partnership accepted by the clinic
type Agreement struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Code            string  `json:"code,omitempty"`
	DiscountPercent float64 `json:"discountPercent,omitempty"`
	Active          bool    `json:"active"`
}

func (a Agreement) GetID() string { return a.ID }

func (a Agreement) SearchFields() []string {
	return []string{a.Name, a.Code}
}
