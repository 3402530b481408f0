package model

import (
	"encoding/json"
	"time"
)

type UserRole string

const (
	UserRoleAdmin             UserRole = "admin"
	UserRoleClient            UserRole = "client"
	UserRoleCollectionCompany UserRole = "collection_company"
)

func (r UserRole) Valid() bool {
	switch r {
	case UserRoleAdmin, UserRoleClient, UserRoleCollectionCompany:
		return true
	default:
		return false
	}
}

// Profile carries the fields that only make sense for one role.
type Profile interface {
	Role() UserRole
	isProfile()
}

type AdminProfile struct{}

type ClientProfile struct {
	Address string
}

type CompanyProfile struct {
	CompanyName string
}

func (AdminProfile) Role() UserRole   { return UserRoleAdmin }
func (ClientProfile) Role() UserRole  { return UserRoleClient }
func (CompanyProfile) Role() UserRole { return UserRoleCollectionCompany }

func (AdminProfile) isProfile()   {}
func (ClientProfile) isProfile()  {}
func (CompanyProfile) isProfile() {}

// NewProfile builds the profile variant for role, dropping fields the role does not use.
func NewProfile(role UserRole, address, companyName string) (Profile, bool) {
	switch role {
	case UserRoleAdmin:
		return AdminProfile{}, true
	case UserRoleClient:
		return ClientProfile{Address: address}, true
	case UserRoleCollectionCompany:
		return CompanyProfile{CompanyName: companyName}, true
	default:
		return nil, false
	}
}

type User struct {
	ID        string
	Email     string
	Name      string
	Phone     string
	Profile   Profile
	CreatedAt time.Time
}

func (u User) Role() UserRole {
	if u.Profile == nil {
		return ""
	}
	return u.Profile.Role()
}

func (u User) Address() string {
	if p, ok := u.Profile.(ClientProfile); ok {
		return p.Address
	}
	return ""
}

func (u User) CompanyName() string {
	if p, ok := u.Profile.(CompanyProfile); ok {
		return p.CompanyName
	}
	return ""
}

// DisplayName prefers the company name for collection companies.
func (u User) DisplayName() string {
	if name := u.CompanyName(); name != "" {
		return name
	}
	return u.Name
}

type userRecord struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Role        UserRole  `json:"role"`
	Phone       string    `json:"phone,omitempty"`
	Address     string    `json:"address,omitempty"`
	CompanyName string    `json:"company_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (u User) MarshalJSON() ([]byte, error) {
	return json.Marshal(userRecord{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Role:        u.Role(),
		Phone:       u.Phone,
		Address:     u.Address(),
		CompanyName: u.CompanyName(),
		CreatedAt:   u.CreatedAt,
	})
}

// UnmarshalJSON accepts the flat stored layout. An unknown role leaves Profile nil.
func (u *User) UnmarshalJSON(data []byte) error {
	var rec struct {
		userRecord
		CreatedAt json.RawMessage `json:"created_at"`
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	profile, _ := NewProfile(rec.Role, rec.Address, rec.CompanyName)
	*u = User{
		ID:        rec.ID,
		Email:     rec.Email,
		Name:      rec.Name,
		Phone:     rec.Phone,
		Profile:   profile,
		CreatedAt: parseRawTime(rec.CreatedAt),
	}
	return nil
}
