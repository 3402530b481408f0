package model

// Principal is the authenticated caller of an HTTP request.
type Principal struct {
	UserID    string
	SessionID string
	Role      UserRole
	Name      string
}

func (p Principal) IsAdmin() bool {
	return p.Role == UserRoleAdmin
}

func (p Principal) IsClient() bool {
	return p.Role == UserRoleClient
}

func (p Principal) IsCompany() bool {
	return p.Role == UserRoleCollectionCompany
}
