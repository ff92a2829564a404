// Package membership contiene DTOs para endpoints de membresías.
// Las claves JSON son camelCase, igual que el resto de la API pública.
package membership

// InviteRequest representa la invitación directa de un usuario a una empresa.
type InviteRequest struct {
	CompanyID string `json:"companyId"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Notes     string `json:"notes"`
}

// InviteResponse devuelve el resultado de la invitación.
type InviteResponse struct {
	InviteID          string `json:"inviteId"`
	MembershipID      string `json:"membershipId"`
	UserID            string `json:"userId"`
	AlreadyRegistered bool   `json:"alreadyRegistered"`
	Status            string `json:"status"` // pending | accepted
	Role              string `json:"role"`
}

// JoinRequest representa el canje de un join code.
type JoinRequest struct {
	Code string `json:"code"`
}

// JoinResponse devuelve el resultado del canje.
type JoinResponse struct {
	CompanyID    string `json:"companyId"`
	MembershipID string `json:"membershipId"`
	Role         string `json:"role"`
}

// CreateJoinCodeRequest emite un código nuevo para una empresa.
type CreateJoinCodeRequest struct {
	CompanyID string `json:"companyId"`
	Role      string `json:"role"`
	MaxUses   *int   `json:"maxUses"`   // nil = ilimitado
	ExpiresIn string `json:"expiresIn"` // duración Go ("24h"); vacío = no expira
}

// CreateJoinCodeResponse devuelve el código en claro UNA sola vez.
type CreateJoinCodeResponse struct {
	ID        string `json:"id"`
	Code      string `json:"code"`
	CompanyID string `json:"companyId"`
	Role      string `json:"role"`
	MaxUses   *int   `json:"maxUses"`
	ExpiresAt string `json:"expiresAt,omitempty"`
}
