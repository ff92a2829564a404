package repository

import (
	"context"
	"time"
)

// InviteStatus refleja si el invitado ya existía al momento de invitar.
type InviteStatus string

const (
	InviteStatusPending  InviteStatus = "pending"
	InviteStatusAccepted InviteStatus = "accepted"
)

// Invite representa una invitación directa a una empresa.
type Invite struct {
	ID          string
	CompanyID   string
	Email       string
	Role        Role
	Status      InviteStatus
	InviteToken string
	UserID      string
	InvitedBy   string
	Notes       string
	RespondedAt *time.Time
	CreatedAt   time.Time
}

// CreateInviteInput contiene los datos para registrar una invitación.
type CreateInviteInput struct {
	CompanyID   string
	Email       string
	Role        Role
	Status      InviteStatus
	InviteToken string
	UserID      string
	InvitedBy   string
	Notes       string
	RespondedAt *time.Time
}

// InviteRepository define operaciones sobre invitaciones.
type InviteRepository interface {
	// CreateWithMembership registra la invitación Y la membresía en una sola
	// transacción: o ambas filas quedan visibles o ninguna.
	CreateWithMembership(ctx context.Context, input CreateInviteInput) (invite *Invite, membership *Membership, err error)

	// DeleteByUser elimina las invitaciones dirigidas a un usuario (teardown).
	DeleteByUser(ctx context.Context, userID string) error
}
