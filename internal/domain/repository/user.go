package repository

import (
	"context"
	"time"
)

// User representa una identidad de primera parte del sistema.
type User struct {
	ID            string
	Email         string
	PasswordHash  string
	EmailVerified bool
	FirstName     string
	LastName      string
	Phone         string
	Address       string
	Metadata      map[string]any

	// InvitedCompanyID guarda la empresa que originó la invitación
	// cuando el usuario fue aprovisionado por el flujo de invite.
	InvitedCompanyID *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateUserInput contiene los datos para crear un usuario.
type CreateUserInput struct {
	Email         string
	PasswordHash  string
	EmailVerified bool
	FirstName     string
	LastName      string
	Phone         string
	Address       string
	Metadata      map[string]any

	InvitedCompanyID string // opcional
}

// ProfilePatch contiene campos de perfil a fusionar.
// La política es first-write-wins: solo se escriben los campos
// que estén vacíos en la fila existente.
type ProfilePatch struct {
	FirstName string
	LastName  string
	Phone     string
	Address   string
}

// UserRepository define operaciones sobre usuarios.
type UserRepository interface {
	// GetByEmail busca un usuario por email (case-insensitive, lookup indexado).
	// Retorna ErrNotFound si no existe.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetByID busca un usuario por ID.
	// Retorna ErrNotFound si no existe.
	GetByID(ctx context.Context, userID string) (*User, error)

	// Create crea un nuevo usuario.
	// Retorna ErrConflict si el email ya existe.
	Create(ctx context.Context, input CreateUserInput) (*User, error)

	// UpdatePasswordHash reemplaza el hash de password del usuario.
	UpdatePasswordHash(ctx context.Context, userID, newHash string) error

	// MergeProfile fusiona campos de perfil con política first-write-wins:
	// los campos ya poblados en la fila NO se sobrescriben.
	MergeProfile(ctx context.Context, userID string, patch ProfilePatch) error

	// Delete elimina el usuario. Retorna ErrNotFound si no existe.
	Delete(ctx context.Context, userID string) error
}
