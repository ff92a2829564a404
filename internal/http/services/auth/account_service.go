package auth

import (
	"context"

	"github.com/dropDatabas3/stocklink/internal/domain/repository"
	"github.com/dropDatabas3/stocklink/internal/observability/logger"
)

// AccountService elimina la cuenta y sus datos asociados.
type AccountService struct {
	Users       repository.UserRepository
	Memberships repository.MembershipRepository
	Invites     repository.InviteRepository
}

func NewAccountService(users repository.UserRepository, memberships repository.MembershipRepository, invites repository.InviteRepository) *AccountService {
	return &AccountService{Users: users, Memberships: memberships, Invites: invites}
}

// Delete borra membresías, invitaciones y finalmente el usuario.
// Los "not found" intermedios se ignoran: el borrado es idempotente.
// Cualquier otro error corta el flujo.
func (s *AccountService) Delete(ctx context.Context, userID string) error {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("delete_account"))

	if err := s.Memberships.DeleteByUser(ctx, userID); err != nil && !repository.IsNotFound(err) {
		log.Error("membership cleanup failed", logger.UserID(userID), logger.Err(err))
		return err
	}
	if err := s.Invites.DeleteByUser(ctx, userID); err != nil && !repository.IsNotFound(err) {
		log.Error("invite cleanup failed", logger.UserID(userID), logger.Err(err))
		return err
	}
	if err := s.Users.Delete(ctx, userID); err != nil && !repository.IsNotFound(err) {
		log.Error("user delete failed", logger.UserID(userID), logger.Err(err))
		return err
	}

	log.Info("account deleted", logger.UserID(userID))
	return nil
}
