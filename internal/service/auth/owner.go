// internal/service/auth/owner.go
package auth

import (
	"context"
	"fmt"

	"studiodesk-service/internal/pkg/jwt"

	"go.uber.org/zap"
)

// EnsureOwnerExists creates the first owner account on startup when none
// exists yet.
func (s *AuthService) EnsureOwnerExists(ctx context.Context, email, password, fullName string) error {
	exists, err := s.staff.OwnerExists(ctx)
	if err != nil {
		return fmt.Errorf("failed to check owner existence: %w", err)
	}
	if exists {
		s.logger.Info("owner account already exists, skipping creation")
		return nil
	}

	if email == "" || password == "" || fullName == "" {
		return fmt.Errorf("owner email, password and name must be provided via environment variables")
	}

	s.logger.Info("creating owner account", zap.String("email", email))

	owner, err := s.newStaff(email, password, fullName, jwt.RoleOwner)
	if err != nil {
		return err
	}
	if err := s.staff.Create(ctx, owner); err != nil {
		return fmt.Errorf("failed to create owner: %w", err)
	}

	s.logger.Info("owner account created", zap.Int64("staff_id", owner.ID))
	return nil
}
