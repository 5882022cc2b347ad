package auth

import (
	"context"
	"errors"

	"muttonhub-backend/internal/models"

	"go.uber.org/zap"
)

// DefaultRole is granted when the stored role cannot be read.
const DefaultRole = models.RoleAccountant

var ErrRoleUnavailable = errors.New("role unavailable")

type RoleStore interface {
	GetRole(ctx context.Context, userID uint) (models.Role, error)
}

// RoleResolver looks up a user's role. With failOpen set, any lookup error
// (missing row, database down) yields DefaultRole instead of blocking
// sign-in. This fail-open is intentional.
type RoleResolver struct {
	store    RoleStore
	failOpen bool
	log      *zap.Logger
}

func NewRoleResolver(store RoleStore, failOpen bool, log *zap.Logger) *RoleResolver {
	return &RoleResolver{store: store, failOpen: failOpen, log: log}
}

func (r *RoleResolver) Resolve(ctx context.Context, userID uint) (models.Role, error) {
	role, err := r.store.GetRole(ctx, userID)
	if err == nil && role.Valid() {
		return role, nil
	}
	if err == nil {
		err = errors.New("unknown role " + string(role))
	}

	if !r.failOpen {
		r.log.Warn("role lookup failed", zap.Uint("user_id", userID), zap.Error(err))
		return "", ErrRoleUnavailable
	}

	r.log.Warn("role lookup failed, granting default role",
		zap.Uint("user_id", userID),
		zap.String("role", string(DefaultRole)),
		zap.Error(err),
	)
	return DefaultRole, nil
}
