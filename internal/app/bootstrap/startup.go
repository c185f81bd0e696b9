// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	memberstore "github.com/sandoghapp/sandogh/internal/app/store/members"
	policystore "github.com/sandoghapp/sandogh/internal/app/store/policy"
	"github.com/sandoghapp/sandogh/internal/app/system/authutil"
	"github.com/sandoghapp/sandogh/internal/domain/models"
)

// Startup runs one-time initialization after the DB connection and schema
// setup: it seeds the fund policy document and, when configured, creates
// the first admin account.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if _, err := policystore.New(deps.MongoDatabase).Get(ctx); err != nil {
		return fmt.Errorf("seed fund policy: %w", err)
	}

	return ensureAdmin(ctx, appCfg, deps, logger)
}

func ensureAdmin(ctx context.Context, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if appCfg.AdminPassword == "" {
		logger.Info("admin_password not set; skipping bootstrap admin")
		return nil
	}

	members := memberstore.New(deps.MongoDatabase)
	_, err := members.GetByUsername(ctx, appCfg.AdminUsername)
	if err == nil {
		return nil // already exists
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("look up bootstrap admin: %w", err)
	}

	hash, err := authutil.HashPassword(appCfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("hash bootstrap admin password: %w", err)
	}

	admin, err := members.Create(ctx, models.Member{
		Username:     appCfg.AdminUsername,
		FullName:     "Administrator",
		Email:        appCfg.AdminEmail,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	})
	if errors.Is(err, memberstore.ErrDuplicate) {
		return nil // raced with another instance
	}
	if err != nil {
		return fmt.Errorf("create bootstrap admin: %w", err)
	}

	logger.Info("bootstrap admin created",
		zap.String("member_id", admin.ID.Hex()),
		zap.String("username", admin.Username))
	return nil
}
