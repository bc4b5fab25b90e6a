// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	userstore "github.com/Deepak-cell311/GreenBook/internal/app/store/users"
	"github.com/Deepak-cell311/GreenBook/internal/app/system/hierarchy"
	"github.com/Deepak-cell311/GreenBook/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections
// and schema setup are complete, but before the HTTP handler is built.
// GreenBook uses it to make sure the reserved admin account exists.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	return ensureAdminUser(ctx, appCfg, deps.Users, logger)
}

// ensureAdminUser creates the global admin account on first run. The
// username is fixed; only the password comes from configuration. An
// existing account is left untouched so password changes survive
// restarts.
func ensureAdminUser(ctx context.Context, appCfg AppConfig, users *userstore.Store, logger *zap.Logger) error {
	_, err := users.GetByUsername(ctx, hierarchy.AdminUsername)
	if err == nil {
		return nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("look up admin user: %w", err)
	}

	if appCfg.AdminPassword == "" {
		logger.Warn("admin account does not exist and admin_password is not set; skipping admin bootstrap")
		return nil
	}

	admin := models.User{
		Username: hierarchy.AdminUsername,
		Name:     "Administrator",
		Role:     hierarchy.RoleAdmin,
	}
	created, err := users.Create(ctx, admin, appCfg.AdminPassword)
	if err != nil {
		// A concurrent instance may have won the race; that is fine.
		if errors.Is(err, userstore.ErrDuplicateUsername) {
			return nil
		}
		return fmt.Errorf("create admin user: %w", err)
	}

	logger.Info("created admin account", zap.String("user_id", created.ID.Hex()))
	return nil
}
