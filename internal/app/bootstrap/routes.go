// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	healthfeature "github.com/sandoghapp/sandogh/internal/app/features/health"
	loansfeature "github.com/sandoghapp/sandogh/internal/app/features/loans"
	loginfeature "github.com/sandoghapp/sandogh/internal/app/features/login"
	logoutfeature "github.com/sandoghapp/sandogh/internal/app/features/logout"
	membersfeature "github.com/sandoghapp/sandogh/internal/app/features/members"
	paymentsfeature "github.com/sandoghapp/sandogh/internal/app/features/payments"
	policyfeature "github.com/sandoghapp/sandogh/internal/app/features/policy"
	"github.com/sandoghapp/sandogh/internal/app/store/audit"
	loanstore "github.com/sandoghapp/sandogh/internal/app/store/loans"
	memberstore "github.com/sandoghapp/sandogh/internal/app/store/members"
	paymentstore "github.com/sandoghapp/sandogh/internal/app/store/payments"
	policystore "github.com/sandoghapp/sandogh/internal/app/store/policy"
	"github.com/sandoghapp/sandogh/internal/app/system/auditlog"
	"github.com/sandoghapp/sandogh/internal/app/system/auth"
)

// BuildHandler constructs the root HTTP handler for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connection, schema setup, and
// the Startup hook have completed. It initializes the session store, builds
// the stores and the audit logger, and mounts every feature router.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	secure := coreCfg.Env == "prod"
	if err := auth.InitSessionStore(appCfg.SessionKey, appCfg.SessionDomain, secure, logger); err != nil {
		logger.Error("session store init failed", zap.Error(err))
		return nil, err
	}

	members := memberstore.New(deps.MongoDatabase)
	loans := loanstore.New(deps.MongoDatabase)
	payments := paymentstore.New(deps.MongoDatabase)
	policy := policystore.New(deps.MongoDatabase)

	auditLogger := auditlog.New(audit.New(deps.MongoDatabase), logger, auditlog.Config{
		Auth: appCfg.AuditLogAuth,
		Fund: appCfg.AuditLogFund,
	})

	r := chi.NewRouter()

	// Loads the session member into context on every request.
	r.Use(auth.LoadSessionMember)

	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	loginHandler := loginfeature.NewHandler(members, auditLogger, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(auditLogger, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	membersHandler := membersfeature.NewHandler(members, auditLogger, logger)
	r.Mount("/members", membersfeature.Routes(membersHandler))

	paymentsHandler := paymentsfeature.NewHandler(deps.MongoClient, members, loans, payments, policy, auditLogger, logger)
	r.Mount("/payments", paymentsfeature.Routes(paymentsHandler))

	loansHandler := loansfeature.NewHandler(members, loans, payments, policy, auditLogger, logger)
	r.Mount("/loans", loansfeature.Routes(loansHandler))

	policyHandler := policyfeature.NewHandler(policy, auditLogger, logger)
	r.Mount("/policy", policyfeature.Routes(policyHandler))

	return r, nil
}
