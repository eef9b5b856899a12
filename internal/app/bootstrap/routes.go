// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	addressesfeature "github.com/dalemusser/quizmart/internal/app/features/addresses"
	adminfeature "github.com/dalemusser/quizmart/internal/app/features/admin"
	cartfeature "github.com/dalemusser/quizmart/internal/app/features/cart"
	catalogfeature "github.com/dalemusser/quizmart/internal/app/features/catalog"
	companiesfeature "github.com/dalemusser/quizmart/internal/app/features/companies"
	errorsfeature "github.com/dalemusser/quizmart/internal/app/features/errors"
	exportfeature "github.com/dalemusser/quizmart/internal/app/features/export"
	healthfeature "github.com/dalemusser/quizmart/internal/app/features/health"
	loginfeature "github.com/dalemusser/quizmart/internal/app/features/login"
	membershipsfeature "github.com/dalemusser/quizmart/internal/app/features/memberships"
	ordersfeature "github.com/dalemusser/quizmart/internal/app/features/orders"
	quizresultsfeature "github.com/dalemusser/quizmart/internal/app/features/quizresults"
	quizzesfeature "github.com/dalemusser/quizmart/internal/app/features/quizzes"
	storefrontfeature "github.com/dalemusser/quizmart/internal/app/features/storefront"
	usersfeature "github.com/dalemusser/quizmart/internal/app/features/users"
	"github.com/dalemusser/quizmart/internal/app/services/attempts"
	"github.com/dalemusser/quizmart/internal/app/services/checkout"
	"github.com/dalemusser/quizmart/internal/app/services/export"
	"github.com/dalemusser/quizmart/internal/app/services/grading"
	"github.com/dalemusser/quizmart/internal/app/services/membership"
	"github.com/dalemusser/quizmart/internal/app/services/quiz"
	"github.com/dalemusser/quizmart/internal/app/services/storefront"
	"github.com/dalemusser/quizmart/internal/app/store/audit"
	userstore "github.com/dalemusser/quizmart/internal/app/store/users"
	"github.com/dalemusser/quizmart/internal/app/system/auditlog"
	"github.com/dalemusser/quizmart/internal/app/system/auth"
	"github.com/dalemusser/quizmart/internal/app/system/metrics"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup and
// Startup have completed. It builds the shared services once and mounts
// one sub-router per feature.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	tokens, err := auth.NewTokens(appCfg.JWTSecret, appCfg.JWTAccessTTL, appCfg.JWTRefreshTTL)
	if err != nil {
		logger.Error("token signer init failed", zap.Error(err))
		return nil, err
	}

	auditLogger := auditlog.New(audit.New(db), logger, auditlog.Config{
		Auth:       appCfg.AuditLogAuth,
		Membership: appCfg.AuditLogMembership,
		Commerce:   appCfg.AuditLogCommerce,
		Admin:      appCfg.AuditLogAdmin,
	})
	m := metrics.New()
	archive := attempts.New(deps.Cache, appCfg.AttemptTTL, logger)

	memberships := membership.New(db, auditLogger, m, logger)
	quizzes := quiz.New(db, auditLogger, logger)
	grader := grading.New(db, archive, m, logger)
	exporter := export.New(db, archive, m, logger)
	shop := checkout.New(db, auditLogger, m, logger)
	extras := storefront.New(db, auditLogger, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   appCfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(m.Instrument)
	r.Use(auditlog.Middleware)

	// Global auth middleware: puts the bearer token's user into context.
	// Fresh user data is read on each request so that deactivation and
	// role changes take effect immediately.
	r.Use(auth.NewMiddleware(tokens, userstore.NewFetcher(db), logger).LoadUser)

	r.NotFound(errorsfeature.NotFound)
	r.MethodNotAllowed(errorsfeature.MethodNotAllowed)

	// Health and scraping
	r.Mount("/health", healthfeature.Routes(healthfeature.NewHandler(deps.MongoClient, deps.Cache, logger)))
	r.Method(http.MethodGet, "/metrics", m.Handler())

	// Identity
	r.Mount("/auth", loginfeature.Routes(loginfeature.NewHandler(db, tokens, auditLogger, logger)))
	r.Mount("/users", usersfeature.Routes(usersfeature.NewHandler(db, auditLogger, logger)))

	// Companies and memberships
	r.Mount("/companies", companiesfeature.Routes(companiesfeature.NewHandler(db, memberships, quizzes, auditLogger, logger)))
	r.Mount("/memberships", membershipsfeature.Routes(membershipsfeature.NewHandler(memberships, logger)))

	// Quizzes
	r.Mount("/quizzes", quizzesfeature.Routes(quizzesfeature.NewHandler(quizzes, logger)))
	r.Mount("/quiz_results", quizresultsfeature.Routes(quizresultsfeature.NewHandler(db, grader, memberships, logger)))
	r.Mount("/export", exportfeature.Routes(exportfeature.NewHandler(exporter, logger)))

	// Shop
	catalog := catalogfeature.NewHandler(db, logger)
	r.Mount("/products", catalogfeature.ProductRoutes(catalog))
	r.Mount("/categories", catalogfeature.CategoryRoutes(catalog))
	r.Mount("/cart", cartfeature.Routes(cartfeature.NewHandler(shop, logger)))
	r.Mount("/addresses", addressesfeature.Routes(addressesfeature.NewHandler(shop, logger)))
	r.Mount("/orders", ordersfeature.Routes(ordersfeature.NewHandler(shop, logger)))
	front := storefrontfeature.NewHandler(extras, logger)
	r.Mount("/reviews", storefrontfeature.ReviewRoutes(front))
	r.Mount("/wishlist", storefrontfeature.WishlistRoutes(front))
	r.Mount("/discounts", storefrontfeature.DiscountRoutes(front))

	// Administration
	r.Mount("/admin", adminfeature.Routes(adminfeature.NewHandler(db, shop, logger)))

	return r, nil
}
