package aviary

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/aviary/internal/config"
	"github.com/magabrotheeeer/aviary/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/aviary/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/aviary/internal/http/handlers/catalog/categorycreate"
	"github.com/magabrotheeeer/aviary/internal/http/handlers/catalog/categorylist"
	"github.com/magabrotheeeer/aviary/internal/http/handlers/catalog/foodcreate"
	"github.com/magabrotheeeer/aviary/internal/http/handlers/catalog/foodlist"
	"github.com/magabrotheeeer/aviary/internal/http/handlers/catalog/foodupdate"
	"github.com/magabrotheeeer/aviary/internal/http/handlers/health"
	"github.com/magabrotheeeer/aviary/internal/http/handlers/members/awardcreate"
	"github.com/magabrotheeeer/aviary/internal/http/handlers/members/awardremove"
	"github.com/magabrotheeeer/aviary/internal/http/handlers/members/feed"
	"github.com/magabrotheeeer/aviary/internal/http/handlers/members/overview"
	memberread "github.com/magabrotheeeer/aviary/internal/http/handlers/members/read"
	profileawards "github.com/magabrotheeeer/aviary/internal/http/handlers/profile/awards"
	profileread "github.com/magabrotheeeer/aviary/internal/http/handlers/profile/read"
	profileupdate "github.com/magabrotheeeer/aviary/internal/http/handlers/profile/update"
	"github.com/magabrotheeeer/aviary/internal/http/handlers/reports/report"
	useraccess "github.com/magabrotheeeer/aviary/internal/http/handlers/users/access"
	userlist "github.com/magabrotheeeer/aviary/internal/http/handlers/users/list"
	userread "github.com/magabrotheeeer/aviary/internal/http/handlers/users/read"
	userremove "github.com/magabrotheeeer/aviary/internal/http/handlers/users/remove"
	"github.com/magabrotheeeer/aviary/internal/http/middlewarectx"
)

// RouteDeps: зависимости маршрутов.
type RouteDeps struct {
	Services Services
	DB       health.Pinger
	Registry *prometheus.Registry
	HTTP     config.HTTPServer
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, deps RouteDeps) {
	svc := deps.Services
	metrics := middlewarectx.NewMetrics(deps.Registry)
	loginLimiter := middlewarectx.NewLimiter(deps.HTTP.LoginRPS, deps.HTTP.LoginBurst)

	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		metrics.Middleware,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, svc.Account).ServeHTTP)
		r.With(middlewarectx.RateLimitMiddleware(logger, loginLimiter)).
			Post("/login", login.New(logger, svc.Account).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(svc.Account, logger))

			r.Get("/profile", profileread.New(logger, svc.Account).ServeHTTP)
			r.Put("/profile", profileupdate.New(logger, svc.Account).ServeHTTP)
			r.Get("/profile/awards", profileawards.New(logger, svc.Account).ServeHTTP)

			r.Get("/admin/users", userlist.New(logger, svc.Membership).ServeHTTP)
			r.Get("/admin/users/{id}", userread.New(logger, svc.Membership).ServeHTTP)
			r.Put("/admin/users/{id}/access", useraccess.New(logger, svc.Membership).ServeHTTP)
			r.Delete("/admin/users/{id}", userremove.New(logger, svc.Membership).ServeHTTP)

			r.Get("/members", overview.New(logger, svc.Members).ServeHTTP)
			r.Get("/members/{id}", memberread.New(logger, svc.Members).ServeHTTP)
			r.Put("/members/{id}/feed", feed.New(logger, svc.Members).ServeHTTP)
			r.Post("/members/{id}/awards", awardcreate.New(logger, svc.Members).ServeHTTP)
			r.Delete("/awards/{id}", awardremove.New(logger, svc.Members).ServeHTTP)

			r.Get("/reports/{kind}", report.New(logger, svc.Reports).ServeHTTP)

			r.Get("/catalog/categories", categorylist.New(logger, svc.Catalog).ServeHTTP)
			r.Post("/catalog/categories", categorycreate.New(logger, svc.Catalog).ServeHTTP)
			r.Get("/catalog/food-types", foodlist.New(logger, svc.Catalog).ServeHTTP)
			r.Post("/catalog/food-types", foodcreate.New(logger, svc.Catalog).ServeHTTP)
			r.Put("/catalog/food-types/{id}", foodupdate.New(logger, svc.Catalog).ServeHTTP)
		})
	})

	r.Get("/health", health.New(logger, deps.DB).ServeHTTP)
	r.Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
