package http

import (
	"log/slog"
	"net/http"

	"github.com/go-api-profile/internal/application/auth"
	"github.com/go-api-profile/internal/application/user"
	"github.com/go-api-profile/internal/config"
	"github.com/go-api-profile/internal/transport/http/handler"
	appmiddleware "github.com/go-api-profile/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo    UserRepository
	OTPRepo     OTPRepository
	Hasher      PasswordHasher
	JWTProvider TokenProvider
	Mailer      Mailer
	// SMSSender is nil unless OTP_SMS_ENABLED is set.
	SMSSender SMSSender
	DB        Pinger
	Logger    *slog.Logger
	// RateLimiter is shared by every credential-guessing endpoint. Built from cfg when nil.
	RateLimiter *appmiddleware.RateLimiter
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authRL := deps.RateLimiter
	if authRL == nil {
		authRL = appmiddleware.NewRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
		if err := authRL.TrustProxies(cfg.TrustedProxies); err != nil {
			log.Warn("ignoring TRUSTED_PROXIES, limiter keys on socket address", "err", err)
		}
	}

	authDeps := auth.ServiceDeps{
		UserRepo:            deps.UserRepo,
		OTPRepo:             deps.OTPRepo,
		Hasher:              deps.Hasher,
		JWTProvider:         deps.JWTProvider,
		Mailer:              deps.Mailer,
		SMSSender:           deps.SMSSender,
		OTPTTL:              cfg.OTPTTL,
		DevMode:             cfg.IsDevelopment(),
		ConcealUnknownEmail: cfg.OTPConcealUnknownEmail,
		Logger:              log,
	}
	authSvc := auth.NewService(authDeps)
	userSvc := user.NewService(user.ServiceDeps{UserRepo: deps.UserRepo, Hasher: deps.Hasher})

	errs := handler.ErrorWriter{ExposeInternal: cfg.IsDevelopment(), Logger: log}
	healthH := handler.NewHealthHandler(deps.DB)
	authH := handler.NewAuthHandler(authSvc, errs)
	profileH := handler.NewProfileHandler(userSvc, errs)

	r.Get("/health-check/{action}", healthH.Ping)

	r.Route("/api/auth", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.With(authRL.Limit).Post("/register", authH.Register)
		r.With(authRL.Limit).Post("/login", authH.Login)
		r.With(authRL.Limit).Post("/otp/send", authH.SendOTP)
		r.With(authRL.Limit).Post("/otp/verify", authH.VerifyOTP)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.Auth(deps.JWTProvider))

			r.Get("/me", profileH.Me)
			r.Put("/profile", profileH.Update)
		})
	})

	return otelhttp.NewHandler(r, "profile-api",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}
