package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/slotlist/slotlist-backend-sub000/internal/account"
	"github.com/slotlist/slotlist-backend-sub000/internal/community"
	"github.com/slotlist/slotlist-backend-sub000/internal/config"
	"github.com/slotlist/slotlist-backend-sub000/internal/mission"
	"github.com/slotlist/slotlist-backend-sub000/internal/notification"
	"github.com/slotlist/slotlist-backend-sub000/internal/storage/postgres"
	"github.com/slotlist/slotlist-backend-sub000/internal/user"
	"github.com/slotlist/slotlist-backend-sub000/pkg/email"
	"github.com/slotlist/slotlist-backend-sub000/pkg/httpserver"
	"github.com/slotlist/slotlist-backend-sub000/pkg/jwt"
	"github.com/slotlist/slotlist-backend-sub000/pkg/logger"
	"github.com/slotlist/slotlist-backend-sub000/pkg/permissions"
	"github.com/slotlist/slotlist-backend-sub000/pkg/pg"
	"github.com/slotlist/slotlist-backend-sub000/pkg/redis"
)

const serviceName = "slotlist-backend"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", logger.Error(err))
		os.Exit(1)
	}

	log := logger.New(logger.WithEnvironment(cfg.Environment, serviceName))
	logger.SetAsDefault(log)

	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("server exited with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	pool, err := pg.Connect(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, cfg.Postgres, log); err != nil {
		return err
	}

	// Redis is an optimization layer; a failed connect degrades the unread
	// counter to database reads instead of blocking startup.
	cache := notification.NewUnreadCache(nil)
	redisCheck := func(context.Context) error { return nil }
	redisClient, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		log.Warn("redis unavailable, unread counter cache disabled", logger.Error(err))
	} else {
		defer redisClient.Close()
		cache = notification.NewUnreadCache(redisClient)
		redisCheck = redis.Healthcheck(redisClient)
	}

	tokens, err := jwt.New([]byte(cfg.JWTSecret))
	if err != nil {
		return err
	}

	users := postgres.NewUserRepository(pool)
	perms := postgres.NewPermissionRepository(pool)
	communities := postgres.NewCommunityRepository(pool)
	missions := postgres.NewMissionRepository(pool)
	notifications := postgres.NewNotificationRepository(pool)

	catalog, err := notification.LoadCatalog()
	if err != nil {
		return err
	}

	var sender email.Sender
	if cfg.Email.Enabled() {
		sender, err = email.NewPostmarkSender(cfg.Email)
		if err != nil {
			return err
		}
	} else {
		log.Info("postmark not configured, using dev email sender")
		sender = email.NewDevSender(log)
	}

	notificationSvc := notification.NewService(notifications, catalog, cache,
		notification.WithEmailDelivery(sender, users),
		notification.WithLogger(log),
	)
	accountSvc := account.NewService(users, tokens,
		account.WithTokenTTL(cfg.TokenTTL),
		account.WithLogger(log),
	)
	userSvc := user.NewService(users, perms,
		user.WithNotifier(notificationSvc),
		user.WithLogger(log),
	)
	communitySvc := community.NewService(communities, perms,
		community.WithNotifier(notificationSvc),
		community.WithLogger(log),
	)
	missionSvc := mission.NewService(missions, perms,
		mission.WithNotifier(notificationSvc),
		mission.WithLogger(log),
	)

	auth := jwt.Middleware(tokens)
	guard := permissions.NewGuard(permissions.WithGuardLogger(log))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))

	r.Get("/healthz", healthHandler(pg.Healthcheck(pool), redisCheck))

	r.Route("/v1", func(r chi.Router) {
		r.Mount("/auth", account.Router(accountSvc, auth))
		r.Mount("/users", user.Router(userSvc, auth, guard))
		r.Mount("/communities", community.Router(communitySvc, auth, guard))
		r.Mount("/missions", mission.Router(missionSvc, auth, guard))
		r.With(auth).Mount("/notifications", notification.Router(notificationSvc))
	})

	srv := httpserver.New(
		httpserver.WithAddr(cfg.HTTPAddr),
		httpserver.WithLogger(log),
	)
	return srv.Run(ctx, r)
}

func healthHandler(checks ...func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, check := range checks {
			if err := check(r.Context()); err != nil {
				http.Error(w, "unhealthy", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.LogAttrs(r.Context(), slog.LevelInfo, "request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
