package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/mkrupp/taskcase/internal/infra/config"
	"github.com/mkrupp/taskcase/internal/infra/logging"
	http_ "github.com/mkrupp/taskcase/internal/infra/transport/http"
	"github.com/mkrupp/taskcase/internal/ratelimit"
	"github.com/mkrupp/taskcase/internal/repo/task"
	"github.com/mkrupp/taskcase/internal/repo/user"
	"github.com/mkrupp/taskcase/internal/svc/authsvc"
	"github.com/mkrupp/taskcase/internal/svc/authsvc/authclient"
	"github.com/mkrupp/taskcase/internal/svc/tasksvc"
	"github.com/mkrupp/taskcase/internal/svc/usersvc"
)

const (
	appName = "taskcase"
	svcName = "tasksvc"
)

type Config struct {
	config.EnvConfig

	Log       logging.LoggerConfig            `envPrefix:"LOG_"`
	Auth      authsvc.AuthConfig              `envPrefix:"AUTH_"`
	HTTP      http_.HTTPTransportConfig       `envPrefix:"HTTP_"`
	Ratelimit ratelimit.LimiterConfig         `envPrefix:"RATELIMIT_"`
	User      user.SQLiteUserRepositoryConfig `envPrefix:"USER_"`
	Task      task.SQLiteTaskRepositoryConfig `envPrefix:"TASK_"`
}

func main() {
	var (
		cfg Config
		ctx = context.Background()

		configPrefix = strings.ToUpper(strings.Join([]string{appName, svcName}, "_"))
		loggerName   = strings.ToLower(strings.Join([]string{appName, svcName}, "."))
	)

	if err := config.Parse(ctx, &cfg, configPrefix); err != nil {
		panic(err)
	}

	logging.Configure(ctx, cfg.Log, loggerName)

	if err := run(ctx, cfg); err != nil {
		panic(err)
	}
}

//nolint:funlen
func run(ctx context.Context, cfg Config) (err error) {
	defer func() {
		log := logging.GetLogger("cmd.tasksvc")

		if err != nil {
			log.ErrorContext(ctx, "error", "err", err)
			panic(err)
		}

		log.InfoContext(ctx, "shutdown")
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The user repository owns the users table; it must come up before the
	// task repository attaches its foreign key to it.
	authSvc, err := authsvc.NewAuthService(
		user.SQLiteUserRepositoryFactory(cfg.User),
		cfg.Auth,
	)
	if err != nil {
		return fmt.Errorf("new auth service: %w", err)
	}
	defer authSvc.Close()

	userSvc, err := usersvc.NewUserService(user.SQLiteUserRepositoryFactory(cfg.User))
	if err != nil {
		return fmt.Errorf("new user service: %w", err)
	}
	defer userSvc.Close()

	taskSvc, err := tasksvc.NewTaskService(task.SQLiteTaskRepositoryFactory(cfg.Task))
	if err != nil {
		return fmt.Errorf("new task service: %w", err)
	}
	defer taskSvc.Close()

	authClient := authclient.NewLocalClient(authSvc)

	authHT := authsvc.NewHTTPTransport(authSvc,
		authsvc.HTTPTransportConfig{HTTPTransportConfig: cfg.HTTP})
	userHT := usersvc.NewHTTPTransport(userSvc, authClient,
		usersvc.HTTPTransportConfig{HTTPTransportConfig: cfg.HTTP})
	taskHT := tasksvc.NewHTTPTransport(taskSvc, authClient,
		tasksvc.HTTPTransportConfig{HTTPTransportConfig: cfg.HTTP})

	mux := http.NewServeMux()
	mux.Handle("/api/v1/auth/", authHT)
	mux.Handle("/api/v1/users", userHT)
	mux.Handle("/api/v1/users/", userHT)
	mux.Handle("/api/v1/tasks", taskHT)
	mux.Handle("/api/v1/tasks/", taskHT)

	limiter := ratelimit.NewLimiter(cfg.Ratelimit)
	go limiter.Run(ctx)

	handler := http_.RatelimitingMiddleware(mux, limiter,
		logging.GetLogger("infra.transport.http.ratelimit"))

	if err := http_.ListenAndServe(ctx, handler, cfg.HTTP); err != nil {
		return fmt.Errorf("listen and serve: %w", err)
	}

	return nil
}
