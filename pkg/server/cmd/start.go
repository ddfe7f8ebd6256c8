/* Copyright 2025 Dnote Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package cmd

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/notable/notable/pkg/server/app"
	"github.com/notable/notable/pkg/server/buildinfo"
	"github.com/notable/notable/pkg/server/config"
	"github.com/notable/notable/pkg/server/controllers"
	"github.com/notable/notable/pkg/server/database"
	"github.com/notable/notable/pkg/server/job"
	"github.com/notable/notable/pkg/server/log"
	mw "github.com/notable/notable/pkg/server/middleware"
	"github.com/pkg/errors"
)

const shutdownTimeout = 10 * time.Second

func newHandler(a *app.App, limiter *mw.RateLimiter) (http.Handler, error) {
	ctl := controllers.New(a)
	rc := controllers.RouteConfig{
		APIRoutes:   controllers.NewAPIRoutes(a, ctl),
		Controllers: ctl,
		Limiter:     limiter,
	}

	r, err := controllers.NewRouter(a, rc)
	if err != nil {
		return nil, errors.Wrap(err, "initializing router")
	}

	return r, nil
}

// serve serves on the listener until the context is done, then shuts the
// server down gracefully
func serve(ctx context.Context, srv *http.Server, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "serving")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutting down")
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "serving")
	}

	return nil
}

func startCmd(args []string) {
	fs := setupFlagSet("start", "notable-server start")

	appEnv := fs.String("appEnv", "", "Application environment (env: APP_ENV, default: PRODUCTION)")
	port := fs.String("port", "", "Server port (env: PORT, default: 3001)")
	webURL := fs.String("webUrl", "", "Full URL to server without trailing slash (env: WebURL, default: http://localhost:3001)")
	dbDriver := fs.String("dbDriver", "", "Database driver: sqlite or postgres (env: DB_DRIVER, default: sqlite)")
	dbPath := fs.String("dbPath", "", "Path to SQLite database file (env: DBPath, default: $XDG_DATA_HOME/notable/server.db)")
	databaseURL := fs.String("databaseUrl", "", "PostgreSQL connection URL (env: DATABASE_URL)")
	jwtSecret := fs.String("jwtSecret", "", "Secret signing the tokens (env: JWT_SECRET, required in production)")
	envFile := fs.String("envFile", "", "Path to a .env file (default: .env in the working directory, if present)")
	disableRegistration := fs.Bool("disableRegistration", false, "Disable user registration (env: DisableRegistration, default: false)")
	logLevel := fs.String("logLevel", "", "Log level: debug, info, warn, or error (env: LOG_LEVEL, default: info)")
	accessTokenTTL := fs.String("accessTokenTTL", "", "Lifetime of access tokens (env: ACCESS_TOKEN_TTL, default: 15m)")
	refreshTokenTTL := fs.String("refreshTokenTTL", "", "Lifetime of refresh tokens (env: REFRESH_TOKEN_TTL, default: 720h)")
	rateLimit := fs.Int("rateLimit", mw.DefaultRateLimitPerSecond, "Requests per second accepted from each IP")

	fs.Parse(args)

	cfg, err := config.New(config.Params{
		AppEnv:              *appEnv,
		Port:                *port,
		WebURL:              *webURL,
		DBDriver:            *dbDriver,
		DBPath:              *dbPath,
		DatabaseURL:         *databaseURL,
		JWTSecret:           *jwtSecret,
		EnvFile:             *envFile,
		DisableRegistration: *disableRegistration,
		LogLevel:            *logLevel,
		AccessTokenTTL:      *accessTokenTTL,
		RefreshTokenTTL:     *refreshTokenTTL,
	})
	if err != nil {
		fmt.Printf("Error: %s\n\n", err)
		fs.Usage()
		os.Exit(1)
	}

	log.SetLevel(cfg.LogLevel)

	if err := run(cfg, *rateLimit); err != nil {
		log.ErrorWrap(err, "server failed")
		os.Exit(1)
	}
}

func run(cfg config.Config, rateLimit int) error {
	a, err := initApp(cfg)
	if err != nil {
		return errors.Wrap(err, "initializing app")
	}
	defer database.Close(a.DB)

	runner, err := job.NewRunner(&a)
	if err != nil {
		return errors.Wrap(err, "initializing jobs")
	}
	if err := runner.Start(); err != nil {
		return errors.Wrap(err, "starting jobs")
	}
	defer runner.Stop()

	limiter := mw.NewRateLimiter(rateLimit, mw.DefaultRateLimitBurst)
	defer limiter.Close()

	h, err := newHandler(&a, limiter)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.Port))
	if err != nil {
		return errors.Wrapf(err, "listening on port %s", cfg.Port)
	}

	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(log.Fields{
		"version": buildinfo.Version,
		"port":    cfg.Port,
		"driver":  cfg.DBDriver,
	}).Info("Notable server starting")

	if err := serve(ctx, srv, ln); err != nil {
		return err
	}

	log.Info("Notable server stopped")

	return nil
}
