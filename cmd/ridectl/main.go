package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	appauth "ride-hail-client/internal/application/auth"
	"ride-hail-client/internal/application/polling"
	"ride-hail-client/internal/domain/auth"
	"ride-hail-client/internal/infra/memory"
	"ride-hail-client/internal/infrastructure/config"
	"ride-hail-client/internal/infrastructure/db"
	"ride-hail-client/internal/infrastructure/external/rideapi"
	"ride-hail-client/internal/infrastructure/persistence/postgres"

	"github.com/prometheus/client_golang/prometheus"
)

const usage = `usage: ridectl [-config file] [-u user -p pass] <command> [args]

commands:
  login -u USER -p PASS        sign in and store the session
  register -u USER -p PASS     create an account (-driver for drivers) and sign in
  logout                       clear the stored session
  me                           show the signed-in profile
  request -from A -to B -km N  request a ride (clients)
  rides                        list visible rides
  act ID ACTION                accept | start | complete | cancel
  available                    open rides (drivers) or available drivers (clients)
  availability on|off          toggle driver availability
  watch                        poll rides until interrupted
`

var errUsage = errors.New("invalid usage")

// app 一次 CLI 執行所需的相依。
type app struct {
	cfg      config.Config
	out      io.Writer
	store    auth.SessionStore
	api      *rideapi.Client
	session  *appauth.SessionService
	registry *prometheus.Registry
	polls    *polling.Metrics
}

func newApp(cfg config.Config, store auth.SessionStore, out io.Writer) *app {
	reg := prometheus.NewRegistry()
	api := rideapi.NewClient(cfg.API.BaseURL, cfg.API.Timeout, store, rideapi.WithMetrics(rideapi.NewMetrics(reg)))
	return &app{
		cfg:      cfg,
		out:      out,
		store:    store,
		api:      api,
		session:  appauth.NewSessionService(api, store),
		registry: reg,
		polls:    polling.NewMetrics(reg),
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
		}
		fmt.Fprintf(os.Stderr, "ridectl: %s\n", rideapi.Message(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("ridectl", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	user := fs.String("u", "", "sign in as this user before the command")
	pass := fs.String("p", "", "password for -u")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() == 0 {
		return errUsage
	}

	cfg, err := config.LoadFromFile(*cfgPath)
	if err != nil {
		return err
	}

	store, closeStore, err := openSessionStore(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer closeStore()

	a := newApp(cfg, store, out)
	if *user != "" && fs.Arg(0) != "login" && fs.Arg(0) != "register" {
		if _, err := a.session.Login(ctx, appauth.LoginInput{Username: *user, Password: *pass}); err != nil {
			return err
		}
	}
	return a.dispatch(ctx, fs.Arg(0), fs.Args()[1:])
}

// openSessionStore 有 DSN 時 session 存在 Postgres，否則只活在這次執行。
func openSessionStore(ctx context.Context, cfg config.DBConfig) (auth.SessionStore, func(), error) {
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if pool == nil {
		log.Printf("[Session] no DB_DSN provided; session lives only for this run")
		return memory.NewSessionStore(), func() {}, nil
	}
	return postgres.NewSessionRepo(pool), func() { pool.Close() }, nil
}
