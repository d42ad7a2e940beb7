package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"

	parkgate "github.com/zg04ckpt/parkgate"
	"github.com/zg04ckpt/parkgate/api"
	"github.com/zg04ckpt/parkgate/policy"
	"github.com/zg04ckpt/parkgate/store"
)

type fileConfig struct {
	BaseURL        string        `yaml:"base_url"`
	CredentialMode string        `yaml:"credential_mode"`
	Header         string        `yaml:"header"`
	Timeout        time.Duration `yaml:"timeout"`
	ClientID       string        `yaml:"client_id"`

	BoltPath    string `yaml:"bolt_path"`
	RedisAddr   string `yaml:"redis_addr"`
	RedisPrefix string `yaml:"redis_prefix"`

	Routes struct {
		Login        string   `yaml:"login"`
		AccessDenied string   `yaml:"access_denied"`
		Public       []string `yaml:"public"`
	} `yaml:"routes"`
}

func loadConfig(path string) (fileConfig, error) {
	var fc fileConfig

	raw, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fc, fmt.Errorf("parse config %s: %w", path, err)
	}
	if fc.BaseURL == "" {
		return fc, errors.New("config: base_url is required")
	}
	return fc, nil
}

// app bundles everything a subcommand needs: the wired session client, the
// resource client behind the coordinated transport, and the cleanup chain.
type app struct {
	log     *slog.Logger
	session *parkgate.Client
	backend *api.Client
	closers []func() error
}

func (a *app) close() {
	a.session.Close()
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("cleanup failed", slog.String("error", err.Error()))
		}
	}
}

func setup() (*app, error) {
	logger := newLogger()

	fc, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}

	cfg := parkgate.DefaultConfig()
	if fc.Routes.Login != "" {
		cfg.Routes.Login = fc.Routes.Login
	}
	if fc.Routes.AccessDenied != "" {
		cfg.Routes.AccessDenied = fc.Routes.AccessDenied
	}
	if len(fc.Routes.Public) > 0 {
		cfg.Routes.Public = fc.Routes.Public
	}

	mode := parkgate.CredentialToken
	if fc.CredentialMode == "cookie" {
		mode = parkgate.CredentialCookie
	}
	cfg.Credential.Mode = mode

	a := &app{log: logger}

	var creds parkgate.CredentialStore
	switch {
	case mode != parkgate.CredentialToken:
		creds = parkgate.NewCookieCredentialStore()
	case fc.BoltPath != "":
		backend, err := store.NewBolt(fc.BoltPath)
		if err != nil {
			return nil, fmt.Errorf("open bolt store: %w", err)
		}
		a.closers = append(a.closers, backend.Close)
		creds = parkgate.NewPersistentCredentialStore(backend)
	case fc.RedisAddr != "":
		rdb := redis.NewClient(&redis.Options{Addr: fc.RedisAddr})
		a.closers = append(a.closers, rdb.Close)
		clientID := fc.ClientID
		if clientID == "" {
			host, _ := os.Hostname()
			clientID = "cli-" + host
		}
		backend, err := store.NewRedis(rdb, fc.RedisPrefix, clientID)
		if err != nil {
			return nil, fmt.Errorf("open redis store: %w", err)
		}
		creds = parkgate.NewPersistentCredentialStore(backend)
	default:
		creds = parkgate.NewMemoryCredentialStore()
	}

	backend, err := api.New(api.Config{
		BaseURL:   fc.BaseURL,
		Mode:      mode,
		Header:    fc.Header,
		Timeout:   fc.Timeout,
		UserAgent: "parkgate-cli",
	}, creds)
	if err != nil {
		return nil, err
	}
	a.backend = backend

	pol, err := policy.Default()
	if err != nil {
		return nil, err
	}

	session, err := parkgate.New().
		WithConfig(cfg).
		WithAuthAPI(backend).
		WithPolicy(pol).
		WithCredentialStore(creds).
		WithAuditSink(parkgate.NewSlogSink(logger)).
		WithNavigationSink(parkgate.FuncNavigator(func(_ context.Context, intent parkgate.NavigationIntent) {
			logger.Warn("navigation requested",
				slog.String("episode", intent.EpisodeID),
				slog.String("kind", intent.Kind.String()),
				slog.String("target", intent.Target),
			)
		})).
		Build()
	if err != nil {
		return nil, err
	}
	a.session = session

	backend.UseTransport(session.Transport())

	return a, nil
}
