package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"time"

	"aquadash/internal/auth"
	"aquadash/internal/domain/session"
	"aquadash/internal/domain/storage"
	"aquadash/internal/httpclient"
	"aquadash/internal/kv"
	"aquadash/internal/metrics"
	"aquadash/internal/ratelimiter"
	"aquadash/internal/remote"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoadRateLimiterConfig retrieves rate limiter settings from environment variables
func LoadRateLimiterConfig() ratelimiter.Config {
	return ratelimiter.Config{
		RequestsPerTimeFrame: envInt("RATELIMITER_REQUESTS_COUNT", 20),
		TimeFrame:            envDuration("RATELIMITER_TIME_FRAME", 5*time.Second),
		Enabled:              envBool("RATE_LIMITER_ENABLED", true),
	}
}

func loadConfig() config {
	return config{
		addr: envString("ADDR", ":8080"),
		env:  envString("ENV", "development"),
		remote: remoteConfig{
			baseURL:     os.Getenv("REMOTE_BASE_URL"),
			timeout:     envDuration("REMOTE_TIMEOUT", 10*time.Second),
			defaultRole: envString("REMOTE_DEFAULT_ROLE", string(session.RoleSuperAdmin)),
			parkID:      envString("BOX_OFFICE_PARK_ID", "1"),
		},
		kv: kv.Config{
			Backend:          envString("KV_BACKEND", kv.BackendSQLite),
			Namespace:        os.Getenv("KV_NAMESPACE"),
			SQLitePath:       envString("KV_SQLITE_PATH", "aquadash.db"),
			PostgresDSN:      os.Getenv("KV_POSTGRES_DSN"),
			PostgresMaxConns: int32(envInt("KV_POSTGRES_MAX_CONNS", 4)),
			RedisAddr:        envString("KV_REDIS_ADDR", "localhost:6379"),
			RedisPassword:    os.Getenv("KV_REDIS_PASSWORD"),
			RedisDB:          envInt("KV_REDIS_DB", 0),
			S3: kv.S3Config{
				Region:          envString("KV_S3_REGION", "us-east-1"),
				Bucket:          os.Getenv("KV_S3_BUCKET"),
				Prefix:          os.Getenv("KV_S3_PREFIX"),
				Endpoint:        os.Getenv("KV_S3_ENDPOINT"),
				AccessKeyID:     os.Getenv("KV_S3_ACCESS_KEY_ID"),
				SecretAccessKey: os.Getenv("KV_S3_SECRET_ACCESS_KEY"),
				PathStyle:       envBool("KV_S3_PATH_STYLE", false),
			},
		},
		auth: authConfig{
			basic: basicConfig{
				user: os.Getenv("AUTH_BASIC_USER"),
				pass: os.Getenv("AUTH_BASIC_PASS"),
			},
			token: tokenConfig{
				secret: os.Getenv("AUTH_TOKEN_SECRET"),
				exp:    envDuration("AUTH_TOKEN_EXP", 12*time.Hour),
				iss:    "AquaDash",
			},
		},
		rateLimiter: LoadRateLimiterConfig(),
		mock: mockConfig{
			seed:    uint64(envInt("MOCK_SEED", 2024)),
			latency: envDuration("MOCK_LATENCY", 0),
			idSalt:  envString("NOTE_ID_SALT", "aquadash"),
		},
	}
}

func envString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		fmt.Println("Invalid", key, "defaulting to", def)
	}
	return def
}

func envBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		fmt.Println("Invalid", key, "defaulting to", def)
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		fmt.Println("Invalid", key, "defaulting to", def)
	}
	return def
}

// NewLogger creates a new zap logger with color.
func NewLogger() (*zap.SugaredLogger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	consoleEncoder := zapcore.NewConsoleEncoder(encoderCfg)
	level := zapcore.InfoLevel
	core := zapcore.NewCore(consoleEncoder, zapcore.NewMultiWriteSyncer(zapcore.AddSync(os.Stdout)), level)

	return zap.New(core).Sugar(), nil
}

var version = "0.3.0"

// newApplication opens persistence, connects the box office when configured and builds
// every store.
func newApplication(ctx context.Context, cfg config, logger *zap.SugaredLogger) (*application, error) {
	if cfg.auth.token.secret == "" {
		return nil, errors.New("AUTH_TOKEN_SECRET is required")
	}
	remoteRole, err := session.ParseRole(cfg.remote.defaultRole)
	if err != nil {
		return nil, fmt.Errorf("REMOTE_DEFAULT_ROLE: %w", err)
	}

	store, err := kv.Open(ctx, cfg.kv)
	if err != nil {
		return nil, err
	}
	logger.Infow("kv store opened", "backend", cfg.kv.Backend, "namespace", cfg.kv.Namespace)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	deps := storage.Deps{
		KV:              store,
		Logger:          logger,
		Metrics:         m,
		RemoteRole:      remoteRole,
		BoxOfficeParkID: cfg.remote.parkID,
		MockSeed:        cfg.mock.seed,
		NoteIDSalt:      cfg.mock.idSalt,
		ParkLatency:     cfg.mock.latency,
	}
	if cfg.remote.baseURL != "" {
		client := httpclient.New(cfg.remote.baseURL,
			httpclient.WithHTTPClient(&http.Client{Timeout: cfg.remote.timeout}),
			httpclient.WithTokenSource(httpclient.KVTokenSource(store)),
		)
		deps.Auth = remote.NewAuthService(client, store)
		deps.Tickets = remote.NewTicketService(client)
		logger.Infow("box office enabled", "url", cfg.remote.baseURL, "park", cfg.remote.parkID)
	}

	container, err := storage.NewContainer(ctx, deps)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &application{
		config:        cfg,
		store:         container,
		logger:        logger,
		authenticator: auth.NewJWTAuthenticator(cfg.auth.token.secret, cfg.auth.token.iss, cfg.auth.token.iss, cfg.auth.token.exp),
		rateLimiter:   ratelimiter.NewFixedWindowLimiter(cfg.rateLimiter.RequestsPerTimeFrame, cfg.rateLimiter.TimeFrame),
		metrics:       m,
		registry:      reg,
	}, nil
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("Error loading .env file: %v", err)
	}
	cfg := loadConfig()

	logger, err := NewLogger()
	if err != nil {
		fmt.Println("Error creating logger:", err)
		return
	}
	defer logger.Sync()

	app, err := newApplication(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal(err)
	}
	defer app.store.Close()

	//Metrics collected http://localhost:8080/v1/debug/vars
	expvar.NewString("version").Set(version)
	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))
	expvar.Publish("session", expvar.Func(func() any {
		st := app.store.Session.Current()
		return map[string]any{"authenticated": st.IsAuthenticated, "role": st.UserRole}
	}))

	mux := app.mount()

	if err := app.run(mux); err != nil {
		logger.Fatal(err)
	}
}
