package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/stocklink/internal/app"
	"github.com/dropDatabas3/stocklink/internal/config"
	"github.com/dropDatabas3/stocklink/internal/email"
	jwtx "github.com/dropDatabas3/stocklink/internal/jwt"
	"github.com/dropDatabas3/stocklink/internal/observability/logger"
	"github.com/dropDatabas3/stocklink/internal/rate"
	"github.com/dropDatabas3/stocklink/internal/store/pg"
)

func main() {
	// .env es opcional; en prod las vars vienen del entorno
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "configs/config.yaml"
		if _, err := os.Stat(cfgPath); err != nil {
			cfgPath = ""
		}
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		panic("config: " + err.Error())
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		ServiceName: "stocklink",
	})
	defer func() { _ = logger.Sync() }()
	log := logger.L()

	if err := cfg.Validate(); err != nil {
		// seguimos levantando: los endpoints afectados responden 500 config_missing
		log.Warn("configuración incompleta", logger.Err(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ── Storage ──
	store, err := pg.New(ctx, cfg.Storage.DSN, pg.Tuning{
		MaxOpenConns:    cfg.Storage.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Storage.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Storage.Postgres.ConnMaxLifetime,
	})
	if err != nil {
		log.Fatal("no se pudo inicializar el store", logger.Err(err))
	}
	defer store.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	if err := store.Ping(pingCtx); err != nil {
		log.Warn("postgres no responde al arranque", logger.Err(err))
	}
	cancel()

	// ── JWT issuer ──
	issuer, err := jwtx.NewIssuer(cfg.JWT.Issuer, cfg.JWT.KeySeed, cfg.AccessTTL(), cfg.RefreshTTL())
	if err != nil {
		log.Fatal("no se pudo inicializar el issuer", logger.Err(err))
	}
	if cfg.JWT.KeySeed == "" {
		log.Warn("JWT_KEY_SEED vacío: clave efímera, las sesiones no sobreviven reinicios")
	}

	// ── Rate limiter (Redis si está, memoria si no) ──
	var limiter rate.Limiter
	if cfg.Rate.Enabled {
		if cfg.Rate.Redis.Addr != "" {
			rdb := redis.NewClient(&redis.Options{Addr: cfg.Rate.Redis.Addr, DB: cfg.Rate.Redis.DB})
			limiter = rate.NewRedisLimiter(rdb, cfg.Rate.Redis.Prefix, cfg.Rate.Login.Limit, cfg.LoginWindow())
			log.Info("rate limiting con redis", logger.String("addr", cfg.Rate.Redis.Addr))
		} else {
			limiter = rate.NewMemoryLimiter(cfg.Rate.Login.Limit, cfg.LoginWindow())
			log.Info("rate limiting en memoria")
		}
	}

	// ── Mailer ──
	var mailer email.Sender = email.NopSender{}
	smtp := email.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	}
	if smtp.Configured() {
		mailer = email.NewSMTPSender(smtp)
	} else {
		log.Info("SMTP sin configurar: correos de invitación deshabilitados")
	}

	// ── App ──
	a, err := app.New(app.Deps{
		Config:       cfg,
		Store:        store,
		Issuer:       issuer,
		Mailer:       mailer,
		LoginLimiter: limiter,
	})
	if err != nil {
		log.Fatal("no se pudo armar la aplicación", logger.Err(err))
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           a.Handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("servidor escuchando", logger.String("addr", cfg.Server.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("apagando...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown con error", logger.Err(err))
		}
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			log.Fatal("servidor falló", logger.Err(err))
		}
	}
}
