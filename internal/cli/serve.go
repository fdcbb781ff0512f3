package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/app"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/idempotency"
	"storefront/internal/notify"
	"storefront/internal/payment"
	"storefront/internal/repositories"
	"storefront/internal/telemetry"
	"storefront/pkg/rabbitmq"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2/log"
	"github.com/spf13/cobra"
	"github.com/streadway/amqp"
)

const (
	idempotencyTTL  = 24 * time.Hour
	shutdownTimeout = 10 * time.Second
)

func newServeCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return rt.serve(ctx)
		},
	}
}

func (rt *runtime) serve(ctx context.Context) error {
	cfg := rt.cfg

	shutdownTracing, err := telemetry.Setup(cfg.TracingEnabled, os.Stdout)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Errorf("error shutting down tracing: %v", err)
		}
	}()

	db, store, err := rt.openStore()
	if err != nil {
		return err
	}
	defer database.Close(db)

	deps := app.Deps{
		Config:  cfg,
		Store:   store,
		Gateway: payment.NewSimulatedGateway(cfg.Payment.Delay),
	}

	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			// The storefront keeps selling without events.
			log.Warnf("order events disabled: %v", err)
		} else {
			defer mqClient.Close()
			deps.Publisher = mqClient
			if err := startNotifications(ctx, mqClient, store, newMailer(cfg)); err != nil {
				log.Warnf("order notifications disabled: %v", err)
			}
		}
	}

	idem, closeIdem, err := newIdempotencyStore(ctx, cfg.RedisAddr)
	if err != nil {
		return err
	}
	defer closeIdem()
	deps.Idempotency = idem

	fiberApp, _ := app.New(deps)

	errCh := make(chan error, 1)
	go func() {
		log.Infof("starting server on %s", cfg.AppPort)
		errCh <- fiberApp.Listen(cfg.AppPort)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down server...")
	if err := fiberApp.ShutdownWithTimeout(shutdownTimeout); err != nil {
		log.Errorf("error during shutdown: %v", err)
	}
	log.Info("server gracefully stopped")
	return nil
}

func startNotifications(ctx context.Context, mqClient *rabbitmq.Client, store repositories.Store, mailer notify.Mailer) error {
	notifier := notify.NewOrderNotifier(store.Users(), mailer)
	return mqClient.ConsumeOrderEvents(func(msg amqp.Delivery) error {
		return notifier.HandleMessage(ctx, msg.Body)
	})
}

// newMailer sends through SendGrid when an API key is configured and to
// the log otherwise.
func newMailer(cfg *config.Config) notify.Mailer {
	if cfg.SendGridAPIKey == "" {
		return notify.LogMailer{}
	}
	return notify.NewSendGridMailer(cfg.SendGridAPIKey, cfg.MailFrom)
}

// newIdempotencyStore connects to Redis when addr is set and falls back
// to an in-process store otherwise.
func newIdempotencyStore(ctx context.Context, addr string) (idempotency.Store, func(), error) {
	if addr == "" {
		log.Info("REDIS_ADDR not set, idempotency keys are kept in memory")
		return idempotency.NewMemoryStore(idempotencyTTL), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	closeFn := func() {
		if err := client.Close(); err != nil {
			log.Errorf("error closing redis client: %v", err)
		}
	}
	return idempotency.NewRedisStore(client, idempotencyTTL), closeFn, nil
}
