package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/hirelocal/internal/config"
	"github.com/xavierca1/hirelocal/internal/infra/http/handlers"
	"github.com/xavierca1/hirelocal/internal/infra/http/middleware"
	"github.com/xavierca1/hirelocal/internal/infra/http/router"
	"github.com/xavierca1/hirelocal/internal/infra/integration/whatsapp"
	"github.com/xavierca1/hirelocal/internal/infra/mail"
	"github.com/xavierca1/hirelocal/internal/infra/queue"
	"github.com/xavierca1/hirelocal/internal/infra/realtime"
	"github.com/xavierca1/hirelocal/internal/infra/worker"
	"github.com/xavierca1/hirelocal/internal/logger"
	"github.com/xavierca1/hirelocal/internal/usecase"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}
	log := logger.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Repositories
	repos, err := openRepositories(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer repos.Close()

	// 2. Queue (optional)
	var rabbit *queue.RabbitMQ
	var notices usecase.CustomerNoticePublisher
	if cfg.RabbitMQ.URL != "" {
		rabbit, err = queue.NewRabbitMQ(cfg.RabbitMQ.URL)
		if err != nil {
			return err
		}
		defer rabbit.Close()
		notices = queue.NewProducer(rabbit.Ch)
	} else {
		log.Warn("rabbitmq not configured, customer notices are disabled")
	}

	// 3. Core services
	hub := realtime.NewHub()
	recorder := usecase.NewInteractionRecorder(repos.Interactions, nil)
	dispatcher := usecase.NewDispatcher(repos.Notifications, hub, log)
	matcher := usecase.NewMatcher(repos.Profiles)
	pipeline := usecase.NewDeliveryPipeline(recorder, dispatcher, cfg.Delivery.Concurrency, log)
	entitlement := usecase.NewEntitlementChecker(repos.Subscriptions, nil)

	// 4. Use cases
	createLeadUC := usecase.NewCreateLeadUseCase(repos.Leads, matcher, pipeline, log)
	acceptLeadUC := usecase.NewAcceptLeadUseCase(
		repos.Profiles, repos.Leads, repos.Interactions, entitlement, recorder, dispatcher,
		notices, cfg.Acceptance.Timeout, nil, log,
	)
	getLeadUC := usecase.NewGetLeadUseCase(repos.Leads, repos.Profiles, repos.Interactions, recorder, log)
	listLeadsUC := usecase.NewListLeadsUseCase(repos.Leads)
	statusUC := usecase.NewLeadStatusUseCase(repos.Leads, repos.Profiles, recorder, dispatcher, nil, log)
	inboxUC := usecase.NewInboxUseCase(repos.Profiles, repos.Leads, repos.Interactions)
	notificationInbox := usecase.NewNotificationInbox(repos.Notifications, nil)
	entitlementUC := usecase.NewEntitlementStatusUseCase(repos.Profiles, entitlement)

	// 5. Background workers
	var wg sync.WaitGroup
	startWorker := func(fn func(context.Context)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn(ctx)
		}()
	}

	leadSweeper := usecase.NewLeadSweeper(repos.Leads, recorder, cfg.Sweeps.MissedLeadWindow, nil, log)
	startWorker(worker.NewMissedLeadWorker(leadSweeper, cfg.Sweeps.MissedLeadInterval, log).Start)
	subSweeper := usecase.NewSubscriptionSweeper(repos.Subscriptions, nil)
	startWorker(worker.NewSubscriptionExpiryWorker(subSweeper, cfg.Sweeps.SubscriptionInterval, log).Start)

	limiter := middleware.NewRateLimiter(cfg.RateLimit.LeadsPerMinute, cfg.RateLimit.Burst)
	startWorker(limiter.RunCleanup)

	if rabbit != nil {
		mailer := mail.NewEmailSender(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.User, cfg.Mail.Password, cfg.Mail.From, cfg.Mail.BaseURL)
		messenger := mail.NewWhatsAppSender(whatsapp.NewClient(
			cfg.WhatsApp.AccessToken, cfg.WhatsApp.PhoneID, cfg.WhatsApp.Language, cfg.WhatsApp.BaseURL))
		noticeHandler := usecase.NewCustomerNoticeHandler(repos.Users, mailer, messenger, log)

		consumer := queue.NewWorker(rabbit.Ch, meteredNotices{next: noticeHandler}, log)
		startWorker(func(ctx context.Context) {
			if err := consumer.Start(ctx, queue.QueueName); err != nil {
				log.Error("notice worker stopped", slog.Any("error", err))
			}
		})
	}

	// 6. HTTP
	var rabbitConn *amqp091.Connection
	if rabbit != nil {
		rabbitConn = rabbit.Conn
	}
	h := router.Handlers{
		Leads:         handlers.NewLeadHandler(createLeadUC, acceptLeadUC, getLeadUC, listLeadsUC, statusUC, inboxUC, log),
		Notifications: handlers.NewNotificationHandler(notificationInbox, hub, log),
		Subscriptions: handlers.NewSubscriptionHandler(entitlementUC, log),
		Health:        handlers.NewHealthHandler(repos.DB, rabbitConn, cfg.Storage.Driver),
	}
	srv := &http.Server{
		Addr: cfg.HTTP.Addr,
		Handler: router.NewRouter(h, router.Options{
			AllowedOrigins: cfg.HTTP.AllowedOrigins,
			RequestTimeout: cfg.HTTP.RequestTimeout,
			Auth:           middleware.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.Issuer),
			LeadLimiter:    limiter,
		}),
		// open SSE streams end with the process context
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", slog.String("addr", cfg.HTTP.Addr), slog.String("storage", cfg.Storage.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		stop()
		wg.Wait()
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", slog.Any("error", err))
	}
	wg.Wait()
	return nil
}
