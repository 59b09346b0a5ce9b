package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"salonhub-backend/internal/config"
	"salonhub-backend/internal/db"
	"salonhub-backend/internal/domain"
	"salonhub-backend/internal/handler"
	"salonhub-backend/internal/jobs"
	"salonhub-backend/internal/notifier"
	"salonhub-backend/internal/ports"
	"salonhub-backend/internal/repository"
	"salonhub-backend/internal/rollup"
	"salonhub-backend/internal/server"
	"salonhub-backend/internal/service"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fs, err := db.New(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect firestore", "err", err)
		os.Exit(1)
	}
	defer fs.Close()

	rdb, err := db.NewRedis(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect redis", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// repositories
	store := repository.Fetcher{
		Source:  repository.FirestoreSource{DB: fs},
		Logger:  logger,
		Metrics: repository.NewMetrics(reg),
	}
	productRepo := repository.ProductRepository{Store: store}
	serviceRepo := repository.ServiceRepository{Store: store}
	bookingRepo := repository.BookingRepository{Store: store}
	expenseRepo := repository.ExpenseRepository{Store: store}
	orderRepo := repository.OrderRepository{Store: store}
	branchRepo := repository.BranchRepository{Store: store}

	// background jobs
	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
	var refresher service.RefreshScheduler
	if cfg.WorkerEnabled {
		client := jobs.NewClient(redisOpts, time.Minute)
		defer client.Close()
		refresher = client
	}

	// services
	redisClient := rdb.Conn()
	dashboardSvc := &service.DashboardService{
		Products: productRepo,
		Services: serviceRepo,
		Bookings: bookingRepo,
		Expenses: expenseRepo,
		Orders:   orderRepo,
		Branches: branchRepo,
		Cache:    service.NewCache(redisClient, cfg.CacheTTL),
		Timeout:  cfg.DashboardTimeout,
		Currency: cfg.CurrencySymbol,
		Logger:   logger,
	}
	expenseSvc := service.ExpenseService{Repo: expenseRepo, Refresh: refresher, Logger: logger}
	offerSvc := service.OfferService{Repo: repository.OfferRepository{Store: store}}
	checkoutSvc := service.CheckoutService{Products: productRepo, Branches: branchRepo, Orders: orderRepo}
	messageSvc := service.MessageService{Repo: repository.MessageRepository{Store: store}}

	firebaseAuth, err := fs.Auth(ctx)
	if err != nil {
		logger.Error("failed to init firebase auth", "err", err)
		os.Exit(1)
	}
	authSvc := &service.AuthService{
		Secret:     cfg.JWTSecret,
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
		Admins:     repository.AdminRepository{Store: store},
		Verifier:   firebaseAuth,
		Logger:     logger,
	}

	messaging, err := fs.Messaging(ctx)
	if err != nil {
		logger.Error("failed to init firebase messaging", "err", err)
		os.Exit(1)
	}
	push := notifier.FCMSink{Client: messaging, Topic: cfg.FCMTopic}
	tokenSvc := service.TokenService{Repo: repository.FCMRepository{Store: store}, Topics: push, Topic: cfg.FCMTopic}

	// notifier
	watches, audience, err := notifierWatches(ctx, cfg, branchRepo)
	if err != nil {
		logger.Error("failed to resolve notifier branch", "err", err)
		os.Exit(1)
	}
	var reads notifier.ReadStore = notifier.NewMemoryReadStore()
	if redisClient != nil {
		scope := rollup.AllBranches
		if audience.Branch != "" {
			scope = audience.Branch
		}
		reads = notifier.NewRedisReadStore(redisClient, scope)
	}
	stream := notifier.NewBroadcaster()
	notes := notifier.New(store, reads, watches, logger, notifier.NewMetrics(reg), stream, push)
	notes.Audience = audience

	// handlers
	handlers := server.Handlers{
		Health: handler.HealthHandler{Checks: map[string]ports.HealthChecker{
			"firestore": fs,
			"redis":     rdb,
		}},
		Docs:          handler.DocsHandler{OpenAPIPath: cfg.OpenAPIPath},
		Auth:          handler.AuthHandler{Service: authSvc},
		Dashboard:     handler.DashboardHandler{Service: dashboardSvc},
		Finance:       handler.FinanceHandler{Expenses: expenseSvc, Dashboard: dashboardSvc},
		Offers:        handler.OfferHandler{Service: offerSvc},
		Orders:        handler.OrderHandler{Service: checkoutSvc},
		Messages:      handler.MessageHandler{Service: messageSvc},
		Notifications: handler.NotificationHandler{Notifier: notes, Stream: stream, Heartbeat: cfg.StreamHeartbeat},
		FCM:           handler.FCMHandler{Service: tokenSvc},
	}
	router := server.NewRouter(cfg, logger, reg, handlers)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Start(gctx, cfg, router, logger)
	})
	g.Go(func() error {
		// open event streams would hold the server shutdown
		<-gctx.Done()
		stream.Close()
		return nil
	})
	g.Go(func() error {
		if err := notes.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("notifier stopped", "err", err)
		}
		return nil
	})
	if cfg.WorkerEnabled {
		worker, err := newWorker(cfg, redisOpts, dashboardSvc, logger)
		if err != nil {
			logger.Error("failed to init worker", "err", err)
			os.Exit(1)
		}
		g.Go(func() error {
			if err := worker.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}

// notifierWatches resolves the notifier's audience from NOTIFY_ROLE and
// NOTIFY_BRANCH. The read-set is keyed by the audience branch.
func notifierWatches(ctx context.Context, cfg config.Config, branches repository.BranchRepository) ([]notifier.WatchSpec, notifier.Audience, error) {
	role := domain.AdminRole(cfg.NotifyRole)
	if role == domain.RoleSuperAdmin {
		return notifier.Watches(role, "", ""), notifier.Audience{Role: role}, nil
	}
	branch, err := branches.GetByName(ctx, cfg.NotifyBranch)
	if err != nil {
		return nil, notifier.Audience{}, err
	}
	return notifier.Watches(role, branch.ID, branch.Name), notifier.Audience{Role: role, Branch: branch.Name}, nil
}

func newWorker(cfg config.Config, redisOpts asynq.RedisClientOpt, dashboard *service.DashboardService, logger *slog.Logger) (*jobs.Worker, error) {
	refresh, err := jobs.NewDashboardRefreshTask(rollup.AllBranches)
	if err != nil {
		return nil, err
	}
	job := jobs.NewDashboardRefreshJob(dashboard, logger)
	return jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: redisOpts,
		Logger:    logger,
		Handlers:  []jobs.TaskHandler{{Type: jobs.TaskDashboardRefresh, Handler: job.Handle}},
		Cron:      []jobs.CronRegistration{{Spec: cfg.RefreshCron, Task: refresh}},
	})
}
