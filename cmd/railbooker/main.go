package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"railbooker/internal/auth"
	"railbooker/internal/booking"
	"railbooker/internal/notifications"
	"railbooker/internal/passengers"
	"railbooker/internal/railapi"
	"railbooker/internal/receipts"
	"railbooker/internal/shared/config"
	"railbooker/internal/trips"
	"railbooker/pkg/cache"
	"railbooker/pkg/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	appLogger := logger.GetDefault()

	if err := godotenv.Load(); err != nil {
		appLogger.Debug("no .env file found, using system environment variables")
	}

	cfg := config.Load()
	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		appLogger.WithError(err).Error("configuration invalid")
		os.Exit(1)
	}

	appLogger = logger.New()
	logger.SetDefault(appLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLogger); err != nil {
		appLogger.WithError(err).Error("booking failed")
		os.Exit(1)
	}
}

// applyFlags overlays command-line flags onto the env-derived config.
// A flag left at its default does not override the environment.
func applyFlags(cfg *config.Config) {
	from := pflag.String("from", "", "departure city")
	to := pflag.String("to", "", "destination city")
	date := pflag.String("date", "", "journey date (DD-MMM-YYYY, auto, or auto+N)")
	class := pflag.String("class", "", "seat class")
	train := pflag.String("train", "", "preferred train name filter")
	trip := pflag.Int("trip", 0, "1-based trip number to book from the search result")
	autoTrip := pflag.Bool("auto-trip", false, "book the first trip found without prompting")
	workers := pflag.Int("workers", -1, "concurrent acquisition workers (0 = one per CPU)")
	attempts := pflag.Int("attempts", -1, "outer retry bound (0 = retry forever)")
	roster := pflag.String("roster", "", "passenger roster YAML file")
	refresh := pflag.Bool("refresh", false, "clear cached trip searches before booking")
	version := pflag.Bool("version", false, "print version and exit")
	pflag.Parse()

	if *version {
		fmt.Printf("railbooker %s (built %s, commit %s)\n", Version, BuildTime, GitCommit)
		os.Exit(0)
	}

	if *from != "" {
		cfg.Journey.FromCity = *from
	}
	if *to != "" {
		cfg.Journey.ToCity = *to
	}
	if *date != "" {
		cfg.Journey.Date = *date
	}
	if *class != "" {
		cfg.Journey.SeatClass = *class
	}
	if *train != "" {
		cfg.Journey.PreferredTrain = *train
	}
	if *autoTrip {
		cfg.Journey.AutoSelectTrain = true
	}
	if *workers >= 0 {
		cfg.Booking.WorkerCount = *workers
	}
	if *attempts >= 0 {
		cfg.Booking.MaxAttempts = *attempts
	}
	if *roster != "" {
		cfg.Passengers.RosterFile = *roster
	}
	if *trip > 0 {
		cfg.Journey.AutoSelectTrain = false
	}
	tripNumber = *trip
	refreshCache = *refresh
}

// tripNumber and refreshCache are per-invocation choices rather than
// persistent settings, so they live outside Config
var (
	tripNumber   int
	refreshCache bool
)

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	api := railapi.NewClient(cfg.API.BaseURL, cfg.API.RequestTimeout, log)

	authService := auth.NewService(api, cfg.Auth.MobileNumber, cfg.Auth.Password, cfg.Auth.TokenFile, log)
	if err := authService.EnsureAuthenticated(ctx); err != nil {
		return err
	}

	cacheService, err := buildCache(cfg)
	if err != nil {
		return err
	}
	if refreshCache {
		if err := cacheService.ClearAll(ctx); err != nil {
			log.WithError(err).Warn("failed to clear trip search cache")
		}
	}

	rosterService := passengers.NewService()
	roster, err := rosterService.LoadRoster(cfg.Passengers.RosterFile)
	if err != nil {
		return err
	}
	log.Info("passenger roster loaded", "passengers", len(roster))

	store, err := buildReceiptStore(cfg)
	if err != nil {
		return err
	}

	publisher, err := buildPublisher(cfg, log)
	if err != nil {
		return err
	}
	defer publisher.Close()

	tripsRepo := trips.NewRepository(api, cacheService, cfg.Cache.TTL, log)
	provider := passengers.NewProvider(roster)
	orchestrator := booking.NewOrchestrator(tripsRepo, api, provider, log)
	finalizer := booking.NewFinalizer(api, stdinPrompter{}, store, publisher, log)

	workerCount := cfg.Booking.WorkerCount
	if workerCount == 0 {
		workerCount = runtime.NumCPU()
	}

	controller := booking.NewController(tripsRepo, orchestrator, finalizer, authService, booking.ControllerConfig{
		Criteria: trips.SearchCriteria{
			FromCity:       cfg.Journey.FromCity,
			ToCity:         cfg.Journey.ToCity,
			JourneyDate:    cfg.Journey.Date,
			SeatClass:      cfg.Journey.SeatClass,
			PreferredTrain: cfg.Journey.PreferredTrain,
		},
		TripNumber:     tripNumber,
		AutoSelectTrip: cfg.Journey.AutoSelectTrain || tripNumber == 0,
		WorkerCount:    workerCount,
		MaxAttempts:    cfg.Booking.MaxAttempts,
		RetryPause:     cfg.Booking.RetryPause,
	}, log)

	receipt, err := controller.Run(ctx)
	if err != nil {
		return err
	}

	printReceipt(receipt)
	return nil
}

func buildCache(cfg *config.Config) (cache.Service, error) {
	switch cfg.Cache.Backend {
	case "redis":
		return cache.NewRedisService(cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
	default:
		return cache.NewFileService(cfg.Cache.Dir)
	}
}

func buildReceiptStore(cfg *config.Config) (receipts.Store, error) {
	if !cfg.Booking.SaveReceipts {
		return receipts.NopStore{}, nil
	}
	switch cfg.Receipts.Backend {
	case "postgres":
		return receipts.NewPostgresStore(cfg.Receipts.Database.DSN)
	default:
		return receipts.NewFileStore(cfg.Receipts.Dir)
	}
}

func buildPublisher(cfg *config.Config, log *logger.Logger) (notifications.Publisher, error) {
	if !cfg.Kafka.Enabled {
		return notifications.NopPublisher{}, nil
	}
	return notifications.NewKafkaPublisher(notifications.DefaultKafkaConfig(cfg.Kafka.Brokers, cfg.Kafka.Topic), log)
}

// stdinPrompter reads the OTP from the terminal
type stdinPrompter struct{}

func (stdinPrompter) PromptOTP(ctx context.Context) (string, error) {
	fmt.Print("Enter the OTP sent to your mobile number: ")

	lines := make(chan string, 1)
	errs := make(chan error, 1)
	go func() {
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			errs <- err
			return
		}
		lines <- strings.TrimSpace(line)
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case err := <-errs:
		return "", err
	case otp := <-lines:
		if otp == "" {
			return "", fmt.Errorf("empty OTP")
		}
		return otp, nil
	}
}

func printReceipt(r *receipts.Receipt) {
	fmt.Println()
	fmt.Println("Booking confirmed!")
	fmt.Printf("  Train:      %s\n", r.TrainName)
	fmt.Printf("  Journey:    %s -> %s on %s (%s)\n", r.FromCity, r.ToCity, r.JourneyDate, r.SeatClass)
	fmt.Printf("  Seats:      %s\n", strings.Join(r.Seats, ", "))
	fmt.Printf("  Total fare: %.2f BDT\n", r.TotalFare)
	if r.PaymentURL != "" {
		fmt.Printf("  Complete payment at: %s\n", r.PaymentURL)
	}
}
