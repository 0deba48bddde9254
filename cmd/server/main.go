package main

import (
	"context"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"

	"voteauth/internal/audit"
	auditrepo "voteauth/internal/audit/repository"
	ballotservice "voteauth/internal/ballot/service"
	"voteauth/internal/config"
	"voteauth/internal/db"
	"voteauth/internal/db/migrate"
	"voteauth/internal/devotp"
	devotphandler "voteauth/internal/devotp/handler"
	"voteauth/internal/notify"
	"voteauth/internal/otp"
	"voteauth/internal/policy/engine"
	"voteauth/internal/ratelimit"
	"voteauth/internal/server"
	"voteauth/internal/server/interceptors"
	"voteauth/internal/store"
	"voteauth/internal/telemetry"
	otelsetup "voteauth/internal/telemetry/otel"
	"voteauth/internal/telemetry/producer"
	verificationservice "voteauth/internal/verification/service"
)

// healthCheckMethod is excluded from request telemetry.
const healthCheckMethod = "/grpc.health.v1.Health/Check"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	ctx := context.Background()

	providers, err := otelsetup.NewProviders(ctx, cfg.OTLPEndpoint, cfg.ServiceName, cfg.OTLPInsecure)
	if err != nil {
		log.Fatalf("otel: %v", err)
	}
	providers.SetGlobal()
	metrics, err := telemetry.NewMetrics(providers.Meter())
	if err != nil {
		log.Fatalf("metrics: %v", err)
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}
	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()
	version, dirty, err := migrate.Version(cfg.DatabaseURL)
	switch {
	case err != nil:
		log.Fatalf("migrate: version: %v", err)
	case dirty:
		log.Fatalf("migrate: schema version %d is dirty; fix it with cmd/migrate", version)
	case version == 0:
		log.Fatal("migrate: schema not initialized; run cmd/migrate first")
	}
	st := store.NewPostgres(conn)

	evaluator, err := newEvaluator(ctx, cfg.EligibilityPolicyFile)
	if err != nil {
		log.Fatalf("policy: %v", err)
	}

	kafkaProducer, err := producer.NewKafkaProducer(cfg.KafkaBrokersList(), cfg.AuditKafkaTopic)
	if err != nil {
		log.Fatalf("kafka: %v", err)
	}
	var emitters []telemetry.EventEmitter
	if kafkaProducer != nil {
		emitters = append(emitters, kafkaProducer)
		log.Printf("audit events streamed to kafka topic %s", kafkaProducer.Topic())
	}
	if cfg.OTLPEndpoint != "" {
		emitters = append(emitters, otelsetup.NewEventEmitter(providers.LoggerProvider))
	}
	events := telemetry.Fanout(emitters...)

	auditLogger := audit.NewLogger(auditrepo.NewPostgresRepository(conn), interceptors.ClientIP, events)

	channels, err := parseChannels(cfg.NotifyChannelsList())
	if err != nil {
		log.Fatalf("notify: %v", err)
	}
	notifier, devCodes, err := newNotifier(cfg, channels)
	if err != nil {
		log.Fatalf("notify: %v", err)
	}
	dispatcher := notify.NewDispatcher(notifier, metrics)

	verification, err := verificationservice.NewService(verificationservice.Deps{
		Store:       st,
		Generator:   otp.NewGenerator(cfg.OTPLength, otp.NewHasher(cfg.BcryptCost)),
		Limiter:     ratelimit.NewLimiter(cfg.Cooldown()),
		Issuer:      ballotservice.NewIssuer(cfg.BallotTokenBytes),
		Eligibility: evaluator,
		Dispatcher:  dispatcher,
		Audit:       auditLogger,
		Metrics:     metrics,
		Channels:    channels,
		CodeTTL:     cfg.CodeTTL(),
		MaxAttempts: cfg.OTPMaxAttempts,
	})
	if err != nil {
		log.Fatalf("verification: %v", err)
	}

	deps := server.Deps{
		Verification:        verification,
		Ballot:              ballotservice.NewService(st, auditLogger, metrics),
		HealthPinger:        conn,
		HealthPolicyChecker: evaluator,
	}
	if devCodes != nil {
		deps.DevCodeHandler = devotphandler.NewServer(devCodes)
		log.Println("WARNING: dev code mode enabled; codes are not delivered and are readable via DevService.GetCode")
	}

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatalf("listen: %v", err)
	}
	defer lis.Close()

	s := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			interceptors.RequestIDUnary(),
			interceptors.TelemetryUnary(events, map[string]bool{healthCheckMethod: true}),
		),
	)
	server.RegisterServices(s, deps)

	go func() {
		log.Printf("gRPC server listening on %s", cfg.GRPCAddr)
		if err := s.Serve(lis); err != nil {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down gRPC server...")
	s.GracefulStop()

	drainCtx, cancel := context.WithTimeout(context.Background(), telemetry.ShutdownDrainDuration)
	defer cancel()
	if err := dispatcher.Wait(drainCtx); err != nil {
		log.Printf("notify: pending deliveries abandoned: %v", err)
	}
	if events != nil {
		<-drainCtx.Done()
	}
	if err := kafkaProducer.Close(); err != nil {
		log.Printf("kafka: close: %v", err)
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Printf("otel: shutdown: %v", err)
	}
	log.Println("gRPC server stopped")
}

// newEvaluator compiles the eligibility policy from path, or the built-in policy when path is empty.
func newEvaluator(ctx context.Context, path string) (*engine.OPAEvaluator, error) {
	if path == "" {
		return engine.NewOPAEvaluator(ctx, engine.DefaultEligibilityPolicy)
	}
	return engine.NewOPAEvaluatorFromFile(ctx, path)
}

func parseChannels(names []string) ([]notify.Channel, error) {
	out := make([]notify.Channel, 0, len(names))
	for _, name := range names {
		ch, err := notify.ParseChannel(name)
		if err != nil {
			return nil, err
		}
		out = append(out, ch)
	}
	return out, nil
}

// newNotifier builds the delivery notifier for channels. In dev code mode every channel is replaced by
// an in-memory store, which is returned so DevService can read from it.
func newNotifier(cfg *config.Config, channels []notify.Channel) (notify.Notifier, *devotp.MemoryStore, error) {
	if cfg.OTPReturnToClient {
		codes := devotp.NewMemoryStore()
		return notify.NewDevNotifier(codes), codes, nil
	}
	routes := make(map[notify.Channel]notify.Notifier, len(channels))
	for _, ch := range channels {
		switch ch {
		case notify.ChannelEmail:
			n, err := notify.NewEmailNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
			if err != nil {
				return nil, nil, err
			}
			routes[ch] = n
		case notify.ChannelSMS:
			n, err := notify.NewSMSLocalNotifier(cfg.SMSLocalAPIKey, cfg.SMSLocalBaseURL, cfg.SMSLocalSender)
			if err != nil {
				return nil, nil, err
			}
			routes[ch] = n
		}
	}
	return notify.NewMulti(routes), nil, nil
}
