package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"indexscore/internal/approval"
	"indexscore/internal/client/alphavantage"
	"indexscore/internal/client/indexdata"
	"indexscore/internal/config"
	cronrunner "indexscore/internal/cron"
	"indexscore/internal/customindex"
	"indexscore/internal/db"
	"indexscore/internal/enrich"
	"indexscore/internal/handler"
	"indexscore/internal/indexrun"
	"indexscore/internal/logger"
	"indexscore/internal/oracle"
	gormrepository "indexscore/internal/repository/gorm"
	"indexscore/internal/retry"
	"indexscore/internal/scoring"
)

func main() {
	cfgPath := os.Getenv("IS_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("IS_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	avHTTP := &http.Client{Timeout: cfg.AlphaVantage.Timeout}
	avClient := alphavantage.NewClient(avHTTP, cfg.AlphaVantage.BaseURL, cfg.AlphaVantage.APIKey)

	generator, err := oracle.NewGenAIGenerator(ctx, cfg.Oracle.APIKey, cfg.Oracle.Model)
	if err != nil {
		logger.Fatal("oracle init failed", zap.Error(err))
	}
	oracleClient := &oracle.Client{
		Gen:        generator,
		Model:      cfg.Oracle.Model,
		MaxRetries: cfg.Oracle.MaxRetries,
		Backoff:    retry.Exponential(cfg.Oracle.Backoff),
		Logger:     logger,
	}

	store := gormrepository.New(dbConn.Gorm)
	scoringSvc := &scoring.Service{
		Store: store,
		Enricher: &enrich.Enricher{
			Market:    avClient,
			News:      avClient,
			NewsLimit: cfg.Scoring.NewsLimit,
		},
		Oracle: oracleClient,
		Model:  cfg.Oracle.Model,
		Logger: logger,
	}
	batchSvc := &scoring.BatchService{
		Store:       store,
		Scorer:      scoringSvc,
		Concurrency: cfg.Scoring.Concurrency,
		Logger:      logger,
	}
	orchestrator := &indexrun.Orchestrator{
		Store:       store,
		Membership:  indexdata.StaticProvider{},
		Scorer:      scoringSvc,
		Concurrency: cfg.IndexScoring.Concurrency,
		Logger:      logger,
	}
	approvalSvc := &approval.Service{Store: store, Logger: logger}
	signatureSvc := &customindex.SignatureService{Store: store, Logger: logger}
	builder := &customindex.Builder{Store: store, Logger: logger}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm}
	healthHandler.Register(engine)
	scoresHandler := handler.NewScoresHandler(batchSvc, store, logger, ctx)
	scoresHandler.Register(engine)
	approvalHandler := &handler.ApprovalHandler{Service: approvalSvc}
	approvalHandler.Register(engine)
	indexHandler := &handler.IndexHandler{
		Orchestrator: orchestrator,
		Signatures:   signatureSvc,
		Builder:      builder,
	}
	indexHandler.Register(engine)

	cronRunner := cronrunner.New(logger, ctx)
	if cfg.Cron.Enabled {
		indexes := cfg.IndexScoring.Indexes
		_, err := cronRunner.Add(cfg.Cron.IndexScoring, func(ctx context.Context) {
			effectiveDate := time.Now().UTC().Truncate(24 * time.Hour)
			for _, indexID := range indexes {
				run, err := orchestrator.ScoreIndex(ctx, indexID, effectiveDate)
				if err != nil {
					logger.Warn("cron index scoring failed",
						zap.String("index_id", indexID),
						zap.Error(err))
					continue
				}
				logger.Info("cron index scoring ok",
					zap.String("index_id", indexID),
					zap.String("run_id", run.ID))
			}
		})
		if err != nil {
			logger.Warn("cron register index scoring failed", zap.Error(err))
		}
		cronRunner.Start()
		defer cronRunner.Stop()
	}

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
