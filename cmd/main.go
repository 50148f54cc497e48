package main

import (
    "context"
    "errors"
    "log"
    "net/http"
    "os"
    "os/signal"
    "path/filepath"
    "syscall"
    "time"

    "go.uber.org/zap"

    "stockpredictor/config"
    qhttp "stockpredictor/http"
    "stockpredictor/logging"
    "stockpredictor/ml"
)

func main() {
    // Look for config in root even if run from cmd/
    configPath := config.ResolvePath(config.DefaultFile)

    // 1. Load config
    cfg, err := config.Load(configPath)
    if err != nil {
        log.Fatalf("Failed to load config: %v", err)
    }

    cfg.Model.Path = modelPath(configPath, cfg)

    // 2. Logger
    logger, level, err := logging.New(logging.Options{
        Level:      cfg.Log.Level,
        File:       cfg.Log.File,
        MaxSizeMB:  cfg.Log.MaxSizeMB,
        MaxBackups: cfg.Log.MaxBackups,
        MaxAgeDays: cfg.Log.MaxAgeDays,
        Compress:   cfg.Log.Compress,
    })
    if err != nil {
        log.Fatalf("Failed to initialize logger: %v", err)
    }
    defer logger.Sync()

    // 3. Load the model once; without it there is no service
    predictor, err := ml.Open(cfg.Model.Path, ml.WithCacheSize(cfg.Model.CacheSize))
    if err != nil {
        switch {
        case errors.Is(err, ml.ErrArtifactNotFound):
            logger.Fatal("model artifact not found", zap.String("path", cfg.Model.Path), zap.Error(err))
        case errors.Is(err, ml.ErrArtifactCorrupt):
            logger.Fatal("model artifact corrupt", zap.String("path", cfg.Model.Path), zap.Error(err))
        default:
            logger.Fatal("failed to load model artifact", zap.String("path", cfg.Model.Path), zap.Error(err))
        }
    }
    schema := predictor.Schema()
    logger.Info("model loaded",
        zap.String("path", cfg.Model.Path),
        zap.String("kind", predictor.Kind()),
        zap.Strings("features", schema.Features),
        zap.String("target", schema.Target),
    )

    ctx, cancel := context.WithCancel(context.Background())
    defer cancel()

    // Log level follows config edits; the model does not
    err = config.Watch(ctx, configPath, func(next *config.Config) {
        if err := logging.SetLevel(level, next.Log.Level); err != nil {
            logger.Warn("ignoring log level change", zap.Error(err))
            return
        }
        if modelPath(configPath, next) != cfg.Model.Path {
            logger.Warn("model path changed; restart to load it", zap.String("path", next.Model.Path))
        }
        logger.Info("config reloaded", zap.String("log_level", next.Log.Level))
    }, func(err error) {
        logger.Warn("config reload failed", zap.Error(err))
    })
    if err != nil {
        logger.Warn("config watcher disabled", zap.Error(err))
    }

    // 4. Start HTTP server
    serverConfig := qhttp.DefaultServerConfig()
    serverConfig.Port = cfg.Http.Port
    serverConfig.AllowedOrigins = cfg.Http.AllowedOrigins
    serverConfig.MaxBodyBytes = cfg.Http.MaxBodyBytes
    serverConfig.Timeout = 30 * time.Second

    server := qhttp.NewServer(serverConfig, predictor, logger)
    go func() {
        if err := server.Start(); err != nil && err != http.ErrServerClosed {
            logger.Fatal("HTTP server failed", zap.Error(err))
        }
    }()

    // 5. Handle graceful shutdown
    quit := make(chan os.Signal, 1)
    signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
    <-quit
    logger.Info("shutting down")

    if err := server.Stop(); err != nil {
        logger.Error("server forced to shutdown", zap.Error(err))
    }

    logger.Info("exiting")
}

// modelPath resolves a relative model path from the config file against the
// directory the file was found in. Env paths arrive absolute.
func modelPath(configPath string, cfg *config.Config) string {
    if filepath.IsAbs(cfg.Model.Path) {
        return cfg.Model.Path
    }
    return filepath.Join(filepath.Dir(configPath), cfg.Model.Path)
}
