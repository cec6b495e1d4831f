package app

import (
	"context"
	"sync"

	"github.com/mselser95/finsight/internal/holdings"
	"github.com/mselser95/finsight/internal/insights"
	"github.com/mselser95/finsight/pkg/cache"
	"github.com/mselser95/finsight/pkg/config"
	"github.com/mselser95/finsight/pkg/healthprobe"
	"github.com/mselser95/finsight/pkg/httpserver"
	"go.uber.org/zap"
)

// App is the main application orchestrator.
type App struct {
	cfg           *config.Config
	logger        *zap.Logger
	healthChecker *healthprobe.HealthChecker
	httpServer    *httpserver.Server
	stores        *Stores
	insights      *insights.Manager
	holdings      *holdings.Service
	metadataCache cache.Cache
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
}

// Options holds application options.
type Options struct {
	// Generator replaces the Gemini generator, mainly for tests.
	Generator insights.Generator
	// MetadataProvider replaces the RapidAPI metadata client.
	MetadataProvider holdings.MetadataProvider
}
