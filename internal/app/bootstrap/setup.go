package bootstrap

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"whitegate/internal/config"
	"whitegate/internal/database"
	"whitegate/internal/monitor"
	"whitegate/internal/nginxconf"
	"whitegate/internal/reload"
	"whitegate/internal/whitelist"
)

// Setup loads configuration, opens the database and wires the whitelist
// manager and the connection aggregator. It also brings the generated
// artifacts in line with the stored entry set, so a restart after a failed
// sync converges without manual action.
func Setup(ctx context.Context) (*whitelist.Manager, *monitor.Aggregator) {
	config.ReadSettings()

	if _, err := database.SetupDB(); err != nil {
		log.Fatalf("failed to set up database: %v", err)
	}

	cfg := config.GetConfig()

	renderer := nginxconf.New(cfg.Paths.AllowList, cfg.Paths.LookupMap)
	invoker := reload.New(cfg.Reload.HelperPath, time.Duration(cfg.Reload.TimeoutSeconds)*time.Second)

	manager := whitelist.NewManager(renderer, invoker)
	aggregator := monitor.NewAggregator(cfg.Paths.AccessLog)

	if err := manager.Reconcile(ctx); err != nil {
		log.Warn("Initial artifact reconcile failed; whitelist mutations will retry it", "error", err)
	}

	go aggregator.StartRefreshRoutine(ctx)

	return manager, aggregator
}
