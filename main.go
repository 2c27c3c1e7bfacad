package main

import (
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-portal/apiclient"
	"github.com/yeremiapane/restaurant-portal/config"
	"github.com/yeremiapane/restaurant-portal/router"
	"github.com/yeremiapane/restaurant-portal/services"
	"github.com/yeremiapane/restaurant-portal/utils"
)

func main() {
	app := &cli.App{
		Name:  "restaurant-portal",
		Usage: "customer and admin portal for the restaurant API",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP server",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "create or update the local tables and exit",
				Action: migrate,
			},
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		utils.ErrorLogger.Fatalf("%v", err)
	}
}

func openDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := config.InitDB(cfg)
	if err != nil {
		return nil, err
	}
	if err := config.AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// wire builds the services the router serves from.
func wire(cfg *config.Config, rules config.Policy, loc *time.Location, db *gorm.DB, store services.Store) router.Dependencies {
	inflight := services.NewInFlight()
	payments := rules.PaymentPolicy()

	carts := services.NewCartService(db, payments, cfg.DeliveryFee)
	recovery := services.NewReceiptRecovery(db, store)
	guard := services.NewDailyLimitGuard(store, rules.DailyReservations)

	return router.Dependencies{
		Config:    cfg,
		Policy:    rules,
		Carts:     carts,
		Checkout:  services.NewCheckoutService(carts, store, payments, inflight),
		Wizard:    services.NewReservationWizard(db, store, guard, rules.Fees, recovery, inflight, loc),
		Lifecycle: services.NewLifecycleService(store, nil, inflight),
		Receipts:  recovery,
	}
}

func migrate(*cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	utils.SetLevel(cfg.LogLevel)
	_, err = openDB(cfg)
	return err
}

func serve(*cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	utils.SetLevel(cfg.LogLevel)

	rules, err := config.LoadPolicy(cfg.PolicyFile)
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	db, err := openDB(cfg)
	if err != nil {
		return err
	}

	deps := wire(cfg, rules, loc, db, apiclient.NewClient(cfg.APIBaseURL, nil))

	gin.SetMode(cfg.GinMode)
	r := router.SetupRouter(deps)

	utils.InfoLogger.Infof("Server running on port %s (store %s)", cfg.Port, cfg.APIBaseURL)
	return r.Run(":" + cfg.Port)
}
