package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"invite-share/config"
	"invite-share/database"
	"invite-share/logger"
	"invite-share/web"
	"invite-share/web/service"
)

func openStore(cfg *config.Config) *database.Store {
	store, err := database.Open(cfg.DBPath, database.WithDebug(cfg.Debug))
	if err != nil {
		log.Fatalf("Error initializing database(%s): %v", cfg.DBPath, err)
	}
	return store
}

func runWebServer(cfg *config.Config) {
	log.Printf("Starting %v %v", config.GetName(), config.GetVersion())

	logger.InitLogger(cfg.GetLoggingLevel())

	store := openStore(cfg)
	defer store.Close()

	server := web.NewServer(cfg, store)
	if err := server.Start(); err != nil {
		log.Fatalf("Error starting web server: %v", err)
		return
	}

	sigCh := make(chan os.Signal, 1)
	// Trap shutdown signals
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGINT)
	for {
		sig := <-sigCh

		switch sig {
		case syscall.SIGHUP:
			logger.Info("Received SIGHUP signal. Restarting server...")

			if err := server.Stop(); err != nil {
				logger.Debug("Error stopping web server:", err)
			}
			server = web.NewServer(cfg, store)
			if err := server.Start(); err != nil {
				log.Fatalf("Error restarting web server: %v", err)
				return
			}
			log.Println("Web server restarted successfully.")
		default:
			server.Stop()
			log.Println("Shutting down server.")
			return
		}
	}
}

func resetData(cfg *config.Config) {
	store := openStore(cfg)
	defer store.Close()

	if err := store.DestroyAndReseed(context.Background()); err != nil {
		fmt.Println("Failed to reset data:", err)
		return
	}
	fmt.Println("Data reset, default settings and seed invites restored")
}

func refreshOnce(cfg *config.Config) {
	store := openStore(cfg)
	defer store.Close()

	settingService := service.NewSettingService(store)
	refreshService := service.NewRefreshService(store, settingService, nil)
	result, err := refreshService.Refresh(context.Background())
	if err != nil {
		fmt.Println("Refresh failed:", err)
		return
	}
	fmt.Printf("batch %s: %d new invites\n", result.BatchID, result.Increment)
	for _, invite := range result.NewInvites {
		fmt.Printf("  #%d %s %s %.2f\n", invite.Id, invite.Name, invite.Phone, invite.Amount)
	}
}

func showSetting(cfg *config.Config) {
	store := openStore(cfg)
	defer store.Close()

	settingService := service.NewSettingService(store)
	setting, err := settingService.GetAllSetting(context.Background())
	if err != nil {
		fmt.Println("get current setting failed, error info:", err)
		return
	}
	fmt.Println("current setting:")
	fmt.Println("invitePrice:", setting.InvitePrice)
	fmt.Println("todayCount:", setting.TodayCount)
	fmt.Println("totalCount:", setting.TotalCount)
	fmt.Println("inviteCode:", setting.InviteCode)
	fmt.Println("inviteDisplayCount:", setting.InviteDisplayCount)
	for i, rule := range setting.RefreshRules {
		fmt.Printf("refreshRules[%d]: increment=%d probability=%.1f\n", i, rule.Increment, rule.Probability)
	}
}

func updateSetting(cfg *config.Config, inviteCode string, invitePrice float64, displayCount int) {
	store := openStore(cfg)
	defer store.Close()

	ctx := context.Background()
	settingService := service.NewSettingService(store)
	setting, err := settingService.GetAllSetting(ctx)
	if err != nil {
		fmt.Println("get current setting failed, error info:", err)
		return
	}
	if inviteCode != "" {
		setting.InviteCode = inviteCode
	}
	if invitePrice > 0 {
		setting.InvitePrice = invitePrice
	}
	if displayCount > 0 {
		setting.InviteDisplayCount = displayCount
	}
	refreshService := service.NewRefreshService(store, settingService, nil)
	if err := refreshService.UpdateAllSetting(ctx, setting); err != nil {
		fmt.Println("Failed to update setting:", err)
		return
	}
	fmt.Println("Setting updated")
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	if len(os.Args) < 2 {
		runWebServer(cfg)
		return
	}

	var showVersion bool
	flag.BoolVar(&showVersion, "v", false, "show version")

	runCmd := flag.NewFlagSet("run", flag.ExitOnError)
	resetCmd := flag.NewFlagSet("reset", flag.ExitOnError)
	refreshCmd := flag.NewFlagSet("refresh", flag.ExitOnError)

	settingCmd := flag.NewFlagSet("setting", flag.ExitOnError)
	var show bool
	var inviteCode string
	var invitePrice float64
	var displayCount int
	settingCmd.BoolVar(&show, "show", false, "Display current settings")
	settingCmd.StringVar(&inviteCode, "inviteCode", "", "Set invite code")
	settingCmd.Float64Var(&invitePrice, "price", 0, "Set price per invite")
	settingCmd.IntVar(&displayCount, "displayCount", 0, "Set number of invites shown on the page")

	oldUsage := flag.Usage
	flag.Usage = func() {
		oldUsage()
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("    run            run web server (default)")
		fmt.Println("    reset          drop all data and restore the defaults")
		fmt.Println("    refresh        generate one batch of invites")
		fmt.Println("    setting        show or change settings")
	}

	flag.Parse()
	if showVersion {
		fmt.Println(config.GetVersion())
		return
	}

	switch os.Args[1] {
	case "run":
		if err := runCmd.Parse(os.Args[2:]); err != nil {
			fmt.Println(err)
			return
		}
		runWebServer(cfg)
	case "reset":
		if err := resetCmd.Parse(os.Args[2:]); err != nil {
			fmt.Println(err)
			return
		}
		resetData(cfg)
	case "refresh":
		if err := refreshCmd.Parse(os.Args[2:]); err != nil {
			fmt.Println(err)
			return
		}
		refreshOnce(cfg)
	case "setting":
		if err := settingCmd.Parse(os.Args[2:]); err != nil {
			fmt.Println(err)
			return
		}
		if inviteCode != "" || invitePrice > 0 || displayCount > 0 {
			updateSetting(cfg, inviteCode, invitePrice, displayCount)
		}
		if show {
			showSetting(cfg)
		}
	default:
		fmt.Println("Invalid subcommands")
		fmt.Println()
		runCmd.Usage()
		fmt.Println()
		settingCmd.Usage()
	}
}
