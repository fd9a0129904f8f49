// Command parentime-notifier delivers due reminder notifications to
// Telegram and, when enabled, a daily digest of overdue reminders.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/notexe/parentime/internal/config"
	"github.com/notexe/parentime/internal/digest"
	"github.com/notexe/parentime/internal/notify"
	"github.com/notexe/parentime/internal/tracker"
)

func main() {
	configPath := flag.String("config", config.GetDefaultConfigPath(), "Path to configuration file")
	once := flag.Bool("once", false, "Deliver due notifications once and exit")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	if !cfg.TelegramConfigured() {
		fmt.Fprintf(os.Stderr, "Telegram is not configured\n")
		fmt.Fprintf(os.Stderr, "Tip: Set TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID environment variables\n")
		os.Exit(1)
	}

	t, err := tracker.Open(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer t.Close()

	sender := notify.NewTelegramSender(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	dispatcher := notify.NewDispatcher(t.Outbox(), sender, cfg.DispatchInterval())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *once {
		n := dispatcher.Tick(ctx)
		log.Printf("[notifier] Delivered %d notification(s)", n)
		return
	}

	var wg sync.WaitGroup
	if cfg.Dispatcher.DigestEnabled {
		d := digest.New(t, sender, cfg.Dispatcher.DigestTime)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := d.Run(ctx); err != nil {
				log.Printf("[notifier] Digest stopped: %v", err)
			}
		}()
	}

	if err := dispatcher.Run(ctx); err != nil {
		log.Printf("[notifier] Dispatcher stopped: %v", err)
		stop()
		wg.Wait()
		os.Exit(1)
	}
	wg.Wait()
}
