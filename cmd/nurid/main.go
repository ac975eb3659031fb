// Command nurid is the nurichat daemon. It loads configuration, initializes
// logging, binds the chat listener and serves until a termination signal,
// at which point it force-closes every session and exits.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/nurichat/nurichat/internal/chat"
	"github.com/nurichat/nurichat/internal/config"
	"github.com/nurichat/nurichat/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log := logging.New(logging.Config{})
		log.Errorf("[nurid] Failed to load config: %v", err)
		os.Exit(1)
	}

	log := logging.New(cfg.Logging)
	log.Infof("[nurid] Configuration loaded successfully")

	server := chat.NewServer(chat.Options{
		Address:          cfg.Listen.Address,
		Dialect:          cfg.Dialect,
		WriteTimeout:     cfg.Timeouts.Write,
		HandshakeTimeout: cfg.Timeouts.Handshake,
		Log:              log,
	})

	errc := make(chan error, 1)
	go func() {
		errc <- server.ListenAndServe()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errc:
		// Listener setup failure is the only fatal error class.
		log.Errorf("[nurid] %v", err)
		os.Exit(1)
	case <-sigChan:
		log.Infof("[nurid] Termination signal received. Closing sessions...")
		server.Shutdown()
		log.Infof("[nurid] Shutdown complete. Exiting.")
	}
}
