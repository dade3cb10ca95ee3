package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bz888/cafeteira/internal/api/server/client"
	"github.com/bz888/cafeteira/internal/api/server/device"
	"github.com/bz888/cafeteira/internal/api/server/handlers"
	"github.com/bz888/cafeteira/internal/config"
	"github.com/bz888/cafeteira/internal/logger"
)

const shutdownTimeout = 10 * time.Second

// Server is the companion backend of the chat widget.
type Server struct {
	cfg         config.ServerConfig
	handler     *handlers.Handler
	device      device.Device
	localLogger *logger.Logger
}

// New connects the assistant and the coffee machine. Without a broker the
// machine is simulated in-process.
func New(cfg config.ServerConfig) (*Server, error) {
	localLogger := logger.NewLogger("Server")

	assistant, err := client.NewDifyClient(cfg.DifyAPIURL, cfg.DifyAPIKey)
	if err != nil {
		return nil, err
	}
	localLogger.Info("Assistant client initialized: ", assistant.GetChatURL())

	var dev device.Device
	if cfg.MQTTBroker != "" {
		dev, err = device.NewMQTT(device.MQTTConfig{
			Broker:       cfg.MQTTBroker,
			ClientID:     cfg.MQTTClientID,
			CommandTopic: cfg.CommandTopic,
			StatusTopic:  cfg.StatusTopic,
		})
		if err != nil {
			return nil, fmt.Errorf("initialize device: %w", err)
		}
	} else {
		localLogger.Warn("MQTT_BROKER not set, using a simulated coffee machine")
		dev = device.NewLocal()
	}

	return newServer(cfg, assistant, dev), nil
}

func newServer(cfg config.ServerConfig, assistant client.AssistantInterface, dev device.Device) *Server {
	return &Server{
		cfg:         cfg,
		handler:     handlers.NewHandler(assistant, dev),
		device:      dev,
		localLogger: logger.NewLogger("Server"),
	}
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	defer s.device.Close()

	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.localLogger.Info("Server started on ", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	s.localLogger.Info("Shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
