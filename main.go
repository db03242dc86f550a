package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"chat-client/internal/chat"
	"chat-client/internal/config"
	"chat-client/internal/handlers"
	"chat-client/internal/identity"
	"chat-client/internal/models"
	"chat-client/internal/observability"
	"chat-client/internal/registry"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "chat client error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	cfg, err := config.Load()
	if err != nil {
		return exitConfig, err
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return exitConfig, fmt.Errorf("parse log level: %w", err)
	}
	logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	userID, err := identity.EnvSource{}.CurrentUser(ctx)
	if err != nil {
		if errors.Is(err, identity.ErrGuest) {
			logger.Info().Msg("guest session, chat unavailable")
			return exitOK, nil
		}
		return exitRuntime, err
	}
	if cfg.SellerID == "" {
		return exitConfig, fmt.Errorf("CHAT_SELLER_ID is required")
	}

	if cfg.AMQPURL != "" {
		publisher, err := observability.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return exitRuntime, fmt.Errorf("connect telemetry broker: %w", err)
		}
		defer publisher.Close()
		observability.SetPublisher(publisher)
	}

	reg := registry.New()
	conn, err := chat.Dial(cfg.ChatServerURL, userID, chat.Options{
		Registry: reg,
		Logger:   logger,
	})
	if err != nil {
		return exitConfig, err
	}

	session := chat.NewSession(conn, models.RoomIdentity{
		UserID:    userID,
		SellerID:  cfg.SellerID,
		ProductID: cfg.ProductID,
	}, chat.SessionOptions{Logger: logger})
	conn.Subscribe(render(session, logger))

	router := gin.New()
	router.Use(gin.Recovery(), observability.HTTPMetricsMiddleware())
	handlers.RegisterRoutes(router, conn)
	go func() {
		if err := router.Run(cfg.StatusAddr); err != nil {
			logger.Error().Err(err).Msg("status server stopped")
		}
	}()

	conn.Connect(ctx)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			// The logout contract: clearing the registry tears the
			// connection down wherever it lives.
			session.Close()
			reg.Clear()
			return exitOK, nil
		case line, ok := <-lines:
			if !ok {
				session.Close()
				reg.Clear()
				return exitOK, nil
			}
			_ = session.SetTyping(true)
			if err := session.Send(line); err != nil {
				switch {
				case errors.Is(err, chat.ErrNotConnected):
					fmt.Println("connection lost, please check your internet")
				case errors.Is(err, chat.ErrEmptyMessage):
					// Ignore blank lines.
				default:
					logger.Warn().Err(err).Msg("send failed")
				}
				continue
			}
			_ = session.SetTyping(false)
		}
	}
}

// render prints incoming traffic and presence changes to the terminal.
func render(session *chat.Session, logger zerolog.Logger) chat.Handler {
	return func(ev chat.Event) {
		switch ev.Kind {
		case chat.EventConnected:
			fmt.Println("-- connected --")
		case chat.EventDisconnected:
			fmt.Printf("-- connection lost (%s), reconnecting --\n", ev.Reason)
		case chat.EventConnectionFailed:
			fmt.Println("-- connection failed, please retry later --")
		case chat.EventHistory:
			for _, m := range ev.History {
				printMessage(m)
			}
		case chat.EventMessage:
			if ev.Message != nil && ev.Message.SenderID == session.Identity().SellerID {
				printMessage(*ev.Message)
			}
		case chat.EventTyping, chat.EventStopTyping, chat.EventUserStatus:
			fmt.Printf("-- %s --\n", session.Presence().Display())
		default:
			logger.Debug().Str("event", ev.Kind.String()).Msg("unhandled event")
		}
	}
}

func printMessage(m models.ChatMessage) {
	fmt.Printf("[%s] %s: %s\n", m.Timestamp.Format("15:04:05"), m.SenderID, m.Message)
}
