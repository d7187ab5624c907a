package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/berfenger/smappee2mqtt/internal/config"
	"github.com/berfenger/smappee2mqtt/internal/core/domain"

	"github.com/asynkron/protoactor-go/actor"
	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"
)

type Server struct {
	port        uint
	httpLog     bool
	rootContext *actor.RootContext
	masterActor *actor.PID
	hub         *Hub
	logger      *zap.Logger
}

func NewServer(cfg config.Config, rootContext *actor.RootContext, masterActor *actor.PID, logger *zap.Logger) *http.Server {
	NewServer := &Server{
		port:        cfg.Port,
		rootContext: rootContext,
		masterActor: masterActor,
		httpLog:     cfg.HttpLog,
		hub:         NewHub(logger),
		logger:      logger,
	}

	// Declare Server config
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", NewServer.port),
		Handler:      NewServer.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	stop := NewServer.startHub()
	server.RegisterOnShutdown(stop)

	return server
}

// startHub feeds quantity updates from the actor system event stream to
// websocket clients until the returned func is called.
func (s *Server) startHub() func() {
	ctx, cancel := context.WithCancel(context.Background())
	go s.hub.Run(ctx)

	eventStream := s.rootContext.ActorSystem().EventStream
	sub := eventStream.Subscribe(func(evt interface{}) {
		if update, ok := evt.(domain.QuantityUpdate); ok {
			s.hub.Broadcast(update)
		}
	})

	return func() {
		eventStream.Unsubscribe(sub)
		cancel()
	}
}
