package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clipsynq/config"
	"clipsynq/cron"
	"clipsynq/database"
	"clipsynq/handlers"
	"clipsynq/localstore"
	"clipsynq/routes"
	"clipsynq/services/board"
	"clipsynq/services/device"
	"clipsynq/services/events"
	"clipsynq/services/folder"
	"clipsynq/services/identity"
	"clipsynq/services/message"
	"clipsynq/services/notification"
	"clipsynq/services/pairing"
	"clipsynq/services/session"
	"clipsynq/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	utils.InitializeLogger()
	logger := utils.GetLogger()

	rootCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	// Local marker store (device id, session markers).
	markers, err := localstore.OpenBolt(config.AppConfig.StatePath)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to open local state: %v", err)
	}
	defer markers.Close()

	// Firebase realtime database and identity provider.
	db, err := database.NewFirebaseClient(rootCtx)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize firebase: %v", err)
	}
	auth, err := identity.NewFirebaseProvider(rootCtx)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize identity provider: %v", err)
	}

	bus := events.NewBus()

	// services.
	sessionService := session.NewDefaultSessionService(auth, markers, bus, logger)
	registry := device.NewDefaultRegistry(db, sessionService, markers, logger)
	watcher := device.NewForceLogoutWatcher(db, auth, sessionService, markers, bus, logger)
	initiator := pairing.NewInitiator(db, bus, logger)
	messageService := message.NewDefaultMessageService(db, sessionService, markers, logger)
	folderService := folder.NewDefaultFolderService(db, sessionService, logger)
	boardService := board.NewDefaultBoardService(db, sessionService, logger)
	notificationService := notification.NewDefaultNotificationService(db, sessionService, logger)
	scanner := pairing.NewScanner(db, registry, sessionService, markers, bus, logger)
	scanner.Notify = notificationService

	// A QR-linked session survives restarts through the marker store: pick it
	// back up, refresh presence, and re-arm the watcher.
	if sessionService.UserID() != "" {
		sessionService.PromoteQRSession()
		if err := registry.RegisterCurrentDevice(rootCtx); err != nil {
			logger.Sugar().Warnf("main: failed to re-register device: %v", err)
		}
		if err := watcher.Start(rootCtx); err != nil {
			logger.Sugar().Warnf("main: failed to start force-logout watcher: %v", err)
		}
	}

	// handlers.
	authHandler := handlers.NewAuthHandler(rootCtx, auth, sessionService, registry, watcher, markers, db)
	deviceHandler := handlers.NewDeviceHandler(registry, markers)
	pairingHandler := handlers.NewPairingHandler(rootCtx, initiator, scanner, sessionService)
	messageHandler := handlers.NewMessageHandler(messageService)
	folderHandler := handlers.NewFolderHandler(folderService, sessionService)
	boardHandler := handlers.NewBoardHandler(boardService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	eventsHandler := handlers.NewEventsHandler(bus)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		Session: sessionService,

		LoginHandler:   authHandler.LoginHandler,
		SignupHandler:  authHandler.SignupHandler,
		LogoutHandler:  authHandler.LogoutHandler,
		SessionHandler: authHandler.SessionHandler,

		ListDevicesHandler:  deviceHandler.ListDevicesHandler,
		RenameDeviceHandler: deviceHandler.RenameDeviceHandler,
		ForceLogoutHandler:  deviceHandler.ForceLogoutHandler,
		RemoveDeviceHandler: deviceHandler.RemoveDeviceHandler,
		HeartbeatHandler:    deviceHandler.HeartbeatHandler,

		InitiatePairingHandler: pairingHandler.InitiateHandler,
		PairingStatusHandler:   pairingHandler.StatusHandler,
		PairingImageHandler:    pairingHandler.ImageHandler,
		ApprovePairingHandler:  pairingHandler.ApproveHandler,
		DenyPairingHandler:     pairingHandler.DenyHandler,
		CancelPairingHandler:   pairingHandler.CancelHandler,
		ScanHandler:            pairingHandler.ScanHandler,

		SendMessageHandler:   messageHandler.SendMessageHandler,
		ListMessagesHandler:  messageHandler.ListMessagesHandler,
		EditMessageHandler:   messageHandler.EditMessageHandler,
		DeleteMessageHandler: messageHandler.DeleteMessageHandler,
		PinMessageHandler:    messageHandler.PinMessageHandler,
		StarMessageHandler:   messageHandler.StarMessageHandler,
		MoveMessageHandler:   messageHandler.MoveMessageHandler,
		ClearFolderHandler:   messageHandler.ClearFolderHandler,

		CreateFolderHandler: folderHandler.CreateFolderHandler,
		ListFoldersHandler:  folderHandler.ListFoldersHandler,
		RenameFolderHandler: folderHandler.RenameFolderHandler,
		DeleteFolderHandler: folderHandler.DeleteFolderHandler,
		SelectFolderHandler: folderHandler.SelectFolderHandler,

		BoardPostHandler:       boardHandler.PostHandler,
		BoardListHandler:       boardHandler.ListHandler,
		BoardToggleLikeHandler: boardHandler.ToggleLikeHandler,
		BoardReplyHandler:      boardHandler.ReplyHandler,
		BoardDeleteHandler:     boardHandler.DeletePostHandler,

		ListNotificationsHandler:  notificationHandler.ListNotificationsHandler,
		MarkNotificationHandler:   notificationHandler.MarkReadHandler,
		DeleteNotificationHandler: notificationHandler.DeleteNotificationHandler,

		EventStreamHandler: eventsHandler.StreamHandler,
	}

	// Create the Gin router.
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())

	routes.RegisterRoutes(router, handlerBundle)

	// Background tickers.
	go cron.StartPresenceCron(rootCtx, registry, logger)
	go cron.StartSessionSweep(rootCtx, db, logger)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8787"
	}
	srv := &http.Server{
		Addr:    "127.0.0.1:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting agent on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: agent is shutting down...")

	watcher.Stop()
	initiator.Cancel()
	stopBackground()

	// Mark this device offline before the process exits.
	offCtx, offCancel := context.WithTimeout(context.Background(), 3*time.Second)
	if err := registry.UpdateStatus(offCtx, false); err != nil {
		logger.Sugar().Warnf("main: failed to mark device offline: %v", err)
	}
	offCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: agent stopped gracefully")
}
