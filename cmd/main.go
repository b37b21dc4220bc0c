package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"marketplace-escrow/internal/auth"
	"marketplace-escrow/internal/blockchain"
	"marketplace-escrow/internal/config"
	"marketplace-escrow/internal/database"
	"marketplace-escrow/internal/handlers"
	"marketplace-escrow/internal/jobs"
	"marketplace-escrow/internal/models"
	"marketplace-escrow/internal/repository"
	"marketplace-escrow/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize JWT
	auth.InitJWT(cfg.App.JWTSecret)

	// Connect to database
	if err := database.Connect(cfg.GetDSN()); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize repository
	repo := repository.NewRepository(database.GetDB())

	// Seed the marketplace config row on first boot
	bootCtx := context.Background()
	if _, err := repo.SeedConfig(bootCtx, &models.MarketplaceConfig{
		AdminWallet:    cfg.Market.AdminWallet,
		TreasuryWallet: cfg.Market.TreasuryWallet,
		PlatformFeeBps: cfg.Market.PlatformFeeBps,
		DisputeFeeBps:  cfg.Market.DisputeFeeBps,
		MaxFeeBps:      cfg.Market.MaxFeeBps,
	}); err != nil {
		log.Fatalf("Failed to seed marketplace config: %v", err)
	}

	// Initialize Solana client and escrow program wrapper
	solanaClient := blockchain.NewSolanaClient(
		cfg.Solana.Network,
		cfg.Solana.ServerWalletPrivateKey,
	)

	escrowProgram, err := blockchain.NewEscrowProgram(solanaClient, cfg.Solana.EscrowProgramID)
	if err != nil {
		log.Fatalf("Failed to initialize escrow program: %v", err)
	}

	params := services.Params{
		MinBidFloor:     cfg.Market.MinBidFloor,
		AntiSnipeWindow: cfg.Market.AntiSnipeWindow,
		AntiSnipeExtend: cfg.Market.AntiSnipeExtend,
		TransferPeriod:  cfg.Market.TransferPeriod,
		Timelock:        cfg.Market.Timelock,
	}

	// Initialize services
	authService := services.NewAuthService(database.GetDB())
	listingService := services.NewListingService(repo, escrowProgram, params)
	escrowService := services.NewEscrowService(repo, escrowProgram)
	txService := services.NewTransactionService(repo, escrowProgram)
	disputeService := services.NewDisputeService(repo, escrowProgram)
	adminService := services.NewAdminService(repo, params)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	listingHandler := handlers.NewListingHandler(listingService, escrowService, authService)
	txHandler := handlers.NewTransactionHandler(txService, authService)
	disputeHandler := handlers.NewDisputeHandler(disputeService, authService)
	adminHandler := handlers.NewAdminHandler(adminService)
	eventHandler := handlers.NewEventHandler(listingService)

	// Background jobs
	deadlineWatcher := jobs.NewDeadlineWatcher(txService, 1*time.Minute)
	go deadlineWatcher.Start()

	listingReaper := jobs.NewListingReaper(listingService, 5*time.Minute)
	go listingReaper.Start()

	// Set up Gin router
	router := gin.Default()

	// CORS middleware
	allowedOrigins := []string{
		"http://localhost:3000",
		"http://localhost:5173",
		"http://127.0.0.1:3000",
		"http://127.0.0.1:5173",
	}
	if frontendURL := os.Getenv("FRONTEND_URL"); frontendURL != "" {
		allowedOrigins = append(allowedOrigins, frontendURL)
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Authentication routes (public)
	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/wallet", authHandler.WalletLogin)
		authRoutes.POST("/logout", authHandler.Logout)
	}

	// Authenticated /auth/me route
	authProtected := router.Group("/auth")
	authProtected.Use(auth.AuthMiddleware())
	{
		authProtected.GET("/me", authHandler.GetMe)
	}

	// Public marketplace routes
	router.GET("/api/listings", listingHandler.GetActiveListings)
	router.GET("/api/listings/:id", listingHandler.GetListing)
	router.GET("/api/events", eventHandler.GetEvents)
	router.GET("/api/config", adminHandler.GetConfig)

	// API routes (protected)
	api := router.Group("/api")
	api.Use(auth.AuthMiddleware())
	{
		// Listing endpoints
		api.POST("/listings", listingHandler.CreateListing)
		api.GET("/listings/mine", listingHandler.GetMyListings)
		api.POST("/listings/:id/bids", listingHandler.PlaceBid)
		api.POST("/listings/:id/buy-now", listingHandler.BuyNow)
		api.POST("/listings/:id/settle", listingHandler.SettleAuction)
		api.POST("/listings/:id/cancel", listingHandler.CancelListing)

		// Withdrawal endpoints
		api.GET("/withdrawals", listingHandler.GetPendingWithdrawals)
		api.POST("/withdrawals/claim", listingHandler.WithdrawFunds)

		// Transaction endpoints
		api.GET("/transactions", txHandler.GetMyTransactions)
		api.GET("/transactions/:id", txHandler.GetTransaction)
		api.POST("/transactions/:id/confirm-transfer", txHandler.ConfirmTransfer)
		api.POST("/transactions/:id/confirm-receipt", txHandler.ConfirmReceipt)
		api.POST("/transactions/:id/finalize", txHandler.Finalize)
		api.POST("/transactions/:id/emergency-refund", txHandler.EmergencyRefund)
		api.POST("/transactions/:id/dispute", disputeHandler.OpenDispute)

		// Dispute endpoints
		api.GET("/disputes", disputeHandler.GetOpenDisputes)
		api.GET("/disputes/:id", disputeHandler.GetDispute)
	}

	// Admin routes (protected; authorization checked against the config row)
	admin := router.Group("/api/admin")
	admin.Use(auth.AuthMiddleware())
	{
		admin.GET("/config", adminHandler.GetConfig)
		admin.POST("/propose-admin", adminHandler.ProposeAdminChange)
		admin.POST("/execute-admin", adminHandler.ExecuteAdminChange)
		admin.POST("/propose-treasury", adminHandler.ProposeTreasuryChange)
		admin.POST("/execute-treasury", adminHandler.ExecuteTreasuryChange)
		admin.POST("/pause", adminHandler.SetPaused)
		admin.POST("/platform-fee", adminHandler.SetPlatformFee)
		admin.POST("/dispute-fee", adminHandler.SetDisputeFee)
		admin.POST("/disputes/:id/resolve", disputeHandler.ResolveDispute)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		log.Printf("Health check: http://localhost:%s/health", cfg.Server.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	deadlineWatcher.Stop()
	listingReaper.Stop()

	// Graceful shutdown with 5 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
