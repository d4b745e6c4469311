package main

import (
	_ "backend/api/swagger" // swagger docs
	"backend/internal/client"
	"backend/internal/database"
	"backend/internal/handler"
	"backend/internal/middleware"
	"backend/internal/notifier"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/internal/storage"
	"backend/internal/websocket"
	"context"
	"log"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Fleet Maintenance API
// @version         1.0
// @description     Multi-tenant fleet and vehicle maintenance management: interventions, quotes, work authorizations, invoices, price analysis and cached reports.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSslMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "postgres"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Permission middleware needs a DB handle for role lookups
	middleware.InitPermissionMiddleware(db)

	// Optional integrations: nil when not configured
	tracking := client.NewTrackingClientFromEnv()
	mailer := notifier.NewSMTPMailerFromEnv()

	storageRoot := os.Getenv("STORAGE_ROOT")
	if storageRoot == "" {
		storageRoot = "data/attachments"
	}
	store, err := storage.NewLocalStore(storageRoot)
	if err != nil {
		log.Fatalf("Failed to initialize attachment storage: %v", err)
	}

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	tenantRepo := repository.NewTenantRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	vehicleRepo := repository.NewVehicleRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	interventionRepo := repository.NewInterventionRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	authRepo := repository.NewWorkAuthorizationRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	priceRepo := repository.NewPriceHistoryRepository(db)
	paramRepo := repository.NewParameterRepository(db)
	codeFormatRepo := repository.NewCodeFormatRepository(db)
	reportRepo := repository.NewReportRepository(db)
	alertRepo := repository.NewAlertRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	userService := service.NewUserService(userRepo)
	tenantService := service.NewTenantService(tenantRepo, userRepo, txManager)
	roleService := service.NewRoleService(roleRepo, txManager)
	auditService := service.NewAuditService(auditRepo)
	paramService := service.NewParameterService(paramRepo)
	codeService := service.NewCodeService(codeFormatRepo)
	alertService := service.NewAlertService(alertRepo, tenantRepo, wsHub, mailerOrNil(mailer))
	priceService := service.NewPriceService(priceRepo, paramService, alertService, auditRepo)
	vehicleService := service.NewVehicleService(vehicleRepo, auditRepo, tracking)
	supplierService := service.NewSupplierService(supplierRepo)
	interventionService := service.NewInterventionService(interventionRepo, vehicleRepo, auditRepo, codeService, alertService, txManager)
	quoteService := service.NewQuoteService(quoteRepo, interventionRepo, auditRepo, codeService, priceService, txManager)
	authorizationService := service.NewAuthorizationService(authRepo, quoteRepo, invoiceRepo, interventionRepo, auditRepo, codeService, alertService, priceService, txManager)
	invoiceService := service.NewInvoiceService(invoiceRepo, auditRepo, alertService, txManager)
	reportService := service.NewReportService(db, reportRepo, interventionRepo, invoiceRepo, vehicleRepo, priceRepo, alertRepo)
	attachmentService := service.NewAttachmentService(attachmentRepo, store)

	// Seed default roles and permissions
	if err := roleService.SeedDefaultRolesAndPermissions(context.Background()); err != nil {
		log.Printf("WARNING: failed to seed roles and permissions: %v", err)
	}

	// Initialize Handlers
	userHandler := handler.NewUserHandler(userService)
	tenantHandler := handler.NewTenantHandler(tenantService)
	roleHandler := handler.NewRoleHandler(roleService)
	auditHandler := handler.NewAuditHandler(auditService)
	vehicleHandler := handler.NewVehicleHandler(vehicleService)
	supplierHandler := handler.NewSupplierHandler(supplierService)
	interventionHandler := handler.NewInterventionHandler(interventionService)
	quoteHandler := handler.NewQuoteHandler(quoteService)
	authorizationHandler := handler.NewAuthorizationHandler(authorizationService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService)
	priceHandler := handler.NewPriceHandler(priceService)
	reportHandler := handler.NewReportHandler(reportService)
	alertHandler := handler.NewAlertHandler(alertService)
	parameterHandler := handler.NewParameterHandler(paramService, codeService)
	attachmentHandler := handler.NewAttachmentHandler(attachmentService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	api := router.Group("/api")
	userHandler.RegisterRoutes(api)
	tenantHandler.RegisterRoutes(api)
	roleHandler.RegisterRoutes(api)
	auditHandler.RegisterRoutes(api)
	vehicleHandler.RegisterRoutes(api)
	supplierHandler.RegisterRoutes(api)
	interventionHandler.RegisterRoutes(api)
	quoteHandler.RegisterRoutes(api)
	authorizationHandler.RegisterRoutes(api)
	invoiceHandler.RegisterRoutes(api)
	priceHandler.RegisterRoutes(api)
	reportHandler.RegisterRoutes(api)
	alertHandler.RegisterRoutes(api)
	parameterHandler.RegisterRoutes(api)
	attachmentHandler.RegisterRoutes(api)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// mailerOrNil keeps the AlertService mailer a true nil interface when SMTP is
// not configured, instead of a non-nil interface wrapping a nil pointer.
func mailerOrNil(m *notifier.SMTPMailer) notifier.Mailer {
	if m == nil {
		return nil
	}
	return m
}
