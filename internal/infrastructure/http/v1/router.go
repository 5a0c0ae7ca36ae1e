package v1

import (
	"github.com/gin-gonic/gin"

	"pharmaledger/internal/core/security"
	"pharmaledger/internal/domain"
	"pharmaledger/internal/domain/auth"
	"pharmaledger/internal/domain/catalogs/company"
	"pharmaledger/internal/domain/catalogs/hospital"
	"pharmaledger/internal/domain/catalogs/medicine"
	"pharmaledger/internal/domain/catalogs/pharmacy"
	"pharmaledger/internal/domain/catalogs/product"
	"pharmaledger/internal/domain/documents/receipt"
	"pharmaledger/internal/domain/documents/transaction"
	"pharmaledger/internal/domain/messaging"
	"pharmaledger/internal/domain/notes"
	"pharmaledger/internal/domain/notification"
	"pharmaledger/internal/domain/registers/companydebt"
	"pharmaledger/internal/domain/registers/debt"
	"pharmaledger/internal/domain/registers/stock"
	"pharmaledger/internal/domain/reports"
	"pharmaledger/internal/infrastructure/http/v1/handlers"
	"pharmaledger/internal/infrastructure/http/v1/middleware"
	"pharmaledger/internal/infrastructure/metrics"
	"pharmaledger/internal/infrastructure/storage/postgres"
	"pharmaledger/internal/infrastructure/storage/postgres/catalog_repo"
	"pharmaledger/internal/infrastructure/storage/postgres/document_repo"
	"pharmaledger/internal/infrastructure/storage/postgres/messaging_repo"
	"pharmaledger/internal/infrastructure/storage/postgres/register_repo"
	"pharmaledger/internal/infrastructure/storage/postgres/report_repo"
	"pharmaledger/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// TxManager owns the database pool; every repository is built on it
	TxManager *postgres.TxManager

	// Health serves the probe endpoints
	Health *handlers.HealthHandler

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// AuthService for authentication and user endpoints
	AuthService *auth.Service

	// Authorizer maps roles to capabilities
	Authorizer security.Authorizer

	// Events receives ledger domain events (the transactional outbox)
	Events domain.EventPublisher

	// Notifications publishes to user channels; nil disables live delivery
	Notifications notification.Publisher

	// Metrics is optional; when set, requests and ledger operations are
	// recorded and /metrics is served
	Metrics *metrics.Metrics

	// DeviceIDs is the SMS gateway allow-list
	DeviceIDs []string

	// RateLimitPerMinute caps requests per caller; 0 disables it
	RateLimitPerMinute int

	// Production enables HTTPS redirects
	Production bool
}

// services are shared between route groups.
type services struct {
	products      *product.Service
	pharmacies    *pharmacy.Service
	medicines     *medicine.Service
	companies     *company.Service
	hospitals     *hospital.Service
	doctors       *hospital.DoctorService
	notes         *notes.Service
	stock         *stock.Service
	debts         *debt.Service
	companyDebts  *companydebt.Service
	receipts      *receipt.Service
	transactions  *transaction.Service
	reports       *reports.Service
	messages      *messaging.Service
	notifications *notification.Service
}

func newServices(cfg RouterConfig) *services {
	txm := cfg.TxManager

	var recorder domain.OperationRecorder = domain.NopRecorder{}
	if cfg.Metrics != nil {
		recorder = cfg.Metrics
	}

	productRepo := catalog_repo.NewProductRepo(txm)
	pharmacyRepo := catalog_repo.NewPharmacyRepo(txm)
	paymentRepo := catalog_repo.NewPaymentRepo(txm)
	medicineRepo := catalog_repo.NewMedicineRepo(txm)
	companyRepo := catalog_repo.NewCompanyRepo(txm)

	hospitals := hospital.NewService(catalog_repo.NewHospitalRepo(txm), txm)

	return &services{
		products:   product.NewService(productRepo, txm),
		pharmacies: pharmacy.NewService(pharmacyRepo, txm),
		medicines:  medicine.NewService(medicineRepo, txm),
		companies:  company.NewService(companyRepo, txm),
		hospitals:  hospitals,
		doctors:    hospital.NewDoctorService(catalog_repo.NewDoctorRepo(txm), hospitals, txm),
		notes:      notes.NewService(catalog_repo.NewNoteRepo(txm), txm),
		stock:      stock.NewService(productRepo, txm, recorder),
		debts: debt.NewService(debt.Deps{
			Products:   productRepo,
			Pharmacies: pharmacyRepo,
			Payments:   paymentRepo,
			Records:    register_repo.NewDebtRecordRepo(txm),
			TxManager:  txm,
			Events:     cfg.Events,
			Recorder:   recorder,
		}),
		companyDebts: companydebt.NewService(companyRepo, productRepo, txm, cfg.Events, recorder),
		receipts: receipt.NewService(receipt.Deps{
			Receipts:   document_repo.NewReceiptRepo(txm),
			Pharmacies: pharmacyRepo,
			Payments:   paymentRepo,
			TxManager:  txm,
			Events:     cfg.Events,
			Recorder:   recorder,
		}),
		transactions:  transaction.NewService(document_repo.NewTransactionRepo(txm), medicineRepo, pharmacyRepo, txm, recorder),
		reports:       reports.NewService(report_repo.NewReportRepo(txm), pharmacyRepo, medicineRepo, paymentRepo),
		messages:      messaging.NewService(messaging_repo.NewMessageRepo(txm), txm),
		notifications: notification.NewService(messaging_repo.NewNotificationRepo(txm), cfg.Notifications),
	}
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Production {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Authorizer == nil {
		cfg.Authorizer = security.NewRoleAuthorizer()
	}

	router := gin.New()

	// Global middleware (order matters!). ErrorHandler wraps Recovery so a
	// recovered panic is still rendered as JSON, and metrics see the final status.
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	if cfg.Metrics != nil {
		router.Use(cfg.Metrics.Middleware())
	}
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.Recovery())
	router.Use(middleware.SecureHeaders(cfg.Production))

	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	if cfg.Health != nil {
		health := router.Group("/health")
		{
			health.GET("/live", cfg.Health.Live)
			health.GET("/ready", cfg.Health.Ready)
			health.GET("/info", cfg.Health.Info)
		}
	}

	svc := newServices(cfg)

	v1 := router.Group("/api/v1")
	{
		public := v1.Group("")
		public.Use(middleware.RateLimit(cfg.RateLimitPerMinute))

		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))
		protected.Use(middleware.RateLimit(cfg.RateLimitPerMinute))
		protected.Use(middleware.RequireCapability(cfg.Authorizer, security.CapLedger))

		registerAuthRoutes(public, protected, cfg)
		registerCatalogRoutes(protected, svc, cfg)
		registerLedgerRoutes(protected, svc)
		registerDocumentRoutes(protected, svc)
		registerReportRoutes(protected, svc)
		registerMessagingRoutes(protected, svc)
		registerDeviceRoutes(v1, svc, cfg)
	}

	return router
}

// registerAuthRoutes registers authentication and user endpoints.
func registerAuthRoutes(public, protected *gin.RouterGroup, cfg RouterConfig) {
	if cfg.AuthService == nil {
		return
	}

	authHandler := handlers.NewAuthHandler(handlers.NewBaseHandler(), cfg.AuthService, cfg.Authorizer)
	authHandler.RegisterRoutes(public, protected)
}

// registerCatalogRoutes registers owner-scoped catalogs and the shared
// company catalog.
func registerCatalogRoutes(rg *gin.RouterGroup, svc *services, cfg RouterConfig) {
	base := handlers.NewBaseHandler()

	RegisterCatalogRoutes(rg.Group("/products"), handlers.NewProductHandler(base, svc.products))
	RegisterCatalogRoutes(rg.Group("/pharmacies"), handlers.NewPharmacyHandler(base, svc.pharmacies))
	RegisterCatalogRoutes(rg.Group("/hospitals"), handlers.NewHospitalHandler(base, svc.hospitals))

	// Companies are shared between owners, so archiving one is a superadmin action.
	RegisterCatalogRoutes(rg.Group("/companies"), handlers.NewCompanyHandler(base, svc.companies),
		middleware.RequireCapability(cfg.Authorizer, security.CapArchiveCompanies))

	medicines := handlers.NewMedicineHandler(base, svc.medicines)
	medicineGroup := rg.Group("/medicines")
	RegisterCatalogRoutes(medicineGroup, medicines)
	medicineGroup.GET("/:id/valuation", medicines.Valuation)

	doctors := handlers.NewDoctorHandler(base, svc.doctors)
	RegisterCatalogRoutes(rg.Group("/doctors"), doctors)
	rg.GET("/hospitals/:id/doctors", doctors.ListByHospital)

	RegisterCatalogRoutes(rg.Group("/notes"), handlers.NewNoteHandler(base, svc.notes))
}

// registerLedgerRoutes registers stock movements and debt payments.
func registerLedgerRoutes(rg *gin.RouterGroup, svc *services) {
	h := handlers.NewLedgerHandler(handlers.NewBaseHandler(), svc.stock, svc.debts, svc.companyDebts)

	rg.POST("/products/:id/stock/add", h.AddStock)
	rg.POST("/products/:id/stock/remove", h.RemoveStock)
	rg.POST("/products/:id/pay-debt", h.PayProductDebt)

	rg.POST("/pharmacies/:id/pay-debt", h.PayPharmacyDebt)
	rg.GET("/pharmacies/:id/payments", h.ListPharmacyPayments)

	debts := rg.Group("/debts")
	{
		debts.GET("", h.ListDebtRecords)
		debts.POST("", h.CreateDebtRecord)
		debts.POST("/:id/pay", h.PayDebtRecord)
	}

	companyDebts := rg.Group("/company-debts")
	{
		companyDebts.GET("", h.ListCompanyDebts)
		companyDebts.GET("/summary", h.CompanyDebtSummary)
		companyDebts.POST("/:id/pay", h.PayCompanyDebt)
	}
}

// registerDocumentRoutes registers receipts and transactions.
func registerDocumentRoutes(rg *gin.RouterGroup, svc *services) {
	base := handlers.NewBaseHandler()

	receipts := handlers.NewReceiptHandler(base, svc.receipts)
	receiptGroup := rg.Group("/receipts")
	{
		receiptGroup.GET("", receipts.List)
		receiptGroup.POST("", receipts.Create)
		receiptGroup.POST("/sell", receipts.Sell)
		receiptGroup.GET("/:id", receipts.Get)
		receiptGroup.DELETE("/:id", receipts.Delete)
	}

	transactions := handlers.NewTransactionHandler(base, svc.transactions)
	transactionGroup := rg.Group("/transactions")
	{
		transactionGroup.GET("", transactions.List)
		transactionGroup.POST("", transactions.Create)
		transactionGroup.POST("/bulk", transactions.BulkCreate)
		transactionGroup.GET("/summary", transactions.Summary)
		transactionGroup.GET("/:id", transactions.Get)
		transactionGroup.DELETE("/:id", transactions.Archive)
		transactionGroup.POST("/:id/restore", transactions.Restore)
	}
}

// registerReportRoutes registers report endpoints.
func registerReportRoutes(rg *gin.RouterGroup, svc *services) {
	h := handlers.NewReportsHandler(handlers.NewBaseHandler(), svc.reports)

	reportsGroup := rg.Group("/reports")
	reportsGroup.GET("/pharmacies/:id/statistics", h.PharmacyStatistics)
	reportsGroup.GET("/pharmacies/:id/remaining", h.PharmacyRemaining)
	reportsGroup.GET("/pharmacies/:id/overview", h.PharmacyOverview)
	reportsGroup.GET("/medicine-balance", h.MedicineBalance)
}

// registerMessagingRoutes registers scheduled messages and notifications.
func registerMessagingRoutes(rg *gin.RouterGroup, svc *services) {
	base := handlers.NewBaseHandler()

	messages := handlers.NewMessageHandler(base, svc.messages)
	messageGroup := rg.Group("/messages")
	{
		messageGroup.GET("", messages.List)
		messageGroup.POST("", messages.Create)
		messageGroup.GET("/:id", messages.Get)
		messageGroup.PUT("/:id", messages.Update)
		messageGroup.DELETE("/:id", messages.Delete)
	}

	notifications := handlers.NewNotificationHandler(base, svc.notifications)
	notificationGroup := rg.Group("/notifications")
	{
		notificationGroup.GET("", notifications.List)
		notificationGroup.POST("", notifications.Create)
		notificationGroup.POST("/:id/read", notifications.MarkRead)
		notificationGroup.DELETE("/:id", notifications.Delete)
	}
}

// registerDeviceRoutes registers the SMS gateway endpoints. Devices
// authenticate with the Device-ID header instead of a JWT.
func registerDeviceRoutes(rg *gin.RouterGroup, svc *services, cfg RouterConfig) {
	messages := handlers.NewMessageHandler(handlers.NewBaseHandler(), svc.messages)

	device := rg.Group("/device")
	device.Use(middleware.DeviceAuth(cfg.DeviceIDs))
	device.Use(middleware.RateLimit(cfg.RateLimitPerMinute))
	{
		device.GET("/messages", messages.DeviceList)
		device.PATCH("/messages/:id", messages.DeviceMarkStatus)
	}
}
