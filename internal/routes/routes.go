package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/seatwise/reserver/internal/audit"
	"github.com/seatwise/reserver/internal/config"
	"github.com/seatwise/reserver/internal/event"
	"github.com/seatwise/reserver/internal/handlers"
	infraRepo "github.com/seatwise/reserver/internal/infra/repository"
	"github.com/seatwise/reserver/internal/ledger"
	"github.com/seatwise/reserver/internal/mailer"
	"github.com/seatwise/reserver/internal/middleware"
	"github.com/seatwise/reserver/internal/notify"
	"github.com/seatwise/reserver/internal/settings"
	ucBooking "github.com/seatwise/reserver/internal/usecase/booking"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config) {

	// ======================================================
	// MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(middleware.CORSMiddleware())

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	bookingRepo := infraRepo.NewBookingGormRepository(db)

	auditLogger := audit.New(db)
	auditDispatcher := audit.NewDispatcher(auditLogger)

	bus := event.NewBus()
	ledgerService := ledger.New(bookingRepo, bus)

	var cache *redis.Client
	if cfg.RedisAddr != "" {
		cache = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	}
	settingsService := settings.New(db, cache)

	var mail mailer.Mailer = mailer.LogMailer{}
	if cfg.SMTPAddr != "" {
		mail = mailer.NewSMTP(
			cfg.SMTPAddr,
			cfg.SMTPFrom,
			cfg.SMTPUsername,
			cfg.SMTPPassword,
		)
	}

	notifier := notify.New(bookingRepo, ledgerService, settingsService, mail)
	notifier.Register(bus)

	// ======================================================
	// USE CASES — BOOKINGS
	// ======================================================
	createBookingUC := ucBooking.NewCreateBooking(
		bookingRepo,
		ledgerService,
		bus,
		auditDispatcher,
	)

	confirmBookingUC := ucBooking.NewConfirmBooking(
		bookingRepo,
		bus,
		auditDispatcher,
	)

	cancelBookingUC := ucBooking.NewCancelBooking(
		bookingRepo,
		ledgerService,
		auditDispatcher,
	)

	completeBookingUC := ucBooking.NewCompleteBooking(
		bookingRepo,
		ledgerService,
		auditDispatcher,
	)

	noShowUC := ucBooking.NewMarkNoShow(
		bookingRepo,
		ledgerService,
		auditDispatcher,
	)

	availabilityUC := ucBooking.NewGetAvailability(bookingRepo)
	listBookingsUC := ucBooking.NewListBookings(bookingRepo)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg)

	publicHandler := handlers.NewPublicHandler(
		bookingRepo,
		createBookingUC,
		availabilityUC,
		cancelBookingUC,
	)

	bookingHandler := handlers.NewBookingHandler(
		bookingRepo,
		listBookingsUC,
		confirmBookingUC,
		cancelBookingUC,
		completeBookingUC,
		noShowUC,
	)

	locationHandler := handlers.NewLocationHandler(db)
	tableHandler := handlers.NewTableHandler(db)
	customerHandler := handlers.NewCustomerHandler(db, ledgerService, auditDispatcher)
	settingsHandler := handlers.NewSettingsHandler(settingsService, auditDispatcher)
	auditLogsHandler := handlers.NewAuditLogsHandler(db)

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// PUBLIC API
		// ------------------------------
		publicAPI := api.Group("/public")
		{
			publicAPI.GET("/:slug/availability", publicHandler.Availability)
			publicAPI.POST("/:slug/bookings", publicHandler.CreateBooking)
		}

		// Reference lookups live outside the slug scope: the uuid
		// reference is the only credential a guest holds.
		api.GET("/bookings/:reference", publicHandler.BookingByReference)
		api.POST("/bookings/:reference/cancel", publicHandler.CancelByReference)

		// ------------------------------
		// AUTH
		// ------------------------------
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		// ------------------------------
		// PRIVATE API
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg))
		{
			secured.GET("/me/location", locationHandler.GetMeLocation)
			secured.PATCH("/me/location", locationHandler.UpdateMeLocation)

			// ------------------------------
			// BOOKINGS
			// ------------------------------
			secured.GET("/me/bookings", bookingHandler.List)
			secured.GET("/me/bookings/:id", bookingHandler.Get)
			secured.PATCH("/me/bookings/:id/confirm", bookingHandler.Confirm)
			secured.PATCH("/me/bookings/:id/cancel", bookingHandler.Cancel)
			secured.PATCH("/me/bookings/:id/complete", bookingHandler.Complete)
			secured.PATCH("/me/bookings/:id/no-show", bookingHandler.NoShow)

			// ------------------------------
			// TABLES
			// ------------------------------
			secured.GET("/me/tables", tableHandler.List)
			secured.POST("/me/tables", tableHandler.Create)
			secured.PATCH("/me/tables/:id", tableHandler.Update)
			secured.DELETE("/me/tables/:id", tableHandler.Delete)

			// ------------------------------
			// CUSTOMERS
			// ------------------------------
			secured.GET("/me/customers", customerHandler.List)
			secured.GET("/me/customers/problems", customerHandler.Problems)
			secured.GET("/me/customers/:id", customerHandler.Get)
			secured.PATCH("/me/customers/:id/vip", customerHandler.SetVIP)
			secured.PATCH("/me/customers/:id/blacklist", customerHandler.SetBlacklist)

			// ------------------------------
			// SETTINGS / AUDIT
			// ------------------------------
			secured.GET("/me/settings", settingsHandler.List)
			secured.PUT("/me/settings", settingsHandler.Set)
			secured.GET("/me/audit-logs", auditLogsHandler.List)
		}
	}
}
