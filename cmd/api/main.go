package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/dermaclinic/clinic-api/internal/config"
	"github.com/dermaclinic/clinic-api/internal/email"
	appointmentHandler "github.com/dermaclinic/clinic-api/internal/handler/appointment"
	authHandler "github.com/dermaclinic/clinic-api/internal/handler/auth"
	catalogHandler "github.com/dermaclinic/clinic-api/internal/handler/catalog"
	indicationHandler "github.com/dermaclinic/clinic-api/internal/handler/indication"
	invoiceHandler "github.com/dermaclinic/clinic-api/internal/handler/invoice"
	medicalrecordHandler "github.com/dermaclinic/clinic-api/internal/handler/medicalrecord"
	medicationHandler "github.com/dermaclinic/clinic-api/internal/handler/medication"
	patientHandler "github.com/dermaclinic/clinic-api/internal/handler/patient"
	prescriptionHandler "github.com/dermaclinic/clinic-api/internal/handler/prescription"
	userHandler "github.com/dermaclinic/clinic-api/internal/handler/user"
	"github.com/dermaclinic/clinic-api/internal/middleware"
	"github.com/dermaclinic/clinic-api/internal/repository/postgres"
	"github.com/dermaclinic/clinic-api/internal/router"
	appointmentService "github.com/dermaclinic/clinic-api/internal/service/appointment"
	authService "github.com/dermaclinic/clinic-api/internal/service/auth"
	catalogService "github.com/dermaclinic/clinic-api/internal/service/catalog"
	indicationService "github.com/dermaclinic/clinic-api/internal/service/indication"
	invoiceService "github.com/dermaclinic/clinic-api/internal/service/invoice"
	medicalrecordService "github.com/dermaclinic/clinic-api/internal/service/medicalrecord"
	medicationService "github.com/dermaclinic/clinic-api/internal/service/medication"
	patientService "github.com/dermaclinic/clinic-api/internal/service/patient"
	prescriptionService "github.com/dermaclinic/clinic-api/internal/service/prescription"
	userService "github.com/dermaclinic/clinic-api/internal/service/user"
	"github.com/dermaclinic/clinic-api/internal/token"
	"github.com/dermaclinic/clinic-api/pkg/auth"
	"github.com/dermaclinic/clinic-api/pkg/logger"
	"github.com/dermaclinic/clinic-api/pkg/security"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Logging.Level),
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
		Pretty:     cfg.Logging.Pretty,
	})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	tokenStore := token.NewMemoryStore()
	if cfg.Redis.Enabled {
		tokenStore, err = token.NewRedisStore(context.Background(), cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
	}
	defer tokenStore.Close()

	mailer := email.NewNoopSender()
	if cfg.SMTP.Enabled {
		mailer = email.NewSMTPSender(cfg.SMTP)
	}

	// Repositories
	patientRepo := postgres.NewPatientRepository(db)
	userRepo := postgres.NewUserRepository(db)
	doctorRepo := postgres.NewDoctorRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	recordRepo := postgres.NewMedicalRecordRepository(db)
	medicationRepo := postgres.NewMedicationRepository(db)
	serviceRepo := postgres.NewServiceRepository(db)
	prescriptionRepo := postgres.NewPrescriptionRepository(db)
	indicationRepo := postgres.NewServiceIndicationRepository(db)
	invoiceRepo := postgres.NewInvoiceRepository(db)

	hasher := security.NewBcryptHasher(bcrypt.DefaultCost)
	jwtSvc := auth.NewJWTService(auth.Config{
		Secret:        cfg.JWT.Secret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		AccessTTL:     time.Duration(cfg.JWT.AccessExpiryMins) * time.Minute,
		RefreshTTL:    time.Duration(cfg.JWT.RefreshExpiryDays) * 24 * time.Hour,
	})

	// Services
	authSvc := authService.NewService(userRepo, jwtSvc, hasher, tokenStore, appLogger)
	userSvc := userService.NewService(userRepo, doctorRepo, hasher, appLogger)
	patientSvc := patientService.NewService(patientRepo, appLogger)
	clinicTZ, err := time.LoadLocation(cfg.Appointments.Timezone)
	if err != nil {
		log.Fatal().Err(err).Str("timezone", cfg.Appointments.Timezone).Msg("invalid clinic timezone")
	}
	appointmentSvc := appointmentService.NewService(
		appointmentRepo, patientRepo, userRepo,
		appointmentService.PolicyByName(cfg.Appointments.SchedulePolicy),
		clinicTZ, mailer, appLogger,
	)
	recordSvc := medicalrecordService.NewService(recordRepo, patientRepo, appointmentRepo, appLogger)
	medicationSvc := medicationService.NewService(medicationRepo, appLogger)
	catalogSvc := catalogService.NewService(serviceRepo, appLogger)
	prescriptionSvc := prescriptionService.NewService(prescriptionRepo, prescriptionRepo, recordRepo, appLogger)
	indicationSvc := indicationService.NewService(indicationRepo, indicationRepo, recordRepo, appLogger)
	invoiceSvc := invoiceService.NewService(
		invoiceRepo, invoiceRepo, patientRepo, userRepo,
		prescriptionRepo, indicationRepo, appLogger,
	)

	authMiddleware := middleware.NewAuthMiddleware(jwtSvc, userRepo)

	// Handlers
	authH := authHandler.NewHandler(authSvc)
	userH := userHandler.NewHandler(userSvc, authMiddleware)
	patientH := patientHandler.NewHandler(patientSvc)
	appointmentH := appointmentHandler.NewHandler(appointmentSvc)
	recordH := medicalrecordHandler.NewHandler(recordSvc)
	medicationH := medicationHandler.NewHandler(medicationSvc, authMiddleware)
	catalogH := catalogHandler.NewHandler(catalogSvc, authMiddleware)
	prescriptionH := prescriptionHandler.NewHandler(prescriptionSvc)
	indicationH := indicationHandler.NewHandler(indicationSvc)
	invoiceH := invoiceHandler.NewHandler(invoiceSvc)

	r := router.NewRouter(cfg, db, authMiddleware, authH,
		userH, patientH, appointmentH, recordH,
		medicationH, catalogH, prescriptionH, indicationH, invoiceH,
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
