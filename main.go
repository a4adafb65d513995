package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsgo_config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/robfig/cron/v3"

	"github.com/sonbm-itealvn/smart-parking-api/internal/api"
	"github.com/sonbm-itealvn/smart-parking-api/internal/api/handler"
	"github.com/sonbm-itealvn/smart-parking-api/internal/api/middleware"
	"github.com/sonbm-itealvn/smart-parking-api/internal/config"
	"github.com/sonbm-itealvn/smart-parking-api/internal/geometry"
	"github.com/sonbm-itealvn/smart-parking-api/internal/repository/postgresql"
	"github.com/sonbm-itealvn/smart-parking-api/internal/service"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	log.Println("Cấu hình đã được tải.")

	// 2. Setup Database Connection
	db, err := postgresql.NewDB(cfg)
	if err != nil {
		log.Fatalf("Không thể kết nối database: %v", err)
	}
	defer db.Close()
	log.Println("Đã kết nối database thành công!")

	// 3. Initialize Repositories
	userRepo := postgresql.NewPgUserRepository(db)
	refreshTokenRepo := postgresql.NewPgRefreshTokenRepository(db)
	vehicleRepo := postgresql.NewPgVehicleRepository(db)
	parkingLotRepo := postgresql.NewPgParkingLotRepository(db)
	parkingSlotRepo := postgresql.NewPgParkingSlotRepository(db)
	sessionRepo := postgresql.NewPgParkingSessionRepository(db)
	paymentRepo := postgresql.NewPgPaymentRepository(db)
	notificationRepo := postgresql.NewPgNotificationRepository(db)
	cameraRepo := postgresql.NewPgCameraRepository(db)
	detectionEventLogRepo := postgresql.NewPgDetectionEventLogRepository(db)
	uploadedImageRepo := postgresql.NewPgUploadedImageRepository(db)

	// 4. Init WebSocket manager
	webSocketManager := handler.NewWebSocketManager()
	go webSocketManager.Start()
	log.Println("WebSocket Manager đã được khởi động.")

	// 5. Initialize Services
	authService := service.NewAuthService(userRepo, refreshTokenRepo, cfg.JWTSecret, cfg.JWTExpirationHours, cfg.RefreshTokenTTLDays)
	notificationService := service.NewNotificationService(notificationRepo, webSocketManager)
	feeService := service.NewFeeService(cfg.FeeIncreasePercent, cfg.FeeMinimumHours)
	detectionService := service.NewDetectionService(vehicleRepo, parkingLotRepo, parkingSlotRepo,
		sessionRepo, detectionEventLogRepo, feeService, notificationService)
	occupancyService := service.NewOccupancyService(parkingLotRepo, parkingSlotRepo, sessionRepo,
		geometry.NewEngine(), notificationService)
	parkingService := service.NewParkingService(parkingLotRepo, parkingSlotRepo, sessionRepo, paymentRepo)
	vehicleService := service.NewVehicleService(vehicleRepo, userRepo)
	detectorClient := service.NewDetectorClient(cfg.DetectorBaseURL, cfg.DetectorTimeout)
	cameraService := service.NewCameraService(cameraRepo, vehicleRepo, sessionRepo,
		detectorClient, detectionService, occupancyService)

	// 6. Khởi tạo S3 client cho upload ảnh (tùy chọn theo cấu hình)
	var imageService *service.ImageService
	if cfg.S3ImageBucket != "" {
		awsSDKCfg, err := awsgo_config.LoadDefaultConfig(context.TODO(), awsgo_config.WithRegion(cfg.AWSRegion))
		if err != nil {
			log.Fatalf("Không thể tải AWS SDK config: %v", err)
		}
		s3Client := s3.NewFromConfig(awsSDKCfg)
		imageService = service.NewImageService(s3Client, cfg.S3ImageBucket, cfg.AWSRegion, uploadedImageRepo)
		log.Println("Đã khởi tạo S3 client cho bucket:", cfg.S3ImageBucket)
	} else {
		log.Println("CẢNH BÁO: S3_IMAGE_BUCKET chưa được cấu hình. API upload ảnh sẽ không chạy.")
	}

	// 7. Initialize Auth Middleware
	authMiddleware := middleware.NewAuthMiddleware(authService)

	// 8. Cron job dọn dẹp refresh token hết hạn
	cronRunner := cron.New()
	if _, err := cronRunner.AddFunc("@hourly", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		authService.CleanupExpiredTokens(ctx)
	}); err != nil {
		log.Fatalf("Không thể đăng ký cron job dọn dẹp refresh token: %v", err)
	}
	cronRunner.Start()
	log.Println("Cron job dọn dẹp refresh token đã được khởi động.")

	// 9. Setup HTTP Router
	router := api.SetupRouter(api.RouterDeps{
		AuthService:         authService,
		ParkingService:      parkingService,
		VehicleService:      vehicleService,
		DetectionService:    detectionService,
		OccupancyService:    occupancyService,
		CameraService:       cameraService,
		NotificationService: notificationService,
		ImageService:        imageService,
		AuthMiddleware:      authMiddleware,
		WSManager:           webSocketManager,
	})

	// 10. Start HTTP Server
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server đang chạy trên port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Lỗi ListenAndServe(): %v", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Đang tắt server...")

	cronCtx := cronRunner.Stop()
	<-cronCtx.Done()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server buộc phải tắt: %v", err)
	}

	log.Println("Server đã tắt.")
}
