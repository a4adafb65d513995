package api

import (
	"github.com/gin-gonic/gin"

	"github.com/sonbm-itealvn/smart-parking-api/internal/api/handler"
	"github.com/sonbm-itealvn/smart-parking-api/internal/api/middleware"
	"github.com/sonbm-itealvn/smart-parking-api/internal/service"
)

type RouterDeps struct {
	AuthService         *service.AuthService
	ParkingService      *service.ParkingService
	VehicleService      *service.VehicleService
	DetectionService    *service.DetectionService
	OccupancyService    *service.OccupancyService
	CameraService       *service.CameraService
	NotificationService *service.NotificationService
	ImageService        *service.ImageService
	AuthMiddleware      *middleware.AuthMiddleware
	WSManager           *handler.WebSocketManager
}

func SetupRouter(deps RouterDeps) *gin.Engine {
	r := gin.Default()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// WebSocket endpoint (không cần auth cho real-time connection)
	wsHandler := handler.NewWebSocketHandler(deps.WSManager)
	r.GET("/ws", wsHandler.HandleWebSocket)

	authHandler := handler.NewAuthHandler(deps.AuthService)
	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.POST("/refresh", authHandler.Refresh)
		authRoutes.POST("/logout", authHandler.Logout)
	}

	authMw := deps.AuthMiddleware
	v1 := r.Group("/api/v1")
	v1.Use(authMw.Authenticate())
	{
		lotH := handler.NewParkingLotHandler(deps.ParkingService)
		detectionH := handler.NewDetectionHandler(deps.DetectionService, deps.OccupancyService)
		lotRoutes := v1.Group("/parking-lots")
		{
			lotRoutes.POST("", authMw.AuthorizeRole("admin"), lotH.CreateParkingLot)
			lotRoutes.GET("", lotH.GetAllParkingLots)
			lotRoutes.GET("/:id", lotH.GetParkingLotByID)
			lotRoutes.PUT("/:id", authMw.AuthorizeRole("admin"), lotH.UpdateParkingLot)
			lotRoutes.DELETE("/:id", authMw.AuthorizeRole("admin"), lotH.DeleteParkingLot)

			slotH_nested := handler.NewParkingSlotHandler(deps.ParkingService)
			slotRoutesInLot := lotRoutes.Group("/:id/slots")
			{
				slotRoutesInLot.POST("", authMw.AuthorizeRole("admin"), slotH_nested.CreateParkingSlot)
				slotRoutesInLot.GET("", slotH_nested.GetSlotsByLotID)
			}

			// Webhook đối soát occupancy theo bãi
			lotRoutes.POST("/:id/reconcile", authMw.AuthorizeRole("admin", "operator"), detectionH.ReconcileOccupancy)
		}

		slotH := handler.NewParkingSlotHandler(deps.ParkingService)
		slotRoutes := v1.Group("/parking-slots")
		{
			slotRoutes.GET("/:slot_id", slotH.GetParkingSlotByID)
			slotRoutes.PUT("/:slot_id", authMw.AuthorizeRole("admin"), slotH.UpdateParkingSlot)
			slotRoutes.DELETE("/:slot_id", authMw.AuthorizeRole("admin"), slotH.DeleteParkingSlot)
		}

		sessionH := handler.NewParkingSessionHandler(deps.ParkingService)
		sessionRoutes := v1.Group("/parking-sessions")
		{
			sessionRoutes.GET("", sessionH.FindParkingSessions)
			sessionRoutes.GET("/:id", sessionH.GetParkingSessionByID)
			sessionRoutes.POST("/:id/cancel", authMw.AuthorizeRole("admin"), sessionH.CancelParkingSession)
			sessionRoutes.GET("/:id/payments", sessionH.GetPaymentsBySessionID)
		}
		v1.POST("/payments", authMw.AuthorizeRole("admin", "operator"), sessionH.RecordPayment)

		v1.GET("/users", authMw.AuthorizeRole("admin"), authHandler.ListUsers)

		vehicleH := handler.NewVehicleHandler(deps.VehicleService)
		vehicleRoutes := v1.Group("/vehicles")
		{
			vehicleRoutes.POST("", vehicleH.RegisterVehicle)
			vehicleRoutes.GET("", vehicleH.FindVehicles)
			vehicleRoutes.GET("/:id", vehicleH.GetVehicleByID)
			vehicleRoutes.PUT("/:id", vehicleH.UpdateVehicle)
			vehicleRoutes.DELETE("/:id", authMw.AuthorizeRole("admin"), vehicleH.DeleteVehicle)
		}

		// Webhook sự kiện biển số từ detector
		v1.POST("/detections", authMw.AuthorizeRole("admin", "operator"), detectionH.HandleDetection)

		cameraH := handler.NewCameraHandler(deps.CameraService)
		cameraRoutes := v1.Group("/cameras")
		{
			cameraRoutes.POST("", authMw.AuthorizeRole("admin"), cameraH.CreateCamera)
			cameraRoutes.GET("", cameraH.GetAllCameras)
			cameraRoutes.GET("/:id", cameraH.GetCameraByID)
			cameraRoutes.PUT("/:id", authMw.AuthorizeRole("admin"), cameraH.UpdateCamera)
			cameraRoutes.DELETE("/:id", authMw.AuthorizeRole("admin"), cameraH.DeleteCamera)

			cameraRoutes.POST("/:id/process-vehicle", authMw.AuthorizeRole("admin", "operator"), cameraH.ProcessVehicleImage)
			cameraRoutes.POST("/:id/detect-parking-space", authMw.AuthorizeRole("admin", "operator"), cameraH.DetectParkingSpace)
			cameraRoutes.POST("/:id/annotate-image", authMw.AuthorizeRole("admin", "operator"), cameraH.AnnotateImage)
		}

		notificationH := handler.NewNotificationHandler(deps.NotificationService)
		notificationRoutes := v1.Group("/notifications")
		{
			notificationRoutes.GET("", notificationH.GetMyNotifications)
			notificationRoutes.PUT("/:id/read", notificationH.MarkRead)
		}

		if deps.ImageService != nil {
			uploadH := handler.NewUploadHandler(deps.ImageService)
			imageRoutes := v1.Group("/images")
			imageRoutes.Use(authMw.AuthorizeRole("admin", "operator"))
			{
				imageRoutes.POST("", uploadH.UploadImage)
				imageRoutes.GET("", uploadH.ListImages)
				imageRoutes.DELETE("/:id", uploadH.DeleteImage)
			}
		}
	}
	return r
}
