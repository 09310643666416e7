package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/zaqqye/salon_backoffice/internal/config"
	"github.com/zaqqye/salon_backoffice/internal/controllers"
	"github.com/zaqqye/salon_backoffice/internal/logger"
	"github.com/zaqqye/salon_backoffice/internal/middleware"
	"github.com/zaqqye/salon_backoffice/internal/models"
	"github.com/zaqqye/salon_backoffice/internal/ws"
)

func Register(r *gin.Engine, db *gorm.DB, cfg *config.Config, hub *ws.EventHub, log logger.Logger, metrics *middleware.Metrics) error {
	controllers.RegisterValidation()

	r.Use(middleware.RequestLogger(log))
	if metrics != nil {
		r.Use(metrics.Middleware())
		r.GET(cfg.MetricsPath, metrics.Handler())
	}
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Controllers
	var events controllers.Publisher
	if hub != nil {
		events = hub
	}
	authCtrl := &controllers.AuthController{DB: db, JWTSecret: cfg.JWTSecret, TokenTTL: cfg.TokenTTL}
	userCtrl := &controllers.UserController{DB: db, Events: events}
	staffCtrl := &controllers.StaffController{DB: db, Events: events}
	serviceCtrl := &controllers.ServiceController{DB: db, Events: events}
	comboCtrl := &controllers.ComboController{DB: db, Events: events}
	apptCtrl := &controllers.AppointmentController{DB: db, Events: events}
	invCtrl := &controllers.InventoryController{DB: db, Events: events}
	attCtrl := &controllers.AttendanceController{DB: db, Events: events}

	loginLimit, err := middleware.RateLimit(cfg.LoginRate, log)
	if err != nil {
		return err
	}

	// Public
	auth := r.Group("/api/v1/auth")
	{
		auth.POST("/login", loginLimit, authCtrl.Login)
	}

	// Protected
	api := r.Group("/api/v1", middleware.AuthMiddleware(db, cfg.JWTSecret))
	{
		api.GET("/auth/me", authCtrl.Me)
		api.GET("/auth/verify-token", authCtrl.VerifyToken)
		api.POST("/auth/logout", authCtrl.Logout)

		admin := api.Group("/admin", middleware.RequireRoles(models.RoleAdmin, models.RoleManager))
		{
			// Operator accounts, admin only
			users := admin.Group("/users", middleware.RequireRoles(models.RoleAdmin))
			users.GET("", userCtrl.ListUsers)
			users.POST("", userCtrl.CreateUser)
			users.GET("/:id", userCtrl.GetUser)
			users.PUT("/:id", userCtrl.UpdateUser)
			users.DELETE("/:id", userCtrl.DeleteUser)

			// Staff
			admin.GET("/staff", staffCtrl.ListStaff)
			admin.POST("/staff", staffCtrl.CreateStaff)
			admin.POST("/staff/import", staffCtrl.ImportStaff)
			admin.GET("/staff/:id", staffCtrl.GetStaff)
			admin.PUT("/staff/:id", staffCtrl.UpdateStaff)
			admin.PATCH("/staff/:id/status", staffCtrl.SetStaffStatus)
			admin.DELETE("/staff/:id", staffCtrl.DeleteStaff)
			admin.GET("/staff/:id/attendance/summary", attCtrl.Summary)

			// Services
			admin.GET("/services", serviceCtrl.ListServices)
			admin.POST("/services", serviceCtrl.CreateService)
			admin.GET("/services/:id", serviceCtrl.GetService)
			admin.PUT("/services/:id", serviceCtrl.UpdateService)
			admin.PATCH("/services/:id/status", serviceCtrl.SetServiceStatus)
			admin.DELETE("/services/:id", serviceCtrl.DeleteService)

			// Combos
			admin.GET("/combos", comboCtrl.ListCombos)
			admin.POST("/combos", comboCtrl.CreateCombo)
			admin.GET("/combos/:id", comboCtrl.GetCombo)
			admin.PUT("/combos/:id", comboCtrl.UpdateCombo)
			admin.PATCH("/combos/:id/status", comboCtrl.SetComboStatus)
			admin.DELETE("/combos/:id", comboCtrl.DeleteCombo)

			// Appointments
			admin.GET("/appointments", apptCtrl.ListAppointments)
			admin.GET("/appointments/today", apptCtrl.Today)
			admin.POST("/appointments", apptCtrl.CreateAppointment)
			admin.GET("/appointments/:id", apptCtrl.GetAppointment)
			admin.PUT("/appointments/:id", apptCtrl.UpdateAppointment)
			admin.PUT("/appointments/:id/status", apptCtrl.SetAppointmentStatus)
			admin.PUT("/appointments/:id/reschedule", apptCtrl.Reschedule)
			admin.DELETE("/appointments/:id", apptCtrl.DeleteAppointment)

			// Inventory
			admin.GET("/inventory", invCtrl.ListInventory)
			admin.POST("/inventory", invCtrl.CreateItem)
			admin.GET("/inventory/:id", invCtrl.GetItem)
			admin.PUT("/inventory/:id", invCtrl.UpdateItem)
			admin.DELETE("/inventory/:id", invCtrl.DeleteItem)
			admin.POST("/inventory/:id/restock", invCtrl.Restock)
			admin.POST("/inventory/:id/use", invCtrl.Use)
			admin.GET("/inventory/:id/transactions", invCtrl.Transactions)

			// Attendance
			admin.GET("/attendance", attCtrl.ListAttendance)
			admin.GET("/attendance/today", attCtrl.Today)
			admin.POST("/attendance", attCtrl.MarkAttendance)
			admin.GET("/attendance/holidays", attCtrl.ListHolidays)
			admin.POST("/attendance/holiday", attCtrl.AddHoliday)
			admin.DELETE("/attendance/holiday", attCtrl.RemoveHoliday)
			admin.GET("/attendance/:id", attCtrl.GetAttendance)
			admin.PUT("/attendance/:id", attCtrl.UpdateAttendance)
			admin.DELETE("/attendance/:id", attCtrl.DeleteAttendance)

			// Change feed
			if hub != nil {
				admin.GET("/events", ws.EventsHandler(hub))
			}
		}
	}
	return nil
}
