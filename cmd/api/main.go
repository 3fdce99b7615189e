package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/manas-swain-001/cms/internal/config"
	"github.com/manas-swain-001/cms/internal/domain/task"
	appHTTP "github.com/manas-swain-001/cms/internal/handler/http"
	"github.com/manas-swain-001/cms/internal/pkg/clock"
	"github.com/manas-swain-001/cms/internal/pkg/cron"
	"github.com/manas-swain-001/cms/internal/pkg/database"
	"github.com/manas-swain-001/cms/internal/pkg/email"
	"github.com/manas-swain-001/cms/internal/pkg/jwt"
	"github.com/manas-swain-001/cms/internal/pkg/push"
	"github.com/manas-swain-001/cms/internal/pkg/sse"
	"github.com/manas-swain-001/cms/internal/repository/postgresql"
	attendanceService "github.com/manas-swain-001/cms/internal/service/attendance"
	serviceAuth "github.com/manas-swain-001/cms/internal/service/auth"
	notificationService "github.com/manas-swain-001/cms/internal/service/notification"
	taskService "github.com/manas-swain-001/cms/internal/service/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	userRepo := postgresql.NewUserRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	taskRepo := postgresql.NewTaskRepository(db)
	notificationRepo := postgresql.NewNotificationRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration)
	clk := clock.NewSystemClock(cfg.Workday.Timezone)

	slotTable, err := task.NewSlotTable(cfg.Checkpoints.Slots, cfg.Checkpoints.WindowLeadMinutes)
	if err != nil {
		log.Fatal("Invalid checkpoint slot configuration: ", err)
	}

	emailService, err := email.NewEmailService(cfg.SMTP)
	if err != nil {
		log.Fatal("Failed to initialize email service: ", err)
	}
	pushService := push.NewPushService(cfg.Push)

	hub := sse.NewHub()
	notificationSvc := notificationService.NewNotificationService(
		notificationRepo,
		userRepo,
		hub,
		emailService,
		pushService,
		notificationService.Config{},
	)
	defer notificationSvc.Stop()

	taskSvc := taskService.NewTaskService(
		taskRepo,
		userRepo,
		notificationSvc,
		slotTable,
		clk,
		cfg.Checkpoints.WarnMinutes,
		cfg.Checkpoints.EscalateMinutes,
	)
	attendanceSvc := attendanceService.NewAttendanceService(
		attendanceRepo,
		taskSvc,
		notificationSvc,
		clk,
		cfg.Workday,
		cfg.Office,
	)
	authService := serviceAuth.NewAuthService(userRepo, JWTService)

	standardEnd, err := task.ParseSlotMinute(cfg.Workday.StandardEnd)
	if err != nil {
		log.Fatal("Invalid WORKDAY_STANDARD_END: ", err)
	}

	scheduler := cron.NewScheduler(clk)
	cron.NewCheckpointJobs(taskSvc, clk, cfg.Checkpoints.WarnMinutes, cfg.Checkpoints.EscalateMinutes).
		RegisterJobs(scheduler, cfg.Checkpoints.SweepInterval)
	cron.NewAttendanceJobs(attendanceRepo, notificationSvc, clk, standardEnd, cfg.Workday.StandardHours).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	authHandler := appHTTP.NewAuthHandler(JWTService, authService)
	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc)
	taskHandler := appHTTP.NewTaskHandler(taskSvc)
	notificationHandler := appHTTP.NewNotificationHandler(notificationSvc, JWTService)

	router := appHTTP.NewRouter(
		cfg,
		JWTService,
		authHandler,
		attendanceHandler,
		taskHandler,
		notificationHandler,
	)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
