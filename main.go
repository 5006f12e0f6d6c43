package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"absensi-backend/internal/attendance"
	"absensi-backend/internal/platform/access"
	"absensi-backend/internal/platform/auth"
	"absensi-backend/internal/platform/db"
	"absensi-backend/internal/report"
	"absensi-backend/internal/school/classes"
	"absensi-backend/internal/school/students"
	"absensi-backend/internal/school/teachers"
)

// @title           Absensi API
// @version         1.0
// @description     School attendance backend (Gin + MySQL)
// @BasePath        /
func main() {
	cfg, err := db.LoadConfig("config/config.yaml")
	if err != nil {
		panic(err)
	}

	mode := cfg.Mode
	log.Printf("[INFO] mode:%s\n", mode)

	if mode != "dev" && mode != "release" {
		fmt.Println("Usage: go run main.go [dev|release]")
		return
	}
	if cfg.App.JWTSecret == "" {
		log.Fatal("app.jwt_secret must be set")
	}

	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("invalid app.timezone %q: %v", cfg.App.Timezone, err)
	}

	conn, err := db.Connect(cfg.DB)
	if err != nil {
		panic(err)
	}
	defer conn.Close()

	log.Printf("[INFO] connected to DB: %s", cfg.DB.DBName)
	log.Printf("[INFO] business timezone: %s", cfg.App.Timezone)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	_ = r.SetTrustedProxies(nil)

	if mode == "dev" {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:3000"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowCredentials: true,
		}))
	}

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	secret := []byte(cfg.App.JWTSecret)
	schedule := attendance.ScheduleFromConfig(cfg.App.Schedule)

	authSvc := auth.NewService(conn, secret)
	studentSvc := students.NewService(conn)
	classSvc := classes.NewService(conn)
	teacherSvc := teachers.NewService(conn)
	scopes := access.NewResolver(classSvc.Store())
	attendanceSvc := attendance.NewService(conn, students.NewStore(conn), schedule, loc)
	reportSvc := report.NewService(conn, loc)

	auth.RegisterPublicRoutes(r, authSvc)

	api := r.Group("/api/v1")
	api.Use(auth.RequireAuth(secret))
	attendance.RegisterRoutes(api, attendanceSvc, scopes)
	report.RegisterRoutes(api, reportSvc, scopes)
	students.RegisterRoutes(api, studentSvc, scopes)
	classes.RegisterRoutes(api, classSvc, scopes)
	teachers.RegisterRoutes(api, teacherSvc)

	admin := r.Group("/api/v1")
	admin.Use(auth.RequireAuth(secret), auth.RequireRole(auth.RoleAdmin))
	auth.RegisterAdminRoutes(admin, authSvc)

	srv := &http.Server{
		Addr:    ":8443",
		Handler: r,
	}

	var certFile, keyFile string
	if mode == "dev" {
		certFile = fmt.Sprintf("config/tls/dev/%s", cfg.Certificate.Cert)
		keyFile = fmt.Sprintf("config/tls/dev/%s", cfg.Certificate.Key)
	} else {
		certFile = fmt.Sprintf("config/tls/release/%s", cfg.Certificate.Cert)
		keyFile = fmt.Sprintf("config/tls/release/%s", cfg.Certificate.Key)
	}

	go func() {
		log.Println("[INFO] listening on https://0.0.0.0:8443")
		if err := srv.ListenAndServeTLS(certFile, keyFile); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	log.Println("[INFO] shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal(err)
	}
}
