package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"aecofarm-backend/internal/platform/db"
	"aecofarm-backend/internal/server"
)

const defaultConfigPath = "config/config.yaml"

// @title           aecofarm API
// @version         1.0
// @description     물품 대여/대차 게시판 API
// @BasePath        /
//
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
func main() {
	// 設定読み込み
	path := defaultConfigPath
	if v := os.Getenv("AECOFARM_CONFIG"); v != "" {
		path = v
	}
	cfg, err := db.LoadConfig(path)
	if err != nil {
		log.Fatal(err)
	}

	log.Printf("[INFO] version:%s mode:%s\n", cfg.Version, cfg.Mode)
	if cfg.Mode != "dev" && cfg.Mode != "release" {
		fmt.Println("mode must be dev or release")
		return
	}

	conn, err := db.Connect(cfg.DB)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()
	log.Printf("[INFO] connected to DB: %s", cfg.DB.DBName)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = db.EnsureSchema(ctx, conn)
	cancel()
	if err != nil {
		log.Fatal(err)
	}

	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           server.NewRouter(conn, cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		var err error
		if cfg.TLSEnabled() {
			log.Printf("[INFO] listening on https://%s", cfg.Listen)
			err = srv.ListenAndServeTLS(cfg.Certificate.Cert, cfg.Certificate.Key)
		} else {
			log.Printf("[INFO] listening on http://%s", cfg.Listen)
			err = srv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	// グレースフルシャットダウン
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("[INFO] shutting down...")
	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal(err)
	}
}
