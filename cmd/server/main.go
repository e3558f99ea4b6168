package main

import (
	"log"

	"shokolad-be/internal/api"
	"shokolad-be/internal/category"
	"shokolad-be/internal/config"
	"shokolad-be/internal/db"
	"shokolad-be/internal/logger"
	"shokolad-be/internal/mailer"
	"shokolad-be/internal/order"
	"shokolad-be/internal/product"
	"shokolad-be/internal/user"
)

func main() {
	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := db.InitDB(cfg)
	defer database.Close()

	categoryRepo := category.NewRepository(database)
	categorySvc := category.NewService(categoryRepo)

	productRepo := product.NewRepository(database)
	productSvc := product.NewService(productRepo, categoryRepo)

	orderRepo := order.NewRepository(database)
	orderSvc := order.NewService(orderRepo, productRepo)

	userRepo := user.NewRepository(database)
	userSvc := user.NewService(userRepo, mailer.NewSMTPMailer(cfg))

	router := api.NewRouter(api.Services{
		Categories: categorySvc,
		Products:   productSvc,
		Orders:     orderSvc,
		Users:      userSvc,
	})

	log.Printf("🚀 API server running at http://localhost:%s/", cfg.AppPort)
	log.Fatal(router.Run(":" + cfg.AppPort))
}
