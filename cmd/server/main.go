package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/library-inventory/internal/config"
	"github.com/iliyamo/library-inventory/internal/database"
	"github.com/iliyamo/library-inventory/internal/handler"
	"github.com/iliyamo/library-inventory/internal/middleware"
	"github.com/iliyamo/library-inventory/internal/queue"
	"github.com/iliyamo/library-inventory/internal/repository"
	"github.com/iliyamo/library-inventory/internal/router"
	"github.com/iliyamo/library-inventory/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: cache and rate limiting degrade to no-ops when
	// the client is nil.
	rdb := config.NewRedisClient()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	books := repository.NewBookRepo(db)
	categories := repository.NewCategoryRepo(db)
	records := repository.NewBorrowRecordRepo(db)
	ratings := repository.NewRatingRepo(db)

	ledger := service.NewLedger(db, books, records, ratings)

	authH := handler.NewAuthHandler(cfg, users, tokens)
	catalogH := handler.NewCatalogHandler(books, ratings)
	bookH := handler.NewBookHandler(books, categories)
	categoryH := handler.NewCategoryHandler(categories)
	loanH := handler.NewLoanHandler(ledger, books, users)
	ratingH := handler.NewRatingHandler(ledger)
	userH := handler.NewUserHandler(users, tokens)

	e := echo.New()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	cacheMW := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, catalogH, categoryH, cacheMW)
	router.RegisterMember(e, loanH, ratingH, cfg.JWTSecret)
	router.RegisterAdmin(e, bookH, categoryH, userH, loanH, cfg.JWTSecret)

	// Background consumer appends loan activity to the audit log.  It
	// reconnects on its own; a missing broker only disables the log.
	go func() {
		if err := queue.StartLoanConsumer(); err != nil {
			log.Printf("loan consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
