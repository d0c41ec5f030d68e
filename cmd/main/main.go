package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"baraholka-main/internal/advertisement"
	"baraholka-main/internal/app"
	"baraholka-main/internal/category"
	"baraholka-main/internal/database"
	elasticService "baraholka-main/internal/elastic_search"
	"baraholka-main/internal/engagement"
	"baraholka-main/internal/etl"
	handlersAdvertisement "baraholka-main/internal/handlers/advertisement"
	handlersCategory "baraholka-main/internal/handlers/category"
	handlersEngagement "baraholka-main/internal/handlers/engagement"
	handlersUser "baraholka-main/internal/handlers/user"
	"baraholka-main/internal/kafka"
	"baraholka-main/internal/media"
	"baraholka-main/internal/middleware"
	"baraholka-main/internal/session"
	"baraholka-main/internal/user"

	_ "github.com/lib/pq"
)

const cfgPath = "config/config.yaml"

func main() {
	// init logger
	zapLogger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}

	logger := zapLogger.Sugar()
	defer func() {
		if err := zapLogger.Sync(); err != nil {
			logger.Warnf("error to sync logger: %v", err)
		}
	}()

	// парсим конфиг
	c, err := app.NewConfig(cfgPath)
	if err != nil {
		logger.Fatalf("error to parsing config: %v", err)
	}

	// init db
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s "+"password=%s dbname=%s sslmode=disable",
		c.CfgDB.Host, c.CfgDB.Port, c.CfgDB.Login, c.CfgDB.Password, c.CfgDB.Database,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		logger.Fatalf("error to database start: %v", err)
	}

	db.SetMaxOpenConns(c.MaxOpenConns)
	if err := db.Ping(); err != nil {
		logger.Infof("Failed to get response to ping: %v", err)
	}

	databaseURL := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.CfgDB.Login, c.CfgDB.Password, c.CfgDB.Host, c.CfgDB.Port, c.CfgDB.Database,
	)
	if err := database.RunMigrations(databaseURL); err != nil {
		logger.Fatalf("error to run migrations: %v", err)
	}

	// init redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     c.RedisAddr,
		Password: "",
		DB:       0, // стандартная БД
	})

	// init elasticsearch
	esClient, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: c.CfgES.Addresses,
	})
	if err != nil {
		logger.Fatalf("error to create elasticsearch client: %v", err)
	}

	searchService := elasticService.NewService(esClient, logger, c.CfgES.Index)
	if err := searchService.EnsureIndex(context.Background()); err != nil {
		logger.Warnf("ensure index failed: %v", err)
	}

	// init kafka producer
	producer := kafka.NewProducer(strings.Split(c.CfgKafka.Brokers, ","), c.CfgKafka.Topic, logger)

	// init media storage
	mediaStorage, err := media.NewStorage(c.MediaDir, c.MediaBaseURL, logger)
	if err != nil {
		logger.Fatalf("error to init media storage: %v", err)
	}

	// init repository
	userRepository := user.NewUserDBRepository(db, logger)
	sessionRepository := session.NewSessionRepository(redisClient, logger, c.Secret, c.SessionDuration)
	categoryRepository := category.NewCategoryDBRepository(db, logger)
	advertisementRepository := advertisement.NewAdvertisementDBRepository(db, logger)
	engagementRepository := engagement.NewEngagementDBRepository(db, logger)

	// ETL: постранично выгружает новые объявления в elasticsearch
	pipeline := etl.NewPipeline(
		etl.NewPostgresExtractor(db, logger),
		etl.NewTransformer(logger),
		etl.NewElasticLoader(searchService, logger, db),
		logger,
		c.ETLInterval,
	)
	go pipeline.Run(context.Background())

	// init router
	r := mux.NewRouter()
	r.Use(middleware.MetricsMiddleware)

	// init handlers
	userHandlers := handlersUser.NewUserHandler(logger, userRepository, sessionRepository)
	categoryHandlers := handlersCategory.NewCategoryHandler(logger, categoryRepository, mediaStorage)
	advertisementHandlers := handlersAdvertisement.NewAdvertisementHandler(
		logger, advertisementRepository, mediaStorage, searchService, producer,
	)
	engagementHandlers := handlersEngagement.NewEngagementHandler(logger, engagementRepository, producer)

	// Ручки требующие авторизации
	authRouter := r.PathPrefix("/api").Subrouter()
	authRouter.Use(middleware.Auth(logger, sessionRepository))

	authRouter.HandleFunc("/advertisement/create", advertisementHandlers.Create).Methods("POST")
	authRouter.HandleFunc("/advertisement/image/create", advertisementHandlers.UploadImage).Methods("POST")
	authRouter.HandleFunc("/advertisement/category/field/value/create", advertisementHandlers.SetFieldValue).Methods("POST")

	authRouter.HandleFunc("/advertisement/favorite/add", engagementHandlers.AddFavorite).Methods("POST")
	authRouter.HandleFunc("/advertisements/favorite", engagementHandlers.ListFavorites).Methods("GET")
	authRouter.HandleFunc("/advertisements/favorite/{id}", engagementHandlers.GetFavorite).Methods("GET")

	authRouter.HandleFunc("/advertisement/recently_viewed/add", engagementHandlers.RecordView).Methods("POST")
	authRouter.HandleFunc("/advertisements/recently_viewed", engagementHandlers.ListRecentlyViewed).Methods("GET")

	authRouter.HandleFunc("/user/{id}", userHandlers.ChangeProfile).Methods("PUT")

	// Ручки НЕ требующие авторизации. Сессия, если она есть,
	// все равно кладется в контекст - просмотры и поиски
	// авторизованных пользователей уходят в аналитику
	noAuthRouter := r.PathPrefix("/api").Subrouter()
	noAuthRouter.Use(middleware.SoftSession(sessionRepository))

	noAuthRouter.HandleFunc("/user/{id}", userHandlers.Info).Methods("GET")
	noAuthRouter.HandleFunc("/user/register", userHandlers.Register).Methods("POST")
	noAuthRouter.HandleFunc("/user/login", userHandlers.Login).Methods("POST")

	noAuthRouter.HandleFunc("/category/create", categoryHandlers.Create).Methods("POST")
	noAuthRouter.HandleFunc("/category/field/create", categoryHandlers.CreateField).Methods("POST")
	noAuthRouter.HandleFunc("/category/field/choice/create", categoryHandlers.CreateChoice).Methods("POST")
	noAuthRouter.HandleFunc("/category", categoryHandlers.ListRoot).Methods("GET")
	noAuthRouter.HandleFunc("/category/{id}", categoryHandlers.GetByID).Methods("GET")

	noAuthRouter.HandleFunc("/advertisement", advertisementHandlers.List).Methods("GET")
	noAuthRouter.HandleFunc("/advertisement/{id}", advertisementHandlers.GetByID).Methods("GET")
	noAuthRouter.HandleFunc("/advertisements/search", advertisementHandlers.Search).Methods("GET")

	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.PathPrefix("/media/").Handler(
		http.StripPrefix("/media/", http.FileServer(http.Dir(c.MediaDir))),
	).Methods("GET")

	logger.Infow("starting server",
		"type", "START",
		"addr", c.ServerPort,
	)

	srv := &http.Server{
		Addr:         c.ServerPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil {
		panic("can't start server: " + err.Error())
	}
}
