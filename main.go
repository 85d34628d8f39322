package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/storage/redis/v3"
	"github.com/khanghh/casoauth/internal/audit"
	"github.com/khanghh/casoauth/internal/auth"
	"github.com/khanghh/casoauth/internal/config"
	"github.com/khanghh/casoauth/internal/handlers/api"
	"github.com/khanghh/casoauth/internal/oauth"
	"github.com/khanghh/casoauth/internal/store"
	"github.com/khanghh/casoauth/internal/ticket"
	"github.com/khanghh/casoauth/model"
	"github.com/khanghh/casoauth/params"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	goredis "github.com/redis/go-redis/v9"
)

var (
	app       *cli.App
	gitCommit string
	gitDate   string
)

var (
	configFileFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "YAML config file",
		Value: "config.yaml",
	}
	debugFlag = &cli.BoolFlag{
		Name:  "debug",
		Usage: "Enable debug logging",
	}
)

func init() {
	app = cli.NewApp()
	app.EnableBashCompletion = true
	app.Usage = "casoauth - OAuth token service backed by CAS session tickets"
	app.Flags = []cli.Flag{
		configFileFlag,
		debugFlag,
	}
	app.Commands = []*cli.Command{
		{
			Name: "version",
			Action: func(ctx *cli.Context) error {
				fmt.Println(params.VersionWithCommit(gitCommit, gitDate))
				return nil
			},
		},
	}
	app.Action = run
}

func mustInitLogger(debug bool) {
	logLevel := slog.LevelInfo
	if debug {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(handler))
}

func mustInitDatabase(dbConfig config.MySQLConfig) *gorm.DB {
	db, err := gorm.Open(mysql.Open(dbConfig.Dsn), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   dbConfig.TablePrefix,
			SingularTable: true,
		},
	})
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	sqlDB, err := db.DB()
	if err != nil {
		slog.Error("Failed to access database connection pool", "error", err)
		os.Exit(1)
	}
	if dbConfig.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(dbConfig.MaxIdleConns)
	}
	if dbConfig.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(dbConfig.MaxOpenConns)
	}
	if dbConfig.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(time.Duration(dbConfig.ConnMaxIdleTime) * time.Second)
	}
	if dbConfig.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(dbConfig.ConnMaxLifetime) * time.Second)
	}

	if err := model.AutoMigrate(db); err != nil {
		slog.Error("Database migration failed", "error", err)
		os.Exit(1)
	}

	return db
}

func mustInitTicketStorage(redisCfg config.RedisConfig) (store.Storage, goredis.UniversalClient) {
	if redisCfg.URL == "" {
		slog.Warn("No redis backend configured, keeping tickets in process memory")
		return store.NewMemoryStorage(), nil
	}
	redisStorage := redis.New(redis.Config{
		URL:           redisCfg.URL,
		PoolSize:      redisCfg.PoolSize,
		IsClusterMode: redisCfg.ClusterMode,
	})
	return store.NewRedisStorage(redisStorage.Conn()), redisStorage.Conn()
}

func initScopeManager(oauthCfg config.OAuthConfig) *oauth.StaticScopeManager {
	var scopes []oauth.Scope
	for _, scopeCfg := range oauthCfg.Scopes {
		scopes = append(scopes, oauth.Scope{
			Name:        scopeCfg.Name,
			Description: scopeCfg.Description,
			IsDefault:   scopeCfg.IsDefault,
		})
	}
	var casScopes []oauth.Scope
	for _, scopeCfg := range oauthCfg.CASScopes {
		casScopes = append(casScopes, oauth.Scope{
			Name:        scopeCfg.Name,
			Description: scopeCfg.Description,
		})
	}
	return oauth.NewStaticScopeManager(scopes, casScopes)
}

func setupAPIRoutes(router fiber.Router, oauthService *oauth.CentralOAuthService, serviceRegistry *auth.ServiceRegistry, institutionService *auth.InstitutionService) {
	var (
		oauthHandler       = api.NewOAuthHandler(oauthService)
		serviceHandler     = api.NewServiceHandler(serviceRegistry)
		institutionHandler = api.NewInstitutionHandler(institutionService)
	)

	router.Post("/oauth2/token", oauthHandler.PostToken)
	router.Post("/oauth2/revoke", oauthHandler.PostRevoke)
	router.Get("/oauth2/profile", oauthHandler.GetProfile)
	router.Post("/oauth2/metadata/client", oauthHandler.GetClientMetadata)
	router.Get("/oauth2/metadata/principal", oauthHandler.GetPrincipalMetadata)
	router.Post("/services", serviceHandler.PostRegister)
	router.Delete("/services/:clientID", serviceHandler.DeleteService)
	router.Get("/institutions/:providerID/logout-url", institutionHandler.GetLogoutURL)
}

func run(ctx *cli.Context) error {
	cfg, err := config.LoadConfig(ctx.String(configFileFlag.Name))
	if err != nil {
		slog.Error("Could not load config file.", "error", err)
		return err
	}

	mustInitLogger(cfg.Debug || ctx.IsSet(debugFlag.Name))

	db := mustInitDatabase(cfg.MySQL)
	ticketStorage, redisConn := mustInitTicketStorage(cfg.Redis)
	audit.Initialize(audit.NewAuditEventRepository(db))

	// repositories
	var (
		userRepo        = auth.NewUserRepository(db)
		serviceRepo     = auth.NewServiceRepository(db)
		institutionRepo = auth.NewInstitutionRepository(db)
	)

	// services
	var (
		authenticator      = auth.NewAuthenticator(userRepo)
		serviceRegistry    = auth.NewServiceRegistry(serviceRepo)
		institutionService = auth.NewInstitutionService(institutionRepo)
		ticketRegistry     = ticket.NewRegistry(ticketStorage)
		authority          = ticket.NewAuthority(ticketRegistry, authenticator)
		oauthService       = oauth.NewCentralOAuthService(
			authority,
			ticketRegistry,
			oauth.NewTokenRegistry(db),
			serviceRegistry,
			initScopeManager(cfg.OAuth),
			oauth.NewPersonalAccessTokenStore(db),
		)
	)

	router := fiber.New(fiber.Config{
		Prefork:       false,
		CaseSensitive: true,
		BodyLimit:     params.ServerBodyLimit,
		IdleTimeout:   params.ServerIdleTimeout,
		ReadTimeout:   params.ServerReadTimeout,
		WriteTimeout:  params.ServerWriteTimeout,
	})

	router.Use(recover.New())
	router.Use(logger.New())
	router.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.AllowOrigins, ", "),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	setupAPIRoutes(router, oauthService, serviceRegistry, institutionService)

	healthCheckCtx, term := context.WithCancel(ctx.Context)
	done := make(chan struct{})
	go startHealthCheckServer(healthCheckCtx, done, redisConn, db)
	defer func() {
		term()
		<-done
	}()
	return router.Listen(cfg.ListenAddr)
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
