package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	postgresStorage "github.com/vstrecha/vstrecha/backend/internal/adapters/database/postgres"
	redisStorage "github.com/vstrecha/vstrecha/backend/internal/adapters/database/redis"
	"github.com/vstrecha/vstrecha/backend/internal/domain/utils/location"
	"github.com/vstrecha/vstrecha/backend/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var defaultTags = []string{"Лекция", "Музей", "Спорт", "Музыка", "Природа"}

type Config struct {
	Database *gorm.DB
	Redis    *redisStorage.Client
	Settings Settings
}

type Settings struct {
	Debug    bool
	Location *time.Location
	HTTP     HTTP
	Auth     Auth
	Events   Events
	QR       QR
}

type HTTP struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64
	RateBurst       int
	RatePerSecond   float64
}

type Auth struct {
	BotToken string
	MaxAge   time.Duration
}

type Events struct {
	Tags          []string
	DefaultLimit  int
	MaxLimit      int
	SweepInterval time.Duration
}

type QR struct {
	LogoPath string
	Size     int
}

func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			panic(err)
		}
	}

	// BOT_TOKEN is the name every deployment of the mini app already uses.
	if token := os.Getenv("BOT_TOKEN"); token != "" {
		viper.Set("bot.token", token)
	}
}

func setDefaults() {
	viper.SetDefault("settings.timezone", "Europe/Moscow")
	viper.SetDefault("settings.logs-dir", "logs")
	viper.SetDefault("service.http.addr", ":8080")
	viper.SetDefault("service.http.read-timeout", 10*time.Second)
	viper.SetDefault("service.http.write-timeout", 30*time.Second)
	viper.SetDefault("service.http.shutdown-timeout", 15*time.Second)
	viper.SetDefault("service.http.max-body-bytes", 1<<20)
	viper.SetDefault("service.http.rate-limit.burst", 40)
	viper.SetDefault("service.http.rate-limit.per-second", 20)
	viper.SetDefault("service.database.port", 5432)
	viper.SetDefault("service.redis.port", 6379)
	viper.SetDefault("service.redis.friends-ttl", 10*time.Minute)
	viper.SetDefault("auth.max-age", 15*time.Minute)
	viper.SetDefault("events.tags", defaultTags)
	viper.SetDefault("events.default-limit", 20)
	viper.SetDefault("events.max-limit", 100)
	viper.SetDefault("events.sweep-interval", time.Hour)
	viper.SetDefault("settings.qr.size", 512)
}

func loadSettings() (Settings, error) {
	loc, err := location.Load(viper.GetString("settings.timezone"))
	if err != nil {
		return Settings{}, fmt.Errorf("settings.timezone: %w", err)
	}

	settings := Settings{
		Debug:    viper.GetBool("settings.debug"),
		Location: loc,
		HTTP: HTTP{
			Addr:            viper.GetString("service.http.addr"),
			ReadTimeout:     viper.GetDuration("service.http.read-timeout"),
			WriteTimeout:    viper.GetDuration("service.http.write-timeout"),
			ShutdownTimeout: viper.GetDuration("service.http.shutdown-timeout"),
			MaxBodyBytes:    viper.GetInt64("service.http.max-body-bytes"),
			RateBurst:       viper.GetInt("service.http.rate-limit.burst"),
			RatePerSecond:   viper.GetFloat64("service.http.rate-limit.per-second"),
		},
		Auth: Auth{
			BotToken: viper.GetString("bot.token"),
			MaxAge:   viper.GetDuration("auth.max-age"),
		},
		Events: Events{
			Tags:          viper.GetStringSlice("events.tags"),
			DefaultLimit:  viper.GetInt("events.default-limit"),
			MaxLimit:      viper.GetInt("events.max-limit"),
			SweepInterval: viper.GetDuration("events.sweep-interval"),
		},
		QR: QR{
			LogoPath: viper.GetString("settings.qr.logo-path"),
			Size:     viper.GetInt("settings.qr.size"),
		},
	}
	if settings.Auth.BotToken == "" {
		return Settings{}, errors.New("bot.token is required to verify init data")
	}
	return settings, nil
}

func Get() *Config {
	initConfig()

	settings, err := loadSettings()
	if err != nil {
		panic(err)
	}

	err = logger.Init(logger.Config{
		Debug:        settings.Debug,
		JSON:         viper.GetBool("settings.log-json"),
		TimeLocation: settings.Location,
		LogToFile:    viper.GetBool("settings.log-to-file"),
		LogsDir:      viper.GetString("settings.logs-dir"),
	})
	if err != nil {
		panic(err)
	}

	gormConfig := &gorm.Config{TranslateError: true}
	if settings.Debug {
		gormConfig.Logger = gormLogger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			gormLogger.Config{
				SlowThreshold: time.Second,
				LogLevel:      gormLogger.Info,
				Colorful:      true,
			},
		)
	}

	dsn := fmt.Sprintf("user=%s password=%s dbname=%s host=%s port=%d sslmode=disable TimeZone=UTC",
		viper.GetString("service.database.user"),
		viper.GetString("service.database.password"),
		viper.GetString("service.database.name"),
		viper.GetString("service.database.host"),
		viper.GetInt("service.database.port"),
	)

	database, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		logger.Log.Panicf("Failed to connect to the database: %v", err)
	} else {
		logger.Log.Info("Successfully connected to the database")
	}

	errMigrate := database.AutoMigrate(postgresStorage.Migrations...)
	if errMigrate != nil {
		logger.Log.Panicf("Failed to migrate database: %v", errMigrate)
	}

	redisDB, err := redisStorage.New(redisStorage.Options{
		Host:       viper.GetString("service.redis.host"),
		Port:       viper.GetString("service.redis.port"),
		Password:   viper.GetString("service.redis.password"),
		DB:         viper.GetInt("service.redis.db"),
		FriendsTTL: viper.GetDuration("service.redis.friends-ttl"),
	})
	if err != nil {
		logger.Log.Panicf("Failed to connect to redis: %v", err)
	} else {
		logger.Log.Info("Successfully connected to redis")
	}

	return &Config{
		Database: database,
		Redis:    redisDB,
		Settings: settings,
	}
}
