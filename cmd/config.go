package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"pharmadelivery/internal/core/application/usecases/commands"
	"pharmadelivery/internal/core/application/usecases/queries"
	"pharmadelivery/internal/core/domain/model/order"
	"pharmadelivery/internal/jobs"
	"pharmadelivery/internal/pkg/errs"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	DefaultChangeFeedChannel = "order_changes"
)

type Config struct {
	HTTPPort string

	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	SQLitePath string

	JWTSecret string

	LogFile  string
	LogLevel slog.Level

	ReadTimeout       time.Duration
	StrictTransitions bool
	WriteRetries      int
	ChangeFeedChannel string

	RunAuditSchedule    string
	RunDistanceSchedule string
}

// LoadConfig reads the configuration from the environment. A .env file in
// the working directory is loaded first when present; real environment
// variables win over it.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		HTTPPort:            getEnv("HTTP_PORT", "8080"),
		DBDriver:            strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
		DBHost:              getEnv("DB_HOST", ""),
		DBPort:              getEnv("DB_PORT", "5432"),
		DBUser:              getEnv("DB_USER", ""),
		DBPassword:          getEnv("DB_PASSWORD", ""),
		DBName:              getEnv("DB_NAME", ""),
		DBSslMode:           getEnv("DB_SSLMODE", "disable"),
		SQLitePath:          getEnv("SQLITE_PATH", "pharmadelivery.db"),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		LogFile:             getEnv("LOG_FILE", ""),
		ChangeFeedChannel:   getEnv("CHANGE_FEED_CHANNEL", DefaultChangeFeedChannel),
		RunAuditSchedule:    getEnv("RUN_AUDIT_SCHEDULE", jobs.DefaultAuditSchedule),
		RunDistanceSchedule: getEnv("RUN_DISTANCE_SCHEDULE", jobs.DefaultDistanceSchedule),
	}

	var errList []error
	var err error
	if err = cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("LOG_LEVEL", err))
	}
	if cfg.ReadTimeout, err = getEnvDuration("READ_TIMEOUT", queries.DefaultReadTimeout); err != nil {
		errList = append(errList, err)
	}
	if cfg.StrictTransitions, err = getEnvBool("ORDER_TRANSITIONS_STRICT", false); err != nil {
		errList = append(errList, err)
	}
	if cfg.WriteRetries, err = getEnvInt("ORDER_WRITE_RETRIES", commands.DefaultWriteAttempts); err != nil {
		errList = append(errList, err)
	}
	if err = errors.Join(errList...); err != nil {
		return Config{}, err
	}

	if err = cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the required keys for the selected driver.
func (c Config) Validate() error {
	var errList []error
	if c.JWTSecret == "" {
		errList = append(errList, errs.NewValueIsRequiredError("JWT_SECRET"))
	}
	if c.WriteRetries < 1 {
		errList = append(errList, errs.NewValueIsOutOfRangeError("ORDER_WRITE_RETRIES", c.WriteRetries, 1, 100))
	}
	if c.ReadTimeout <= 0 {
		errList = append(errList, errs.NewValueIsInvalidError("READ_TIMEOUT"))
	}

	switch c.DBDriver {
	case DriverPostgres:
		for key, value := range map[string]string{"DB_HOST": c.DBHost, "DB_USER": c.DBUser, "DB_NAME": c.DBName} {
			if value == "" {
				errList = append(errList, errs.NewValueIsRequiredError(key))
			}
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			errList = append(errList, errs.NewValueIsRequiredError("SQLITE_PATH"))
		}
	default:
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause(
			"DB_DRIVER", fmt.Errorf("%q is not one of %s, %s", c.DBDriver, DriverPostgres, DriverSQLite),
		))
	}

	return errors.Join(errList...)
}

// PostgresDSN is the key/value connection string shared by gorm and the
// LISTEN/NOTIFY listener.
func (c Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

func (c Config) TransitionPolicy() order.TransitionPolicy {
	if c.StrictTransitions {
		return order.StrictPolicy
	}
	return order.PermissivePolicy
}

func (c Config) Schedules() jobs.Schedules {
	return jobs.Schedules{Audit: c.RunAuditSchedule, Distance: c.RunDistanceSchedule}
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return strings.TrimSpace(value)
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, errs.NewValueIsInvalidErrorWithCause(key, err)
	}
	return n, nil
}

func getEnvBool(key string, defaultVal bool) (bool, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return false, errs.NewValueIsInvalidErrorWithCause(key, err)
	}
	return b, nil
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return 0, errs.NewValueIsInvalidErrorWithCause(key, err)
	}
	return d, nil
}
