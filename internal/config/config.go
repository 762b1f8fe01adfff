package config // package config loads application configuration from environment variables

import (
	"log" // log is used to report configuration errors and halt execution
	"os"  // os provides access to environment variables
	"strings"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBDriver       string // "mysql" or "sqlite"
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	DBPath         string // sqlite database file
	JWTSecret      string // secret used to sign JWTs
	TokenTTLHours  int    // access token time-to-live in hours
	BcryptCost     int    // bcrypt cost for password hashing
	AMQPURL        string // RabbitMQ url for activity events, empty disables them
	ActivityLogDir string // directory the activity consumer writes to
	CORSOrigins    []string
}

// Debug reports whether error responses may carry internal error details.
func (c Config) Debug() bool { return c.Env == "dev" }

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  The MySQL connection
// settings are only required when DB_DRIVER is mysql.
func Load() Config {
	cfg := Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBDriver:       strings.ToLower(getenv("DB_DRIVER", "mysql")),
		DBPass:         os.Getenv("DB_PASS"), // empty allowed
		DBPath:         getenv("DB_PATH", "data/timetracker.db"),
		JWTSecret:      must("JWT_SECRET"),
		TokenTTLHours:  envInt("TOKEN_TTL_HOURS", 72),
		BcryptCost:     envInt("BCRYPT_COST", 10),
		AMQPURL:        amqpURL(),
		ActivityLogDir: getenv("ACTIVITY_LOG_DIR", "logs"),
		CORSOrigins:    splitList(getenv("CORS_ORIGINS", "*")),
	}
	switch cfg.DBDriver {
	case "mysql":
		cfg.DBUser = must("DB_USER")
		cfg.DBHost = must("DB_HOST")
		cfg.DBPort = must("DB_PORT")
		cfg.DBName = must("DB_NAME")
	case "sqlite":
	default:
		log.Fatalf("unsupported DB_DRIVER: %q", cfg.DBDriver)
	}
	if cfg.TokenTTLHours <= 0 {
		log.Fatalf("invalid TOKEN_TTL_HOURS: %d", cfg.TokenTTLHours)
	}
	return cfg
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// amqpURL returns RABBITMQ_URL or its AMQP_URL alias.  Activity events are
// switched off when both are empty.
func amqpURL() string {
	if v := os.Getenv("RABBITMQ_URL"); v != "" {
		return v
	}
	return os.Getenv("AMQP_URL")
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
