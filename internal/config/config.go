package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"strings" // strings splits list-valued variables
	"time"    // time parses duration-valued variables

	"github.com/joho/godotenv" // godotenv loads .env files for local development
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, durations for the
// dispatch timing knobs.
type Config struct {
	Env             string        // application environment (e.g. "dev", "prod")
	Port            string        // HTTP port to listen on
	DBUser          string        // database username
	DBPass          string        // database password (optional)
	DBHost          string        // database host address
	DBPort          string        // database port number
	DBName          string        // database name
	JWTSecret       string        // secret used to sign JWTs
	PartnerTTLMin   int           // partner access token time-to-live in minutes
	BcryptCost      int           // bcrypt cost for connect-code hashing
	BookingWindow   time.Duration // partner decision window per booking
	SweepInterval   time.Duration // period between timeout sweeps
	NotifyTimeout   time.Duration // upper bound on a single notification send
	AdminChatIDs    []int64       // operations chats alerted on delivery failures
	RunNotifyAudit  bool          // run the bundled notify.outbound audit consumer
}

// Load reads configuration values from environment variables and returns a
// Config.  A .env file is loaded first when present; like the production
// deployments, real environment variables always take precedence because
// godotenv.Load never overrides existing values.  Required variables are
// enforced by must() and missing values cause the program to exit with a
// fatal log message.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Env:            must("APP_ENV"),      // environment (dev/test/prod)
		Port:           must("APP_PORT"),     // port to bind the HTTP server
		DBUser:         must("DB_USER"),      // database user
		DBPass:         os.Getenv("DB_PASS"), // database password (empty allowed)
		DBHost:         must("DB_HOST"),      // database host
		DBPort:         must("DB_PORT"),      // database port
		DBName:         must("DB_NAME"),      // database name
		JWTSecret:      must("JWT_SECRET"),   // secret used for signing JWTs
		PartnerTTLMin:  mustInt("PARTNER_TOKEN_TTL_MIN"),
		BcryptCost:     mustInt("BCRYPT_COST"),
		BookingWindow:  dur("BOOKING_WINDOW", 5*time.Minute),
		SweepInterval:  dur("SWEEP_INTERVAL", 30*time.Second),
		NotifyTimeout:  dur("NOTIFY_TIMEOUT", 3*time.Second),
		AdminChatIDs:   chatIDs("ADMIN_CHAT_IDS"),
		RunNotifyAudit: os.Getenv("NOTIFY_AUDIT_CONSUMER") == "true",
	}
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

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// dur parses an optional duration variable, falling back to def when the
// variable is unset or malformed.
func dur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("config: invalid duration for %s: %q, using %s", key, v, def)
		return def
	}
	return d
}

// chatIDs parses a comma-separated list of chat identifiers.  Malformed
// entries are skipped so one typo does not disable all alerting.
func chatIDs(key string) []int64 {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var out []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			log.Printf("config: skipping invalid chat id %q in %s", part, key)
			continue
		}
		out = append(out, id)
	}
	return out
}
