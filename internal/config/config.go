package config // package config loads application configuration from environment variables

import (
    "log" // log is used to report configuration errors and halt execution
    "os"  // os provides access to environment variables
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable. Infrastructure settings (port, database)
// are required at startup; the identity-provider and sync secrets are
// optional here and enforced per request, so a misconfigured secret
// surfaces as an explicit 500 from the endpoint that needs it instead
// of a dead process.
type Config struct {
    Env    string // application environment (e.g. "dev", "prod")
    Port   string // HTTP port to listen on
    DBUser string // database username
    DBPass string // database password (optional)
    DBHost string // database host address
    DBPort string // database port number
    DBName string // database name

    ClerkSecretKey     string // secret key for the identity provider's backend API
    ClerkAPIURL        string // base URL of the identity provider's backend API
    ClerkJWKSURL       string // URL publishing the provider's token signing keys
    ClerkWebhookSecret string // signing secret for inbound webhook deliveries

    AdminUserID string // subject id that is always granted ADMIN

    SyncURL    string // outbound user-sync mirror endpoint (empty disables)
    SyncSecret string // shared secret for the sync mirror, sent and required as x-sync-secret
}

// Load reads configuration values from environment variables and returns
// a Config. Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
    return Config{
        Env:    must("APP_ENV"),      // environment (dev/test/prod)
        Port:   must("APP_PORT"),     // port to bind the HTTP server
        DBUser: must("DB_USER"),      // database user
        DBPass: os.Getenv("DB_PASS"), // database password (empty allowed)
        DBHost: must("DB_HOST"),      // database host
        DBPort: must("DB_PORT"),      // database port
        DBName: must("DB_NAME"),      // database name

        ClerkSecretKey:     os.Getenv("CLERK_SECRET_KEY"),
        ClerkAPIURL:        getenv("CLERK_API_URL", "https://api.clerk.com/v1"),
        ClerkJWKSURL:       os.Getenv("CLERK_JWKS_URL"),
        ClerkWebhookSecret: os.Getenv("CLERK_WEBHOOK_SECRET"),

        AdminUserID: os.Getenv("ADMIN_USER_ID"),

        SyncURL:    os.Getenv("AWS_USER_SYNC_URL"),
        SyncSecret: os.Getenv("AWS_USER_SYNC_SECRET"),
    }
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}
