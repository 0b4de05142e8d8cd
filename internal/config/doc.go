// Package config loads runtime configuration for the knaughts bot.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. A dotenv file (-e/-env, or ./.env when present) and the process
//     environment, read through godotenv. Variables already set in the
//     environment win over the file.
//  3. Optional JSON file selected via -c or -config.
//  4. Command-line flags, which override everything else.
//
// Environment variables
//
//	KNAUGHTS_DB_BASE_URL                  backend base URL
//	KNAUGHTS_DB_IDENTITY                  admin identity
//	KNAUGHTS_DB_PASSWORD                  admin password
//	KNAUGHTS_DB_ADMIN_REFRESH_INTERVAL    token refresh interval (milliseconds)
//	KNAUGHTS_DB_AUTH_COLLECTION           auth path prefix, default /api/admins
//	KNAUGHTS_KEY_SALT                     argon2 salt for passphrase keys
//	KNAUGHTS_HEALTH_ADDR                  gRPC health listen address
//	KNAUGHTS_LOG_FORMAT                   json or text
//	KNAUGHTS_IMG_LOGO, KNAUGHTS_IMG_QUESTION, KNAUGHTS_IMG_SAD
//
// # JSON schema
//
// Durations use timex.Duration, so values can be strings like "30s" or
// integer nanoseconds:
//
//	{
//	  "base_url": "http://127.0.0.1:8090",
//	  "identity": "admin@example.com",
//	  "refresh_interval": "30m",
//	  "request_timeout": "10s",
//	  "session_timeout": "30s",
//	  "health_addr": "127.0.0.1:50052",
//	  "log_format": "json",
//	  "button_namespace": "knaughts"
//	}
//
// The admin password is deliberately not accepted as a flag.
package config
