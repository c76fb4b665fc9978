// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Environment variables are read first (via cleanenv, including defaults), then
CLI flags override them. main loads an optional .env file before calling
ParseFlags.

# Config Fields

  - Env: local or prod, selects log format (default: local)
  - Port: Server listen port (default: 3318)
  - DatabaseURL: PostgreSQL connection string or SQLite path (required)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - SessionSecret: Secret for session cookies and CSRF tokens (required, 16+ bytes)
  - SessionTTL: Session lifetime (default: 12h)
  - BcryptCost: Password hashing cost (default: 10)
  - CookieSecure: Mark session cookies Secure (default: false)
  - AllowedOrigins: CORS origins, comma separated

# CLI Flags

	-p               Server port
	-d               Database URL
	-t               Database type
	-env             Environment
	-session-secret  Session signing secret

# Environment Variables

	APP_ENV         → -env
	PORT            → -p
	DATABASE_URL    → -d
	DATABASE_TYPE   → -t
	SESSION_SECRET  → -session-secret
	SESSION_TTL, BCRYPT_COST, COOKIE_SECURE, ALLOWED_ORIGINS

CLI flags take precedence over environment variables.
*/
package cliparse
