// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse parses server configuration from CLI flags with environment
variable fallbacks.

Required settings:

  - DATABASE_URL (-d): connection string (sqlite path or postgres URL)
  - ORGANIZER_KEY_SALT (--organizer-salt): secret for organizer key HMAC

Optional settings:

  - PORT (-p): server port (default: 3319)
  - DATABASE_TYPE (-t): "sqlite" (default) or "postgres"
  - RESET_ORGANIZER_ONLY (--reset-organizer-only): when true, session reset
    requires the organizer key instead of any valid invite token
*/
package cliparse
