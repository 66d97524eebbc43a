// Package config handles configuration loading for the antecedentes tools.
//
// # Overview
//
// Two configurations live here: Client for the operator CLI and Server for
// the development API backend. Both are read from YAML (.yaml, .yml) or
// TOML (.toml) files, chosen by extension.
//
// # Environment
//
// Before a file is decoded, ./.env (or the file named by
// ANTECEDENTES_ENV_FILE) is loaded into the environment. Variables that are
// already set win. Configuration values can then reference them:
//
//	auth:
//	  jwt_secret: "${ANTECEDENTES_JWT_SECRET}"
//
// The client also honours ANTECEDENTES_API_URL, ANTECEDENTES_LOG_LEVEL and
// ANTECEDENTES_CONFIG directly.
//
// # Client
//
//	api:
//	  base_url: "http://localhost:8000"
//	  timeout: "15s"
//	session:
//	  path: "~/.config/antecedentes/session.db"
//	search:
//	  page_size: 10
//	wizard:
//	  lookup_debounce: "500ms"
//	  lookup_min_length: 7
//
// # Server
//
//	server:
//	  http_addr: "127.0.0.1:8000"
//	database:
//	  path: "./antecedentes.db"
//	files:
//	  dir: "./files"
//	auth:
//	  jwt_secret: "${ANTECEDENTES_JWT_SECRET}"  # at least 32 bytes
//	  token_ttl: "8h"
//	bootstrap:
//	  admin_username: "admin"
//	  admin_password: "${ANTECEDENTES_ADMIN_PASSWORD}"
//
// Duration values use Go's time.ParseDuration syntax.
package config
