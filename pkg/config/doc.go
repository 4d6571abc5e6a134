// Package config loads parse-analytics configuration.
//
// # Overview
//
// Values come from three layers, later layers winning: built-in defaults,
// an optional YAML file, and PARSE_* environment variables. The result is
// validated before it is returned.
//
// # Configuration Structure
//
// Parse server settings:
//
//	PARSE_SERVER_URL="https://parse.example.com/parse"
//	PARSE_APPLICATION_ID="myAppId"
//	PARSE_CLIENT_KEY="myClientKey"
//	PARSE_INSTALLATION_ID=""  # generated when empty
//	PARSE_TIMEOUT="10s"
//
// Session settings:
//
//	PARSE_SESSION_PROVIDER="redis"  # none, static, redis
//	PARSE_SESSION_TOKEN="r:abc"     # static provider
//	PARSE_SESSION_SCOPE="current"
//	PARSE_REDIS_URL="redis://localhost:6379"
//	PARSE_REDIS_KEY_PREFIX="parse:session:"
//	PARSE_SESSION_CACHE_TTL="1m"    # 0 disables caching
//
// Observability settings:
//
//	PARSE_LOG_LEVEL="info"  # trace, debug, info, warn, error
//	PARSE_METRICS_ENABLED="true"
//	PARSE_OTEL_ENABLED="true"
//	PARSE_OTEL_ENDPOINT="otel-collector:4317"
//
// The same settings in YAML:
//
//	parse:
//	  server_url: https://parse.example.com/parse
//	  application_id: myAppId
//	  timeout: 5s
//	session:
//	  provider: redis
//	  redis_url: redis://localhost:6379
//	observability:
//	  log_level: debug
//
// # Usage Example
//
//	cfg, err := config.LoadConfig("parse-analytics.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	ctrl, err := controller.New(cfg.Parse.Controller())
package config
