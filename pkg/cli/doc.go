// Package cli implements the parse-analytics command-line tool.
//
// # Commands
//
// event: Track a custom event
//
//	parse-analytics event \
//		-name signup \
//		-dim priceRange=1000-1500 \
//		-dim source=craigslist \
//		-repeat 3
//
// app-opened: Track an app open
//
//	parse-analytics app-opened                      # organic open, failures exit non-zero
//	parse-analytics app-opened -best-effort         # organic open, failures only logged
//	parse-analytics app-opened -push-hash abc123    # open from a push, always best effort
//	parse-analytics app-opened -push-data '{"push_hash":"abc123","alert":"hi"}'
//
// # Configuration
//
// The Parse server, session source, and observability settings come from
// the file given with -config and PARSE_* environment variables; see
// pkg/config.
//
//	PARSE_SERVER_URL=https://parse.example.com/parse \
//	PARSE_APPLICATION_ID=myAppId \
//	parse-analytics -config parse-analytics.yaml event -name signup
//
// Each command waits for its tracking handles before exiting.
package cli
