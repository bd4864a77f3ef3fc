// Command fwi submits fire-weather readings to the prediction relay and shows the
// recorded prediction history.
//
// Usage:
//
//	fwi predict -temperature 29 -rh 57 -ws 18 -rain 0 -ffmc 65.7 -dmc 3.4 -isi 1.3 -classes 0 -region bejaia
//	fwi batch -f readings.yaml
//	fwi history
//	fwi chart -format svg -o history.svg
//
// Environment variables:
//
//	FWI_RELAY_URL      - Relay base URL (default: http://localhost:8080)
//	FWI_TIMEOUT        - Timeout for one prediction (default: 90s)
//	FWI_STORE          - History backend: memory, sqlite, redis (default: sqlite)
//	FWI_HISTORY_DB     - SQLite history file (default: <user config dir>/fwi/history.db)
//	FWI_REDIS_ADDR     - Redis address (default: localhost:6379)
//	FWI_REDIS_PASSWORD - Redis password
//	FWI_REDIS_DB       - Redis database number (default: 0)
//	FWI_REDIS_KEY      - Redis list key (default: fwi:predictions)
//	FWI_REDIS_TTL      - History expiry after the last write (default: none)
//	LOG_LEVEL          - Logging level: debug, info, warn, error (default: warn)
//	LOG_FORMAT         - Logging format: text, json (default: text)
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// version is set via ldflags at build time
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{stdout: os.Stdout, stderr: os.Stderr}
	code := a.run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
