// Command askdata answers plain-English questions about a CSV, Excel or
// Parquet file.
//
// Usage:
//
//	askdata --data-path nominations.parquet
//	askdata --data-path nominations.csv -q "sum scheduled_quantity by state_abb"
//	askdata schema --data-path nominations.xlsx --sheet Data
package main

import (
	"context"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := Execute(ctx)
	stop()
	os.Exit(code)
}
