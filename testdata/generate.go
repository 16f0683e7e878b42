//go:build ignore

// Generates sample pipeline nomination data for trying askdata:
//
//	go run testdata/generate.go
//	askdata --data-path testdata/nominations.parquet --date-col gas_day
package main

import (
	"encoding/csv"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/parquet-go/parquet-go"
)

type Nomination struct {
	PipelineName      string    `parquet:"pipeline_name"`
	StateAbb          string    `parquet:"state_abb"`
	CategoryShort     string    `parquet:"category_short"`
	RecDelSign        int32     `parquet:"rec_del_sign"`
	ScheduledQuantity *float64  `parquet:"scheduled_quantity,optional"`
	GasDay            time.Time `parquet:"gas_day,timestamp(millisecond)"`
}

const rows = 2000

var (
	pipelines  = []string{"Gulf South", "Transco", "Texas Eastern", "ANR", "NGPL"}
	states     = []string{"TX", "LA", "OK", "MS", "AL", "PA"}
	categories = []string{"LDC", "Power", "Industrial", "Interconnect", "Storage"}
)

func main() {
	rng := rand.New(rand.NewPCG(42, 7))
	start := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)

	data := make([]Nomination, rows)
	for i := range data {
		n := Nomination{
			PipelineName:  pipelines[rng.IntN(len(pipelines))],
			StateAbb:      states[rng.IntN(len(states))],
			CategoryShort: categories[rng.IntN(len(categories))],
			RecDelSign:    int32(1 - 2*rng.IntN(2)),
			GasDay:        start.AddDate(0, 0, rng.IntN(3*365)),
		}
		// About 2% of quantities are missing and a handful are extreme.
		switch p := rng.Float64(); {
		case p < 0.02:
		case p < 0.025:
			q := 50000 + rng.Float64()*50000
			n.ScheduledQuantity = &q
		default:
			q := float64(int(rng.NormFloat64()*800 + 5000))
			n.ScheduledQuantity = &q
		}
		data[i] = n
	}

	dir := filepath.Dir(os.Args[0])
	if wd, err := os.Getwd(); err == nil {
		dir = filepath.Join(wd, "testdata")
	}
	writeParquet(filepath.Join(dir, "nominations.parquet"), data)
	writeCSV(filepath.Join(dir, "nominations.csv"), data)
	log.Printf("Generated nominations.parquet and nominations.csv with %d rows in %s", rows, dir)
}

func writeParquet(path string, data []Nomination) {
	file, err := os.Create(path)
	if err != nil {
		log.Fatal(err)
	}
	defer file.Close()

	writer := parquet.NewGenericWriter[Nomination](file)
	if _, err := writer.Write(data); err != nil {
		log.Fatal(err)
	}
	if err := writer.Close(); err != nil {
		log.Fatal(err)
	}
}

func writeCSV(path string, data []Nomination) {
	file, err := os.Create(path)
	if err != nil {
		log.Fatal(err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	_ = w.Write([]string{"pipeline_name", "state_abb", "category_short", "rec_del_sign", "scheduled_quantity", "gas_day"})
	for _, n := range data {
		qty := ""
		if n.ScheduledQuantity != nil {
			qty = strconv.FormatFloat(*n.ScheduledQuantity, 'f', -1, 64)
		}
		_ = w.Write([]string{n.PipelineName, n.StateAbb, n.CategoryShort,
			strconv.Itoa(int(n.RecDelSign)), qty, n.GasDay.Format("2006-01-02")})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		log.Fatal(err)
	}
}
