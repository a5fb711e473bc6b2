// gencsv writes synthetic order data for benchmarking sievik. Output is
// plain unquoted CSV, which is what the engine's hot paths are built for.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"
)

var (
	rows    = flag.Int("rows", 1_000_000, "number of data rows")
	outPath = flag.String("out", "fixtures/ecommerce_1m.csv", "output CSV path")
	seed    = flag.Int64("seed", 42, "random seed")
)

var (
	countries = []string{"UK", "US", "DE", "FR", "ES", "IT", "NL", "CA", "AU", "SE"}
	statuses  = []string{"pending", "processing", "completed", "cancelled", "refunded"}
)

func main() {
	flag.Parse()
	if err := generate(*outPath, *rows, *seed); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("wrote %d rows to %s\n", *rows, *outPath)
}

func generate(path string, n int, seed int64) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriterSize(f, 1<<20)
	if _, err := w.WriteString("order_id,user_id,product_id,quantity,price_minor,discount_minor,total_minor,status,country,created_at\n"); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	rng := rand.New(rand.NewSource(seed))
	base := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 1; i <= n; i++ {
		quantity := rng.Intn(5) + 1
		price := rng.Intn(9000) + 1000 // minor units
		discount := 0
		if rng.Float64() < 0.15 {
			discount = rng.Intn(price/5 + 1)
		}
		total := price*quantity - discount
		if total < 0 {
			total = 0
		}
		created := base.Add(time.Duration(rng.Intn(365*24)) * time.Hour)

		if _, err := fmt.Fprintf(w, "ORD%09d,USR%06d,PRD%05d,%d,%04d,%d,%d,%s,%s,%s\n",
			i,
			rng.Intn(200_000)+1,
			rng.Intn(20_000)+1,
			quantity,
			price,
			discount,
			total,
			statuses[rng.Intn(len(statuses))],
			countries[rng.Intn(len(countries))],
			created.Format(time.RFC3339),
		); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}
