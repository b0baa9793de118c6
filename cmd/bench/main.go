package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aretw0/argumentaire"
	"github.com/aretw0/argumentaire/pkg/adapters/fs"
	"github.com/aretw0/argumentaire/pkg/core"
)

func main() {
	count := flag.Int("count", 1000, "Number of entries in the generated store")
	upserts := flag.Int("upserts", 100, "Number of upserts to time")
	workers := flag.Int("workers", 8, "Concurrent upsert workers")
	keep := flag.Bool("keep", false, "Keep the benchmark directory after running")
	flag.Parse()

	// 1. Setup Namespace
	benchDir, err := os.MkdirTemp("", "argumentaire_bench_")
	if err != nil {
		panic(err)
	}
	defer func() {
		if !*keep {
			os.RemoveAll(benchDir)
		} else {
			fmt.Printf("Keeping bench dir: %s\n", benchDir)
		}
	}()

	ctx := context.Background()

	// Writing the store directly is faster than going through the service.
	fmt.Printf("Generating %d entries in %s...\n", *count, benchDir)
	startGen := time.Now()
	store, err := fs.NewStore(fs.Config{Path: filepath.Join(benchDir, "argumentaires.json")})
	if err != nil {
		panic(err)
	}
	records := make([]core.Record, 0, *count)
	for i := 0; i < *count; i++ {
		records = append(records, core.Record{
			Phrase:       fmt.Sprintf("Phrase %d", i),
			Argumentaire: fmt.Sprintf("Argumentaire de benchmark %d.", i),
			Sources:      []core.Source{{Titre: "Benchmark", URL: fmt.Sprintf("https://example.org/%d", i)}},
		})
	}
	if err := store.Save(ctx, records); err != nil {
		panic(err)
	}
	fmt.Printf("Generation took: %v\n", time.Since(startGen))

	// 2. Initialize Service (startup merge included)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
	startOpen := time.Now()
	service, err := argumentaire.New(benchDir,
		argumentaire.WithLogger(logger),
		argumentaire.WithAutoInit(true),
		argumentaire.WithLegacyFile(""),
	)
	if err != nil {
		panic(err)
	}
	openDuration := time.Since(startOpen)

	fmt.Println("Running ListAll...")
	startList := time.Now()
	list, err := service.ListAll(ctx)
	if err != nil {
		panic(err)
	}
	listDuration := time.Since(startList)

	// Every upsert rewrites the whole store, so this is the number that grows with -count.
	fmt.Printf("Running %d upserts with %d workers...\n", *upserts, *workers)
	jobs := make(chan int)
	var wg sync.WaitGroup
	startUpsert := time.Now()
	for w := 0; w < *workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if _, err := service.Upsert(ctx, fmt.Sprintf("Nouvelle phrase %d", i), "Corps.", nil); err != nil {
					panic(err)
				}
			}
		}()
	}
	for i := 0; i < *upserts; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	upsertDuration := time.Since(startUpsert)

	final, err := service.ListAll(ctx)
	if err != nil {
		panic(err)
	}

	fmt.Printf("--------------------------------------------------\n")
	fmt.Printf("Benchmark Result (%d entries):\n", len(list))
	fmt.Printf("  Open+Rebuild: %v\n", openDuration)
	fmt.Printf("  ListAll:      %v\n", listDuration)
	fmt.Printf("  Upserts:      %v (%v/op)\n", upsertDuration, upsertDuration/time.Duration(max(*upserts, 1)))
	fmt.Printf("  Final size:   %d\n", len(final))
	fmt.Printf("--------------------------------------------------\n")
}
