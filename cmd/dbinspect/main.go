// Package main prints the contents of the configured store: every farm
// with its crops and their fertilizers. For the badger driver it also
// reports key counts per prefix, which covers the secondary indexes.
//
// Usage:
//
//	go run ./cmd/dbinspect
//	go run ./cmd/dbinspect --store badger --data-path /tmp/agrix
package main

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/agrix/agrix-server/internal/config"
	"github.com/agrix/agrix-server/internal/domain"
	"github.com/agrix/agrix-server/internal/store"
	"github.com/agrix/agrix-server/internal/store/backend"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	st, err := backend.Open(ctx, backend.Options{
		Driver:      backend.Driver(cfg.Storage.Driver),
		DataPath:    cfg.Storage.DataPath,
		PostgresDSN: cfg.Storage.PostgresDSN,
	}, nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}

	fmt.Printf("=== Store Inspection (%s) ===\n\n", cfg.Storage.Driver)
	err = inspect(ctx, st)
	_ = st.Close()
	if err != nil {
		log.Fatalf("Inspection failed: %v", err)
	}

	if backend.Driver(cfg.Storage.Driver) == backend.DriverBadger {
		if err := badgerKeyStats(backend.BadgerPath(cfg.Storage.DataPath)); err != nil {
			log.Fatalf("Failed to read badger keys: %v", err)
		}
	}
}

func inspect(ctx context.Context, st store.Store) error {
	farms, err := st.ListFarms(ctx)
	if err != nil {
		return err
	}
	fertilizers, err := st.ListFertilizers(ctx)
	if err != nil {
		return err
	}
	crops, err := st.ListCrops(ctx)
	if err != nil {
		return err
	}

	fertilizerNames := make(map[int64]string, len(fertilizers))
	for _, f := range fertilizers {
		fertilizerNames[f.ID] = f.Name
	}

	for _, farm := range farms {
		fmt.Printf("Farm #%d %q (size %.2f)\n", farm.ID, farm.Name, farm.Size)

		farmCrops, err := st.ListCropsByFarm(ctx, farm.ID)
		if err != nil {
			return err
		}
		if len(farmCrops) == 0 {
			fmt.Println("  (no crops)")
		}
		for _, c := range farmCrops {
			fmt.Printf("  Crop #%d %q area=%.2f planted=%s harvest=%s\n",
				c.ID, c.Name, c.PlantedArea, formatDate(c.PlantedDate), formatDate(c.HarvestDate))
			for _, fid := range c.FertilizerIDs {
				name, ok := fertilizerNames[fid]
				if !ok {
					name = "MISSING"
				}
				fmt.Printf("    Fertilizer #%d %s\n", fid, name)
			}
		}
	}

	fmt.Println()
	fmt.Printf("Farms:       %d\n", len(farms))
	fmt.Printf("Crops:       %d\n", len(crops))
	fmt.Printf("Fertilizers: %d\n", len(fertilizers))
	return nil
}

func formatDate(d domain.Date) string {
	if d.IsZero() {
		return "-"
	}
	return d.String()
}

// badgerKeyStats counts keys by their first two segments, e.g. "crop:idx".
func badgerKeyStats(path string) error {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return err
	}
	defer db.Close()

	counts := map[string]int{}
	err = db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.PrefetchValues = false
		it := txn.NewIterator(iterOpts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			parts := strings.SplitN(string(it.Item().Key()), ":", 3)
			prefix := parts[0]
			if len(parts) > 2 && parts[1] == "idx" {
				prefix += ":idx"
			}
			counts[prefix]++
		}
		return nil
	})
	if err != nil {
		return err
	}

	prefixes := make([]string, 0, len(counts))
	for p := range counts {
		prefixes = append(prefixes, p)
	}
	sort.Strings(prefixes)

	fmt.Println()
	fmt.Println("=== Badger keys ===")
	for _, p := range prefixes {
		fmt.Printf("%-16s %d\n", p, counts[p])
	}
	return nil
}
