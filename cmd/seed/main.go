// Package main loads a small demo data set through the managers, so the
// records are created exactly as the API would create them.
//
// Usage:
//
//	go run ./cmd/seed
//	STORE_DRIVER=badger DATA_PATH=/tmp/agrix go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/agrix/agrix-server/internal/config"
	"github.com/agrix/agrix-server/internal/domain"
	"github.com/agrix/agrix-server/internal/logger"
	"github.com/agrix/agrix-server/internal/service"
	"github.com/agrix/agrix-server/internal/store/backend"
)

type seedCrop struct {
	name        string
	area        float64
	planted     string
	harvest     string
	fertilizers []int // indexes into seedFertilizers
}

type seedFarm struct {
	name  string
	size  float64
	crops []seedCrop
}

var seedFertilizers = []service.CreateFertilizerRequest{
	{Name: "Urea", Brand: "Yara", Composition: "46-0-0"},
	{Name: "NPK 10-10-10", Brand: "Heringer", Composition: "10-10-10"},
	{Name: "Superfosfato Simples", Brand: "Mosaic", Composition: "0-18-0"},
}

var seedFarms = []seedFarm{
	{
		name: "Green Acres",
		size: 100,
		crops: []seedCrop{
			{name: "Corn", area: 10, planted: "2024-01-01", harvest: "2024-06-01", fertilizers: []int{0}},
			{name: "Soybean", area: 25.5, planted: "2024-02-15", harvest: "2024-07-20", fertilizers: []int{1, 2}},
		},
	},
	{
		name: "Fazenda Boa Esperança",
		size: 320.75,
		crops: []seedCrop{
			{name: "Coffee", area: 120, planted: "2023-10-10", harvest: "2024-09-30", fertilizers: []int{1}},
			{name: "Sugarcane", area: 80},
		},
	},
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Environment: cfg.App.Environment,
	}).Component("seed").WithField("driver", cfg.Storage.Driver)

	ctx := context.Background()

	st, err := backend.Open(ctx, backend.Options{
		Driver:      backend.Driver(cfg.Storage.Driver),
		DataPath:    cfg.Storage.DataPath,
		PostgresDSN: cfg.Storage.PostgresDSN,
	}, log.Logger)
	if err != nil {
		log.WithError(err).Fatal("open store")
	}
	defer st.Close()

	existing, err := st.ListFarms(ctx)
	if err != nil {
		log.WithError(err).Fatal("list farms")
	}
	if len(existing) > 0 {
		log.Info("store already has farms, nothing to seed", "farms", len(existing))
		return
	}

	farms := service.NewFarmService(st, nil, nil, log.Logger)
	crops := service.NewCropService(st, nil, nil, log.Logger)
	fertilizers := service.NewFertilizerService(st, nil, nil, log.Logger)

	fertilizerIDs := make([]int64, len(seedFertilizers))
	for i, req := range seedFertilizers {
		f, err := fertilizers.CreateFertilizer(ctx, req)
		if err != nil {
			log.WithError(err).Fatal("create fertilizer", "name", req.Name)
		}
		fertilizerIDs[i] = f.ID
	}

	for _, sf := range seedFarms {
		farm, err := farms.CreateFarm(ctx, service.CreateFarmRequest{Name: sf.name, Size: sf.size})
		if err != nil {
			log.WithError(err).Fatal("create farm", "name", sf.name)
		}

		for _, sc := range sf.crops {
			crop, err := farms.CreateFarmCrop(ctx, farm.ID, service.CreateCropRequest{
				Name:        sc.name,
				PlantedArea: sc.area,
				PlantedDate: mustDate(log, sc.planted),
				HarvestDate: mustDate(log, sc.harvest),
			})
			if err != nil {
				log.WithError(err).Fatal("create crop", "name", sc.name)
			}

			for _, idx := range sc.fertilizers {
				if _, err := crops.AssociateFertilizer(ctx, crop.ID, fertilizerIDs[idx]); err != nil {
					log.WithError(err).Fatal("associate fertilizer", "crop", crop.ID)
				}
			}
		}
	}

	log.Info("seeded demo data",
		"farms", len(seedFarms),
		"fertilizers", len(seedFertilizers),
	)
}

func mustDate(log *logger.Logger, s string) domain.Date {
	if s == "" {
		return domain.Date{}
	}
	d, err := domain.ParseDate(s)
	if err != nil {
		log.WithError(err).Fatal("bad seed date", "value", s)
	}
	return d
}
