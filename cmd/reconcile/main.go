package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/tdhoang/stock-ledger/internal/adapter/storage"
	"github.com/tdhoang/stock-ledger/internal/config"
	"github.com/tdhoang/stock-ledger/internal/logger"
)

// Maintenance sweep: replay-check every product of an organization against
// its transaction log. Exits non-zero if any product's quantity disagrees
// with the sum of its deltas.
func main() {
	orgID := flag.String("org", "", "organization id to reconcile (required)")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall deadline")
	flag.Parse()

	if *orgID == "" {
		fmt.Fprintln(os.Stderr, "usage: reconcile -org <organization-id>")
		os.Exit(2)
	}

	cfg := config.Load()

	zlog, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		zlog.Fatal("failed to open mysql", zap.Error(err))
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		zlog.Fatal("failed to ping mysql", zap.Error(err))
	}

	repo := storage.NewMySQLAdapter(db)

	ids, err := repo.ListProductIDs(ctx, *orgID)
	if err != nil {
		zlog.Fatal("failed to list products", zap.Error(err))
	}

	drifted := 0
	for _, productID := range ids {
		inv, err := repo.GetInventory(ctx, *orgID, productID)
		if err != nil {
			zlog.Fatal("failed to read inventory", zap.String("product_id", productID), zap.Error(err))
		}
		sum, err := repo.SumDeltas(ctx, *orgID, productID)
		if err != nil {
			zlog.Fatal("failed to sum deltas", zap.String("product_id", productID), zap.Error(err))
		}

		if inv.Quantity != sum {
			drifted++
			zlog.Error("ledger drift",
				zap.String("product_id", productID),
				zap.Int("quantity", inv.Quantity),
				zap.Int("delta_sum", sum))
		} else {
			zlog.Debug("consistent",
				zap.String("product_id", productID),
				zap.Int("quantity", inv.Quantity))
		}
	}

	zlog.Info("reconciliation finished",
		zap.String("organization_id", *orgID),
		zap.Int("products", len(ids)),
		zap.Int("drifted", drifted))

	if drifted > 0 {
		os.Exit(1)
	}
}
