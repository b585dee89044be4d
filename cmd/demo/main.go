// Package main runs the valuation core end to end against the in-memory
// backend: rate-pending purchase, fixing event, credit-gated sale, a
// quality return, and the alert board.
package main

import (
	"context"
	"fmt"
	"os"

	appctx "wireline/internal/core/context"
	"wireline/internal/core/id"
	"wireline/internal/core/types"
	"wireline/internal/domain/alerts"
	"wireline/internal/domain/calc"
	"wireline/internal/domain/catalogs/item"
	"wireline/internal/domain/catalogs/party"
	"wireline/internal/domain/documents/commercial"
	"wireline/internal/domain/returns"
	"wireline/internal/domain/suda"
	"wireline/internal/infrastructure/storage/memory"
	"wireline/pkg/logger"
	"wireline/pkg/sequence"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       envOr("LOG_LEVEL", "info"),
		Development: os.Getenv("ENV") != "production",
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := logger.WithLogger(context.Background(), log)
	ctx = appctx.WithActor(ctx, &appctx.ActorContext{ActorID: "demo", Name: "Demo Operator"})

	if err := run(ctx, log); err != nil {
		log.Fatalw("demo failed", "error", err)
	}
}

func run(ctx context.Context, log *logger.Logger) error {
	// Wiring: in-memory backend behind the same interfaces the SQL
	// implementations satisfy.
	txManager := memory.NewTxManager()
	allocator := sequence.NewWithStore(memory.NewCounterStore())

	partyRepo := memory.NewPartyRepository()
	itemRepo := memory.NewItemRepository()
	docRepo := memory.NewDocumentRepository()
	sudaRepo := memory.NewSudaRepository()

	parties := party.NewService(partyRepo, allocator)
	items := item.NewService(itemRepo, allocator)
	documents := commercial.NewService(docRepo, partyRepo, allocator, txManager)
	engine := suda.NewEngine(sudaRepo, docRepo, txManager)
	documents.SetPendingRegistrar(engine)

	// Masters
	supplier := party.NewParty("", "Kabadi Metals", party.TypeSupplier)
	if err := parties.Create(ctx, supplier); err != nil {
		return err
	}

	customer := party.NewParty("", "Sharma Electricals", party.TypeCustomer)
	customer.CreditLimit = 500_000
	customer.CurrentBalance = 480_000
	if err := parties.Create(ctx, customer); err != nil {
		return err
	}

	scrap := item.NewItem("", "Copper Scrap", item.CategoryRawMaterial)
	if err := items.Create(ctx, scrap); err != nil {
		return err
	}

	wire := item.NewItem("", "8mm Wire Rod", item.CategoryFinishedGood)
	if err := items.Create(ctx, wire); err != nil {
		return err
	}

	// 1. Suda purchase: 5000 kg arrives, price unknown.
	purchase := commercial.New(commercial.TypePurchaseInvoice, supplier.ID)
	purchase.RatePending = true
	purchase.Warehouse = "WH-01"
	purchase.VehicleNo = "MH-12-AB-1234"
	purchase.AddLine(calc.LineInput{
		ItemID:      scrap.ID,
		Unit:        "kg",
		GrossWeight: types.NewWeightFromFloat64(5200),
		TareWeight:  types.NewWeightFromFloat64(200),
	})
	if err := documents.Submit(ctx, purchase); err != nil {
		return err
	}
	log.Infow("suda purchase booked",
		"number", purchase.Number,
		"pending_weight", purchase.PendingWeight(),
		"grand_total", purchase.GrandTotal)

	// 2. Weeks later: rate fixed at 2450/kg, inventory revalued.
	open, err := engine.ListOpen(ctx, suda.Filter{PartyID: &supplier.ID})
	if err != nil {
		return err
	}
	fixIDs := make([]id.ID, 0, len(open))
	for _, rec := range open {
		fixIDs = append(fixIDs, rec.RecordID)
	}
	result, err := engine.FixRate(ctx, suda.FixRateInput{
		RecordIDs:  fixIDs,
		AgreedRate: types.MustRate("2450"),
	})
	if err != nil {
		return err
	}
	log.Infow("rate fixed",
		"total_liability", result.Event.TotalLiability,
		"instructions", len(result.Instructions))

	// 3. Sale that trips the credit gate, then gets approved.
	rate := types.MustRate("320")
	sale := commercial.New(commercial.TypeSalesInvoice, customer.ID)
	sale.TaxRatePercent = types.MustRate("18")
	sale.AddLine(calc.LineInput{
		ItemID:      wire.ID,
		Unit:        "kg",
		GrossWeight: types.NewWeightFromFloat64(150),
		Rate:        &rate,
	})
	if err := documents.Submit(ctx, sale); err != nil {
		return err
	}
	log.Infow("sales invoice submitted", "number", sale.Number, "status", sale.Status)

	if _, err := documents.Approve(ctx, sale.ID); err != nil {
		return err
	}

	// 4. Quality return: 100 kg back at 10% deduction, scrapped.
	ret, err := returns.Compute([]calc.LineInput{{
		ItemID:      wire.ID,
		Unit:        "kg",
		GrossWeight: types.NewWeightFromFloat64(100),
		Rate:        &rate,
	}}, returns.ModeScrap, types.MustRate("10"))
	if err != nil {
		return err
	}
	note := returns.Document(customer.ID, returns.ModeScrap, ret)
	if err := documents.Submit(ctx, note); err != nil {
		return err
	}
	log.Infow("credit note booked",
		"number", note.Number,
		"total", ret.Total,
		"inventory_effect", ret.InventoryEffect)

	// 5. Alert board.
	evaluator, err := alerts.NewEvaluator()
	if err != nil {
		return err
	}
	scanner := alerts.NewScanner(engine, partyRepo, evaluator)
	raised, err := scanner.Scan(ctx, []alerts.Rule{{
		Name:       "credit exposure above 90%",
		Severity:   alerts.SeverityCritical,
		Expression: "credit_limit > 0 && current_balance * 10 > credit_limit * 9",
	}})
	if err != nil {
		return err
	}
	for _, alert := range raised {
		log.Warnw("alert raised", "rule", alert.RuleName, "party", alert.PartyName)
	}

	log.Info("demo completed")
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
