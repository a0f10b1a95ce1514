package calculator

import (
	"context"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"cohorts/pkg/cohort"
	"cohorts/pkg/models"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
)

// Source fournit les lignes brutes des clients et des commandes (CSV, base...).
type Source interface {
	Customers(ctx context.Context) ([]models.Record, error)
	Orders(ctx context.Context) ([]models.Record, error)
}

func Run(ctx context.Context, src Source, cfg models.Config) (*models.Report, error) {
	runID := uuid.NewString()
	verbose := cfg.Verbosity > 0

	analysis, err := cohort.NewAnalysis(cfg.DaysPerBucket, cfg.Timezone, cfg.Verbosity)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	// 1) chargement
	checkpoint := time.Now()
	customers, err := src.Customers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load customers: %w", err)
	}
	orders, err := src.Orders(ctx)
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}
	if verbose {
		log.Printf("[DEBUG] run=%s num customers: %d", runID, len(customers))
		log.Printf("[DEBUG] run=%s num orders: %d", runID, len(orders))
		log.Printf("[DEBUG] run=%s ~~~ 1) time: %s (load records)", runID, time.Since(checkpoint))
	}

	// 2) clients
	checkpoint = time.Now()
	bar := newBar(cfg.Progress, len(customers), "customers")
	for i, rec := range customers {
		if err := AddCustomerRecord(analysis, rec); err != nil {
			return nil, fmt.Errorf("customer row %d: %w", i+1, err)
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if verbose {
		log.Printf("[DEBUG] run=%s ~~~ 2) time: %s (add customers)", runID, time.Since(checkpoint))
	}

	// 3) commandes
	checkpoint = time.Now()
	bar = newBar(cfg.Progress, len(orders), "orders")
	for i, rec := range orders {
		if err := AddOrderRecord(analysis, rec); err != nil {
			return nil, fmt.Errorf("order row %d: %w", i+1, err)
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if verbose {
		log.Printf("[DEBUG] run=%s ~~~ 3) time: %s (add orders)", runID, time.Since(checkpoint))
	}

	// 4) analyse
	checkpoint = time.Now()
	if err := analysis.Analyze(); err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	if verbose {
		log.Printf("[DEBUG] run=%s ~~~ 4) time: %s (analyze)", runID, time.Since(checkpoint))
	}

	report := Summarize(analysis.Groups(), analysis.DaysPerBucket(), cfg.Limit)
	report.RunID = runID

	log.Printf("[INFO] run=%s cohorts=%d customers=%d orders=%d days_per_bucket=%d tz=%s",
		runID, len(analysis.Groups()), analysis.NumCustomers(), analysis.NumOrders(),
		analysis.DaysPerBucket(), analysis.Location())
	if verbose {
		for _, r := range report.Cohorts {
			log.Printf("[INFO] run=%s %s -> clients=%d orders=%d", runID, r.Label, r.CohortClients, r.Orders)
		}
	}
	return report, nil
}

// Summarize convertit les cohortes (de la plus récente à la plus ancienne) en
// résultats affichables. limit <= 0 garde toutes les cohortes.
func Summarize(groups []*cohort.Group, daysPerBucket, limit int) *models.Report {
	n := len(groups)
	if limit > 0 && limit < n {
		n = limit
	}

	report := &models.Report{
		DaysPerBucket: daysPerBucket,
		Columns:       n,
		Cohorts:       make([]models.CohortResult, 0, n),
	}
	for _, g := range groups[:n] {
		res := models.CohortResult{
			Label:         g.Label(),
			GroupNumber:   g.Number(),
			CohortClients: g.NumCustomers(),
			Orders:        g.NumOrders(),
		}
		for _, b := range g.Buckets() {
			res.Buckets = append(res.Buckets, models.BucketStat{
				Orderers:     len(b.Customers),
				FirstTime:    len(b.First),
				OrderersPct:  percent(len(b.Customers), res.CohortClients),
				FirstTimePct: percent(len(b.First), res.CohortClients),
			})
		}
		report.Cohorts = append(report.Cohorts, res)
	}
	return report
}

// percent arrondit à l'entier le plus proche (0.5 vers le haut), 0 si total <= 0.
func percent(n, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(n*100) / float64(total)))
}

// AddCustomerRecord ajoute une ligne client (champs id, created).
func AddCustomerRecord(a *cohort.Analysis, rec models.Record) error {
	userID, err := parseID(rec, models.FieldID)
	if err != nil {
		return err
	}
	return a.AddCustomer(userID, rec[models.FieldCreated])
}

// AddOrderRecord ajoute une ligne commande (champs user_id, id, order_number, created).
func AddOrderRecord(a *cohort.Analysis, rec models.Record) error {
	userID, err := parseID(rec, models.FieldUserID)
	if err != nil {
		return err
	}
	orderID, err := parseID(rec, models.FieldID)
	if err != nil {
		return err
	}
	orderNumber, err := parseID(rec, models.FieldOrderNumber)
	if err != nil {
		return err
	}
	return a.AddOrder(userID, orderID, orderNumber, rec[models.FieldCreated])
}

func parseID(rec models.Record, field string) (int64, error) {
	raw := strings.TrimSpace(rec[field])
	if raw == "" {
		return 0, fmt.Errorf("%w: field %q is required", cohort.ErrInvalidArgument, field)
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: field %q: %v", cohort.ErrInvalidArgument, field, err)
	}
	return v, nil
}

func newBar(visible bool, n int, desc string) *progressbar.ProgressBar {
	if visible {
		return progressbar.Default(int64(n), desc)
	}
	return progressbar.DefaultSilent(int64(n), desc)
}
