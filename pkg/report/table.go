package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"cohorts/pkg/models"
)

// ColumnLabel retourne l'intitulé de la i-ème tranche d'âge, ex: "0-6 days".
func ColumnLabel(i, daysPerBucket int) string {
	return fmt.Sprintf("%d-%d days", i*daysPerBucket, (i+1)*daysPerBucket-1)
}

func header(r *models.Report) []string {
	fields := []string{"Cohort", "Customers"}
	for i := 0; i < r.Columns; i++ {
		fields = append(fields, ColumnLabel(i, r.DaysPerBucket))
	}
	return fields
}

// WriteTable affiche les cohortes de la plus récente à la plus ancienne. Chaque
// cohorte occupe deux lignes : acheteurs puis premières commandes.
func WriteTable(w io.Writer, r *models.Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fields := header(r)
	seps := make([]string, len(fields))
	for i, f := range fields {
		seps[i] = strings.Repeat("-", len(f))
	}
	writeRow(tw, fields)
	writeRow(tw, seps)

	for _, c := range r.Cohorts {
		orderers := []string{c.Label, fmt.Sprintf("%d customers", c.CohortClients)}
		firsts := []string{"", ""}
		for _, b := range c.Buckets {
			orderers = append(orderers, fmt.Sprintf("%d%% orderers (%d)", b.OrderersPct, b.Orderers))
			firsts = append(firsts, fmt.Sprintf("%d%% 1st time (%d)", b.FirstTimePct, b.FirstTime))
		}
		for len(orderers) < len(fields) {
			orderers = append(orderers, "")
			firsts = append(firsts, "")
		}
		writeRow(tw, orderers)
		writeRow(tw, firsts)
	}
	return tw.Flush()
}

func writeRow(w io.Writer, cells []string) {
	fmt.Fprintln(w, strings.Join(cells, "\t")+"\t")
}

// WriteCSV écrit la même matrice au format CSV, une ligne par cohorte ; chaque
// tranche donne deux colonnes (acheteurs, premières commandes).
func WriteCSV(w io.Writer, r *models.Report) error {
	cw := csv.NewWriter(w)

	fields := []string{"cohort", "customers", "orders"}
	for i := 0; i < r.Columns; i++ {
		label := ColumnLabel(i, r.DaysPerBucket)
		fields = append(fields, label+" orderers", label+" 1st time")
	}
	if err := cw.Write(fields); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for i, c := range r.Cohorts {
		row := []string{c.Label, fmt.Sprint(c.CohortClients), fmt.Sprint(c.Orders)}
		for _, b := range c.Buckets {
			row = append(row, fmt.Sprint(b.Orderers), fmt.Sprint(b.FirstTime))
		}
		for len(row) < len(fields) {
			row = append(row, "")
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
