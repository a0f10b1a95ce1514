package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"cohorts/pkg/models"

	_ "github.com/go-sql-driver/mysql"
)

// Format DATETIME attendu par l'analyse.
const layout = "2006-01-02 15:04:05"

var tableNameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Open DSN mariadb:// ou mysql:// → format MySQL driver
func Open(dsn string) (*sql.DB, string, error) {
	mysqlDSN, err := toMySQLDSN(dsn)
	if err != nil {
		return nil, "", err
	}
	db, err := sql.Open("mysql", mysqlDSN)
	if err != nil {
		return nil, "", err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, mysqlDSN, nil
}

func toMySQLDSN(dsn string) (string, error) {
	if strings.HasPrefix(dsn, "mariadb://") || strings.HasPrefix(dsn, "mysql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return "", fmt.Errorf("parse dsn: %w", err)
		}
		user := ""
		pass := ""
		if u.User != nil {
			user = u.User.Username()
			pw, _ := u.User.Password()
			pass = pw
		}
		host := u.Host
		db := strings.TrimPrefix(u.Path, "/")
		if user == "" || host == "" || db == "" {
			return "", fmt.Errorf("dsn incomplet (user/host/db)")
		}
		// les horodatages sont stockés en UTC : l'analyse les convertit elle-même
		return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&interpolateParams=true",
			user, pass, host, db), nil
	}
	return dsn, nil
}

// Source lit clients et commandes dans deux tables MySQL/MariaDB.
// Colonnes attendues : clients (id, created), commandes (id, user_id, order_number, created).
type Source struct {
	DB             *sql.DB
	CustomersTable string
	OrdersTable    string
	Verbose        bool
}

func (s *Source) Customers(ctx context.Context) ([]models.Record, error) {
	return s.load(ctx, s.CustomersTable, []string{models.FieldID, models.FieldCreated})
}

func (s *Source) Orders(ctx context.Context) ([]models.Record, error) {
	return s.load(ctx, s.OrdersTable,
		[]string{models.FieldUserID, models.FieldID, models.FieldOrderNumber, models.FieldCreated})
}

func (s *Source) load(ctx context.Context, table string, fields []string) ([]models.Record, error) {
	if !tableNameRe.MatchString(table) {
		return nil, fmt.Errorf("table invalide: %q", table)
	}

	q := fmt.Sprintf("SELECT %s FROM %s ORDER BY id", strings.Join(fields, ", "), table)
	if s.Verbose {
		log.Printf("[DEBUG] query: %s", q)
	}

	rows, err := s.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	recs, err := scanRecords(rows, fields)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", table, err)
	}
	if s.Verbose {
		log.Printf("[DEBUG] %s: %d lignes lues", table, len(recs))
	}
	return recs, nil
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// scanRecords convertit chaque ligne en Record. Les colonnes entières et DATETIME
// sont remises au format texte attendu par l'analyse ; NULL devient "".
func scanRecords(rows rowScanner, fields []string) ([]models.Record, error) {
	var out []models.Record
	for rows.Next() {
		values := make([]any, len(fields))
		dest := make([]any, len(fields))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}

		rec := make(models.Record, len(fields))
		for i, name := range fields {
			rec[name] = formatValue(values[i])
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case time.Time:
		return x.UTC().Format(layout)
	case []byte:
		return string(x)
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	default:
		return fmt.Sprint(x)
	}
}
