package calculator

import (
	"context"
	"errors"
	"testing"

	"cohorts/pkg/cohort"
	"cohorts/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memSource struct {
	customers []models.Record
	orders    []models.Record
	err       error
}

func (m memSource) Customers(context.Context) ([]models.Record, error) { return m.customers, m.err }
func (m memSource) Orders(context.Context) ([]models.Record, error) { return m.orders, nil }

func referenceSource() memSource {
	return memSource{
		customers: []models.Record{
			{"id": "1", "created": "2017-05-01 00:01:00"},
			{"id": "2", "created": "2017-05-01 00:02:00"},
			{"id": "3", "created": "2017-05-02 00:03:00"},
			{"id": "4", "created": "2017-05-02 00:04:00"},
			{"id": "5", "created": "2017-05-03 00:05:00"},
			{"id": "6", "created": "2017-05-04 00:06:00"},
			{"id": "7", "created": "2017-05-05 00:07:00"},
			{"id": "8", "created": "2017-05-06 00:08:00"},
			{"id": "9", "created": "2017-05-06 00:09:00"},
			{"id": "10", "created": "2017-05-08 00:10:00"},
		},
		orders: []models.Record{
			{"user_id": "1", "id": "101", "order_number": "1", "created": "2017-05-08 00:08:01"},
			{"user_id": "2", "id": "201", "order_number": "1", "created": "2017-05-05 00:08:01"},
			{"user_id": "3", "id": "301", "order_number": "1", "created": "2017-05-06 00:08:01"},
			{"user_id": "3", "id": "302", "order_number": "2", "created": "2017-05-08 00:08:01"},
			{"user_id": "5", "id": "501", "order_number": "1", "created": "2017-05-04 00:08:01"},
			{"user_id": "6", "id": "601", "order_number": "1", "created": "2017-05-06 00:08:01"},
			{"user_id": "7", "id": "701", "order_number": "1", "created": "2017-05-06 00:08:01"},
		},
	}
}

func TestRun_ReferenceDataset(t *testing.T) {
	report, err := Run(context.Background(), referenceSource(), models.Config{
		DaysPerBucket: 2,
		Timezone:      "UTC",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 2, report.DaysPerBucket)
	assert.Equal(t, 4, report.Columns)
	require.Len(t, report.Cohorts, 4)

	var clients, orders, buckets []int
	for _, c := range report.Cohorts {
		clients = append(clients, c.CohortClients)
		orders = append(orders, c.Orders)
		buckets = append(buckets, len(c.Buckets))
	}
	assert.Equal(t, []int{1, 3, 2, 4}, clients)
	assert.Equal(t, []int{0, 1, 2, 4}, orders)
	assert.Equal(t, []int{1, 2, 3, 4}, buckets)

	oldest := report.Cohorts[3]
	assert.Equal(t, "5/1-5/2", oldest.Label)
	assert.Equal(t, 4, oldest.GroupNumber)
	assert.Equal(t, models.BucketStat{Orderers: 2, FirstTime: 2, OrderersPct: 50, FirstTimePct: 50}, oldest.Buckets[2])
	assert.Equal(t, models.BucketStat{Orderers: 2, FirstTime: 1, OrderersPct: 50, FirstTimePct: 25}, oldest.Buckets[3])

	// 1/3 -> 33%
	assert.Equal(t, 33, report.Cohorts[1].Buckets[0].OrderersPct)
}

func TestRun_Limit(t *testing.T) {
	report, err := Run(context.Background(), referenceSource(), models.Config{
		DaysPerBucket: 2,
		Limit:         2,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Columns)
	require.Len(t, report.Cohorts, 2)
	assert.Equal(t, "5/7-5/8", report.Cohorts[0].Label)
	assert.Equal(t, "5/5-5/6", report.Cohorts[1].Label)
}

func TestRun_InvalidConfig(t *testing.T) {
	_, err := Run(context.Background(), referenceSource(), models.Config{DaysPerBucket: 0})
	assert.ErrorIs(t, err, cohort.ErrInvalidArgument)
}

func TestRun_SourceError(t *testing.T) {
	src := memSource{err: errors.New("boom")}
	_, err := Run(context.Background(), src, models.Config{DaysPerBucket: 7})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load customers")
}

func TestRun_BadRow(t *testing.T) {
	src := referenceSource()
	src.orders = append(src.orders, models.Record{"user_id": "1", "id": "", "order_number": "1", "created": "2017-05-08 00:08:01"})

	_, err := Run(context.Background(), src, models.Config{DaysPerBucket: 2})
	assert.ErrorIs(t, err, cohort.ErrInvalidArgument)
	assert.Contains(t, err.Error(), "order row 8")
}

func TestRun_NoCustomers(t *testing.T) {
	_, err := Run(context.Background(), memSource{}, models.Config{DaysPerBucket: 7})
	assert.ErrorIs(t, err, cohort.ErrInvalidArgument)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, referenceSource(), models.Config{DaysPerBucket: 2})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAddCustomerRecord_BadInput(t *testing.T) {
	a, err := cohort.NewAnalysis(1, "UTC", 0)
	require.NoError(t, err)

	tests := []struct {
		name string
		rec  models.Record
	}{
		{name: "missing id", rec: models.Record{"created": "2017-05-01 00:00:01"}},
		{name: "empty id", rec: models.Record{"id": "", "created": "2017-05-01 00:00:01"}},
		{name: "zero id", rec: models.Record{"id": "0", "created": "2017-05-01 00:00:01"}},
		{name: "non numeric id", rec: models.Record{"id": "abc", "created": "2017-05-01 00:00:01"}},
		{name: "missing date", rec: models.Record{"id": "1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, AddCustomerRecord(a, tt.rec), cohort.ErrInvalidArgument)
		})
	}

	assert.NoError(t, AddCustomerRecord(a, models.Record{"id": " 7 ", "created": "2017-05-01 00:00:01"}))
	assert.Equal(t, 1, a.NumCustomers())
}

func TestAddOrderRecord_BadInput(t *testing.T) {
	a, err := cohort.NewAnalysis(1, "UTC", 0)
	require.NoError(t, err)

	base := func() models.Record {
		return models.Record{"user_id": "1", "id": "10", "order_number": "1", "created": "2017-05-01 00:00:01"}
	}
	for _, field := range []string{"user_id", "id", "order_number", "created"} {
		rec := base()
		delete(rec, field)
		assert.ErrorIs(t, AddOrderRecord(a, rec), cohort.ErrInvalidArgument, "missing %s", field)
	}

	assert.NoError(t, AddOrderRecord(a, base()))
	assert.Equal(t, 1, a.NumOrders())
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0, percent(3, 0))
	assert.Equal(t, 33, percent(1, 3))
	assert.Equal(t, 67, percent(2, 3))
	assert.Equal(t, 50, percent(1, 2))
	assert.Equal(t, 13, percent(1, 8)) // 12.5 arrondi vers le haut
	assert.Equal(t, 100, percent(4, 4))
}
