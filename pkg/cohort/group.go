package cohort

import (
	"fmt"
	"log"
	"sort"
	"time"

	"cohorts/pkg/models"
	"cohorts/pkg/timeutil"
)

type groupOrder struct {
	userID    int64
	orderID   int64
	orderNum  int64
	orderDate time.Time
}

// Group est une fenêtre de cohorte [start ; end] (bornes incluses) avec ses clients
// et les commandes de ces clients.
type Group struct {
	name        string
	groupNumber int
	bucketDays  int
	start       time.Time
	end         time.Time
	verbosity   int

	customers map[int64]time.Time
	orders    map[int64]groupOrder
}

// NewGroup crée une cohorte. groupNumber est aussi le nombre de tranches d'âge.
func NewGroup(name string, groupNumber, bucketDays int, start, end time.Time, verbosity int) (*Group, error) {
	if start.IsZero() || end.IsZero() {
		return nil, fmt.Errorf("%w: group start date and end date required", ErrInvalidArgument)
	}
	if start.After(end) {
		return nil, fmt.Errorf("%w: group start date must be before end date", ErrInvalidArgument)
	}
	if groupNumber <= 0 {
		return nil, fmt.Errorf("%w: group number must be greater than 0", ErrInvalidArgument)
	}
	if bucketDays <= 0 {
		return nil, fmt.Errorf("%w: group bucket days must be greater than 0", ErrInvalidArgument)
	}
	return &Group{
		name:        name,
		groupNumber: groupNumber,
		bucketDays:  bucketDays,
		start:       start,
		end:         end,
		verbosity:   verbosity,
		customers:   map[int64]time.Time{},
		orders:      map[int64]groupOrder{},
	}, nil
}

func (g *Group) Name() string { return g.name }

// Number est le rang de génération, 1 pour la cohorte la plus récente.
func (g *Group) Number() int { return g.groupNumber }

func (g *Group) Start() time.Time { return g.start }

func (g *Group) End() time.Time { return g.end }

func (g *Group) NumCustomers() int { return len(g.customers) }

func (g *Group) NumOrders() int { return len(g.orders) }

// Label formate la fenêtre en "M/D-M/D".
func (g *Group) Label() string {
	return fmt.Sprintf("%d/%d-%d/%d",
		int(g.start.Month()), g.start.Day(), int(g.end.Month()), g.end.Day())
}

// IsDateInGroup indique si t tombe dans la fenêtre, bornes incluses.
// La comparaison porte sur l'instant, quel que soit le fuseau de t.
func (g *Group) IsDateInGroup(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	if g.verbosity > 2 {
		log.Printf("[DEBUG] START: %s / END: %s / VALUE: %s", g.start, g.end, t)
	}
	return !t.Before(g.start) && !t.After(g.end)
}

// AddCustomer rattache un client à la cohorte. Un second appel pour le même
// client remplace la date d'inscription.
func (g *Group) AddCustomer(userID int64, joinDate time.Time) error {
	if userID <= 0 || joinDate.IsZero() {
		return fmt.Errorf("%w: all customer params are required", ErrInvalidArgument)
	}
	g.customers[userID] = joinDate
	return nil
}

// AddOrder rattache une commande. Retourne false sans erreur si l'identifiant de
// commande est déjà connu : la première écriture est conservée.
func (g *Group) AddOrder(userID, orderID int64, orderDate time.Time, orderNum int64) (bool, error) {
	if userID <= 0 || orderID <= 0 || orderDate.IsZero() || orderNum <= 0 {
		return false, fmt.Errorf("%w: all order params are required", ErrInvalidArgument)
	}
	if _, ok := g.orders[orderID]; ok {
		return false, nil
	}
	g.orders[orderID] = groupOrder{
		userID:    userID,
		orderID:   orderID,
		orderNum:  orderNum,
		orderDate: orderDate,
	}
	return true, nil
}

// Buckets classe les commandes par âge (en tranches de bucketDays jours depuis
// l'inscription du client). Le résultat contient exactement groupNumber tranches ;
// les commandes au-delà sont ignorées. Recalculé à chaque appel.
func (g *Group) Buckets() []models.Bucket {
	buckets := make([]models.Bucket, g.groupNumber)
	for i := range buckets {
		buckets[i] = models.NewBucket(i + 1)
	}

	orders := make([]groupOrder, 0, len(g.orders))
	for _, o := range g.orders {
		orders = append(orders, o)
	}
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].userID != orders[j].userID {
			return orders[i].userID < orders[j].userID
		}
		return orders[i].orderID < orders[j].orderID
	})

	for _, o := range orders {
		joinDate, ok := g.customers[o.userID]
		if !ok {
			continue
		}

		idx := timeutil.DaysBetween(joinDate, o.orderDate) / g.bucketDays
		if idx >= g.groupNumber {
			continue
		}

		buckets[idx].Customers[o.userID] = struct{}{}
		if o.orderNum == 1 {
			buckets[idx].First[o.userID] = struct{}{}
		}
	}
	return buckets
}
