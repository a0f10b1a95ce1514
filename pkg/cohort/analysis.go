package cohort

import (
	"fmt"
	"log"
	"sort"
	"time"

	"cohorts/pkg/models"
	"cohorts/pkg/timeutil"
)

type pendingOrder struct {
	models.Order
	seq int
}

// Analysis accumule clients et commandes puis les répartit en cohortes
// de daysPerBucket jours. Pas de sécurité concurrente : tous les ajouts doivent
// être terminés avant Analyze.
type Analysis struct {
	daysPerBucket int
	loc           *time.Location
	verbosity     int

	joinDates  map[int64]time.Time
	custOrders map[int64][]pendingOrder
	numOrders  int
	minJoin    time.Time
	maxJoin    time.Time

	groups []*Group
}

// NewAnalysis crée une analyse. Un fuseau vide vaut UTC.
func NewAnalysis(daysPerBucket int, timezone string, verbosity int) (*Analysis, error) {
	if daysPerBucket <= 0 {
		return nil, fmt.Errorf("%w: days per bucket must be greater than 0", ErrInvalidArgument)
	}
	loc, err := timeutil.ParseLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return &Analysis{
		daysPerBucket: daysPerBucket,
		loc:           loc,
		verbosity:     verbosity,
		joinDates:     map[int64]time.Time{},
		custOrders:    map[int64][]pendingOrder{},
	}, nil
}

func (a *Analysis) DaysPerBucket() int { return a.daysPerBucket }
func (a *Analysis) Location() *time.Location { return a.loc }
func (a *Analysis) NumCustomers() int { return len(a.joinDates) }
func (a *Analysis) NumOrders() int { return a.numOrders }
func (a *Analysis) MinJoinDate() time.Time { return a.minJoin }
func (a *Analysis) MaxJoinDate() time.Time { return a.maxJoin }

// Groups retourne les cohortes du dernier Analyze, de la plus récente à la plus ancienne.
func (a *Analysis) Groups() []*Group { return a.groups }

// JoinDate retourne la date d'inscription connue pour un client.
func (a *Analysis) JoinDate(userID int64) (time.Time, bool) {
	t, ok := a.joinDates[userID]
	return t, ok
}

// Orders retourne les commandes ajoutées pour un client, dans l'ordre d'ajout.
func (a *Analysis) Orders(userID int64) []models.Order {
	pending := a.custOrders[userID]
	out := make([]models.Order, len(pending))
	for i, p := range pending {
		out[i] = p.Order
	}
	return out
}

// AddCustomer enregistre un client. created est un horodatage UTC
// (ex: "2015-07-03 22:57:23"), converti dans le fuseau de l'analyse.
// Le dernier appel pour un même client l'emporte.
func (a *Analysis) AddCustomer(userID int64, created string) error {
	if userID <= 0 || created == "" {
		return fmt.Errorf("%w: all arguments are required", ErrInvalidArgument)
	}
	joinDate, err := a.parse(created)
	if err != nil {
		return err
	}

	if a.minJoin.IsZero() || joinDate.Before(a.minJoin) {
		a.minJoin = joinDate
	}
	if a.maxJoin.IsZero() || joinDate.After(a.maxJoin) {
		a.maxJoin = joinDate
	}
	a.joinDates[userID] = joinDate
	return nil
}

// AddOrder enregistre une commande. Aucun dédoublonnage ici : il est fait
// par Group.AddOrder. orderNumber est contrôlé mais sera recalculé par Analyze.
func (a *Analysis) AddOrder(userID, orderID, orderNumber int64, created string) error {
	if userID <= 0 || orderID <= 0 || orderNumber <= 0 || created == "" {
		return fmt.Errorf("%w: all arguments are required", ErrInvalidArgument)
	}
	orderDate, err := a.parse(created)
	if err != nil {
		return err
	}

	a.custOrders[userID] = append(a.custOrders[userID], pendingOrder{
		Order: models.Order{
			OrderID:     orderID,
			UserID:      userID,
			OrderNumber: orderNumber,
			OrderDate:   orderDate,
		},
		seq: a.numOrders,
	})
	a.numOrders++
	return nil
}

func (a *Analysis) parse(created string) (time.Time, error) {
	t, err := timeutil.Parse(created, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be a UTC string \"YYYY-MM-DD HH:mm:ss\": %v", ErrInvalidArgument, err)
	}
	return t.In(a.loc), nil
}

// Analyze génère les cohortes, y répartit les clients puis leurs commandes.
// Les données accumulées ne sont pas modifiées : un second appel donne le même résultat.
func (a *Analysis) Analyze() error {
	if a.verbosity > 0 {
		log.Printf("[DEBUG] analyzing - min cust join date: %s", a.minJoin)
		log.Printf("[DEBUG] analyzing - max cust join date: %s", a.maxJoin)
	}

	groups, err := a.generateGroups()
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		return fmt.Errorf("%w: no groups were created", ErrInvalidArgument)
	}

	if err := a.assignCustomers(groups); err != nil {
		return err
	}
	if err := a.assignOrders(groups); err != nil {
		return err
	}

	a.groups = groups
	return nil
}

// generateGroups découpe [minJoin ; fin de journée de maxJoin] en tranches de
// daysPerBucket jours, de la plus récente à la plus ancienne. La borne basse de la
// dernière tranche n'est pas ramenée à minJoin.
func (a *Analysis) generateGroups() ([]*Group, error) {
	if a.minJoin.IsZero() || a.maxJoin.IsZero() {
		return nil, nil
	}
	start := a.minJoin.In(a.loc)
	end := timeutil.EndOfDay(a.maxJoin.In(a.loc))

	var groups []*Group
	for count := 1; !start.After(end); count++ {
		nextEnd := end.AddDate(0, 0, -a.daysPerBucket)

		g, err := NewGroup(fmt.Sprint(count), count, a.daysPerBucket, nextEnd.Add(time.Second), end, a.verbosity)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
		end = nextEnd
	}
	return groups, nil
}

// assignCustomers parcourt les clients par date d'inscription décroissante et
// les cohortes dans le même ordre ; l'index de cohorte ne recule jamais.
func (a *Analysis) assignCustomers(groups []*Group) error {
	customers := make([]models.Customer, 0, len(a.joinDates))
	for id, t := range a.joinDates {
		customers = append(customers, models.Customer{UserID: id, JoinDate: t})
	}
	sort.Slice(customers, func(i, j int) bool {
		if !customers[i].JoinDate.Equal(customers[j].JoinDate) {
			return customers[i].JoinDate.After(customers[j].JoinDate)
		}
		return customers[i].UserID < customers[j].UserID
	})

	idx := 0
	for _, c := range customers {
		for idx < len(groups)-1 && !groups[idx].IsDateInGroup(c.JoinDate) {
			idx++
		}

		grp := groups[idx]
		if !grp.IsDateInGroup(c.JoinDate) {
			grp = findGroup(groups, c.JoinDate)
			if grp == nil {
				return fmt.Errorf("%w: user %d joined %s", ErrGroupNotFound, c.UserID, c.JoinDate)
			}
			if a.verbosity > 0 {
				log.Printf("[WARN] user %d resolved by linear scan into group %d", c.UserID, grp.Number())
			}
		}

		if err := grp.AddCustomer(c.UserID, c.JoinDate); err != nil {
			return err
		}
	}

	if a.verbosity > 0 {
		log.Printf("[DEBUG] # customers: %d", len(customers))
	}
	return nil
}

// assignOrders renumérote les commandes de chaque client par date croissante
// (le numéro fourni par l'appelant est ignoré) et les ajoute à sa cohorte.
func (a *Analysis) assignOrders(groups []*Group) error {
	userIDs := make([]int64, 0, len(a.custOrders))
	for id := range a.custOrders {
		userIDs = append(userIDs, id)
	}
	sort.Slice(userIDs, func(i, j int) bool { return userIDs[i] < userIDs[j] })

	usersFound := 0
	for _, userID := range userIDs {
		joinDate, ok := a.joinDates[userID]
		if !ok {
			continue
		}

		orders := append([]pendingOrder(nil), a.custOrders[userID]...)
		sort.Slice(orders, func(i, j int) bool {
			oi, oj := orders[i], orders[j]
			if !oi.OrderDate.Equal(oj.OrderDate) {
				return oi.OrderDate.Before(oj.OrderDate)
			}
			if oi.OrderID != oj.OrderID {
				return oi.OrderID < oj.OrderID
			}
			return oi.seq < oj.seq
		})

		grp := findGroup(groups, joinDate)
		if grp == nil {
			return fmt.Errorf("%w: user %d joined %s", ErrGroupNotFound, userID, joinDate)
		}

		for i, o := range orders {
			if _, err := grp.AddOrder(userID, o.OrderID, o.OrderDate, int64(i+1)); err != nil {
				return err
			}
		}
		usersFound++
	}

	if a.verbosity > 0 {
		log.Printf("[DEBUG] # customers with orders: %d", usersFound)
	}
	return nil
}

func findGroup(groups []*Group, t time.Time) *Group {
	for _, g := range groups {
		if g.IsDateInGroup(t) {
			return g
		}
	}
	return nil
}
