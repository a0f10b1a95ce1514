package models

import (
	"time"
)

/*
LOAD → types simples pour les données brutes (CSV ou base de données).
*/

// Record représente une ligne brute : nom de champ → valeur texte.
type Record map[string]string

// Champs attendus pour les clients et les commandes.
const (
	FieldID          = "id"
	FieldUserID      = "user_id"
	FieldOrderNumber = "order_number"
	FieldCreated     = "created"
)

// Customer représente un client et sa date d'inscription (déjà convertie dans le fuseau de l'analyse).
type Customer struct {
	UserID   int64
	JoinDate time.Time
}

// Order représente une commande brute telle qu'ajoutée par l'appelant.
type Order struct {
	OrderID     int64
	UserID      int64
	OrderNumber int64
	OrderDate   time.Time
}

/*
COMPUTE → buckets d'âge et résultats par cohorte
*/

// Bucket regroupe les clients ayant commandé dans une tranche d'âge donnée.
type Bucket struct {
	Num       int                // numéro 1-based de la tranche
	Customers map[int64]struct{} // clients ayant passé une commande
	First     map[int64]struct{} // clients dont la première commande tombe ici
}

// NewBucket crée une tranche vide.
func NewBucket(num int) Bucket {
	return Bucket{
		Num:       num,
		Customers: map[int64]struct{}{},
		First:     map[int64]struct{}{},
	}
}

// BucketStat contient les compteurs et pourcentages d'une tranche pour l'affichage.
type BucketStat struct {
	Orderers     int
	FirstTime    int
	OrderersPct  int
	FirstTimePct int
}

// CohortResult contient les métriques calculées pour une cohorte.
type CohortResult struct {
	Label         string       // Fenêtre de la cohorte (format "M/D-M/D").
	GroupNumber   int          // Numéro de génération (1 = plus récente).
	CohortClients int          // Nombre de clients de la cohorte.
	Orders        int          // Nombre de commandes rattachées.
	Buckets       []BucketStat // Une entrée par tranche d'âge.
}

// Report est le résultat complet d'une exécution, cohortes de la plus récente à la plus ancienne.
type Report struct {
	RunID         string
	DaysPerBucket int
	Columns       int // nombre de colonnes d'âge à afficher
	Cohorts       []CohortResult
}

/*
CONFIG → paramètres globaux
*/

// Config contient les paramètres de configuration passés à la fonction de calcul.
type Config struct {
	DaysPerBucket int    // jours par tranche (> 0)
	Timezone      string // fuseau de l'analyse, "UTC" par défaut
	Limit         int    // nombre de cohortes affichées, <= 0 pour toutes
	Verbosity     int    // niveau de debug
	Progress      bool   // affiche une barre de progression
}
