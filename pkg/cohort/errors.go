package cohort

import "errors"

var (
	// ErrInvalidArgument signale un paramètre manquant, nul ou hors bornes.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrGroupNotFound signale une date d'inscription couverte par aucune cohorte générée.
	ErrGroupNotFound = errors.New("cohort group not found")
)
