package models

import "time"

// Team represents one of the two competing participants of an event
type Team struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"team_name" json:"team_name"`
	SquadList   []string  `db:"squad_list" json:"squad_list"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
