package models

import "time"

// EventStatus represents the lifecycle state of an event
type EventStatus string

const (
	EventStatusOngoing   EventStatus = "ongoing"
	EventStatusCompleted EventStatus = "completed"
)

// Event represents a two-team contest open for wagering until a winner is declared.
// Status is completed if and only if WinningTeamID is set; settlement is the only
// mutation after creation.
type Event struct {
	ID            int64       `db:"id" json:"id"`
	Name          string      `db:"event_name" json:"event_name"`
	EventDate     time.Time   `db:"event_date" json:"event_date"`
	EndDate       *time.Time  `db:"event_end_date" json:"event_end_date,omitempty"`
	EventType     string      `db:"event_type" json:"event_type"`
	Status        EventStatus `db:"status" json:"status"`
	FirstTeamID   int64       `db:"first_team_id" json:"first_team_id"`
	SecondTeamID  int64       `db:"second_team_id" json:"second_team_id"`
	WinningTeamID *int64      `db:"winning_team_id" json:"winning_team_id,omitempty"`
	CreatedAt     time.Time   `db:"created_at" json:"created_at"`
}

// HasParticipant reports whether teamID is one of the event's two teams
func (e *Event) HasParticipant(teamID int64) bool {
	return teamID == e.FirstTeamID || teamID == e.SecondTeamID
}

// Side returns which side of the event teamID occupies
func (e *Event) Side(teamID int64) (Side, bool) {
	switch teamID {
	case e.FirstTeamID:
		return SideFirst, true
	case e.SecondTeamID:
		return SideSecond, true
	}
	return "", false
}

// IsOngoing reports whether the event still accepts bets
func (e *Event) IsOngoing() bool {
	return e.Status == EventStatusOngoing
}
