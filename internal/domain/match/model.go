package match

import (
	"strings"
	"time"
)

// Match statuses as stored by the fan site. Only finished matches are
// eligible for timeline synchronization.
const (
	StatusScheduled = "SCHEDULED"
	StatusLive      = "LIVE"
	StatusFinished  = "FINISHED"
	StatusPostponed = "POSTPONED"
	StatusCancelled = "CANCELLED"
)

// Match is a fixture row owned by the fan site, independent of any provider.
// ExternalFixtureID links it to the fixture source once a sync resolved it.
type Match struct {
	ID                string
	HomeTeam          string
	AwayTeam          string
	MatchDate         time.Time
	Status            string
	HomeScore         *int
	AwayScore         *int
	ExternalFixtureID *int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (m Match) IsFinished() bool {
	return strings.EqualFold(strings.TrimSpace(m.Status), StatusFinished)
}

func (m Match) HasExternalFixture() bool {
	return m.ExternalFixtureID != nil && *m.ExternalFixtureID > 0
}
