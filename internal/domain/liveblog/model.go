package liveblog

import (
	"time"
	"unicode/utf8"
)

// EntryType classifies a live-blog entry.
type EntryType string

const (
	EntryGoal         EntryType = "goal"
	EntryRedCard      EntryType = "red_card"
	EntryYellowCard   EntryType = "yellow_card"
	EntrySubstitution EntryType = "substitution"
	EntryVAR          EntryType = "var"
	EntryPenalty      EntryType = "penalty"
	EntryHalfTime     EntryType = "half_time"
	EntryFullTime     EntryType = "full_time"
	EntryKickOff      EntryType = "kick_off"
	EntryInjury       EntryType = "injury"
	EntryUpdate       EntryType = "update"
)

// TeamSide locates an event on one side of the pitch, when known.
type TeamSide string

const (
	SideHome TeamSide = "home"
	SideAway TeamSide = "away"
)

// MaxContentLength bounds stored entry content.
const MaxContentLength = 500

// TruncateContent caps content at MaxContentLength bytes without splitting a
// UTF-8 sequence.
func TruncateContent(s string) string {
	if len(s) <= MaxContentLength {
		return s
	}
	cut := s[:MaxContentLength]
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut
}

// Event is a normalized timeline item before persistence. Minute is nil when
// the source carried no usable minute.
type Event struct {
	Minute    *int
	Type      EntryType
	Title     string
	Content   string
	Important bool
	Side      *TeamSide
}

// Entry is a persisted live-blog row. AutoGenerated separates pipeline output
// from editor-written entries; only the former is replaced on resync.
type Entry struct {
	ID            string
	MatchID       string
	Minute        *int
	Type          EntryType
	Title         string
	Content       string
	Important     bool
	Side          *TeamSide
	AutoGenerated bool
	CreatedAt     time.Time
}

// TeamStatistics is a typed per-side statistics block kept alongside the
// timeline.
type TeamStatistics struct {
	Possession    *int
	Shots         *int
	ShotsOnTarget *int
	Corners       *int
	Fouls         *int
	Offsides      *int
	YellowCards   *int
	RedCards      *int
}
