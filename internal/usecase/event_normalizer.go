package usecase

import (
	"fmt"
	"strings"

	"github.com/clubpulse/liveblog/internal/domain/liveblog"
	"github.com/clubpulse/liveblog/internal/domain/teamalias"
)

// EventNormalizer turns provider timeline items into live-blog events with
// deterministic titles and content.
type EventNormalizer struct {
	matcher *teamalias.Matcher
}

func NewEventNormalizer(matcher *teamalias.Matcher) *EventNormalizer {
	return &EventNormalizer{matcher: matcher}
}

// Normalize maps one raw provider event. It never fails: unrecognized types
// become update entries carrying the raw type and detail. Minutes are the
// regulation minute plus stoppage, unclamped.
func (n *EventNormalizer) Normalize(raw RawEvent, homeTeam, awayTeam string) liveblog.Event {
	minute := raw.Minute
	if raw.ExtraMinute != nil {
		minute += *raw.ExtraMinute
	}

	event := liveblog.Event{
		Minute: &minute,
		Side:   n.resolveSide(raw.Team, homeTeam, awayTeam),
	}

	player := strings.TrimSpace(raw.Player)
	if player == "" {
		player = "Unknown"
	}
	team := strings.TrimSpace(raw.Team)
	detail := strings.TrimSpace(raw.Detail)

	switch strings.ToLower(strings.TrimSpace(raw.Type)) {
	case "goal":
		n.normalizeGoal(&event, detail, player, team, raw)
	case "card":
		n.normalizeCard(&event, detail, player, team)
	case "subst":
		incoming := strings.TrimSpace(raw.Assist)
		if incoming == "" {
			incoming = "Unknown"
		}
		event.Type = liveblog.EntrySubstitution
		event.Title = "Substitution"
		event.Content = fmt.Sprintf("Substitution for %s: %s replaces %s.", team, incoming, player)
	case "var":
		event.Type = liveblog.EntryVAR
		event.Important = true
		event.Title = "VAR"
		if detail == "" {
			detail = "decision under review"
		}
		event.Content = fmt.Sprintf("VAR review: %s.", detail)
	default:
		event.Type = liveblog.EntryUpdate
		event.Title = "Match update"
		parts := make([]string, 0, 2)
		if rawType := strings.TrimSpace(raw.Type); rawType != "" {
			parts = append(parts, rawType)
		}
		if detail != "" {
			parts = append(parts, detail)
		}
		event.Content = strings.Join(parts, ": ")
	}

	event.Content = liveblog.TruncateContent(event.Content)
	return event
}

func (n *EventNormalizer) normalizeGoal(event *liveblog.Event, detail, player, team string, raw RawEvent) {
	event.Important = true
	lowered := strings.ToLower(detail)
	switch {
	case strings.Contains(lowered, "own goal"):
		event.Type = liveblog.EntryGoal
		event.Title = "Own goal"
		event.Content = fmt.Sprintf("Own goal by %s (%s).", player, team)
	case strings.Contains(lowered, "missed penalty"):
		event.Type = liveblog.EntryPenalty
		event.Important = false
		event.Title = "Penalty missed"
		event.Content = fmt.Sprintf("%s misses a penalty for %s.", player, team)
	case strings.Contains(lowered, "penalty"):
		event.Type = liveblog.EntryGoal
		event.Title = "Penalty goal"
		event.Content = fmt.Sprintf("%s converts the penalty for %s.", player, team)
	default:
		event.Type = liveblog.EntryGoal
		event.Title = "Goal"
		if assist := strings.TrimSpace(raw.Assist); assist != "" {
			event.Content = fmt.Sprintf("Goal for %s! %s scores, assisted by %s.", team, player, assist)
		} else {
			event.Content = fmt.Sprintf("Goal for %s! %s scores.", team, player)
		}
	}
}

func (n *EventNormalizer) normalizeCard(event *liveblog.Event, detail, player, team string) {
	lowered := strings.ToLower(detail)
	// A second yellow is shown as a red card.
	if strings.Contains(lowered, "red") || strings.Contains(lowered, "second") {
		event.Type = liveblog.EntryRedCard
		event.Important = true
		event.Title = "Red card"
		event.Content = fmt.Sprintf("Red card for %s (%s).", player, team)
		return
	}
	event.Type = liveblog.EntryYellowCard
	event.Title = "Yellow card"
	event.Content = fmt.Sprintf("Yellow card for %s (%s).", player, team)
}

func (n *EventNormalizer) resolveSide(team, homeTeam, awayTeam string) *liveblog.TeamSide {
	if strings.TrimSpace(team) == "" {
		return nil
	}
	if n.matcher.TeamsMatch(team, homeTeam) {
		side := liveblog.SideHome
		return &side
	}
	if n.matcher.TeamsMatch(team, awayTeam) {
		side := liveblog.SideAway
		return &side
	}
	return nil
}
