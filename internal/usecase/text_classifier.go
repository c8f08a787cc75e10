package usecase

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/clubpulse/liveblog/internal/domain/liveblog"
)

// TextClassifier extracts live-blog events from scraped match-report
// markdown. The pipeline is: split into lines, drop noise, clean markup,
// keep meaningful lines, extract the minute, classify, dedup, truncate.
// Output order follows input order, so identical input yields identical
// output.
type TextClassifier struct{}

func NewTextClassifier() *TextClassifier {
	return &TextClassifier{}
}

const (
	minSectionLineLength = 15
	dedupPrefixLength    = 80
)

func (c *TextClassifier) ExtractEvents(raw string) []liveblog.Event {
	var out []liveblog.Event
	seen := make(map[string]struct{})

	for _, line := range SplitSections(raw) {
		if ShouldSkip(line) {
			continue
		}
		content := CleanContent(line)
		if content == "" || !IsMeaningful(content) {
			continue
		}

		key := dedupKey(content)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		content = liveblog.TruncateContent(content)

		entryType, title, important := Classify(content)
		out = append(out, liveblog.Event{
			Minute:    ExtractMinute(content),
			Type:      entryType,
			Title:     title,
			Content:   content,
			Important: important,
		})
	}
	return out
}

var lineBreakRe = regexp.MustCompile(`\r\n?`)

// SplitSections splits scraped markdown into candidate lines, dropping
// short fragments that cannot carry an event.
func SplitSections(raw string) []string {
	normalized := lineBreakRe.ReplaceAllString(raw, "\n")
	var lines []string
	for _, section := range strings.Split(normalized, "\n\n") {
		for _, line := range strings.Split(section, "\n") {
			line = strings.TrimSpace(line)
			if len(line) < minSectionLineLength {
				continue
			}
			lines = append(lines, line)
		}
	}
	return lines
}

var (
	bareLinkRe  = regexp.MustCompile(`^\[[^\]]*\]\([^)]*\)$`)
	urlRe       = regexp.MustCompile(`https?://\S+`)
	scoreLineRe = regexp.MustCompile(`^[\p{L} .''-]+\d+\s*[-–:]\s*\d+\s*[\p{L} .''-]*$`)
)

var noiseMarkers = []string{
	"pic.twitter.com",
	"twitter.com",
	"instagram.com",
	"t.co/",
	"cdn.",
	"view this post",
	"ver esta publicación",
	"more information",
	"más información",
	"plus d'informations",
	"cookie",
	"suscríbete",
	"subscribe",
}

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".svg"}

// ShouldSkip applies the ordered noise rules. A skipped line never reaches
// the classifier, no matter what it contains.
func ShouldSkip(line string) bool {
	trimmed := strings.TrimSpace(line)
	lowered := strings.ToLower(trimmed)

	if strings.HasPrefix(trimmed, "![") {
		return true
	}
	if bareLinkRe.MatchString(trimmed) {
		return true
	}
	for _, ext := range imageExtensions {
		if strings.Contains(lowered, ext) {
			return true
		}
	}
	for _, marker := range noiseMarkers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}

	urlChars := 0
	for _, match := range urlRe.FindAllString(trimmed, -1) {
		urlChars += len(match)
	}
	if len(trimmed) > 0 && float64(urlChars)/float64(len(trimmed)) > 0.6 {
		return true
	}

	letters := 0
	for _, r := range trimmed {
		if unicode.IsLetter(r) {
			letters++
		}
	}
	if letters < 10 {
		return true
	}

	// Bare scoreline like "Real Madrid 2-1 Alavés".
	if scoreLineRe.MatchString(trimmed) && !hasDomainKeyword(lowered) {
		return true
	}

	return false
}

var (
	imageMarkupRe = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	linkMarkupRe  = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)
	emphasisRe    = regexp.MustCompile(`[*_]{1,3}`)
	headingRe     = regexp.MustCompile(`^#{1,6}\s+`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
)

// CleanContent strips markdown syntax keeping the visible text.
func CleanContent(line string) string {
	out := imageMarkupRe.ReplaceAllString(line, "")
	out = linkMarkupRe.ReplaceAllString(out, "$1")
	out = urlRe.ReplaceAllString(out, "")
	out = headingRe.ReplaceAllString(out, "")
	out = emphasisRe.ReplaceAllString(out, "")
	out = whitespaceRe.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

var (
	capitalizedNameRe = regexp.MustCompile(`\p{Lu}[\p{Ll}]+(?:\s+\p{Lu}[\p{Ll}]+)*`)
	minuteMarkerRe    = regexp.MustCompile(`\b\d{1,3}(?:\s*\+\s*\d{1,2})?\s*['′’]`)
)

// IsMeaningful keeps lines that look like event commentary: a capitalized
// name plus a domain keyword or minute marker, or a long line carrying a
// domain keyword.
func IsMeaningful(line string) bool {
	lowered := strings.ToLower(line)
	hasKeyword := hasDomainKeyword(lowered)
	hasMinute := minuteMarkerRe.MatchString(line)

	if capitalizedNameRe.MatchString(line) && (hasKeyword || hasMinute) {
		return true
	}
	return len(line) > 80 && hasKeyword
}

var (
	leadingMinuteRe = regexp.MustCompile(`^\s*(?:min(?:uto)?\.?\s*)?(\d{1,3})(?:\s*\+\s*(\d{1,2}))?\s*['′’]`)
	anyMinuteRe     = regexp.MustCompile(`(\d{1,3})(?:\s*\+\s*(\d{1,2}))?\s*['′’]`)
)

// ExtractMinute pulls a match minute from commentary, preferring a leading
// marker ("45+2' ...") over one embedded mid-line. Stoppage time is summed;
// values outside [0,120] are rejected.
func ExtractMinute(line string) *int {
	groups := leadingMinuteRe.FindStringSubmatch(line)
	if groups == nil {
		groups = anyMinuteRe.FindStringSubmatch(line)
	}
	if groups == nil {
		return nil
	}

	minute := atoiSafe(groups[1])
	if groups[2] != "" {
		minute += atoiSafe(groups[2])
	}
	if minute < 0 || minute > 120 {
		return nil
	}
	return &minute
}

func atoiSafe(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}

type classificationRule struct {
	entryType liveblog.EntryType
	title     string
	important bool
	keywords  []string
	pattern   *regexp.Regexp
}

// Ordered, first match wins. Multilingual synonym sets cover the languages
// the scraped sources publish in.
var classificationRules = []classificationRule{
	{
		entryType: liveblog.EntryGoal, title: "Goal", important: true,
		keywords: []string{"gol", "goal", "¡goool", "golazo", "marca el", "scores", "but de", "but pour"},
	},
	{
		entryType: liveblog.EntryRedCard, title: "Red card", important: true,
		keywords: []string{"roja", "red card", "expuls", "carton rouge", "sent off"},
	},
	{
		entryType: liveblog.EntryYellowCard, title: "Yellow card",
		keywords: []string{"amarilla", "yellow card", "carton jaune", "amonest", "booked"},
	},
	{
		entryType: liveblog.EntrySubstitution, title: "Substitution",
		keywords: []string{"cambio en", "doble cambio", "sustituc", "substitution", "remplac", "entra por"},
	},
	{
		entryType: liveblog.EntryVAR, title: "VAR", important: true,
		pattern: regexp.MustCompile(`\bvar\b`),
	},
	{
		entryType: liveblog.EntryPenalty, title: "Penalty", important: true,
		keywords: []string{"penalti", "penalty", "pénalty", "desde los once metros"},
	},
	{
		entryType: liveblog.EntryHalfTime, title: "Half-time",
		keywords: []string{"descanso", "half-time", "halftime", "mi-temps", "media parte"},
	},
	{
		entryType: liveblog.EntryFullTime, title: "Full-time", important: true,
		keywords: []string{"final del partido", "full-time", "fulltime", "pitido final", "fin du match", "match ends", "termina el partido"},
	},
	{
		entryType: liveblog.EntryKickOff, title: "Kick-off",
		keywords: []string{"comienza el partido", "arranca el", "kick-off", "kickoff", "coup d'envoi", "rueda el balón"},
	},
	{
		entryType: liveblog.EntryInjury, title: "Injury",
		keywords: []string{"lesión", "lesion", "injury", "injured", "blessure", "se retira lesionado"},
	},
}

// Classify assigns an entry type by the ordered keyword rules; anything
// unmatched becomes a plain update.
func Classify(content string) (liveblog.EntryType, string, bool) {
	lowered := strings.ToLower(content)
	for _, rule := range classificationRules {
		if rule.pattern != nil && rule.pattern.MatchString(lowered) {
			return rule.entryType, rule.title, rule.important
		}
		for _, keyword := range rule.keywords {
			if strings.Contains(lowered, keyword) {
				return rule.entryType, rule.title, rule.important
			}
		}
	}
	return liveblog.EntryUpdate, "Match update", false
}

var domainKeywords = func() []string {
	out := []string{"córner", "corner", "falta", "foul", "fuera de juego", "offside", "parad", "save", "disparo", "shot", "tir", "remate", "asisten", "assist", "árbitro", "referee", "portero", "keeper"}
	for _, rule := range classificationRules {
		out = append(out, rule.keywords...)
	}
	out = append(out, " var ")
	return out
}()

func hasDomainKeyword(lowered string) bool {
	for _, keyword := range domainKeywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}

func dedupKey(content string) string {
	key := strings.ToLower(whitespaceRe.ReplaceAllString(content, " "))
	if len(key) > dedupPrefixLength {
		key = key[:dedupPrefixLength]
	}
	return key
}
