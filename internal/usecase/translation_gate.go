package usecase

import (
	"context"

	"github.com/clubpulse/liveblog/internal/domain/liveblog"
	"github.com/clubpulse/liveblog/internal/platform/logging"
)

// Translator is the outbound port to the translation provider. Responses
// preserve input order and count.
type Translator interface {
	TranslateBatch(ctx context.Context, texts []string, sourceLang, targetLang string) ([]string, error)
}

type TranslationGateConfig struct {
	Enabled    bool
	SourceLang string
	TargetLang string
}

// TranslationGate localizes event content for the site language. Translation
// is best effort: when disabled, misconfigured, or failing, the original
// texts pass through untouched and the sync continues.
type TranslationGate struct {
	translator Translator
	cfg        TranslationGateConfig
	logger     *logging.Logger
}

func NewTranslationGate(translator Translator, cfg TranslationGateConfig, logger *logging.Logger) *TranslationGate {
	if logger == nil {
		logger = logging.Default()
	}
	return &TranslationGate{translator: translator, cfg: cfg, logger: logger}
}

// TranslateBatch returns translated texts in input order, or the inputs
// unchanged when the gate is disabled or the provider fails.
func (g *TranslationGate) TranslateBatch(ctx context.Context, texts []string) []string {
	if len(texts) == 0 {
		return texts
	}
	if !g.cfg.Enabled || g.translator == nil {
		return texts
	}

	translated, err := g.translator.TranslateBatch(ctx, texts, g.cfg.SourceLang, g.cfg.TargetLang)
	if err != nil {
		g.logger.WarnContext(ctx, "translation failed, keeping original texts", "error", err, "texts", len(texts))
		return texts
	}
	if len(translated) != len(texts) {
		g.logger.WarnContext(ctx, "translation returned wrong count, keeping original texts",
			"want", len(texts), "got", len(translated))
		return texts
	}
	return translated
}

// Localize translates event contents and rewrites titles from the fixed
// per-language table. Titles are never machine-translated.
func (g *TranslationGate) Localize(ctx context.Context, events []liveblog.Event) []liveblog.Event {
	if len(events) == 0 {
		return events
	}

	texts := make([]string, len(events))
	for i, event := range events {
		texts[i] = event.Content
	}
	translated := g.TranslateBatch(ctx, texts)

	lang := g.cfg.TargetLang
	if !g.cfg.Enabled {
		lang = g.cfg.SourceLang
	}

	out := make([]liveblog.Event, len(events))
	for i, event := range events {
		event.Content = liveblog.TruncateContent(translated[i])
		event.Title = TitleFor(event.Type, lang)
		out[i] = event
	}
	return out
}

var entryTitles = map[string]map[liveblog.EntryType]string{
	"en": {
		liveblog.EntryGoal:         "Goal",
		liveblog.EntryRedCard:      "Red card",
		liveblog.EntryYellowCard:   "Yellow card",
		liveblog.EntrySubstitution: "Substitution",
		liveblog.EntryVAR:          "VAR",
		liveblog.EntryPenalty:      "Penalty",
		liveblog.EntryHalfTime:     "Half-time",
		liveblog.EntryFullTime:     "Full-time",
		liveblog.EntryKickOff:      "Kick-off",
		liveblog.EntryInjury:       "Injury",
		liveblog.EntryUpdate:       "Match update",
	},
	"es": {
		liveblog.EntryGoal:         "Gol",
		liveblog.EntryRedCard:      "Tarjeta roja",
		liveblog.EntryYellowCard:   "Tarjeta amarilla",
		liveblog.EntrySubstitution: "Cambio",
		liveblog.EntryVAR:          "VAR",
		liveblog.EntryPenalty:      "Penalti",
		liveblog.EntryHalfTime:     "Descanso",
		liveblog.EntryFullTime:     "Final del partido",
		liveblog.EntryKickOff:      "Comienza el partido",
		liveblog.EntryInjury:       "Lesión",
		liveblog.EntryUpdate:       "Actualización",
	},
	"fr": {
		liveblog.EntryGoal:         "But",
		liveblog.EntryRedCard:      "Carton rouge",
		liveblog.EntryYellowCard:   "Carton jaune",
		liveblog.EntrySubstitution: "Remplacement",
		liveblog.EntryVAR:          "VAR",
		liveblog.EntryPenalty:      "Penalty",
		liveblog.EntryHalfTime:     "Mi-temps",
		liveblog.EntryFullTime:     "Fin du match",
		liveblog.EntryKickOff:      "Coup d'envoi",
		liveblog.EntryInjury:       "Blessure",
		liveblog.EntryUpdate:       "Mise à jour",
	},
}

// TitleFor returns the display title for an entry type in the given
// language, falling back to English for unknown languages and to the raw
// type for unknown entry types.
func TitleFor(entryType liveblog.EntryType, lang string) string {
	table, ok := entryTitles[lang]
	if !ok {
		table = entryTitles["en"]
	}
	if title, ok := table[entryType]; ok {
		return title
	}
	return string(entryType)
}
