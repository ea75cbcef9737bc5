// Package recognition converts qualifying efforts into human-readable
// recognition records.
//
// Not every effort yields a recognition: only those whose impact score meets
// the synthesizer's minimum threshold are converted. Message and glyph are
// selected by the effort's type; selection is deterministic per effort so
// that re-synthesis never drifts.
package recognition

import (
	"hash/fnv"
	"strings"

	"github.com/google/uuid"

	"github.com/acclaimhq/acclaim/internal/domain/model"
)

// DefaultMinImpact is the policy threshold below which efforts are not
// converted into recognitions.
const DefaultMinImpact = 5

// defaultGlyph is used for effort types without a dedicated glyph.
const defaultGlyph = "🏅"

var glyphs = map[model.EffortType]string{
	model.TypeFeatureWork:   "🚀",
	model.TypeBugFix:        "🔧",
	model.TypeCodeReview:    "👀",
	model.TypeCollaboration: "🤝",
	model.TypeLearning:      "📚",
	model.TypeMentoring:     "🧭",
}

// templates holds appreciation messages per effort type. "{effort}" is
// replaced with the effort's title.
var templates = map[model.EffortType][]string{
	model.TypeBugFix: {
		"Outstanding debugging! Your fix on {effort} addresses the root cause effectively.",
		"Excellent troubleshooting on {effort}! You identified and resolved this issue with precision.",
		"Great debugging work on {effort}! Your attention to detail caught what others might have missed.",
	},
	model.TypeFeatureWork: {
		"Fantastic feature work on {effort}! Your implementation is solid and ready for production.",
		"Excellent delivery on {effort}! Your feature adds real value for our users.",
		"Impressive development on {effort}! Your execution shows thoughtful design.",
	},
	model.TypeCodeReview: {
		"Fantastic code review on {effort}! Your detailed feedback strengthens our codebase.",
		"Outstanding peer review on {effort}! Your constructive comments keep our standards high.",
		"Great review on {effort}! Your thorough analysis raises the bar for code quality.",
	},
	model.TypeCollaboration: {
		"Amazing teamwork on {effort}! Your collaborative spirit strengthens the entire team.",
		"Excellent collaboration on {effort}! Your willingness to help others succeed is appreciated.",
		"Outstanding partnership on {effort}! Great job working across boundaries.",
	},
	model.TypeLearning: {
		"Congratulations on {effort}! Your growth mindset is inspiring.",
		"Excellent skill development with {effort}! Your dedication strengthens our team.",
		"Great progress on {effort}! Your initiative to expand your knowledge shows leadership.",
	},
	model.TypeMentoring: {
		"Outstanding mentoring on {effort}! Thank you for investing in others' growth.",
		"Excellent guidance on {effort}! Your mentorship shapes talent across the team.",
		"Great job mentoring on {effort}! Your patience and knowledge transfer are invaluable.",
	},
}

// impactPhrases are appended to messages for high-impact work.
var impactPhrases = map[string][]string{
	"transformational": {
		"This makes a transformational impact on our product.",
		"This is game-changing work that sets a new standard for the team.",
	},
	"significant": {
		"This has significant impact on our product quality and reliability.",
		"This creates lasting value for the whole organization.",
	},
}

// Option applies a configuration option to the Synthesizer.
type Option func(*Synthesizer)

// WithMinImpact overrides the minimum impact score an effort needs to earn
// a recognition.
func WithMinImpact(n int) Option {
	return func(s *Synthesizer) {
		if n >= model.MinImpact && n <= model.MaxImpact {
			s.minImpact = n
		}
	}
}

// Synthesizer builds recognition records from efforts.
type Synthesizer struct {
	minImpact int
}

// NewSynthesizer creates a synthesizer with the default policy threshold.
func NewSynthesizer(opts ...Option) *Synthesizer {
	s := &Synthesizer{minImpact: DefaultMinImpact}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MinImpact returns the active policy threshold.
func (s *Synthesizer) MinImpact() int { return s.minImpact }

// Synthesize converts an effort into a recognition. The second return is
// false when the effort does not qualify. The recognition's timestamp
// mirrors the source effort so that window queries over efforts and
// recognitions agree; the 1:1 effort invariant is enforced by the store on
// insert, keeping re-synthesis a no-op.
func (s *Synthesizer) Synthesize(e model.Effort) (model.Recognition, bool) {
	if e.Impact < s.minImpact {
		return model.Recognition{}, false
	}
	return model.Recognition{
		ID:         uuid.NewString(),
		EmployeeID: e.EmployeeID,
		EffortID:   e.ID,
		Message:    composeMessage(e),
		Glyph:      glyphFor(e.Type),
		Category:   e.Type,
		Impact:     e.Impact,
		At:         e.At,
	}, true
}

func glyphFor(t model.EffortType) string {
	if g, ok := glyphs[t]; ok {
		return g
	}
	return defaultGlyph
}

// composeMessage picks a template keyed on effort type and substitutes the
// effort's title. The pick is a stable hash of the effort ID, so the same
// effort always produces the same message.
func composeMessage(e model.Effort) string {
	set, ok := templates[e.Type]
	if !ok {
		set = templates[model.TypeCollaboration]
	}
	msg := set[pick(e.ID, len(set))]

	title := strings.TrimSpace(e.Title)
	if title == "" {
		title = "your contribution"
	}
	msg = strings.ReplaceAll(msg, "{effort}", title)

	if phrases, ok := impactPhrases[impactCategory(e.Impact)]; ok {
		msg += " " + phrases[pick(e.ID, len(phrases))]
	}
	return msg
}

func impactCategory(score int) string {
	switch {
	case score >= 9:
		return "transformational"
	case score >= 7:
		return "significant"
	case score >= 5:
		return "moderate"
	case score >= 3:
		return "small"
	default:
		return "minimal"
	}
}

func pick(id string, n int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return int(h.Sum32() % uint32(n))
}
