// Package catalog provides the badge definition catalog.
//
// The catalog ships with a built-in default badge set and can be extended or
// overridden from a YAML file. Every requirement set is validated through the
// criteria parser at load time, so a misconfigured badge fails the process at
// startup instead of silently evaluating to zero at runtime.
package catalog

import (
	"fmt"
	"sort"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/acclaimhq/acclaim/internal/domain/criteria"
	"github.com/acclaimhq/acclaim/internal/domain/model"
)

// Catalog is an immutable, validated set of badge definitions. Build one
// with Load; reads are safe for concurrent use.
type Catalog struct {
	byID  map[string]model.BadgeDefinition
	order []string
}

// Defaults returns the built-in badge set.
func Defaults() []model.BadgeDefinition {
	return []model.BadgeDefinition{
		{
			ID:          "collaboration-hero",
			Name:        "Collaboration Hero",
			Description: "Consistently shows up for teammates across the month.",
			Icon:        "🤝",
			Rarity:      "rare",
			Points:      50,
			Category:    "teamwork",
			Unlock:      "Log 10 collaboration efforts in a month.",
			Active:      true,
			Requirement: map[string]float64{"minCollaborationEfforts": 10},
			Window:      model.WindowMonth,
		},
		{
			ID:          "problem-solver",
			Name:        "Problem Solver",
			Description: "Squashes the bugs that matter.",
			Icon:        "🔧",
			Rarity:      "uncommon",
			Points:      40,
			Category:    "craft",
			Unlock:      "Fix 5 bugs with impact 6 or higher in a month.",
			Active:      true,
			Requirement: map[string]float64{"minBugFixes": 5, "minImpactScore": 6},
			Window:      model.WindowMonth,
		},
		{
			ID:          "knowledge-sharer",
			Name:        "Knowledge Sharer",
			Description: "Lifts the whole team through reviews and mentoring.",
			Icon:        "📚",
			Rarity:      "rare",
			Points:      50,
			Category:    "growth",
			Unlock:      "Complete 3 mentoring efforts and 5 code reviews in a month.",
			Active:      true,
			Requirement: map[string]float64{"minMentoringEfforts": 3, "minCodeReviews": 5},
			Window:      model.WindowMonth,
		},
		{
			ID:          "consistency-champion",
			Name:        "Consistency Champion",
			Description: "Shows up every single day.",
			Icon:        "📆",
			Rarity:      "epic",
			Points:      75,
			Category:    "habits",
			Unlock:      "Keep a 14-day activity streak.",
			Active:      true,
			Requirement: map[string]float64{"minStreakDays": 14, "minDailyEfforts": 1},
			Window:      model.WindowMonth,
		},
		{
			ID:          "innovation-spark",
			Name:        "Innovation Spark",
			Description: "Ships the features nobody asked for but everybody needed.",
			Icon:        "🚀",
			Rarity:      "epic",
			Points:      75,
			Category:    "craft",
			Unlock:      "Deliver 3 high-impact features in a quarter.",
			Active:      true,
			Requirement: map[string]float64{"minInnovativeFeatures": 3, "minImpactScore": 7},
			Window:      model.WindowQuarter,
		},
		{
			ID:          "team-player",
			Name:        "Team Player",
			Description: "The glue of the team, quarter after quarter.",
			Icon:        "🏅",
			Rarity:      "legendary",
			Points:      100,
			Category:    "teamwork",
			Unlock:      "Log 15 team efforts with a collaborative majority in a quarter.",
			Active:      true,
			Requirement: map[string]float64{"minTeamEfforts": 15, "positiveCollaborationRatio": 0.6},
			Window:      model.WindowQuarter,
		},
	}
}

// badgeFile is the YAML shape of a catalog file.
type badgeFile struct {
	Badges []model.BadgeDefinition `koanf:"badges"`
}

// Load builds a catalog from the built-in defaults plus, when path is
// non-empty, the badges in the YAML file at path. A file badge with an id
// matching a default replaces it; new ids extend the set. Any invalid
// requirement set fails the whole load.
func Load(path string) (*Catalog, error) {
	defs := Defaults()

	if path != "" {
		k := koanf.New(".")
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadCatalog, path, err)
		}
		var bf badgeFile
		if err := k.UnmarshalWithConf("", &bf, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadCatalog, path, err)
		}
		defs = merge(defs, bf.Badges)
	}

	c := &Catalog{byID: make(map[string]model.BadgeDefinition, len(defs))}
	for _, d := range defs {
		if d.ID == "" {
			return nil, fmt.Errorf("%w: badge with empty id", ErrInvalidDefinition)
		}
		if _, err := criteria.ParseRequirement(d.Requirement, d.Window); err != nil {
			return nil, fmt.Errorf("%w: badge %q: %v", ErrInvalidDefinition, d.ID, err)
		}
		if _, dup := c.byID[d.ID]; !dup {
			c.order = append(c.order, d.ID)
		}
		c.byID[d.ID] = d
	}
	sort.Strings(c.order)
	return c, nil
}

// merge overlays file badges onto the defaults, replacing by id.
func merge(defaults, overlay []model.BadgeDefinition) []model.BadgeDefinition {
	out := make([]model.BadgeDefinition, len(defaults))
	copy(out, defaults)
	idx := make(map[string]int, len(out))
	for i, d := range out {
		idx[d.ID] = i
	}
	for _, b := range overlay {
		if i, ok := idx[b.ID]; ok {
			out[i] = b
			continue
		}
		idx[b.ID] = len(out)
		out = append(out, b)
	}
	return out
}

// FindBadgeDefinition returns the badge with the given id.
func (c *Catalog) FindBadgeDefinition(id string) (model.BadgeDefinition, error) {
	d, ok := c.byID[id]
	if !ok {
		return model.BadgeDefinition{}, fmt.Errorf("%w: %q", ErrBadgeNotFound, id)
	}
	return d, nil
}

// FindBadgeDefinitions returns the catalog's badges sorted by id. With
// activeOnly set, retired badges are skipped.
func (c *Catalog) FindBadgeDefinitions(activeOnly bool) []model.BadgeDefinition {
	out := make([]model.BadgeDefinition, 0, len(c.order))
	for _, id := range c.order {
		d := c.byID[id]
		if activeOnly && !d.Active {
			continue
		}
		out = append(out, d)
	}
	return out
}

// Size returns the number of badges in the catalog, retired ones included.
func (c *Catalog) Size() int { return len(c.byID) }
