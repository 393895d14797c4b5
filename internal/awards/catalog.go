package awards

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/courtline/stat-engine/pkg/models"
)

// RuleDefinitionError reports a malformed award rule. Catalog loading fails
// fast on the first bad rule so a broken catalog never reaches evaluation.
type RuleDefinitionError struct {
	RuleID string
	Reason string
}

func (e *RuleDefinitionError) Error() string {
	return fmt.Sprintf("award rule %q: %s", e.RuleID, e.Reason)
}

// Catalog is the fully resolved, versioned award rule list the engine
// evaluates. It is immutable once loaded.
type Catalog struct {
	Version string             `json:"version"`
	Rules   []models.AwardRule `json:"rules"`
}

// LoadCatalog reads and validates an award catalog from a JSON file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading award catalog: %w", err)
	}

	var catalog Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parsing award catalog: %w", err)
	}

	if err := catalog.Validate(); err != nil {
		return nil, err
	}

	return &catalog, nil
}

// Validate checks every rule in the catalog.
func (c *Catalog) Validate() error {
	seen := make(map[string]bool, len(c.Rules))
	for _, rule := range c.Rules {
		if seen[rule.ID] {
			return &RuleDefinitionError{RuleID: rule.ID, Reason: "duplicate rule id"}
		}
		seen[rule.ID] = true

		if err := validateRule(rule); err != nil {
			return err
		}
	}
	return nil
}

// RulesForScope returns the catalog rules with the given scope.
func (c *Catalog) RulesForScope(scope models.AwardScope) []models.AwardRule {
	var rules []models.AwardRule
	for _, r := range c.Rules {
		if r.Scope == scope {
			rules = append(rules, r)
		}
	}
	return rules
}

func validateRule(rule models.AwardRule) error {
	fail := func(reason string) error {
		return &RuleDefinitionError{RuleID: rule.ID, Reason: reason}
	}

	if rule.ID == "" {
		return fail("missing id")
	}

	switch rule.Scope {
	case models.ScopeGame, models.ScopeWeekly, models.ScopeSeason:
	default:
		return fail(fmt.Sprintf("unknown scope %q", rule.Scope))
	}

	switch rule.Category {
	case models.CategoryCounting, models.CategoryRate, models.CategoryQuarter:
	default:
		return fail(fmt.Sprintf("unknown category %q", rule.Category))
	}

	switch rule.Direction {
	case models.DirectionMax, models.DirectionMin:
	default:
		return fail(fmt.Sprintf("unknown direction %q", rule.Direction))
	}

	if rule.Metric == "" {
		return fail("missing metric")
	}
	if !knownMetric(rule.Metric) {
		return fail(fmt.Sprintf("unknown metric %q (known: %s)", rule.Metric, strings.Join(metricKeys(), ", ")))
	}

	// Quarter-stat rules read team quarter scores, so they only make sense
	// against a single game's team totals.
	if rule.Category == models.CategoryQuarter {
		if !rule.Team {
			return fail("quarter category requires a team rule")
		}
		if rule.Scope != models.ScopeGame {
			return fail("quarter category requires game scope")
		}
	}

	// Rate rules ranked comparatively must carry a minimum-volume bar so a
	// two-attempt 100% line cannot top a season percentage ranking.
	if rule.Category == models.CategoryRate && rule.Comparative() {
		if rule.MinVolumeMetric == "" || rule.MinVolume <= 0 {
			return fail("comparative rate rule requires a minimum volume threshold")
		}
	}

	if rule.MinVolumeMetric != "" && !knownMetric(rule.MinVolumeMetric) {
		return fail(fmt.Sprintf("unknown min volume metric %q", rule.MinVolumeMetric))
	}

	// Comparative single-winner rules need a declared way to break ties.
	if rule.Comparative() && !rule.MultiWinner && rule.TieBreakMetric == "" {
		return fail("comparative single-winner rule requires a tie-break metric")
	}
	if rule.TieBreakMetric != "" && !knownMetric(rule.TieBreakMetric) {
		return fail(fmt.Sprintf("unknown tie-break metric %q", rule.TieBreakMetric))
	}

	return nil
}
