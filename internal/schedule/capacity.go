package schedule

import (
	"fmt"
	"strings"

	"agenda-service/internal/models"
)

// ValidateCapacityGraph checks the shared-capacity declarations of one
// doctor's service rules. Each rule with a non-empty SharedCapacityWith
// contributes one directed edge; the resulting graph must stay a forest,
// and no sub-limit may exceed its pool root's period limits. Templates
// supply the root limits for inherit-mode roots. It is called before any
// rule-set write is committed, so the evaluator can assume an acyclic
// graph.
func ValidateCapacityGraph(rules map[string]models.ServiceRule, templates []models.AvailabilityTemplate) error {
	const op = "schedule.ValidateCapacityGraph"

	for name, rule := range rules {
		if rule.SharedCapacityWith == "" {
			continue
		}
		if rule.SharedCapacityWith == name {
			return fmt.Errorf("%s: service %q declares shared capacity with itself", op, name)
		}
		if _, ok := rules[rule.SharedCapacityWith]; !ok {
			return fmt.Errorf("%s: service %q shares capacity with unknown service %q", op, name, rule.SharedCapacityWith)
		}
	}

	const (
		white = 0 // unvisited
		grey  = 1 // on the current path
		black = 2 // finished
	)
	color := make(map[string]int, len(rules))

	var path []string
	var visit func(name string) error
	visit = func(name string) error {
		color[name] = grey
		path = append(path, name)

		target := rules[name].SharedCapacityWith
		if target != "" {
			switch color[target] {
			case grey:
				cycle := cyclePath(path, target)
				return fmt.Errorf("%s: shared capacity cycle: %s", op, strings.Join(cycle, " -> "))
			case white:
				if err := visit(target); err != nil {
					return err
				}
			}
		}

		path = path[:len(path)-1]
		color[name] = black
		return nil
	}

	for name := range rules {
		if color[name] == white {
			if err := visit(name); err != nil {
				return err
			}
		}
	}

	return validateSubLimits(rules, templates)
}

// cyclePath trims the DFS path down to the cycle starting at target and
// closes it for the error message.
func cyclePath(path []string, target string) []string {
	for i, name := range path {
		if name == target {
			cycle := append([]string{}, path[i:]...)
			return append(cycle, target)
		}
	}
	return append(append([]string{}, path...), target)
}

// validateSubLimits checks that a service's own sub-limit never exceeds
// the period limits of its pool root. Roots in inherit mode (or with no
// period configs of their own) take their limits from the availability
// templates, matching how the evaluator resolves the pool limit.
func validateSubLimits(rules map[string]models.ServiceRule, templates []models.AvailabilityTemplate) error {
	const op = "schedule.ValidateCapacityGraph"

	for name, rule := range rules {
		if rule.OwnSubLimit == nil || rule.SharedCapacityWith == "" {
			continue
		}
		root := ResolvePoolRoot(rules, name)
		rootRule, ok := rules[root]
		if !ok {
			continue
		}

		if rootRule.Mode == models.ModeInherit ||
			(len(rootRule.Periods) == 0 && len(rootRule.PerDayPeriods) == 0) {
			for _, tpl := range templates {
				if tpl.Active && *rule.OwnSubLimit > tpl.PatientLimit {
					return fmt.Errorf("%s: service %q sub-limit %d exceeds pool %q limit %d for period %s",
						op, name, *rule.OwnSubLimit, root, tpl.PatientLimit, tpl.Period)
				}
			}
			continue
		}

		for period, cfg := range rootRule.Periods {
			if cfg.Active && *rule.OwnSubLimit > cfg.PatientLimit {
				return fmt.Errorf("%s: service %q sub-limit %d exceeds pool %q limit %d for period %s",
					op, name, *rule.OwnSubLimit, root, cfg.PatientLimit, period)
			}
		}
		for _, periods := range rootRule.PerDayPeriods {
			for period, cfg := range periods {
				if cfg.Active && *rule.OwnSubLimit > cfg.PatientLimit {
					return fmt.Errorf("%s: service %q sub-limit %d exceeds pool %q limit %d for period %s",
						op, name, *rule.OwnSubLimit, root, cfg.PatientLimit, period)
				}
			}
		}
	}

	return nil
}

// ResolvePoolRoot follows shared-capacity edges to the terminal service
// whose patient limit is authoritative for the pool. A service with no
// outgoing edge is its own root. The visited guard makes the walk safe
// even on an unvalidated graph.
func ResolvePoolRoot(rules map[string]models.ServiceRule, service string) string {
	seen := make(map[string]bool)
	cur := service
	for {
		rule, ok := rules[cur]
		if !ok || rule.SharedCapacityWith == "" || seen[cur] {
			return cur
		}
		seen[cur] = true
		cur = rule.SharedCapacityWith
	}
}
