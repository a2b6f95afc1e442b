package summarize

import (
	"fmt"
	"log"
	"regexp"

	"meetscribe/config"
)

// Rules is the compiled heuristic vocabulary.
type Rules struct {
	DecisionTriggers []string
	ActionTriggers   []string
	RiskTriggers     []string
	Stopwords        map[string]struct{}
	AssigneePatterns []*regexp.Regexp
	DuePatterns      []*regexp.Regexp
	Unspecified      string
}

// CompileRules builds extraction rules from the trigger configuration.
// Invalid patterns are skipped with a warning.
func CompileRules(cfg config.TriggersConfig) (Rules, error) {
	rules := Rules{
		DecisionTriggers: cfg.DecisionTriggers,
		ActionTriggers:   cfg.ActionTriggers,
		RiskTriggers:     cfg.RiskTriggers,
		Stopwords:        make(map[string]struct{}, len(cfg.Stopwords)),
		Unspecified:      cfg.Unspecified,
	}
	if rules.Unspecified == "" {
		rules.Unspecified = "ไม่ระบุ"
	}
	for _, w := range cfg.Stopwords {
		rules.Stopwords[w] = struct{}{}
	}
	var err error
	rules.AssigneePatterns, err = compilePatterns(cfg.AssigneePatterns, "assignee")
	if err != nil {
		return rules, err
	}
	rules.DuePatterns, err = compilePatterns(cfg.DuePatterns, "due")
	return rules, err
}

func compilePatterns(patterns []string, kind string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			log.Printf("skipping invalid %s pattern %q: %v", kind, p, err)
			continue
		}
		out = append(out, re)
	}
	if len(patterns) > 0 && len(out) == 0 {
		return nil, fmt.Errorf("no valid %s patterns", kind)
	}
	return out, nil
}
