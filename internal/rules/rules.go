// Package rules provides loading, validation, and matching of the ordered
// forwarding rules that drive the relay. Rules are read once at startup from
// a YAML file, compiled eagerly (regex and template), and are immutable for
// the lifetime of the process; a broken rules file aborts startup instead of
// surfacing as a per-message failure later.
package rules

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"

	"github.com/aymerick/raymond"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrInvalidRules indicates an unreadable or malformed rules file. It is
// always fatal at startup.
var ErrInvalidRules = errors.New("invalid rules configuration")

// RawTextKey is the reserved template field holding the entire unprocessed
// input text. Patterns must not define a capture group with this name.
const RawTextKey = "_raw"

// RuleSpec is one rule entry as written in the rules file.
type RuleSpec struct {
	Pattern  string `yaml:"pattern"  validate:"required"`
	TopicID  int    `yaml:"topic_id" validate:"required,gt=0"`
	Template string `yaml:"template" validate:"required"`
}

// Rule is one compiled forwarding rule. The pattern is searched anywhere in
// the input with multiline semantics; the template is rendered from the
// pattern's named capture groups.
type Rule struct {
	pattern  *regexp.Regexp
	topicID  int
	template *raymond.Template
	src      string
}

// Pattern returns the rule's pattern source, for logging.
func (r *Rule) Pattern() string { return r.src }

// TopicID returns the destination message thread id within the superchat.
func (r *Rule) TopicID() int { return r.topicID }

// MatchContext maps capture group names to the substrings they captured for
// one input, plus the reserved RawTextKey entry. Groups that did not
// participate in the match are present with an empty value, so templates
// referencing them render empty instead of failing.
type MatchContext map[string]string

// match reports whether the rule's pattern occurs in text and, if so,
// returns the populated match context.
func (r *Rule) match(text string) (MatchContext, bool) {
	m := r.pattern.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}

	names := r.pattern.SubexpNames()
	ctx := make(MatchContext, len(names))
	for i, name := range names {
		if i == 0 || name == "" {
			continue
		}
		ctx[name] = m[i]
	}
	ctx[RawTextKey] = text

	return ctx, true
}

// Render executes the rule's template against a match context. Values render
// verbatim; relayed messages are plain text, not HTML, so no escaping is
// applied. A missing key renders as an empty string. An execution fault
// (such as an unknown helper invocation) is returned as an error, never a
// panic.
func (r *Rule) Render(ctx MatchContext) (string, error) {
	data := make(map[string]raymond.SafeString, len(ctx))
	for k, v := range ctx {
		data[k] = raymond.SafeString(v)
	}

	out, err := r.template.Exec(data)
	if err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}
	return out, nil
}

// Set is an ordered, immutable collection of compiled rules. Order is
// significant: FirstMatch stops at the earliest matching rule. A Set is safe
// for unsynchronized concurrent reads because it is never mutated after
// load.
type Set struct {
	rules []Rule
}

// Len returns the number of rules in the set.
func (s *Set) Len() int { return len(s.rules) }

// Rule returns the rule at index i.
func (s *Set) Rule(i int) *Rule { return &s.rules[i] }

// Match is the outcome of evaluating a set against one input text.
type Match struct {
	Index   int
	Rule    *Rule
	Context MatchContext
}

// FirstMatch scans the rules in order and returns the first whose pattern
// occurs in text, together with its populated match context. Rules after the
// first match are never evaluated. It is a pure function of the set and the
// input: the same text always yields the same match.
func (s *Set) FirstMatch(text string) (Match, bool) {
	for i := range s.rules {
		if ctx, ok := s.rules[i].match(text); ok {
			return Match{Index: i, Rule: &s.rules[i], Context: ctx}, true
		}
	}
	return Match{Index: -1}, false
}

// Load reads and compiles the rules file at path. An empty file is valid and
// yields an empty set with a warning; any malformed entry makes the whole
// load fail so that no partial rule set is ever served.
func Load(path string, logger *slog.Logger) (*Set, error) {
	if logger == nil {
		logger = slog.Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrInvalidRules, path, err)
	}

	set, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("rules file %s: %w", path, err)
	}

	if set.Len() == 0 {
		logger.Warn("Rules file is empty, no messages will be forwarded", "path", path)
		return set, nil
	}

	for i := 0; i < set.Len(); i++ {
		logger.Info("Rule loaded", "index", i, "topic_id", set.Rule(i).TopicID())
	}
	return set, nil
}

// Parse decodes and compiles a rules document. The top level must be a
// sequence of entries, each carrying pattern, topic_id, and template. Parse
// does not log; Load owns the operational logging.
func Parse(data []byte) (*Set, error) {
	var specs []RuleSpec
	if err := yaml.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRules, err)
	}

	validate := validator.New()
	compiled := make([]Rule, 0, len(specs))
	for i, spec := range specs {
		rule, err := compile(validate, spec)
		if err != nil {
			return nil, fmt.Errorf("%w: rule %d: %v", ErrInvalidRules, i, err)
		}
		compiled = append(compiled, *rule)
	}

	return &Set{rules: compiled}, nil
}

// compile validates one rule entry and compiles its pattern and template.
func compile(validate *validator.Validate, spec RuleSpec) (*Rule, error) {
	if err := validate.Struct(spec); err != nil {
		return nil, fmt.Errorf("missing or invalid field: %v", err)
	}

	// (?m) makes ^ and $ match line boundaries inside the text, matching
	// the multiline search semantics of the rules format.
	pattern, err := regexp.Compile("(?m)" + spec.Pattern)
	if err != nil {
		return nil, fmt.Errorf("compile pattern %q: %v", spec.Pattern, err)
	}

	for _, name := range pattern.SubexpNames() {
		if name == RawTextKey {
			return nil, fmt.Errorf("pattern %q defines reserved capture group %q", spec.Pattern, RawTextKey)
		}
	}

	template, err := raymond.Parse(spec.Template)
	if err != nil {
		return nil, fmt.Errorf("parse template: %v", err)
	}

	return &Rule{
		pattern:  pattern,
		topicID:  spec.TopicID,
		template: template,
		src:      spec.Pattern,
	}, nil
}
