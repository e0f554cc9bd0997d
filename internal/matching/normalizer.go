// Package matching turns free-form skill lists into comparable sets and scores
// a candidate against a job's required skills.
package matching

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxSkillLength is the longest accepted skill token, in runes.
const MaxSkillLength = 64

// DefaultSynonyms maps common aliases to a canonical skill name.
var DefaultSynonyms = map[string]string{
	"js":         "javascript",
	"ecmascript": "javascript",
	"ts":         "typescript",
	"golang":     "go",
	"k8s":        "kubernetes",
	"postgres":   "postgresql",
	"psql":       "postgresql",
	"nodejs":     "node.js",
	"node":       "node.js",
	"reactjs":    "react",
	"react.js":   "react",
	"py":         "python",
	"py3":        "python",
	"c sharp":    "c#",
	"csharp":     "c#",
	"ml":         "machine learning",
	"aws cloud":  "aws",
}

// InvalidSkillError reports a token that cannot be normalized.
type InvalidSkillError struct {
	Skill  string
	Reason string
}

func (e *InvalidSkillError) Error() string {
	return fmt.Sprintf("invalid skill %q: %s", e.Skill, e.Reason)
}

// Normalizer canonicalizes skill tokens. It is safe for concurrent use.
type Normalizer struct {
	synonyms map[string]string
}

// NewNormalizer builds a normalizer from DefaultSynonyms plus overrides.
// Override keys and values are normalized the same way tokens are.
func NewNormalizer(overrides map[string]string) *Normalizer {
	n := &Normalizer{synonyms: make(map[string]string, len(DefaultSynonyms)+len(overrides))}
	for k, v := range DefaultSynonyms {
		n.synonyms[fold(k)] = fold(v)
	}
	for k, v := range overrides {
		k, v = fold(k), fold(v)
		if k == "" || v == "" {
			continue
		}
		n.synonyms[k] = v
	}
	return n
}

// ParseSynonyms reads "alias:canonical,alias:canonical" pairs.
func ParseSynonyms(raw string) (map[string]string, error) {
	out := make(map[string]string)
	if strings.TrimSpace(raw) == "" {
		return out, nil
	}
	for _, pair := range strings.Split(raw, ",") {
		alias, canonical, ok := strings.Cut(pair, ":")
		if !ok || strings.TrimSpace(alias) == "" || strings.TrimSpace(canonical) == "" {
			return nil, fmt.Errorf("malformed synonym pair %q", pair)
		}
		out[strings.TrimSpace(alias)] = strings.TrimSpace(canonical)
	}
	return out, nil
}

// Normalize returns the canonical form of one skill token.
func (n *Normalizer) Normalize(skill string) (string, error) {
	if err := checkToken(skill); err != nil {
		return "", err
	}
	key := fold(skill)
	if key == "" {
		return "", &InvalidSkillError{Skill: skill, Reason: "empty"}
	}
	if canonical, ok := n.synonyms[key]; ok {
		return canonical, nil
	}
	return key, nil
}

// NormalizeSet normalizes skills into a deduplicated list that keeps first-seen order.
func (n *Normalizer) NormalizeSet(skills []string) ([]string, error) {
	seen := make(map[string]struct{}, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		canonical, err := n.Normalize(s)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[canonical]; dup {
			continue
		}
		seen[canonical] = struct{}{}
		out = append(out, canonical)
	}
	return out, nil
}

// Valid reports whether skill would normalize without error.
func (n *Normalizer) Valid(skill string) bool {
	_, err := n.Normalize(skill)
	return err == nil
}

func checkToken(skill string) error {
	if strings.TrimSpace(skill) == "" {
		return &InvalidSkillError{Skill: skill, Reason: "empty"}
	}
	count := 0
	for _, r := range skill {
		if unicode.IsControl(r) {
			return &InvalidSkillError{Skill: skill, Reason: "contains control characters"}
		}
		count++
	}
	if count > MaxSkillLength {
		return &InvalidSkillError{Skill: skill, Reason: fmt.Sprintf("longer than %d characters", MaxSkillLength)}
	}
	return nil
}

// fold lowercases, strips diacritics and collapses inner whitespace.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.Join(strings.Fields(strings.ToLower(out)), " ")
}
