// Package command resolves voice phrases and menu actions to intents and
// dispatches them against the current selection.
package command

import (
	"image/color"
	"strings"

	"golang.org/x/image/colornames"
)

// Intent is a recognized user command.
type Intent int

const (
	IntentNone Intent = iota
	IntentRecolor
	IntentLinearize
	IntentRound
	IntentSimplify
	IntentDelete
	IntentUndo
	IntentDeselect
)

var intentNames = map[Intent]string{
	IntentNone:      "none",
	IntentRecolor:   "recolor",
	IntentLinearize: "linearize",
	IntentRound:     "round",
	IntentSimplify:  "simplify",
	IntentDelete:    "delete",
	IntentUndo:      "undo",
	IntentDeselect:  "deselect",
}

func (i Intent) String() string {
	if n, ok := intentNames[i]; ok {
		return n
	}
	return "unknown"
}

// ParseIntent maps a canonical intent name back to its Intent.
func ParseIntent(name string) (Intent, bool) {
	for i, n := range intentNames {
		if n == name && i != IntentNone {
			return i, true
		}
	}
	return IntentNone, false
}

// Command is a resolved intent with its argument.
type Command struct {
	Intent Intent
	// Color is set for IntentRecolor when the input named one.
	Color    *color.NRGBA
	Phrase   string
	FromMenu bool
}

// Resolver turns free text into a command.
type Resolver interface {
	Resolve(phrase string) (Command, bool)
}

// KeywordResolver matches phrases against keyword sets. The first intent
// with a keyword contained in the phrase wins, except that a named color
// turns a shape match into a recolor ("paint the line red"). A color name
// alone implies a recolor.
type KeywordResolver struct {
	Rules  []Rule
	Colors map[string]color.NRGBA
}

// Rule lists the keywords that select one intent.
type Rule struct {
	Intent   Intent
	Keywords []string
}

// DefaultRules is the phrase table shared by voice and menu input. Order
// matters: undo is checked first so "undo the color" is not a recolor.
var DefaultRules = []Rule{
	{IntentUndo, []string{"undo", "revert", "go back"}},
	{IntentDeselect, []string{"deselect", "cancel", "never mind"}},
	{IntentDelete, []string{"delete", "remove", "erase"}},
	{IntentLinearize, []string{"straight", "linear", "line"}},
	{IntentRound, []string{"round", "curve", "circle", "arc"}},
	{IntentSimplify, []string{"simplify", "smooth", "clean"}},
	{IntentRecolor, []string{"color", "colour", "paint"}},
}

// NewKeywordResolver creates a resolver with rules and every CSS color name.
func NewKeywordResolver(rules []Rule) *KeywordResolver {
	r := &KeywordResolver{Rules: rules, Colors: make(map[string]color.NRGBA, len(colornames.Map))}
	for name, c := range colornames.Map {
		r.Colors[name] = color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
	}
	return r
}

// Resolve implements Resolver.
func (r *KeywordResolver) Resolve(phrase string) (Command, bool) {
	text := normalize(phrase)
	cmd := Command{Phrase: phrase}
	if text == "" {
		return cmd, false
	}

	if c, ok := r.findColor(text); ok {
		cmd.Color = &c
	}
	for _, rule := range r.Rules {
		for _, kw := range rule.Keywords {
			if containsWord(text, kw) {
				cmd.Intent = rule.Intent
				if cmd.Color != nil && isShape(rule.Intent) {
					cmd.Intent = IntentRecolor
				}
				return cmd, true
			}
		}
	}
	if cmd.Color != nil {
		cmd.Intent = IntentRecolor
		return cmd, true
	}
	return cmd, false
}

// isShape reports whether i reshapes a stroke. Their keywords double as
// stroke nouns, so they yield to a color named in the same phrase.
func isShape(i Intent) bool {
	return i == IntentLinearize || i == IntentRound || i == IntentSimplify
}

// findColor looks for a color name, joining up to three consecutive words
// so spoken "dark slate gray" matches "darkslategray".
func (r *KeywordResolver) findColor(text string) (color.NRGBA, bool) {
	words := strings.Fields(text)
	for n := 3; n >= 1; n-- {
		for i := 0; i+n <= len(words); i++ {
			if c, ok := r.Colors[strings.Join(words[i:i+n], "")]; ok {
				return c, true
			}
		}
	}
	return color.NRGBA{}, false
}

func normalize(s string) string {
	s = strings.ToLower(s)
	s = strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r == ' ' {
			return r
		}
		if r == '-' || r == '_' {
			return ' '
		}
		return -1
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// containsWord reports whether kw appears in text on word boundaries.
// kw may itself span several words.
func containsWord(text, kw string) bool {
	padded := " " + text + " "
	return strings.Contains(padded, " "+kw+" ") || strings.Contains(padded, " "+kw+"s ")
}
