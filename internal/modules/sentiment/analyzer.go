// Package sentiment scores free text with a rule-based valence lexicon.
package sentiment

import (
	"math"
	"strings"
	"unicode"
)

const (
	// negationScale flips and dampens a word preceded by a negation.
	negationScale = -0.74
	// negationWindow is how many preceding tokens are checked for a negation.
	negationWindow = 3
	// normalizationAlpha approximates the maximum expected valence sum.
	normalizationAlpha = 15
	// butBefore and butAfter weight clauses around a contrastive "but".
	butBefore = 0.5
	butAfter  = 1.5
)

// Scores are the proportions of negative, neutral and positive content plus
// a normalized compound score in [-1, 1].
type Scores struct {
	Neg      float64 `json:"neg"`
	Neu      float64 `json:"neu"`
	Pos      float64 `json:"pos"`
	Compound float64 `json:"compound"`
}

// Neutral is returned for text with no tokens.
var Neutral = Scores{Neu: 1}

// Analyzer scores text. The zero value is not usable; use NewAnalyzer.
type Analyzer struct {
	lexicon   map[string]float64
	boosters  map[string]float64
	negations map[string]bool
}

// NewAnalyzer returns an analyzer using the built-in lexicon.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		lexicon:   lexicon,
		boosters:  boosters,
		negations: negations,
	}
}

// Analyze scores text.
func (a *Analyzer) Analyze(text string) Scores {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return Neutral
	}

	valences := make([]float64, len(tokens))
	for i := range tokens {
		valences[i] = a.valence(tokens, i)
	}
	applyBut(tokens, valences)

	var sum, posSum, negSum float64
	var neutral int
	for i, v := range valences {
		if _, isBooster := a.boosters[tokens[i]]; isBooster {
			continue
		}
		sum += v
		switch {
		case v > 0:
			posSum += v + 1
		case v < 0:
			negSum += v - 1
		default:
			neutral++
		}
	}

	total := posSum + math.Abs(negSum) + float64(neutral)
	if total == 0 {
		return Neutral
	}

	return Scores{
		Neg:      round3(math.Abs(negSum) / total),
		Neu:      round3(float64(neutral) / total),
		Pos:      round3(posSum / total),
		Compound: round4(normalize(sum)),
	}
}

func (a *Analyzer) valence(tokens []string, i int) float64 {
	v, ok := a.lexicon[tokens[i]]
	if !ok {
		return 0
	}

	if i > 0 {
		if boost, ok := a.boosters[tokens[i-1]]; ok {
			if v > 0 {
				v += boost
			} else {
				v -= boost
			}
		}
	}

	for j := i - 1; j >= 0 && j >= i-negationWindow; j-- {
		if a.negations[tokens[j]] {
			v *= negationScale
			break
		}
	}
	return v
}

// applyBut dampens sentiment before the first "but" and amplifies it after.
func applyBut(tokens []string, valences []float64) {
	idx := -1
	for i, tok := range tokens {
		if tok == "but" {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	for i := range valences {
		switch {
		case i < idx:
			valences[i] *= butBefore
		case i > idx:
			valences[i] *= butAfter
		}
	}
}

// tokenize lowercases text, drops apostrophes and splits on anything that
// is not a letter, digit or hyphen.
func tokenize(text string) []string {
	text = strings.ToLower(text)
	text = strings.NewReplacer("'", "", "’", "").Replace(text)
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})

	tokens := fields[:0]
	for _, f := range fields {
		if f = strings.Trim(f, "-"); f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

func normalize(score float64) float64 {
	n := score / math.Sqrt(score*score+normalizationAlpha)
	return math.Max(-1, math.Min(1, n))
}

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }

func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
