package mars

import (
	"fmt"

	"github.com/katalvlaran/mars/forward"
)

// FeatureRef names a feature to restrict to linear-only entry (no hinge
// search), either by its index in X's columns or by its label. Exactly
// one of Index or Name should be set; Name takes precedence when
// non-empty, and is resolved against Options.XLabels.
type FeatureRef struct {
	Index int
	Name  string
}

// Options bundles Fit's tunable knobs. The zero value is NOT valid;
// start from DefaultOptions and override individual fields.
type Options struct {
	MaxTerms        int          // max basis terms the forward pass may build; must be positive
	MaxDegree       int          // max interaction degree; must be positive
	Penalty         float64      // GCV effective-degrees-of-freedom cost per term
	Endspan         int          // -1 derives from EndspanAlpha
	EndspanAlpha    float64      // endspan derivation parameter, in (0,1)
	Minspan         int          // -1 derives from MinspanAlpha
	MinspanAlpha    float64      // minspan derivation parameter, in (0,1)
	Thresh          float64      // minimum per-iteration RSQ improvement to continue
	MinSearchPoints int          // lower bound on knots actually evaluated before check_every thins them
	CheckEvery      int          // -1 derives from MinSearchPoints
	AllowLinear     bool         // allow knotless linear terms to compete with hinge pairs
	LinVars         []FeatureRef // features restricted to linear-only entry
	XLabels         []string     // optional presentation labels, length == NumVariables(X)
}

// DefaultOptions returns Options seeded with the core's documented
// defaults for a data set with n features (max_terms = 2n+10).
func DefaultOptions(n int) Options {
	def := forward.DefaultConfig(n)

	return Options{
		MaxTerms:        def.MaxTerms,
		MaxDegree:       def.MaxDegree,
		Penalty:         def.Penalty,
		Endspan:         def.Endspan,
		EndspanAlpha:    def.EndspanAlpha,
		Minspan:         def.Minspan,
		MinspanAlpha:    def.MinspanAlpha,
		Thresh:          def.Thresh,
		MinSearchPoints: def.MinSearchPoints,
		CheckEvery:      def.CheckEvery,
		AllowLinear:     def.AllowLinear,
	}
}

// Validate checks that MaxTerms and MaxDegree are positive, Penalty is
// non-negative and both alphas lie in (0,1), and that every LinVars
// entry names a feature (a non-empty Name or a non-negative Index).
// Resolving Name entries against XLabels happens later, inside Fit,
// once the number of features is known.
func (o Options) Validate() error {
	if o.MaxTerms <= 0 || o.MaxDegree <= 0 {
		return fmt.Errorf("mars.Options.Validate: max_terms=%d, max_degree=%d must be positive: %w", o.MaxTerms, o.MaxDegree, ErrInvalidConfig)
	}
	if o.Penalty < 0 {
		return fmt.Errorf("mars.Options.Validate: penalty=%g must be >= 0: %w", o.Penalty, ErrInvalidConfig)
	}
	if o.EndspanAlpha <= 0 || o.EndspanAlpha >= 1 || o.MinspanAlpha <= 0 || o.MinspanAlpha >= 1 {
		return fmt.Errorf("mars.Options.Validate: endspan_alpha=%g, minspan_alpha=%g must be in (0,1): %w", o.EndspanAlpha, o.MinspanAlpha, ErrInvalidConfig)
	}
	for i, ref := range o.LinVars {
		if ref.Name == "" && ref.Index < 0 {
			return fmt.Errorf("mars.Options.Validate: linvars[%d] names neither an index nor a feature: %w", i, ErrInvalidConfig)
		}
	}

	return nil
}

// toForwardConfig converts o into a forward.Config for a data set with n
// features, resolving every LinVars entry (by Name via xlabels, or by
// Index) to a feature index. It returns ErrInvalidConfig if a Name entry
// cannot be resolved to a unique feature, or an Index entry is out of
// range.
func (o Options) toForwardConfig(n int, xlabels []string) (forward.Config, error) {
	cfg := forward.DefaultConfig(n)
	if o.MaxTerms > 0 {
		cfg.MaxTerms = o.MaxTerms
	}
	if o.MaxDegree > 0 {
		cfg.MaxDegree = o.MaxDegree
	}
	if o.Penalty > 0 {
		cfg.Penalty = o.Penalty
	}
	cfg.Endspan = o.Endspan
	if o.EndspanAlpha > 0 {
		cfg.EndspanAlpha = o.EndspanAlpha
	}
	cfg.Minspan = o.Minspan
	if o.MinspanAlpha > 0 {
		cfg.MinspanAlpha = o.MinspanAlpha
	}
	if o.Thresh > 0 {
		cfg.Thresh = o.Thresh
	}
	if o.MinSearchPoints > 0 {
		cfg.MinSearchPoints = o.MinSearchPoints
	}
	cfg.CheckEvery = o.CheckEvery
	cfg.AllowLinear = o.AllowLinear
	cfg.XLabels = xlabels

	if len(o.LinVars) > 0 {
		linVars, err := resolveFeatureRefs(o.LinVars, xlabels, n)
		if err != nil {
			return forward.Config{}, err
		}
		cfg.LinVars = linVars
	}

	return cfg, nil
}

// resolveFeatureRefs maps each FeatureRef to a feature index: Name
// entries are looked up in xlabels and must match exactly one column;
// Index entries are used directly and must lie in [0,n).
func resolveFeatureRefs(refs []FeatureRef, xlabels []string, n int) (map[int]bool, error) {
	out := make(map[int]bool, len(refs))
	for _, ref := range refs {
		if ref.Name != "" {
			idx := -1
			matches := 0
			for j, label := range xlabels {
				if label == ref.Name {
					idx = j
					matches++
				}
			}
			if matches != 1 {
				return nil, fmt.Errorf("mars: linvars name %q resolves to %d features (want exactly 1): %w", ref.Name, matches, ErrInvalidConfig)
			}
			out[idx] = true

			continue
		}
		if ref.Index < 0 || ref.Index >= n {
			return nil, fmt.Errorf("mars: linvars index %d out of range [0,%d): %w", ref.Index, n, ErrInvalidConfig)
		}
		out[ref.Index] = true
	}

	return out, nil
}
