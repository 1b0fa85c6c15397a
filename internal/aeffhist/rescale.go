package aeffhist

import (
	"fmt"

	"github.com/deepcore-data/aeff.report/internal/flavint"
	"github.com/deepcore-data/aeff.report/internal/monitoring"
	"github.com/deepcore-data/aeff.report/internal/params"
	"github.com/deepcore-data/aeff.report/internal/transform"
)

// Transforms produces the externally visible transform set for the current
// parameter values: the nominal arrays multiplied by scale x livetime (in
// seconds), with the special-channel correction folded in where it applies.
//
// The nominal set is computed (or reused) per the source hash; the rescale
// itself runs unconditionally and is expected to be memoized externally by
// parameter-value hash. Returned arrays are always fresh: they never alias
// the nominal cache's storage.
func (s *Service) Transforms(src EventSource, p *params.Set) (*transform.Set, error) {
	nominal, err := s.NominalTransforms(src)
	if err != nil {
		return nil, err
	}

	scale, err := p.Scale.Dimensionless()
	if err != nil {
		return nil, fmt.Errorf("scale: %w", err)
	}
	livetimeS, err := p.Livetime.InSeconds()
	if err != nil {
		return nil, fmt.Errorf("livetime: %w", err)
	}
	specialNorm, err := p.SpecialChannelNorm.Dimensionless()
	if err != nil {
		return nil, fmt.Errorf("special_channel_norm: %w", err)
	}
	monitoring.Tracef("livetime = %v %s -> %v sec", p.Livetime.Value, p.Livetime.Units, livetimeS)

	var out []*transform.BinnedTransform
	for _, group := range s.transformGroups {
		// All transforms of a group were assembled around one shared
		// nominal array; rescale it once and reuse the result for every
		// transform touching the group, so unmerged-mode outputs cannot
		// diverge.
		var base, baseErrs *transform.Array
		for _, nom := range nominal.Transforms {
			if !s.matchesGroup(nom, group) {
				continue
			}
			if base == nil {
				factor := scale * livetimeS
				if isSpecialChannel(nom.OutputName) {
					factor *= specialNorm
				}
				base = nom.Array.Scaled(factor)
				if nom.Errors != nil {
					baseErrs = nom.Errors.Scaled(factor)
				}
			}
			xf, err := transform.NewBinnedTransform(nom.InputNames, nom.OutputName, nom.InputBinning, nom.OutputBinning, base, nom.SumInputs)
			if err != nil {
				return nil, err
			}
			xf.Errors = baseErrs
			out = append(out, xf)
		}
	}

	return transform.NewSet(out)
}

// matchesGroup reports whether a nominal transform belongs to the group:
// its first input name's category set overlaps the group and its output
// name's category set is contained in it.
func (s *Service) matchesGroup(nom *transform.BinnedTransform, group flavint.Group) bool {
	in, err := flavint.ParseGroup(nom.InputNames[0])
	if err != nil || !in.Intersects(group) {
		return false
	}
	outG, err := flavint.ParseGroup(nom.OutputName)
	if err != nil {
		return false
	}
	return group.ContainsGroup(outG)
}

// isSpecialChannel reports whether the output name is one of the two
// channels carrying the special_channel_norm correction.
func isSpecialChannel(outputName string) bool {
	return outputName == SpecialChannels[0] || outputName == SpecialChannels[1]
}
