// Package aeffhist computes binned effective-area transforms from weighted
// event collections, in two phases. The nominal phase histograms events per
// category group, normalizes by bin volume, and assembles a transform set;
// it re-runs only when the event source's content hash changes. The rescale
// phase multiplies the cached nominal arrays by the current physics
// parameters (scale x livetime, plus the nutau_cc channel correction) and
// is cheap enough to run on every parameter change.
package aeffhist

import (
	"fmt"
	"strings"

	"github.com/deepcore-data/aeff.report/internal/binning"
	"github.com/deepcore-data/aeff.report/internal/config"
	"github.com/deepcore-data/aeff.report/internal/flavint"
	"github.com/deepcore-data/aeff.report/internal/monitoring"
	"github.com/deepcore-data/aeff.report/internal/transform"
)

// SpecialChannels are the output names that receive the extra
// special_channel_norm correction during rescaling.
var SpecialChannels = [2]string{"nutau_cc", "nutaubar_cc"}

// defaultInputNames is the neutrino input sextet used when input_names is
// omitted.
var defaultInputNames = []string{"nue", "nuebar", "numu", "numubar", "nutau", "nutaubar"}

// EventSource is the collaborator providing events. Histogram must be
// deterministic for a fixed Hash: the nominal cache assumes the same hash
// implies bit-identical histograms.
type EventSource interface {
	Histogram(group flavint.Group, edges [][]float64, dims []string, weightCol string, wantErrors bool) (hist, errs *transform.Array, err error)
	Hash() string
}

// Service holds the resolved stage configuration and the nominal-transform
// cache. It is not safe for concurrent use; the computation is synchronous
// and single-threaded.
type Service struct {
	transformGroups []flavint.Group
	sumGrouped      bool
	inputNames      []string
	inputGroups     []flavint.Group // category set each input name expands to
	outputNames     []string
	outputGroups    []flavint.Group // category set each output name expands to
	inputBinning    binning.Binning
	outputBinning   binning.Binning
	weightCol       string
	wantErrors      bool

	// Nominal cache: valid while eventsHash matches the source.
	eventsHash string
	nominal    *transform.Set
}

// New resolves a stage configuration into a Service. Configuration defects
// (unsupported particles, malformed grouping specification, unparseable
// input names or binnings) fail here, before any events are touched.
func New(cfg *config.StageConfig) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	groups, err := flavint.GroupsFromString(cfg.GetTransformGroups())
	if err != nil {
		return nil, &config.ConfigurationError{Msg: "invalid transform_groups", Err: err}
	}

	inputNames := defaultInputNames
	if raw := cfg.GetInputNames(); raw != "" {
		inputNames = strings.Split(strings.ReplaceAll(raw, " ", ""), ",")
	}
	inputGroups := make([]flavint.Group, len(inputNames))
	for i, name := range inputNames {
		g, err := flavint.ParseGroup(name)
		if err != nil {
			return nil, &config.ConfigurationError{Msg: "invalid input name", Err: err}
		}
		inputGroups[i] = g
	}

	inBinning, err := binning.New(cfg.InputBinning...)
	if err != nil {
		return nil, &config.ConfigurationError{Msg: "invalid input_binning", Err: err}
	}
	outBinning, err := binning.New(cfg.OutputBinning...)
	if err != nil {
		return nil, &config.ConfigurationError{Msg: "invalid output_binning", Err: err}
	}

	s := &Service{
		transformGroups: groups,
		sumGrouped:      cfg.GetSumGroupedFlavints(),
		inputNames:      inputNames,
		inputGroups:     inputGroups,
		inputBinning:    inBinning,
		outputBinning:   outBinning,
		weightCol:       cfg.GetWeightCol(),
		wantErrors:      cfg.GetErrorMethod() != "",
	}

	// Output map names: group strings when summing grouped flavints,
	// otherwise one name per category covered by the inputs.
	if s.sumGrouped {
		for _, g := range groups {
			s.outputNames = append(s.outputNames, g.String())
			s.outputGroups = append(s.outputGroups, g)
		}
	} else {
		var union flavint.Group
		for _, g := range inputGroups {
			union = unionGroups(union, g)
		}
		for _, fi := range union.Members() {
			s.outputNames = append(s.outputNames, fi.String())
			s.outputGroups = append(s.outputGroups, flavint.NewGroup(fi))
		}
	}

	monitoring.Tracef("transform_groups = %v", groups)
	monitoring.Tracef("output_names = %s", strings.Join(s.outputNames, " :: "))
	return s, nil
}

func unionGroups(a, b flavint.Group) flavint.Group {
	members := append(a.Members(), b.Members()...)
	return flavint.NewGroup(members...)
}

// InputNames returns the declared input map names.
func (s *Service) InputNames() []string { return s.inputNames }

// OutputNames returns the output map names the stage produces.
func (s *Service) OutputNames() []string { return s.outputNames }

// TransformGroups returns the resolved category groups, in deterministic
// order.
func (s *Service) TransformGroups() []flavint.Group { return s.transformGroups }

// SeedNominal primes the nominal cache with a set computed earlier, e.g.
// loaded from a disk cache. Computations against a source with the given
// hash then reuse it without histogramming. The set is treated as
// read-only from this point on.
func (s *Service) SeedNominal(eventsHash string, set *transform.Set) {
	s.eventsHash = eventsHash
	s.nominal = set
}

// NominalTransforms computes the un-rescaled effective-area transform set,
// or returns the cached one when the source hash is unchanged. The second
// call with an unchanged source performs no histogramming and returns the
// identical set.
func (s *Service) NominalTransforms(src EventSource) (*transform.Set, error) {
	if s.nominal != nil && src.Hash() == s.eventsHash {
		monitoring.Debugf("nominal transforms cached for source %.12s", s.eventsHash)
		return s.nominal, nil
	}

	if err := binning.ValidateInput(s.inputBinning); err != nil {
		return nil, err
	}
	if err := binning.CheckCorrespondence(s.inputBinning, s.outputBinning); err != nil {
		return nil, err
	}

	inBinning, err := binning.ToComputational(s.inputBinning)
	if err != nil {
		return nil, err
	}
	outBinning, err := binning.ToComputational(s.outputBinning)
	if err != nil {
		return nil, err
	}

	// Weights are integrated over the full range of any dimension the input
	// binning omits; fold that range into the per-bin volumes.
	missingVol := binning.MissingDimsVolume(inBinning)
	vols, err := transform.FromFlat(inBinning.Shape(), binning.BinVolumes(inBinning))
	if err != nil {
		return nil, err
	}
	norm := vols.Scaled(missingVol)

	allBinEdges := outBinning.Edges()
	dims := s.inputBinning.Names()

	var xforms []*transform.BinnedTransform
	for _, group := range s.transformGroups {
		monitoring.Debugf("computing aeff transform for %s", group)

		hist, errs, err := src.Histogram(group, allBinEdges, dims, s.weightCol, s.wantErrors)
		if err != nil {
			return nil, fmt.Errorf("histogram for group %s: %w", group, err)
		}
		// Sum-of-weights-in-bin -> average effective area across the bin.
		if err := hist.DivElem(norm); err != nil {
			return nil, fmt.Errorf("group %s: %w", group, err)
		}
		if errs != nil {
			if err := errs.DivElem(norm); err != nil {
				return nil, fmt.Errorf("group %s errors: %w", group, err)
			}
		}

		built, err := s.assemble(group, hist, errs)
		if err != nil {
			return nil, err
		}
		xforms = append(xforms, built...)
	}

	set, err := transform.NewSet(xforms)
	if err != nil {
		return nil, err
	}
	s.nominal = set
	s.eventsHash = src.Hash()
	return set, nil
}

// assemble partitions one group's effective-area array across transform
// objects.
//
// Merged mode: a single transform per output name equal to the group,
// listing every input that feeds the group, inputs summed at apply time.
// Unmerged mode: one transform per (contributing input, covered output)
// pair, summing unset. Both modes share the same underlying array.
func (s *Service) assemble(group flavint.Group, hist, errs *transform.Array) ([]*transform.BinnedTransform, error) {
	var out []*transform.BinnedTransform

	if s.sumGrouped {
		var xformInputNames []string
		for i, name := range s.inputNames {
			if s.inputGroups[i].Intersects(group) {
				xformInputNames = append(xformInputNames, name)
			}
		}
		for i, outputName := range s.outputNames {
			if !group.ContainsGroup(s.outputGroups[i]) {
				continue
			}
			xf, err := transform.NewBinnedTransform(xformInputNames, outputName, s.inputBinning, s.outputBinning, hist, true)
			if err != nil {
				return nil, err
			}
			xf.Errors = errs
			out = append(out, xf)
		}
		return out, nil
	}

	for i, inputName := range s.inputNames {
		// Effective area splits flavours into flavour+interaction types, so
		// an input contributes whenever its categories overlap the group.
		if !s.inputGroups[i].Intersects(group) {
			continue
		}
		for j, outputName := range s.outputNames {
			if !group.ContainsGroup(s.outputGroups[j]) {
				continue
			}
			xf, err := transform.NewBinnedTransform([]string{inputName}, outputName, s.inputBinning, s.outputBinning, hist, false)
			if err != nil {
				return nil, err
			}
			xf.Errors = errs
			out = append(out, xf)
		}
	}
	return out, nil
}
