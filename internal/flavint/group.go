package flavint

import (
	"fmt"
	"strings"
)

// Group is a non-empty set of FlavInts treated as one unit for
// histogramming. The zero value is the empty set; parsing and construction
// never produce it.
type Group struct {
	mask uint16
}

// NewGroup builds a Group from explicit members.
func NewGroup(fis ...FlavInt) Group {
	var g Group
	for _, fi := range fis {
		g.mask |= 1 << uint(fi)
	}
	return g
}

// AllGroup returns the group containing every FlavInt.
func AllGroup() Group {
	return Group{mask: (1 << NumFlavInts) - 1}
}

// Contains reports whether fi is a member.
func (g Group) Contains(fi FlavInt) bool { return g.mask&(1<<uint(fi)) != 0 }

// ContainsName reports whether the named category (or any category the name
// expands to, e.g. a bare flavour) overlaps the group.
func (g Group) ContainsName(name string) bool {
	other, err := ParseGroup(name)
	if err != nil {
		return false
	}
	return g.Intersects(other)
}

// Intersects reports whether the two groups share a member.
func (g Group) Intersects(other Group) bool { return g.mask&other.mask != 0 }

// ContainsGroup reports whether every member of other is a member of g.
func (g Group) ContainsGroup(other Group) bool { return other.mask&^g.mask == 0 }

// Equal reports set equality.
func (g Group) Equal(other Group) bool { return g.mask == other.mask }

// Empty reports whether the group has no members.
func (g Group) Empty() bool { return g.mask == 0 }

// Size returns the number of members.
func (g Group) Size() int {
	n := 0
	for m := g.mask; m != 0; m &= m - 1 {
		n++
	}
	return n
}

// Members returns the members in enum order.
func (g Group) Members() []FlavInt {
	out := make([]FlavInt, 0, g.Size())
	for fi := FlavInt(0); fi < NumFlavInts; fi++ {
		if g.Contains(fi) {
			out = append(out, fi)
		}
	}
	return out
}

// Flavs returns the distinct flavours of the members, in enum order.
func (g Group) Flavs() []Flav {
	var seen [numFlavs]bool
	out := make([]Flav, 0, numFlavs)
	for _, fi := range g.Members() {
		f := fi.Flav()
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

// String returns the canonical form: member names joined by "+" in enum
// order. This is the output-map name used when grouped flavints are summed.
func (g Group) String() string {
	members := g.Members()
	names := make([]string, len(members))
	for i, fi := range members {
		names[i] = fi.String()
	}
	return strings.Join(names, "+")
}

// ParseGroup parses a single group token list: category tokens joined by
// "+". Each token is a flavour name ("nue", expanding to its cc and nc
// categories), an exact category ("nue_cc"), or the collective tokens
// "nuall"/"nuallbar" (all flavours/antiflavours), any of which may carry an
// "_cc"/"_nc" restriction. Spaces around tokens are ignored.
func ParseGroup(s string) (Group, error) {
	var g Group
	for _, tok := range strings.Split(s, "+") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			return Group{}, fmt.Errorf("group %q: empty category token", s)
		}
		sub, err := parseToken(tok)
		if err != nil {
			return Group{}, fmt.Errorf("group %q: %w", s, err)
		}
		g.mask |= sub.mask
	}
	if g.Empty() {
		return Group{}, fmt.Errorf("group %q: no categories", s)
	}
	return g, nil
}

// parseToken expands one category token to the set of FlavInts it names.
func parseToken(tok string) (Group, error) {
	base := tok
	ints := []IntType{CC, NC}
	if us := strings.LastIndex(tok, "_"); us >= 0 {
		it, ok := intByName(tok[us+1:])
		if !ok {
			return Group{}, fmt.Errorf("unknown interaction type %q in token %q", tok[us+1:], tok)
		}
		base = tok[:us]
		ints = []IntType{it}
	}

	var flavs []Flav
	switch base {
	case "nuall":
		flavs = []Flav{NuE, NuMu, NuTau}
	case "nuallbar":
		flavs = []Flav{NuEBar, NuMuBar, NuTauBar}
	default:
		f, ok := flavByName(base)
		if !ok {
			return Group{}, fmt.Errorf("unknown category token %q", tok)
		}
		flavs = []Flav{f}
	}

	var g Group
	for _, f := range flavs {
		for _, it := range ints {
			g.mask |= 1 << uint(NewFlavInt(f, it))
		}
	}
	return g, nil
}

// GroupsFromString parses a transform-grouping specification: group token
// lists separated by "," or ";". Groups must be pairwise disjoint. Any
// FlavInt not mentioned is appended as its own singleton group, so the
// result always partitions the full category space. An empty specification
// therefore yields twelve singleton groups. Order is deterministic: listed
// groups in specification order, then completion singletons in enum order.
func GroupsFromString(spec string) ([]Group, error) {
	groups := []Group{}
	var covered Group

	fields := strings.FieldsFunc(spec, func(r rune) bool { return r == ',' || r == ';' })
	for _, field := range fields {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		g, err := ParseGroup(field)
		if err != nil {
			return nil, err
		}
		if covered.Intersects(g) {
			return nil, fmt.Errorf("group %q overlaps an earlier group", field)
		}
		covered.mask |= g.mask
		groups = append(groups, g)
	}

	for fi := FlavInt(0); fi < NumFlavInts; fi++ {
		if !covered.Contains(fi) {
			groups = append(groups, NewGroup(fi))
		}
	}
	return groups, nil
}
