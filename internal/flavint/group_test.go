package flavint

import (
	"testing"
)

func TestParseFlavInt(t *testing.T) {
	fi, err := ParseFlavInt("nue_cc")
	if err != nil {
		t.Fatalf("ParseFlavInt(nue_cc): %v", err)
	}
	if fi.Flav() != NuE || fi.IntType() != CC {
		t.Errorf("ParseFlavInt(nue_cc) = %v", fi)
	}

	fi, err = ParseFlavInt("nutaubar_nc")
	if err != nil {
		t.Fatalf("ParseFlavInt(nutaubar_nc): %v", err)
	}
	if fi.String() != "nutaubar_nc" {
		t.Errorf("round trip = %q, want nutaubar_nc", fi)
	}

	for _, bad := range []string{"", "nue", "nue_xx", "mu_cc", "nue cc"} {
		if _, err := ParseFlavInt(bad); err == nil {
			t.Errorf("ParseFlavInt(%q): expected error", bad)
		}
	}
}

func TestFlavIntOrdering(t *testing.T) {
	// Enum order is flavour-major; group iteration relies on it.
	want := []string{
		"nue_cc", "nue_nc", "numu_cc", "numu_nc", "nutau_cc", "nutau_nc",
		"nuebar_cc", "nuebar_nc", "numubar_cc", "numubar_nc", "nutaubar_cc", "nutaubar_nc",
	}
	for i := 0; i < NumFlavInts; i++ {
		if got := FlavInt(i).String(); got != want[i] {
			t.Errorf("FlavInt(%d) = %q, want %q", i, got, want[i])
		}
	}
}

func TestParseGroupExpansion(t *testing.T) {
	g, err := ParseGroup("nue")
	if err != nil {
		t.Fatalf("ParseGroup(nue): %v", err)
	}
	if g.String() != "nue_cc+nue_nc" {
		t.Errorf("nue expands to %q", g)
	}

	g, err = ParseGroup("nuall_nc+nuallbar_nc")
	if err != nil {
		t.Fatalf("ParseGroup(nuall_nc+nuallbar_nc): %v", err)
	}
	if g.Size() != 6 {
		t.Errorf("nuall_nc+nuallbar_nc has %d members, want 6", g.Size())
	}
	for _, fi := range g.Members() {
		if fi.IntType() != NC {
			t.Errorf("unexpected member %v", fi)
		}
	}

	g, err = ParseGroup(" nue_cc + nuebar_cc ")
	if err != nil {
		t.Fatalf("ParseGroup with spaces: %v", err)
	}
	if g.String() != "nue_cc+nuebar_cc" {
		t.Errorf("got %q", g)
	}
}

func TestGroupMembership(t *testing.T) {
	g := NewGroup(NewFlavInt(NuE, CC), NewFlavInt(NuEBar, CC))
	if !g.Contains(NewFlavInt(NuE, CC)) {
		t.Error("missing nue_cc")
	}
	if g.Contains(NewFlavInt(NuE, NC)) {
		t.Error("unexpected nue_nc")
	}
	if !g.ContainsName("nue") {
		t.Error("ContainsName(nue) should intersect via nue_cc")
	}
	if g.ContainsName("numu") {
		t.Error("ContainsName(numu) should not intersect")
	}

	other := NewGroup(NewFlavInt(NuEBar, CC), NewFlavInt(NuMu, CC))
	if !g.Intersects(other) {
		t.Error("groups share nuebar_cc")
	}

	flavs := g.Flavs()
	if len(flavs) != 2 || flavs[0] != NuE || flavs[1] != NuEBar {
		t.Errorf("Flavs() = %v", flavs)
	}
}

func TestGroupsFromString(t *testing.T) {
	spec := "nue_cc+nuebar_cc, numu_cc+numubar_cc; nutau_cc+nutaubar_cc, nuall_nc+nuallbar_nc"
	groups, err := GroupsFromString(spec)
	if err != nil {
		t.Fatalf("GroupsFromString: %v", err)
	}
	if len(groups) != 4 {
		t.Fatalf("got %d groups, want 4: %v", len(groups), groups)
	}
	if groups[0].String() != "nue_cc+nuebar_cc" {
		t.Errorf("groups[0] = %q", groups[0])
	}
	if groups[3].Size() != 6 {
		t.Errorf("nc group size = %d, want 6", groups[3].Size())
	}
}

func TestGroupsFromStringCompletion(t *testing.T) {
	groups, err := GroupsFromString("nue_cc+nuebar_cc")
	if err != nil {
		t.Fatalf("GroupsFromString: %v", err)
	}
	// 1 listed group + 10 completion singletons covering the rest.
	if len(groups) != 11 {
		t.Fatalf("got %d groups, want 11", len(groups))
	}
	total := 0
	for _, g := range groups {
		total += g.Size()
	}
	if total != NumFlavInts {
		t.Errorf("groups cover %d flavints, want %d", total, NumFlavInts)
	}
	if groups[1].String() != "nue_nc" {
		t.Errorf("first completion singleton = %q, want nue_nc", groups[1])
	}
}

func TestGroupsFromStringEmpty(t *testing.T) {
	groups, err := GroupsFromString("")
	if err != nil {
		t.Fatalf("GroupsFromString(\"\"): %v", err)
	}
	if len(groups) != NumFlavInts {
		t.Fatalf("got %d groups, want %d singletons", len(groups), NumFlavInts)
	}
	for i, g := range groups {
		if g.Size() != 1 || !g.Contains(FlavInt(i)) {
			t.Errorf("groups[%d] = %q, want singleton %q", i, g, FlavInt(i))
		}
	}
}

func TestGroupsFromStringErrors(t *testing.T) {
	if _, err := GroupsFromString("nue_cc, nue"); err == nil {
		t.Error("overlapping groups should fail")
	}
	if _, err := GroupsFromString("nue_cc+banana"); err == nil {
		t.Error("unknown token should fail")
	}
	if _, err := GroupsFromString("nue_cc++nuebar_cc"); err == nil {
		t.Error("empty token should fail")
	}
}
