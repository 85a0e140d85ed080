package match

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"Jack O'Kearney", "jackokearney"},
		{"  Mary-Jane  Smith ", "maryjanesmith"},
		{"JOHN SMITH", "johnsmith"},
		{"Zoë Brûlé", "zoebrule"},
		{"#23 (c)", "23c"},
		{"'--'", ""},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"", "Jack O'Kearney", "Zoë", "a b c", "1st-Round Pick!", "ÅNGSTRÖM", "x\ty\nz"}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestScoreRules(t *testing.T) {
	cases := []struct {
		name   string
		a, b   string
		ta, tb string
		want   int
	}{
		{"reflexive", "Jack Smith", "Jack Smith", "", "", 100},
		{"case insensitive", "John Smith", "JOHN SMITH", "", "", 100},
		{"punctuation insensitive", "Jack O'Kearney", "Jack OKearney", "", "", 100},
		{"substring", "Smith", "John Smith", "", "", 90},
		{"substring reversed", "John Smith", "Smith", "", "", 90},
		{"substring with other team", "Smith", "John Smith", "Keilor", "Essendon", 90},
		{"token overlap two of three", "Tom James Brown", "Tommy Brown Jr", "", "", 67},
		{"token overlap with team bonus", "Tom James Brown", "Tommy Brown Jr", "Keilor", "keilor ", 77},
		{"substring with team bonus caps", "Smith", "John Smith", "Keilor", "Keilor", 100},
		{"no overlap", "Alan Key", "Brett Dune", "", "", 0},
		{"short tokens ignored", "A B", "C D", "", "", 0},
		{"blank name", "", "John Smith", "", "", 0},
		{"blank names never match", "", "'", "Keilor", "Keilor", 0},
		{"zero score gets no bonus", "Alan Key", "Brett Dune", "Keilor", "Keilor", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ScoreWithTeams(tc.a, tc.b, tc.ta, tc.tb); got != tc.want {
				t.Fatalf("ScoreWithTeams(%q, %q, %q, %q) = %d, want %d", tc.a, tc.b, tc.ta, tc.tb, got, tc.want)
			}
		})
	}
}

func TestScoreReflexive(t *testing.T) {
	for _, name := range []string{"A", "Jack O'Kearney", "Lachlan McDonald-Smith", "Zoë"} {
		if got := Score(name, name); got != 100 {
			t.Errorf("Score(%q, %q) = %d, want 100", name, name, got)
		}
	}
}

func TestTeamBonus(t *testing.T) {
	if got := withTeamBonus(65, "Keilor", "Keilor"); got != 75 {
		t.Fatalf("bonus on 65 = %d, want 75", got)
	}
	if got := withTeamBonus(95, "Keilor", "Keilor"); got != 100 {
		t.Fatalf("bonus on 95 = %d, want 100", got)
	}
	if got := withTeamBonus(65, "Keilor", "Essendon"); got != 65 {
		t.Fatalf("mismatched teams = %d, want 65", got)
	}
	if got := withTeamBonus(65, "", ""); got != 65 {
		t.Fatalf("omitted teams = %d, want 65", got)
	}
}

func TestTokenOverlapCountsSourceTokensOnce(t *testing.T) {
	// "jo" contains-matches both "john" and "jones" but counts once.
	if got := tokenOverlap([]string{"jo", "xx"}, []string{"john", "jones"}); got != 50 {
		t.Fatalf("tokenOverlap = %d, want 50", got)
	}
	if got := tokenOverlap(nil, []string{"john"}); got != 0 {
		t.Fatalf("empty source = %d, want 0", got)
	}
}
