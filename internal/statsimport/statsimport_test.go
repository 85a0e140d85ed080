package statsimport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/vflfantasy/vfl-data/internal/model"
	"github.com/vflfantasy/vfl-data/internal/store/memory"
)

var testMatch = MatchContext{MatchID: "m1", Season: 2025, Round: "R3"}

func TestParseWellFormedRow(t *testing.T) {
	in := "Jack O'Kearney,Keilor,2,12,8,5,4,1,2,1,77\n"
	p, err := Parse(strings.NewReader(in), testMatch)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(p.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(p.Rows))
	}
	want := model.PlayerStat{
		MatchID: "m1", Season: 2025, Round: "R3", Quarter: "2",
		PlayerName: "Jack O'Kearney", Team: "Keilor",
		Kicks: 12, Handballs: 8, Marks: 5, Tackles: 4, HitOuts: 1, Goals: 2, Behinds: 1,
		FantasyPoints: 77,
	}
	if p.Rows[0] != want {
		t.Fatalf("row = %+v\nwant %+v", p.Rows[0], want)
	}
	// Literal value kept even though the counters score differently.
	if FantasyPoints(p.Rows[0]) == 77 {
		t.Fatal("fixture should not match computed points")
	}
}

func TestParseMalformedNumbersAreZero(t *testing.T) {
	in := `"Sam Doolan","Essendon","All",,abc,3.7, 2 ,x,,,` + "\n"
	p, err := Parse(strings.NewReader(in), testMatch)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(p.Rows) != 1 {
		t.Fatalf("rows = %d (%v)", len(p.Rows), p.Skipped)
	}
	r := p.Rows[0]
	if r.PlayerName != "Sam Doolan" || r.Team != "Essendon" || r.Quarter != model.QuarterAll {
		t.Fatalf("quotes not stripped: %+v", r)
	}
	if r.Kicks != 0 || r.Handballs != 0 || r.Marks != 3 || r.Tackles != 2 || r.HitOuts != 0 || r.FantasyPoints != 0 {
		t.Fatalf("unexpected counters: %+v", r)
	}
}

func TestParseHeader(t *testing.T) {
	good := "playerName,team,quarter,kicks,handballs,marks,tackles,hitOuts,goals,behinds,fantasyPoints\nA Player,Keilor,1,1,1,1,1,1,1,1,15\n"
	p, err := Parse(strings.NewReader(good), testMatch)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(p.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(p.Rows))
	}

	missing := "player_name,team,quarter,kicks,handballs,marks,tackles,hit_outs,goals,behinds\nA Player,Keilor,1,1,1,1,1,1,1,1\n"
	if _, err := Parse(strings.NewReader(missing), testMatch); !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("err = %v, want ErrMissingColumn", err)
	}

	swapped := "Player Name,quarter,team,kicks,handballs,marks,tackles,hitOuts,goals,behinds,fantasyPoints\n"
	if _, err := Parse(strings.NewReader(swapped), testMatch); !errors.Is(err, ErrColumnOrder) {
		t.Fatalf("err = %v, want ErrColumnOrder", err)
	}
}

func TestParseRejectsMisnamedHeaders(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   error
	}{
		{"renamed first column", "name,team,quarter,kicks,handballs,marks,tackles,hitOuts,goals,behinds,fantasyPoints", ErrMissingColumn},
		{"renamed and reordered", "Player,Team,Quarter,handballs,kicks,marks,tackles,hitOuts,goals,behinds,fantasyPoints", ErrMissingColumn},
		{"reordered counters", "playerName,team,quarter,handballs,kicks,marks,tackles,hitOuts,goals,behinds,fantasyPoints", ErrColumnOrder},
		{"no known names", "Who,Club,Qtr,K,H,M,T,HO,G,B,FP", ErrMissingColumn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.header + "\nA Player,Keilor,1,12,8,5,4,1,2,1,77\n"
			p, err := Parse(strings.NewReader(in), testMatch)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if p != nil {
				t.Fatalf("rows were parsed despite the bad header: %+v", p.Rows)
			}
		})
	}
}

func TestImporterAbortsOnBadHeader(t *testing.T) {
	st := memory.New()
	im := NewImporter(st, slog.New(slog.NewTextHandler(io.Discard, nil)))
	in := "name,team,quarter,kicks,handballs,marks,tackles,hitOuts,goals,behinds,fantasyPoints\nA Player,Keilor,1,1,1,1,1,1,1,1,1\n"
	if _, err := im.Import(context.Background(), strings.NewReader(in), Options{Match: testMatch}); !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("err = %v, want ErrMissingColumn", err)
	}
	if rows, _ := st.ListPlayerStats(context.Background()); len(rows) != 0 {
		t.Fatalf("rows written = %d, want 0", len(rows))
	}
}

func TestParseSkipsBadRows(t *testing.T) {
	in := strings.Join([]string{
		"Short,Row,1,2",
		",Keilor,1,1,1,1,1,1,1,1,1",
		"Bad Quarter,Keilor,5,1,1,1,1,1,1,1,1",
		"",
		"Good,Keilor,Q3,1,1,1,1,1,1,1,1",
	}, "\n")
	p, err := Parse(strings.NewReader(in), testMatch)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(p.Rows) != 1 || p.Rows[0].Quarter != "3" {
		t.Fatalf("rows = %+v", p.Rows)
	}
	if len(p.Skipped) != 3 {
		t.Fatalf("skipped = %v", p.Skipped)
	}
	if p.Skipped[2].Line != 3 {
		t.Fatalf("line numbers off: %v", p.Skipped)
	}
}

func TestParseEmpty(t *testing.T) {
	if _, err := Parse(strings.NewReader("\n\n"), testMatch); !errors.Is(err, ErrNoRows) {
		t.Fatalf("err = %v, want ErrNoRows", err)
	}
}

func TestNormalizeQuarter(t *testing.T) {
	cases := map[string]string{"1": "1", "Q4": "4", "q2": "2", "ALL": "All", "Total": "All", " 3 ": "3"}
	for in, want := range cases {
		got, ok := NormalizeQuarter(in)
		if !ok || got != want {
			t.Errorf("NormalizeQuarter(%q) = %q, %v; want %q", in, got, ok, want)
		}
	}
	for _, bad := range []string{"", "5", "Q0", "half"} {
		if _, ok := NormalizeQuarter(bad); ok {
			t.Errorf("NormalizeQuarter(%q) should fail", bad)
		}
	}
}

func TestDeriveTotals(t *testing.T) {
	rows := []model.PlayerStat{
		{MatchID: "m1", PlayerName: "A", Team: "K", Quarter: "1", Kicks: 2, Goals: 1},
		{MatchID: "m1", PlayerName: "A", Team: "K", Quarter: "2", Handballs: 3, Tackles: 1},
		{MatchID: "m1", PlayerName: "B", Team: "K", Quarter: "1", Kicks: 5},
		{MatchID: "m1", PlayerName: "B", Team: "K", Quarter: "All", Kicks: 5, FantasyPoints: 99},
	}
	out := DeriveTotals(rows)
	if len(out) != 5 {
		t.Fatalf("len = %d, want 5", len(out))
	}
	total := out[4]
	if total.PlayerName != "A" || total.Quarter != model.QuarterAll {
		t.Fatalf("unexpected derived row %+v", total)
	}
	if total.Kicks != 2 || total.Handballs != 3 || total.Goals != 1 || total.Tackles != 1 {
		t.Fatalf("unexpected sums %+v", total)
	}
	if want := 2*3 + 3*2 + 1*6 + 1*4; total.FantasyPoints != want {
		t.Fatalf("FantasyPoints = %d, want %d", total.FantasyPoints, want)
	}
	if out[3].FantasyPoints != 99 {
		t.Fatal("existing All row must keep its literal points")
	}
}

func TestImporterSavesAndFlagsMatch(t *testing.T) {
	st := memory.New()
	st.PutMatch(model.Match{ID: "m1", HomeTeam: "Keilor", AwayTeam: "Essendon", Season: 2025, Round: "R3"})
	im := NewImporter(st, slog.New(slog.NewTextHandler(io.Discard, nil)))

	csv := "A Player,Keilor,1,1,0,0,0,0,0,0,3\nA Player,Keilor,2,0,1,0,0,0,0,0,2\nbroken\n"
	res, err := im.Import(context.Background(), strings.NewReader(csv), Options{Match: testMatch, DeriveTotals: true})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if res.Parsed != 2 || res.Derived != 1 || res.Saved != 3 || res.Skipped != 1 || !res.MatchFlagged {
		t.Fatalf("unexpected result %s", res.Summary())
	}
	m, _ := st.Match("m1")
	if !m.HasStats {
		t.Fatal("match should be flagged hasStats")
	}

	// Re-import upserts instead of duplicating.
	if _, err := im.Import(context.Background(), strings.NewReader(csv), Options{Match: testMatch}); err != nil {
		t.Fatalf("re-import failed: %v", err)
	}
	rows, _ := st.ListPlayerStats(context.Background())
	if len(rows) != 3 {
		t.Fatalf("rows after re-import = %d, want 3", len(rows))
	}
}

func TestImporterUnknownMatch(t *testing.T) {
	im := NewImporter(memory.New(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	res, err := im.Import(context.Background(), strings.NewReader("A,K,1,1,1,1,1,1,1,1,1\n"), Options{Match: testMatch})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if res.Saved != 1 || res.MatchFlagged || len(res.Errors) != 1 {
		t.Fatalf("unexpected result %s %v", res.Summary(), res.Errors)
	}
}

func TestImporterRequiresMatchID(t *testing.T) {
	im := NewImporter(memory.New(), nil)
	if _, err := im.Import(context.Background(), strings.NewReader("A,K,1,1,1,1,1,1,1,1,1\n"), Options{}); err == nil {
		t.Fatal("expected error without match id")
	}
}
