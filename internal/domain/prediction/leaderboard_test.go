package prediction

import (
	"testing"

	"github.com/riskibarqy/prediction-pool/internal/domain/tournament"
)

func playedGroup(t *testing.T) *tournament.Structure {
	t.Helper()

	teams := []tournament.Team{{ID: "bra"}, {ID: "arg"}, {ID: "fra"}, {ID: "ger"}}
	s, err := tournament.Build(teams, tournament.DefaultBuildConfig())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	// bra 2-1 arg, bra 0-0 fra
	if err := s.RecordResult("group-A-match-1", tournament.Result{Score1: 2, Score2: 1}); err != nil {
		t.Fatalf("record match 1: %v", err)
	}
	if err := s.RecordResult("group-A-match-2", tournament.Result{Score1: 0, Score2: 0}); err != nil {
		t.Fatalf("record match 2: %v", err)
	}
	return s
}

func TestEvaluate_ScoresPlayedAndResetsCleared(t *testing.T) {
	s := playedGroup(t)
	stale := 5

	preds := []Prediction{
		{UserID: "u1", MatchID: "group-A-match-1", Score1: 2, Score2: 1},
		{UserID: "u2", MatchID: "group-A-match-1", Score1: 1, Score2: 0},
		{UserID: "u1", MatchID: "group-A-match-3", Score1: 0, Score2: 0, Points: &stale},
		{UserID: "u2", MatchID: "group-A-match-4", Score1: 1, Score2: 1},
	}

	updates := Evaluate(preds, s, DefaultRules())
	if len(updates) != 3 {
		t.Fatalf("unexpected update count: got=%d want=3 (%+v)", len(updates), updates)
	}
	if preds[0].Points == nil || *preds[0].Points != 5 {
		t.Fatalf("exact pick must score 5, got %v", preds[0].Points)
	}
	if preds[1].Points == nil || *preds[1].Points != 3 {
		t.Fatalf("outcome pick must score 3, got %v", preds[1].Points)
	}
	if preds[2].Points != nil {
		t.Fatalf("unplayed match must reset points, got %d", *preds[2].Points)
	}
	if preds[3].Points != nil {
		t.Fatalf("unplayed untouched pick must stay unscored")
	}

	if again := Evaluate(preds, s, DefaultRules()); len(again) != 0 {
		t.Fatalf("second evaluation must be a no-op, got %+v", again)
	}
}

func TestTally_DenseRank(t *testing.T) {
	s := playedGroup(t)

	preds := []Prediction{
		{UserID: "u1", MatchID: "group-A-match-1", Score1: 2, Score2: 1},
		{UserID: "u1", MatchID: "group-A-match-2", Score1: 3, Score2: 0},
		{UserID: "u2", MatchID: "group-A-match-1", Score1: 1, Score2: 0},
		{UserID: "u2", MatchID: "group-A-match-2", Score1: 1, Score2: 1},
		{UserID: "u3", MatchID: "group-A-match-1", Score1: 3, Score2: 2},
		{UserID: "u3", MatchID: "group-A-match-2", Score1: 0, Score2: 0},
		{UserID: "outsider", MatchID: "group-A-match-1", Score1: 2, Score2: 1},
	}
	Evaluate(preds, s, DefaultRules())

	totals := Tally([]string{"u1", "u2", "u3", "u4"}, preds, s)
	if len(totals) != 4 {
		t.Fatalf("unexpected total count: got=%d want=4", len(totals))
	}

	want := []struct {
		userID string
		points int
		rank   int
		exact  int
	}{
		{userID: "u3", points: 8, rank: 1, exact: 1},
		{userID: "u2", points: 6, rank: 2, exact: 0},
		{userID: "u1", points: 5, rank: 3, exact: 1},
		{userID: "u4", points: 0, rank: 4, exact: 0},
	}
	for i, w := range want {
		got := totals[i]
		if got.UserID != w.userID || got.Points != w.points || got.Rank != w.rank || got.ExactScores != w.exact {
			t.Fatalf("row %d: got=%+v want=%+v", i, got, w)
		}
	}
}

func TestTally_TiesShareRank(t *testing.T) {
	s := playedGroup(t)
	preds := []Prediction{
		{UserID: "a", MatchID: "group-A-match-1", Score1: 2, Score2: 1},
		{UserID: "b", MatchID: "group-A-match-1", Score1: 2, Score2: 1},
		{UserID: "c", MatchID: "group-A-match-1", Score1: 0, Score2: 1},
	}
	Evaluate(preds, s, DefaultRules())

	totals := Tally([]string{"b", "a", "c"}, preds, s)
	if totals[0].UserID != "a" || totals[1].UserID != "b" {
		t.Fatalf("ties must order by user id, got %+v", totals)
	}
	if totals[0].Rank != 1 || totals[1].Rank != 1 || totals[2].Rank != 2 {
		t.Fatalf("unexpected dense ranks: %+v", totals)
	}
}
