package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/prediction-pool/internal/domain/prediction"
	"github.com/riskibarqy/prediction-pool/internal/domain/tournament"
	"github.com/riskibarqy/prediction-pool/internal/infrastructure/repository/memory"
)

func TestResultService_RecordResult_RequiresAdmin(t *testing.T) {
	t.Parallel()

	f := newPoolFixture(t)
	groupID := f.createWorldCupGroup(t, ownerAlice, 10000)

	_, err := f.results.RecordResult(t.Context(), ownerAlice, RecordResultInput{GroupID: groupID, MatchID: "group-A-match-1", Score1: 1})
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("group owner is not a result admin, got %v", err)
	}
	if _, err := f.results.ClearResult(t.Context(), memberBob, groupID, "group-A-match-1"); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("clear must require admin, got %v", err)
	}
}

func TestResultService_RecordAndClear_RescoresPredictions(t *testing.T) {
	t.Parallel()

	f := newPoolFixture(t)
	ctx := t.Context()
	groupID := f.createWorldCupGroup(t, ownerAlice, 10000)
	f.join(t, groupID, memberBob)

	for _, pick := range []struct {
		who    Principal
		s1, s2 int
	}{
		{who: ownerAlice, s1: 2, s2: 1},
		{who: memberBob, s1: 0, s2: 3},
	} {
		if _, err := f.picks.Submit(ctx, pick.who, SubmitPredictionInput{GroupID: groupID, MatchID: "group-A-match-1", Score1: pick.s1, Score2: pick.s2}); err != nil {
			t.Fatalf("submit %s: %v", pick.who.UserID, err)
		}
	}

	group, err := f.results.RecordResult(ctx, adminRoot, RecordResultInput{GroupID: groupID, MatchID: "group-A-match-1", Score1: 2, Score2: 1})
	if err != nil {
		t.Fatalf("record result: %v", err)
	}
	m := firstGroupMatch(t, group.Structure)
	if !m.IsPlayed || m.WinnerID != m.Team1.ID {
		t.Fatalf("match must be played and won by team 1: %+v", m)
	}

	alice, _, err := f.predictions.Get(ctx, groupID, "alice", "group-A-match-1")
	if err != nil {
		t.Fatalf("get alice prediction: %v", err)
	}
	if alice.Points == nil || *alice.Points != 5 {
		t.Fatalf("exact pick must be scored 5 after the result, got %v", alice.Points)
	}

	if _, err := f.results.ClearResult(ctx, adminRoot, groupID, "group-A-match-1"); err != nil {
		t.Fatalf("clear result: %v", err)
	}
	alice, _, err = f.predictions.Get(ctx, groupID, "alice", "group-A-match-1")
	if err != nil {
		t.Fatalf("get alice prediction after clear: %v", err)
	}
	if alice.Points != nil {
		t.Fatalf("cleared match must reset points, got %d", *alice.Points)
	}

	stored, _, err := f.groups.GetByID(ctx, groupID)
	if err != nil {
		t.Fatalf("get group: %v", err)
	}
	standings := stored.Structure.Stages[0].Groups()[0].Standings
	for _, st := range standings {
		if st.Played != 0 || st.Points != 0 {
			t.Fatalf("clear must revert standings: %+v", st)
		}
	}
}

func TestResultService_RecordResult_DomainErrors(t *testing.T) {
	t.Parallel()

	f := newPoolFixture(t)
	ctx := t.Context()
	groupID := f.createWorldCupGroup(t, ownerAlice, 10000)

	_, err := f.results.RecordResult(ctx, adminRoot, RecordResultInput{GroupID: groupID, MatchID: "nope"})
	if !errors.Is(err, ErrNotFound) || !errors.Is(err, tournament.ErrMatchNotFound) {
		t.Fatalf("expected match not found, got %v", err)
	}

	_, err = f.results.RecordResult(ctx, adminRoot, RecordResultInput{GroupID: groupID, MatchID: "round-of-16-1", Score1: 1})
	if !errors.Is(err, ErrInvalidInput) || !errors.Is(err, tournament.ErrTeamsNotAssigned) {
		t.Fatalf("expected teams-not-assigned validation error, got %v", err)
	}

	_, err = f.results.RecordResult(ctx, adminRoot, RecordResultInput{GroupID: "missing", MatchID: "group-A-match-1"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected group not found, got %v", err)
	}

	before, _, _ := f.groups.GetByID(ctx, groupID)
	if before.Version != 1 {
		t.Fatalf("rejected results must not persist, version=%d", before.Version)
	}
}

func TestResultService_SetMatchday(t *testing.T) {
	t.Parallel()

	f := newPoolFixture(t)
	ctx := t.Context()
	groupID := f.createWorldCupGroup(t, ownerAlice, 10000)

	group, err := f.results.SetMatchday(ctx, adminRoot, groupID, "group-A-match-1", "2026-06-11")
	if err != nil {
		t.Fatalf("set matchday date: %v", err)
	}
	got := tournament.MatchdayOf(firstGroupMatch(t, group.Structure))
	if got.Kind != tournament.MatchdayDate || got.Date.Format("2006-01-02") != "2026-06-11" {
		t.Fatalf("unexpected matchday: %+v", got)
	}

	if _, err := f.results.SetMatchday(ctx, adminRoot, groupID, "group-A-match-1", "0"); !errors.Is(err, tournament.ErrInvalidMatchday) {
		t.Fatalf("matchday 0 must be rejected, got %v", err)
	}
}

type failingScorer struct {
	calls int
}

func (s *failingScorer) CalculateScores(_ context.Context, _ string) ([]prediction.MemberTotal, error) {
	s.calls++
	return nil, errors.New("prediction store down")
}

func TestResultService_RescoreFailureDoesNotFailRecording(t *testing.T) {
	t.Parallel()

	f := newPoolFixture(t)
	groupID := f.createWorldCupGroup(t, ownerAlice, 10000)

	scorer := &failingScorer{}
	f.results.scorer = scorer
	if _, err := f.results.RecordResult(t.Context(), adminRoot, RecordResultInput{GroupID: groupID, MatchID: "group-A-match-1", Score1: 3, Score2: 3}); err != nil {
		t.Fatalf("recording must succeed when rescoring fails: %v", err)
	}
	if scorer.calls != 1 {
		t.Fatalf("scorer must be called once, got %d", scorer.calls)
	}
}

func TestResultService_EightTeamsEnterAtSemiFinals(t *testing.T) {
	t.Parallel()

	f := newPoolFixture(t)
	ctx := t.Context()
	group, err := f.pools.CreateGroup(ctx, ownerAlice, CreateGroupInput{
		Name:                "Euro sweep",
		CompetitionCategory: memory.CategoryFootball,
		CompetitionID:       memory.CompetitionIDEuro28,
		TotalBetAmount:      10000,
	})
	if err != nil {
		t.Fatalf("create group: %v", err)
	}

	for _, m := range group.Structure.Matches() {
		if !m.IsGroupMatch() {
			continue
		}
		if _, err := f.results.RecordResult(ctx, adminRoot, RecordResultInput{GroupID: group.ID, MatchID: m.ID, Score1: 1}); err != nil {
			t.Fatalf("record %s: %v", m.ID, err)
		}
	}

	stored, _, err := f.groups.GetByID(ctx, group.ID)
	if err != nil {
		t.Fatalf("get group: %v", err)
	}
	if stored.Structure.CurrentStageID != tournament.StageIDSemiFinals {
		t.Fatalf("eight teams must enter at the semi-finals, got %s", stored.Structure.CurrentStageID)
	}
	semi, _, _, _ := stored.Structure.FindMatch("semi-finals-1")
	if semi.Team1 == nil || semi.Team2 == nil || semi.Team1.ID != "eng" || semi.Team2.ID != "ita" {
		t.Fatalf("unexpected semi-final seeding: %+v", semi)
	}

	_, err = f.picks.Submit(ctx, ownerAlice, SubmitPredictionInput{GroupID: group.ID, MatchID: "quarter-finals-1", Score1: 1})
	if !errors.Is(err, ErrInvalidInput) || !errors.Is(err, prediction.ErrInvalidPick) {
		t.Fatalf("skipped quarter-final must not take picks, got %v", err)
	}
	if _, err := f.results.RecordResult(ctx, adminRoot, RecordResultInput{GroupID: group.ID, MatchID: "semi-finals-1", Score1: 2}); err != nil {
		t.Fatalf("record semi-final: %v", err)
	}
}
