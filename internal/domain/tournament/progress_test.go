package tournament

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
)

// playKnockouts records 1-0 for team1 in every playable knockout match, round
// by round, until nothing is left.
func playKnockouts(t *testing.T, s *Structure) {
	t.Helper()

	for _, stage := range s.knockoutStages() {
		for _, m := range stage.Matches() {
			if m.IsPlayed || m.Status == MatchStatusSkipped {
				continue
			}
			mustRecord(t, s, m.ID, Result{Score1: 1, Score2: 0})
		}
	}
}

func TestKnockoutEntryRound_EveryTeamCount(t *testing.T) {
	tests := []struct {
		teams     int
		entry     string
		firstPair [2]string
	}{
		{teams: 4, entry: StageIDFinal, firstPair: [2]string{"t01", "t02"}},
		{teams: 5, entry: StageIDFinal, firstPair: [2]string{"t01", "t05"}},
		{teams: 8, entry: StageIDSemiFinals, firstPair: [2]string{"t01", "t06"}},
		{teams: 12, entry: StageIDSemiFinals, firstPair: [2]string{"t01", "t02"}},
		{teams: 16, entry: StageIDQuarterFinals, firstPair: [2]string{"t01", "t06"}},
		{teams: 24, entry: StageIDQuarterFinals, firstPair: [2]string{"t01", "t06"}},
		{teams: 32, entry: StageIDRoundOf16, firstPair: [2]string{"t01", "t06"}},
		{teams: 48, entry: StageIDRoundOf16, firstPair: [2]string{"t01", "t14"}},
	}

	for _, tc := range tests {
		t.Run(fmt.Sprintf("%d teams", tc.teams), func(t *testing.T) {
			s := mustBuild(t, tc.teams)
			playGroupStage(t, s)

			if s.CurrentStageID != tc.entry {
				t.Fatalf("unexpected entry round: got=%s want=%s", s.CurrentStageID, tc.entry)
			}
			assertSlots(t, mustMatch(t, s, tc.entry+"-1"), tc.firstPair[0], tc.firstPair[1])

			for _, stage := range s.knockoutStages() {
				before := stage.Order < mustStage(t, s, tc.entry).Order
				for _, m := range stage.Matches() {
					if before && m.Status != MatchStatusSkipped {
						t.Fatalf("%s comes before the entry round and must be skipped", m.ID)
					}
				}
			}

			playKnockouts(t, s)

			final := mustMatch(t, s, "final-1")
			if !final.IsPlayed || final.WinnerID == "" {
				t.Fatalf("final must be playable for %d teams: %+v", tc.teams, final)
			}
			for _, stage := range s.Stages {
				if !stage.IsCompleted {
					t.Fatalf("stage %s left incomplete for %d teams", stage.ID, tc.teams)
				}
			}
		})
	}
}

func mustStage(t *testing.T, s *Structure, id string) *Stage {
	t.Helper()

	stage, ok := s.StageByID(id)
	if !ok {
		t.Fatalf("stage %s not found", id)
	}
	return stage
}

func TestKnockoutEntryRound_FinalOnlySkipsThirdPlace(t *testing.T) {
	s := mustBuild(t, 4)
	playGroupStage(t, s)

	for _, id := range []string{"quarter-finals-1", "semi-finals-2", "third-place-1"} {
		m := mustMatch(t, s, id)
		if m.Status != MatchStatusSkipped {
			t.Fatalf("%s must be skipped, got %s", id, m.Status)
		}
		if err := s.RecordResult(id, Result{Score1: 1, Score2: 0}); !errors.Is(err, ErrTeamsNotAssigned) {
			t.Fatalf("skipped match %s must not take results, got %v", id, err)
		}
	}
}

func TestKnockoutEntryRound_RankedSeedsKeepTopTwoApart(t *testing.T) {
	s := mustBuild(t, 24)
	playGroupStage(t, s)

	// Six group winners and the two best runners-up, in bracket order
	// 1v8 4v5 2v7 3v6.
	assertSlots(t, mustMatch(t, s, "quarter-finals-1"), "t01", "t06")
	assertSlots(t, mustMatch(t, s, "quarter-finals-2"), "t13", "t17")
	assertSlots(t, mustMatch(t, s, "quarter-finals-3"), "t05", "t02")
	assertSlots(t, mustMatch(t, s, "quarter-finals-4"), "t09", "t21")
}

func TestKnockoutSeeding_ReopensWithGroupStage(t *testing.T) {
	s := mustBuild(t, 8)
	playGroupStage(t, s)

	if err := s.ClearResult("group-B-match-6"); err != nil {
		t.Fatalf("clear group result: %v", err)
	}
	if s.CurrentStageID != StageIDGroups {
		t.Fatalf("reopened group stage must be current, got %s", s.CurrentStageID)
	}
	for _, m := range s.Matches() {
		if m.IsGroupMatch() {
			continue
		}
		if m.Status == MatchStatusSkipped || m.Team1 != nil || m.Team2 != nil {
			t.Fatalf("knockout match %s must be reset while groups are open: %+v", m.ID, m)
		}
	}
}

func TestBuild_SingleTeamGroups(t *testing.T) {
	t.Run("one team", func(t *testing.T) {
		s := mustBuild(t, 1)
		groupStage := s.Stages[0]
		if !groupStage.IsCompleted {
			t.Fatalf("a group stage without matches is complete")
		}
		if got := groupStage.Groups()[0].QualifiedTeamIDs; !reflect.DeepEqual(got, []string{"t01"}) {
			t.Fatalf("lone team must qualify, got %v", got)
		}
		for _, m := range s.Matches() {
			if !m.IsGroupMatch() && m.Status != MatchStatusSkipped {
				t.Fatalf("no knockout round can be filled by one team: %s is %s", m.ID, m.Status)
			}
		}
	})

	t.Run("five teams", func(t *testing.T) {
		s := mustBuild(t, 5)
		short := s.Stages[0].Groups()[1]
		if len(short.Matches) != 0 || !reflect.DeepEqual(short.QualifiedTeamIDs, []string{"t05"}) {
			t.Fatalf("short group must qualify its team: %+v", short)
		}
		if s.Stages[0].IsCompleted || s.CurrentStageID != StageIDGroups {
			t.Fatalf("group A still has matches to play")
		}

		playGroupStage(t, s)
		if !s.Stages[0].IsCompleted {
			t.Fatalf("group stage must complete once group A is played")
		}
		want := []string{"t01", "t02", "t05"}
		if !reflect.DeepEqual(s.Stages[0].QualifiedTeamIDs, want) {
			t.Fatalf("unexpected qualifiers: got=%v want=%v", s.Stages[0].QualifiedTeamIDs, want)
		}
	})
}

func TestBracketOrder(t *testing.T) {
	if got := bracketOrder(8); !reflect.DeepEqual(got, []int{1, 8, 4, 5, 2, 7, 3, 6}) {
		t.Fatalf("unexpected order for 8: %v", got)
	}
	if got := bracketOrder(2); !reflect.DeepEqual(got, []int{1, 2}) {
		t.Fatalf("unexpected order for 2: %v", got)
	}
}
