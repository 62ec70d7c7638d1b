package tournament

import "testing"

func TestNextMatchFor_PairsShareNextMatch(t *testing.T) {
	for _, stageID := range []string{StageIDRoundOf16, StageIDQuarterFinals, StageIDSemiFinals} {
		for k := 1; k <= 4; k++ {
			_, a, okA := NextMatchFor(stageID, 2*k-1)
			_, b, okB := NextMatchFor(stageID, 2*k)
			if !okA || !okB {
				t.Fatalf("%s matches %d/%d must advance", stageID, 2*k-1, 2*k)
			}
			if a != b {
				t.Fatalf("%s matches %d and %d diverge: %s vs %s", stageID, 2*k-1, 2*k, a, b)
			}
		}
	}
}

func TestLinkKnockout(t *testing.T) {
	s := mustBuild(t, 32)

	r16, _ := s.StageByID(StageIDRoundOf16)
	for _, n := range []int{0, 1} {
		m := r16.Matches()[n]
		if m.NextMatchID != "quarter-finals-1" || m.NextStageID != StageIDQuarterFinals {
			t.Fatalf("round of 16 match %d: next=%s/%s", m.Number, m.NextStageID, m.NextMatchID)
		}
	}

	semis, _ := s.StageByID(StageIDSemiFinals)
	for _, m := range semis.Matches() {
		if m.NextMatchID != "final-1" {
			t.Fatalf("semi-final %d must feed final-1, got %s", m.Number, m.NextMatchID)
		}
	}

	for _, id := range []string{StageIDThirdPlace, StageIDFinal} {
		stage, _ := s.StageByID(id)
		for _, m := range stage.Matches() {
			if m.NextMatchID != "" || m.NextStageID != "" {
				t.Fatalf("%s must be terminal, got next=%s", m.ID, m.NextMatchID)
			}
		}
	}

	for _, g := range s.Stages[0].Groups() {
		for _, m := range g.Matches {
			if m.NextMatchID != "" {
				t.Fatalf("group match %s must not link downstream", m.ID)
			}
		}
	}
}

func TestLoserMatchFor(t *testing.T) {
	if _, id, ok := LoserMatchFor(StageIDSemiFinals, 2); !ok || id != "third-place-1" {
		t.Fatalf("semi-final loser must go to third-place-1, got %s ok=%v", id, ok)
	}
	if _, _, ok := LoserMatchFor(StageIDQuarterFinals, 1); ok {
		t.Fatalf("quarter-final losers are eliminated")
	}
}
