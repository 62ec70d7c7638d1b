package tournament

import "fmt"

// winnerProgression maps a knockout round to the round its winners play next.
// Third place and final are terminal.
var winnerProgression = map[string]string{
	StageIDRoundOf16:     StageIDQuarterFinals,
	StageIDQuarterFinals: StageIDSemiFinals,
	StageIDSemiFinals:    StageIDFinal,
}

func knockoutMatchID(stageID string, n int) string {
	return fmt.Sprintf("%s-%d", stageID, n)
}

// NextMatchFor resolves where the winner of match number n of stageID goes.
// Matches 2k-1 and 2k always resolve to the same next match.
func NextMatchFor(stageID string, n int) (nextStageID, nextMatchID string, ok bool) {
	next, exists := winnerProgression[stageID]
	if !exists || n < 1 {
		return "", "", false
	}
	return next, knockoutMatchID(next, (n+1)/2), true
}

// LoserMatchFor resolves where the loser of a knockout match goes. Only
// semi-final losers move on, into the third place match.
func LoserMatchFor(stageID string, n int) (nextStageID, nextMatchID string, ok bool) {
	if stageID != StageIDSemiFinals || n < 1 {
		return "", "", false
	}
	return StageIDThirdPlace, knockoutMatchID(StageIDThirdPlace, 1), true
}

// LinkKnockout wires NextMatchID/NextStageID on every knockout match whose
// winner advances.
func LinkKnockout(stages []*Stage) {
	for _, stage := range stages {
		for _, m := range stage.Matches() {
			nextStageID, nextMatchID, ok := NextMatchFor(stage.ID, m.Number)
			if !ok {
				m.NextStageID = ""
				m.NextMatchID = ""
				continue
			}
			m.NextStageID = nextStageID
			m.NextMatchID = nextMatchID
		}
	}
}
