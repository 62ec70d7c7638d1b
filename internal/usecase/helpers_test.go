package usecase

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/prediction-pool/internal/domain/prediction"
	"github.com/riskibarqy/prediction-pool/internal/domain/tournament"
	"github.com/riskibarqy/prediction-pool/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/prediction-pool/internal/platform/logging"
)

var testNow = time.Date(2026, time.June, 1, 9, 0, 0, 0, time.UTC)

type sequenceIDGenerator struct {
	mu     sync.Mutex
	prefix string
	next   int
}

func (g *sequenceIDGenerator) NewID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("%s-%03d", g.prefix, g.next), nil
}

type queuedCodeGenerator struct {
	mu    sync.Mutex
	codes []string
}

func (g *queuedCodeGenerator) NewCode(_ int) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.codes) == 0 {
		return "", fmt.Errorf("no codes left")
	}
	code := g.codes[0]
	g.codes = g.codes[1:]
	return code, nil
}

// poolFixture wires every service on top of the memory store.
type poolFixture struct {
	groups      *memory.GroupRepository
	predictions *memory.PredictionRepository
	pools       *PoolService
	picks       *PredictionService
	results     *ResultService
	scoring     *ScoringService
}

func newPoolFixture(t *testing.T) *poolFixture {
	t.Helper()

	groups := memory.NewGroupRepository()
	predictions := memory.NewPredictionRepository()
	competitions := NewCompetitionService(memory.NewCompetitionRepository(memory.SeedCompetitions()), nil)
	logger := logging.NewNop()

	settings := DefaultPoolSettings()
	settings.MinTotalBetAmount = 1000
	settings.InviteTTL = 48 * time.Hour

	pools := NewPoolService(
		groups,
		predictions,
		competitions,
		&sequenceIDGenerator{prefix: "grp"},
		&queuedCodeGenerator{codes: []string{"ABCD2345", "EFGH6789", "JKLM2345"}},
		settings,
		logger,
	)
	pools.now = func() time.Time { return testNow }

	scoring := NewScoringService(groups, predictions, prediction.DefaultRules(), 2, logger)
	results := NewResultService(groups, scoring, logger)
	results.now = func() time.Time { return testNow }
	picks := NewPredictionService(groups, predictions)
	picks.now = func() time.Time { return testNow }

	return &poolFixture{
		groups:      groups,
		predictions: predictions,
		pools:       pools,
		picks:       picks,
		results:     results,
		scoring:     scoring,
	}
}

func (f *poolFixture) createWorldCupGroup(t *testing.T, owner Principal, total int64) string {
	t.Helper()

	group, err := f.pools.CreateGroup(t.Context(), owner, CreateGroupInput{
		Name:                "Office World Cup",
		CompetitionCategory: memory.CategoryFootball,
		CompetitionID:       memory.CompetitionIDWorldCup26,
		TotalBetAmount:      total,
	})
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	return group.ID
}

func (f *poolFixture) join(t *testing.T, groupID string, who Principal) {
	t.Helper()

	group, _, err := f.groups.GetByID(t.Context(), groupID)
	if err != nil {
		t.Fatalf("get group: %v", err)
	}
	if _, err := f.pools.JoinByInviteCode(t.Context(), who, group.InviteCode); err != nil {
		t.Fatalf("join %s: %v", who.UserID, err)
	}
}

func firstGroupMatch(t *testing.T, s *tournament.Structure) *tournament.Match {
	t.Helper()

	m, _, _, ok := s.FindMatch("group-A-match-1")
	if !ok {
		t.Fatalf("group-A-match-1 not found")
	}
	return m
}

var (
	ownerAlice = Principal{UserID: "alice", Email: "alice@example.com"}
	memberBob  = Principal{UserID: "bob", Email: "Bob@Example.com"}
	memberCara = Principal{UserID: "cara", Email: "cara@example.com"}
	adminRoot  = Principal{UserID: "root", Email: "root@example.com", IsAdmin: true}
)
