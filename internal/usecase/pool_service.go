package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/prediction-pool/internal/domain/competition"
	"github.com/riskibarqy/prediction-pool/internal/domain/pool"
	"github.com/riskibarqy/prediction-pool/internal/domain/prediction"
	"github.com/riskibarqy/prediction-pool/internal/domain/tournament"
	idgen "github.com/riskibarqy/prediction-pool/internal/platform/id"
	"github.com/riskibarqy/prediction-pool/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

const inviteCodeAttempts = 5

type PoolSettings struct {
	MinTotalBetAmount int64
	InviteTTL         time.Duration
	InviteCodeLength  int
	Currency          string
	Build             tournament.BuildConfig
}

func DefaultPoolSettings() PoolSettings {
	return PoolSettings{
		MinTotalBetAmount: 1000,
		InviteTTL:         7 * 24 * time.Hour,
		InviteCodeLength:  8,
		Currency:          "USD",
		Build:             tournament.DefaultBuildConfig(),
	}
}

type CreateGroupInput struct {
	Name                string `validate:"required,max=120"`
	CompetitionCategory string `validate:"required"`
	CompetitionID       string `validate:"required"`
	TotalBetAmount      int64  `validate:"gt=0"`
	Currency            string `validate:"omitempty,len=3"`
}

type ConfirmPaymentInput struct {
	GroupID   string `validate:"required"`
	UserID    string `validate:"required"`
	PaymentID string `validate:"required"`
	PaidAt    time.Time
}

type competitionLookup interface {
	Get(ctx context.Context, category, id string) (competition.Competition, error)
}

type PoolService struct {
	groupRepo      pool.Repository
	predictionRepo prediction.Repository
	competitions   competitionLookup
	idGen          idgen.Generator
	codeGen        idgen.CodeGenerator
	settings       PoolSettings
	logger         *logging.Logger
	now            func() time.Time
}

func NewPoolService(
	groupRepo pool.Repository,
	predictionRepo prediction.Repository,
	competitions competitionLookup,
	idGen idgen.Generator,
	codeGen idgen.CodeGenerator,
	settings PoolSettings,
	logger *logging.Logger,
) *PoolService {
	if logger == nil {
		logger = logging.Default()
	}
	return &PoolService{
		groupRepo:      groupRepo,
		predictionRepo: predictionRepo,
		competitions:   competitions,
		idGen:          idGen,
		codeGen:        codeGen,
		settings:       settings,
		logger:         logger.Named("pool"),
		now:            time.Now,
	}
}

// CreateGroup builds the tournament from the competition's qualified teams and
// opens a group owned by the caller.
func (s *PoolService) CreateGroup(ctx context.Context, caller Principal, input CreateGroupInput) (pool.Group, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PoolService.CreateGroup",
		attribute.String("competition.id", input.CompetitionID))
	defer span.End()

	caller = caller.normalized()
	input.Name = strings.TrimSpace(input.Name)
	input.CompetitionCategory = strings.TrimSpace(input.CompetitionCategory)
	input.CompetitionID = strings.TrimSpace(input.CompetitionID)
	input.Currency = strings.ToUpper(strings.TrimSpace(input.Currency))
	if caller.UserID == "" {
		return pool.Group{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if err := validateInput(ctx, input); err != nil {
		return pool.Group{}, err
	}
	if err := pool.ValidateTotal(input.TotalBetAmount, s.settings.MinTotalBetAmount); err != nil {
		return pool.Group{}, classify("create group", err)
	}

	comp, err := s.competitions.Get(ctx, input.CompetitionCategory, input.CompetitionID)
	if err != nil {
		return pool.Group{}, err
	}
	structure, err := tournament.Build(comp.Teams, s.settings.Build)
	if err != nil {
		return pool.Group{}, classify("build tournament for "+comp.Key().String(), err)
	}

	groupID, err := s.idGen.NewID()
	if err != nil {
		return pool.Group{}, fmt.Errorf("generate group id: %w", err)
	}
	inviteCode, err := s.uniqueInviteCode(ctx)
	if err != nil {
		return pool.Group{}, err
	}

	currency := input.Currency
	if currency == "" {
		currency = s.settings.Currency
	}
	group, err := pool.NewGroup(pool.NewGroupParams{
		ID:             groupID,
		Name:           input.Name,
		Owner:          pool.Member{UserID: caller.UserID, Email: caller.Email},
		InviteCode:     inviteCode,
		Competition:    pool.CompetitionRef{Category: comp.Category, ID: comp.ID},
		TotalBetAmount: input.TotalBetAmount,
		MinimumAmount:  s.settings.MinTotalBetAmount,
		Currency:       currency,
		Structure:      structure,
		Now:            s.now().UTC(),
	})
	if err != nil {
		return pool.Group{}, classify("create group", err)
	}

	if err := s.groupRepo.Create(ctx, group); err != nil {
		return pool.Group{}, fmt.Errorf("create group: %w", err)
	}
	s.logger.InfoContext(ctx, "group created", "group_id", group.ID, "owner_id", caller.UserID, "competition", comp.Key().String())
	return group, nil
}

func (s *PoolService) uniqueInviteCode(ctx context.Context) (string, error) {
	for range inviteCodeAttempts {
		code, err := s.codeGen.NewCode(s.settings.InviteCodeLength)
		if err != nil {
			return "", fmt.Errorf("generate invite code: %w", err)
		}
		_, exists, err := s.groupRepo.GetByInviteCode(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check invite code: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("generate invite code: no free code after %d attempts", inviteCodeAttempts)
}

func (s *PoolService) JoinByInviteCode(ctx context.Context, caller Principal, inviteCode string) (pool.Group, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PoolService.JoinByInviteCode")
	defer span.End()

	caller = caller.normalized()
	inviteCode = strings.ToUpper(strings.TrimSpace(inviteCode))
	if caller.UserID == "" {
		return pool.Group{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if inviteCode == "" {
		return pool.Group{}, fmt.Errorf("%w: invite code is required", ErrInvalidInput)
	}

	group, exists, err := s.groupRepo.GetByInviteCode(ctx, inviteCode)
	if err != nil {
		return pool.Group{}, fmt.Errorf("get group by invite code: %w", err)
	}
	if !exists {
		return pool.Group{}, fmt.Errorf("%w: invite code %s", ErrNotFound, inviteCode)
	}

	return s.mutate(ctx, "join group", group.ID, func(g *pool.Group) error {
		return g.AddMember(pool.Member{UserID: caller.UserID, Email: caller.Email}, s.now().UTC())
	})
}

// InviteMember records a pending invite. Any member may invite.
func (s *PoolService) InviteMember(ctx context.Context, caller Principal, groupID, email string) (pool.Group, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PoolService.InviteMember", attribute.String("group.id", groupID))
	defer span.End()

	caller = caller.normalized()
	groupID = strings.TrimSpace(groupID)
	if groupID == "" {
		return pool.Group{}, fmt.Errorf("%w: group id is required", ErrInvalidInput)
	}

	return s.mutate(ctx, "invite member", groupID, func(g *pool.Group) error {
		if !g.IsMember(caller.UserID) {
			return fmt.Errorf("%w: only members can invite", ErrPermissionDenied)
		}
		return g.AddInvite(email, caller.UserID, s.now().UTC())
	})
}

// RemoveMember lets the owner remove anyone but themselves, and lets a member
// leave. The member's predictions are deleted afterwards.
func (s *PoolService) RemoveMember(ctx context.Context, caller Principal, groupID, userID string) (pool.Group, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PoolService.RemoveMember", attribute.String("group.id", groupID))
	defer span.End()

	caller = caller.normalized()
	groupID = strings.TrimSpace(groupID)
	userID = strings.TrimSpace(userID)
	if groupID == "" || userID == "" {
		return pool.Group{}, fmt.Errorf("%w: group id and user id are required", ErrInvalidInput)
	}

	group, err := s.mutate(ctx, "remove member", groupID, func(g *pool.Group) error {
		if !g.IsOwner(caller.UserID) && caller.UserID != userID {
			return fmt.Errorf("%w: only the owner can remove other members", ErrPermissionDenied)
		}
		return g.RemoveMember(userID, s.now().UTC())
	})
	if err != nil {
		return pool.Group{}, err
	}

	if err := s.predictionRepo.DeleteByGroupUser(ctx, groupID, userID); err != nil {
		s.logger.WarnContext(ctx, "delete predictions of removed member failed", "group_id", groupID, "user_id", userID, "error", err)
	}
	return group, nil
}

func (s *PoolService) UpdateTotalBetAmount(ctx context.Context, caller Principal, groupID string, amount int64) (pool.Group, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PoolService.UpdateTotalBetAmount", attribute.String("group.id", groupID))
	defer span.End()

	caller = caller.normalized()
	groupID = strings.TrimSpace(groupID)
	if groupID == "" {
		return pool.Group{}, fmt.Errorf("%w: group id is required", ErrInvalidInput)
	}

	return s.mutate(ctx, "update total bet amount", groupID, func(g *pool.Group) error {
		if !g.IsOwner(caller.UserID) {
			return fmt.Errorf("%w: only the owner can change the total", ErrPermissionDenied)
		}
		return g.SetTotalBetAmount(amount, s.settings.MinTotalBetAmount, s.now().UTC())
	})
}

// ConfirmPayment is called once the payment provider reports a settled
// payment for a member's share.
func (s *PoolService) ConfirmPayment(ctx context.Context, input ConfirmPaymentInput) (pool.Group, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PoolService.ConfirmPayment", attribute.String("group.id", input.GroupID))
	defer span.End()

	input.GroupID = strings.TrimSpace(input.GroupID)
	input.UserID = strings.TrimSpace(input.UserID)
	input.PaymentID = strings.TrimSpace(input.PaymentID)
	if err := validateInput(ctx, input); err != nil {
		return pool.Group{}, err
	}
	paidAt := input.PaidAt
	if paidAt.IsZero() {
		paidAt = s.now()
	}

	group, err := s.mutate(ctx, "confirm payment", input.GroupID, func(g *pool.Group) error {
		return g.ConfirmPayment(input.UserID, input.PaymentID, paidAt.UTC())
	})
	if err != nil {
		return pool.Group{}, err
	}
	s.logger.InfoContext(ctx, "payment confirmed", "group_id", input.GroupID, "user_id", input.UserID, "payment_id", input.PaymentID)
	return group, nil
}

// GetGroup is visible to members and admins.
func (s *PoolService) GetGroup(ctx context.Context, caller Principal, groupID string) (pool.Group, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PoolService.GetGroup", attribute.String("group.id", groupID))
	defer span.End()

	caller = caller.normalized()
	groupID = strings.TrimSpace(groupID)
	if groupID == "" {
		return pool.Group{}, fmt.Errorf("%w: group id is required", ErrInvalidInput)
	}

	group, exists, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return pool.Group{}, fmt.Errorf("get group: %w", err)
	}
	if !exists {
		return pool.Group{}, fmt.Errorf("%w: group %s", ErrNotFound, groupID)
	}
	if !caller.IsAdmin && !group.IsMember(caller.UserID) {
		return pool.Group{}, fmt.Errorf("%w: you are not a member of this group", ErrPermissionDenied)
	}
	return group, nil
}

func (s *PoolService) GetStructure(ctx context.Context, caller Principal, groupID string) (*tournament.Structure, error) {
	group, err := s.GetGroup(ctx, caller, groupID)
	if err != nil {
		return nil, err
	}
	return group.Structure, nil
}

func (s *PoolService) ListMyGroups(ctx context.Context, caller Principal) ([]pool.Group, error) {
	caller = caller.normalized()
	if caller.UserID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	groups, err := s.groupRepo.ListByMember(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("list groups by member: %w", err)
	}
	return groups, nil
}

// ExpireInvites drops pending invites older than the invite TTL in every
// group. A failing group is logged and skipped.
func (s *PoolService) ExpireInvites(ctx context.Context) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PoolService.ExpireInvites")
	defer span.End()

	if s.settings.InviteTTL <= 0 {
		return 0, fmt.Errorf("%w: invite ttl must be > 0", ErrConfiguration)
	}

	groupIDs, err := s.groupRepo.ListIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list group ids: %w", err)
	}

	now := s.now().UTC()
	cutoff := now.Add(-s.settings.InviteTTL)
	total := 0
	for _, groupID := range groupIDs {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		removed := 0
		_, err := s.groupRepo.Update(ctx, groupID, func(g *pool.Group) error {
			removed = g.ExpireInvites(cutoff, now)
			return nil
		})
		if err != nil {
			s.logger.WarnContext(ctx, "expire invites failed", "group_id", groupID, "error", err)
			continue
		}
		if removed > 0 {
			s.logger.InfoContext(ctx, "expired invites", "group_id", groupID, "count", removed)
		}
		total += removed
	}
	return total, nil
}

func (s *PoolService) mutate(ctx context.Context, op, groupID string, fn pool.MutateFunc) (pool.Group, error) {
	group, err := s.groupRepo.Update(ctx, groupID, fn)
	if err != nil {
		if errors.Is(err, pool.ErrGroupNotFound) {
			return pool.Group{}, fmt.Errorf("%w: group %s", ErrNotFound, groupID)
		}
		return pool.Group{}, classify(op, err)
	}
	return group, nil
}
