package pool

import (
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/prediction-pool/internal/domain/tournament"
)

// EquitableAmount is the per-head share of total, rounded half up to the
// nearest minor unit. Headcount never drops below one.
func EquitableAmount(total int64, confirmedMembers, pendingInvites int) int64 {
	n := int64(max(1, confirmedMembers+pendingInvites))
	return (total + n/2) / n
}

func ValidateTotal(amount, minimum int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidAmount, amount)
	}
	if amount < minimum {
		return fmt.Errorf("%w: got %d, minimum %d", ErrBelowMinimum, amount, minimum)
	}
	return nil
}

// SplitCost recomputes the share of every unpaid member. Paid shares are
// frozen at the amount they were paid with.
func (g *Group) SplitCost() {
	share := EquitableAmount(g.TotalBetAmount, len(g.Members), len(g.PendingInvites))
	for i := range g.Payments {
		if g.Payments[i].HasPaid {
			continue
		}
		g.Payments[i].PaymentAmount = share
	}
}

type NewGroupParams struct {
	ID             string
	Name           string
	Owner          Member
	InviteCode     string
	Competition    CompetitionRef
	TotalBetAmount int64
	MinimumAmount  int64
	Currency       string
	Structure      *tournament.Structure
	Now            time.Time
}

// NewGroup creates a group whose only member is its owner.
func NewGroup(p NewGroupParams) (Group, error) {
	name := strings.TrimSpace(p.Name)
	switch {
	case p.ID == "":
		return Group{}, fmt.Errorf("%w: id is required", ErrInvalidGroup)
	case name == "":
		return Group{}, fmt.Errorf("%w: name is required", ErrInvalidGroup)
	case p.Owner.UserID == "":
		return Group{}, fmt.Errorf("%w: owner is required", ErrInvalidGroup)
	case p.InviteCode == "":
		return Group{}, fmt.Errorf("%w: invite code is required", ErrInvalidGroup)
	case p.Structure == nil:
		return Group{}, fmt.Errorf("%w: tournament structure is required", ErrInvalidGroup)
	}
	if err := ValidateTotal(p.TotalBetAmount, p.MinimumAmount); err != nil {
		return Group{}, err
	}

	owner := p.Owner
	owner.Role = MemberRoleOwner
	owner.JoinedAt = p.Now

	g := Group{
		ID:             p.ID,
		Name:           name,
		OwnerUserID:    owner.UserID,
		InviteCode:     p.InviteCode,
		Competition:    p.Competition,
		TotalBetAmount: p.TotalBetAmount,
		Currency:       p.Currency,
		Members:        []Member{owner},
		Payments:       []UserPayment{{UserID: owner.UserID, IsCreator: true}},
		Structure:      p.Structure,
		CreatedAt:      p.Now,
		UpdatedAt:      p.Now,
	}
	g.SplitCost()
	return g, nil
}

// AddMember admits a user and consumes the invite sent to their email, if any.
func (g *Group) AddMember(m Member, now time.Time) error {
	if m.UserID == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidGroup)
	}
	if g.IsMember(m.UserID) {
		return fmt.Errorf("%w: %s", ErrMemberExists, m.UserID)
	}

	m.Role = MemberRoleMember
	m.JoinedAt = now
	g.Members = append(g.Members, m)
	g.Payments = append(g.Payments, UserPayment{UserID: m.UserID})
	if email := normalizeEmail(m.Email); email != "" {
		if idx := g.inviteIndex(email); idx >= 0 {
			g.PendingInvites = append(g.PendingInvites[:idx], g.PendingInvites[idx+1:]...)
		}
	}

	g.SplitCost()
	g.UpdatedAt = now
	return nil
}

func (g *Group) AddInvite(email, invitedBy string, now time.Time) error {
	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("%w: email %q", ErrInvalidInvite, email)
	}
	for _, m := range g.Members {
		if normalizeEmail(m.Email) == email {
			return fmt.Errorf("%w: %s", ErrMemberExists, email)
		}
	}
	if g.inviteIndex(email) >= 0 {
		return fmt.Errorf("%w: %s", ErrInviteExists, email)
	}

	g.PendingInvites = append(g.PendingInvites, Invite{Email: email, InvitedBy: invitedBy, InvitedAt: now})
	g.SplitCost()
	g.UpdatedAt = now
	return nil
}

func (g *Group) RemoveMember(userID string, now time.Time) error {
	idx := g.memberIndex(userID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNotMember, userID)
	}
	if g.IsOwner(userID) {
		return ErrOwnerRemoval
	}
	if payIdx := g.paymentIndex(userID); payIdx >= 0 {
		if g.Payments[payIdx].HasPaid {
			return fmt.Errorf("%w: %s", ErrMemberPaid, userID)
		}
		g.Payments = append(g.Payments[:payIdx], g.Payments[payIdx+1:]...)
	}
	g.Members = append(g.Members[:idx], g.Members[idx+1:]...)

	g.SplitCost()
	g.UpdatedAt = now
	return nil
}

func (g *Group) SetTotalBetAmount(amount, minimum int64, now time.Time) error {
	if err := ValidateTotal(amount, minimum); err != nil {
		return err
	}
	g.TotalBetAmount = amount
	g.SplitCost()
	g.UpdatedAt = now
	return nil
}

// ConfirmPayment marks a member's current share as paid, freezing it.
func (g *Group) ConfirmPayment(userID, paymentID string, paidAt time.Time) error {
	idx := g.paymentIndex(userID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNotMember, userID)
	}
	if g.Payments[idx].HasPaid {
		return fmt.Errorf("%w: %s", ErrMemberPaid, userID)
	}
	g.Payments[idx].HasPaid = true
	g.Payments[idx].PaymentID = paymentID
	g.Payments[idx].PaidDate = &paidAt
	g.UpdatedAt = paidAt
	return nil
}

// ExpireInvites drops invites sent before cutoff and reports how many were
// removed.
func (g *Group) ExpireInvites(cutoff, now time.Time) int {
	kept := g.PendingInvites[:0]
	removed := 0
	for _, inv := range g.PendingInvites {
		if inv.InvitedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, inv)
	}
	g.PendingInvites = kept
	if removed > 0 {
		g.SplitCost()
		g.UpdatedAt = now
	}
	return removed
}

func normalizeEmail(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
