package pool

import (
	"time"

	"github.com/riskibarqy/prediction-pool/internal/domain/tournament"
)

type MemberRole string

const (
	MemberRoleOwner  MemberRole = "owner"
	MemberRoleMember MemberRole = "member"
)

// CompetitionRef keys the catalog entry the group's teams came from.
type CompetitionRef struct {
	Category string
	ID       string
}

type Member struct {
	UserID   string
	Email    string
	Role     MemberRole
	JoinedAt time.Time
}

// Invite is an invitation that has not been accepted yet. It already counts
// toward the cost split.
type Invite struct {
	Email     string
	InvitedBy string
	InvitedAt time.Time
}

type UserPayment struct {
	UserID string
	// PaymentAmount is in minor currency units.
	PaymentAmount int64
	HasPaid       bool
	PaymentID     string
	PaidDate      *time.Time
	IsCreator     bool
}

// Group is the aggregate persisted and mutated as a single unit.
type Group struct {
	ID             string
	Name           string
	OwnerUserID    string
	InviteCode     string
	Competition    CompetitionRef
	TotalBetAmount int64
	Currency       string
	Members        []Member
	PendingInvites []Invite
	Payments       []UserPayment
	Structure      *tournament.Structure
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (g *Group) IsOwner(userID string) bool {
	return userID != "" && g.OwnerUserID == userID
}

func (g *Group) IsMember(userID string) bool {
	return g.memberIndex(userID) >= 0
}

func (g *Group) memberIndex(userID string) int {
	for i := range g.Members {
		if g.Members[i].UserID == userID {
			return i
		}
	}
	return -1
}

func (g *Group) paymentIndex(userID string) int {
	for i := range g.Payments {
		if g.Payments[i].UserID == userID {
			return i
		}
	}
	return -1
}

func (g *Group) inviteIndex(email string) int {
	for i := range g.PendingInvites {
		if g.PendingInvites[i].Email == email {
			return i
		}
	}
	return -1
}

// Payment returns the payment row of a member.
func (g *Group) Payment(userID string) (UserPayment, bool) {
	idx := g.paymentIndex(userID)
	if idx < 0 {
		return UserPayment{}, false
	}
	return g.Payments[idx], true
}

// Clone returns a deep copy so callers can mutate without touching shared state.
func (g *Group) Clone() Group {
	out := *g
	out.Members = append([]Member(nil), g.Members...)
	out.PendingInvites = append([]Invite(nil), g.PendingInvites...)
	out.Payments = make([]UserPayment, 0, len(g.Payments))
	for _, p := range g.Payments {
		if p.PaidDate != nil {
			d := *p.PaidDate
			p.PaidDate = &d
		}
		out.Payments = append(out.Payments, p)
	}
	out.Structure = g.Structure.Clone()
	return out
}
