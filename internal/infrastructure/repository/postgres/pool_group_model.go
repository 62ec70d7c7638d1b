package postgres

import (
	"time"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/prediction-pool/internal/domain/pool"
)

const poolGroupsTable = "pool_groups"

var poolGroupColumns = []string{
	"public_id",
	"name",
	"owner_user_id",
	"invite_code",
	"competition_category",
	"competition_id",
	"total_bet_amount",
	"currency",
	"members",
	"pending_invites",
	"payments",
	"structure",
	"version",
	"created_at",
	"updated_at",
}

type poolGroupTableModel struct {
	PublicID            string    `db:"public_id"`
	Name                string    `db:"name"`
	OwnerUserID         string    `db:"owner_user_id"`
	InviteCode          string    `db:"invite_code"`
	CompetitionCategory string    `db:"competition_category"`
	CompetitionID       string    `db:"competition_id"`
	TotalBetAmount      int64     `db:"total_bet_amount"`
	Currency            string    `db:"currency"`
	Members             []byte    `db:"members"`
	PendingInvites      []byte    `db:"pending_invites"`
	Payments            []byte    `db:"payments"`
	Structure           []byte    `db:"structure"`
	Version             int64     `db:"version"`
	CreatedAt           time.Time `db:"created_at"`
	UpdatedAt           time.Time `db:"updated_at"`
}

type poolGroupInsertModel struct {
	PublicID            string    `db:"public_id"`
	Name                string    `db:"name"`
	OwnerUserID         string    `db:"owner_user_id"`
	InviteCode          string    `db:"invite_code"`
	CompetitionCategory string    `db:"competition_category"`
	CompetitionID       string    `db:"competition_id"`
	TotalBetAmount      int64     `db:"total_bet_amount"`
	Currency            string    `db:"currency"`
	Members             string    `db:"members"`
	PendingInvites      string    `db:"pending_invites"`
	Payments            string    `db:"payments"`
	Structure           string    `db:"structure"`
	Version             int64     `db:"version"`
	CreatedAt           time.Time `db:"created_at"`
	UpdatedAt           time.Time `db:"updated_at"`
}

type memberRecord struct {
	UserID   string    `json:"user_id"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

// memberFilter is the JSONB containment filter for membership lookups.
type memberFilter struct {
	UserID string `json:"user_id"`
}

type inviteRecord struct {
	Email     string    `json:"email"`
	InvitedBy string    `json:"invited_by"`
	InvitedAt time.Time `json:"invited_at"`
}

type paymentRecord struct {
	UserID        string     `json:"user_id"`
	PaymentAmount int64      `json:"payment_amount"`
	HasPaid       bool       `json:"has_paid"`
	PaymentID     string     `json:"payment_id,omitempty"`
	PaidDate      *time.Time `json:"paid_date,omitempty"`
	IsCreator     bool       `json:"is_creator"`
}

func poolGroupInsertFromDomain(g pool.Group) (poolGroupInsertModel, error) {
	members, pending, payments, structure, err := encodeAggregate(g)
	if err != nil {
		return poolGroupInsertModel{}, err
	}
	return poolGroupInsertModel{
		PublicID:            g.ID,
		Name:                g.Name,
		OwnerUserID:         g.OwnerUserID,
		InviteCode:          g.InviteCode,
		CompetitionCategory: g.Competition.Category,
		CompetitionID:       g.Competition.ID,
		TotalBetAmount:      g.TotalBetAmount,
		Currency:            g.Currency,
		Members:             members,
		PendingInvites:      pending,
		Payments:            payments,
		Structure:           structure,
		Version:             1,
		CreatedAt:           g.CreatedAt.UTC(),
		UpdatedAt:           g.UpdatedAt.UTC(),
	}, nil
}

func encodeAggregate(g pool.Group) (members, pending, payments, structure string, err error) {
	memberRows := make([]memberRecord, 0, len(g.Members))
	for _, m := range g.Members {
		memberRows = append(memberRows, memberRecord{UserID: m.UserID, Email: m.Email, Role: string(m.Role), JoinedAt: m.JoinedAt.UTC()})
	}
	inviteRows := make([]inviteRecord, 0, len(g.PendingInvites))
	for _, inv := range g.PendingInvites {
		inviteRows = append(inviteRows, inviteRecord{Email: inv.Email, InvitedBy: inv.InvitedBy, InvitedAt: inv.InvitedAt.UTC()})
	}
	paymentRows := make([]paymentRecord, 0, len(g.Payments))
	for _, p := range g.Payments {
		paymentRows = append(paymentRows, paymentRecord{
			UserID:        p.UserID,
			PaymentAmount: p.PaymentAmount,
			HasPaid:       p.HasPaid,
			PaymentID:     p.PaymentID,
			PaidDate:      p.PaidDate,
			IsCreator:     p.IsCreator,
		})
	}

	if members, err = encodeJSON(memberRows); err != nil {
		return "", "", "", "", crerr.Wrap(err, "encode members")
	}
	if pending, err = encodeJSON(inviteRows); err != nil {
		return "", "", "", "", crerr.Wrap(err, "encode pending invites")
	}
	if payments, err = encodeJSON(paymentRows); err != nil {
		return "", "", "", "", crerr.Wrap(err, "encode payments")
	}
	if structure, err = encodeStructure(g.Structure); err != nil {
		return "", "", "", "", crerr.Wrap(err, "encode structure")
	}
	return members, pending, payments, structure, nil
}

func poolGroupFromRow(row poolGroupTableModel) (pool.Group, error) {
	var members []memberRecord
	if err := decodeJSON(row.Members, &members); err != nil {
		return pool.Group{}, crerr.Wrapf(err, "decode members of group %s", row.PublicID)
	}
	var invites []inviteRecord
	if err := decodeJSON(row.PendingInvites, &invites); err != nil {
		return pool.Group{}, crerr.Wrapf(err, "decode pending invites of group %s", row.PublicID)
	}
	var payments []paymentRecord
	if err := decodeJSON(row.Payments, &payments); err != nil {
		return pool.Group{}, crerr.Wrapf(err, "decode payments of group %s", row.PublicID)
	}
	structure, err := decodeStructure(row.Structure)
	if err != nil {
		return pool.Group{}, crerr.Wrapf(err, "decode structure of group %s", row.PublicID)
	}

	g := pool.Group{
		ID:             row.PublicID,
		Name:           row.Name,
		OwnerUserID:    row.OwnerUserID,
		InviteCode:     row.InviteCode,
		Competition:    pool.CompetitionRef{Category: row.CompetitionCategory, ID: row.CompetitionID},
		TotalBetAmount: row.TotalBetAmount,
		Currency:       row.Currency,
		Structure:      structure,
		Version:        row.Version,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
	for _, m := range members {
		g.Members = append(g.Members, pool.Member{UserID: m.UserID, Email: m.Email, Role: pool.MemberRole(m.Role), JoinedAt: m.JoinedAt})
	}
	for _, inv := range invites {
		g.PendingInvites = append(g.PendingInvites, pool.Invite{Email: inv.Email, InvitedBy: inv.InvitedBy, InvitedAt: inv.InvitedAt})
	}
	for _, p := range payments {
		g.Payments = append(g.Payments, pool.UserPayment{
			UserID:        p.UserID,
			PaymentAmount: p.PaymentAmount,
			HasPaid:       p.HasPaid,
			PaymentID:     p.PaymentID,
			PaidDate:      p.PaidDate,
			IsCreator:     p.IsCreator,
		})
	}
	return g, nil
}

func encodeJSON(value any) (string, error) {
	raw, err := sonic.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func decodeJSON(raw []byte, target any) error {
	if len(raw) == 0 {
		return nil
	}
	return sonic.Unmarshal(raw, target)
}
