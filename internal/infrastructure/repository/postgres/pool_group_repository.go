package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/prediction-pool/internal/domain/pool"
	qb "github.com/riskibarqy/prediction-pool/internal/platform/querybuilder"
)

// GroupRepository stores each pool group as one row whose nested parts
// (members, invites, payments, tournament structure) live in JSONB columns.
type GroupRepository struct {
	db *sqlx.DB
}

func NewGroupRepository(db *sqlx.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

func (r *GroupRepository) Create(ctx context.Context, g pool.Group) error {
	model, err := poolGroupInsertFromDomain(g)
	if err != nil {
		return fmt.Errorf("encode group %s: %w", g.ID, err)
	}
	query, args, err := qb.InsertModel(poolGroupsTable, model, "")
	if err != nil {
		return fmt.Errorf("build create group query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create group %s: duplicate id or invite code: %w", g.ID, err)
		}
		return fmt.Errorf("create group %s: %w", g.ID, err)
	}
	return nil
}

func (r *GroupRepository) GetByID(ctx context.Context, groupID string) (pool.Group, bool, error) {
	return r.getOne(ctx, qb.Eq("public_id", groupID))
}

func (r *GroupRepository) GetByInviteCode(ctx context.Context, inviteCode string) (pool.Group, bool, error) {
	return r.getOne(ctx, qb.Eq("invite_code", inviteCode))
}

func (r *GroupRepository) getOne(ctx context.Context, cond qb.Condition) (pool.Group, bool, error) {
	query, args, err := qb.Select(poolGroupColumns...).
		From(poolGroupsTable).
		Where(cond).
		Limit(1).
		ToSQL()
	if err != nil {
		return pool.Group{}, false, fmt.Errorf("build get group query: %w", err)
	}

	var row poolGroupTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return pool.Group{}, false, nil
		}
		return pool.Group{}, false, fmt.Errorf("get group: %w", err)
	}

	g, err := poolGroupFromRow(row)
	if err != nil {
		return pool.Group{}, false, err
	}
	return g, true, nil
}

func (r *GroupRepository) ListIDs(ctx context.Context) ([]string, error) {
	query, args, err := qb.Select("public_id").
		From(poolGroupsTable).
		OrderBy("public_id ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list group ids query: %w", err)
	}

	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("list group ids: %w", err)
	}
	return ids, nil
}

func (r *GroupRepository) ListByMember(ctx context.Context, userID string) ([]pool.Group, error) {
	filter, err := encodeJSON([]memberFilter{{UserID: userID}})
	if err != nil {
		return nil, fmt.Errorf("encode member filter: %w", err)
	}

	query, args, err := qb.Select(poolGroupColumns...).
		From(poolGroupsTable).
		Where(qb.Expr("members @> ?::jsonb", filter)).
		OrderBy("created_at ASC", "public_id ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list groups by member query: %w", err)
	}

	var rows []poolGroupTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list groups by member user_id=%s: %w", userID, err)
	}

	out := make([]pool.Group, 0, len(rows))
	for _, row := range rows {
		g, err := poolGroupFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

// Update locks the row, applies fn to the decoded aggregate and writes every
// column back in the same transaction, bumping the version.
func (r *GroupRepository) Update(ctx context.Context, groupID string, fn pool.MutateFunc) (pool.Group, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return pool.Group{}, fmt.Errorf("begin tx update group: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	selectQuery, selectArgs, err := qb.Select(poolGroupColumns...).
		From(poolGroupsTable).
		Where(qb.Eq("public_id", groupID)).
		ForUpdate().
		ToSQL()
	if err != nil {
		return pool.Group{}, fmt.Errorf("build lock group query: %w", err)
	}

	var row poolGroupTableModel
	if err := tx.GetContext(ctx, &row, selectQuery, selectArgs...); err != nil {
		if isNotFound(err) {
			return pool.Group{}, fmt.Errorf("%w: %s", pool.ErrGroupNotFound, groupID)
		}
		return pool.Group{}, fmt.Errorf("lock group %s: %w", groupID, err)
	}

	g, err := poolGroupFromRow(row)
	if err != nil {
		return pool.Group{}, err
	}
	if err := fn(&g); err != nil {
		return pool.Group{}, err
	}

	members, pending, payments, structure, err := encodeAggregate(g)
	if err != nil {
		return pool.Group{}, fmt.Errorf("encode group %s: %w", groupID, err)
	}

	updateQuery, updateArgs, err := qb.Update(poolGroupsTable).
		Set("name", g.Name).
		Set("total_bet_amount", g.TotalBetAmount).
		Set("currency", g.Currency).
		Set("members", members).
		Set("pending_invites", pending).
		Set("payments", payments).
		Set("structure", structure).
		Set("updated_at", g.UpdatedAt.UTC()).
		SetExpr("version", "version + 1").
		Where(
			qb.Eq("public_id", groupID),
			qb.Eq("version", row.Version),
		).
		ToSQL()
	if err != nil {
		return pool.Group{}, fmt.Errorf("build update group query: %w", err)
	}

	result, err := tx.ExecContext(ctx, updateQuery, updateArgs...)
	if err != nil {
		return pool.Group{}, fmt.Errorf("update group %s: %w", groupID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return pool.Group{}, fmt.Errorf("rows affected update group: %w", err)
	}
	if affected == 0 {
		return pool.Group{}, fmt.Errorf("%w: %s at version %d", pool.ErrVersionConflict, groupID, row.Version)
	}

	if err := tx.Commit(); err != nil {
		return pool.Group{}, fmt.Errorf("commit update group: %w", err)
	}

	g.Version = row.Version + 1
	return g, nil
}

// Hold takes a share lock on the row for the length of fn. Share locks do not
// conflict with the key-share locks taken by prediction foreign keys, so fn may
// write predictions through another connection.
func (r *GroupRepository) Hold(ctx context.Context, groupID string, fn func(g pool.Group) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx hold group: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query, args, err := qb.Select(poolGroupColumns...).
		From(poolGroupsTable).
		Where(qb.Eq("public_id", groupID)).
		ForShare().
		ToSQL()
	if err != nil {
		return fmt.Errorf("build hold group query: %w", err)
	}

	var row poolGroupTableModel
	if err := tx.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("%w: %s", pool.ErrGroupNotFound, groupID)
		}
		return fmt.Errorf("hold group %s: %w", groupID, err)
	}
	g, err := poolGroupFromRow(row)
	if err != nil {
		return err
	}
	if err := fn(g); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit hold group: %w", err)
	}
	return nil
}
