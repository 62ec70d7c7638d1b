package querybuilder

import (
	"reflect"
	"testing"
)

func assertSQL(t *testing.T, gotQuery string, gotArgs []any, err error, wantQuery string, wantArgs ...any) {
	t.Helper()

	if err != nil {
		t.Fatalf("build query: %v", err)
	}
	if gotQuery != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, gotQuery)
	}
	if len(wantArgs) == 0 && len(gotArgs) == 0 {
		return
	}
	if !reflect.DeepEqual(gotArgs, wantArgs) {
		t.Fatalf("unexpected args: got=%+v want=%+v", gotArgs, wantArgs)
	}
}

func TestSelectBuilder_ForUpdate(t *testing.T) {
	query, args, err := Select("id", "payload", "version").
		From("pool_groups").
		Where(Eq("id", "grp-1")).
		ForUpdate().
		ToSQL()

	assertSQL(t, query, args, err, "SELECT id, payload, version FROM pool_groups WHERE id = $1 FOR UPDATE", "grp-1")
}

func TestSelectBuilder_ForShare(t *testing.T) {
	query, args, err := Select("public_id").
		From("pool_groups").
		Where(Eq("public_id", "grp-1")).
		ForShare().
		ToSQL()

	assertSQL(t, query, args, err, "SELECT public_id FROM pool_groups WHERE public_id = $1 FOR SHARE", "grp-1")
}

func TestSelectBuilder_ExprAndIn(t *testing.T) {
	query, args, err := Select("id").
		From("pool_groups").
		Where(Expr("member_ids @> ?", `["u-1"]`), In("status", []any{"open", "closed"})).
		OrderBy("created_at DESC").
		Limit(20).
		ToSQL()

	assertSQL(t, query, args, err,
		"SELECT id FROM pool_groups WHERE member_ids @> $1 AND status IN ($2, $3) ORDER BY created_at DESC LIMIT 20",
		`["u-1"]`, "open", "closed")
}

func TestSelectBuilder_EmptyInMatchesNothing(t *testing.T) {
	query, args, err := Select("id").From("predictions").Where(In("match_id", nil)).ToSQL()

	assertSQL(t, query, args, err, "SELECT id FROM predictions WHERE 1=0")
}

func TestInsertModel(t *testing.T) {
	type row struct {
		GroupID string `db:"group_id"`
		UserID  string `db:"user_id"`
		Skip    string `db:"-"`
		Score1  int    `db:"score1"`
		hidden  int
	}

	query, args, err := InsertModel("predictions", row{GroupID: "g", UserID: "u", Score1: 2, hidden: 1},
		"ON CONFLICT (group_id, user_id) DO NOTHING")

	assertSQL(t, query, args, err,
		"INSERT INTO predictions (group_id, user_id, score1) VALUES ($1, $2, $3) ON CONFLICT (group_id, user_id) DO NOTHING",
		"g", "u", 2)
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("pool_groups").
		Set("payload", []byte("{}")).
		SetExpr("version", "version + ?", 1).
		Where(Eq("id", "grp-1"), Eq("version", int64(3))).
		ToSQL()

	assertSQL(t, query, args, err,
		"UPDATE pool_groups SET payload = $1, version = version + $2 WHERE id = $3 AND version = $4",
		[]byte("{}"), 1, "grp-1", int64(3))
}

func TestDeleteBuilder_RequiresConditions(t *testing.T) {
	if _, _, err := DeleteFrom("predictions").ToSQL(); err == nil {
		t.Fatalf("expected error for unconditional delete")
	}

	query, args, err := DeleteFrom("predictions").Where(Eq("group_id", "g"), Eq("user_id", "u")).ToSQL()
	assertSQL(t, query, args, err, "DELETE FROM predictions WHERE group_id = $1 AND user_id = $2", "g", "u")
}
