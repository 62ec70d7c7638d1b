package postgres

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/prediction-pool/internal/domain/pool"
	"github.com/riskibarqy/prediction-pool/internal/domain/tournament"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := sqlx.NewDb(mockDB, "sqlmock")
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func sampleGroup(t *testing.T) pool.Group {
	t.Helper()
	structure, err := tournament.Build([]tournament.Team{
		{ID: "bra", Name: "Brazil"},
		{ID: "arg", Name: "Argentina"},
		{ID: "fra", Name: "France"},
		{ID: "ger", Name: "Germany"},
	}, tournament.DefaultBuildConfig())
	require.NoError(t, err)
	require.NoError(t, structure.RecordResult("group-A-match-1", tournament.Result{Score1: 2, Score2: 1}))

	createdAt := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	paidAt := createdAt.Add(time.Hour)
	return pool.Group{
		ID:             "grp-1",
		Name:           "Office pool",
		OwnerUserID:    "alice",
		InviteCode:     "ABCD2345",
		Competition:    pool.CompetitionRef{Category: "football", ID: "fifa-world-cup-2026"},
		TotalBetAmount: 10000,
		Currency:       "USD",
		Members: []pool.Member{
			{UserID: "alice", Email: "alice@example.com", Role: pool.MemberRoleOwner, JoinedAt: createdAt},
			{UserID: "bob", Email: "bob@example.com", Role: pool.MemberRoleMember, JoinedAt: createdAt},
		},
		PendingInvites: []pool.Invite{{Email: "cara@example.com", InvitedBy: "alice", InvitedAt: createdAt}},
		Payments: []pool.UserPayment{
			{UserID: "alice", PaymentAmount: 3333, HasPaid: true, PaymentID: "pay-1", PaidDate: &paidAt, IsCreator: true},
			{UserID: "bob", PaymentAmount: 3333},
		},
		Structure: structure,
		Version:   4,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func groupRow(t *testing.T, g pool.Group) []driver.Value {
	t.Helper()
	model, err := poolGroupInsertFromDomain(g)
	require.NoError(t, err)
	return []driver.Value{
		model.PublicID,
		model.Name,
		model.OwnerUserID,
		model.InviteCode,
		model.CompetitionCategory,
		model.CompetitionID,
		model.TotalBetAmount,
		model.Currency,
		[]byte(model.Members),
		[]byte(model.PendingInvites),
		[]byte(model.Payments),
		[]byte(model.Structure),
		g.Version,
		model.CreatedAt,
		model.UpdatedAt,
	}
}

func TestPoolGroupCodec_RoundTripKeepsStageVariants(t *testing.T) {
	g := sampleGroup(t)
	row := groupRow(t, g)

	decoded, err := poolGroupFromRow(poolGroupTableModel{
		PublicID:            g.ID,
		Name:                g.Name,
		OwnerUserID:         g.OwnerUserID,
		InviteCode:          g.InviteCode,
		CompetitionCategory: g.Competition.Category,
		CompetitionID:       g.Competition.ID,
		TotalBetAmount:      g.TotalBetAmount,
		Currency:            g.Currency,
		Members:             row[8].([]byte),
		PendingInvites:      row[9].([]byte),
		Payments:            row[10].([]byte),
		Structure:           row[11].([]byte),
		Version:             g.Version,
		CreatedAt:           g.CreatedAt,
		UpdatedAt:           g.UpdatedAt,
	})
	require.NoError(t, err)

	assert.Equal(t, g.Members, decoded.Members)
	assert.Equal(t, g.PendingInvites, decoded.PendingInvites)
	require.Len(t, decoded.Payments, 2)
	require.NotNil(t, decoded.Payments[0].PaidDate)
	assert.True(t, decoded.Payments[0].PaidDate.Equal(*g.Payments[0].PaidDate))

	require.NotNil(t, decoded.Structure)
	require.NoError(t, decoded.Structure.Validate())
	require.Len(t, decoded.Structure.Stages, len(g.Structure.Stages))
	assert.Equal(t, tournament.StageTypeGroups, decoded.Structure.Stages[0].Type)
	assert.NotEmpty(t, decoded.Structure.Stages[0].Groups())
	assert.Nil(t, decoded.Structure.Stages[0].Matches())
	assert.NotEmpty(t, decoded.Structure.Stages[1].Matches())

	m, _, _, ok := decoded.Structure.FindMatch("group-A-match-1")
	require.True(t, ok)
	assert.True(t, m.IsPlayed)
	assert.Equal(t, 2, *m.Score1)
	assert.Equal(t, g.Structure.Stages[0].Groups()[0].Standings, decoded.Structure.Stages[0].Groups()[0].Standings)
}

func TestDecodeStructure_RejectsUnknownStageType(t *testing.T) {
	_, err := decodeStructure([]byte(`{"format":"groups-knockout","stages":[{"id":"x","type":"swiss"}]}`))
	require.Error(t, err)

	s, err := decodeStructure([]byte("null"))
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestGroupRepository_GetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGroupRepository(db)
	g := sampleGroup(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM pool_groups WHERE public_id = $1 LIMIT 1`)).
		WithArgs("grp-1").
		WillReturnRows(sqlmock.NewRows(poolGroupColumns).AddRow(groupRow(t, g)...))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM pool_groups WHERE public_id = $1 LIMIT 1`)).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	got, ok, err := repo.GetByID(t.Context(), "grp-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(4), got.Version)
	assert.Equal(t, "fifa-world-cup-2026", got.Competition.ID)

	_, ok, err = repo.GetByID(t.Context(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupRepository_ListByMember_UsesContainment(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGroupRepository(db)
	g := sampleGroup(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM pool_groups WHERE members @> $1::jsonb ORDER BY created_at ASC, public_id ASC`)).
		WithArgs(`[{"user_id":"bob"}]`).
		WillReturnRows(sqlmock.NewRows(poolGroupColumns).AddRow(groupRow(t, g)...))

	groups, err := repo.ListByMember(t.Context(), "bob")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "grp-1", groups[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupRepository_Update_LocksAndBumpsVersion(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGroupRepository(db)
	g := sampleGroup(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM pool_groups WHERE public_id = $1 FOR UPDATE`)).
		WithArgs("grp-1").
		WillReturnRows(sqlmock.NewRows(poolGroupColumns).AddRow(groupRow(t, g)...))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE pool_groups SET name = $1, total_bet_amount = $2`)).
		WithArgs("Office pool", int64(20000), "USD", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), "grp-1", int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	updated, err := repo.Update(t.Context(), "grp-1", func(g *pool.Group) error {
		g.TotalBetAmount = 20000
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), updated.Version)
	assert.Equal(t, int64(20000), updated.TotalBetAmount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupRepository_Update_Failures(t *testing.T) {
	t.Run("missing group", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewGroupRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).WithArgs("nope").WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		_, err := repo.Update(t.Context(), "nope", func(*pool.Group) error { return nil })
		assert.ErrorIs(t, err, pool.ErrGroupNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("mutation rejected", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewGroupRepository(db)
		g := sampleGroup(t)
		rejected := errors.New("member has already paid")

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).WithArgs("grp-1").
			WillReturnRows(sqlmock.NewRows(poolGroupColumns).AddRow(groupRow(t, g)...))
		mock.ExpectRollback()

		_, err := repo.Update(t.Context(), "grp-1", func(*pool.Group) error { return rejected })
		assert.ErrorIs(t, err, rejected)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("version moved", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewGroupRepository(db)
		g := sampleGroup(t)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).WithArgs("grp-1").
			WillReturnRows(sqlmock.NewRows(poolGroupColumns).AddRow(groupRow(t, g)...))
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE pool_groups`)).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		_, err := repo.Update(t.Context(), "grp-1", func(*pool.Group) error { return nil })
		assert.ErrorIs(t, err, pool.ErrVersionConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGroupRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGroupRepository(db)
	g := sampleGroup(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO pool_groups (public_id, name, owner_user_id, invite_code`)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Create(t.Context(), g))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupRepository_Hold_SharesRowLock(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGroupRepository(db)
	g := sampleGroup(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM pool_groups WHERE public_id = $1 FOR SHARE`)).
		WithArgs("grp-1").
		WillReturnRows(sqlmock.NewRows(poolGroupColumns).AddRow(groupRow(t, g)...))
	mock.ExpectCommit()

	var seen pool.Group
	require.NoError(t, repo.Hold(t.Context(), "grp-1", func(g pool.Group) error {
		seen = g
		return nil
	}))
	assert.Equal(t, "grp-1", seen.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupRepository_Hold_Failures(t *testing.T) {
	t.Run("missing group", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewGroupRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`FOR SHARE`)).WithArgs("nope").WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		err := repo.Hold(t.Context(), "nope", func(pool.Group) error { return nil })
		assert.ErrorIs(t, err, pool.ErrGroupNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("callback rejected", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewGroupRepository(db)
		g := sampleGroup(t)
		rejected := errors.New("match already played")

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`FOR SHARE`)).WithArgs("grp-1").
			WillReturnRows(sqlmock.NewRows(poolGroupColumns).AddRow(groupRow(t, g)...))
		mock.ExpectRollback()

		err := repo.Hold(t.Context(), "grp-1", func(pool.Group) error { return rejected })
		assert.ErrorIs(t, err, rejected)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
