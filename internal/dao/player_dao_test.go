package dao

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/grand-thief-cash/mlbeval/infra/application/components/gormdb"
	"github.com/grand-thief-cash/mlbeval/internal/migrate"
	"github.com/grand-thief-cash/mlbeval/internal/model"
)

var (
	str = model.Str
	f   = model.Float
)

func newTestDao(t *testing.T) (PlayerDao, *gorm.DB) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "players.db")
	mm, err := migrate.NewMigrationManager("sqlite3://" + path)
	require.NoError(t, err)
	require.NoError(t, mm.Up())
	require.NoError(t, mm.Close())

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Discard, TranslateError: true})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	d := NewPlayerDaoWithDB(db, gormdb.DialectSQLite)
	require.NoError(t, d.Start(context.Background()))
	return d, db
}

func fullPlayer() *model.Player {
	return &model.Player{
		Name: str("Shohei Ohtani"), Team: str("LAD"), Status: str("Signed"), Year: f(2025),
		WAR: f(8.1), BaseValue: f(72.9), ContractValue: f(70), SurplusValue: f(2.9),
		AgeBat: f(30), AgePit: f(30), BBPctBat: f(0.11), BBPctPit: f(0.08), KPctBat: f(0.22), KPctPit: f(0.3),
		AVG: f(0.29), OBP: f(0.38), SLG: f(0.62), WOBA: f(0.41), WRCPlus: f(170), EV: f(95.2),
		Off: f(55.1), BsR: f(4.2), DefValue: f(-12.4),
		FIP: f(3.1), SIERA: f(3.2), GBPct: f(0.44), FBPct: f(0.33), StuffPlus: f(118),
		LocationPlus: f(101), PitchingPlus: f(108), FBV: f(97.3),
	}
}

func TestRoundTripAllFields(t *testing.T) {
	d, _ := newTestDao(t)
	ctx := context.Background()
	p := fullPlayer()
	require.NoError(t, d.Create(ctx, p))
	require.NotZero(t, p.ID)

	got, err := d.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, got)
	assert.Equal(t, "Two-Way", got.Position())
}

func TestDistinctIDsAndNameOnly(t *testing.T) {
	d, _ := newTestDao(t)
	ctx := context.Background()
	a := &model.Player{Name: str("  Aaron Judge ")}
	b := &model.Player{Name: str("Juan Soto")}
	require.NoError(t, d.Create(ctx, a))
	require.NoError(t, d.Create(ctx, b))
	assert.NotEqual(t, a.ID, b.ID)

	got, err := d.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, &model.Player{ID: a.ID, Name: str("Aaron Judge")}, got)
}

func TestCreateRejectsPresetID(t *testing.T) {
	d, _ := newTestDao(t)
	assert.ErrorIs(t, d.Create(context.Background(), &model.Player{ID: 9}), ErrIDPreset)
}

func TestSaveUpsertsOnID(t *testing.T) {
	d, db := newTestDao(t)
	ctx := context.Background()
	p := &model.Player{Name: str("Bobby Witt Jr."), WAR: f(6)}
	require.NoError(t, d.Save(ctx, p))
	require.NotZero(t, p.ID)

	p.WAR = f(9.4)
	p.Team = str("KC")
	require.NoError(t, d.Save(ctx, p))

	var n int64
	require.NoError(t, db.Model(&model.Player{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
	got, err := d.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 9.4, *got.WAR)
	assert.Equal(t, "KC", *got.Team)

	explicit := &model.Player{ID: 100, Name: str("Gunnar Henderson")}
	require.NoError(t, d.Save(ctx, explicit))
	next := &model.Player{Name: str("Corbin Carroll")}
	require.NoError(t, d.Create(ctx, next))
	assert.Greater(t, next.ID, int64(100))
}

func TestReplace(t *testing.T) {
	d, _ := newTestDao(t)
	ctx := context.Background()
	assert.ErrorIs(t, d.Replace(ctx, &model.Player{ID: 42, Name: str("x")}), gorm.ErrRecordNotFound)

	p := fullPlayer()
	require.NoError(t, d.Create(ctx, p))
	require.NoError(t, d.Replace(ctx, &model.Player{ID: p.ID, Name: str("Shohei Ohtani"), WAR: f(1)}))
	got, err := d.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1.0, *got.WAR)
	assert.Nil(t, got.Team)
	assert.Nil(t, got.FIP)
}

func TestUpdate(t *testing.T) {
	d, _ := newTestDao(t)
	ctx := context.Background()
	p := fullPlayer()
	require.NoError(t, d.Create(ctx, p))

	require.NoError(t, d.Update(ctx, p.ID, map[string]any{"team": " NYY ", "fip": nil, "war": 5.5}))
	got, err := d.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "NYY", *got.Team)
	assert.Nil(t, got.FIP)
	assert.Equal(t, 5.5, *got.WAR)
	assert.Equal(t, 0.29, *got.AVG)

	assert.ErrorIs(t, d.Update(ctx, p.ID, map[string]any{"id": 7}), ErrUnknownColumn)
	assert.ErrorIs(t, d.Update(ctx, p.ID, map[string]any{"nickname": "x"}), ErrUnknownColumn)
	assert.ErrorIs(t, d.Update(ctx, p.ID+1000, map[string]any{"war": 1.0}), gorm.ErrRecordNotFound)
	assert.ErrorIs(t, d.Update(ctx, p.ID+1000, nil), gorm.ErrRecordNotFound)
	assert.NoError(t, d.Update(ctx, p.ID, nil))
}

func TestDelete(t *testing.T) {
	d, _ := newTestDao(t)
	ctx := context.Background()
	p := &model.Player{Name: str("Julio Rodriguez")}
	require.NoError(t, d.Create(ctx, p))
	require.NoError(t, d.Delete(ctx, p.ID))
	assert.ErrorIs(t, d.Delete(ctx, p.ID), gorm.ErrRecordNotFound)
	_, err := d.Get(ctx, p.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func seed(t *testing.T, d PlayerDao) {
	t.Helper()
	rows := []*model.Player{
		{Name: str("Aaron Judge"), Team: str("NYY"), Year: f(2025), WAR: f(10.1), SurplusValue: f(40), AVG: f(0.32)},
		{Name: str("Aaron Judge"), Team: str("NYY"), Year: f(2026), WAR: f(8.2), SurplusValue: f(25), AVG: f(0.3)},
		{Name: str("Gerrit Cole"), Team: str("NYY"), Year: f(2025), WAR: nil, SurplusValue: f(-5), FIP: f(3.4)},
		{Name: str("Shohei Ohtani"), Team: str("LAD"), Year: f(2025), WAR: f(9), SurplusValue: nil, OBP: f(0.39), FIP: f(3.0)},
		{Name: str("Mookie Betts"), Team: str("lad"), Year: f(2025), WAR: f(5), SurplusValue: f(10), DefValue: f(3)},
	}
	_, err := d.BatchUpsert(context.Background(), rows, 2)
	require.NoError(t, err)
}

func names(list []*model.Player) []string {
	out := make([]string, len(list))
	for i, p := range list {
		out[i] = model.DerefStr(p.Name)
	}
	return out
}

func TestListFiltered(t *testing.T) {
	d, _ := newTestDao(t)
	seed(t, d)
	ctx := context.Background()

	list, err := d.ListFiltered(ctx, model.PlayerFilters{}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Aaron Judge", "Aaron Judge", "Gerrit Cole", "Mookie Betts", "Shohei Ohtani"}, names(list))
	assert.Equal(t, 2025.0, *list[0].Year)

	list, err = d.ListFiltered(ctx, model.PlayerFilters{Team: "Lad"}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Mookie Betts", "Shohei Ohtani"}, names(list))

	list, err = d.ListFiltered(ctx, model.PlayerFilters{SortBy: "war"}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Aaron Judge", "Shohei Ohtani", "Aaron Judge", "Mookie Betts", "Gerrit Cole"}, names(list))

	list, err = d.ListFiltered(ctx, model.PlayerFilters{SortBy: "value", Year: f(2025)}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Aaron Judge", "Mookie Betts", "Gerrit Cole", "Shohei Ohtani"}, names(list))

	list, err = d.ListFiltered(ctx, model.PlayerFilters{Search: "OHT"}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Shohei Ohtani"}, names(list))

	list, err = d.ListFiltered(ctx, model.PlayerFilters{Position: "pitcher"}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Gerrit Cole", "Shohei Ohtani"}, names(list))

	list, err = d.ListFiltered(ctx, model.PlayerFilters{Position: "Two-Way"}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Shohei Ohtani"}, names(list))

	n, err := d.CountFiltered(ctx, model.PlayerFilters{Position: "hitter"})
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	list, err = d.ListFiltered(ctx, model.PlayerFilters{}, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Aaron Judge", "Gerrit Cole"}, names(list))

	list, err = d.ListFiltered(ctx, model.PlayerFilters{IDs: []int64{list[0].ID}}, 0, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = d.ListFiltered(ctx, model.PlayerFilters{Position: "catcher"}, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidFilter)
	_, err = d.CountFiltered(ctx, model.PlayerFilters{Position: "catcher"})
	assert.ErrorIs(t, err, ErrInvalidFilter)
	_, err = d.ListFiltered(ctx, model.PlayerFilters{SortBy: "age"}, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidFilter)
}

func TestListByName(t *testing.T) {
	d, _ := newTestDao(t)
	seed(t, d)
	ctx := context.Background()

	list, err := d.ListByName(ctx, " aaron JUDGE ")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 2025.0, *list[0].Year)
	assert.Equal(t, 2026.0, *list[1].Year)

	list, err = d.ListByNames(ctx, []string{"gerrit cole", "Mookie Betts", "Nobody"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Gerrit Cole", "Mookie Betts"}, names(list))

	list, err = d.ListByNames(ctx, []string{" "})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestBatchUpsert(t *testing.T) {
	d, db := newTestDao(t)
	ctx := context.Background()
	first := []*model.Player{{Name: str("A")}, {Name: str("B")}, {Name: str("C")}}
	n, err := d.BatchUpsert(ctx, first, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	for _, p := range first {
		assert.NotZero(t, p.ID)
	}

	second := []*model.Player{
		{ID: first[0].ID, Name: str("A"), WAR: f(1)},
		{ID: first[2].ID, Name: str("C"), WAR: f(3)},
		{ID: 500, Name: str("E")},
		{Name: str("D")},
		nil,
	}
	n, err = d.BatchUpsert(ctx, second, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	var total int64
	require.NoError(t, db.Model(&model.Player{}).Count(&total).Error)
	assert.Equal(t, int64(5), total)
	got, err := d.Get(ctx, first[2].ID)
	require.NoError(t, err)
	assert.Equal(t, 3.0, *got.WAR)

	n, err = d.BatchUpsert(ctx, nil, 0)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestIDsNeverReusedAfterDeletingMax(t *testing.T) {
	d, _ := newTestDao(t)
	assertIDsNeverReused(t, d)
}

// assertIDsNeverReused: 建 1 2 3, 删掉最大的, 显式 Save 一个旧 id, 新建记录必须拿到从未发出过的 id
func assertIDsNeverReused(t *testing.T, d PlayerDao) {
	t.Helper()
	ctx := context.Background()
	var ids []int64
	for _, n := range []string{"A", "B", "C"} {
		p := &model.Player{Name: str(n)}
		require.NoError(t, d.Create(ctx, p))
		ids = append(ids, p.ID)
	}
	require.NoError(t, d.Delete(ctx, ids[2]))
	require.NoError(t, d.Save(ctx, &model.Player{ID: ids[1], Name: str("B2")}))

	next := &model.Player{Name: str("D")}
	require.NoError(t, d.Create(ctx, next))
	assert.Greater(t, next.ID, ids[2])

	require.NoError(t, d.Delete(ctx, next.ID))
	_, err := d.BatchUpsert(ctx, []*model.Player{{ID: ids[0], Name: str("A2")}}, 10)
	require.NoError(t, err)
	last := &model.Player{Name: str("E")}
	require.NoError(t, d.Create(ctx, last))
	assert.Greater(t, last.ID, next.ID)
}

// 需要 MLBEVAL_TEST_POSTGRES_URL (postgres://...), 会清空 players 表
func TestPostgresIDsNeverReused(t *testing.T) {
	url := os.Getenv("MLBEVAL_TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("MLBEVAL_TEST_POSTGRES_URL not set")
	}
	mm, err := migrate.NewMigrationManager(url)
	require.NoError(t, err)
	require.NoError(t, mm.Up())
	require.NoError(t, mm.Close())

	db, err := gorm.Open(postgres.Open(url), &gorm.Config{Logger: logger.Discard, TranslateError: true})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	require.NoError(t, db.Exec("TRUNCATE players RESTART IDENTITY").Error)
	d := NewPlayerDaoWithDB(db, gormdb.DialectPostgres)
	require.NoError(t, d.Start(context.Background()))
	assertIDsNeverReused(t, d)
}

func TestPostgresResyncNeverMovesBackwards(t *testing.T) {
	assert.Contains(t, pgResyncSequenceSQL, "GREATEST(")
	assert.Contains(t, pgResyncSequenceSQL, "pg_sequence_last_value")
	assert.NotContains(t, pgResyncSequenceSQL, "+ 1")
}

func TestSearchMatchesWildcardsLiterally(t *testing.T) {
	d, _ := newTestDao(t)
	ctx := context.Background()
	for _, n := range []string{"100% Pure", "A_B", "AxB", "Bang!"} {
		require.NoError(t, d.Create(ctx, &model.Player{Name: str(n)}))
	}
	cases := map[string][]string{
		"%":   {"100% Pure"},
		"_":   {"A_B"},
		"a_b": {"A_B"},
		"!":   {"Bang!"},
		"ab":  nil,
	}
	for search, want := range cases {
		list, err := d.ListFiltered(ctx, model.PlayerFilters{Search: search}, 0, 0)
		require.NoError(t, err, search)
		if want == nil {
			assert.Empty(t, list, search)
			continue
		}
		assert.Equal(t, want, names(list), search)
	}
}

func TestSeasonOrderIsStableAcrossCaseAndNullYear(t *testing.T) {
	d, _ := newTestDao(t)
	ctx := context.Background()
	for _, p := range []*model.Player{
		{Name: str("Mike Trout"), Year: f(2025)},
		{Name: str("mike trout"), Year: f(2023)},
		{Name: str("MIKE TROUT")},
		{Name: str("Aaron Judge"), Year: f(2024)},
	} {
		require.NoError(t, d.Create(ctx, p))
	}
	years := func(list []*model.Player) []any {
		var out []any
		for _, p := range list {
			if p.Year == nil {
				out = append(out, nil)
			} else {
				out = append(out, *p.Year)
			}
		}
		return out
	}

	list, err := d.ListByNames(ctx, []string{"mike trout", "aaron judge"})
	require.NoError(t, err)
	assert.Equal(t, []any{2024.0, nil, 2023.0, 2025.0}, years(list))

	list, err = d.ListByName(ctx, "Mike Trout")
	require.NoError(t, err)
	assert.Equal(t, []any{nil, 2023.0, 2025.0}, years(list))
}
