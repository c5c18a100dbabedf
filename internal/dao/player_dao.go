package dao

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/grand-thief-cash/mlbeval/infra/application/components/gormdb"
	"github.com/grand-thief-cash/mlbeval/infra/application/core"
	"github.com/grand-thief-cash/mlbeval/internal/consts"
	"github.com/grand-thief-cash/mlbeval/internal/model"
)

var (
	ErrIDPreset      = errors.New("player id is assigned by storage")
	ErrUnknownColumn = errors.New("unknown player column")
	ErrInvalidFilter = errors.New("invalid player filter")
)

type PlayerDao interface {
	core.Component
	Create(ctx context.Context, p *model.Player) error
	Get(ctx context.Context, id int64) (*model.Player, error)
	Save(ctx context.Context, p *model.Player) error
	Replace(ctx context.Context, p *model.Player) error
	Update(ctx context.Context, id int64, fields map[string]any) error
	Delete(ctx context.Context, id int64) error
	ListFiltered(ctx context.Context, f model.PlayerFilters, limit, offset int) ([]*model.Player, error)
	CountFiltered(ctx context.Context, f model.PlayerFilters) (int64, error)
	ListByName(ctx context.Context, name string) ([]*model.Player, error)
	ListByNames(ctx context.Context, names []string) ([]*model.Player, error)
	BatchUpsert(ctx context.Context, list []*model.Player, chunkSize int) (int64, error)
}

type playerDaoImpl struct {
	*core.BaseComponent
	GormComp *gormdb.GormComponent `infra:"dep:gorm"`

	dsName  string
	db      *gorm.DB
	dialect string
}

func NewPlayerDao(dsName string) PlayerDao {
	return &playerDaoImpl{
		BaseComponent: core.NewBaseComponent(consts.COMP_DAO_PLAYER),
		dsName:        dsName,
	}
}

// NewPlayerDaoWithDB 直接绑定已打开的连接, 不经过容器
func NewPlayerDaoWithDB(db *gorm.DB, dialect string) PlayerDao {
	return &playerDaoImpl{
		BaseComponent: core.NewBaseComponent(consts.COMP_DAO_PLAYER),
		db:            db,
		dialect:       dialect,
	}
}

func (d *playerDaoImpl) Start(ctx context.Context) error {
	if err := d.BaseComponent.Start(ctx); err != nil {
		return err
	}
	if d.db != nil {
		return nil
	}
	if d.GormComp == nil {
		return fmt.Errorf("%s: gorm component not injected", d.Name())
	}
	db, err := d.GormComp.GetDB(d.dsName)
	if err != nil {
		return err
	}
	d.db = db
	d.dialect = d.GormComp.Dialect(d.dsName)
	return nil
}

func (d *playerDaoImpl) Create(ctx context.Context, p *model.Player) error {
	if p.ID != 0 {
		return ErrIDPreset
	}
	normalizePlayer(p)
	return d.db.WithContext(ctx).Create(p).Error
}

func (d *playerDaoImpl) Get(ctx context.Context, id int64) (*model.Player, error) {
	var p model.Player
	if err := d.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// Save 按 id upsert, id 为 0 时等同 Create
func (d *playerDaoImpl) Save(ctx context.Context, p *model.Player) error {
	if p.ID == 0 {
		return d.Create(ctx, p)
	}
	normalizePlayer(p)
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(upsertOnID()).Create(p).Error; err != nil {
			return err
		}
		return d.resyncSequence(tx)
	})
}

// Replace 覆盖全部列 (包括 nil), 记录不存在返回 ErrRecordNotFound
func (d *playerDaoImpl) Replace(ctx context.Context, p *model.Player) error {
	if p.ID == 0 {
		return gorm.ErrRecordNotFound
	}
	normalizePlayer(p)
	res := d.db.WithContext(ctx).Model(p).Select("*").Omit("id").Updates(p)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (d *playerDaoImpl) Update(ctx context.Context, id int64, fields map[string]any) error {
	if len(fields) == 0 {
		_, err := d.Get(ctx, id)
		return err
	}
	updates := make(map[string]any, len(fields))
	for k, v := range fields {
		if !model.IsPatchable(k) {
			return fmt.Errorf("%w: %s", ErrUnknownColumn, k)
		}
		updates[k] = trimValue(v)
	}
	res := d.db.WithContext(ctx).Model(&model.Player{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (d *playerDaoImpl) Delete(ctx context.Context, id int64) error {
	res := d.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Player{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (d *playerDaoImpl) ListFiltered(ctx context.Context, f model.PlayerFilters, limit, offset int) ([]*model.Player, error) {
	q, err := applyFilters(d.db.WithContext(ctx).Model(&model.Player{}), f)
	if err != nil {
		return nil, err
	}
	q, err = applyOrder(q, f.SortBy)
	if err != nil {
		return nil, err
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	var list []*model.Player
	if err := q.Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (d *playerDaoImpl) CountFiltered(ctx context.Context, f model.PlayerFilters) (int64, error) {
	q, err := applyFilters(d.db.WithContext(ctx).Model(&model.Player{}), f)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (d *playerDaoImpl) ListByName(ctx context.Context, name string) ([]*model.Player, error) {
	var list []*model.Player
	q := d.db.WithContext(ctx).Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name)))
	err := orderSeasons(q).Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (d *playerDaoImpl) ListByNames(ctx context.Context, names []string) ([]*model.Player, error) {
	lowered := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.ToLower(strings.TrimSpace(n)); n != "" {
			lowered = append(lowered, n)
		}
	}
	if len(lowered) == 0 {
		return nil, nil
	}
	var list []*model.Player
	// 分组键与匹配一致用 LOWER(name), 大小写不同的同名记录按赛季顺序排在一起
	q := d.db.WithContext(ctx).Where("LOWER(name) IN ?", lowered).Order("LOWER(name) ASC")
	err := orderSeasons(q).Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

// BatchUpsert 新记录走批量 insert, 带 id 的记录按 chunk 做 upsert, 全部在一个事务里
func (d *playerDaoImpl) BatchUpsert(ctx context.Context, list []*model.Player, chunkSize int) (int64, error) {
	if len(list) == 0 {
		return 0, nil
	}
	if chunkSize <= 0 {
		chunkSize = consts.DEFAULT_CHUNK_SIZE
	}
	var fresh, keyed []*model.Player
	for _, p := range list {
		if p == nil {
			continue
		}
		normalizePlayer(p)
		if p.ID == 0 {
			fresh = append(fresh, p)
		} else {
			keyed = append(keyed, p)
		}
	}
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(fresh) > 0 {
			if err := tx.CreateInBatches(fresh, chunkSize).Error; err != nil {
				return err
			}
		}
		for start := 0; start < len(keyed); start += chunkSize {
			end := min(start+chunkSize, len(keyed))
			if err := tx.Clauses(upsertOnID()).Create(keyed[start:end]).Error; err != nil {
				return err
			}
		}
		if len(keyed) > 0 {
			return d.resyncSequence(tx)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int64(len(fresh) + len(keyed)), nil
}

func upsertOnID() clause.OnConflict {
	return clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}
}

// pgResyncSequenceSQL 把序列推到 max(当前表内最大 id, 序列已发出的值), 只前进不后退,
// 删除过的 id 不会被再次分配
const pgResyncSequenceSQL = `SELECT setval(s.seq::regclass, GREATEST(
	(SELECT COALESCE(MAX(id), 0) FROM players),
	COALESCE(pg_sequence_last_value(s.seq::regclass), 0),
	1), true)
FROM (SELECT pg_get_serial_sequence('players', 'id') AS seq) s`

// resyncSequence 显式写入 id 后 postgres 序列不会前移, 需要手动推进
func (d *playerDaoImpl) resyncSequence(tx *gorm.DB) error {
	if d.dialect != gormdb.DialectPostgres {
		return nil
	}
	return tx.Exec(pgResyncSequenceSQL).Error
}
