package database

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"os"
	"path"
	"time"

	"invite-share/database/model"
	"invite-share/logger"
	"invite-share/util/common"
	"invite-share/util/nickname"
	"invite-share/util/random"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Store owns the SQLite file holding the config entries and the invite log.
// It is constructed once and handed to every consumer.
type Store struct {
	db    *gorm.DB
	path  string
	debug bool
	src   random.Source
	now   func() time.Time
}

type Option func(*Store)

// WithDebug routes gorm's SQL log to stdout.
func WithDebug(debug bool) Option {
	return func(s *Store) { s.debug = debug }
}

// WithSource sets the randomness used when seeding historical records.
func WithSource(src random.Source) Option {
	return func(s *Store) { s.src = src }
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func Open(dbPath string, opts ...Option) (*Store, error) {
	s := &Store{
		path: dbPath,
		src:  random.Default,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	dir := path.Dir(dbPath)
	if err := os.MkdirAll(dir, fs.ModePerm); err != nil {
		return nil, err
	}

	var gormLogger gormlogger.Interface
	if s.debug {
		gormLogger = gormlogger.Default
	} else {
		gormLogger = gormlogger.Discard
	}

	db, err := gorm.Open(sqlite.Open(dbPath+"?_busy_timeout=5000"), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, storageErr("open", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, storageErr("open", err)
	}
	// 单连接：所有读写按顺序执行，避免 SQLite "database is locked"
	sqlDB.SetMaxOpenConns(1)
	s.db = db

	if err := s.initModels(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	if err := s.db.Transaction(s.seed); err != nil {
		sqlDB.Close()
		return nil, storageErr("seed", err)
	}
	logger.Infof("store opened at %s", dbPath)
	return s, nil
}

func (s *Store) initModels() error {
	return migrate(s.db)
}

func migrate(db *gorm.DB) error {
	models := []any{
		&model.ConfigEntry{},
		&model.Invite{},
	}
	for _, m := range models {
		if err := db.AutoMigrate(m); err != nil {
			logger.Errorf("Error auto migrating model: %v", err)
			return storageErr("migrate", err)
		}
	}
	return nil
}

func isTableEmpty(tx *gorm.DB, m any) (bool, error) {
	var count int64
	err := tx.Model(m).Count(&count).Error
	return count == 0, err
}

// seed writes the default config entries and the historical invites into
// whichever of the two tables is empty.
func (s *Store) seed(tx *gorm.DB) error {
	empty, err := isTableEmpty(tx, &model.ConfigEntry{})
	if err != nil {
		return err
	}
	if empty {
		defaults := map[string]any{
			model.KeyInvitePrice:        model.DefaultInvitePrice,
			model.KeyTodayCount:         model.DefaultTodayCount,
			model.KeyTotalCount:         model.DefaultTotalCount,
			model.KeyInviteCode:         model.DefaultInviteCode,
			model.KeyInviteDisplayCount: model.DefaultInviteDisplayCount,
			model.KeyRefreshRules:       model.DefaultRefreshRules(),
		}
		if err := upsertConfigs(tx, defaults); err != nil {
			return err
		}
	}

	empty, err = isTableEmpty(tx, &model.Invite{})
	if err != nil {
		return err
	}
	if empty {
		invites := seedInvites(s.src, s.now())
		if err := tx.Create(&invites).Error; err != nil {
			return err
		}
	}
	return nil
}

// SeedInviteCount is the number of historical invites written on creation.
const SeedInviteCount = 20

func seedInvites(src random.Source, now time.Time) []model.Invite {
	names := nickname.New(src)
	oneDay := 24 * time.Hour
	invites := make([]model.Invite, 0, SeedInviteCount)
	for i := 0; i < SeedInviteCount; i++ {
		// 时间分布在过去 10 天内（按天取整）
		ts := now.Add(-time.Duration(src.Intn(10)) * oneDay)
		invites = append(invites, model.Invite{
			Name:        names.Seed(),
			Phone:       names.Phone(),
			Timestamp:   ts.UnixMilli(),
			AvatarColor: random.AvatarColor(src),
			Amount:      model.DefaultInvitePrice,
		})
	}
	return invites
}

// DestroyAndReseed drops both tables and recreates them from defaults in one
// transaction; on failure the previous data is left as it was.
func (s *Store) DestroyAndReseed(ctx context.Context) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Migrator().DropTable(&model.Invite{}, &model.ConfigEntry{}); err != nil {
			return err
		}
		if err := migrate(tx); err != nil {
			return err
		}
		return s.seed(tx)
	})
	if err != nil {
		return storageErr("reset", err)
	}
	logger.Info("store destroyed and reseeded")
	return nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) Checkpoint() error {
	// Update WAL
	err := s.db.Exec("PRAGMA wal_checkpoint;").Error
	if err != nil {
		return storageErr("checkpoint", err)
	}
	return nil
}

// Backup checkpoints the WAL and returns the raw database file.
func (s *Store) Backup() ([]byte, error) {
	if err := s.Checkpoint(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, storageErr("backup", err)
	}
	if ok, err := IsSQLiteDB(bytes.NewReader(data)); err != nil || !ok {
		return nil, storageErr("backup", common.NewErrorf("%s is not a sqlite database", s.path))
	}
	return data, nil
}

func IsSQLiteDB(file io.ReaderAt) (bool, error) {
	signature := []byte("SQLite format 3\x00")
	buf := make([]byte, len(signature))
	_, err := file.ReadAt(buf, 0)
	if err != nil {
		return false, err
	}
	return bytes.Equal(buf, signature), nil
}
