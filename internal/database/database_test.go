package database

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"nestaway/internal/config"
	"nestaway/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigurePool(t *testing.T) {
	db, err := Open(&config.Config{DBDriver: "sqlite", DBSQLitePath: "file:pool?mode=memory&cache=shared"})
	require.NoError(t, err)

	require.NoError(t, configurePool(db, &config.Config{
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           5,
		DBConnMaxLifetimeMinutes: 15,
	}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 10, sqlDB.Stats().MaxOpenConnections)
}

func TestOpen_RejectsDocumentDriver(t *testing.T) {
	_, err := Open(&config.Config{DBDriver: "mongo"})
	require.Error(t, err)
}

func TestApplySchema_SQLiteAutoMigrates(t *testing.T) {
	cfg := &config.Config{DBDriver: "sqlite", DBSQLitePath: "file:schema?mode=memory&cache=shared", Env: "test"}
	db, err := Open(cfg)
	require.NoError(t, err)

	require.NoError(t, ApplySchema(context.Background(), db, cfg))
	for _, m := range PersistentModels() {
		assert.True(t, db.Migrator().HasTable(m), "%T table missing", m)
	}

	host := &models.User{FirstName: "H", LastName: "Ost", Email: "HOST@x.com", Password: "hash", Verified: true}
	require.NoError(t, db.Create(host).Error)
	assert.Equal(t, "host@x.com", host.Email)
}

func TestSchemaPolicy(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		runSQL  bool
		runAuto bool
		wantErr bool
	}{
		{"hybrid dev", config.Config{DBDriver: "postgres", DBSchemaMode: "hybrid", Env: "development"}, true, true, false},
		{"hybrid prod", config.Config{DBDriver: "postgres", DBSchemaMode: "hybrid", Env: "production"}, true, false, false},
		{"empty defaults to hybrid", config.Config{DBDriver: "postgres", Env: "staging"}, true, false, false},
		{"sql only", config.Config{DBDriver: "postgres", DBSchemaMode: "sql", Env: "development"}, true, false, false},
		{"auto dev", config.Config{DBDriver: "postgres", DBSchemaMode: "auto", Env: "development"}, false, true, false},
		{"auto prod refused", config.Config{DBDriver: "postgres", DBSchemaMode: "auto", Env: "prod"}, false, false, true},
		{"sqlite forces auto", config.Config{DBDriver: "sqlite", DBSchemaMode: "sql", Env: "test"}, false, true, false},
		{"unknown mode", config.Config{DBDriver: "postgres", DBSchemaMode: "yolo"}, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runSQL, runAuto, err := schemaPolicy(&tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.runSQL, runSQL)
			assert.Equal(t, tt.runAuto, runAuto)
		})
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	ms := GetMigrations()
	require.NotEmpty(t, ms)
	for i, m := range ms {
		assert.Equal(t, i+1, m.Version)
		assert.NotEmpty(t, m.UpScript)
		assert.NotEmpty(t, m.DownScript)
	}
	assert.Equal(t, "000001_create_users", GetMigrationByVersion(1).String())
	assert.Nil(t, GetMigrationByVersion(999))
}

func TestLoadMigrations(t *testing.T) {
	t.Run("sorted pairs", func(t *testing.T) {
		fsys := fstest.MapFS{
			"m/000002_b.up.sql":   {Data: []byte("B")},
			"m/000002_b.down.sql": {Data: []byte("-B")},
			"m/000001_a.up.sql":   {Data: []byte("A")},
			"m/000001_a.down.sql": {Data: []byte("-A")},
			"m/README.md":         {Data: []byte("ignored")},
		}
		ms, err := LoadMigrations(fsys, "m")
		require.NoError(t, err)
		require.Len(t, ms, 2)
		assert.Equal(t, "a", ms[0].Name)
		assert.Equal(t, "-B", ms[1].DownScript)
	})

	t.Run("missing down script", func(t *testing.T) {
		fsys := fstest.MapFS{"m/000001_a.up.sql": {Data: []byte("A")}}
		_, err := LoadMigrations(fsys, "m")
		require.Error(t, err)
	})

	t.Run("duplicate version", func(t *testing.T) {
		fsys := fstest.MapFS{
			"m/000001_a.up.sql":   {Data: []byte("A")},
			"m/000001_a.down.sql": {Data: []byte("-A")},
			"m/000001_b.up.sql":   {Data: []byte("B")},
			"m/000001_b.down.sql": {Data: []byte("-B")},
		}
		_, err := LoadMigrations(fsys, "m")
		require.Error(t, err)
	})

	t.Run("bad version", func(t *testing.T) {
		fsys := fstest.MapFS{
			"m/first_a.up.sql":   {Data: []byte("A")},
			"m/first_a.down.sql": {Data: []byte("-A")},
		}
		_, err := LoadMigrations(fsys, "m")
		require.Error(t, err)
	})
}

type stubMigrationStore struct {
	applied  []int
	getErr   error
	applyErr error
	reverted []int
}

func (s *stubMigrationStore) GetAppliedMigrations(context.Context) ([]int, error) {
	return s.applied, s.getErr
}

func (s *stubMigrationStore) ApplyMigration(_ context.Context, m Migration) error {
	if s.applyErr != nil {
		return s.applyErr
	}
	s.applied = append(s.applied, m.Version)
	return nil
}

func (s *stubMigrationStore) RevertMigration(_ context.Context, m Migration) error {
	s.reverted = append(s.reverted, m.Version)
	return nil
}

func TestApplyPending(t *testing.T) {
	registered := []Migration{{Version: 1, Name: "a"}, {Version: 2, Name: "b"}, {Version: 3, Name: "c"}}

	store := &stubMigrationStore{applied: []int{1}}
	require.NoError(t, applyPending(context.Background(), store, registered))
	assert.Equal(t, []int{1, 2, 3}, store.applied)

	unknown := &stubMigrationStore{applied: []int{1, 42}}
	err := applyPending(context.Background(), unknown, registered)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "000042")

	failing := &stubMigrationStore{applyErr: errors.New("syntax error")}
	require.Error(t, applyPending(context.Background(), failing, registered))
}

func TestRollback(t *testing.T) {
	store := &stubMigrationStore{applied: []int{1, 2}}
	require.NoError(t, rollback(context.Background(), store, 2))
	assert.Equal(t, []int{2}, store.reverted)

	require.Error(t, rollback(context.Background(), store, 3))
	require.Error(t, rollback(context.Background(), store, 999))
}
