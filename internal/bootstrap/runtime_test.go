package bootstrap

import (
	"context"
	"testing"

	"nestaway/internal/config"
	"nestaway/internal/mailer"
	"nestaway/internal/repository"
	"nestaway/internal/storage"
	"nestaway/internal/verification"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runtimeConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Env:                      "test",
		DBDriver:                 "sqlite",
		DBSQLitePath:             "file:bootstrap_" + t.Name() + "?mode=memory&cache=shared",
		DBConnMaxLifetimeMinutes: 5,
		RedisURL:                 "127.0.0.1:1",
		VerificationStore:        "memory",
		MailerDriver:             "log",
		StorageDriver:            "local",
		UploadDir:                t.TempDir(),
		PublicBaseURL:            "http://localhost:8375",
		FrontURL:                 "http://localhost:5173",
	}
}

func TestInitRuntime_LocalStack(t *testing.T) {
	cfg := runtimeConfig(t)
	ctx := context.Background()

	rt, err := InitRuntime(ctx, cfg, Options{SeedDemo: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close(context.Background()) })

	assert.NotNil(t, rt.DB)
	assert.Nil(t, rt.Redis, "unreachable redis is optional")
	assert.IsType(t, &verification.MemoryRegistry{}, rt.Codes)
	assert.IsType(t, &mailer.LogSender{}, rt.Mail)
	assert.IsType(t, &storage.LocalStorage{}, rt.Storage)
	require.NotNil(t, rt.Pages)

	deps := rt.Deps()
	assert.Equal(t, cfg.UploadDir, deps.MediaRoot)
	require.NotNil(t, deps.Store)
	assert.NoError(t, deps.Store.Ping(ctx))

	_, total, err := rt.Properties.List(ctx, repository.PropertyFilter{Page: 1, Limit: 1})
	require.NoError(t, err)
	assert.Positive(t, total, "empty catalogue should be seeded")
}

func TestInitRuntime_RedisVerificationStore(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := runtimeConfig(t)
	cfg.RedisURL = mr.Addr()
	cfg.VerificationStore = "redis"

	rt, err := InitRuntime(context.Background(), cfg, Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close(context.Background()) })

	require.NotNil(t, rt.Redis)
	assert.IsType(t, &verification.RedisRegistry{}, rt.Codes)
	assert.NotNil(t, rt.Deps().Redis)
}

func TestInitRuntime_RejectsUnknownStorage(t *testing.T) {
	cfg := runtimeConfig(t)
	cfg.StorageDriver = "ftp"

	_, err := InitRuntime(context.Background(), cfg, Options{})
	assert.Error(t, err)
}
