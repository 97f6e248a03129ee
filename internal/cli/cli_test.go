package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/epinet"
	"github.com/aretw0/epinet/internal/config"
	"github.com/aretw0/epinet/internal/logging"
	"github.com/aretw0/epinet/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Sim.Seed = 11
	return cfg
}

func TestNewLogger(t *testing.T) {
	_, err := NewLogger(config.LogConfig{Level: "debug", Format: "json"})
	assert.NoError(t, err)

	_, err = NewLogger(config.LogConfig{Level: "loud", Format: "text"})
	assert.Error(t, err)
}

func TestNewApp_InMemory(t *testing.T) {
	ctx := context.Background()
	app, err := NewApp(ctx, testConfig(), logging.NewNop())
	require.NoError(t, err)
	defer app.Close()

	status, err := app.Service.Generate(ctx, 200)
	require.NoError(t, err)
	_, err = app.Service.Step(ctx, status.SimID, 2)
	require.NoError(t, err)
}

func TestNewApp_Redis(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	cfg := testConfig()
	cfg.Redis.Addr = mr.Addr()

	app, err := NewApp(ctx, cfg, logging.NewNop())
	require.NoError(t, err)

	status, err := app.Service.Generate(ctx, 200)
	require.NoError(t, err)
	_, err = app.Service.Step(ctx, status.SimID, 1)
	require.NoError(t, err)
	assert.False(t, mr.Exists("epinet:lock:"+status.SimID), "lock must be released after the step")

	require.NoError(t, app.Close())
}

func TestNewApp_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := testConfig()
	cfg.Redis.Addr = addr
	_, err := NewApp(context.Background(), cfg, logging.NewNop())
	assert.Error(t, err)
}

func TestNewApp_DebugHooks(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, -4, logging.FormatText)

	app, err := NewApp(ctx, testConfig(), logger)
	require.NoError(t, err)
	defer app.Close()

	status, err := app.Service.Generate(ctx, 200)
	require.NoError(t, err)
	_, err = app.Service.Step(ctx, status.SimID, 1)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "graph_generated")
	assert.Contains(t, out, "msg=step")
}

func TestSimulate(t *testing.T) {
	ctx := context.Background()
	app, err := NewApp(ctx, testConfig(), logging.NewNop())
	require.NoError(t, err)
	defer app.Close()

	days := 0
	res, err := Simulate(ctx, app.Service, 400, 2000, func(epinet.Status) { days++ })
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(res.Status.Message, "Simulation ended"), res.Status.Message)
	assert.Equal(t, res.Simulation.Day, res.Report.Days)
	assert.Equal(t, res.Simulation.Day, days)
	assert.Equal(t, 400, res.Report.Population)
	assert.NotEmpty(t, res.Status.GraphID)
	assert.GreaterOrEqual(t, res.Report.PeakInfected, res.Report.Seeded)

	if res.Status.Lockdown {
		assert.NotEqual(t, domain.NoDay, res.Report.LockdownDay)
	} else {
		assert.Equal(t, domain.NoDay, res.Report.LockdownDay)
	}
}

func TestSimulate_MaxDays(t *testing.T) {
	ctx := context.Background()
	app, err := NewApp(ctx, testConfig(), logging.NewNop())
	require.NoError(t, err)
	defer app.Close()

	res, err := Simulate(ctx, app.Service, 300, 5, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Status.Day)
	assert.False(t, res.Report.Terminated)
}

func TestSimulate_InvalidPopulation(t *testing.T) {
	ctx := context.Background()
	app, err := NewApp(ctx, testConfig(), logging.NewNop())
	require.NoError(t, err)
	defer app.Close()

	_, err = Simulate(ctx, app.Service, 50, 10, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidPopulation)
}
