package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/x-research-team/unirt/config"
)

const sample = `
log_level = "debug"
backends = ["host", "emul"]

[emul]
platform = "Test Accelerator"

[[emul.devices]]
name = "gpu0"
vendor_id = 0x8086
compute_units = 96
extensions = ["ext_a", "ext_b"]

[[emul.devices]]
name = "fpga0"
type = "fpga"
max_work_group_size = 256
sub_group_sizes = [16]
`

func TestParse_AppliesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.Parse(sample)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Enabled(config.BackendEmul))
	assert.False(t, cfg.Enabled(config.BackendCatalog))
	assert.Equal(t, "Test Accelerator", cfg.Emul.Platform)
	require.Len(t, cfg.Emul.Devices, 2)

	gpu := cfg.Emul.Devices[0]
	assert.Equal(t, "gpu", gpu.Type)
	assert.Equal(t, uint32(0x8086), gpu.VendorID)
	assert.Equal(t, uint64(1024), gpu.MaxWorkGroupSize)
	assert.Equal(t, []uint64{8, 16, 32}, gpu.SubGroupSizes)
	assert.Equal(t, []uint64{1024, 1024, 1024}, gpu.WorkItemSizes)

	fpga := cfg.Emul.Devices[1]
	assert.Equal(t, []uint64{16}, fpga.SubGroupSizes)
	assert.Equal(t, []uint64{256, 256, 256}, fpga.WorkItemSizes)
}

func TestParse_Empty(t *testing.T) {
	t.Parallel()

	cfg, err := config.Parse("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"неизвестный бэкенд":     `backends = ["cuda"]`,
		"повтор бэкенда":         `backends = ["host", "host"]`,
		"пустой список бэкендов": `backends = []`,
		"catalog без dsn":        `backends = ["catalog"]`,
		"устройство без имени":   "backends = [\"emul\"]\n[[emul.devices]]\nvendor = \"x\"",
		"неизвестный уровень":    `log_level = "trace"`,
		"неизвестный ключ":       `colour = "red"`,
		"синтаксическая ошибка":  `backends = [`,
	}
	for name, data := range cases {
		_, err := config.Parse(data)
		assert.Error(t, err, name)
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "urinfo.toml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"host", "emul"}, cfg.Backends)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	catalogOnly := filepath.Join(t.TempDir(), "catalog.toml")
	require.NoError(t, os.WriteFile(catalogOnly, []byte("backends = [\"catalog\"]\n[catalog]\ndsn = \"postgres://localhost/unirt\"\n"), 0o600))
	cfg, err = config.Load(catalogOnly)
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/unirt", cfg.Catalog.DSN)
}
