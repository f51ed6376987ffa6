// Package config загружает конфигурацию загрузчика среды выполнения из TOML.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
)

// Известные ключи бэкендов.
const (
	BackendHost    = "host"
	BackendEmul    = "emul"
	BackendCatalog = "catalog"
)

var knownBackends = []string{BackendHost, BackendEmul, BackendCatalog}

// Config - конфигурация загрузчика: включенные бэкенды в порядке
// перечисления их платформ и параметры каждого бэкенда.
type Config struct {
	// LogLevel - уровень логирования: debug, info, warn или error.
	LogLevel string        `toml:"log_level"`
	Backends []string      `toml:"backends"`
	Emul     EmulConfig    `toml:"emul"`
	Catalog  CatalogConfig `toml:"catalog"`
}

// EmulConfig описывает платформу эмулируемого бэкенда и ее устройства.
type EmulConfig struct {
	Platform string         `toml:"platform"`
	Devices  []DeviceConfig `toml:"devices"`
}

// DeviceConfig - начальное состояние эмулируемого устройства. Незаданные
// тип, предельный размер рабочей группы, размеры подгрупп и размеры по
// измерениям заполняются значениями по умолчанию.
type DeviceConfig struct {
	Name             string   `toml:"name"`
	Vendor           string   `toml:"vendor"`
	VendorID         uint32   `toml:"vendor_id"`
	Type             string   `toml:"type"`
	DriverVersion    string   `toml:"driver_version"`
	ComputeUnits     uint64   `toml:"compute_units"`
	MaxWorkGroupSize uint64   `toml:"max_work_group_size"`
	WorkItemSizes    []uint64 `toml:"work_item_sizes"`
	SubGroupSizes    []uint64 `toml:"sub_group_sizes"`
	GlobalMemSize    uint64   `toml:"global_mem_size"`
	Extensions       []string `toml:"extensions"`
}

// CatalogConfig - параметры подключения к базе записанных свойств.
type CatalogConfig struct {
	// DSN - строка подключения PostgreSQL в формате pgx.
	DSN string `toml:"dsn"`
}

// Default возвращает конфигурацию только с бэкендом процессора.
func Default() Config {
	return Config{
		LogLevel: "info",
		Backends: []string{BackendHost},
	}
}

// Load читает файл конфигурации, дополняет значения по умолчанию и проверяет результат.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("не удалось прочитать конфигурацию '%s': %w", path, err)
	}
	if err := finish(&cfg, meta); err != nil {
		return Config{}, fmt.Errorf("конфигурация '%s': %w", path, err)
	}
	return cfg, nil
}

// Parse разбирает конфигурацию из строки.
func Parse(data string) (Config, error) {
	cfg := Default()
	meta, err := toml.Decode(data, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("не удалось разобрать конфигурацию: %w", err)
	}
	if err := finish(&cfg, meta); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func finish(cfg *Config, meta toml.MetaData) error {
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("неизвестные ключи: %s", strings.Join(keys, ", "))
	}
	applyDefaults(cfg)
	return Validate(*cfg)
}

func applyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	for i := range cfg.Emul.Devices {
		d := &cfg.Emul.Devices[i]
		if d.Type == "" {
			d.Type = "gpu"
		}
		if d.MaxWorkGroupSize == 0 {
			d.MaxWorkGroupSize = 1024
		}
		if len(d.SubGroupSizes) == 0 {
			d.SubGroupSizes = []uint64{8, 16, 32}
		}
		if len(d.WorkItemSizes) == 0 {
			d.WorkItemSizes = []uint64{d.MaxWorkGroupSize, d.MaxWorkGroupSize, d.MaxWorkGroupSize}
		}
	}
}

// Validate проверяет согласованность конфигурации.
func Validate(cfg Config) error {
	if len(cfg.Backends) == 0 {
		return errors.New("не указан ни один бэкенд")
	}
	seen := make(map[string]bool, len(cfg.Backends))
	for _, b := range cfg.Backends {
		if !slices.Contains(knownBackends, b) {
			return fmt.Errorf("неизвестный бэкенд '%s'", b)
		}
		if seen[b] {
			return fmt.Errorf("бэкенд '%s' указан дважды", b)
		}
		seen[b] = true
	}
	if seen[BackendCatalog] && cfg.Catalog.DSN == "" {
		return errors.New("для бэкенда catalog требуется catalog.dsn")
	}
	for i, d := range cfg.Emul.Devices {
		if d.Name == "" {
			return fmt.Errorf("emul.devices[%d]: не указано имя", i)
		}
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("неизвестный уровень логирования '%s'", cfg.LogLevel)
	}
	return nil
}

// Enabled сообщает, включен ли бэкенд.
func (c Config) Enabled(backend string) bool {
	return slices.Contains(c.Backends, backend)
}
