package app

import (
	"sync"
	"time"

	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/elifnazdmn/HomeStock-Web/internal/domain"
)

const settingsCacheTTL = 30 * time.Second

type cachedSetting struct {
	value    string
	loadedAt time.Time
}

// ConfigManager reads runtime settings from the sys_config table with a
// short-lived cache so hot paths don't hit the database per request.
type ConfigManager struct {
	app   *Application
	mu    sync.RWMutex
	cache map[string]cachedSetting
}

func NewConfigManager(app *Application) *ConfigManager {
	return &ConfigManager{
		app:   app,
		cache: make(map[string]cachedSetting),
	}
}

func (m *ConfigManager) GetString(category, key string) string {
	cacheKey := category + "." + key

	m.mu.RLock()
	entry, found := m.cache[cacheKey]
	m.mu.RUnlock()
	if found && time.Since(entry.loadedAt) < settingsCacheTTL {
		return entry.value
	}

	var cfg domain.SysConfig
	err := m.app.gormDB.Where("type = ? AND name = ?", category, key).First(&cfg).Error
	if err != nil {
		zap.L().Debug("setting not found", zap.String("key", cacheKey))
		return ""
	}

	m.mu.Lock()
	m.cache[cacheKey] = cachedSetting{value: cfg.Value, loadedAt: time.Now()}
	m.mu.Unlock()
	return cfg.Value
}

func (m *ConfigManager) GetInt64(category, key string) int64 {
	return cast.ToInt64(m.GetString(category, key))
}

func (m *ConfigManager) GetInt(category, key string) int {
	return cast.ToInt(m.GetString(category, key))
}

func (m *ConfigManager) GetBool(category, key string) bool {
	return cast.ToBool(m.GetString(category, key))
}

// Invalidate drops a cached value after an admin updates a setting.
func (m *ConfigManager) Invalidate(category, key string) {
	m.mu.Lock()
	delete(m.cache, category+"."+key)
	m.mu.Unlock()
}
