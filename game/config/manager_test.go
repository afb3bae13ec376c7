package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/shikaku-go/shikaku/game/engine"
)

func createTestConfigDir(t *testing.T) string {
	dir, err := os.MkdirTemp("", "config-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	return dir
}

func createValidConfig() *engine.PuzzleConfig {
	return &engine.PuzzleConfig{
		Name:        "Test Config",
		Description: "Test configuration",
		Width:       4,
		Height:      4,
		Layout: []string{
			"4.4.",
			"....",
			"4.4.",
			"....",
		},
		AutoComplete: false,
		Messages:     engine.DefaultMessages(),
	}
}

func writeConfigFile(t *testing.T, dir, name string, config *engine.PuzzleConfig) {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal config: %v", err)
	}

	filename := name
	if filepath.Ext(filename) == "" {
		filename = name + ".json"
	}

	path := filepath.Join(dir, filename)
	err = os.WriteFile(path, data, 0644)
	if err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
}

func TestNewManager(t *testing.T) {
	t.Run("valid directory", func(t *testing.T) {
		dir := createTestConfigDir(t)
		defer os.RemoveAll(dir)

		// Create default config
		classicConfig := createValidConfig()
		classicConfig.Name = "Classic"
		writeConfigFile(t, dir, "classic", classicConfig)

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager == nil {
			t.Error("Expected manager to be non-nil")
		}
	})

	t.Run("non-existent directory", func(t *testing.T) {
		_, err := NewManager("/non/existent/path")
		if err == nil {
			t.Error("Expected error for non-existent directory")
		}
	})

	t.Run("missing default config", func(t *testing.T) {
		dir := createTestConfigDir(t)
		defer os.RemoveAll(dir)

		manager, err := NewManager(dir)
		if err != nil {
			t.Errorf("NewManager should succeed even without config files, got error: %v", err)
		}

		// Should fall back to the built-in puzzle
		if manager == nil {
			t.Fatal("Expected manager to be created")
		}

		// Should be able to get the default config
		defaultConfig := manager.GetDefault()
		if defaultConfig == nil {
			t.Fatal("Expected default config to be available")
		}
		if defaultConfig.Name != "classic" {
			t.Errorf("Expected built-in classic puzzle, got '%s'", defaultConfig.Name)
		}
	})
}

func TestManager_LoadConfig(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)

	// Create test configs
	classicConfig := createValidConfig()
	classicConfig.Name = "Classic"
	writeConfigFile(t, dir, "classic", classicConfig)

	easyConfig := createValidConfig()
	easyConfig.Name = "Easy"
	easyConfig.AutoComplete = true
	writeConfigFile(t, dir, "easy", easyConfig)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	t.Run("load existing config", func(t *testing.T) {
		config, err := manager.LoadConfig("easy")
		if err != nil {
			t.Fatalf("Failed to load config: %v", err)
		}
		if config.Name != "Easy" {
			t.Errorf("Expected config name 'Easy', got '%s'", config.Name)
		}
		if !config.AutoComplete {
			t.Error("Expected auto-complete to be enabled")
		}
	})

	t.Run("load with .json extension", func(t *testing.T) {
		config, err := manager.LoadConfig("easy.json")
		if err != nil {
			t.Fatalf("Failed to load config with extension: %v", err)
		}
		if config.Name != "Easy" {
			t.Errorf("Expected config name 'Easy', got '%s'", config.Name)
		}
	})

	t.Run("load from cache", func(t *testing.T) {
		// First load
		config1, _ := manager.LoadConfig("easy")

		// Second load should come from cache
		config2, err := manager.LoadConfig("easy")
		if err != nil {
			t.Fatalf("Failed to load config from cache: %v", err)
		}

		// Should be the same pointer (cached)
		if config1 != config2 {
			t.Error("Expected config to be loaded from cache")
		}
	})

	t.Run("load non-existent config", func(t *testing.T) {
		_, err := manager.LoadConfig("non-existent")
		if err != ErrConfigNotFound {
			t.Errorf("Expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("load invalid config", func(t *testing.T) {
		// Write invalid config
		invalidData := []byte(`{"name": ""}`) // Missing required fields
		err := os.WriteFile(filepath.Join(dir, "invalid.json"), invalidData, 0644)
		if err != nil {
			t.Fatalf("Failed to write invalid config: %v", err)
		}

		_, err = manager.LoadConfig("invalid")
		if err == nil {
			t.Error("Expected error for invalid config")
		}
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("load malformed JSON", func(t *testing.T) {
		// Write malformed JSON
		malformedData := []byte(`{"name": "Malformed", invalid json}`)
		err := os.WriteFile(filepath.Join(dir, "malformed.json"), malformedData, 0644)
		if err != nil {
			t.Fatalf("Failed to write malformed config: %v", err)
		}

		_, err = manager.LoadConfig("malformed")
		if err == nil {
			t.Error("Expected error for malformed JSON")
		}
	})
}

func TestManager_GetDefault(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)

	classicConfig := createValidConfig()
	classicConfig.Name = "Classic 4x4"
	writeConfigFile(t, dir, "classic", classicConfig)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	config := manager.GetDefault()
	if config == nil {
		t.Fatal("Expected default config to be non-nil")
	}
	if config.Name != "Classic 4x4" {
		t.Errorf("Expected default config name 'Classic 4x4', got '%s'", config.Name)
	}
}

func TestManager_SetDefault(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)

	classicConfig := createValidConfig()
	classicConfig.Name = "Classic"
	writeConfigFile(t, dir, "classic", classicConfig)

	hardConfig := createValidConfig()
	hardConfig.Name = "Hard"
	writeConfigFile(t, dir, "hard", hardConfig)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	if err := manager.SetDefault("hard"); err != nil {
		t.Fatalf("Failed to set default: %v", err)
	}
	if got := manager.GetDefault().Name; got != "Hard" {
		t.Errorf("Expected default 'Hard' after SetDefault, got '%s'", got)
	}

	if err := manager.SetDefault("non-existent"); err != ErrConfigNotFound {
		t.Errorf("Expected ErrConfigNotFound for unknown default, got %v", err)
	}
}

func TestManager_ListConfigs(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)

	// Create multiple configs
	configs := []struct {
		filename string
		name     string
	}{
		{"classic", "Classic"},
		{"easy", "Easy"},
		{"medium", "Medium"},
		{"hard", "Hard"},
	}

	for _, cfg := range configs {
		config := createValidConfig()
		config.Name = cfg.name
		writeConfigFile(t, dir, cfg.filename, config)
	}

	// Also add a non-JSON file that should be ignored
	os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("readme"), 0644)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	configList, err := manager.ListConfigs()
	if err != nil {
		t.Fatalf("Failed to list configs: %v", err)
	}
	if len(configList) != 4 {
		t.Errorf("Expected 4 configs, got %d", len(configList))
	}

	// Verify all configs are listed with their layout details
	foundConfigs := make(map[string]bool)
	for _, info := range configList {
		foundConfigs[info.Name] = true

		if info.Width != 4 || info.Height != 4 {
			t.Errorf("Config '%s': expected 4x4 grid, got %dx%d", info.Name, info.Width, info.Height)
		}
		if info.ClueCount != 4 {
			t.Errorf("Config '%s': expected 4 clues, got %d", info.Name, info.ClueCount)
		}
	}

	for _, cfg := range configs {
		if !foundConfigs[cfg.name] {
			t.Errorf("Config '%s' not found in list", cfg.name)
		}
	}
}

func TestManager_SaveConfig(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)

	classicConfig := createValidConfig()
	writeConfigFile(t, dir, "classic", classicConfig)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	t.Run("save valid config", func(t *testing.T) {
		config := createValidConfig()
		config.Name = "Saved"
		if err := manager.SaveConfig("saved", config); err != nil {
			t.Fatalf("Failed to save config: %v", err)
		}

		// File should exist on disk
		if _, err := os.Stat(filepath.Join(dir, "saved.json")); err != nil {
			t.Errorf("Expected saved.json on disk: %v", err)
		}

		// And be loadable through the manager
		loaded, err := manager.LoadConfig("saved")
		if err != nil {
			t.Fatalf("Failed to load saved config: %v", err)
		}
		if loaded.Name != "Saved" {
			t.Errorf("Expected saved config name 'Saved', got '%s'", loaded.Name)
		}
	})

	t.Run("reject invalid config", func(t *testing.T) {
		config := createValidConfig()
		config.Name = ""
		err := manager.SaveConfig("broken", config)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}

		if _, statErr := os.Stat(filepath.Join(dir, "broken.json")); !os.IsNotExist(statErr) {
			t.Error("Invalid config should not be written to disk")
		}
	})
}

func TestManager_ReloadConfig(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)

	// Create initial config
	config := createValidConfig()
	config.Name = "Changeable"
	config.AutoComplete = false
	writeConfigFile(t, dir, "classic", config)
	writeConfigFile(t, dir, "changeable", config)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	// Load config first time
	loaded, _ := manager.LoadConfig("changeable")
	if loaded.AutoComplete {
		t.Error("Expected auto-complete to be disabled initially")
	}

	// Modify config file
	config.AutoComplete = true
	writeConfigFile(t, dir, "changeable", config)

	// Reload config
	err = manager.ReloadConfig("changeable")
	if err != nil {
		t.Fatalf("Failed to reload config: %v", err)
	}

	// Verify updated value
	reloaded, _ := manager.LoadConfig("changeable")
	if !reloaded.AutoComplete {
		t.Error("Expected auto-complete to be enabled after reload")
	}
}

func TestManager_ValidateConfig(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)

	classicConfig := createValidConfig()
	writeConfigFile(t, dir, "classic", classicConfig)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	t.Run("valid config", func(t *testing.T) {
		config := createValidConfig()
		err := manager.ValidateConfig(config)
		if err != nil {
			t.Errorf("Expected valid config to pass validation: %v", err)
		}
	})

	t.Run("invalid config - missing name", func(t *testing.T) {
		config := createValidConfig()
		config.Name = ""
		err := manager.ValidateConfig(config)
		if err == nil {
			t.Error("Expected error for config missing name")
		}
	})

	t.Run("invalid config - grid too small", func(t *testing.T) {
		config := createValidConfig()
		config.Width = 1
		err := manager.ValidateConfig(config)
		if err == nil {
			t.Error("Expected error for invalid grid size")
		}
	})

	t.Run("invalid config - clue areas do not tile", func(t *testing.T) {
		config := createValidConfig()
		config.Layout = []string{
			"4.4.",
			"....",
			"4...",
			"....",
		}
		err := manager.ValidateConfig(config)
		if err == nil {
			t.Error("Expected error for clue areas not covering the grid")
		}
	})
}

func TestManager_ConcurrentAccess(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)

	// Create configs
	classicConfig := createValidConfig()
	writeConfigFile(t, dir, "classic", classicConfig)

	for i := 1; i <= 5; i++ {
		config := createValidConfig()
		config.Name = "Config" + string(rune('0'+i))
		writeConfigFile(t, dir, "config"+string(rune('0'+i)), config)
	}

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	// Test concurrent loading
	var wg sync.WaitGroup
	errors := make(chan error, 50)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			configName := "config" + string(rune('0'+((id%5)+1)))
			_, err := manager.LoadConfig(configName)
			if err != nil {
				errors <- err
			}
		}(i)
	}

	wg.Wait()
	close(errors)

	// Check for errors
	for err := range errors {
		t.Errorf("Unexpected error during concurrent access: %v", err)
	}

	// Verify cache size
	if manager.Count() < 5 {
		t.Errorf("Expected at least 5 configs in cache, got %d", manager.Count())
	}
}

func TestManager_CachingBehavior(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)

	classicConfig := createValidConfig()
	writeConfigFile(t, dir, "classic", classicConfig)

	testConfig := createValidConfig()
	testConfig.Name = "Test"
	writeConfigFile(t, dir, "test", testConfig)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	// Load config multiple times
	for i := 0; i < 10; i++ {
		config, err := manager.LoadConfig("test")
		if err != nil {
			t.Fatalf("Failed to load config on iteration %d: %v", i, err)
		}
		if config.Name != "Test" {
			t.Errorf("Unexpected config name on iteration %d", i)
		}
	}

	// Should have two entries in cache: the default config and the test config
	if manager.Count() != 2 { // Both "classic" and "test" are cached
		t.Errorf("Expected 2 configs in cache, got %d", manager.Count())
	}
}

// Test-only helper methods on Manager

func (m *Manager) ReloadConfig(name string) error {
	m.mu.Lock()
	// Remove from cache to force reload
	delete(m.configs, name)
	m.mu.Unlock()

	// Load fresh from disk (without holding the lock)
	_, err := m.LoadConfig(name)
	return err
}

func (m *Manager) ValidateConfig(config *engine.PuzzleConfig) error {
	return engine.ValidatePuzzleConfig(config)
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.configs)
}
