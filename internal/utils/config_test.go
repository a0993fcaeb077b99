package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/baalimago/go_away_boilerplate/pkg/testboil"
)

func TestReturnNonDefault(t *testing.T) {
	tests := []struct {
		name       string
		a          interface{}
		b          interface{}
		defaultVal interface{}
		want       interface{}
		wantErr    bool
	}{
		{
			name:       "Both defaults",
			a:          "default",
			b:          "default",
			defaultVal: "default",
			want:       "default",
			wantErr:    false,
		},
		{
			name:       "A non-default",
			a:          "non-default",
			b:          "default",
			defaultVal: "default",
			want:       "non-default",
			wantErr:    false,
		},
		{
			name:       "B non-default",
			a:          "default",
			b:          "non-default",
			defaultVal: "default",
			want:       "non-default",
			wantErr:    false,
		},
		{
			name:       "Both non-default",
			a:          "non-default-a",
			b:          "non-default-b",
			defaultVal: "default",
			want:       "default",
			wantErr:    true,
		},
		{
			name:       "Both non-default same value",
			a:          "non-default",
			b:          "non-default",
			defaultVal: "default",
			want:       "default",
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReturnNonDefault(tt.a, tt.b, tt.defaultVal)
			if (err != nil) != tt.wantErr {
				t.Errorf("ReturnNonDefault() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ReturnNonDefault() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRunMigrationCallback(t *testing.T) {
	// Create a test migration callback
	var migrationCalled bool
	migrationCb := func(configDirPath string) error {
		migrationCalled = true
		return nil
	}

	// Test running the migration callback
	configDirPath := "/path/to/config"
	err := runMigrationCallback(migrationCb, configDirPath)
	if err != nil {
		t.Errorf("Unexpected error running migration callback: %v", err)
	}
	if !migrationCalled {
		t.Error("Expected migration callback to be called")
	}

	// Test running the migration callback with nil callback
	migrationCalled = false
	err = runMigrationCallback(nil, configDirPath)
	if err != nil {
		t.Errorf("Unexpected error running nil migration callback: %v", err)
	}
	if migrationCalled {
		t.Error("Expected migration callback not to be called")
	}
}

func TestCreateConfigDir(t *testing.T) {
	configDirPath := filepath.Join(t.TempDir(), "kernagent")

	err := CreateConfigDir(configDirPath)
	if err != nil {
		t.Errorf("Unexpected error creating config directory: %v", err)
	}
	if _, err := os.Stat(configDirPath); os.IsNotExist(err) {
		t.Error("Expected config directory to exist")
	}

	err = CreateConfigDir(configDirPath)
	if err != nil {
		t.Errorf("Unexpected error creating existing config directory: %v", err)
	}
}

func TestCreateDefaultConfigFile(t *testing.T) {
	configDirPath := t.TempDir()
	configFileName := "config.json"

	dflt := &struct {
		Name string `json:"name"`
	}{Name: "John"}
	err := createDefaultConfigFile(configDirPath, configFileName, dflt)
	if err != nil {
		t.Errorf("Unexpected error creating default config file: %v", err)
	}
	configFilePath := filepath.Join(configDirPath, configFileName)
	if _, err := os.Stat(configFilePath); os.IsNotExist(err) {
		t.Error("Expected default config file to exist")
	}

	err = createDefaultConfigFile(configDirPath, configFileName, dflt)
	if err != nil {
		t.Errorf("Unexpected error creating existing default config file: %v", err)
	}
}

type testConf struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}

func TestLoadConfigFromFile(t *testing.T) {
	t.Run("it should create the default config", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "cfg")
		dflt := testConf{Name: "dflt", Count: 2}
		got, err := LoadConfigFromFile(dir, "conf.json", nil, &dflt)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		testboil.FailTestIfDiff(t, got, dflt)
	})

	t.Run("it should back-fill zero fields from the default", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "conf.json")
		if err := os.WriteFile(path, []byte(`{"name":"custom"}`), 0o644); err != nil {
			t.Fatal(err)
		}
		dflt := testConf{Name: "dflt", Count: 2}
		got, err := LoadConfigFromFile(dir, "conf.json", nil, &dflt)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		testboil.FailTestIfDiff(t, got, testConf{Name: "custom", Count: 2})

		var onDisk testConf
		if err := ReadAndUnmarshal(path, &onDisk); err != nil {
			t.Fatal(err)
		}
		testboil.FailTestIfDiff(t, onDisk, got)
	})

	t.Run("it should read yaml", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "conf.yaml")
		if err := os.WriteFile(path, []byte("name: yamled\ncount: 7\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		got, err := LoadConfigFromFile(dir, "conf.yaml", nil, &testConf{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		testboil.FailTestIfDiff(t, got, testConf{Name: "yamled", Count: 7})
	})

	t.Run("it should fail on broken file", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "conf.json"), []byte(`{`), 0o644); err != nil {
			t.Fatal(err)
		}
		_, err := LoadConfigFromFile(dir, "conf.json", nil, &testConf{})
		if err == nil {
			t.Fatal("expected error")
		}
	})
}
