package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	input := `
# Comment
SORTJSON_BUFFER_SIZE=4096
  SORTJSON_REMOTE = nexus
INVALID LINE
SORTJSON_SIGNING_SEED_B64=abc=
`
	r := strings.NewReader(input)
	cfg, err := Parse(r)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	expected := Config{
		"SORTJSON_BUFFER_SIZE":      "4096",
		"SORTJSON_REMOTE":           "nexus",
		"SORTJSON_SIGNING_SEED_B64": "abc=",
	}

	if !reflect.DeepEqual(cfg, expected) {
		t.Errorf("Expected %v, got %v", expected, cfg)
	}
}

func TestMergeConfigs(t *testing.T) {
	c1 := Config{"A": "1", "B": "1"}
	c2 := Config{"B": "2", "C": "2"}
	c3 := Config{"C": "3", "D": "3"}

	res := MergeConfigs(c1, c2, c3)

	expected := Config{
		"A": "1",
		"B": "1", // c1 has highest priority
		"C": "2", // c2 has middle priority
		"D": "3", // c3 has lowest priority
	}

	if !reflect.DeepEqual(res, expected) {
		t.Errorf("Expected %v, got %v", expected, res)
	}
}

func TestTypedGetters(t *testing.T) {
	cfg := Config{
		KeySkipKeyDuplication: "true",
		KeyBufferSize:         "2048",
		KeyMaxKeys:            "many",
	}

	if !cfg.GetBool(KeySkipKeyDuplication, false) {
		t.Error("Expected skip key duplication to be true")
	}
	if cfg.GetBool("MISSING", true) != true {
		t.Error("Expected default for missing boolean")
	}
	if got := cfg.GetInt(KeyBufferSize, 1); got != 2048 {
		t.Errorf("Expected 2048, got %d", got)
	}
	if got := cfg.GetInt(KeyMaxKeys, 7); got != 7 {
		t.Errorf("Expected default 7 for invalid integer, got %d", got)
	}
}

func TestLoadFileMissing(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(os.TempDir(), "sortjson-does-not-exist.env"))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if len(cfg) != 0 {
		t.Errorf("Expected empty config, got %v", cfg)
	}
}

func TestGetEnvConfig(t *testing.T) {
	t.Setenv("SORTJSON_MAX_KEYS", "10")
	t.Setenv("OTHER_VALUE", "x")

	cfg := GetEnvConfig()
	if cfg.Get(KeyMaxKeys, "") != "10" {
		t.Errorf("Expected SORTJSON_MAX_KEYS from environment, got %v", cfg)
	}
	if _, ok := cfg["OTHER_VALUE"]; ok {
		t.Error("Variables without prefix should be ignored")
	}
}
