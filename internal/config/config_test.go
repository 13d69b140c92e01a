package config

import (
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
)

func TestParseWorkWeekDefault(t *testing.T) {
	ww := parseWorkWeek("")
	if !ww[time.Sunday] || !ww[time.Thursday] {
		t.Errorf("Expected default Sunday-Thursday week, got %v", ww)
	}
	if ww[time.Friday] || ww[time.Saturday] {
		t.Errorf("Expected weekend excluded by default, got %v", ww)
	}
}

func TestParseWorkWeekCustom(t *testing.T) {
	ww := parseWorkWeek("Mon, Tue ,Wed,Thu,Fri")
	if !ww[time.Monday] || !ww[time.Friday] {
		t.Errorf("Expected Monday-Friday week, got %v", ww)
	}
	if ww[time.Sunday] {
		t.Errorf("Expected Sunday excluded, got %v", ww)
	}
}

func TestGetEnvFloat(t *testing.T) {
	t.Setenv("WP_TEST_THRESHOLD", "87.5")
	if got := getEnvFloat("WP_TEST_THRESHOLD", 95); got != 87.5 {
		t.Errorf("Expected 87.5, got %v", got)
	}
	if got := getEnvFloat("WP_TEST_MISSING", 95); got != 95 {
		t.Errorf("Expected fallback 95, got %v", got)
	}
	t.Setenv("WP_TEST_THRESHOLD", "not-a-number")
	if got := getEnvFloat("WP_TEST_THRESHOLD", 95); got != 95 {
		t.Errorf("Expected fallback on malformed value, got %v", got)
	}
}

// godotenv keeps double quotes inside single-quoted values; threshold
// overrides in .env files rely on this.
func TestGodotenvQuoting(t *testing.T) {
	content := `TEST_VAR='value with "double quotes"'`
	tmpfile, err := os.CreateTemp("", ".env.test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpfile.Name())

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	env, err := godotenv.Read(tmpfile.Name())
	if err != nil {
		t.Fatalf("Error reading env: %v", err)
	}

	expected := `value with "double quotes"`
	if env["TEST_VAR"] != expected {
		t.Errorf("Expected %s, got %s", expected, env["TEST_VAR"])
	}
}
