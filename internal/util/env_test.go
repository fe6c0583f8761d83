package util

import "testing"

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("KITCHEN_PORT", "4000")
	t.Setenv("KITCHEN_BAD_NUMBER", "four")
	t.Setenv("KITCHEN_DEBUG", "true")
	t.Setenv("KITCHEN_MODELS", " gpt-4o-mini, ,o3-mini ")
	t.Setenv("KITCHEN_EMPTY", "")

	if got := GetEnvNumeric("KITCHEN_PORT", 3000); got != 4000 {
		t.Fatalf("GetEnvNumeric() = %v", got)
	}
	if got := GetEnvNumeric("KITCHEN_BAD_NUMBER", 3000); got != 3000 {
		t.Fatalf("GetEnvNumeric() fallback = %v", got)
	}
	if !GetEnvBool("KITCHEN_DEBUG", false) || GetEnvBool("KITCHEN_MISSING", false) {
		t.Fatal("GetEnvBool() mismatch")
	}
	if got := GetEnvString("KITCHEN_MISSING", "dist"); got != "dist" {
		t.Fatalf("GetEnvString() = %q", got)
	}

	models := GetEnvList("KITCHEN_MODELS", nil)
	if len(models) != 2 || models[0] != "gpt-4o-mini" || models[1] != "o3-mini" {
		t.Fatalf("GetEnvList() = %q", models)
	}
	if got := GetEnvList("KITCHEN_EMPTY", []string{"x"}); len(got) != 1 || got[0] != "x" {
		t.Fatalf("GetEnvList() default = %q", got)
	}

	if got := GetEnvFirst("KITCHEN_EMPTY", "KITCHEN_PORT"); got != "4000" {
		t.Fatalf("GetEnvFirst() = %q", got)
	}
}
