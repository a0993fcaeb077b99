// Package vendorstest contains tests shared by the vendor implementations.
package vendorstest

import (
	"testing"

	"github.com/baalimago/kernagent/internal/models"
)

// RunSetupTests runs common Setup tests for vendors. Vendors which require
// an api key must fail Setup when envVar is unset.
func RunSetupTests(t *testing.T, envVar string, requiresEnv bool, newVendor func() models.ChatCompleter) {
	t.Helper()

	t.Run("with_env", func(t *testing.T) {
		v := newVendor()
		t.Setenv(envVar, "some-key")
		if err := v.Setup(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !models.HasCapability(v, "chat-completion") {
			t.Fatalf("expected vendor to announce chat completion capability")
		}
	})

	if requiresEnv {
		t.Run("no_env", func(t *testing.T) {
			v := newVendor()
			t.Setenv(envVar, "")
			if err := v.Setup(); err == nil {
				t.Fatalf("expected error when %s unset", envVar)
			}
		})
	}
}
