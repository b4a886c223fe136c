package branding

import "testing"

func TestEmbeddedIdentity(t *testing.T) {
	if got := CLIName(); got != "stackboot" {
		t.Errorf("CLIName() = %q, want %q", got, "stackboot")
	}
	if got := HomeDir(); got != ".stackboot" {
		t.Errorf("HomeDir() = %q, want %q", got, ".stackboot")
	}
	if got := UserAgent(); got == "" {
		t.Error("UserAgent() is empty")
	}
}

func TestEnvVar(t *testing.T) {
	if got := EnvVar("probe_timeout"); got != "STACKBOOT_PROBE_TIMEOUT" {
		t.Errorf("EnvVar() = %q, want %q", got, "STACKBOOT_PROBE_TIMEOUT")
	}
}
