package security

import "testing"

func TestSystemContextHasInitializedCapability(t *testing.T) {
	ctx := System()
	if !ctx.IsSystem() {
		t.Error("expected IsSystem() to be true")
	}
	if !ctx.HasCapability("initialized") {
		t.Error("expected system context to carry the initialized capability")
	}
}

func TestAnonymousContextHasNoCapabilities(t *testing.T) {
	ctx := Anonymous()
	if ctx.IsSystem() {
		t.Error("anonymous context should not be system")
	}
	if ctx.HasCapability("initialized") {
		t.Error("anonymous context should not be initialized")
	}
}

func TestWithCapabilityDoesNotMutateOriginal(t *testing.T) {
	base := Anonymous()
	upgraded := base.WithCapability("initialized")

	if base.HasCapability("initialized") {
		t.Error("WithCapability must not mutate the receiver")
	}
	if !upgraded.HasCapability("initialized") {
		t.Error("expected the returned copy to carry the new capability")
	}
}
