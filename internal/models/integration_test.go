package models

import (
	"strings"
	"testing"
)

func TestNewIntegration(t *testing.T) {
	a := NewIntegration("store", 1)
	b := NewIntegration("store", 1)

	if a.WebhookID == "" {
		t.Fatal("NewIntegration() produced an empty webhook ID")
	}
	if a.WebhookID == b.WebhookID {
		t.Error("NewIntegration() produced duplicate webhook IDs")
	}
	if a.Name != "store" || a.CreatedBy != 1 {
		t.Errorf("NewIntegration() = %+v, want name and owner set", a)
	}
	if !strings.HasPrefix(a.WebhookPath(), "/webhook/") {
		t.Errorf("WebhookPath() = %q, want /webhook/ prefix", a.WebhookPath())
	}
}
