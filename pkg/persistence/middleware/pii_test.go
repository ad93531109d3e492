package middleware_test

import (
	"context"
	"testing"

	"github.com/aretw0/weave/pkg/adapters/memory"
	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/persistence/middleware"
)

func TestPIIMiddleware_Masking(t *testing.T) {
	underlyingStore := memory.NewStore()
	// Mask keys containing "password" or "ssn"
	secureStore := middleware.NewPIIMiddleware([]string{"password", "ssn"})(underlyingStore)

	ctx := context.Background()
	p := domain.NewPrompt("pii")
	n := domain.NewNode("form", "Passthrough")
	n.Set("username", domain.Literal("jdoe"))
	n.Set("user_password", domain.Literal("secret123"))
	n.Set("details", domain.Literal(map[string]any{
		"address":    "123 St",
		"ssn_number": "999-99-9999",
	}))
	n.Set("password_hint", domain.Linked("vault", 0))
	_ = p.Add(n)

	// 1. Save
	if err := secureStore.Save(ctx, "pii", p); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Verify In-Memory prompt is NOT MODIFIED (Immutability check)
	if n.Inputs["user_password"].Value != "secret123" {
		t.Error("Middleware modified original prompt in memory!")
	}
	if n.Inputs["details"].Value.(map[string]any)["ssn_number"] != "999-99-9999" {
		t.Error("Middleware modified nested literal in memory!")
	}

	// 2. Load from Underlying Store (Should be masked)
	stored, err := underlyingStore.Load(ctx, "pii")
	if err != nil {
		t.Fatalf("Underlying load failed: %v", err)
	}
	form, _ := stored.Node("form")

	if form.Inputs["username"].Value != "jdoe" {
		t.Error("Username shouldn't be masked")
	}
	if form.Inputs["user_password"].Value != middleware.Mask {
		t.Errorf("Password should be masked, got: %v", form.Inputs["user_password"].Value)
	}
	details := form.Inputs["details"].Value.(map[string]any)
	if details["ssn_number"] != middleware.Mask {
		t.Errorf("Nested SSN should be masked, got: %v", details["ssn_number"])
	}
	if details["address"] != "123 St" {
		t.Errorf("Address shouldn't be masked, got: %v", details["address"])
	}
	if !form.Inputs["password_hint"].IsLink() {
		t.Error("Links must survive masking")
	}
}

func TestChain(t *testing.T) {
	underlyingStore := memory.NewStore()
	key := make([]byte, 32)
	store := middleware.Chain(underlyingStore,
		middleware.NewPIIMiddleware([]string{"label"}),
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}),
	)

	ctx := context.Background()
	if err := store.Save(ctx, "p1", secretPrompt("hidden")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Masked first, then sealed.
	loaded, err := store.Load(ctx, "p1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := label(t, loaded); got != middleware.Mask {
		t.Errorf("label = %v, want %s", got, middleware.Mask)
	}
	if _, err := underlyingStore.Load(ctx, "p1"); err != nil {
		t.Fatal(err)
	}
}
