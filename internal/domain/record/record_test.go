package record

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/envdex/internal/domain"
)

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name     string
		tenant   string
		recName  string
		category Category
		wantErr  bool
	}{
		{"valid", "t1", "STRIPE_SECRET_KEY", CategoryPayment, false},
		{"empty category defaults", "t1", "FOO", "", false},
		{"missing tenant", "", "FOO", CategoryOther, true},
		{"missing name", "t1", "", CategoryOther, true},
		{"unknown category", "t1", "FOO", Category("banking"), true},
		{"name too long", "t1", strings.Repeat("A", MaxNameLength+1), CategoryOther, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.tenant, tc.recName, "desc", tc.category, "svc", false, "", nil, nil)
			if tc.wantErr {
				if !errors.Is(err, domain.ErrInvalidInput) {
					t.Fatalf("expected ErrInvalidInput, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestNew_EmptyCategoryDefaultsToOther(t *testing.T) {
	r, err := New("t1", "FOO", "", "", "", false, "", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Category() != CategoryOther {
		t.Fatalf("category = %q, want %q", r.Category(), CategoryOther)
	}
}

func TestEmbedText(t *testing.T) {
	r, err := New(
		"t1", "STRIPE_SECRET_KEY", "Stripe payment processing secret",
		CategoryPayment, "Stripe", true, "sk_live_...",
		[]string{"stripe", "billing"}, nil,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text := r.EmbedText()
	if strings.Contains(text, "_") {
		t.Errorf("embed text should replace underscores: %q", text)
	}
	for _, want := range []string{"STRIPE SECRET KEY", "Stripe payment processing secret", "payment", "stripe billing"} {
		if !strings.Contains(text, want) {
			t.Errorf("embed text missing %q: %q", want, text)
		}
	}
}

func TestWithVectorRef_SetsBothFields(t *testing.T) {
	r, _ := New("t1", "FOO", "", CategoryOther, "", false, "", nil, nil)
	now := time.Now()

	r2 := r.WithVectorRef("envdex:vector:t1:FOO", now)
	if r2.VectorRef() == "" || r2.IndexedAt().IsZero() {
		t.Fatal("vector ref and indexed-at must be set together")
	}
	if r.VectorRef() != "" || !r.IndexedAt().IsZero() {
		t.Fatal("original record must be unmodified")
	}
}

func TestCategoryIsValid(t *testing.T) {
	for _, c := range Categories {
		if !c.IsValid() {
			t.Errorf("category %q should be valid", c)
		}
	}
	if Category("nope").IsValid() {
		t.Error("unknown category should be invalid")
	}
}
