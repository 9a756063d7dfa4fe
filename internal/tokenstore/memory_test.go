package tokenstore

import (
	"context"
	"reflect"
	"sort"
	"testing"
)

func TestMemoryStore_GetAbsent(t *testing.T) {
	store := NewMemoryStore()

	token, err := store.Get(context.Background(), "merchant-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if token != nil {
		t.Fatalf("expected absent record, got %+v", token)
	}
}

func TestMemoryStore_PutGetRoundtrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	want := &TenantToken{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		ExpiresAt:    1700000000000,
		Merchant:     "merchant-1",
	}
	if err := store.Put(ctx, "merchant-1", want); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := store.Get(ctx, "merchant-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}

	// Mutating the returned record must not affect stored state.
	got.AccessToken = "tampered"
	again, err := store.Get(ctx, "merchant-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if again.AccessToken != "access-1" {
		t.Fatalf("stored record aliased by caller mutation: %+v", again)
	}
}

func TestMemoryStore_PutIdempotent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	token := &TenantToken{AccessToken: "a", RefreshToken: "r", ExpiresAt: 42, Merchant: "m"}
	if err := store.Put(ctx, "m", token); err != nil {
		t.Fatalf("first Put: %v", err)
	}
	if err := store.Put(ctx, "m", token); err != nil {
		t.Fatalf("second Put: %v", err)
	}

	got, err := store.Get(ctx, "m")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !reflect.DeepEqual(got, token) {
		t.Fatalf("got %+v, want %+v", got, token)
	}

	merchants := collectMerchants(t, store)
	if len(merchants) != 1 {
		t.Fatalf("expected one merchant after repeated Put, got %v", merchants)
	}
}

func TestMemoryStore_Merchants(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for _, merchant := range []string{"c", "a", "b"} {
		token := &TenantToken{RefreshToken: "r-" + merchant, Merchant: merchant}
		if err := store.Put(ctx, merchant, token); err != nil {
			t.Fatalf("Put %s: %v", merchant, err)
		}
	}

	merchants := collectMerchants(t, store)
	sort.Strings(merchants)
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(merchants, want) {
		t.Fatalf("got %v, want %v", merchants, want)
	}
}

func TestMemoryStore_MerchantsEmpty(t *testing.T) {
	store := NewMemoryStore()
	if merchants := collectMerchants(t, store); len(merchants) != 0 {
		t.Fatalf("expected no merchants, got %v", merchants)
	}
}

func collectMerchants(t *testing.T, store Store) []string {
	t.Helper()
	var merchants []string
	for merchant, err := range store.Merchants(context.Background()) {
		if err != nil {
			t.Fatalf("Merchants: %v", err)
		}
		merchants = append(merchants, merchant)
	}
	return merchants
}
