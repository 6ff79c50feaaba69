package alloc

import "testing"

func TestDefaultAllocatorNeverRefuses(t *testing.T) {
	if err := Current().Reserve(1 << 30); err != nil {
		t.Fatalf("default allocator should not refuse any reservation, got %v", err)
	}
}

func TestSetDefaultInstallsAllocator(t *testing.T) {
	orig := Current()
	defer SetDefault(orig)

	b := &Budgeted{Limit: 100}
	SetDefault(b)
	if err := Current().Reserve(50); err != nil {
		t.Fatalf("reservation within budget should succeed: %v", err)
	}
	if err := Current().Reserve(60); err == nil {
		t.Fatal("reservation exceeding budget should fail")
	}
}

func TestBudgetedAccumulatesAcrossReserves(t *testing.T) {
	b := &Budgeted{Limit: 10}
	if err := b.Reserve(4); err != nil {
		t.Fatal(err)
	}
	if err := b.Reserve(4); err != nil {
		t.Fatal(err)
	}
	if err := b.Reserve(4); err == nil {
		t.Fatal("third reservation should push cumulative usage past the limit")
	}
}

func TestBudgetedRollsBackFailedReservation(t *testing.T) {
	b := &Budgeted{Limit: 10}
	if err := b.Reserve(8); err != nil {
		t.Fatal(err)
	}
	if err := b.Reserve(8); err == nil {
		t.Fatal("reservation over budget should fail")
	}
	// The failed reservation must not have permanently consumed budget.
	if err := b.Reserve(2); err != nil {
		t.Fatalf("budget should still have 2 bytes free: %v", err)
	}
}
