package bitmap

import "testing"

func TestCreateNullMaskStates(t *testing.T) {
	if m := CreateNullMask(10, Unallocated); m != nil {
		t.Fatalf("Unallocated mask should be nil, got %v", m)
	}
	all := CreateNullMask(10, AllValid)
	for i := 0; i < 10; i++ {
		if !IsValid(all, i) {
			t.Fatalf("row %d should be valid in AllValid mask", i)
		}
	}
	none := CreateNullMask(10, AllNull)
	for i := 0; i < 10; i++ {
		if IsValid(none, i) {
			t.Fatalf("row %d should be null in AllNull mask", i)
		}
	}
}

func TestIsValidNilMeansAllValid(t *testing.T) {
	if !IsValid(nil, 42) {
		t.Fatal("nil bitmap must read as all-valid")
	}
}

func TestSetValidRoundTrip(t *testing.T) {
	m := CreateNullMask(64, AllValid)
	SetValid(m, 5, false)
	SetValid(m, 63, false)
	for i := 0; i < 64; i++ {
		want := i != 5 && i != 63
		if got := IsValid(m, i); got != want {
			t.Errorf("row %d: got %v, want %v", i, got, want)
		}
	}
}

func TestCountSetBits(t *testing.T) {
	m := CreateNullMask(100, AllValid)
	SetValid(m, 0, false)
	SetValid(m, 50, false)
	SetValid(m, 99, false)

	n, err := CountSetBits(m, 0, 100)
	if err != nil {
		t.Fatal(err)
	}
	if n != 97 {
		t.Fatalf("CountSetBits(0,100) = %d, want 97", n)
	}

	n, err = CountSetBits(m, 40, 60)
	if err != nil {
		t.Fatal(err)
	}
	if n != 19 {
		t.Fatalf("CountSetBits(40,60) = %d, want 19", n)
	}
}

func TestCountSetBitsUnalignedRanges(t *testing.T) {
	m := CreateNullMask(200, AllValid)
	for i := 0; i < 200; i += 3 {
		SetValid(m, i, false)
	}
	for begin := 0; begin < 190; begin += 17 {
		end := begin + 13
		want := 0
		for i := begin; i < end; i++ {
			if IsValid(m, i) {
				want++
			}
		}
		got, err := CountSetBits(m, begin, end)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("CountSetBits(%d,%d) = %d, want %d", begin, end, got, want)
		}
	}
}

func TestSegmentedCountSetBits(t *testing.T) {
	m := CreateNullMask(64, AllValid)
	SetValid(m, 10, false)
	SetValid(m, 40, false)

	out, err := SegmentedCountSetBits(m, []Range{{0, 32}, {32, 64}})
	if err != nil {
		t.Fatal(err)
	}
	if out[0] != 31 || out[1] != 31 {
		t.Fatalf("SegmentedCountSetBits = %v, want [31 31]", out)
	}
}

func TestCopyBitmaskUnalignedOffset(t *testing.T) {
	src := CreateNullMask(128, AllValid)
	for i := 0; i < 128; i++ {
		if i%5 == 0 {
			SetValid(src, i, false)
		}
	}
	dst := CreateNullMask(128, Uninitialized)
	if err := CopyBitmask(src, 7, 7+40, dst, 3); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 40; i++ {
		want := IsValid(src, 7+i)
		got := IsValid(dst, 3+i)
		if got != want {
			t.Errorf("bit %d: got %v, want %v", i, got, want)
		}
	}
}

func TestCopyBitmaskNilSourceIsAllValid(t *testing.T) {
	dst := CreateNullMask(32, Uninitialized)
	if err := CopyBitmask(nil, 0, 32, dst, 0); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 32; i++ {
		if !IsValid(dst, i) {
			t.Errorf("bit %d should have copied as valid from nil source", i)
		}
	}
}

func TestBitmaskAndBothNilIsNil(t *testing.T) {
	if out := BitmaskAnd(nil, 0, nil, 0, 16); out != nil {
		t.Fatalf("AND of two nil (all-valid) masks should stay nil, got %v", out)
	}
}

func TestBitmaskAnd(t *testing.T) {
	a := CreateNullMask(8, AllValid)
	SetValid(a, 2, false)
	b := CreateNullMask(8, AllValid)
	SetValid(b, 2, false)
	SetValid(b, 5, false)

	out := BitmaskAnd(a, 0, b, 0, 8)
	for i := 0; i < 8; i++ {
		want := i != 2 && i != 5
		if got := IsValid(out, i); got != want {
			t.Errorf("row %d: got %v, want %v", i, got, want)
		}
	}
}

func TestConcatenateMasksNonNullableContributesAllOnes(t *testing.T) {
	nullable := CreateNullMask(4, AllValid)
	SetValid(nullable, 1, false)

	out := ConcatenateMasks([]View{
		{Mask: nil, Size: 3, Nullable: false},
		{Mask: nullable, Size: 4, Nullable: true},
	})
	for i := 0; i < 3; i++ {
		if !IsValid(out, i) {
			t.Errorf("row %d from non-nullable segment should be valid", i)
		}
	}
	for i := 0; i < 4; i++ {
		want := i != 1
		if got := IsValid(out, 3+i); got != want {
			t.Errorf("row %d from nullable segment: got %v, want %v", i, got, want)
		}
	}
}

func TestWordsForPadsToAllocationBoundary(t *testing.T) {
	// 64 bytes == 16 uint32 words; every allocation must be a multiple of that.
	for _, size := range []int{1, 31, 32, 33, 512, 513} {
		words := wordsFor(size)
		if words%wordsPerPad != 0 {
			t.Errorf("wordsFor(%d) = %d words, not a multiple of %d", size, words, wordsPerPad)
		}
	}
}
