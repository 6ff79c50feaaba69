package dispatch

import (
	"testing"

	"dfkernel/internal/dtype"
)

func TestAccumulatorTypeIntegerWidening(t *testing.T) {
	cases := []struct {
		kind AggKind
		want dtype.ID
	}{
		{SUM, dtype.Int64},
		{COUNT, dtype.Int64},
		{MEAN, dtype.Float64},
		{VARIANCE, dtype.Float64},
		{MEDIAN, dtype.Float64},
	}
	for _, c := range cases {
		got, err := AccumulatorType(dtype.Fixed(dtype.Int32), c.kind)
		if err != nil {
			t.Fatalf("%s on Int32: %v", c.kind, err)
		}
		if got.ID != c.want {
			t.Errorf("AccumulatorType(Int32, %s) = %s, want %s", c.kind, got, dtype.Fixed(c.want))
		}
	}
}

func TestAccumulatorTypeMinMaxPreservesSourceType(t *testing.T) {
	got, err := AccumulatorType(dtype.Fixed(dtype.Int32), MIN)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != dtype.Int32 {
		t.Errorf("MIN on Int32 = %s, want Int32 (unwidened)", got)
	}
}

func TestAccumulatorTypeStringRejectsArithmetic(t *testing.T) {
	if _, err := AccumulatorType(dtype.Fixed(dtype.String), SUM); err == nil {
		t.Fatal("SUM over String should be rejected")
	}
	if _, err := AccumulatorType(dtype.Fixed(dtype.String), MAX); err != nil {
		t.Fatalf("MAX over String should be allowed: %v", err)
	}
}

func TestAccumulatorTypeTimestampOnlyCountMinMax(t *testing.T) {
	ts := dtype.Fixed(dtype.TimestampMicroseconds)
	if _, err := AccumulatorType(ts, SUM); err == nil {
		t.Fatal("SUM over a Timestamp column should be rejected")
	}
	if _, err := AccumulatorType(ts, MIN); err != nil {
		t.Fatalf("MIN over a Timestamp column should be allowed: %v", err)
	}
}

func TestAggKindString(t *testing.T) {
	if SUM.String() != "SUM" || QUANTILE.String() != "QUANTILE" {
		t.Fatalf("AggKind.String() mismatch: SUM=%q QUANTILE=%q", SUM.String(), QUANTILE.String())
	}
}
