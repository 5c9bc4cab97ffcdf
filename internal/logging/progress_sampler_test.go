package logging

import "testing"

func TestProgressSamplerBuckets(t *testing.T) {
	s := NewProgressSampler(25)
	if !s.ShouldLog("matching", 0, 8) {
		t.Fatal("first call should log")
	}
	if s.ShouldLog("matching", 1, 8) {
		t.Fatal("12.5% should stay in the first bucket")
	}
	if !s.ShouldLog("matching", 2, 8) {
		t.Fatal("25% should open a new bucket")
	}
	if !s.ShouldLog("postcodes", 2, 8) {
		t.Fatal("phase change should log")
	}
}

func TestProgressSamplerDefaults(t *testing.T) {
	s := NewProgressSampler(0)
	if s.bucketSize != 10 {
		t.Fatalf("bucketSize = %v, want 10", s.bucketSize)
	}
	var nilSampler *ProgressSampler
	if !nilSampler.ShouldLog("x", 1, 2) {
		t.Fatal("nil sampler should always log")
	}
}
