package rng

import (
	"reflect"
	"testing"
)

func TestSeedHashFoldsCodeUnits(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  uint32
	}{
		{name: "empty", input: "", want: 0},
		{name: "single", input: "a", want: 97},
		{name: "pair", input: "ab", want: 97*31 + 98},
		{name: "surrogate pair", input: "\U0001F600", want: 0xD83D*31 + 0xDE00},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SeedHash(tt.input); got != tt.want {
				t.Fatalf("SeedHash(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestSeedHashWrapsTo32Bits(t *testing.T) {
	input := "a rather long seed string that overflows thirty two bits several times"
	var want uint64
	for _, c := range input {
		want = (want*31 + uint64(c)) & 0xFFFFFFFF
	}
	if got := SeedHash(input); uint64(got) != want {
		t.Fatalf("expected wrapped hash %d, got %d", want, got)
	}
}

func TestStreamIsDeterministic(t *testing.T) {
	a := StreamFrom(SeedHash("test_seed_01"))
	b := StreamFrom(SeedHash("test_seed_01"))
	for i := 0; i < 1000; i++ {
		va, vb := a(), b()
		if va != vb {
			t.Fatalf("draw %d diverged: %v != %v", i, va, vb)
		}
		if va < 0 || va >= 1 {
			t.Fatalf("draw %d out of range: %v", i, va)
		}
	}
}

func TestStreamMatchesReferenceSequence(t *testing.T) {
	seed := SeedHash("test_seed_01")
	if seed != 684553186 {
		t.Fatalf("SeedHash(test_seed_01) = %d", seed)
	}
	want := []uint32{3690925374, 2641760868, 14463973, 2884852450, 1848150675, 932985966, 1544758275, 2041169820}
	s := New(seed)
	for i, w := range want {
		if got := s.Float64() * 4294967296.0; got != float64(w) {
			t.Fatalf("draw %d = %v, want %d", i, got, w)
		}
	}
	if got := New(0).Float64(); got != 0.26642920868471265 {
		t.Fatalf("first draw for seed 0 = %v", got)
	}
}

func TestStreamDiffersAcrossSeeds(t *testing.T) {
	a := New(1)
	b := New(2)
	same := 0
	for i := 0; i < 32; i++ {
		if a.Float64() == b.Float64() {
			same++
		}
	}
	if same == 32 {
		t.Fatal("different seeds produced identical sequences")
	}
}

func TestIntnAndRangeStayInBounds(t *testing.T) {
	s := New(42)
	for i := 0; i < 2000; i++ {
		if v := s.Intn(7); v < 0 || v >= 7 {
			t.Fatalf("Intn out of range: %d", v)
		}
		if v := s.Range(3, 5); v < 3 || v > 5 {
			t.Fatalf("Range out of range: %d", v)
		}
	}
	before := s.Draws()
	if v := s.Intn(0); v != 0 {
		t.Fatalf("Intn(0) = %d, want 0", v)
	}
	if s.Draws() != before {
		t.Fatal("Intn(0) should not consume a draw")
	}
}

func TestShuffleIsReproducible(t *testing.T) {
	shuffle := func(seed uint32) []int {
		values := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
		s := New(seed)
		s.Shuffle(len(values), func(i, j int) {
			values[i], values[j] = values[j], values[i]
		})
		if s.Draws() != len(values)-1 {
			t.Fatalf("expected %d draws, got %d", len(values)-1, s.Draws())
		}
		return values
	}

	first := shuffle(7)
	second := shuffle(7)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("shuffle not reproducible: %v vs %v", first, second)
	}

	seen := make(map[int]bool)
	for _, v := range first {
		seen[v] = true
	}
	if len(seen) != 10 {
		t.Fatalf("shuffle lost elements: %v", first)
	}
}
