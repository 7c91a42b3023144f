package pixfmt

import "testing"

func TestLookup_Identity(t *testing.T) {
	conv, ok := Lookup(RGBA8, RGBA8)
	if !ok {
		t.Fatal("Lookup(RGBA8, RGBA8) should succeed")
	}
	src := []byte{10, 20, 30, 40}
	dst := make([]byte, 4)
	conv(dst, src, 1)
	for i := range src {
		if dst[i] != src[i] {
			t.Errorf("identity conversion mismatch at %d: got %d, want %d", i, dst[i], src[i])
		}
	}
}

func TestLookup_RGBAtoARGB(t *testing.T) {
	conv, ok := Lookup(RGBA8, ARGB8)
	if !ok {
		t.Fatal("Lookup(RGBA8, ARGB8) should succeed")
	}
	src := []byte{10, 20, 30, 255}
	dst := make([]byte, 4)
	conv(dst, src, 1)
	want := []byte{255, 10, 20, 30}
	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("RGBA->ARGB[%d] = %d, want %d", i, dst[i], want[i])
		}
	}
}

func TestLookup_RoundTripRGBAtoARGB(t *testing.T) {
	toARGB, _ := Lookup(RGBA8, ARGB8)
	toRGBA, _ := Lookup(ARGB8, RGBA8)
	src := []byte{11, 22, 33, 44}
	mid := make([]byte, 4)
	back := make([]byte, 4)
	toARGB(mid, src, 1)
	toRGBA(back, mid, 1)
	for i := range src {
		if back[i] != src[i] {
			t.Errorf("round trip[%d] = %d, want %d", i, back[i], src[i])
		}
	}
}

func TestLookup_TwoHopMonoToRGB(t *testing.T) {
	conv, ok := Lookup(Mono8, RGB8)
	if !ok {
		t.Fatal("Lookup(Mono8, RGB8) should succeed via RGBA32 pivot")
	}
	src := []byte{128}
	dst := make([]byte, 3)
	conv(dst, src, 1)
	if dst[0] != dst[1] || dst[1] != dst[2] {
		t.Errorf("grayscale pivot should produce equal channels, got %v", dst)
	}
	if dst[0] < 126 || dst[0] > 129 {
		t.Errorf("Mono8(128)->RGB8 channel = %d, want ~128", dst[0])
	}
}

func TestLookup_Unsupported(t *testing.T) {
	weird, _ := New(BGR, U16, 3)
	if _, ok := Lookup(weird, weird); !ok {
		t.Fatal("Lookup(identity) failed; identity always succeeds regardless of registration")
	}
	if _, ok := Lookup(weird, Mono8); ok {
		t.Fatal("Lookup(BGR U16x3 -> Mono8) succeeded, want no registered conversion")
	}
}

func TestRemapChannel(t *testing.T) {
	got := RemapChannel(255, U8, U16)
	if got < 65534 || got > 65535 {
		t.Errorf("RemapChannel(255, U8, U16) = %v, want ~65535", got)
	}
	got = RemapChannel(0, U8, U16)
	if got != 0 {
		t.Errorf("RemapChannel(0, U8, U16) = %v, want 0", got)
	}
}
