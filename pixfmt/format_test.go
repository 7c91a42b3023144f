package pixfmt

import "testing"

func TestFormat_PixelSize(t *testing.T) {
	tests := []struct {
		format   Format
		expected int
	}{
		{Mono8, 1},
		{Mono16, 2},
		{RGB8, 3},
		{RGBA8, 4},
		{ARGB8, 4},
		{BGR8, 3},
		{BGRA8, 4},
		{RGBA32F, 16},
	}

	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			if got := tt.format.PixelSize(); got != tt.expected {
				t.Errorf("PixelSize() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestFormat_ChannelSize(t *testing.T) {
	if got := RGBA8.ChannelSize(); got != 1 {
		t.Errorf("RGBA8.ChannelSize() = %d, want 1", got)
	}
	if got := Mono16.ChannelSize(); got != 2 {
		t.Errorf("Mono16.ChannelSize() = %d, want 2", got)
	}
	if got := RGBA32F.ChannelSize(); got != 4 {
		t.Errorf("RGBA32F.ChannelSize() = %d, want 4", got)
	}
}

func TestFormat_HasAlpha(t *testing.T) {
	tests := []struct {
		format   Format
		expected bool
	}{
		{Mono8, false},
		{RGB8, false},
		{BGR8, false},
		{RGBA8, true},
		{ARGB8, true},
		{BGRA8, true},
	}

	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			if got := tt.format.HasAlpha(); got != tt.expected {
				t.Errorf("HasAlpha() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestFormat_AlphaIndex(t *testing.T) {
	tests := []struct {
		format   Format
		expected int
	}{
		{ARGB8, 0},
		{RGBA8, 3},
		{BGRA8, 3},
		{RGB8, -1},
		{Mono8, -1},
	}
	for _, tt := range tests {
		if got := tt.format.AlphaIndex(); got != tt.expected {
			t.Errorf("%s.AlphaIndex() = %d, want %d", tt.format, got, tt.expected)
		}
	}
}

func TestNew_ValidatesChannelCount(t *testing.T) {
	if _, err := New(RGBA, U8, 3); err == nil {
		t.Error("New(RGBA, U8, 3) should fail: RGBA requires 4 channels")
	}
	if _, err := New(RGB, U8, 3); err != nil {
		t.Errorf("New(RGB, U8, 3) should succeed, got %v", err)
	}
}

func TestFormat_RowBytesAndPlaneBytes(t *testing.T) {
	if got := RGBA8.RowBytes(10); got != 40 {
		t.Errorf("RGBA8.RowBytes(10) = %d, want 40", got)
	}
	if got := RGBA8.PlaneBytes(10, 5); got != 200 {
		t.Errorf("RGBA8.PlaneBytes(10,5) = %d, want 200", got)
	}
}

func TestFormat_IsMono(t *testing.T) {
	if !Mono8.IsMono() {
		t.Error("Mono8.IsMono() = false, want true")
	}
	if RGBA8.IsMono() {
		t.Error("RGBA8.IsMono() = true, want false")
	}
}

func TestFamily_NonAlphaFamily(t *testing.T) {
	tests := []struct {
		family Family
		want   Family
		ok     bool
	}{
		{RGBA, RGB, true},
		{ARGB, RGB, true},
		{BGRA, BGR, true},
		{RGB, RGB, false},
		{Mono, Mono, false},
	}
	for _, tt := range tests {
		got, ok := tt.family.NonAlphaFamily()
		if got != tt.want || ok != tt.ok {
			t.Errorf("%s.NonAlphaFamily() = (%s,%v), want (%s,%v)", tt.family, got, ok, tt.want, tt.ok)
		}
	}
}

func TestChannelDepth_Bytes(t *testing.T) {
	tests := []struct {
		depth ChannelDepth
		want  int
	}{
		{U8, 1}, {U16, 2}, {S16, 2}, {U32, 4}, {S32, 4}, {F32, 4},
	}
	for _, tt := range tests {
		if got := tt.depth.Bytes(); got != tt.want {
			t.Errorf("%s.Bytes() = %d, want %d", tt.depth, got, tt.want)
		}
	}
}
