package epublate

import "testing"

func TestNodePath_String(t *testing.T) {
	tests := []struct {
		path NodePath
		want string
	}{
		{nil, "/"},
		{NodePath{0}, "/0"},
		{NodePath{1, 0, 3}, "/1/0/3"},
	}

	for _, tt := range tests {
		if got := tt.path.String(); got != tt.want {
			t.Errorf("String(%v) = %q, want %q", []int(tt.path), got, tt.want)
		}
	}
}

func TestNodePath_Clone(t *testing.T) {
	p := NodePath{1, 2, 3}
	c := p.Clone()

	c[0] = 99
	if p[0] != 1 {
		t.Error("Clone() should return an independent copy")
	}
}

func TestNodePath_Compare(t *testing.T) {
	tests := []struct {
		name string
		p, q NodePath
		want int
	}{
		{"equal", NodePath{1, 2}, NodePath{1, 2}, 0},
		{"earlier sibling", NodePath{1, 1}, NodePath{1, 2}, -1},
		{"later sibling", NodePath{1, 3}, NodePath{1, 2}, 1},
		{"ancestor before descendant", NodePath{1}, NodePath{1, 0}, -1},
		{"descendant after ancestor", NodePath{1, 0}, NodePath{1}, 1},
		{"earlier subtree before later deep node", NodePath{0, 5, 2}, NodePath{1}, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.Compare(tt.q); got != tt.want {
				t.Errorf("Compare(%v, %v) = %d, want %d", tt.p, tt.q, got, tt.want)
			}
		})
	}
}

func TestChunk_Trimmed(t *testing.T) {
	c := Chunk{Ordinal: 0, Text: "  Hello world.  \n"}
	if got := c.Trimmed(); got != "Hello world." {
		t.Errorf("Trimmed() = %q", got)
	}
}

func TestConfig_Mode(t *testing.T) {
	if (Config{}).Mode() != ModeReplace {
		t.Error("default mode should be replace")
	}
	if (Config{Bilingual: true}).Mode() != ModeBilingual {
		t.Error("bilingual config should select bilingual mode")
	}
}
