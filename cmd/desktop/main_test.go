package main

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"

	"hackvm/pkg/cpu"
)

func TestKeyCode(t *testing.T) {
	tests := []struct {
		name    string
		pressed []ebiten.Key
		chars   []rune
		last    uint16
		want    uint16
	}{
		{"nothing held", nil, nil, 'a', 0},
		{"typed letter", []ebiten.Key{ebiten.KeyA}, []rune{'a'}, 0, 'a'},
		{"letter still held", []ebiten.Key{ebiten.KeyA}, nil, 'a', 'a'},
		{"shifted letter", []ebiten.Key{ebiten.KeyShiftLeft, ebiten.KeyA}, []rune{'A'}, 0, 'A'},
		{"enter", []ebiten.Key{ebiten.KeyEnter}, nil, 0, cpu.KeyNewline},
		{"arrow wins over char", []ebiten.Key{ebiten.KeyArrowUp}, []rune{'x'}, 0, cpu.KeyUp},
		{"function key", []ebiten.Key{ebiten.KeyF12}, nil, 0, cpu.KeyF1 + 11},
		{"special not sticky", []ebiten.Key{ebiten.KeyShiftLeft}, nil, cpu.KeyLeft, 0},
		{"non printable rune", []ebiten.Key{ebiten.KeyTab}, []rune{'\t'}, 0, 0},
	}

	for _, tt := range tests {
		if got := keyCode(tt.pressed, tt.chars, tt.last); got != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.name, tt.want, got)
		}
	}
}
