package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/color"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"

	"hackvm/pkg/config"
	"hackvm/pkg/cpu"
	"hackvm/pkg/translator"
)

const (
	stepsPerFrame = 30000 // ~1.8M instructions per second at 60 TPS
	statusHeight  = 16
)

// specialKeys maps non-printing keys to their Hack keyboard codes.
var specialKeys = map[ebiten.Key]uint16{
	ebiten.KeyEnter:       cpu.KeyNewline,
	ebiten.KeyNumpadEnter: cpu.KeyNewline,
	ebiten.KeyBackspace:   cpu.KeyBackspace,
	ebiten.KeyArrowLeft:   cpu.KeyLeft,
	ebiten.KeyArrowUp:     cpu.KeyUp,
	ebiten.KeyArrowRight:  cpu.KeyRight,
	ebiten.KeyArrowDown:   cpu.KeyDown,
	ebiten.KeyHome:        cpu.KeyHome,
	ebiten.KeyEnd:         cpu.KeyEnd,
	ebiten.KeyPageUp:      cpu.KeyPageUp,
	ebiten.KeyPageDown:    cpu.KeyPageDown,
	ebiten.KeyInsert:      cpu.KeyInsert,
	ebiten.KeyDelete:      cpu.KeyDelete,
	ebiten.KeyEscape:      cpu.KeyEscape,
	ebiten.KeyF1:          cpu.KeyF1,
	ebiten.KeyF2:          cpu.KeyF1 + 1,
	ebiten.KeyF3:          cpu.KeyF1 + 2,
	ebiten.KeyF4:          cpu.KeyF1 + 3,
	ebiten.KeyF5:          cpu.KeyF1 + 4,
	ebiten.KeyF6:          cpu.KeyF1 + 5,
	ebiten.KeyF7:          cpu.KeyF1 + 6,
	ebiten.KeyF8:          cpu.KeyF1 + 7,
	ebiten.KeyF9:          cpu.KeyF1 + 8,
	ebiten.KeyF10:         cpu.KeyF1 + 9,
	ebiten.KeyF11:         cpu.KeyF1 + 10,
	ebiten.KeyF12:         cpu.KeyF1 + 11,
}

// keyCode works out the Hack code of the key held this frame. chars are the
// characters typed this frame; a printable key keeps its code from earlier
// frames for as long as some key stays pressed.
func keyCode(pressed []ebiten.Key, chars []rune, last uint16) uint16 {
	if len(pressed) == 0 {
		return 0
	}
	for _, k := range pressed {
		if code, ok := specialKeys[k]; ok {
			return code
		}
	}
	for _, r := range chars {
		if r >= 0x20 && r < 0x7F {
			return uint16(r)
		}
	}
	if last >= cpu.KeyNewline {
		return 0
	}
	return last
}

type Game struct {
	vm        *cpu.CPU
	name      string
	screenImg *ebiten.Image // reused 512×256 canvas
	pressed   []ebiten.Key
	key       uint16
}

func (g *Game) Update() error {
	g.pressed = inpututil.AppendPressedKeys(g.pressed[:0])
	g.key = keyCode(g.pressed, ebiten.AppendInputChars(nil), g.key)
	g.vm.SetKey(g.key)

	for i := 0; i < stepsPerFrame && !g.vm.Halted; i++ {
		g.vm.Step()
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.screenImg == nil {
		g.screenImg = ebiten.NewImage(cpu.ScreenWidth, cpu.ScreenHeight)
	}
	g.screenImg.WritePixels(g.vm.ScreenRGBA())
	screen.DrawImage(g.screenImg, nil)

	status := fmt.Sprintf("%s  steps=%d  SP=%d  key=%d", g.name, g.vm.Steps, g.vm.RAM[cpu.SP], g.key)
	text.Draw(screen, status, basicfont.Face7x13, 4, cpu.ScreenHeight+12, color.White)
	if g.vm.Halted {
		ebitenutil.DebugPrintAt(screen, "HALTED", cpu.ScreenWidth-48, cpu.ScreenHeight)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return cpu.ScreenWidth, cpu.ScreenHeight + statusHeight
}

func main() {
	if err := config.LoadEnv(); err != nil {
		log.Fatal(err)
	}
	cfg, err := config.Parse("desktop", os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatalf("Bad arguments: %v", err)
	}

	out, err := translator.Compile(context.Background(), cfg.In, cfg.Bootstrap, cfg.Options())
	if err != nil {
		log.Fatalf("Compilation failed: %v", err)
	}
	if cfg.Verbose {
		print("Generated Assembly:\n", out.Assembly, "\n")
	}

	vm := cpu.NewCPU()
	if err := vm.Load(out.Machine); err != nil {
		log.Fatalf("Load failed: %v", err)
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(cpu.ScreenWidth*2, (cpu.ScreenHeight+statusHeight)*2)
	ebiten.SetWindowTitle("Hack VM - " + cfg.In)

	game := &Game{vm: vm, name: cfg.In}
	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
