// c64emu is the SDL2 render front end described in component design
// section 4.10: it owns the window/renderer/texture and the host event
// loop, and otherwise only talks to c64.System through its exported
// accessors — none of the emulation core depends on SDL.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"unsafe"

	"github.com/abandt/retroc64/c64/c64"
	"github.com/abandt/retroc64/c64/inject"
	"github.com/abandt/retroc64/dis/disassembler"
	"github.com/veandco/go-sdl2/sdl"
)

const (
	nativeWidth  = 320
	nativeHeight = 200

	cyclesPerSlice = 20000
)

var romFiles = struct {
	basic, kernal, chargen string
}{
	basic:   "basic-901226-01.bin",
	kernal:  "kernal-901227-03.bin",
	chargen: "chargen-901225-01.bin",
}

func loadROMs() (c64.ROMImages, error) {
	basic, err := os.ReadFile(romFiles.basic)
	if err != nil {
		return c64.ROMImages{}, err
	}
	kernal, err := os.ReadFile(romFiles.kernal)
	if err != nil {
		return c64.ROMImages{}, err
	}
	chargen, err := os.ReadFile(romFiles.chargen)
	if err != nil {
		return c64.ROMImages{}, err
	}
	return c64.ROMImages{Basic: basic, Kernal: kernal, Chargen: chargen}, nil
}

func loadImage(path string) (inject.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return inject.Image{}, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".prg":
		return inject.LoadPRG(data)
	case ".t64":
		return inject.LoadT64(data)
	default:
		return inject.Image{}, fmt.Errorf("unsupported program file: %s", path)
	}
}

func main() {
	zoom := flag.Int("zoom", 2, "window scale factor")
	flag.Parse()
	programs := flag.Args()

	roms, err := loadROMs()
	if err != nil {
		log.Println("error:", err)
		os.Exit(1)
	}

	sys, err := c64.New(roms)
	if err != nil {
		log.Println("error:", err)
		os.Exit(1)
	}

	for _, path := range programs {
		img, err := loadImage(path)
		if err != nil {
			log.Println("error loading", path, ":", err)
			continue
		}
		sys.Injector.Add(img)
	}

	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		log.Println("error:", err)
		os.Exit(1)
	}
	defer sdl.Quit()

	front, err := newFrontend(sys, *zoom)
	if err != nil {
		log.Println("error:", err)
		os.Exit(1)
	}
	defer front.close()

	front.run()
}

// frontend owns the SDL window/renderer/texture and drives the run-slice
// loop described in section 5: each iteration runs a bounded cycle
// budget, then drains host events and redraws from a snapshot.
type frontend struct {
	sys *c64.System

	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	pixels   []byte

	dumpCount int
	running   bool
}

func newFrontend(sys *c64.System, zoom int) (*frontend, error) {
	if zoom < 1 {
		zoom = 1
	}
	w, h := int32(nativeWidth*zoom), int32(nativeHeight*zoom)

	window, err := sdl.CreateWindow("retroc64", sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED, w, h, sdl.WINDOW_SHOWN)
	if err != nil {
		return nil, err
	}
	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		window.Destroy()
		return nil, err
	}
	texture, err := renderer.CreateTexture(uint32(sdl.PIXELFORMAT_ABGR8888), sdl.TEXTUREACCESS_STREAMING, nativeWidth, nativeHeight)
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		return nil, err
	}

	return &frontend{
		sys:      sys,
		window:   window,
		renderer: renderer,
		texture:  texture,
		pixels:   make([]byte, nativeWidth*nativeHeight*4),
		running:  true,
	}, nil
}

func (f *frontend) close() {
	f.texture.Destroy()
	f.renderer.Destroy()
	f.window.Destroy()
}

func (f *frontend) run() {
	for f.running {
		f.sys.Run(cyclesPerSlice)
		f.pollEvents()
		if err := f.draw(); err != nil {
			log.Println("render error:", err)
		}
	}
}

func (f *frontend) pollEvents() {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			f.running = false
		case *sdl.KeyboardEvent:
			f.handleKey(e)
		}
	}
}

func (f *frontend) handleKey(e *sdl.KeyboardEvent) {
	switch e.Keysym.Sym {
	case sdl.K_PAUSE:
		if e.State == sdl.PRESSED {
			f.sys.TriggerRestore()
		}
		return
	case sdl.K_F9:
		if e.State == sdl.PRESSED {
			f.sys.InjectNext()
		}
		return
	case sdl.K_F10:
		if e.State == sdl.PRESSED {
			f.dumpHistory()
		}
		return
	case sdl.K_F11:
		if e.State == sdl.PRESSED {
			f.sys.Reset()
		}
		return
	case sdl.K_F12:
		if e.State == sdl.PRESSED {
			f.dumpRAM()
		}
		return
	}

	name, ok := keyNameFor(e.Keysym.Sym)
	if !ok {
		return
	}
	if e.State == sdl.PRESSED {
		f.sys.Keyboard.Press(name)
	} else {
		f.sys.Keyboard.Release(name)
	}
}

func (f *frontend) dumpHistory() {
	for _, pc := range f.sys.DisassemblyHistory() {
		fmt.Print(disassembler.DisassembleMemory(f.sys.Bus, int(pc), 1))
	}
}

func (f *frontend) dumpRAM() {
	f.dumpCount++
	name := fmt.Sprintf("dump-%d.dat", f.dumpCount)
	if err := os.WriteFile(name, f.sys.DumpRAM(), 0o644); err != nil {
		log.Println("dump error:", err)
	}
}

// draw fills every pixel with palette entry 0 (converted to RGBA) and
// presents it. It does not read the VIC-II registers, screen memory or
// Color RAM, so no C64 graphics appear; it exercises the texture and
// renderer path end to end.
func (f *frontend) draw() error {
	for i := 0; i < nativeWidth*nativeHeight; i++ {
		color := c64.C64Colors[0]
		off := i * 4
		f.pixels[off+0] = byte(color >> 16)
		f.pixels[off+1] = byte(color >> 8)
		f.pixels[off+2] = byte(color)
		f.pixels[off+3] = 0xFF
	}

	if err := f.texture.Update(nil, unsafe.Pointer(&f.pixels[0]), nativeWidth*4); err != nil {
		return err
	}
	if err := f.renderer.Clear(); err != nil {
		return err
	}
	if err := f.renderer.Copy(f.texture, nil, nil); err != nil {
		return err
	}
	f.renderer.Present()
	return nil
}

// keyNameFor maps an SDL keycode to a keyboard-matrix key name, following
// the common VICE-style physical-to-C64 layout (Esc->RUN/STOP, the
// Windows/Super key->Commodore, backquote->the C64's left-arrow key).
func keyNameFor(sym sdl.Keycode) (string, bool) {
	if name, ok := letterKeys[sym]; ok {
		return name, true
	}
	if name, ok := otherKeys[sym]; ok {
		return name, true
	}
	return "", false
}

var letterKeys = map[sdl.Keycode]string{
	sdl.K_a: "A", sdl.K_b: "B", sdl.K_c: "C", sdl.K_d: "D", sdl.K_e: "E",
	sdl.K_f: "F", sdl.K_g: "G", sdl.K_h: "H", sdl.K_i: "I", sdl.K_j: "J",
	sdl.K_k: "K", sdl.K_l: "L", sdl.K_m: "M", sdl.K_n: "N", sdl.K_o: "O",
	sdl.K_p: "P", sdl.K_q: "Q", sdl.K_r: "R", sdl.K_s: "S", sdl.K_t: "T",
	sdl.K_u: "U", sdl.K_v: "V", sdl.K_w: "W", sdl.K_x: "X", sdl.K_y: "Y",
	sdl.K_z: "Z",
	sdl.K_0: "0", sdl.K_1: "1", sdl.K_2: "2", sdl.K_3: "3", sdl.K_4: "4",
	sdl.K_5: "5", sdl.K_6: "6", sdl.K_7: "7", sdl.K_8: "8", sdl.K_9: "9",
}

var otherKeys = map[sdl.Keycode]string{
	sdl.K_BACKSPACE: "DELETE",
	sdl.K_RETURN:    "RETURN",
	sdl.K_LEFT:      "CURSOR_LR",
	sdl.K_RIGHT:     "CURSOR_LR",
	sdl.K_UP:        "CURSOR_UD",
	sdl.K_DOWN:      "CURSOR_UD",
	sdl.K_F1:        "F1",
	sdl.K_F3:        "F3",
	sdl.K_F5:        "F5",
	sdl.K_F7:        "F7",
	sdl.K_LSHIFT:    "LSHIFT",
	sdl.K_RSHIFT:    "RSHIFT",
	sdl.K_LCTRL:     "CTRL",
	sdl.K_SPACE:     "SPACE",
	sdl.K_LGUI:      "COMMODORE",
	sdl.K_RGUI:      "COMMODORE",
	sdl.K_ESCAPE:    "RUNSTOP",
	sdl.K_BACKQUOTE: "LEFTARROW",
	sdl.K_HOME:      "HOME",
	sdl.K_EQUALS:    "=",
	sdl.K_MINUS:     "-",
	sdl.K_PERIOD:    ".",
	sdl.K_COMMA:     ",",
	sdl.K_SLASH:     "/",
	sdl.K_SEMICOLON: ":",
	sdl.K_QUOTE:     "@",
	sdl.K_KP_PLUS:     "+",
	sdl.K_KP_MULTIPLY: "*",
}
