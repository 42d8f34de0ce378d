package headlessterm

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// SixelImage represents a decoded Sixel image.
type SixelImage struct {
	Width       uint32
	Height      uint32
	Data        []byte // RGBA pixel data
	Transparent bool   // Whether background is transparent
}

// sixelPaletteSize is the 1024-entry palette spec §4.3 calls for (VT340
// compatible): entries 1-16 fixed, 17-232 a 6x6x6 cube, 233-256 a 24-step
// grayscale ramp, the remainder (257-1023) white, entry 0 the caller's
// background color.
const sixelPaletteSize = 1024

// sixelMaxDimension bounds the buffer-growth-by-doubling policy (spec
// §4.3: "double both dimensions ... or a configured max is reached
// (4096x4096)").
const sixelMaxDimension = 4096

// sixelParser handles parsing of Sixel data.
type sixelParser struct {
	palette     [sixelPaletteSize]color.RGBA
	colorIndex  int
	x, y        int
	maxX, maxY  int
	width       int
	height      int
	buf         []color.RGBA // width*height, row-major; grows by doubling
	transparent bool
}

// ParseSixel parses Sixel data and returns an RGBA image.
// params contains the DCS parameters (P1;P2;P3).
// data contains the raw Sixel bytes after 'q'.
func ParseSixel(params []int64, data []byte) (*SixelImage, error) {
	p := &sixelParser{colorIndex: 0, width: 1, height: 1}
	p.buf = make([]color.RGBA, 1)
	p.initDefaultPalette()

	// P1: pixel aspect ratio numerator (ignored)
	// P2: background select (0=device default, 1=no change, 2=set to color 0)
	// P3: horizontal grid size (ignored)
	if len(params) >= 2 && params[1] == 1 {
		p.transparent = true
	}

	p.parse(data)
	return p.toImage(), nil
}

// initDefaultPalette builds the 1024-entry VT340-compatible palette (spec
// §4.3). Entries 1-16 are the fixed VT340 palette, 17-232 a 6x6x6 RGB
// cube (step 51 per channel), 233-256 a 24-step grayscale ramp (11*i per
// channel), and the remainder white. Entry 0 is left for the caller's
// background color.
func (p *sixelParser) initDefaultPalette() {
	vt340 := []color.RGBA{
		{0, 0, 0, 255},       // 1: Black
		{51, 51, 204, 255},   // 2: Blue
		{204, 33, 33, 255},   // 3: Red
		{51, 204, 51, 255},   // 4: Green
		{204, 51, 204, 255},  // 5: Magenta
		{51, 204, 204, 255},  // 6: Cyan
		{204, 204, 51, 255},  // 7: Yellow
		{135, 135, 135, 255}, // 8: Gray 50%
		{66, 66, 66, 255},    // 9: Gray 25%
		{84, 84, 153, 255},   // 10: Light blue
		{153, 66, 66, 255},   // 11: Light red
		{84, 153, 84, 255},   // 12: Light green
		{153, 84, 153, 255},  // 13: Light magenta
		{84, 153, 153, 255},  // 14: Light cyan
		{153, 153, 84, 255},  // 15: Light yellow
		{204, 204, 204, 255}, // 16: Gray 75%
	}
	copy(p.palette[1:17], vt340)

	i := 17
	for r := 0; r < 6 && i < 233; r++ {
		for g := 0; g < 6 && i < 233; g++ {
			for b := 0; b < 6 && i < 233; b++ {
				p.palette[i] = color.RGBA{R: uint8(r * 51), G: uint8(g * 51), B: uint8(b * 51), A: 255}
				i++
			}
		}
	}
	for j := 0; j < 24 && (233+j) < 257; j++ {
		v := uint8(11 * j)
		p.palette[233+j] = color.RGBA{R: v, G: v, B: v, A: 255}
	}
	for k := 257; k < sixelPaletteSize; k++ {
		p.palette[k] = color.RGBA{255, 255, 255, 255}
	}
}

// parse processes the sixel byte stream.
func (p *sixelParser) parse(data []byte) {
	i := 0
	for i < len(data) {
		b := data[i]
		i++

		switch {
		case b == '$': // DECGCR: carriage return within the current band
			p.x = 0

		case b == '-': // DECGNL: next band, y += 6
			p.x = 0
			p.y += 6

		case b == '!': // DECGRI: repeat introducer
			count, newI := p.parseNumber(data, i)
			i = newI
			if i < len(data) {
				sixel := data[i]
				i++
				if sixel >= '?' && sixel <= '~' {
					p.drawSixel(sixel, int(count))
				}
			}

		case b == '#': // DECGCI: color introducer/selector
			colorNum, newI := p.parseNumber(data, i)
			i = newI

			args := []int64{colorNum}
			for i < len(data) && data[i] == ';' {
				i++
				v, newI := p.parseNumber(data, i)
				i = newI
				args = append(args, v)
			}

			if len(args) >= 5 {
				idx, kind, v1, v2, v3 := args[0], args[1], args[2], args[3], args[4]
				if idx >= 0 && idx < sixelPaletteSize {
					if kind == 1 {
						p.palette[idx] = hlsToRGB(int(v1), int(v2), int(v3))
					} else {
						p.palette[idx] = color.RGBA{
							R: uint8(v1 * 255 / 100),
							G: uint8(v2 * 255 / 100),
							B: uint8(v3 * 255 / 100),
							A: 255,
						}
					}
				}
			}
			if colorNum >= 0 && colorNum < sixelPaletteSize {
				p.colorIndex = int(colorNum)
			}

		case b >= '?' && b <= '~':
			p.drawSixel(b, 1)

		case b == '"': // DECGRA: raster attributes Pan;Pad;Ph;Pv
			var nums []int64
			for len(nums) < 4 && i <= len(data) {
				if i < len(data) && data[i] >= '0' && data[i] <= '9' {
					v, newI := p.parseNumber(data, i)
					i = newI
					nums = append(nums, v)
				} else if i < len(data) && data[i] == ';' {
					i++
				} else {
					break
				}
			}
			if len(nums) >= 4 {
				ph, pv := int(nums[2]), int(nums[3])
				p.ensureSize(ph, pv)
			}
		}
	}
}

func (p *sixelParser) parseNumber(data []byte, i int) (int64, int) {
	var n int64
	for i < len(data) && data[i] >= '0' && data[i] <= '9' {
		n = n*10 + int64(data[i]-'0')
		i++
	}
	return n, i
}

// ensureSize grows the backing buffer by repeated doubling until (w,h)
// fits or sixelMaxDimension is reached (spec §4.3 "Buffer growth").
func (p *sixelParser) ensureSize(w, h int) {
	if w > sixelMaxDimension {
		w = sixelMaxDimension
	}
	if h > sixelMaxDimension {
		h = sixelMaxDimension
	}
	newW, newH := p.width, p.height
	for newW < w && newW < sixelMaxDimension {
		newW *= 2
	}
	for newH < h && newH < sixelMaxDimension {
		newH *= 2
	}
	if newW == p.width && newH == p.height {
		return
	}
	p.resize(newW, newH)
}

func (p *sixelParser) resize(newW, newH int) {
	newBuf := make([]color.RGBA, newW*newH)
	for y := 0; y < p.height; y++ {
		copy(newBuf[y*newW:y*newW+p.width], p.buf[y*p.width:(y+1)*p.width])
	}
	p.buf = newBuf
	p.width = newW
	p.height = newH
}

// drawSixel draws a sixel character at the current position, growing the
// buffer by doubling if the write position falls outside it.
func (p *sixelParser) drawSixel(b byte, count int) {
	if count <= 0 {
		count = 1
	}
	bits := b - '?'
	c := p.palette[p.colorIndex]

	for r := 0; r < count; r++ {
		if p.x+1 > p.width || p.y+6 > p.height {
			p.ensureSize(p.x+1, p.y+6)
		}
		for bit := 0; bit < 6; bit++ {
			if bits&(1<<bit) != 0 {
				py := p.y + bit
				px := p.x
				if px < p.width && py < p.height {
					p.buf[py*p.width+px] = c
					if px > p.maxX {
						p.maxX = px
					}
					if py > p.maxY {
						p.maxY = py
					}
				}
			}
		}
		p.x++
	}
}

// toImage converts the parsed pixel buffer to a tightly cropped RGBA image,
// padded with the background color to the touched extent (spec §4.3
// "On finalization ... padded with background").
func (p *sixelParser) toImage() *SixelImage {
	if p.maxX == 0 && p.maxY == 0 && len(p.buf) <= 1 {
		return &SixelImage{}
	}

	width := uint32(p.maxX + 1)
	height := uint32(p.maxY + 1)
	data := make([]byte, width*height*4)

	bg := p.palette[0]
	for row := uint32(0); row < height; row++ {
		for col := uint32(0); col < width; col++ {
			off := (row*width + col) * 4
			var c color.RGBA
			if int(row) < p.height && int(col) < p.width {
				c = p.buf[int(row)*p.width+int(col)]
			}
			if c.A == 0 && !p.transparent {
				c = bg
			}
			data[off+0] = c.R
			data[off+1] = c.G
			data[off+2] = c.B
			if p.transparent && c == (color.RGBA{}) {
				data[off+3] = 0
			} else {
				data[off+3] = 255
			}
		}
	}

	return &SixelImage{Width: width, Height: height, Data: data, Transparent: p.transparent}
}

// hlsToRGB converts Sixel's non-standard HLS (hue in degrees with
// blue=0/red=120/green=240, lightness/saturation 0-100) to RGB, using
// go-colorful's verified HSL math rather than a hand-rolled conversion.
func hlsToRGB(h, l, s int) color.RGBA {
	hue := float64((h+240)%360) // rotate sixel's blue-origin wheel to red-origin
	lightness := float64(l) / 100.0
	saturation := float64(s) / 100.0

	c := colorful.Hsl(hue, saturation, lightness)
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
