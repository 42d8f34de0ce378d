package headlessterm

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/draw"
	"strconv"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// iTerm2 inline image protocol (OSC 1337 ; File = args : base64 ST).
// The stream filter captures the whole payload and hands it here; the
// SetUserVar= form of OSC 1337 stays with the decoder's own dispatch.

// InlineImage is one decoded OSC 1337 File payload, sized per the
// protocol's width/height arguments (cells, px, or % of the screen) and
// optionally cropped.
type InlineImage struct {
	Name        string // decoded name= argument, usable as a cache key
	Cols, Rows  int    // placement size in cells
	PixelWidth  int
	PixelHeight int
	PreserveAspectRatio bool

	// Crop window in source pixels; zero width/height means uncropped.
	// Negative width/height carry cropRight/cropBottom (measured from the
	// far edge), resolved against the decoded image size at placement.
	CropX, CropY, CropW, CropH int

	Data []byte // RGBA pixels, row-major
}

// ParseInlineImage decodes the portion after "1337;File=": a ;-separated
// key=value list, a ':', and the base64 payload. Dimension arguments
// follow the iTerm2 units: a bare number is cells, "px" suffix pixels,
// "%" suffix a percentage of the screen dimension.
func ParseInlineImage(body []byte, cols, rows, cellW, cellH int) (*InlineImage, error) {
	sep := bytes.IndexByte(body, ':')
	if sep < 0 {
		return nil, fmt.Errorf("inline image: no payload")
	}
	args, payload := string(body[:sep]), body[sep+1:]

	img := &InlineImage{PreserveAspectRatio: true}
	for _, kv := range strings.Split(args, ";") {
		if kv == "" {
			continue
		}
		key, val, _ := strings.Cut(kv, "=")
		num, unit := splitUnit(val)
		switch key {
		case "name":
			if decoded, err := base64.StdEncoding.DecodeString(val); err == nil {
				img.Name = string(decoded)
			}
		case "width":
			img.Cols, img.PixelWidth = resolveDimension(num, unit, cols, cellW)
		case "height":
			img.Rows, img.PixelHeight = resolveDimension(num, unit, rows, cellH)
		case "preserveAspectRatio":
			img.PreserveAspectRatio = num != 0
		case "cropX", "cropLeft":
			if unit == "px" {
				img.CropX = num
			}
		case "cropY", "cropTop":
			if unit == "px" {
				img.CropY = num
			}
		case "cropWidth":
			if unit == "px" {
				img.CropW = num
			}
		case "cropHeight":
			if unit == "px" {
				img.CropH = num
			}
		case "cropRight":
			if unit == "px" {
				img.CropW = -num
			}
		case "cropBottom":
			if unit == "px" {
				img.CropH = -num
			}
		}
		// size= and inline= are accepted and ignored, like the other
		// unknown keys: the payload length speaks for itself, and an
		// image that was not meant to display would not have been sent
		// through a terminal.
	}

	raw, err := base64.StdEncoding.DecodeString(strings.Map(dropBase64Noise, string(payload)))
	if err != nil {
		return nil, fmt.Errorf("inline image: base64: %w", err)
	}

	decoded, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("inline image: decode: %w", err)
	}

	bounds := decoded.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), decoded, bounds.Min, draw.Src)

	img.Data = rgba.Pix
	if img.Cols == 0 {
		img.Cols = (bounds.Dx()-1)/cellW + 1
	}
	if img.Rows == 0 {
		img.Rows = (bounds.Dy()-1)/cellH + 1
	}
	img.resolveCrop(bounds.Dx(), bounds.Dy())
	// The stored buffer always carries the decoded size; the width/height
	// arguments only chose the cell footprint above.
	img.PixelWidth = bounds.Dx()
	img.PixelHeight = bounds.Dy()
	return img, nil
}

// resolveCrop normalizes the crop window against the decoded size:
// negative extents count from the far edge, zero means "to the edge".
func (img *InlineImage) resolveCrop(w, h int) {
	if img.CropW < 0 {
		img.CropW = w - img.CropX + img.CropW
	}
	if img.CropH < 0 {
		img.CropH = h - img.CropY + img.CropH
	}
	if img.CropW <= 0 || img.CropX+img.CropW > w {
		img.CropW = w - img.CropX
	}
	if img.CropH <= 0 || img.CropY+img.CropH > h {
		img.CropH = h - img.CropY
	}
	if img.CropX < 0 {
		img.CropX = 0
	}
	if img.CropY < 0 {
		img.CropY = 0
	}
}

// splitUnit separates "120px" into (120, "px"); a bare number has unit "".
func splitUnit(val string) (int, string) {
	i := 0
	for i < len(val) && val[i] >= '0' && val[i] <= '9' {
		i++
	}
	n, _ := strconv.Atoi(val[:i])
	return n, val[i:]
}

// resolveDimension turns one width/height argument into (cells, pixels).
func resolveDimension(n int, unit string, screenCells, cellPx int) (cells, px int) {
	switch unit {
	case "px":
		if n <= 0 {
			return 0, 0
		}
		return (n-1)/cellPx + 1, n
	case "%":
		cells = screenCells * n / 100
		return cells, cells * cellPx
	default: // cells, or "auto" (n == 0)
		return n, n * cellPx
	}
}

func dropBase64Noise(r rune) rune {
	if r == '\r' || r == '\n' || r == ' ' {
		return -1
	}
	return r
}

// handleInlineImage places one captured OSC 1337 File payload at the
// cursor: the image is stored, older placements under the covered cells
// are destroyed (images die on overwrite), the cells gain references, and
// the cursor advances below the image the way the sixel path does.
func (t *Terminal) handleInlineImage(seq []byte) {
	if !t.inlineImagesEnabled {
		return
	}

	body := seq[2+len(inlineImagePrefix):]
	cellW, cellH := t.getCellSizePixels()
	t.mu.RLock()
	cols, rows := t.cols, t.rows
	t.mu.RUnlock()

	img, err := ParseInlineImage(body, cols, rows, cellW, cellH)
	if err != nil || img.PixelWidth == 0 || img.PixelHeight == 0 {
		return
	}

	imageID := t.images.Store(uint32(img.PixelWidth), uint32(img.PixelHeight), img.Data)

	t.mu.Lock()
	curRow := t.cursor.Row
	curCol := t.cursor.Col
	t.mu.Unlock()

	placement := &ImagePlacement{
		ImageID: imageID,
		Row:     curRow,
		Col:     curCol,
		Cols:    img.Cols,
		Rows:    img.Rows,
		SrcX:    uint32(img.CropX),
		SrcY:    uint32(img.CropY),
		SrcW:    uint32(img.CropW),
		SrcH:    uint32(img.CropH),
		ZIndex:  0,
	}

	t.images.DeletePlacementsInRect(curRow, curCol, img.Rows, img.Cols)
	placementID := t.images.Place(placement)
	t.assignImageToCells(imageID, placementID, placement, uint32(img.PixelWidth), uint32(img.PixelHeight), cellW, cellH)

	t.mu.Lock()
	t.cursor.Row += img.Rows
	if t.cursor.Row >= t.rows {
		t.cursor.Row = t.rows - 1
	}
	t.mu.Unlock()
}
