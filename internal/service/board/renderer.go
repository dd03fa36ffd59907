package board

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/park285/cheese-board/internal/rules"
)

type RenderOptions struct {
	Selected *rules.Position
	Targets  []rules.Position
	Check    *rules.Position
	Header   string
	Turn     string
}

type Renderer interface {
	RenderPNG(ctx context.Context, snap rules.Snapshot, opts RenderOptions) ([]byte, error)
}

type pngRenderer struct {
	face font.Face
}

func NewRenderer() Renderer {
	return &pngRenderer{face: basicfont.Face7x13}
}

const (
	squareSize    = 64
	boardSize     = squareSize * rules.Size
	sideMargin    = 28
	topMargin     = 96
	bottomMargin  = 28
	titleHeight   = 32
	turnHeight    = 26
	panelGap      = 10
	gapToBoard    = 16
	panelRadius   = 10
	panelPaddingX = 18
	titleMinWidth = 220
	turnMinWidth  = 120
	shadowOffsetY = 5
)

var (
	lightSquare    = color.RGBA{233, 207, 163, 255}
	darkSquare     = color.RGBA{187, 136, 96, 255}
	selectedFill   = color.NRGBA{R: 255, G: 228, B: 120, A: 150}
	targetDot      = color.NRGBA{R: 40, G: 40, B: 40, A: 110}
	captureFill    = color.NRGBA{R: 214, G: 80, B: 64, A: 110}
	checkFill      = color.NRGBA{R: 230, G: 40, B: 40, A: 150}
	hudPanelColor  = color.NRGBA{R: 28, G: 31, B: 46, A: 250}
	hudTurnColor   = color.NRGBA{R: 32, G: 35, B: 52, A: 245}
	hudShadowColor = color.NRGBA{0, 0, 0, 50}
	hudTextPrimary = color.NRGBA{R: 236, G: 239, B: 255, A: 255}
	hudTextTurn    = color.NRGBA{R: 204, G: 210, B: 236, A: 255}
	coordinateText = color.NRGBA{R: 8, G: 160, B: 96, A: 255}
	backgroundFill = color.RGBA{245, 242, 236, 255}
)

func (r *pngRenderer) RenderPNG(ctx context.Context, snap rules.Snapshot, opts RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	totalWidth := boardSize + sideMargin*2
	totalHeight := boardSize + topMargin + bottomMargin
	origin := image.Point{X: sideMargin, Y: topMargin}
	boardRect := image.Rect(origin.X, origin.Y, origin.X+boardSize, origin.Y+boardSize)

	img := image.NewRGBA(image.Rect(0, 0, totalWidth, totalHeight))
	imagedraw.Draw(img, img.Bounds(), image.NewUniform(backgroundFill), image.Point{}, imagedraw.Src)

	r.drawHUD(img, opts, boardRect)
	drawSquares(img, origin)
	if opts.Check != nil {
		drawSquareOverlay(img, *opts.Check, origin, checkFill)
	}
	if opts.Selected != nil {
		drawSquareOverlay(img, *opts.Selected, origin, selectedFill)
	}
	if err := drawPieces(img, snap, origin); err != nil {
		return nil, err
	}
	drawTargets(img, snap, opts.Targets, origin)
	r.drawCoordinates(img, origin)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// squareRect maps a board position to pixels. Row 7 is drawn at the top.
func squareRect(pos rules.Position, origin image.Point) image.Rectangle {
	x := origin.X + pos.Col*squareSize
	y := origin.Y + (rules.Size-1-pos.Row)*squareSize
	return image.Rect(x, y, x+squareSize, y+squareSize)
}

func drawSquares(dst imagedraw.Image, origin image.Point) {
	for row := 0; row < rules.Size; row++ {
		for col := 0; col < rules.Size; col++ {
			clr := lightSquare
			if (row+col)%2 == 0 {
				clr = darkSquare
			}
			rect := squareRect(rules.Position{Row: row, Col: col}, origin)
			imagedraw.Draw(dst, rect, image.NewUniform(clr), image.Point{}, imagedraw.Src)
		}
	}
}

func drawPieces(dst imagedraw.Image, snap rules.Snapshot, origin image.Point) error {
	for row := 0; row < rules.Size; row++ {
		for col := 0; col < rules.Size; col++ {
			pos := rules.Position{Row: row, Col: col}
			sq, _ := snap.At(pos)
			if sq.Kind() == rules.Empty || sq.Kind() == rules.Invalid {
				continue
			}
			glyph, err := renderGlyph(sq.Kind(), sq.Owner(), squareSize)
			if err != nil {
				return err
			}
			imagedraw.Draw(dst, squareRect(pos, origin), glyph, image.Point{}, imagedraw.Over)
		}
	}
	return nil
}

// drawTargets marks quiet destinations with a dot and captures with a tinted square.
func drawTargets(img *image.RGBA, snap rules.Snapshot, targets []rules.Position, origin image.Point) {
	for _, pos := range targets {
		if !pos.Valid() {
			continue
		}
		if snap.IsEmpty(pos) {
			rect := squareRect(pos, origin)
			center := image.Pt(rect.Min.X+squareSize/2, rect.Min.Y+squareSize/2)
			drawDisc(img, center, squareSize/7, targetDot)
			continue
		}
		drawSquareOverlay(img, pos, origin, captureFill)
	}
}

func drawSquareOverlay(img *image.RGBA, pos rules.Position, origin image.Point, clr color.Color) {
	if img == nil || !pos.Valid() {
		return
	}
	imagedraw.Draw(img, squareRect(pos, origin), image.NewUniform(clr), image.Point{}, imagedraw.Over)
}

func (r *pngRenderer) drawHUD(img *image.RGBA, opts RenderOptions, boardRect image.Rectangle) {
	drawer := &font.Drawer{Dst: img, Face: r.face}

	title := strings.TrimSpace(opts.Header)
	if title == "" {
		title = "cheese-board"
	}
	turn := strings.TrimSpace(opts.Turn)
	if turn == "" {
		turn = "Turn"
	}

	turnBottom := boardRect.Min.Y - gapToBoard
	turnTop := turnBottom - turnHeight
	titleBottom := turnTop - panelGap
	titleTop := titleBottom - titleHeight

	titleWidth := max(titleMinWidth, drawer.MeasureString(title).Round()+panelPaddingX*2)
	titleWidth = min(titleWidth, boardRect.Dx())
	turnWidth := max(turnMinWidth, drawer.MeasureString(turn).Round()+panelPaddingX*2)
	turnWidth = min(turnWidth, boardRect.Dx()-40)

	titleRect := image.Rect(boardRect.Min.X, titleTop, boardRect.Min.X+titleWidth, titleBottom)
	turnLeft := boardRect.Min.X + (boardRect.Dx()-turnWidth)/2
	turnRect := image.Rect(turnLeft, turnTop, turnLeft+turnWidth, turnBottom)

	drawRoundedPanel(img, titleRect.Add(image.Pt(0, shadowOffsetY)), panelRadius, hudShadowColor)
	drawRoundedPanel(img, turnRect.Add(image.Pt(0, shadowOffsetY)), panelRadius, hudShadowColor)
	drawRoundedPanel(img, titleRect, panelRadius, hudPanelColor)
	drawRoundedPanel(img, turnRect, panelRadius, hudTurnColor)

	title = truncateWithEllipsis(r.face, title, titleRect.Dx()-panelPaddingX*2)
	turn = truncateWithEllipsis(r.face, turn, turnRect.Dx()-panelPaddingX*2)
	drawCenteredString(drawer, titleRect, title, hudTextPrimary)
	drawCenteredString(drawer, turnRect, turn, hudTextTurn)
}

func (r *pngRenderer) drawCoordinates(dst imagedraw.Image, origin image.Point) {
	drawer := &font.Drawer{Dst: dst, Face: r.face, Src: image.NewUniform(coordinateText)}
	ascent := r.face.Metrics().Ascent.Ceil()
	boardEndY := origin.Y + boardSize

	for i := 0; i < rules.Size; i++ {
		rankLabel := string(rune('1' + i))
		rankCenter := origin.Y + (rules.Size-1-i)*squareSize + squareSize/2
		drawCenteredText(drawer, rankLabel, origin.X-sideMargin/2, rankCenter+ascent/2)

		fileLabel := string(rune('a' + i))
		fileCenter := origin.X + i*squareSize + squareSize/2
		drawCenteredText(drawer, fileLabel, fileCenter, boardEndY+ascent+4)
	}
}

func truncateWithEllipsis(face font.Face, text string, maxWidth int) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || maxWidth <= 0 || face == nil {
		return trimmed
	}
	drawer := font.Drawer{Face: face}
	if drawer.MeasureString(trimmed).Round() <= maxWidth {
		return trimmed
	}
	const ellipsis = "..."
	if drawer.MeasureString(ellipsis).Round() > maxWidth {
		return ""
	}
	runes := []rune(trimmed)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + ellipsis
		if drawer.MeasureString(candidate).Round() <= maxWidth {
			return candidate
		}
	}
	return ellipsis
}

func drawRoundedPanel(img *image.RGBA, rect image.Rectangle, radius int, clr color.Color) {
	if img == nil || rect.Empty() {
		return
	}
	radius = max(0, min(radius, rect.Dx()/2, rect.Dy()/2))
	fill := image.NewUniform(clr)
	if radius == 0 {
		imagedraw.Draw(img, rect, fill, image.Point{}, imagedraw.Over)
		return
	}

	// 가운데 세로 띠 + 좌우 띠 + 네 모서리 원
	core := image.Rect(rect.Min.X+radius, rect.Min.Y, rect.Max.X-radius, rect.Max.Y)
	if core.Dx() > 0 {
		imagedraw.Draw(img, core, fill, image.Point{}, imagedraw.Over)
	}
	left := image.Rect(rect.Min.X, rect.Min.Y+radius, rect.Min.X+radius, rect.Max.Y-radius)
	if left.Dy() > 0 {
		imagedraw.Draw(img, left, fill, image.Point{}, imagedraw.Over)
	}
	right := image.Rect(rect.Max.X-radius, rect.Min.Y+radius, rect.Max.X, rect.Max.Y-radius)
	if right.Dy() > 0 {
		imagedraw.Draw(img, right, fill, image.Point{}, imagedraw.Over)
	}
	corners := []image.Point{
		{rect.Min.X + radius, rect.Min.Y + radius},
		{rect.Max.X - radius - 1, rect.Min.Y + radius},
		{rect.Min.X + radius, rect.Max.Y - radius - 1},
		{rect.Max.X - radius - 1, rect.Max.Y - radius - 1},
	}
	for _, center := range corners {
		drawQuarterDisc(img, center, radius, clr, rect)
	}
}

// drawQuarterDisc fills the disc around center but only the part outside the
// already painted bands, so translucent panels are not blended twice.
func drawQuarterDisc(img *image.RGBA, center image.Point, radius int, clr color.Color, rect image.Rectangle) {
	inner := image.Rect(rect.Min.X+radius, rect.Min.Y, rect.Max.X-radius, rect.Max.Y)
	side := image.Rect(rect.Min.X, rect.Min.Y+radius, rect.Max.X, rect.Max.Y-radius)
	rSquared := radius * radius
	for y := -radius; y <= radius; y++ {
		for x := -radius; x <= radius; x++ {
			if x*x+y*y > rSquared {
				continue
			}
			p := image.Pt(center.X+x, center.Y+y)
			if !p.In(rect) || p.In(inner) || p.In(side) {
				continue
			}
			blendPixel(img, p.X, p.Y, clr)
		}
	}
}

func drawCenteredString(drawer *font.Drawer, rect image.Rectangle, text string, clr color.Color) {
	text = strings.TrimSpace(text)
	if drawer == nil || text == "" {
		return
	}
	metrics := drawer.Face.Metrics()
	width := drawer.MeasureString(text).Round()
	x := max(rect.Min.X, rect.Min.X+(rect.Dx()-width)/2)
	baseline := rect.Min.Y + (rect.Dy()+metrics.Ascent.Ceil()-metrics.Descent.Ceil())/2
	drawer.Src = image.NewUniform(clr)
	drawer.Dot = fixed.P(x, baseline)
	drawer.DrawString(text)
}

func drawCenteredText(drawer *font.Drawer, text string, centerX, baseline int) {
	if text == "" {
		return
	}
	width := drawer.MeasureString(text).Round()
	drawer.Dot = fixed.P(centerX-width/2, baseline)
	drawer.DrawString(text)
}

func drawDisc(img *image.RGBA, center image.Point, radius int, clr color.Color) {
	if radius <= 0 {
		blendPixel(img, center.X, center.Y, clr)
		return
	}
	rSquared := radius * radius
	for y := -radius; y <= radius; y++ {
		for x := -radius; x <= radius; x++ {
			if x*x+y*y <= rSquared {
				blendPixel(img, center.X+x, center.Y+y, clr)
			}
		}
	}
}

// blendPixel composites clr over the pixel at (x, y) using straight alpha.
func blendPixel(img *image.RGBA, x, y int, clr color.Color) {
	if img == nil || !(image.Point{X: x, Y: y}).In(img.Bounds()) {
		return
	}
	sr, sg, sb, sa := clr.RGBA()
	srcA := float64(sa) / 65535.0
	if srcA <= 0 {
		return
	}
	// RGBA() is alpha-premultiplied.
	srcR := float64(sr) / 65535.0 / srcA
	srcG := float64(sg) / 65535.0 / srcA
	srcB := float64(sb) / 65535.0 / srcA

	dst := img.RGBAAt(x, y)
	dstA := float64(dst.A) / 255.0
	var dstR, dstG, dstB float64
	if dstA > 0 {
		dstR = float64(dst.R) / 255.0 / dstA
		dstG = float64(dst.G) / 255.0 / dstA
		dstB = float64(dst.B) / 255.0 / dstA
	}

	outA := srcA + dstA*(1-srcA)
	if outA <= 0 {
		img.SetRGBA(x, y, color.RGBA{})
		return
	}
	outR := (srcR*srcA + dstR*dstA*(1-srcA)) / outA
	outG := (srcG*srcA + dstG*dstA*(1-srcA)) / outA
	outB := (srcB*srcA + dstB*dstA*(1-srcA)) / outA

	img.SetRGBA(x, y, color.RGBA{
		R: floatToUint8(outR * outA * 255.0),
		G: floatToUint8(outG * outA * 255.0),
		B: floatToUint8(outB * outA * 255.0),
		A: floatToUint8(outA * 255.0),
	})
}

func floatToUint8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
