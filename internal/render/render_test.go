package render

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farellandr/eventpass/internal/design"
	"github.com/farellandr/eventpass/internal/models"
)

var now = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func sampleDoc() design.Document {
	doc := design.NewDocument()
	doc.Background = design.Background{
		Gradient:    &design.Gradient{From: "#1e3a8a", To: "#9333ea", Angle: 135},
		TintColor:   "#000000",
		TintOpacity: 0.2,
	}
	name := design.DefaultElement(design.KindUserName, "el-1")
	event := design.DefaultElement(design.KindEventName, "el-2")
	event.Y = 80
	event.Rotation = -8
	qr := design.DefaultElement(design.KindQRCode, "el-3")
	qr.X, qr.Y = 440, 150
	qr.Width, qr.Height = 140, 140
	status := design.DefaultElement(design.KindStatus, "el-4")
	status.Y = 200
	rect := design.DefaultElement(design.KindRectangle, "el-5")
	rect.X, rect.Y, rect.Rotation, rect.BorderRadius = 250, 30, 30, 12
	circle := design.DefaultElement(design.KindCircle, "el-6")
	circle.X, circle.Y = 300, 180
	doc.Elements = []design.Element{rect, circle, name, event, qr, status}
	return doc
}

func sampleBindings() Bindings {
	b := SampleBindings(now)
	b.QRPayload = `{"eventId":"E1","participantName":"Jane Doe","email":"jane@example.com","pinCode":"482913","timestamp":1780000000000}`
	return b
}

func TestRender_Deterministic(t *testing.T) {
	r := NewRenderer(nil)
	ctx := context.Background()

	first, err := r.RenderPNG(ctx, sampleDoc(), sampleBindings(), ModeFinal)
	require.NoError(t, err)
	second, err := r.RenderPNG(ctx, sampleDoc(), sampleBindings(), ModeFinal)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(first, second), "same inputs must give identical bytes")

	img, err := png.Decode(bytes.NewReader(first))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 600, 300), img.Bounds())
}

func transparentCanvas(w, h int, els ...design.Element) design.Document {
	return design.Document{
		CanvasSize: design.Size{Width: w, Height: h},
		Background: design.Background{Color: "transparent"},
		Elements:   els,
	}
}

func TestRender_RotatedRectangleStaysNearItsBox(t *testing.T) {
	rect := design.Element{
		ID: "r", Kind: design.KindRectangle,
		X: 10, Y: 10, Width: 100, Height: 50, Rotation: 45,
		BackgroundColor: "#ff0000",
	}
	img, err := NewRenderer(nil).Render(context.Background(), transparentCanvas(400, 300, rect), Bindings{}, ModePreview)
	require.NoError(t, err)

	for y := 0; y < 300; y++ {
		for x := 0; x < 400; x++ {
			if img.NRGBAAt(x, y).A == 0 {
				continue
			}
			require.True(t, x >= 4 && x <= 116 && y >= 0 && y <= 91, "painted pixel at %d,%d", x, y)
		}
	}

	// centre is covered, rotation is clockwise
	assert.Equal(t, color.NRGBA{R: 0xff, A: 0xff}, img.NRGBAAt(60, 35))
	assert.NotZero(t, img.NRGBAAt(105, 50).A)
	assert.Zero(t, img.NRGBAAt(15, 58).A)
}

func TestRender_FinalQRMatchesPayload(t *testing.T) {
	const payload = "hello"
	bitmap, err := QRBitmap(payload)
	require.NoError(t, err)
	n := len(bitmap)

	qr := design.Element{ID: "q", Kind: design.KindQRCode, Width: float64(n * 4), Height: float64(n * 4), Color: "#000000", BackgroundColor: "#ffffff"}
	img, err := NewRenderer(nil).Render(context.Background(), transparentCanvas(n*4, n*4, qr), Bindings{QRPayload: payload}, ModeFinal)
	require.NoError(t, err)

	for y, row := range bitmap {
		for x, dark := range row {
			px := img.NRGBAAt(x*4+2, y*4+2)
			if dark {
				require.Equal(t, color.NRGBA{A: 0xff}, px, "module %d,%d", x, y)
			} else {
				require.Equal(t, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, px, "module %d,%d", x, y)
			}
		}
	}
}

func TestRender_FinalQRRequiresPayload(t *testing.T) {
	r := NewRenderer(nil)
	doc := transparentCanvas(200, 200, design.DefaultElement(design.KindQRCode, "q"))

	_, err := r.Render(context.Background(), doc, Bindings{}, ModeFinal)
	assert.ErrorIs(t, err, ErrMissingQRPayload)

	preview, err := r.Render(context.Background(), doc, Bindings{}, ModePreview)
	require.NoError(t, err)
	assert.NotZero(t, preview.NRGBAAt(80, 80).A)
}

func TestRender_QRTooSmallForPayload(t *testing.T) {
	qr := design.DefaultElement(design.KindQRCode, "q")
	qr.Width, qr.Height = 24, 24
	_, err := NewRenderer(nil).Render(context.Background(), transparentCanvas(100, 100, qr), sampleBindings(), ModeFinal)
	assert.ErrorIs(t, err, ErrQRTooSmall)
}

func TestRender_PreviewQRIsNotTheRealCode(t *testing.T) {
	r := NewRenderer(nil)
	doc := transparentCanvas(200, 200, design.DefaultElement(design.KindQRCode, "q"))
	b := sampleBindings()

	final, err := r.RenderPNG(context.Background(), doc, b, ModeFinal)
	require.NoError(t, err)
	preview, err := r.RenderPNG(context.Background(), doc, b, ModePreview)
	require.NoError(t, err)
	assert.False(t, bytes.Equal(final, preview))
}

func TestRender_TextStaysInsideBox(t *testing.T) {
	el := design.DefaultElement(design.KindText, "t")
	el.Content = "A very long line of text that cannot possibly fit inside the box"
	el.X, el.Y, el.Width, el.Height = 50, 50, 100, 40
	img, err := NewRenderer(nil).Render(context.Background(), transparentCanvas(300, 200, el), Bindings{}, ModePreview)
	require.NoError(t, err)

	painted := 0
	for y := 0; y < 200; y++ {
		for x := 0; x < 300; x++ {
			if img.NRGBAAt(x, y).A == 0 {
				continue
			}
			painted++
			require.True(t, x >= 50 && x < 150 && y >= 50 && y < 90, "text leaked to %d,%d", x, y)
		}
	}
	assert.Positive(t, painted)
}

func TestRender_GradientRunsAlongAngle(t *testing.T) {
	doc := design.Document{
		CanvasSize: design.Size{Width: 100, Height: 30},
		Background: design.Background{Gradient: &design.Gradient{From: "#ff0000", To: "#0000ff", Angle: 90}},
	}
	img, err := NewRenderer(nil).Render(context.Background(), doc, Bindings{}, ModePreview)
	require.NoError(t, err)

	left, right := img.NRGBAAt(0, 15), img.NRGBAAt(99, 15)
	assert.Greater(t, left.R, uint8(0xf0))
	assert.Less(t, left.B, uint8(0x10))
	assert.Greater(t, right.B, uint8(0xf0))
	assert.Less(t, right.R, uint8(0x10))
}

func TestRender_RejectsInvalidDocument(t *testing.T) {
	doc := transparentCanvas(0, 100)
	_, err := NewRenderer(nil).Render(context.Background(), doc, Bindings{}, ModePreview)
	assert.ErrorIs(t, err, design.ErrInvalidDocument)
}

func greenPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+1], img.Pix[i+3] = 0xff, 0xff
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestRender_LogoFromDataURLAndHTTP(t *testing.T) {
	raw := greenPNG(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/logo.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(raw)
	}))
	defer srv.Close()

	r := NewRenderer(NewHTTPFetcher(2 * time.Second))
	for _, src := range []string{
		"data:image/png;base64," + base64.StdEncoding.EncodeToString(raw),
		srv.URL + "/logo.png",
	} {
		logo := design.DefaultElement(design.KindLogo, "l")
		logo.ImageURL = src
		img, err := r.Render(context.Background(), transparentCanvas(200, 200, logo), Bindings{}, ModeFinal)
		require.NoError(t, err, src)
		assert.Equal(t, color.NRGBA{G: 0xff, A: 0xff}, img.NRGBAAt(60, 60), src)
	}

	logo := design.DefaultElement(design.KindLogo, "l")
	logo.ImageURL = srv.URL + "/missing.png"
	_, err := r.Render(context.Background(), transparentCanvas(200, 200, logo), Bindings{}, ModeFinal)
	assert.ErrorIs(t, err, ErrAsset)
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "Valid", StatusLabel(models.TicketValid))
	assert.Equal(t, "Used", StatusLabel(models.TicketUsed))
	assert.Equal(t, "Deactivated", StatusLabel(models.TicketDeactivated))
	assert.Equal(t, "1/2 Used", BenefitsLabel(1, 2))

	assert.Equal(t, "3 days left", RemainingDaysLabel(now.Add(50*time.Hour), now))
	assert.Equal(t, "1 day left", RemainingDaysLabel(now.Add(time.Hour), now))
	assert.Equal(t, "Ended", RemainingDaysLabel(now, now))
	assert.Equal(t, "Ended", RemainingDaysLabel(now.Add(-time.Hour), now))

	assert.Equal(t, "Jun 1, 2026", DateLabel(now, ""))
	assert.Equal(t, "2026-06-01", DateLabel(now, "2006-01-02"))
	assert.Empty(t, DateLabel(time.Time{}, ""))
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("preview")
	require.NoError(t, err)
	assert.Equal(t, ModePreview, m)
	m, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeFinal, m)
	_, err = ParseMode("draft")
	assert.Error(t, err)
}
