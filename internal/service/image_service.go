package service

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder
	"mime"
	"net/http"
	"strings"

	"nestaway/internal/config"
	"nestaway/internal/models"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	DefaultImageMaxUploadSizeMB = 5
	MasterMaxSize               = 2048
	JPEGQuality                 = 82
	// MaxImagePixels bounds width*height before a full decode.
	MaxImagePixels = 40_000_000
)

// ImageUpload is one file of a multipart listing submission.
type ImageUpload struct {
	Filename    string
	ContentType string
	Content     []byte
}

// ProcessedImage is an upload normalized for storage.
type ProcessedImage struct {
	Data          []byte
	ContentType   string
	Width, Height int
}

// ImageService checks and normalizes listing photos before they are stored.
type ImageService struct {
	maxUploadSizeBytes int64
	maxUploadSizeMB    int
}

func NewImageService(cfg *config.Config) *ImageService {
	maxUploadSizeMB := DefaultImageMaxUploadSizeMB
	if cfg != nil && cfg.ImageMaxUploadSizeMB > 0 {
		maxUploadSizeMB = cfg.ImageMaxUploadSizeMB
	}
	return &ImageService{
		maxUploadSizeBytes: int64(maxUploadSizeMB) * 1024 * 1024,
		maxUploadSizeMB:    maxUploadSizeMB,
	}
}

// Check applies the cheap per-file rules: size and sniffed MIME type.
func (s *ImageService) Check(in ImageUpload) error {
	if len(in.Content) == 0 {
		return models.NewValidationError("Only image files are allowed")
	}
	if int64(len(in.Content)) > s.maxUploadSizeBytes {
		return models.NewValidationError(fmt.Sprintf("File size too large. Maximum size is %dMB", s.maxUploadSizeMB))
	}
	if !isAllowedImageMIME(http.DetectContentType(in.Content)) {
		return models.NewValidationError("Only image files are allowed")
	}
	if provided := normalizeContentType(in.ContentType); provided != "" && provided != "application/octet-stream" && !strings.HasPrefix(provided, "image/") {
		return models.NewValidationError("Only image files are allowed")
	}
	return nil
}

// Normalize decodes the upload, bounds it to MasterMaxSize and re-encodes it
// as JPEG on a white background.
func (s *ImageService) Normalize(in ImageUpload) (ProcessedImage, error) {
	if err := s.Check(in); err != nil {
		return ProcessedImage{}, err
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(in.Content))
	if err != nil || !isSupportedDecodedFormat(format) {
		return ProcessedImage{}, models.NewValidationError("Only image files are allowed")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxImagePixels {
		return ProcessedImage{}, models.NewValidationError("Only image files are allowed")
	}

	decoded, format, err := image.Decode(bytes.NewReader(in.Content))
	if err != nil || !isSupportedDecodedFormat(format) {
		return ProcessedImage{}, models.NewValidationError("Only image files are allowed")
	}

	master := flatten(resizeToFit(decoded, MasterMaxSize, MasterMaxSize))
	data, err := encodeJPEG(master, JPEGQuality)
	if err != nil {
		return ProcessedImage{}, models.NewInternalError(err)
	}

	b := master.Bounds()
	return ProcessedImage{Data: data, ContentType: "image/jpeg", Width: b.Dx(), Height: b.Dy()}, nil
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scale := min(float64(maxWidth)/float64(w), float64(maxHeight)/float64(h))
	newW := max(int(float64(w)*scale), 1)
	newH := max(int(float64(h)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

// flatten composites src over white; JPEG has no alpha channel.
func flatten(src image.Image) image.Image {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)
	return dst
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isAllowedImageMIME(contentType string) bool {
	switch normalizeContentType(contentType) {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func normalizeContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

func isSupportedDecodedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpeg", "jpg", "png", "gif", "webp":
		return true
	default:
		return false
	}
}
