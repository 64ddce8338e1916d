package utils

import (
	"PostureIQ/pkg/analyzer"
	"bytes"
	"crypto/rand"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	FrameWidth  = 640
	FrameHeight = 480
)

var (
	ErrNoFile       = errors.New("no file uploaded")
	ErrFileTooLarge = errors.New("file size exceeds limit")
	ErrNotAnImage   = errors.New("uploaded file is not an image")
)

type IUtils interface {
	NewULIDFromTimestamp(t time.Time) (string, error)
	ValidateImageFile(file *multipart.FileHeader) error
	ReadImageFile(file *multipart.FileHeader) ([]byte, error)
	DecodeFrame(imageData []byte) (analyzer.Frame, error)
}

type utils struct {
	maxFileSize  int64
	frameWidth   int
	frameHeight  int
	frameQuality int
}

func New() IUtils {
	return &utils{
		maxFileSize:  5 * 1024 * 1024,
		frameWidth:   FrameWidth,
		frameHeight:  FrameHeight,
		frameQuality: 90,
	}
}

func (u *utils) NewULIDFromTimestamp(t time.Time) (string, error) {
	ms := ulid.Timestamp(t)
	entropy := ulid.Monotonic(rand.Reader, 0)

	id, err := ulid.New(ms, entropy)
	if err != nil {
		return "", err
	}

	return id.String(), nil
}

func (u *utils) ValidateImageFile(file *multipart.FileHeader) error {
	if file == nil {
		return ErrNoFile
	}

	if file.Size > u.maxFileSize {
		return ErrFileTooLarge
	}

	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return ErrNotAnImage
	}

	return nil
}

func (u *utils) ReadImageFile(file *multipart.FileHeader) ([]byte, error) {
	if err := u.ValidateImageFile(file); err != nil {
		return nil, err
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	return io.ReadAll(io.LimitReader(src, u.maxFileSize))
}

// DecodeFrame decodes a JPEG, PNG or WebP image and stretches it to the
// fixed frame size the pose model is tuned for. The frame is re-encoded as
// JPEG for transport.
func (u *utils) DecodeFrame(imageData []byte) (analyzer.Frame, error) {
	src, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return analyzer.Frame{}, fmt.Errorf("%w: %v", analyzer.ErrDecodeImage, err)
	}

	bounds := src.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return analyzer.Frame{}, fmt.Errorf("%w: empty image", analyzer.ErrDecodeImage)
	}

	dst := image.NewRGBA(image.Rect(0, 0, u.frameWidth, u.frameHeight))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: u.frameQuality}); err != nil {
		return analyzer.Frame{}, err
	}

	return analyzer.Frame{
		Data:   buf.Bytes(),
		Width:  u.frameWidth,
		Height: u.frameHeight,
	}, nil
}
