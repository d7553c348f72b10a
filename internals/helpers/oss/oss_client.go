// file: internals/helpers/oss/oss_client.go
package helper

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

func getEnv(k string) string { return strings.TrimSpace(os.Getenv(k)) }

func envInt(key string, def int) int {
	if v := getEnv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

func envFloat(key string, def float32) float32 {
	if v := getEnv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil && f >= 0 {
			return float32(f)
		}
	}
	return def
}

// batas ukuran upload dokumen (guard ringan di controller)
var MaxUploadSize = int64(5 * 1024 * 1024)

/* =======================================================================
   Konfigurasi WebP (ENV-Driven)
======================================================================= */

type WebPOptions struct {
	MaxW    int     // batas lebar (resize keep-aspect)
	MaxH    int     // batas tinggi
	Quality float32 // kualitas encode lossy
}

func defaultWebPOptionsFromEnv() WebPOptions {
	return WebPOptions{
		MaxW:    envInt("IMAGE_WEBP_MAX_W", 1600),
		MaxH:    envInt("IMAGE_WEBP_MAX_H", 1600),
		Quality: envFloat("IMAGE_WEBP_QUALITY", 80),
	}
}

/* =======================================================================
   OSS Service
======================================================================= */

type OSSService struct {
	bucket   *oss.Bucket
	endpoint string
	bucketNm string
	prefix   string
}

// NewOSSServiceFromEnv membuat service dari ENV. prefix opsional (contoh: "ppdb/")
func NewOSSServiceFromEnv(prefix string) (*OSSService, error) {
	endpoint := getEnv("OSS_ENDPOINT")
	keyID := getEnv("OSS_ACCESS_KEY_ID")
	keySecret := getEnv("OSS_ACCESS_KEY_SECRET")
	bucketName := getEnv("OSS_BUCKET")

	if endpoint == "" || keyID == "" || keySecret == "" || bucketName == "" {
		return nil, fmt.Errorf("konfigurasi OSS belum lengkap (OSS_ENDPOINT/OSS_ACCESS_KEY_ID/OSS_ACCESS_KEY_SECRET/OSS_BUCKET)")
	}

	client, err := oss.New(endpoint, keyID, keySecret)
	if err != nil {
		return nil, fmt.Errorf("init OSS client: %w", err)
	}
	bucket, err := client.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("open OSS bucket: %w", err)
	}

	return &OSSService{
		bucket:   bucket,
		endpoint: endpoint,
		bucketNm: bucketName,
		prefix:   strings.Trim(prefix, "/"),
	}, nil
}

func (s *OSSService) publicURL(objectKey string) string {
	host := strings.TrimPrefix(strings.TrimPrefix(s.endpoint, "https://"), "http://")
	return fmt.Sprintf("https://%s.%s/%s", s.bucketNm, host, url.PathEscape(objectKey))
}

func (s *OSSService) objectKey(dir, filename string) string {
	parts := []string{}
	if s.prefix != "" {
		parts = append(parts, s.prefix)
	}
	if d := strings.Trim(dir, "/"); d != "" {
		parts = append(parts, d)
	}
	parts = append(parts, filename)
	return strings.Join(parts, "/")
}

var unsafeFilenameRe = regexp.MustCompile(`[^a-zA-Z0-9.\-_]+`)

func GenerateUniqueFilename(original string) string {
	safe := unsafeFilenameRe.ReplaceAllString(filepath.Base(original), "_")
	return fmt.Sprintf("%s-%s-%s", time.Now().Format("20060102"), uuid.New().String(), safe)
}

/* =======================================================================
   Upload
======================================================================= */

// UploadImageAsWebP: decode jpeg/png/webp, resize keep-aspect, encode webp, upload.
// Dipakai untuk pas foto supaya ukuran seragam & kecil.
func (s *OSSService) UploadImageAsWebP(dir string, fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", fiber.NewError(fiber.StatusBadRequest, "File tidak ditemukan")
	}
	all, err := readAll(fh)
	if err != nil {
		return "", err
	}

	img, err := decodeImage(all)
	if err != nil {
		return "", fiber.NewError(fiber.StatusUnsupportedMediaType, "Format gambar tidak didukung (jpeg/png/webp)")
	}

	opt := defaultWebPOptionsFromEnv()
	if img.Bounds().Dx() > opt.MaxW || img.Bounds().Dy() > opt.MaxH {
		img = imaging.Fit(img, opt.MaxW, opt.MaxH, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: opt.Quality}); err != nil {
		return "", fmt.Errorf("encode webp: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(fh.Filename), filepath.Ext(fh.Filename))
	key := s.objectKey(dir, GenerateUniqueFilename(base+".webp"))
	if err := s.bucket.PutObject(key, bytes.NewReader(buf.Bytes()),
		oss.ContentType("image/webp")); err != nil {
		return "", fmt.Errorf("upload ke OSS: %w", err)
	}

	// thumbnail kecil untuk list admin, best-effort
	if thumb, terr := encodeThumbWebP(img, opt.Quality); terr == nil {
		thumbKey := strings.TrimSuffix(key, ".webp") + "_thumb.webp"
		if perr := s.bucket.PutObject(thumbKey, bytes.NewReader(thumb),
			oss.ContentType("image/webp")); perr != nil {
			// URL utama tetap valid walau thumbnail gagal
			_ = perr
		}
	}
	return s.publicURL(key), nil
}

const thumbMaxSide = 160

func encodeThumbWebP(src image.Image, quality float32) ([]byte, error) {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > h {
		h = h * thumbMaxSide / w
		w = thumbMaxSide
	} else {
		w = w * thumbMaxSide / h
		h = thumbMaxSide
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, dst, &webp.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UploadRaw: upload dokumen apa adanya (pdf/jpg/png) dengan sniff content-type.
func (s *OSSService) UploadRaw(dir string, fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", fiber.NewError(fiber.StatusBadRequest, "File tidak ditemukan")
	}
	all, err := readAll(fh)
	if err != nil {
		return "", err
	}

	ct := fh.Header.Get("Content-Type")
	if ct == "" {
		head := all
		if len(head) > 512 {
			head = head[:512]
		}
		ct = http.DetectContentType(head)
	}

	key := s.objectKey(dir, GenerateUniqueFilename(fh.Filename))
	if err := s.bucket.PutObject(key, bytes.NewReader(all), oss.ContentType(ct)); err != nil {
		return "", fmt.Errorf("upload ke OSS: %w", err)
	}
	return s.publicURL(key), nil
}

// DeleteByPublicURL: best-effort hapus objek dari URL publik miliknya sendiri.
func (s *OSSService) DeleteByPublicURL(publicURL string) error {
	u, err := url.Parse(publicURL)
	if err != nil {
		return err
	}
	key := strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return fmt.Errorf("object key kosong: %s", publicURL)
	}
	return s.bucket.DeleteObject(key)
}

/* =======================================================================
   Internal
======================================================================= */

func readAll(fh *multipart.FileHeader) ([]byte, error) {
	if fh.Size > MaxUploadSize {
		return nil, fiber.NewError(fiber.StatusRequestEntityTooLarge,
			fmt.Sprintf("Ukuran file melebihi batas %dMB", MaxUploadSize/(1024*1024)))
	}
	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("buka file: %w", err)
	}
	defer src.Close()

	all, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("baca file: %w", err)
	}
	if len(all) == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "File kosong")
	}
	return all, nil
}

func decodeImage(all []byte) (image.Image, error) {
	head := all
	if len(head) > 512 {
		head = head[:512]
	}
	ct := http.DetectContentType(head)

	switch {
	case strings.Contains(ct, "jpeg"):
		return jpeg.Decode(bytes.NewReader(all))
	case strings.Contains(ct, "png"):
		return png.Decode(bytes.NewReader(all))
	case strings.Contains(ct, "webp"):
		return webp.Decode(bytes.NewReader(all))
	default:
		return nil, fmt.Errorf("unsupported content type: %s", ct)
	}
}
