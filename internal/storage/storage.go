// Package storage keeps uploaded restaurant and menu images.
package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"foodcart_back_end/internal/models"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/rs/zerolog"
)

const MaxImageSize = 5 << 20

type ImageStore interface {
	// Upload stores the image under folder and returns its public URL.
	Upload(ctx context.Context, folder string, up models.Upload) (string, error)
}

// sniff checks that the upload really is an image and returns its content
// type together with a reader positioned at the start of the data.
func sniff(up models.Upload) (string, io.Reader, error) {
	if up.Body == nil {
		return "", nil, models.ErrImageRequired
	}
	if up.Size > MaxImageSize {
		return "", nil, models.ErrInvalidImage
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(up.Body, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", nil, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	if !strings.HasPrefix(contentType, "image/") {
		return "", nil, models.ErrInvalidImage
	}

	return contentType, io.MultiReader(bytes.NewReader(head), up.Body), nil
}

type MinIOStore struct {
	client   *minio.Client
	bucket   string
	endpoint string
	useSSL   bool
	logger   zerolog.Logger
}

func NewMinIOStore(client *minio.Client, bucket, endpoint string, useSSL bool, logger zerolog.Logger) *MinIOStore {
	return &MinIOStore{
		client:   client,
		bucket:   bucket,
		endpoint: endpoint,
		useSSL:   useSSL,
		logger:   logger.With().Str("component", "minio").Logger(),
	}
}

func (s *MinIOStore) Upload(ctx context.Context, folder string, up models.Upload) (string, error) {
	contentType, body, err := sniff(up)
	if err != nil {
		return "", err
	}

	object := path.Join(folder, uuid.NewString()+extension(up.Filename, contentType))
	size := up.Size
	if size <= 0 {
		size = -1
	}

	if _, err := s.client.PutObject(ctx, s.bucket, object, body, size,
		minio.PutObjectOptions{ContentType: contentType}); err != nil {
		s.logger.Error().Err(err).Str("object", object).Msg("failed to upload image")
		return "", fmt.Errorf("upload image: %w", err)
	}

	scheme := "http"
	if s.useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.endpoint, s.bucket, object), nil
}

// DataURLStore inlines the image as a data URL. It is used when no object
// store is configured.
type DataURLStore struct{}

func (DataURLStore) Upload(_ context.Context, _ string, up models.Upload) (string, error) {
	contentType, body, err := sniff(up)
	if err != nil {
		return "", err
	}

	data, err := io.ReadAll(io.LimitReader(body, MaxImageSize+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if len(data) > MaxImageSize {
		return "", models.ErrInvalidImage
	}

	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func extension(filename, contentType string) string {
	if ext := strings.ToLower(path.Ext(filename)); ext != "" {
		return ext
	}
	switch contentType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
