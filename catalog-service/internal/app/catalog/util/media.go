package util

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

// ProductsFolder - папка медиа-хостинга для изображений товаров
const ProductsFolder = "products"

var ErrUploadRejected = errors.New("media host rejected upload")

// CloudinaryStorage загружает изображения в Cloudinary
type CloudinaryStorage struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryStorage(cloudName, apiKey, apiSecret, folder string) (*CloudinaryStorage, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to init cloudinary: %w", err)
	}
	cld.Config.URL.Secure = true

	if folder == "" {
		folder = ProductsFolder
	}

	return &CloudinaryStorage{cld: cld, folder: folder}, nil
}

// Upload отправляет файл в папку товаров и возвращает https URL
// public id строится из имени файла и uuid, чтобы одинаковые имена не перезаписывали друг друга
func (s *CloudinaryStorage) Upload(ctx context.Context, filename string, content io.Reader) (string, error) {
	result, err := s.cld.Upload.Upload(ctx, content, uploader.UploadParams{
		Folder:       s.folder,
		PublicID:     publicIDFor(filename),
		ResourceType: "image",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("%w: %s", ErrUploadRejected, result.Error.Message)
	}
	if result.SecureURL == "" {
		return "", fmt.Errorf("%w: empty url", ErrUploadRejected)
	}

	return result.SecureURL, nil
}

func publicIDFor(filename string) string {
	base := strings.TrimSuffix(path.Base(filename), path.Ext(filename))
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, base)
	if base == "" || base == "." {
		base = "image"
	}
	return base + "-" + uuid.NewString()[:8]
}
