package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"storefront/catalog-service/internal/app/catalog/entity"
	"storefront/pkg/logger"
	"storefront/pkg/metrics"

	"github.com/gin-gonic/gin"
)

const (
	imageField       = "image"
	maxImageSize     = 5 << 20
	maxMultipartBody = 6 << 20
	sniffLength      = 512

	ctxImage = "uploaded_image"
)

var allowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
}

// ImageUpload проверяет multipart тело до хендлера:
// не больше одного файла в поле image, только image/*, не больше 5MB.
// Принятый файл кладется в контекст как *entity.UploadedImage
func ImageUpload() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxMultipartBody)

		if err := c.Request.ParseMultipartForm(maxImageSize); err != nil {
			if errors.Is(err, http.ErrNotMultipart) {
				c.Next()
				return
			}
			rejectUpload(c, formParseMessage(err))
			return
		}

		form := c.Request.MultipartForm
		defer form.RemoveAll()

		for field := range form.File {
			if field != imageField {
				rejectUpload(c, fmt.Sprintf("unexpected file field %q", field))
				return
			}
		}

		files := form.File[imageField]
		if len(files) == 0 {
			c.Next()
			return
		}
		if len(files) > 1 {
			rejectUpload(c, "only one image is allowed")
			return
		}

		header := files[0]
		if msg := checkImageHeader(header); msg != "" {
			rejectUpload(c, msg)
			return
		}

		file, err := header.Open()
		if err != nil {
			logger.Error().Err(err).Msg("Failed to open uploaded file")
			respondError(c, http.StatusInternalServerError, "internal server error")
			return
		}
		defer file.Close()

		contentType, err := sniffImage(file)
		if err != nil {
			rejectUpload(c, err.Error())
			return
		}

		c.Set(ctxImage, &entity.UploadedImage{
			Filename:    header.Filename,
			ContentType: contentType,
			Size:        header.Size,
			Content:     file,
		})
		c.Next()
	}
}

func checkImageHeader(header *multipart.FileHeader) string {
	if header.Size == 0 {
		return "image is empty"
	}
	if header.Size > maxImageSize {
		return "image must not exceed 5MB"
	}
	if !allowedImageExtensions[strings.ToLower(filepath.Ext(header.Filename))] {
		return "image must be jpg, jpeg, png, webp or gif"
	}
	// application/octet-stream означает, что клиент тип не знает; решает сниффинг
	declared := header.Header.Get("Content-Type")
	if declared != "" && declared != "application/octet-stream" && !strings.HasPrefix(declared, "image/") {
		return "only image files are allowed"
	}
	return ""
}

// sniffImage определяет тип по первым байтам и возвращает файл в начало
func sniffImage(file multipart.File) (string, error) {
	buf := make([]byte, sniffLength)
	n, err := io.ReadFull(file, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", errors.New("failed to read image")
	}

	contentType := http.DetectContentType(buf[:n])
	if !strings.HasPrefix(contentType, "image/") {
		return "", errors.New("only image files are allowed")
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", errors.New("failed to read image")
	}
	return contentType, nil
}

func formParseMessage(err error) string {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return "request body is too large"
	}
	return "invalid multipart form"
}

func rejectUpload(c *gin.Context, message string) {
	metrics.CatalogUploads.WithLabelValues("rejected").Inc()
	respondError(c, http.StatusBadRequest, message)
}

func uploadedImage(c *gin.Context) *entity.UploadedImage {
	value, ok := c.Get(ctxImage)
	if !ok {
		return nil
	}
	image, _ := value.(*entity.UploadedImage)
	return image
}
