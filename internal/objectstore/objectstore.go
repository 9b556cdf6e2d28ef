package objectstore

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var ErrObjectExists = errors.New("object already exists")

// Store puts uploaded files into a bucket and knows their public location.
type Store interface {
	Upload(ctx context.Context, bucket, key string, content []byte, contentType string) error
	PublicURL(bucket, key string) string
}

// DetectContentType sniffs the MIME type from the file bytes.
func DetectContentType(content []byte) string {
	return mimetype.Detect(content).String()
}

// Extension returns the lowercase extension (with dot) of fileName, or the
// one sniffed from content when the name has none usable.
func Extension(fileName string, content []byte) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	if validExt(ext) {
		return ext
	}
	if sniffed := mimetype.Detect(content).Extension(); sniffed != "" {
		return sniffed
	}
	return ".bin"
}

func validExt(ext string) bool {
	if len(ext) < 2 || len(ext) > 10 {
		return false
	}
	for _, c := range ext[1:] {
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

// AttachmentKey builds "<reportID>/<random>.<ext>".
func AttachmentKey(reportID uuid.UUID, fileName string, content []byte) string {
	return reportID.String() + "/" + uuid.NewString() + Extension(fileName, content)
}

// DonationProofKey builds "filantropi/<unix millis>_<random>.<ext>".
func DonationProofKey(now time.Time, fileName string, content []byte) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return "filantropi/" + strconv.FormatInt(now.UnixMilli(), 10) + "_" + random + Extension(fileName, content)
}
