package objectstore

import (
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func TestExtension(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		content  []byte
		want     string
	}{
		{"from name", "Bukti.JPG", []byte("whatever"), ".jpg"},
		{"sniffed when name has none", "bukti", pngHeader, ".png"},
		{"sniffed when name ext is odd", "bukti.p*g", pngHeader, ".png"},
		{"plain text", "catatan", []byte("hanya teks biasa"), ".txt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extension(tt.fileName, tt.content))
		})
	}
}

func TestDetectContentType(t *testing.T) {
	assert.Equal(t, "image/png", DetectContentType(pngHeader))
	assert.True(t, strings.HasPrefix(DetectContentType([]byte("hello")), "text/plain"))
}

func TestAttachmentKey(t *testing.T) {
	id := uuid.MustParse("5f0c6f12-6a3e-4d0a-9a55-3c1f1b5e7a10")

	key := AttachmentKey(id, "foto.jpeg", nil)
	assert.Regexp(t, regexp.MustCompile(`^5f0c6f12-6a3e-4d0a-9a55-3c1f1b5e7a10/[0-9a-f-]{36}\.jpeg$`), key)

	// Two uploads of the same file never collide.
	assert.NotEqual(t, key, AttachmentKey(id, "foto.jpeg", nil))
}

func TestDonationProofKey(t *testing.T) {
	now := time.UnixMilli(1735689600123)
	key := DonationProofKey(now, "bukti", pngHeader)
	assert.Regexp(t, regexp.MustCompile(`^filantropi/1735689600123_[0-9a-f]{12}\.png$`), key)
}

func TestMemory_Upload(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Upload(ctx, "attachments", "a/b.png", pngHeader, "image/png"))
	obj, ok := m.Get("attachments", "a/b.png")
	require.True(t, ok)
	assert.Equal(t, "image/png", obj.ContentType)
	assert.Equal(t, pngHeader, obj.Content)
	assert.Equal(t, 1, m.Len())

	err := m.Upload(ctx, "attachments", "a/b.png", []byte("x"), "text/plain")
	assert.ErrorIs(t, err, ErrObjectExists)

	assert.Equal(t, "memory://attachments/a/b.png", m.PublicURL("attachments", "a/b.png"))
}

func TestS3Store_PublicURL(t *testing.T) {
	s := &S3Store{publicURL: "https://cdn.example.ac.id/storage/v1/object/public"}
	assert.Equal(t,
		"https://cdn.example.ac.id/storage/v1/object/public/attachments/x/y.pdf",
		s.PublicURL("attachments", "x/y.pdf"))
}
