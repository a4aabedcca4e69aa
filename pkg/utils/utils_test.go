package utils

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSlug(t *testing.T) {
	assert.Equal(t, "girls-winter-boots", GenerateSlug("Girls' Winter  Boots!"))
	assert.Equal(t, "", GenerateSlug("!!!"))
}

func TestNormalizeArticle(t *testing.T) {
	assert.Equal(t, "A123", NormalizeArticle("  a123 "))
}

func TestJWTRoundTrip(t *testing.T) {
	SetSecret("test-secret")
	token, err := GenerateJWT("user-1", "a@b.c", "admin", time.Hour)
	require.NoError(t, err)

	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	claims, err := ExtractClaims(r)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
}

func TestValidateJWT_Expired(t *testing.T) {
	SetSecret("test-secret")
	token, err := GenerateJWT("user-1", "a@b.c", "customer", -time.Minute)
	require.NoError(t, err)

	_, err = ValidateJWT(token)
	assert.Error(t, err)
}

func TestProcessImage_Downscales(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, MaxImageWidth+200, 10))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	out, contentType, err := ProcessImage(&buf, "wide.png")
	require.NoError(t, err)
	assert.NotEmpty(t, out)
	assert.Contains(t, []string{"image/webp", "image/jpeg"}, contentType)
}
