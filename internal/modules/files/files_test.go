package files

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caradmin/internal/domain"
	"caradmin/internal/modules/moduletest"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n0000000000000000")

func formFiles(t *testing.T, files map[string][]byte) []*multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, data := range files {
		part, err := mw.CreateFormFile("images", name)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["images"]
}

func TestRead(t *testing.T) {
	headers := formFiles(t, map[string][]byte{"car.png": pngHeader})
	u, err := Read(headers[0], Images)
	require.NoError(t, err)
	assert.Equal(t, "car.png", u.Name)
	data, _ := io.ReadAll(u.Content)
	assert.Equal(t, pngHeader, data)
}

func TestRead_Rejects(t *testing.T) {
	headers := formFiles(t, map[string][]byte{"notes.txt": []byte("hello world")})
	_, err := Read(headers[0], Images)
	assert.ErrorIs(t, err, ErrInvalidMimeType)

	_, err = Read(headers[0], Policy{MaxSize: 3})
	assert.ErrorIs(t, err, ErrFileTooLarge)

	_, err = ReadAll(nil, Images)
	assert.ErrorIs(t, err, ErrNoFiles)
}

func TestResolveURL(t *testing.T) {
	r, protected := moduletest.Router(domain.Principal{AdminID: 1}, "http://unused")
	NewHandler("https://api.adenatrans.ru/").RegisterRoutes(protected)

	w := moduletest.Do(r, http.MethodGet, "/api/v1/files/url?path=images/cars/1.jpg", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var out struct {
		URL string `json:"url"`
	}
	moduletest.Data(t, w, &out)
	assert.Equal(t, "https://api.adenatrans.ru/cars/1.jpg", out.URL)

	w = moduletest.Do(r, http.MethodGet, "/api/v1/files/url", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
