package quillpress

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type uploadResponse struct {
	Path   string `json:"path"`
	URL    string `json:"url"`
	Size   int64  `json:"size"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// handleUploadAsset stores a multipart upload under the submitted path.
// The optional max_width field scales images down before storing them.
func (a *App) handleUploadAsset(c echo.Context) error {
	if !IsAdmin(c) {
		return apiError(c, ErrNotAuthorized)
	}
	req := c.Request()
	req.Body = http.MaxBytesReader(c.Response(), req.Body, a.Config.MaxUploadSize)
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": "file too large"})
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid data"})
	}

	assetPath := cleanAssetPath(c.FormValue("path"))
	fh, err := c.FormFile("file")
	if assetPath == "" || err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid data"})
	}
	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return err
	}

	mime := fh.Header.Get(echo.HeaderContentType)
	if mime == "" || mime == echo.MIMEOctetStream {
		mime = mimetype.Detect(data).String()
	}

	if maxWidth, _ := strconv.Atoi(c.FormValue("max_width")); maxWidth > 0 && strings.HasPrefix(mime, "image/") {
		resized, newMime, err := resizeImage(data, maxWidth)
		switch {
		case errors.Is(err, errUndecodable):
			a.Log.Debug("resize skipped", zap.String("path", assetPath), zap.String("mime_type", mime))
		case err != nil:
			return err
		default:
			data = resized
			if newMime != "" {
				mime = newMime
			}
		}
	}

	if err := a.Store.StoreAsset(req.Context(), Asset{ID: assetPath, MimeType: mime, Data: data}); err != nil {
		return err
	}
	a.Log.Info("asset stored",
		zap.String("path", assetPath),
		zap.String("mime_type", mime),
		zap.Int("size", len(data)),
	)

	resp := uploadResponse{Path: assetPath, URL: "/assets/" + assetPath, Size: int64(len(data))}
	if strings.HasPrefix(mime, "image/") {
		resp.Width, resp.Height, _ = imageSize(data)
	}
	return c.JSON(http.StatusOK, resp)
}

// handleAsset serves a stored asset with its recorded MIME type. Range and
// conditional requests are handled by http.ServeContent.
func (a *App) handleAsset(c echo.Context) error {
	id := assetParam(c)
	if id == "" {
		return echo.NewHTTPError(http.StatusNotFound, "Asset not found")
	}
	asset, err := a.Store.GetAsset(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Asset not found")
	}
	if err != nil {
		return err
	}
	h := c.Response().Header()
	h.Set(echo.HeaderContentType, asset.MimeType)
	h.Set("Cache-Control", "public, max-age=600")
	http.ServeContent(c.Response(), c.Request(), asset.Filename(), asset.UpdatedAt, bytes.NewReader(asset.Data))
	return nil
}
