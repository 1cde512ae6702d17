package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"crmventas/internal/apierror"
	"crmventas/internal/infra"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// MediaFetcher is the part of infra.MediaClient the proxy needs.
type MediaFetcher interface {
	Validate(raw string) (*url.URL, error)
	Fetch(ctx context.Context, u *url.URL) (*infra.MediaObject, error)
}

type MediaHandler struct{ media MediaFetcher }

func NewMediaHandler(media MediaFetcher) *MediaHandler { return &MediaHandler{media: media} }

// Proxy godoc
// @Summary      Proxy de imagenes
// @Description  Sirve imagenes del CDN permitido para evitar bloqueos de origen cruzado.
// @Tags         media
// @Produce      image/*
// @Param        url query string true "URL https del CDN"
// @Success      200
// @Failure      400  {object} apierror.APIError
// @Failure      403  {object} apierror.APIError
// @Failure      502  {object} apierror.APIError
// @Router       /media/proxy [get]
func (h *MediaHandler) Proxy(c *gin.Context) {
	u, err := h.media.Validate(c.Query("url"))
	switch {
	case errors.Is(err, infra.ErrMediaForbidden):
		c.JSON(http.StatusForbidden, apierror.New("Dominio no permitido"))
		return
	case err != nil:
		c.JSON(http.StatusBadRequest, apierror.New("Parametro url invalido"))
		return
	}

	obj, err := h.media.Fetch(c.Request.Context(), u)
	if errors.Is(err, infra.ErrMediaForbidden) {
		log.Warn().Err(err).Str("host", u.Host).Msg("media proxy: redirect refused")
		c.JSON(http.StatusForbidden, apierror.New("Dominio no permitido"))
		return
	}
	if err != nil {
		log.Warn().Err(err).Str("host", u.Host).Msg("media proxy: upstream failed")
		c.JSON(http.StatusBadGateway, apierror.New("No se pudo obtener la imagen"))
		return
	}

	c.Header("Cache-Control", obj.CacheControl)
	if obj.ETag != "" {
		c.Header("ETag", obj.ETag)
	}
	c.Header("X-Content-Type-Options", "nosniff")
	c.Data(http.StatusOK, obj.ContentType, obj.Body)
}
