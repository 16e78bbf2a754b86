package handler

import (
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"

	"github.com/hossamdev/portfolio-api/internal/config"
	"github.com/hossamdev/portfolio-api/internal/modules/serializer"
	"github.com/hossamdev/portfolio-api/internal/modules/service"
)

type MetadataHandler struct {
	svc service.MetadataService
	cfg *config.Config
}

func NewMetadataHandler(s service.MetadataService, cfg *config.Config) *MetadataHandler {
	return &MetadataHandler{svc: s, cfg: cfg}
}

// GetMetadata godoc
//
//	@Summary		Get site metadata
//	@Description	The single site-wide metadata document: tag, technology and category vocabularies plus the CV reference. Returns an empty document when none has been saved yet.
//	@Tags			metadata
//	@Produce		json
//	@Success		200	{object}	serializer.Response{data=model.SiteMetadata}
//	@Router			/metadata [get]
func (h *MetadataHandler) GetMetadata(c *gin.Context) {
	m, err := h.svc.Get(c.Request.Context())
	if err != nil {
		respondServiceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: m})
}

// MetadataPayload is the JSON document carried in the "payload" form field
// of a metadata save. The lists are ordered sets; duplicates are dropped.
type MetadataPayload struct {
	Tags         []string `json:"tags"`
	Technologies []string `json:"technologies"`
	Categories   []string `json:"categories"`
}

// SaveMetadata godoc
//
//	@Summary		Save site metadata
//	@Description	Full replace of the metadata document. An optional "cv" file part uploads a new résumé and releases the previous one on the media host.
//	@Tags			metadata
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			payload	formData	string	true	"Metadata document"
//	@Param			cv		formData	file	false	"Replacement CV (PDF)"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.SiteMetadata}
//	@Router			/admin/metadata [put]
func (h *MetadataHandler) SaveMetadata(c *gin.Context) {
	raw := c.PostForm("payload")
	if raw == "" {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("payload is required", nil))
		return
	}
	var payload MetadataPayload
	if err := sonic.Unmarshal([]byte(raw), &payload); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("malformed payload", err))
		return
	}

	in := service.SaveMetadataInput{
		Tags:         payload.Tags,
		Technologies: payload.Technologies,
		Categories:   payload.Categories,
	}

	if fh, err := c.FormFile("cv"); err == nil {
		if fh.Size > h.cfg.Media.MaxUploadSizeBytes {
			c.JSON(http.StatusRequestEntityTooLarge, serializer.Err(http.StatusRequestEntityTooLarge, "file too large", nil))
			return
		}
		data, err := readFormFile(fh)
		if err != nil {
			c.JSON(http.StatusBadRequest, serializer.ParamErr("unreadable cv file", err))
			return
		}
		in.CV = &service.CVUpload{Filename: fh.Filename, Data: data}
	}

	m, err := h.svc.Save(c.Request.Context(), in)
	if err != nil {
		respondServiceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Msg: "metadata saved", Data: m})
}
