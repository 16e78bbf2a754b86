package handler

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hossamdev/portfolio-api/internal/config"
	"github.com/hossamdev/portfolio-api/internal/modules/serializer"
	"github.com/hossamdev/portfolio-api/internal/modules/service"
)

// MediaHandler exposes the media transfer gateway: binary in, stable
// (url, public_id) reference out, delete by public id. All three routes
// sit behind the admin gate since they are destructive or billable.
type MediaHandler struct {
	svc service.MediaService
	cfg *config.Config
}

func NewMediaHandler(s service.MediaService, cfg *config.Config) *MediaHandler {
	return &MediaHandler{svc: s, cfg: cfg}
}

// UploadImage godoc
//
//	@Summary		Upload image
//	@Description	Upload an image to the media host. Large images are re-encoded to bound their size before storage.
//	@Tags			media
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"Image to upload"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.MediaRef}
//	@Router			/admin/media/upload-image [post]
func (h *MediaHandler) UploadImage(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("file is required", err))
		return
	}
	if fh.Size > h.cfg.Media.MaxUploadSizeBytes {
		c.JSON(http.StatusRequestEntityTooLarge, serializer.Err(http.StatusRequestEntityTooLarge, "file too large", nil))
		return
	}

	data, err := readFormFile(fh)
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("unreadable file", err))
		return
	}

	ref, err := h.svc.UploadImage(c.Request.Context(), fh.Filename, data)
	if err != nil {
		respondServiceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Msg: "image uploaded", Data: ref})
}

type UploadPDFReq struct {
	// OldPublicID, when set, releases the previous document on the host as
	// part of the same logical replacement.
	OldPublicID string `form:"old_public_id" json:"old_public_id"`
}

// UploadPDF godoc
//
//	@Summary		Upload document
//	@Description	Upload a PDF to the media host, optionally replacing a previous document.
//	@Tags			media
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file			formData	file	true	"PDF to upload"
//	@Param			old_public_id	formData	string	false	"Public id of the document being replaced"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.MediaRef}
//	@Router			/admin/media/upload-pdf [post]
func (h *MediaHandler) UploadPDF(c *gin.Context) {
	req := UploadPDFReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("file is required", err))
		return
	}
	if fh.Size > h.cfg.Media.MaxUploadSizeBytes {
		c.JSON(http.StatusRequestEntityTooLarge, serializer.Err(http.StatusRequestEntityTooLarge, "file too large", nil))
		return
	}

	data, err := readFormFile(fh)
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("unreadable file", err))
		return
	}

	ref, err := h.svc.UploadDocument(c.Request.Context(), fh.Filename, data, req.OldPublicID)
	if err != nil {
		respondServiceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Msg: "document uploaded", Data: ref})
}

// DeleteImage godoc
//
//	@Summary		Delete image
//	@Description	Delete an image from the media host by public id. A missing image yields 404, which callers treat as an expected, non-fatal outcome.
//	@Tags			media
//	@Produce		json
//	@Param			public_id	path	string	true	"Public id"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{}
//	@Router			/admin/media/delete-image/{public_id} [delete]
func (h *MediaHandler) DeleteImage(c *gin.Context) {
	publicID := c.Param("public_id")
	if publicID == "" {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("public_id is required", nil))
		return
	}

	found, err := h.svc.DeleteImage(c.Request.Context(), publicID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, serializer.Err(http.StatusInternalServerError, "delete failed", err))
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, serializer.NotFoundErr("image not found"))
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Msg: "image deleted"})
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
