package handler

import (
	"fmt"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"

	"github.com/hossamdev/portfolio-api/internal/config"
	"github.com/hossamdev/portfolio-api/internal/modules/serializer"
	"github.com/hossamdev/portfolio-api/internal/modules/service"
	"github.com/hossamdev/portfolio-api/internal/pkg/catalog"
	"github.com/hossamdev/portfolio-api/internal/pkg/reconcile"
)

type ProjectHandler struct {
	svc service.ProjectService
	cfg *config.Config
}

func NewProjectHandler(s service.ProjectService, cfg *config.Config) *ProjectHandler {
	return &ProjectHandler{svc: s, cfg: cfg}
}

type ListProjectsReq struct {
	Search   string   `form:"search"`
	Category string   `form:"category"`
	Tags     []string `form:"tags"`
	Sort     string   `form:"sort,default=newest" binding:"omitempty,oneof=newest oldest name"`
	Featured *bool    `form:"featured"`
}

// ListProjects godoc
//
//	@Summary		List projects
//	@Description	List projects with optional free-text search, category and tag filters, and sorting. All filters are conjunctive.
//	@Tags			projects
//	@Produce		json
//	@Param			search		query	string		false	"Case-insensitive substring over title, description and tags"
//	@Param			category	query	string		false	"Exact category; empty or 'all' matches everything"
//	@Param			tags		query	[]string	false	"Required tags; a project must carry every one"
//	@Param			sort		query	string		false	"newest | oldest | name"	default(newest)
//	@Param			featured	query	bool		false	"Only featured (or only non-featured) projects"
//	@Success		200	{object}	serializer.Response{data=[]model.Project}
//	@Router			/projects [get]
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	req := ListProjectsReq{}
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondServiceErr(c, err)
		return
	}

	list = catalog.Filter(list, catalog.Query{
		Search:   req.Search,
		Category: req.Category,
		Tags:     req.Tags,
		Sort:     req.Sort,
	})
	if req.Featured != nil {
		kept := list[:0:0]
		for _, p := range list {
			if p.Featured == *req.Featured {
				kept = append(kept, p)
			}
		}
		list = kept
	}

	c.JSON(http.StatusOK, serializer.Response{Data: list})
}

// ListTags godoc
//
//	@Summary		List tags in use
//	@Description	Distinct tags across all projects, first-seen order.
//	@Tags			projects
//	@Produce		json
//	@Success		200	{object}	serializer.Response{data=[]string}
//	@Router			/projects/tags [get]
func (h *ProjectHandler) ListTags(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondServiceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: catalog.TagUnion(list)})
}

// GetProject godoc
//
//	@Summary	Get one project
//	@Tags		projects
//	@Produce	json
//	@Param		id	path		string	true	"Project id"
//	@Success	200	{object}	serializer.Response{data=model.Project}
//	@Router		/projects/{id} [get]
func (h *ProjectHandler) GetProject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid project id", err))
		return
	}
	p, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		respondServiceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: p})
}

// ImageSlot stages one media position of a project submission: either a
// retained reference to an already hosted image (url) or a fresh file
// carried in the same multipart request (upload names the file part).
type ImageSlot struct {
	URL    string `json:"url,omitempty"`
	Upload string `json:"upload,omitempty"`
}

// ProjectPayload is the JSON document carried in the "payload" form field
// of project create/update requests. Saving is a full replace.
type ProjectPayload struct {
	Title        string   `json:"title" binding:"required"`
	Description  string   `json:"description"`
	Category     string   `json:"category" binding:"required"`
	Tags         []string `json:"tags"`
	Technologies []string `json:"technologies"`
	Features     []string `json:"features"`
	LiveURL      string   `json:"live_url"`
	GithubURL    string   `json:"github_url"`
	Date         string   `json:"date" binding:"omitempty,isodate"`
	Duration     string   `json:"duration"`
	Role         string   `json:"role"`
	Featured     bool     `json:"featured"`

	Image  *ImageSlot  `json:"image"`
	Images []ImageSlot `json:"images"`
}

// CreateProject godoc
//
//	@Summary		Create project
//	@Description	Create a project from a multipart submission: a "payload" JSON field plus one file part per new image slot. New images are uploaded first; the project is persisted only once every upload succeeded.
//	@Tags			projects
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			payload	formData	string	true	"Project document, image slots as {url} or {upload}"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.Project}
//	@Router			/admin/projects [post]
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	in, ok := h.bindProjectInput(c)
	if !ok {
		return
	}
	p, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		respondServiceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Msg: "project created", Data: p})
}

// UpdateProject godoc
//
//	@Summary		Update project
//	@Description	Full replace of a project. Previously hosted images absent from the submitted slots are deleted from the media host after the new state is persisted.
//	@Tags			projects
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			id		path		string	true	"Project id"
//	@Param			payload	formData	string	true	"Project document, image slots as {url} or {upload}"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.Project}
//	@Router			/admin/projects/{id} [put]
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid project id", err))
		return
	}
	in, ok := h.bindProjectInput(c)
	if !ok {
		return
	}
	p, err := h.svc.Update(c.Request.Context(), id, in)
	if err != nil {
		respondServiceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Msg: "project updated", Data: p})
}

// DeleteProject godoc
//
//	@Summary		Delete project
//	@Description	Delete a project and release its hosted images.
//	@Tags			projects
//	@Produce		json
//	@Param			id	path	string	true	"Project id"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{}
//	@Router			/admin/projects/{id} [delete]
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid project id", err))
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondServiceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Msg: "project deleted"})
}

type SetFeaturedReq struct {
	Featured *bool `json:"featured" binding:"required"`
}

// SetFeatured godoc
//
//	@Summary	Toggle featured flag
//	@Tags		projects
//	@Accept		json
//	@Produce	json
//	@Param		id		path	string			true	"Project id"
//	@Param		body	body	SetFeaturedReq	true	"Desired flag"
//	@Security	BearerAuth
//	@Success	200	{object}	serializer.Response{data=model.Project}
//	@Router		/admin/projects/{id}/featured [patch]
func (h *ProjectHandler) SetFeatured(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid project id", err))
		return
	}
	req := SetFeaturedReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	p, err := h.svc.SetFeatured(c.Request.Context(), id, *req.Featured)
	if err != nil {
		respondServiceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Msg: "project updated", Data: p})
}

// bindProjectInput parses the multipart submission into a service input.
// On failure it has already written the error response.
func (h *ProjectHandler) bindProjectInput(c *gin.Context) (service.ProjectInput, bool) {
	RegisterValidators()

	raw := c.PostForm("payload")
	if raw == "" {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("payload is required", nil))
		return service.ProjectInput{}, false
	}

	var payload ProjectPayload
	if err := sonic.Unmarshal([]byte(raw), &payload); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("malformed payload", err))
		return service.ProjectInput{}, false
	}
	if err := binding.Validator.ValidateStruct(&payload); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return service.ProjectInput{}, false
	}

	main, err := h.stagedItem(c, payload.Image)
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr(err.Error(), err))
		return service.ProjectInput{}, false
	}
	extras := make([]reconcile.Item, 0, len(payload.Images))
	for i := range payload.Images {
		it, err := h.stagedItem(c, &payload.Images[i])
		if err != nil {
			c.JSON(http.StatusBadRequest, serializer.ParamErr(err.Error(), err))
			return service.ProjectInput{}, false
		}
		extras = append(extras, *it)
	}

	return service.ProjectInput{
		Title:        payload.Title,
		Description:  payload.Description,
		Category:     payload.Category,
		Tags:         payload.Tags,
		Technologies: payload.Technologies,
		Features:     payload.Features,
		LiveURL:      payload.LiveURL,
		GithubURL:    payload.GithubURL,
		Date:         payload.Date,
		Duration:     payload.Duration,
		Role:         payload.Role,
		Featured:     payload.Featured,
		MainImage:    main,
		ExtraImages:  extras,
	}, true
}

func (h *ProjectHandler) stagedItem(c *gin.Context, slot *ImageSlot) (*reconcile.Item, error) {
	if slot == nil {
		return nil, nil
	}
	if slot.URL != "" {
		it := reconcile.Existing(slot.URL)
		return &it, nil
	}
	if slot.Upload == "" {
		return nil, fmt.Errorf("image slot needs url or upload")
	}

	fh, err := c.FormFile(slot.Upload)
	if err != nil {
		return nil, fmt.Errorf("missing file part %q", slot.Upload)
	}
	if fh.Size > h.cfg.Media.MaxUploadSizeBytes {
		return nil, fmt.Errorf("file %q too large", fh.Filename)
	}
	data, err := readFormFile(fh)
	if err != nil {
		return nil, fmt.Errorf("unreadable file part %q", slot.Upload)
	}
	it := reconcile.NewUpload(fh.Filename, data)
	return &it, nil
}
