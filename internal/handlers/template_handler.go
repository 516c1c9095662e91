package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/farellandr/eventpass/internal/design"
	"github.com/farellandr/eventpass/internal/helpers"
	"github.com/farellandr/eventpass/internal/middleware"
	"github.com/farellandr/eventpass/internal/services"
)

type TemplateRequest struct {
	Name     string           `json:"name" binding:"required"`
	Category string           `json:"category"`
	Document *design.Document `json:"document"`
}

type EditsRequest struct {
	Edits []design.Edit `json:"edits" binding:"required"`
}

// sanitizeDocument strips markup from the free text a template carries.
func sanitizeDocument(doc *design.Document) {
	if doc == nil {
		return
	}
	for i := range doc.Elements {
		doc.Elements[i].Content = helpers.SanitizeText(doc.Elements[i].Content)
	}
}

func sanitizeEdits(edits []design.Edit) {
	for _, ed := range edits {
		if ed.Element != nil {
			ed.Element.Content = helpers.SanitizePtr(ed.Element.Content)
		}
	}
}

func ListTemplates(c *gin.Context) {
	svc, ok := getServices(c)
	if !ok {
		return
	}

	templates, err := svc.Templates.List(c.Request.Context(), middleware.GetActor(c), c.Query("category"))
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"templates": templates,
		"total":     len(templates),
	})
}

func GetTemplate(c *gin.Context) {
	templateID, ok := helpers.ParamUUID(c, "id")
	if !ok {
		return
	}
	svc, ok := getServices(c)
	if !ok {
		return
	}

	template, err := svc.Templates.Get(c.Request.Context(), middleware.GetActor(c), templateID)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, template)
}

func CreateTemplate(c *gin.Context) {
	var req TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}
	svc, ok := getServices(c)
	if !ok {
		return
	}

	sanitizeDocument(req.Document)
	template, err := svc.Templates.Create(c.Request.Context(), middleware.GetActor(c), services.TemplateInput{
		Name:     helpers.SanitizeText(req.Name),
		Category: helpers.SanitizeText(req.Category),
		Document: req.Document,
	})
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Template created successfully.",
		"template": template,
	})
}

func DeleteTemplate(c *gin.Context) {
	templateID, ok := helpers.ParamUUID(c, "id")
	if !ok {
		return
	}
	svc, ok := getServices(c)
	if !ok {
		return
	}

	if err := svc.Templates.Delete(c.Request.Context(), middleware.GetActor(c), templateID); err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Template deleted successfully.",
	})
}

func EditTemplate(c *gin.Context) {
	templateID, ok := helpers.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req EditsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid edits.")
		return
	}
	svc, ok := getServices(c)
	if !ok {
		return
	}

	sanitizeEdits(req.Edits)
	result, err := svc.Templates.ApplyEdits(c.Request.Context(), middleware.GetActor(c), templateID, req.Edits)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func PreviewTemplate(c *gin.Context) {
	templateID, ok := helpers.ParamUUID(c, "id")
	if !ok {
		return
	}
	svc, ok := getServices(c)
	if !ok {
		return
	}

	png, err := svc.Artifacts.PreviewTemplate(c.Request.Context(), middleware.GetActor(c), templateID)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", png)
}
