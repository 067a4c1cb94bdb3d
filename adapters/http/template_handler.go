package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	profileUC "github.com/khoaphan/careerframe/internal/application/usecase/profile"
	"github.com/khoaphan/careerframe/internal/domain/template"
	"github.com/khoaphan/careerframe/pkg/apperror"
)

type TemplateHandler struct {
	profileUseCase *profileUC.ProfileUseCase
}

func NewTemplateHandler(uc *profileUC.ProfileUseCase) *TemplateHandler {
	return &TemplateHandler{profileUseCase: uc}
}

func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"templates": template.Catalog()})
}

// ListRecommendedTemplates filters the catalog by the owner's industry so
// onboarding can suggest which sections to add.
func (h *TemplateHandler) ListRecommendedTemplates(c *gin.Context) {
	ownerID, ok := GetOwnerIDFromGinContext(c)
	if !ok {
		apperror.Respond(c, apperror.NewPermissionDenied("ownerID not found in context"))
		return
	}

	output, err := h.profileUseCase.ExecuteGetProfile(c.Request.Context(), profileUC.GetProfileInput{OwnerID: ownerID})
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"templates": template.Recommended(output.Profile.Industry)})
}
