package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	profileUC "github.com/khoaphan/careerframe/internal/application/usecase/profile"
	"github.com/khoaphan/careerframe/internal/domain/profile"
	"github.com/khoaphan/careerframe/pkg/apperror"
)

type ProfileHandler struct {
	profileUseCase *profileUC.ProfileUseCase
}

func NewProfileHandler(uc *profileUC.ProfileUseCase) *ProfileHandler {
	return &ProfileHandler{profileUseCase: uc}
}

func (h *ProfileHandler) respondError(c *gin.Context, err error) {
	if errors.Is(err, profile.ErrProfileNotFound) {
		apperror.Respond(c, apperror.NewNotFound("profile", c.Param("slug")))
		return
	}
	apperror.Respond(c, err)
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	ownerID, ok := GetOwnerIDFromGinContext(c)
	if !ok {
		apperror.Respond(c, apperror.NewPermissionDenied("ownerID not found in context"))
		return
	}

	output, err := h.profileUseCase.ExecuteGetProfile(c.Request.Context(), profileUC.GetProfileInput{OwnerID: ownerID})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ToProfileDTO(output.Profile))
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	ownerID, ok := GetOwnerIDFromGinContext(c)
	if !ok {
		apperror.Respond(c, apperror.NewPermissionDenied("ownerID not found in context"))
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperror.Respond(c, apperror.NewInvalidInput("invalid JSON body for profile update", err))
		return
	}

	output, err := h.profileUseCase.ExecuteUpdateProfile(c.Request.Context(), profileUC.UpdateProfileInput{
		OwnerID:     ownerID,
		Slug:        req.Slug,
		DisplayName: req.DisplayName,
		Headline:    req.Headline,
		Industry:    req.Industry,
		ThemeID:     req.ThemeID,
		IsPublished: req.IsPublished,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ToProfileDTO(output.Profile))
}

func (h *ProfileHandler) ExportProfile(c *gin.Context) {
	ownerID, ok := GetOwnerIDFromGinContext(c)
	if !ok {
		apperror.Respond(c, apperror.NewPermissionDenied("ownerID not found in context"))
		return
	}

	export, err := h.profileUseCase.ExecuteExportProfile(c.Request.Context(), ownerID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="careerframe-export.json"`)
	c.JSON(http.StatusOK, export)
}

func (h *ProfileHandler) GetPublicProfile(c *gin.Context) {
	slug := c.Param("slug")

	view, err := h.profileUseCase.ExecuteGetPublicProfile(c.Request.Context(), slug)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *ProfileHandler) SearchProfiles(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	results, err := h.profileUseCase.ExecuteSearchProfiles(c.Request.Context(), profileUC.SearchProfilesInput{
		Query: c.Query("q"),
		Limit: limit,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profiles": ToProfileSummaryDTOs(results)})
}
