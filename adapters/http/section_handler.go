package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	sectionUC "github.com/khoaphan/careerframe/internal/application/usecase/section"
	"github.com/khoaphan/careerframe/internal/domain/section"
	"github.com/khoaphan/careerframe/pkg/apperror"
)

type SectionHandler struct {
	useCase *sectionUC.SectionUseCase
}

func NewSectionHandler(uc *sectionUC.SectionUseCase) *SectionHandler {
	return &SectionHandler{useCase: uc}
}

func (h *SectionHandler) respondError(c *gin.Context, err error) {
	if errors.Is(err, section.ErrSectionNotFound) {
		apperror.Respond(c, apperror.NewNotFound("section", c.Param("id")))
		return
	}
	apperror.Respond(c, err)
}

func (h *SectionHandler) ListSections(c *gin.Context) {
	ownerID, ok := GetOwnerIDFromGinContext(c)
	if !ok {
		apperror.Respond(c, apperror.NewPermissionDenied("ownerID not found in context"))
		return
	}

	sections, err := h.useCase.List(c.Request.Context(), ownerID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sections": ToSectionDTOs(sections)})
}

func (h *SectionHandler) AddSection(c *gin.Context) {
	ownerID, ok := GetOwnerIDFromGinContext(c)
	if !ok {
		apperror.Respond(c, apperror.NewPermissionDenied("ownerID not found in context"))
		return
	}

	var req AddSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperror.Respond(c, apperror.NewInvalidInput("invalid JSON body for add section", err))
		return
	}

	sec, err := h.useCase.Add(c.Request.Context(), sectionUC.AddSectionInput{
		OwnerID:     ownerID,
		SectionType: req.SectionType,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ToSectionDTO(sec, []*section.ProfileSection{sec}))
}

func (h *SectionHandler) EditSection(c *gin.Context) {
	ownerID, ok := GetOwnerIDFromGinContext(c)
	if !ok {
		apperror.Respond(c, apperror.NewPermissionDenied("ownerID not found in context"))
		return
	}
	sectionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apperror.Respond(c, apperror.NewInvalidInput("invalid section ID", err))
		return
	}

	var req EditSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperror.Respond(c, apperror.NewInvalidInput("invalid JSON body for edit section", err))
		return
	}

	sec, err := h.useCase.Edit(c.Request.Context(), sectionUC.EditSectionInput{
		OwnerID:   ownerID,
		SectionID: sectionID,
		Data:      req.SectionData,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ToSectionDTO(sec, []*section.ProfileSection{sec}))
}

func (h *SectionHandler) ToggleVisibility(c *gin.Context) {
	ownerID, ok := GetOwnerIDFromGinContext(c)
	if !ok {
		apperror.Respond(c, apperror.NewPermissionDenied("ownerID not found in context"))
		return
	}
	sectionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apperror.Respond(c, apperror.NewInvalidInput("invalid section ID", err))
		return
	}

	sec, err := h.useCase.ToggleVisibility(c.Request.Context(), ownerID, sectionID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": sec.ID, "is_visible": sec.IsVisible})
}

func (h *SectionHandler) MoveSection(c *gin.Context) {
	ownerID, ok := GetOwnerIDFromGinContext(c)
	if !ok {
		apperror.Respond(c, apperror.NewPermissionDenied("ownerID not found in context"))
		return
	}
	sectionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apperror.Respond(c, apperror.NewInvalidInput("invalid section ID", err))
		return
	}

	var req MoveSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperror.Respond(c, apperror.NewInvalidInput("invalid JSON body for move section", err))
		return
	}

	if err := h.useCase.Move(c.Request.Context(), ownerID, sectionID, sectionUC.MoveDirection(req.Direction)); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SectionHandler) ReorderSections(c *gin.Context) {
	ownerID, ok := GetOwnerIDFromGinContext(c)
	if !ok {
		apperror.Respond(c, apperror.NewPermissionDenied("ownerID not found in context"))
		return
	}

	var req ReorderSectionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperror.Respond(c, apperror.NewInvalidInput("invalid JSON body for reorder", err))
		return
	}

	orderedIDs := make([]uuid.UUID, 0, len(req.OrderedIDs))
	for _, raw := range req.OrderedIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			apperror.Respond(c, apperror.NewInvalidInput("invalid section ID in ordering", err))
			return
		}
		orderedIDs = append(orderedIDs, id)
	}

	if err := h.useCase.Reorder(c.Request.Context(), ownerID, orderedIDs); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SectionHandler) RemoveSection(c *gin.Context) {
	ownerID, ok := GetOwnerIDFromGinContext(c)
	if !ok {
		apperror.Respond(c, apperror.NewPermissionDenied("ownerID not found in context"))
		return
	}
	sectionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apperror.Respond(c, apperror.NewInvalidInput("invalid section ID", err))
		return
	}

	if err := h.useCase.Remove(c.Request.Context(), ownerID, sectionID); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

func (h *SectionHandler) RestoreSection(c *gin.Context) {
	ownerID, ok := GetOwnerIDFromGinContext(c)
	if !ok {
		apperror.Respond(c, apperror.NewPermissionDenied("ownerID not found in context"))
		return
	}

	sec, err := h.useCase.Restore(c.Request.Context(), ownerID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ToSectionDTO(sec, []*section.ProfileSection{sec}))
}

func (h *SectionHandler) BulkCreateSections(c *gin.Context) {
	ownerID, ok := GetOwnerIDFromGinContext(c)
	if !ok {
		apperror.Respond(c, apperror.NewPermissionDenied("ownerID not found in context"))
		return
	}

	var req BulkCreateSectionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperror.Respond(c, apperror.NewInvalidInput("invalid JSON body for bulk create", err))
		return
	}

	inputs := make([]sectionUC.BulkSectionInput, len(req.Sections))
	for i, s := range req.Sections {
		inputs[i] = sectionUC.BulkSectionInput{
			SectionType: s.SectionType,
			Data:        s.SectionData,
		}
	}

	created, err := h.useCase.BulkCreate(c.Request.Context(), ownerID, inputs)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"sections": ToSectionDTOs(created)})
}
