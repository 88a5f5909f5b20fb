package family

import (
	"errors"
	"net/http"

	"location-service/helper"

	"github.com/gin-gonic/gin"
)

type FamilyHandler struct {
	familyService FamilyService
}

func NewFamilyHandler(familyService FamilyService) *FamilyHandler {
	return &FamilyHandler{
		familyService: familyService,
	}
}

func (h *FamilyHandler) GetFamilies(c *gin.Context) {
	helper.SendSuccess(c, http.StatusOK, "success", h.familyService.Families())
}

func (h *FamilyHandler) GetMembers(c *gin.Context) {
	members := h.familyService.Members(c.Query("family"))
	helper.SendSuccess(c, http.StatusOK, "success", members)
}

func (h *FamilyHandler) CreateFamily(c *gin.Context) {

	var req CreateFamilyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helper.SendError(c, http.StatusBadRequest, err, helper.ErrInvalidRequest)
		return
	}

	familyID, err := h.familyService.CreateFamily(c, req.Name)
	if err != nil {
		helper.SendError(c, http.StatusBadRequest, err, helper.ErrInvalidOperation)
		return
	}

	helper.SendSuccess(c, http.StatusCreated, "success", gin.H{"family_id": familyID})
}

func (h *FamilyHandler) CreateMember(c *gin.Context) {

	var req CreateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helper.SendError(c, http.StatusBadRequest, err, helper.ErrInvalidRequest)
		return
	}

	member, err := h.familyService.CreateMember(c, &req)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, ErrMemberExists) {
			status = http.StatusConflict
		}
		helper.SendError(c, status, err, helper.ErrInvalidOperation)
		return
	}

	helper.SendSuccess(c, http.StatusCreated, "success", member)
}

func (h *FamilyHandler) UpdateMember(c *gin.Context) {

	var req UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helper.SendError(c, http.StatusBadRequest, err, helper.ErrInvalidRequest)
		return
	}

	err := h.familyService.UpdateMember(c, c.Param("memberId"), &req)
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			helper.SendError(c, http.StatusNotFound, err, helper.ErrNotFound)
			return
		}
		helper.SendError(c, http.StatusBadRequest, err, helper.ErrInvalidOperation)
		return
	}

	helper.SendSuccess(c, http.StatusOK, "success", nil)
}

func (h *FamilyHandler) DeleteMember(c *gin.Context) {

	err := h.familyService.DeleteMember(c, c.Param("memberId"))
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			helper.SendError(c, http.StatusNotFound, err, helper.ErrNotFound)
			return
		}
		helper.SendError(c, http.StatusInternalServerError, err, helper.ErrInvalidOperation)
		return
	}

	helper.SendSuccess(c, http.StatusOK, "success", nil)
}

func (h *FamilyHandler) DeleteFamily(c *gin.Context) {

	err := h.familyService.DeleteFamily(c, c.Param("familyId"))
	if err != nil {
		if errors.Is(err, ErrFamilyNotFound) {
			helper.SendError(c, http.StatusNotFound, err, helper.ErrNotFound)
			return
		}
		helper.SendError(c, http.StatusInternalServerError, err, helper.ErrInvalidOperation)
		return
	}

	helper.SendSuccess(c, http.StatusOK, "success", nil)
}
