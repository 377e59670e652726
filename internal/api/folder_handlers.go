package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lecture-sync/internal/jobs"
	"lecture-sync/internal/validation"
	"lecture-sync/pkg/models"
)

type FolderHandlers struct {
	folders jobs.FolderService
}

func NewFolderHandlers(folders jobs.FolderService) *FolderHandlers {
	return &FolderHandlers{folders: folders}
}

// ListFolders godoc
// @Summary Lister les dossiers
// @Tags Folders
// @Produce json
// @Success 200 {array} models.Folder
// @Failure 502 {object} models.ErrorResponse
// @Router /folders [get]
func (h *FolderHandlers) ListFolders(c *gin.Context) {
	folders, err := h.folders.ListFolders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"folders": folders, "count": len(folders)})
}

// GetFolder godoc
// @Summary Détail d'un dossier
// @Tags Folders
// @Produce json
// @Param id path string true "ID du dossier"
// @Success 200 {object} models.Folder
// @Failure 404 {object} models.ErrorResponse
// @Router /folders/{id} [get]
func (h *FolderHandlers) GetFolder(c *gin.Context) {
	folder, err := h.folders.GetFolder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, folder)
}

// CreateFolder godoc
// @Summary Créer un dossier
// @Tags Folders
// @Accept json
// @Produce json
// @Param request body models.FolderCreate true "Dossier"
// @Success 201 {object} models.Folder
// @Failure 400 {object} models.ErrorResponse
// @Router /folders [post]
func (h *FolderHandlers) CreateFolder(c *gin.Context) {
	var req models.FolderCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		result := validation.NewResult()
		result.AddError("name", "", "folder name is required", "REQUIRED")
		respondError(c, result.Err())
		return
	}

	folder, err := h.folders.CreateFolder(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, folder)
}

// UpdateFolder godoc
// @Summary Renommer ou décrire un dossier
// @Tags Folders
// @Accept json
// @Produce json
// @Param id path string true "ID du dossier"
// @Param request body models.FolderUpdate true "Champs modifiés"
// @Success 200 {object} models.Folder
// @Failure 404 {object} models.ErrorResponse
// @Router /folders/{id} [put]
func (h *FolderHandlers) UpdateFolder(c *gin.Context) {
	var req models.FolderUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		result := validation.NewResult()
		result.AddError("body", "", "invalid JSON body: "+err.Error(), "INVALID_JSON")
		respondError(c, result.Err())
		return
	}

	folder, err := h.folders.UpdateFolder(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, folder)
}

// DeleteFolder godoc
// @Summary Supprimer un dossier
// @Tags Folders
// @Param id path string true "ID du dossier"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /folders/{id} [delete]
func (h *FolderHandlers) DeleteFolder(c *gin.Context) {
	if err := h.folders.DeleteFolder(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
