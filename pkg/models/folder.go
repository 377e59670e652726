package models

// Folder regroupe des jobs. lecture_count est maintenu par le backend.
// @Description Dossier de lectures
type Folder struct {
	ID           string    `json:"id" example:"b1d0c6a2-4f59-4d7e-9d0b-0c5e3c1b2a99"`
	Name         string    `json:"name" example:"Algorithms"`
	Description  *string   `json:"description,omitempty"`
	LectureCount int       `json:"lecture_count" example:"4"`
	CreatedAt    Timestamp `json:"created_at" swaggertype:"string"`
	UpdatedAt    Timestamp `json:"updated_at" swaggertype:"string"`
} // @name Folder

// FolderCreate est le corps de création d'un dossier
type FolderCreate struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description,omitempty"`
} // @name FolderCreate

// FolderUpdate ne transmet que les champs renseignés
type FolderUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
} // @name FolderUpdate
