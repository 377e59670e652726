// internal/validation/middleware.go
package validation

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequestValidator définit une fonction de validation pour une requête
type RequestValidator func(*gin.Context, *APIValidator) *ValidationResult

// Middleware injecte le validator dans le contexte gin
func Middleware(v *APIValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("validator", v)
		c.Next()
	}
}

// ValidateRequest est le middleware principal qui exécute une liste de validators
func ValidateRequest(validators ...RequestValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		validator := GetValidator(c)
		if validator == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Validation service unavailable"})
			c.Abort()
			return
		}

		for _, validate := range validators {
			if result := validate(c, validator); !result.Valid {
				c.JSON(http.StatusBadRequest, gin.H{
					"error":             "Validation failed",
					"validation_errors": result.Errors,
				})
				c.Abort()
				return
			}
		}

		c.Next()
	}
}

func GetValidator(c *gin.Context) *APIValidator {
	if validator, exists := c.Get("validator"); exists {
		if apiValidator, ok := validator.(*APIValidator); ok {
			return apiValidator
		}
	}
	return nil
}

// ValidateJobIDParam stocke l'identifiant validé sous "validated_job_id"
func ValidateJobIDParam(paramName string) RequestValidator {
	return func(c *gin.Context, v *APIValidator) *ValidationResult {
		id, result := v.ValidateJobIDParam(c.Param(paramName))
		if result.Valid {
			c.Set("validated_job_id", id)
		}
		return result
	}
}

func ValidateFolderIDParam(paramName string) RequestValidator {
	return func(c *gin.Context, v *APIValidator) *ValidationResult {
		return v.ValidateFolderIDParam(c.Param(paramName), true)
	}
}

// ValidateOptionalFolderIDQuery valide ?folder_id= quand il est présent
func ValidateOptionalFolderIDQuery(queryName string) RequestValidator {
	return func(c *gin.Context, v *APIValidator) *ValidationResult {
		return v.ValidateFolderIDParam(c.Query(queryName), false)
	}
}

func ValidateSearchQuery(queryName string) RequestValidator {
	return func(c *gin.Context, v *APIValidator) *ValidationResult {
		return v.ValidateSearchQuery(c.Query(queryName))
	}
}

// CombineValidators combine plusieurs validators (tous doivent passer)
func CombineValidators(validators ...RequestValidator) RequestValidator {
	return func(c *gin.Context, v *APIValidator) *ValidationResult {
		result := NewResult()
		for _, validate := range validators {
			result.Merge(validate(c, v))
		}
		return result
	}
}
