package handlers

import (
	"database/sql"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mindhaven/mindhaven-backend/internal/database"
	"github.com/mindhaven/mindhaven-backend/internal/middleware"
	"github.com/mindhaven/mindhaven-backend/internal/models"
	"github.com/mindhaven/mindhaven-backend/internal/services"
)

// ListResources returns the resource library, optionally filtered by type.
func ListResources(w http.ResponseWriter, r *http.Request) {
	resourceType := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("type")))
	if resourceType != "" && !models.ValidResourceType(resourceType) {
		writeError(w, http.StatusBadRequest, "Unknown resource type")
		return
	}

	query := `
		SELECT id, title, description, file_url, link, resource_type, uploaded_by, uploaded_at, updated_at
		FROM resources`
	args := []interface{}{}
	if resourceType != "" {
		query += " WHERE resource_type = $1"
		args = append(args, resourceType)
	}
	query += " ORDER BY uploaded_at DESC"

	rows, err := database.PostgresDB.QueryContext(r.Context(), query, args...)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load resources")
		return
	}
	defer rows.Close()

	resources := []map[string]interface{}{}
	for rows.Next() {
		var res models.Resource
		if err := rows.Scan(&res.ID, &res.Title, &res.Description, &res.FileURL, &res.Link,
			&res.ResourceType, &res.UploadedBy, &res.UploadedAt, &res.UpdatedAt); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load resources")
			return
		}
		resources = append(resources, res.ToJSON())
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"resources": resources,
	})
}

func loadResource(r *http.Request, id uuid.UUID) (*models.Resource, error) {
	var res models.Resource
	err := database.PostgresDB.QueryRowContext(r.Context(), `
		SELECT id, title, description, file_url, link, resource_type, uploaded_by, uploaded_at, updated_at
		FROM resources WHERE id = $1
	`, id).Scan(&res.ID, &res.Title, &res.Description, &res.FileURL, &res.Link,
		&res.ResourceType, &res.UploadedBy, &res.UploadedAt, &res.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// GetResource returns one library item.
func GetResource(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "resourceID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid resource id")
		return
	}

	res, err := loadResource(r, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load resource")
		return
	}
	if res == nil {
		writeError(w, http.StatusNotFound, "Resource not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"resource": res.ToJSON(),
	})
}

// CreateResource adds a library item. The form carries either an uploaded
// file (stored in Cloudinary) or an external link, never both.
func CreateResource(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r)

	if err := r.ParseMultipartForm(25 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	description := strings.TrimSpace(r.FormValue("description"))
	link := strings.TrimSpace(r.FormValue("link"))
	resourceType := strings.ToUpper(strings.TrimSpace(r.FormValue("resource_type")))

	if title == "" {
		writeError(w, http.StatusBadRequest, "Title is required")
		return
	}
	if resourceType == "" {
		resourceType = models.ResourceArticle
	}
	if !models.ValidResourceType(resourceType) {
		writeError(w, http.StatusBadRequest, "Unknown resource type")
		return
	}

	fileURL := ""
	_, header, fileErr := r.FormFile("file")
	if fileErr == nil {
		if cloudinaryService == nil {
			writeError(w, http.StatusServiceUnavailable, "File uploads are not configured")
			return
		}
		if link != "" {
			writeError(w, http.StatusBadRequest, models.ErrResourceBothContent.Error())
			return
		}
		url, err := cloudinaryService.UploadFileFromHeader(r.Context(), header, services.FolderResources)
		if err != nil {
			log.Printf("Failed to upload resource file: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to upload file")
			return
		}
		fileURL = url
	}

	if err := models.ValidateResourceContent(fileURL, link); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id := uuid.New()
	_, err := database.PostgresDB.ExecContext(r.Context(), `
		INSERT INTO resources (id, title, description, file_url, link, resource_type, uploaded_by, uploaded_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), $6, $7, NOW(), NOW())
	`, id, title, description, fileURL, link, resourceType, user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create resource")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Resource created",
		"id":      id.String(),
	})
}

// UpdateResourceRequest edits a library item's metadata and link.
type UpdateResourceRequest struct {
	Title        *string `json:"title,omitempty"`
	Description  *string `json:"description,omitempty"`
	Link         *string `json:"link,omitempty"`
	ResourceType *string `json:"resource_type,omitempty"`
}

// UpdateResource edits a library item. Switching to a link clears the stored
// file URL so the file-xor-link rule keeps holding.
func UpdateResource(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "resourceID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid resource id")
		return
	}

	res, err := loadResource(r, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load resource")
		return
	}
	if res == nil {
		writeError(w, http.StatusNotFound, "Resource not found")
		return
	}

	var req UpdateResourceRequest
	if err := jsonDecode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	title := res.Title
	if req.Title != nil {
		title = strings.TrimSpace(*req.Title)
		if title == "" {
			writeError(w, http.StatusBadRequest, "Title cannot be empty")
			return
		}
	}
	description := res.Description.String
	if req.Description != nil {
		description = strings.TrimSpace(*req.Description)
	}
	resourceType := res.ResourceType
	if req.ResourceType != nil {
		resourceType = strings.ToUpper(strings.TrimSpace(*req.ResourceType))
		if !models.ValidResourceType(resourceType) {
			writeError(w, http.StatusBadRequest, "Unknown resource type")
			return
		}
	}

	fileURL := res.FileURL.String
	link := res.Link.String
	if req.Link != nil {
		link = strings.TrimSpace(*req.Link)
		if link != "" {
			fileURL = ""
		}
	}
	if err := models.ValidateResourceContent(fileURL, link); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	_, err = database.PostgresDB.ExecContext(r.Context(), `
		UPDATE resources
		SET title = $1, description = NULLIF($2, ''), file_url = NULLIF($3, ''),
			link = NULLIF($4, ''), resource_type = $5, updated_at = NOW()
		WHERE id = $6
	`, title, description, fileURL, link, resourceType, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update resource")
		return
	}

	writeMessage(w, http.StatusOK, "Resource updated")
}

// DeleteResource removes a library item.
func DeleteResource(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "resourceID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid resource id")
		return
	}

	result, err := database.PostgresDB.ExecContext(r.Context(), `
		DELETE FROM resources WHERE id = $1
	`, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete resource")
		return
	}
	if n, _ := result.RowsAffected(); n == 0 {
		writeError(w, http.StatusNotFound, "Resource not found")
		return
	}

	writeMessage(w, http.StatusOK, "Resource deleted")
}
