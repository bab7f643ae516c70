package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/nadil1995/notehive2/internal/models"
	"github.com/nadil1995/notehive2/internal/storage"
	"github.com/nadil1995/notehive2/pkg/responses"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NoteHandler serves the legacy flat-note surface. It predates the
// repository/timeline model and carries no authentication; clients pass
// userId explicitly. Deprecated.
type NoteHandler struct {
	db    *gorm.DB
	store storage.Store
}

func NewNoteHandler(db *gorm.DB, store storage.Store) *NoteHandler {
	return &NoteHandler{db: db, store: store}
}

type createNoteRequest struct {
	UserID   string   `json:"userId"`
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	IsPinned bool     `json:"isPinned"`
	Color    string   `json:"color"`
}

type updateNoteRequest struct {
	Title    *string   `json:"title"`
	Content  *string   `json:"content"`
	Category *string   `json:"category"`
	Tags     *[]string `json:"tags"`
	IsPinned *bool     `json:"isPinned"`
	Color    *string   `json:"color"`
}

// ListNotes lists notes for a userId, pinned first.
func (h *NoteHandler) ListNotes(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("userId is required", nil))
		return
	}

	query := h.db.Preload("Attachments").Where("user_id = ?", userID)
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var notes []models.Note
	if err := query.Order("is_pinned DESC, updated_at DESC").Find(&notes).Error; err != nil {
		log.Printf("Failed to list notes: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Failed to fetch notes", nil))
		return
	}

	c.JSON(http.StatusOK, responses.NewListResponse(notes, len(notes)))
}

// GetNote returns one note.
func (h *NoteHandler) GetNote(c *gin.Context) {
	noteID, err := uuid.Parse(c.Param("noteId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid note ID format", nil))
		return
	}

	var note models.Note
	err = h.db.Preload("Attachments").First(&note, "id = ?", noteID).Error
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, responses.NewErrorResponse("Note not found", nil))
		return
	}
	if err != nil {
		log.Printf("Database error when finding note: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Failed to retrieve note", nil))
		return
	}

	c.JSON(http.StatusOK, responses.APIResponse{Success: true, Data: note})
}

// CreateNote creates a legacy note.
func (h *NoteHandler) CreateNote(c *gin.Context) {
	var req createNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid request format", err.Error()))
		return
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Content) == "" || req.UserID == "" {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("title, content and userId are required", nil))
		return
	}

	category := req.Category
	if category == "" {
		category = "General"
	}
	color := req.Color
	if color == "" {
		color = "#FFFFFF"
	}
	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}

	note := models.Note{
		ID:       uuid.New(),
		UserID:   req.UserID,
		Title:    strings.TrimSpace(req.Title),
		Content:  req.Content,
		Category: category,
		Tags:     tags,
		IsPinned: req.IsPinned,
		Color:    color,
	}

	if err := h.db.Create(&note).Error; err != nil {
		log.Printf("Failed to create note: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Failed to create note", nil))
		return
	}

	c.JSON(http.StatusCreated, responses.NewSuccessResponse("Note created successfully", note))
}

// UpdateNote updates a legacy note.
func (h *NoteHandler) UpdateNote(c *gin.Context) {
	noteID, err := uuid.Parse(c.Param("noteId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid note ID format", nil))
		return
	}

	var req updateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid request format", err.Error()))
		return
	}

	var note models.Note
	err = h.db.First(&note, "id = ?", noteID).Error
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, responses.NewErrorResponse("Note not found", nil))
		return
	}
	if err != nil {
		log.Printf("Database error when finding note: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Failed to update note", nil))
		return
	}

	if req.Title != nil && *req.Title != "" {
		note.Title = strings.TrimSpace(*req.Title)
	}
	if req.Content != nil {
		note.Content = *req.Content
	}
	if req.Category != nil && *req.Category != "" {
		note.Category = *req.Category
	}
	if req.Tags != nil {
		note.Tags = *req.Tags
	}
	if req.IsPinned != nil {
		note.IsPinned = *req.IsPinned
	}
	if req.Color != nil && *req.Color != "" {
		note.Color = *req.Color
	}

	if err := h.db.Save(&note).Error; err != nil {
		log.Printf("Failed to update note: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Failed to update note", nil))
		return
	}

	c.JSON(http.StatusOK, responses.NewSuccessResponse("Note updated successfully", note))
}

// DeleteNote removes a legacy note and its attachment rows.
func (h *NoteHandler) DeleteNote(c *gin.Context) {
	noteID, err := uuid.Parse(c.Param("noteId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid note ID format", nil))
		return
	}

	var note models.Note
	err = h.db.First(&note, "id = ?", noteID).Error
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, responses.NewErrorResponse("Note not found", nil))
		return
	}
	if err != nil {
		log.Printf("Database error when finding note: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Failed to delete note", nil))
		return
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("note_id = ?", note.ID).Delete(&models.NoteAttachment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&note).Error
	})
	if err != nil {
		log.Printf("Failed to delete note: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Failed to delete note", nil))
		return
	}

	c.JSON(http.StatusOK, responses.NewSuccessResponse("Note deleted successfully", nil))
}

// UploadNoteFile stores a multipart file against a legacy note. No quota
// participation on this surface.
func (h *NoteHandler) UploadNoteFile(c *gin.Context) {
	noteID, err := uuid.Parse(c.Param("noteId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid note ID format", nil))
		return
	}

	var note models.Note
	err = h.db.First(&note, "id = ?", noteID).Error
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, responses.NewErrorResponse("Note not found", nil))
		return
	}
	if err != nil {
		log.Printf("Database error when finding note: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Upload failed", nil))
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("No file provided", nil))
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		log.Printf("Failed to open uploaded file: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Upload failed", nil))
		return
	}
	defer src.Close()

	key := "notes/" + note.ID.String() + "/" + fileHeader.Filename
	url, err := h.store.Put(c.Request.Context(), key, src, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		log.Printf("Failed to store note upload: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Upload failed", nil))
		return
	}

	attachment := models.NoteAttachment{
		ID:         uuid.New(),
		NoteID:     note.ID,
		Filename:   fileHeader.Filename,
		URL:        url,
		UploadedAt: time.Now(),
	}

	if err := h.db.Create(&attachment).Error; err != nil {
		log.Printf("Failed to record note attachment: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Upload failed", nil))
		return
	}

	c.JSON(http.StatusCreated, responses.NewSuccessResponse("File uploaded successfully", attachment))
}
