package router

import (
	"github.com/nadil1995/notehive2/internal/handlers"

	"github.com/gin-gonic/gin"
)

// NoteRoutes defines the legacy flat-note routes. This surface predates the
// repository/timeline model and carries no authentication. Deprecated.
func NoteRoutes(rg *gin.RouterGroup, noteHandler *handlers.NoteHandler) {
	notes := rg.Group("/notes")
	{
		notes.GET("", noteHandler.ListNotes)
		notes.POST("", noteHandler.CreateNote)
		notes.GET("/:noteId", noteHandler.GetNote)
		notes.PUT("/:noteId", noteHandler.UpdateNote)
		notes.DELETE("/:noteId", noteHandler.DeleteNote)
		notes.POST("/:noteId/upload", noteHandler.UploadNoteFile)
	}
}
