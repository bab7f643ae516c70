package handlers

import (
	"net/http"
	"testing"

	"github.com/nadil1995/notehive2/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateNodeInOwnedRepository(t *testing.T) {
	db := setupDB(t)
	h := NewTimelineHandler(db, nil)
	user := seedUser(t, db, models.RoleUser)
	repo := seedRepository(t, db, user.ID, "journal")

	c, w := testRequest(t, "POST", "/api/timeline", user.ID, gin.H{
		"repositoryId": repo.ID,
		"title":        "First entry",
		"date":         "2026-01-15",
		"content":      "hello",
		"tags":         []string{"go", "notes"},
	})
	h.CreateNode(c)
	require.Equal(t, http.StatusCreated, w.Code)

	var node models.TimelineNode
	require.NoError(t, db.First(&node, "repository_id = ?", repo.ID).Error)
	assert.Equal(t, "First entry", node.Title)
	assert.Equal(t, []string{"go", "notes"}, node.Tags)
	assert.Equal(t, "#FFFFFF", node.Color)
}

func TestCreateNodeOwnershipRules(t *testing.T) {
	db := setupDB(t)
	h := NewTimelineHandler(db, nil)
	owner := seedUser(t, db, models.RoleUser)
	intruder := seedUser(t, db, models.RoleUser)
	repo := seedRepository(t, db, owner.ID, "private")

	// Unknown repository is 404
	c, w := testRequest(t, "POST", "/api/timeline", intruder.ID, gin.H{
		"repositoryId": "d2719c2e-1f44-4f80-b7b1-000000000000",
		"title":        "x",
		"date":         "2026-01-01",
	})
	h.CreateNode(c)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// A repository owned by someone else reads exactly the same as a
	// missing one: 404, never a hint that it exists
	c, w = testRequest(t, "POST", "/api/timeline", intruder.ID, gin.H{
		"repositoryId": repo.ID,
		"title":        "x",
		"date":         "2026-01-01",
	})
	h.CreateNode(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Repository not found", body["error"])

	// Nothing was created, and the owner can still create normally
	var count int64
	db.Model(&models.TimelineNode{}).Count(&count)
	assert.Zero(t, count)

	c, w = testRequest(t, "POST", "/api/timeline", owner.ID, gin.H{
		"repositoryId": repo.ID,
		"title":        "x",
		"date":         "2026-01-01",
	})
	h.CreateNode(c)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestGetNodeTransitiveOwnership(t *testing.T) {
	db := setupDB(t)
	h := NewTimelineHandler(db, nil)
	owner := seedUser(t, db, models.RoleUser)
	intruder := seedUser(t, db, models.RoleUser)
	repo := seedRepository(t, db, owner.ID, "private")
	node := seedNode(t, db, repo.ID, "entry")

	param := gin.Param{Key: "nodeId", Value: node.ID.String()}

	// Owner reads fine
	c, w := testRequest(t, "GET", "/api/timeline/"+node.ID.String(), owner.ID, nil, param)
	h.GetNode(c)
	assert.Equal(t, http.StatusOK, w.Code)

	// Node exists, parent repository is not the caller's: 403, not 404
	c, w = testRequest(t, "GET", "/api/timeline/"+node.ID.String(), intruder.ID, nil, param)
	h.GetNode(c)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Missing node is 404
	c, w = testRequest(t, "GET", "/api/timeline/d2719c2e-1f44-4f80-b7b1-000000000000", owner.ID, nil,
		gin.Param{Key: "nodeId", Value: "d2719c2e-1f44-4f80-b7b1-000000000000"})
	h.GetNode(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateAndDeleteNode(t *testing.T) {
	db := setupDB(t)
	h := NewTimelineHandler(db, nil)
	user := seedUser(t, db, models.RoleUser)
	repo := seedRepository(t, db, user.ID, "journal")
	node := seedNode(t, db, repo.ID, "before")
	seedAttachment(t, db, node.ID, 10)

	param := gin.Param{Key: "nodeId", Value: node.ID.String()}

	c, w := testRequest(t, "PUT", "/api/timeline/"+node.ID.String(), user.ID, gin.H{
		"title": "after",
		"tags":  []string{"updated"},
	}, param)
	h.UpdateNode(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, db.First(node, "id = ?", node.ID).Error)
	assert.Equal(t, "after", node.Title)
	assert.Equal(t, []string{"updated"}, node.Tags)

	c, w = testRequest(t, "DELETE", "/api/timeline/"+node.ID.String(), user.ID, nil, param)
	h.DeleteNode(c)
	require.Equal(t, http.StatusOK, w.Code)

	var nodes, attachments int64
	db.Model(&models.TimelineNode{}).Count(&nodes)
	db.Model(&models.Attachment{}).Count(&attachments)
	assert.Zero(t, nodes)
	assert.Zero(t, attachments)
}

func TestSearchNodes(t *testing.T) {
	db := setupDB(t)
	h := NewTimelineHandler(db, nil)
	user := seedUser(t, db, models.RoleUser)
	other := seedUser(t, db, models.RoleUser)

	mine := seedRepository(t, db, user.ID, "mine")
	theirs := seedRepository(t, db, other.ID, "theirs")

	match := seedNode(t, db, mine.ID, "Kubernetes upgrade notes")
	seedNode(t, db, mine.ID, "Grocery list")
	seedNode(t, db, theirs.ID, "Kubernetes secrets")

	c, w := testRequest(t, "GET", "/api/timeline/search?q=kubernetes", user.ID, nil)
	h.SearchNodes(c)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, float64(1), body["count"])

	data := body["data"].([]interface{})
	first := data[0].(map[string]interface{})
	assert.Equal(t, match.ID.String(), first["id"])

	// Empty query is rejected
	c, w = testRequest(t, "GET", "/api/timeline/search", user.ID, nil)
	h.SearchNodes(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAttachmentSubResource(t *testing.T) {
	db := setupDB(t)
	h := NewTimelineHandler(db, nil)
	user := seedUser(t, db, models.RoleUser)
	repo := seedRepository(t, db, user.ID, "journal")
	node := seedNode(t, db, repo.ID, "entry")

	nodeParam := gin.Param{Key: "nodeId", Value: node.ID.String()}

	c, w := testRequest(t, "POST", "/api/timeline/"+node.ID.String()+"/attachments", user.ID, gin.H{
		"filename":   "report.pdf",
		"fileType":   "pdf",
		"fileSize":   2048,
		"storageKey": "u/1-report.pdf",
		"fileUrl":    "https://bucket.s3.amazonaws.com/u/1-report.pdf",
	}, nodeParam)
	h.AddAttachment(c)
	require.Equal(t, http.StatusCreated, w.Code)

	var attachment models.Attachment
	require.NoError(t, db.First(&attachment, "node_id = ?", node.ID).Error)
	assert.Equal(t, int64(2048), attachment.FileSize)

	c, w = testRequest(t, "GET", "/api/timeline/"+node.ID.String()+"/attachments", user.ID, nil, nodeParam)
	h.ListAttachments(c)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, float64(1), body["count"])

	c, w = testRequest(t, "DELETE", "/attachments", user.ID, nil,
		nodeParam, gin.Param{Key: "attachmentId", Value: attachment.ID.String()})
	h.RemoveAttachment(c)
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	db.Model(&models.Attachment{}).Count(&count)
	assert.Zero(t, count)
}
