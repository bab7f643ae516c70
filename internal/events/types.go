package events

// Asset Event Types
const (
	RepositoryCreated  = "REPOSITORY_CREATED"
	RepositoryUpdated  = "REPOSITORY_UPDATED"
	RepositoryArchived = "REPOSITORY_ARCHIVED"
	RepositoryRestored = "REPOSITORY_RESTORED"
	RepositoryDeleted  = "REPOSITORY_DELETED"

	NodeCreated = "NODE_CREATED"
	NodeUpdated = "NODE_UPDATED"
	NodeDeleted = "NODE_DELETED"
)

// Kafka Topics
const (
	AdminActivityTopic = "admin.activity"
	AssetChangesTopic  = "asset.changes"
)

// Asset Types
const (
	AssetTypeRepository = "repository"
	AssetTypeNode       = "node"
)
